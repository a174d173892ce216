package utils

import (
	"encoding/json"
	"fmt"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// ParseStrategy names the rung of the SmartParse ladder that succeeded.
type ParseStrategy string

const (
	StrategyStrict   ParseStrategy = "strict"
	StrategyRepaired ParseStrategy = "repaired"
	StrategyHJSON    ParseStrategy = "hjson"
)

// RepairJSON fixes the usual damage in hand-edited JSON: trailing commas,
// single quotes, unquoted keys, comments, unclosed brackets and surrounding
// markdown code fences.
func RepairJSON(malformed string) (string, error) {
	repaired, err := jsonrepair.RepairJSON(malformed)
	if err != nil {
		return "", fmt.Errorf("json repair failed: %w", err)
	}
	return repaired, nil
}

// ParseHJSON converts Hjson (comments, unquoted keys and strings, optional
// commas) to standard JSON.
func ParseHJSON(data string) (string, error) {
	var result interface{}
	if err := hjson.Unmarshal([]byte(data), &result); err != nil {
		return "", fmt.Errorf("hjson parse failed: %w", err)
	}
	out, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("hjson re-encode failed: %w", err)
	}
	return string(out), nil
}

// SmartParse decodes input into dst trying, in order:
// 1. Standard JSON
// 2. JSON repair
// 3. Hjson (most lenient)
//
// It returns the canonical JSON that was decoded and the strategy used.
func SmartParse(input string, dst interface{}) (string, ParseStrategy, error) {
	// Try 1: Standard JSON
	strictErr := json.Unmarshal([]byte(input), dst)
	if strictErr == nil {
		return input, StrategyStrict, nil
	}

	// Try 2: JSON Repair
	if repaired, err := RepairJSON(input); err == nil {
		if err := json.Unmarshal([]byte(repaired), dst); err == nil {
			return repaired, StrategyRepaired, nil
		}
	}

	// Try 3: Hjson
	if converted, err := ParseHJSON(input); err == nil {
		if err := json.Unmarshal([]byte(converted), dst); err == nil {
			return converted, StrategyHJSON, nil
		}
	}

	return "", "", fmt.Errorf("all parsing strategies failed: %w", strictErr)
}

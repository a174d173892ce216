// Package config loads forecast settings from defaults, an optional YAML or
// HJSON file and environment overrides, in that order.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"statement_forecast/pkg/core/forecast"
	"statement_forecast/pkg/core/report"
	"statement_forecast/pkg/core/utils"
)

// PipelineConfig controls batch execution.
type PipelineConfig struct {
	Concurrency int `yaml:"concurrency" json:"concurrency"`
}

// StoreConfig selects where histories are read and forecasts written. With
// a DatabaseURL the database is primary and the directories are fallback.
type StoreConfig struct {
	DatabaseURL string `yaml:"database_url" json:"database_url"`
	InputDir    string `yaml:"input_dir" json:"input_dir"`
	OutputDir   string `yaml:"output_dir" json:"output_dir"`
}

// APIConfig configures the HTTP server.
type APIConfig struct {
	Port           int      `yaml:"port" json:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins"`

	// SaveOnDemand persists forecasts computed through POST /forecast.
	SaveOnDemand bool `yaml:"save_on_demand" json:"save_on_demand"`
}

// Config is the full application configuration.
type Config struct {
	Forecast forecast.Parameters `yaml:"forecast" json:"forecast"`
	Pipeline PipelineConfig      `yaml:"pipeline" json:"pipeline"`
	Store    StoreConfig         `yaml:"store" json:"store"`
	API      APIConfig           `yaml:"api" json:"api"`
	Report   report.Options      `yaml:"report" json:"report"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Forecast: forecast.DefaultParameters(),
		Pipeline: PipelineConfig{Concurrency: 4},
		Store:    StoreConfig{InputDir: filepath.Join("data", "silver"), OutputDir: filepath.Join("data", "gold")},
		API:      APIConfig{Port: 8080, AllowedOrigins: []string{"*"}},
		Report:   report.DefaultOptions(),
	}
}

// Load builds the configuration. A missing .env is not an error; an empty
// path skips the file layer.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("[CONFIG] No .env file found, using process environment")
	}

	cfg := Default()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.UnmarshalStrict(data, c); err != nil {
			return fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case ".hjson", ".json":
		converted, err := utils.ParseHJSON(string(data))
		if err != nil {
			return fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		if err := json.Unmarshal([]byte(converted), c); err != nil {
			return fmt.Errorf("failed to decode config %s: %w", path, err)
		}
	default:
		return fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
	return nil
}

func (c *Config) applyEnv() error {
	ints := map[string]*int{
		"FORECAST_HORIZON_YEARS":         &c.Forecast.HorizonYears,
		"FORECAST_TRAILING_WINDOW_YEARS": &c.Forecast.TrailingWindowYears,
		"FORECAST_GROWTH_LOOKBACK_YEARS": &c.Forecast.GrowthLookbackYears,
		"FORECAST_CONCURRENCY":           &c.Pipeline.Concurrency,
		"API_PORT":                       &c.API.Port,
	}
	for key, dst := range ints {
		v, ok := os.LookupEnv(key)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, v, err)
		}
		*dst = n
	}

	floats := map[string]*float64{
		"FORECAST_DEFAULT_GROWTH_RATE": &c.Forecast.DefaultGrowthRate,
		"FORECAST_DEFAULT_TAX_RATE":    &c.Forecast.DefaultTaxRate,
		"FORECAST_BALANCE_TOLERANCE":   &c.Forecast.BalanceTolerance,
	}
	for key, dst := range floats {
		v, ok := os.LookupEnv(key)
		if !ok || v == "" {
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, v, err)
		}
		*dst = f
	}

	strs := map[string]*string{
		"DATABASE_URL":        &c.Store.DatabaseURL,
		"FORECAST_INPUT_DIR":  &c.Store.InputDir,
		"FORECAST_OUTPUT_DIR": &c.Store.OutputDir,
		"REPORT_CURRENCY":     &c.Report.Currency,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	return nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	var errs []error
	if err := c.Forecast.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Pipeline.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("pipeline.concurrency must be at least 1, got %d", c.Pipeline.Concurrency))
	}
	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, fmt.Errorf("api.port out of range: %d", c.API.Port))
	}
	if c.Store.DatabaseURL == "" && c.Store.InputDir == "" {
		errs = append(errs, errors.New("store needs a database_url or an input_dir"))
	}
	return errors.Join(errs...)
}

package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"statement_forecast/pkg/core/statement"
)

// Suffix of the files a DirStore writes for each forecast run.
const forecastSuffix = "_forecast"

// historyExts lists input formats in lookup order.
var historyExts = []string{".json", ".hjson", ".csv", ".html", ".htm"}

// DirStore keeps one history file per company in an input directory and
// writes <TICKER>_forecast.json / .csv to an output directory.
type DirStore struct {
	inputDir  string
	outputDir string
}

// NewDirStore creates a directory store. When outputDir is empty forecasts
// are written next to the inputs.
func NewDirStore(inputDir, outputDir string) *DirStore {
	if outputDir == "" {
		outputDir = inputDir
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		fmt.Printf("[WARNING] Check forecast output dir: %v\n", err)
	}
	return &DirStore{inputDir: inputDir, outputDir: outputDir}
}

// ListCompanies returns every ticker with a readable history file. File
// names are matched without regard to case and tickers are upper-cased.
func (s *DirStore) ListCompanies(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.inputDir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.inputDir, err)
	}
	seen := make(map[string]bool)
	var tickers []string
	for _, e := range entries {
		ticker, _, ok := historyFile(e)
		if !ok || seen[ticker] {
			continue
		}
		seen[ticker] = true
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)
	return tickers, nil
}

// LoadHistory reads the first history file found for ticker, in
// historyExts order. "goog.json" serves ticker "GOOG".
func (s *DirStore) LoadHistory(ctx context.Context, ticker string) (*statement.Table, error) {
	ticker = strings.ToUpper(ticker)
	entries, err := os.ReadDir(s.inputDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("history for %s: %w", ticker, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.inputDir, err)
	}

	files := make(map[string]string)
	for _, e := range entries {
		if t, ext, ok := historyFile(e); ok && t == ticker {
			if _, dup := files[ext]; !dup {
				files[ext] = e.Name()
			}
		}
	}
	for _, ext := range historyExts {
		name, ok := files[ext]
		if !ok {
			continue
		}
		path := filepath.Join(s.inputDir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		return decodeHistory(ext, data, ticker)
	}
	return nil, fmt.Errorf("history for %s: %w", ticker, ErrNotFound)
}

// historyFile reports the upper-cased ticker and lower-cased extension of
// a history input. Directories and forecast outputs are not inputs.
func historyFile(e os.DirEntry) (ticker, ext string, ok bool) {
	if e.IsDir() {
		return "", "", false
	}
	ext = strings.ToLower(filepath.Ext(e.Name()))
	if !isHistoryExt(ext) {
		return "", "", false
	}
	ticker = strings.ToUpper(strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
	if ticker == "" || strings.HasSuffix(ticker, strings.ToUpper(forecastSuffix)) {
		return "", "", false
	}
	return ticker, ext, true
}

func decodeHistory(ext string, data []byte, ticker string) (*statement.Table, error) {
	switch ext {
	case ".json":
		return DecodeTableJSON(data, ticker)
	case ".hjson":
		return DecodeTableHJSON(data, ticker)
	case ".csv":
		return DecodeTableCSV(bytes.NewReader(data), ticker)
	default:
		return ParseHTMLTable(bytes.NewReader(data), ticker)
	}
}

// SaveForecast writes the run as JSON (with audit data) and as wide CSV.
func (s *DirStore) SaveForecast(ctx context.Context, rec *ForecastRecord) error {
	var js bytes.Buffer
	if err := EncodeRecordJSON(&js, rec); err != nil {
		return fmt.Errorf("encode forecast %s: %w", rec.Ticker, err)
	}
	if err := os.WriteFile(s.forecastPath(rec.Ticker, ".json"), js.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to save forecast file: %w", err)
	}

	if rec.Table == nil {
		return nil
	}
	var csvBuf bytes.Buffer
	if err := EncodeCombinedCSV(&csvBuf, rec.Table); err != nil {
		return fmt.Errorf("encode forecast csv %s: %w", rec.Ticker, err)
	}
	if err := os.WriteFile(s.forecastPath(rec.Ticker, ".csv"), csvBuf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to save forecast file: %w", err)
	}
	return nil
}

// LoadForecast reads the run last saved for ticker.
func (s *DirStore) LoadForecast(ctx context.Context, ticker string) (*ForecastRecord, error) {
	f, err := os.Open(s.forecastPath(ticker, ".json"))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("forecast for %s: %w", ticker, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeRecordJSON(f)
}

func (s *DirStore) forecastPath(ticker, ext string) string {
	return filepath.Join(s.outputDir, strings.ToUpper(ticker)+forecastSuffix+ext)
}

func isHistoryExt(ext string) bool {
	for _, e := range historyExts {
		if e == ext {
			return true
		}
	}
	return false
}

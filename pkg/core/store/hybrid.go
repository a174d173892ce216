package store

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"statement_forecast/pkg/core/statement"
)

// HybridStore uses a database as primary and a directory as fallback.
// Either side may be nil. Forecasts are written to every configured side.
type HybridStore struct {
	primary  Repository
	fallback Repository
}

// NewHybridStore combines primary and fallback. When both are nil the store
// falls back to a local ".cache/forecasts" directory.
func NewHybridStore(primary, fallback Repository) *HybridStore {
	if primary == nil && fallback == nil {
		fallback = NewDirStore(".cache/forecasts", "")
	}
	return &HybridStore{primary: primary, fallback: fallback}
}

func (h *HybridStore) sides() []Repository {
	var out []Repository
	for _, r := range []Repository{h.primary, h.fallback} {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

// ListCompanies returns the union of both sides. A failing side is skipped
// unless every side fails.
func (h *HybridStore) ListCompanies(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var (
		tickers []string
		errs    []error
	)
	sides := h.sides()
	for _, r := range sides {
		listed, err := r.ListCompanies(ctx)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, t := range listed {
			if !seen[t] {
				seen[t] = true
				tickers = append(tickers, t)
			}
		}
	}
	if len(errs) == len(sides) && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	sort.Strings(tickers)
	return tickers, nil
}

// LoadHistory reads from the primary, falling back when it has no data for
// ticker or cannot be reached.
func (h *HybridStore) LoadHistory(ctx context.Context, ticker string) (*statement.Table, error) {
	var lastErr error
	for _, r := range h.sides() {
		t, err := r.LoadHistory(ctx, ticker)
		if err == nil {
			return t, nil
		}
		if !errors.Is(err, ErrNotFound) {
			fmt.Printf("[WARNING] History lookup for %s failed, trying fallback: %v\n", ticker, err)
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("history for %s: %w", ticker, ErrNotFound)
	}
	return nil, lastErr
}

// SaveForecast writes to every side and fails if any write fails.
func (h *HybridStore) SaveForecast(ctx context.Context, rec *ForecastRecord) error {
	var errs []error
	for _, r := range h.sides() {
		if err := r.SaveForecast(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LoadForecast returns the primary's latest run, else the fallback's.
func (h *HybridStore) LoadForecast(ctx context.Context, ticker string) (*ForecastRecord, error) {
	var lastErr error
	for _, r := range h.sides() {
		rec, err := r.LoadForecast(ctx, ticker)
		if err == nil {
			return rec, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("forecast for %s: %w", ticker, ErrNotFound)
	}
	return nil, lastErr
}

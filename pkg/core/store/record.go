package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"statement_forecast/pkg/core/forecast"
	"statement_forecast/pkg/core/statement"
)

// ErrNotFound is returned when a ticker has no stored history or forecast.
var ErrNotFound = errors.New("not found")

// ForecastRecord is one persisted forecast run for a company: the combined
// historical + forecast table plus what is needed to audit it.
type ForecastRecord struct {
	RunID       uuid.UUID                `json:"run_id"`
	Ticker      string                   `json:"ticker"`
	CreatedAt   time.Time                `json:"created_at"`
	Parameters  forecast.Parameters      `json:"parameters"`
	Assumptions forecast.Assumptions     `json:"assumptions"`
	Check       forecast.BalanceReport   `json:"check"`
	Table       *statement.CombinedTable `json:"-"` // encoded as rows by the codecs
}

// Balanced reports the integrity check outcome of the run.
func (r *ForecastRecord) Balanced() bool {
	return r != nil && r.Check.Balanced
}

// HistorySource supplies normalized historical tables.
type HistorySource interface {
	// ListCompanies returns the tickers available, sorted.
	ListCompanies(ctx context.Context) ([]string, error)
	// LoadHistory returns the table for ticker, or an error wrapping
	// ErrNotFound.
	LoadHistory(ctx context.Context, ticker string) (*statement.Table, error)
}

// ForecastSink persists forecast runs.
type ForecastSink interface {
	SaveForecast(ctx context.Context, rec *ForecastRecord) error
}

// ForecastReader returns the latest stored run for a ticker.
type ForecastReader interface {
	LoadForecast(ctx context.Context, ticker string) (*ForecastRecord, error)
}

// Repository is a full table-read / table-write collaborator.
type Repository interface {
	HistorySource
	ForecastSink
	ForecastReader
}

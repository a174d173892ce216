package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"statement_forecast/pkg/core/statement"
)

// Schema creates the tables PostgresRepository reads and writes.
const Schema = `
CREATE TABLE IF NOT EXISTS statement_history (
	ticker      TEXT NOT NULL,
	period_end  DATE NOT NULL,
	line_item   TEXT NOT NULL,
	value       DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (ticker, period_end, line_item)
);

CREATE TABLE IF NOT EXISTS forecast_runs (
	run_id       UUID PRIMARY KEY,
	ticker       TEXT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL,
	balanced     BOOLEAN NOT NULL,
	parameters   JSONB NOT NULL,
	assumptions  JSONB NOT NULL,
	check_report JSONB NOT NULL
);

CREATE INDEX IF NOT EXISTS forecast_runs_ticker_idx ON forecast_runs (ticker, created_at DESC);

CREATE TABLE IF NOT EXISTS forecast_lines (
	run_id     UUID NOT NULL REFERENCES forecast_runs (run_id) ON DELETE CASCADE,
	period_end DATE NOT NULL,
	row_type   TEXT NOT NULL,
	line_item  TEXT NOT NULL,
	value      NUMERIC NOT NULL,
	PRIMARY KEY (run_id, period_end, line_item)
);
`

// DB is the subset of *pgxpool.Pool the repository needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresRepository reads long-format history rows and stores forecast
// runs with one row per (period, line item).
type PostgresRepository struct {
	db DB
}

// NewPostgresRepository wraps db, typically the pool from GetPool.
func NewPostgresRepository(db DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// EnsureSchema applies Schema.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListCompanies(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT ticker FROM statement_history ORDER BY ticker`)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	tickers, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan ticker: %w", err)
	}
	return tickers, nil
}

func (r *PostgresRepository) LoadHistory(ctx context.Context, ticker string) (*statement.Table, error) {
	query := `
		SELECT period_end, line_item, value::float8
		FROM statement_history
		WHERE ticker = $1
		ORDER BY period_end, line_item
	`
	rows, err := r.db.Query(ctx, query, ticker)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	t := &statement.Table{Ticker: ticker}
	for rows.Next() {
		var (
			periodEnd time.Time
			item      string
			value     float64
		)
		if err := rows.Scan(&periodEnd, &item, &value); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		n := len(t.Periods)
		if n == 0 || !t.Periods[n-1].Date.Equal(periodEnd) {
			t.Periods = append(t.Periods, statement.Period{Date: periodEnd, Items: statement.LineItems{}})
			n++
		}
		t.Periods[n-1].Items[item] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	if t.Empty() {
		return nil, fmt.Errorf("history for %s: %w", ticker, ErrNotFound)
	}
	return t, nil
}

// SaveForecast inserts the run and all its lines in one transaction.
// Values are written as exact decimals.
func (r *PostgresRepository) SaveForecast(ctx context.Context, rec *ForecastRecord) error {
	params, err := json.Marshal(rec.Parameters)
	if err != nil {
		return fmt.Errorf("failed to marshal parameters: %w", err)
	}
	assumptions, err := json.Marshal(rec.Assumptions)
	if err != nil {
		return fmt.Errorf("failed to marshal assumptions: %w", err)
	}
	check, err := json.Marshal(rec.Check)
	if err != nil {
		return fmt.Errorf("failed to marshal balance check: %w", err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO forecast_runs (run_id, ticker, created_at, balanced, parameters, assumptions, check_report)
		VALUES ($1::uuid, $2, $3, $4, $5, $6, $7)
	`, rec.RunID.String(), rec.Ticker, rec.CreatedAt, rec.Balanced(), params, assumptions, check)
	if err != nil {
		return fmt.Errorf("failed to save forecast run: %w", err)
	}

	if rec.Table != nil {
		batch := &pgx.Batch{}
		for _, row := range rec.Table.Rows {
			items := make([]string, 0, len(row.Period.Items))
			for item := range row.Period.Items {
				items = append(items, item)
			}
			sort.Strings(items)
			for _, item := range items {
				v := row.Period.Items[item]
				batch.Queue(`
					INSERT INTO forecast_lines (run_id, period_end, row_type, line_item, value)
					VALUES ($1::uuid, $2, $3, $4, $5::numeric)
				`, rec.RunID.String(), row.Period.Date, string(row.Kind), item, decimal.NewFromFloat(v).String())
			}
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to save forecast lines: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit forecast: %w", err)
	}
	return nil
}

// LoadForecast returns the most recent run for ticker.
func (r *PostgresRepository) LoadForecast(ctx context.Context, ticker string) (*ForecastRecord, error) {
	var (
		runID                      string
		params, assumptions, check []byte
	)
	rec := &ForecastRecord{Ticker: ticker}
	err := r.db.QueryRow(ctx, `
		SELECT run_id::text, created_at, parameters, assumptions, check_report
		FROM forecast_runs
		WHERE ticker = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, ticker).Scan(&runID, &rec.CreatedAt, &params, &assumptions, &check)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("forecast for %s: %w", ticker, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load forecast run: %w", err)
	}
	if rec.RunID, err = uuid.Parse(runID); err != nil {
		return nil, fmt.Errorf("invalid run id %q: %w", runID, err)
	}
	if err := json.Unmarshal(params, &rec.Parameters); err != nil {
		return nil, fmt.Errorf("failed to unmarshal parameters: %w", err)
	}
	if err := json.Unmarshal(assumptions, &rec.Assumptions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal assumptions: %w", err)
	}
	if err := json.Unmarshal(check, &rec.Check); err != nil {
		return nil, fmt.Errorf("failed to unmarshal balance check: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT period_end, row_type, line_item, value::text
		FROM forecast_lines
		WHERE run_id = $1::uuid
		ORDER BY period_end, line_item
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query forecast lines: %w", err)
	}
	defer rows.Close()

	rec.Table = &statement.CombinedTable{Ticker: ticker}
	for rows.Next() {
		var (
			periodEnd     time.Time
			rowType, item string
			value         string
		)
		if err := rows.Scan(&periodEnd, &rowType, &item, &value); err != nil {
			return nil, fmt.Errorf("failed to scan forecast line: %w", err)
		}
		d, err := decimal.NewFromString(value)
		if err != nil {
			return nil, fmt.Errorf("invalid stored value %q: %w", value, err)
		}
		n := len(rec.Table.Rows)
		if n == 0 || !rec.Table.Rows[n-1].Period.Date.Equal(periodEnd) {
			kind, err := parseKind(rowType)
			if err != nil {
				return nil, err
			}
			rec.Table.Rows = append(rec.Table.Rows, statement.Row{
				Kind:   kind,
				Period: statement.Period{Date: periodEnd, Items: statement.LineItems{}},
			})
			n++
		}
		rec.Table.Rows[n-1].Period.Items[item] = d.InexactFloat64()
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read forecast lines: %w", err)
	}
	return rec, nil
}

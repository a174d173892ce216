package store

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"

	"statement_forecast/pkg/core/forecast"
	"statement_forecast/pkg/core/statement"
)

func newMockRepository(t *testing.T) (pgxmock.PgxPoolIface, *PostgresRepository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock, NewPostgresRepository(mock)
}

func checkExpectations(t *testing.T, mock pgxmock.PgxPoolIface) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet database expectations: %v", err)
	}
}

func TestPostgresRepository_ListCompanies(t *testing.T) {
	mock, repo := newMockRepository(t)
	mock.ExpectQuery("SELECT DISTINCT ticker FROM statement_history").
		WillReturnRows(mock.NewRows([]string{"ticker"}).AddRow("GOOG").AddRow("PYPL"))

	got, err := repo.ListCompanies(context.Background())
	if err != nil {
		t.Fatalf("ListCompanies: %v", err)
	}
	if len(got) != 2 || got[0] != "GOOG" || got[1] != "PYPL" {
		t.Errorf("ListCompanies = %v", got)
	}
	checkExpectations(t, mock)
}

func TestPostgresRepository_LoadHistoryGroupsPeriods(t *testing.T) {
	mock, repo := newMockRepository(t)
	rows := mock.NewRows([]string{"period_end", "line_item", "value"}).
		AddRow(date(2022), statement.Cash, 5.0).
		AddRow(date(2022), statement.TotalRevenue, 100.0).
		AddRow(date(2023), statement.TotalRevenue, 110.0)
	mock.ExpectQuery("FROM statement_history").WithArgs("GOOG").WillReturnRows(rows)

	tbl, err := repo.LoadHistory(context.Background(), "GOOG")
	if err != nil {
		t.Fatalf("LoadHistory: %v", err)
	}
	if tbl.Ticker != "GOOG" || tbl.Len() != 2 {
		t.Fatalf("got ticker %q with %d periods, want GOOG with 2", tbl.Ticker, tbl.Len())
	}
	first := tbl.Periods[0]
	if !first.Date.Equal(date(2022)) || first.Items.Get(statement.Cash) != 5 || first.Items.Get(statement.TotalRevenue) != 100 {
		t.Errorf("first period = %+v", first)
	}
	if last := tbl.Last(); last.Items.Has(statement.Cash) || last.Items.Get(statement.TotalRevenue) != 110 {
		t.Errorf("last period = %+v", last)
	}
	checkExpectations(t, mock)
}

func TestPostgresRepository_LoadHistoryNotFound(t *testing.T) {
	mock, repo := newMockRepository(t)
	mock.ExpectQuery("FROM statement_history").WithArgs("NONE").
		WillReturnRows(mock.NewRows([]string{"period_end", "line_item", "value"}))

	if _, err := repo.LoadHistory(context.Background(), "NONE"); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
	checkExpectations(t, mock)
}

func postgresRecord() *ForecastRecord {
	return &ForecastRecord{
		RunID:      uuid.MustParse("2b7d0c4e-51a9-4f3e-8c21-7d9e6a5b4c3f"),
		Ticker:     "GOOG",
		CreatedAt:  time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC),
		Parameters: forecast.DefaultParameters(),
		Check:      forecast.BalanceReport{Label: "GOOG", Balanced: true},
		Table: &statement.CombinedTable{
			Ticker: "GOOG",
			Rows: []statement.Row{
				{Kind: statement.Historical, Period: statement.Period{
					Date:  date(2023),
					Items: statement.LineItems{statement.TotalRevenue: 121, statement.Cash: 20},
				}},
				{Kind: statement.Forecast, Period: statement.Period{
					Date:  date(2024),
					Items: statement.LineItems{statement.TotalRevenue: 133.1},
				}},
			},
		},
	}
}

func TestPostgresRepository_SaveForecast(t *testing.T) {
	mock, repo := newMockRepository(t)
	rec := postgresRecord()
	id := rec.RunID.String()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO forecast_runs")).
		WithArgs(id, "GOOG", rec.CreatedAt, true, pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	batch := mock.ExpectBatch()
	batch.ExpectExec("INSERT INTO forecast_lines").
		WithArgs(id, date(2023), "Historical", statement.Cash, "20").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	batch.ExpectExec("INSERT INTO forecast_lines").
		WithArgs(id, date(2023), "Historical", statement.TotalRevenue, "121").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	batch.ExpectExec("INSERT INTO forecast_lines").
		WithArgs(id, date(2024), "Forecast", statement.TotalRevenue, "133.1").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	if err := repo.SaveForecast(context.Background(), rec); err != nil {
		t.Fatalf("SaveForecast: %v", err)
	}
	checkExpectations(t, mock)
}

func TestPostgresRepository_SaveForecastRollsBack(t *testing.T) {
	mock, repo := newMockRepository(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO forecast_runs").WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	if err := repo.SaveForecast(context.Background(), postgresRecord()); err == nil {
		t.Fatal("expected an error when the run insert fails")
	}
	checkExpectations(t, mock)
}

func TestPostgresRepository_LoadForecast(t *testing.T) {
	mock, repo := newMockRepository(t)
	rec := postgresRecord()
	params, _ := json.Marshal(rec.Parameters)
	assumptions, _ := json.Marshal(rec.Assumptions)
	check, _ := json.Marshal(rec.Check)

	mock.ExpectQuery("FROM forecast_runs").WithArgs("GOOG").
		WillReturnRows(mock.NewRows([]string{"run_id", "created_at", "parameters", "assumptions", "check_report"}).
			AddRow(rec.RunID.String(), rec.CreatedAt, params, assumptions, check))
	mock.ExpectQuery("FROM forecast_lines").WithArgs(rec.RunID.String()).
		WillReturnRows(mock.NewRows([]string{"period_end", "row_type", "line_item", "value"}).
			AddRow(date(2023), "Historical", statement.Cash, "20").
			AddRow(date(2023), "Historical", statement.TotalRevenue, "121").
			AddRow(date(2024), "Forecast", statement.TotalRevenue, "133.1"))

	got, err := repo.LoadForecast(context.Background(), "GOOG")
	if err != nil {
		t.Fatalf("LoadForecast: %v", err)
	}
	if got.RunID != rec.RunID || got.Parameters != rec.Parameters || !got.Balanced() {
		t.Errorf("run header = %+v", got)
	}
	if len(got.Table.Rows) != 2 || got.Table.Rows[1].Kind != statement.Forecast {
		t.Fatalf("rows = %+v", got.Table.Rows)
	}
	if v := got.Table.Rows[1].Period.Items.Get(statement.TotalRevenue); v != 133.1 {
		t.Errorf("forecast revenue = %v, want 133.1", v)
	}
	checkExpectations(t, mock)
}

func TestPostgresRepository_LoadForecastNotFound(t *testing.T) {
	mock, repo := newMockRepository(t)
	mock.ExpectQuery("FROM forecast_runs").WithArgs("PYPL").WillReturnError(pgx.ErrNoRows)

	if _, err := repo.LoadForecast(context.Background(), "PYPL"); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
	checkExpectations(t, mock)
}

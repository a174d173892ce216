package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"statement_forecast/pkg/core/forecast"
	"statement_forecast/pkg/core/statement"
	"statement_forecast/pkg/core/store"
)

// Sentinel skip reasons.
var (
	ErrNoData           = errors.New("no data")
	ErrNoIncomeForecast = errors.New("could not forecast income statement")
)

// Stages reported by CompanyError.
const (
	StageLoad     = "load"
	StageValidate = "validate"
	StageCompute  = "compute"
	StageSave     = "save"
)

// CompanyError ties a per-company failure to the stage it happened in.
type CompanyError struct {
	Ticker string
	Stage  string
	Err    error
}

func (e *CompanyError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Ticker, e.Stage, e.Err)
}

func (e *CompanyError) Unwrap() error { return e.Err }

// Status is the per-company result of a batch.
type Status string

const (
	Saved   Status = "saved"
	Skipped Status = "skipped"
	Failed  Status = "failed"
)

// Outcome describes what happened to one company.
type Outcome struct {
	Ticker      string        `json:"ticker"`
	Status      Status        `json:"status"`
	RunID       uuid.UUID     `json:"run_id,omitempty"`
	Periods     int           `json:"periods"`
	Balanced    bool          `json:"balanced"`
	Diagnostics []string      `json:"diagnostics,omitempty"`
	Err         error         `json:"-"`
	Duration    time.Duration `json:"duration"`
}

// BatchSummary aggregates the outcomes of a batch, in input order.
type BatchSummary struct {
	Outcomes   []Outcome
	Saved      int
	Skipped    int
	Failed     int
	Unbalanced int
}

func (s *BatchSummary) add(o Outcome) {
	s.Outcomes = append(s.Outcomes, o)
	switch o.Status {
	case Saved:
		s.Saved++
		if !o.Balanced {
			s.Unbalanced++
		}
	case Skipped:
		s.Skipped++
	case Failed:
		s.Failed++
	}
}

// Config tunes the orchestrator.
type Config struct {
	Concurrency int // companies forecast at once (default 1)
}

// Orchestrator runs the forecast for a batch of companies. Companies are
// independent; a failure in one never stops the others.
type Orchestrator struct {
	source store.HistorySource
	sink   store.ForecastSink
	params forecast.Parameters
	config Config

	mu  sync.Mutex // guards out
	out io.Writer

	newID func() uuid.UUID
	now   func() time.Time
}

// NewOrchestrator creates an orchestrator reading from source and writing
// to sink. Log output goes to stdout until SetLogOutput is called.
func NewOrchestrator(source store.HistorySource, sink store.ForecastSink, params forecast.Parameters) *Orchestrator {
	return &Orchestrator{
		source: source,
		sink:   sink,
		params: params,
		config: Config{Concurrency: 1},
		out:    os.Stdout,
		newID:  uuid.New,
		now:    time.Now,
	}
}

// SetLogOutput redirects the log stream (e.g., for testing).
func (o *Orchestrator) SetLogOutput(w io.Writer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.out = w
}

// SetConfig updates the orchestrator configuration.
func (o *Orchestrator) SetConfig(cfg Config) {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	o.config = cfg
}

// RunBatch forecasts every ticker in tickers, or every company the source
// lists when tickers is empty. The returned error is non-nil only when the
// listing itself fails.
func (o *Orchestrator) RunBatch(ctx context.Context, tickers []string) (*BatchSummary, error) {
	if len(tickers) == 0 {
		listed, err := o.source.ListCompanies(ctx)
		if err != nil {
			return nil, fmt.Errorf("list companies: %w", err)
		}
		tickers = listed
	}

	o.logf("[PIPELINE] Forecasting %d companies (concurrency %d)...\n", len(tickers), o.config.Concurrency)
	start := time.Now()

	outcomes := make([]Outcome, len(tickers))
	var g errgroup.Group
	g.SetLimit(o.config.Concurrency)
	for i, ticker := range tickers {
		g.Go(func() error {
			outcomes[i] = o.RunForCompany(ctx, ticker)
			return nil
		})
	}
	_ = g.Wait() // per-company errors are carried in outcomes

	summary := &BatchSummary{}
	for _, out := range outcomes {
		summary.add(out)
	}
	o.logf("[PIPELINE] Batch complete in %v: %d saved (%d unbalanced), %d skipped, %d failed\n",
		time.Since(start).Round(time.Millisecond), summary.Saved, summary.Unbalanced, summary.Skipped, summary.Failed)
	return summary, nil
}

// RunForCompany loads, forecasts, checks and saves one company. Its log
// lines are written as one block so concurrent companies do not interleave.
// A panic anywhere in the company's run becomes a Failed outcome.
func (o *Orchestrator) RunForCompany(ctx context.Context, ticker string) (outcome Outcome) {
	var buf bytes.Buffer
	start := time.Now()
	stage := StageLoad

	defer func() {
		if r := recover(); r != nil {
			outcome = Outcome{
				Ticker: ticker,
				Status: Failed,
				Err:    &CompanyError{Ticker: ticker, Stage: stage, Err: fmt.Errorf("panic: %v", r)},
			}
			fmt.Fprintf(&buf, "Error forecasting %s: %v\n", ticker, outcome.Err)
		}
		outcome.Duration = time.Since(start)
		o.flush(&buf)
	}()

	return o.runForCompany(ctx, ticker, &buf, &stage)
}

func (o *Orchestrator) runForCompany(ctx context.Context, ticker string, log io.Writer, stage *string) Outcome {
	fmt.Fprintf(log, "[PIPELINE] Forecasting %s...\n", ticker)
	outcome := Outcome{Ticker: ticker}

	fail := func(stage string, err error) Outcome {
		outcome.Status = Failed
		outcome.Err = &CompanyError{Ticker: ticker, Stage: stage, Err: err}
		fmt.Fprintf(log, "Error forecasting %s: %v\n", ticker, outcome.Err)
		return outcome
	}

	if err := ctx.Err(); err != nil {
		return fail(StageLoad, err)
	}

	// 1. Load
	hist, err := o.source.LoadHistory(ctx, ticker)
	if errors.Is(err, store.ErrNotFound) || (err == nil && hist.Empty()) {
		outcome.Status = Skipped
		outcome.Err = &CompanyError{Ticker: ticker, Stage: StageLoad, Err: ErrNoData}
		fmt.Fprintf(log, "No data for %s\n", ticker)
		return outcome
	}
	if err != nil {
		return fail(StageLoad, err)
	}

	// 2. Forecast
	*stage = StageCompute
	rec, res, err := BuildRecord(hist, o.params, o.newID(), o.now())
	switch {
	case errors.Is(err, ErrNoIncomeForecast):
		outcome.Status = Skipped
		outcome.Err = &CompanyError{Ticker: ticker, Stage: StageCompute, Err: err}
		fmt.Fprintf(log, "  Could not forecast IS for %s\n", ticker)
		return outcome
	case err != nil:
		var ce *CompanyError
		if errors.As(err, &ce) {
			return fail(ce.Stage, ce.Err)
		}
		return fail(StageCompute, err)
	}

	fmt.Fprintf(log, "  Checking balance sheet for %s...\n", ticker)
	outcome.Diagnostics = res.Check.Lines()
	for _, line := range outcome.Diagnostics {
		fmt.Fprintf(log, "  %s\n", line)
	}
	outcome.Balanced = res.Balanced()
	outcome.Periods = len(res.Income)
	outcome.RunID = rec.RunID

	// 3. Save. An unbalanced forecast is still persisted.
	*stage = StageSave
	if err := o.sink.SaveForecast(ctx, rec); err != nil {
		return fail(StageSave, err)
	}
	outcome.Status = Saved
	fmt.Fprintf(log, "  Saved forecast for %s (run %s)\n", ticker, rec.RunID)
	return outcome
}

// BuildRecord sorts and validates hist, runs the forecast and combines the
// result with the history. hist is not modified. A panic inside the
// forecast is returned as a compute-stage CompanyError.
func BuildRecord(hist *statement.Table, params forecast.Parameters, runID uuid.UUID, now time.Time) (rec *store.ForecastRecord, res *forecast.Result, err error) {
	ticker := ""
	if hist != nil {
		ticker = hist.Ticker
	}
	if hist.Empty() {
		return nil, nil, ErrNoData
	}

	sorted := hist.Sorted()
	if err := sorted.Validate(); err != nil {
		return nil, nil, &CompanyError{Ticker: ticker, Stage: StageValidate, Err: err}
	}

	res, err = safeRun(sorted, params)
	if err != nil {
		return nil, nil, &CompanyError{Ticker: ticker, Stage: StageCompute, Err: err}
	}
	if res.Empty() {
		return nil, res, ErrNoIncomeForecast
	}

	rec = &store.ForecastRecord{
		RunID:       runID,
		Ticker:      ticker,
		CreatedAt:   now.UTC(),
		Parameters:  params,
		Assumptions: res.Assumptions,
		Check:       res.Check,
		Table:       statement.Combine(sorted, res.Table()),
	}
	return rec, res, nil
}

func safeRun(hist *statement.Table, params forecast.Parameters) (res *forecast.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during forecast: %v", r)
		}
	}()
	return forecast.Run(hist, params), nil
}

func (o *Orchestrator) logf(format string, args ...any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fmt.Fprintf(o.out, format, args...)
}

func (o *Orchestrator) flush(buf *bytes.Buffer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, _ = o.out.Write(buf.Bytes())
}

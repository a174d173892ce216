package forecast

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"statement_forecast/pkg/core/forecast"
	"statement_forecast/pkg/core/pipeline"
	"statement_forecast/pkg/core/statement"
	"statement_forecast/pkg/core/store"
)

// PeriodPayload is one period on the wire.
type PeriodPayload struct {
	Date  string             `json:"date" binding:"required"`
	Type  string             `json:"type,omitempty"`
	Items map[string]float64 `json:"items"`
}

// ForecastRequest is the body of POST /api/v1/forecast.
type ForecastRequest struct {
	Ticker     string               `json:"ticker" binding:"required"`
	Periods    []PeriodPayload      `json:"periods" binding:"required,min=1,dive"`
	Parameters *forecast.Parameters `json:"parameters,omitempty"`
	Save       *bool                `json:"save,omitempty"`
}

// Table converts the request into a historical table.
func (r ForecastRequest) Table() (*statement.Table, error) {
	t := &statement.Table{Ticker: strings.ToUpper(strings.TrimSpace(r.Ticker))}
	for i, p := range r.Periods {
		date, err := store.ParseDate(p.Date)
		if err != nil {
			return nil, fmt.Errorf("periods[%d]: %w", i, err)
		}
		items := statement.LineItems(p.Items)
		if items == nil {
			items = statement.LineItems{}
		}
		t.Periods = append(t.Periods, statement.Period{Date: date, Items: items.Clone()})
	}
	return t, nil
}

// ForecastResponse is a forecast run on the wire.
type ForecastResponse struct {
	RunID       string                 `json:"run_id"`
	Ticker      string                 `json:"ticker"`
	CreatedAt   time.Time              `json:"created_at"`
	Saved       bool                   `json:"saved"`
	Balanced    bool                   `json:"balanced"`
	Parameters  forecast.Parameters    `json:"parameters"`
	Assumptions forecast.Assumptions   `json:"assumptions"`
	Check       forecast.BalanceReport `json:"check"`
	Diagnostics []string               `json:"diagnostics"`
	Columns     []string               `json:"columns"`
	Rows        []PeriodPayload        `json:"rows"`
}

// NewForecastResponse renders rec for the API.
func NewForecastResponse(rec *store.ForecastRecord, saved bool) ForecastResponse {
	resp := ForecastResponse{
		RunID:       rec.RunID.String(),
		Ticker:      rec.Ticker,
		CreatedAt:   rec.CreatedAt,
		Saved:       saved,
		Balanced:    rec.Balanced(),
		Parameters:  rec.Parameters,
		Assumptions: rec.Assumptions,
		Check:       rec.Check,
		Diagnostics: rec.Check.Lines(),
		Rows:        []PeriodPayload{},
	}
	if rec.Table != nil {
		resp.Columns = rec.Table.Columns()
		for _, row := range rec.Table.Rows {
			resp.Rows = append(resp.Rows, PeriodPayload{
				Date:  row.Period.Date.Format(statement.DateLayout),
				Type:  string(row.Kind),
				Items: row.Period.Items,
			})
		}
	}
	return resp
}

// OutcomeResponse is the result of forecasting one stored company.
type OutcomeResponse struct {
	Ticker      string   `json:"ticker"`
	Status      string   `json:"status"`
	RunID       string   `json:"run_id,omitempty"`
	Periods     int      `json:"periods"`
	Balanced    bool     `json:"balanced"`
	Diagnostics []string `json:"diagnostics,omitempty"`
	Error       string   `json:"error,omitempty"`
	DurationMS  int64    `json:"duration_ms"`
}

// NewOutcomeResponse renders a pipeline outcome for the API.
func NewOutcomeResponse(o pipeline.Outcome) OutcomeResponse {
	resp := OutcomeResponse{
		Ticker:      o.Ticker,
		Status:      string(o.Status),
		Periods:     o.Periods,
		Balanced:    o.Balanced,
		Diagnostics: o.Diagnostics,
		DurationMS:  o.Duration.Milliseconds(),
	}
	if o.Status == pipeline.Saved {
		resp.RunID = o.RunID.String()
	}
	if o.Err != nil {
		resp.Error = o.Err.Error()
	}
	return resp
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorHandler recovers panics in handlers into an INTERNAL_ERROR response.
func ErrorHandler() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		message := "An unexpected error occurred"
		if s, ok := recovered.(string); ok {
			message = s
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
			Error: ErrorDetail{Code: "INTERNAL_ERROR", Message: message},
		})
	})
}

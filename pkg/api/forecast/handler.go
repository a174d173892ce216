package forecast

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"statement_forecast/pkg/core/forecast"
	"statement_forecast/pkg/core/pipeline"
	"statement_forecast/pkg/core/report"
	"statement_forecast/pkg/core/statement"
	"statement_forecast/pkg/core/store"
)

// Settings supplies the parameters and report options in effect.
type Settings interface {
	Parameters() forecast.Parameters
	ReportOptions() report.Options
}

// Handler serves forecasts computed on demand and forecasts already stored.
type Handler struct {
	repo         store.Repository
	settings     Settings
	saveOnDemand bool

	newID func() uuid.UUID
	now   func() time.Time
	logs  io.Writer
}

// NewHandler creates a forecast handler. When saveOnDemand is set, POST
// /forecast persists what it computes unless the request says otherwise.
func NewHandler(repo store.Repository, settings Settings, saveOnDemand bool) *Handler {
	return &Handler{
		repo:         repo,
		settings:     settings,
		saveOnDemand: saveOnDemand,
		newID:        uuid.New,
		now:          time.Now,
		logs:         gin.DefaultWriter,
	}
}

// Register mounts the forecast routes on r.
func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/companies", h.ListCompanies)
	r.POST("/forecast", h.CreateForecast)
	r.POST("/forecast/:ticker/run", h.RunStored)
	r.GET("/forecast/:ticker", h.GetForecast)
	r.GET("/forecast/:ticker/report", h.GetReport)
}

// Health handles GET /health
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListCompanies handles GET /api/v1/companies
func (h *Handler) ListCompanies(c *gin.Context) {
	tickers, err := h.repo.ListCompanies(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "STORE_ERROR", err)
		return
	}
	if tickers == nil {
		tickers = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"companies": tickers})
}

// CreateForecast handles POST /api/v1/forecast: forecasts the history in
// the request body.
func (h *Handler) CreateForecast(c *gin.Context) {
	// Fields missing from "parameters" keep their active value.
	active := h.settings.Parameters()
	req := ForecastRequest{Parameters: &active}
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return
	}

	hist, err := req.Table()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return
	}
	params := h.settings.Parameters()
	if req.Parameters != nil {
		params = *req.Parameters
	}
	if err := params.Validate(); err != nil {
		abortWithError(c, http.StatusUnprocessableEntity, "INVALID_PARAMETERS", err)
		return
	}

	rec, _, err := pipeline.BuildRecord(hist, params, h.newID(), h.now())
	if err != nil {
		status, code := classify(err)
		abortWithError(c, status, code, err)
		return
	}

	save := h.saveOnDemand
	if req.Save != nil {
		save = *req.Save
	}
	if save {
		if err := h.repo.SaveForecast(c.Request.Context(), rec); err != nil {
			abortWithError(c, http.StatusInternalServerError, "STORE_ERROR", err)
			return
		}
		fmt.Fprintf(h.logs, "[API] Saved on-demand forecast for %s (run %s)\n", rec.Ticker, rec.RunID)
	}
	c.JSON(http.StatusOK, NewForecastResponse(rec, save))
}

// RunStored handles POST /api/v1/forecast/:ticker/run: forecasts the stored
// history of one company and saves the result, as a batch run would.
func (h *Handler) RunStored(c *gin.Context) {
	ticker := strings.ToUpper(c.Param("ticker"))
	o := pipeline.NewOrchestrator(h.repo, h.repo, h.settings.Parameters())
	o.SetLogOutput(h.logs)

	outcome := o.RunForCompany(c.Request.Context(), ticker)
	switch outcome.Status {
	case pipeline.Saved:
		c.JSON(http.StatusOK, NewOutcomeResponse(outcome))
	case pipeline.Skipped:
		status := http.StatusUnprocessableEntity
		if errors.Is(outcome.Err, pipeline.ErrNoData) {
			status = http.StatusNotFound
		}
		c.JSON(status, NewOutcomeResponse(outcome))
	default:
		status, _ := classify(outcome.Err)
		c.JSON(status, NewOutcomeResponse(outcome))
	}
}

// GetForecast handles GET /api/v1/forecast/:ticker
func (h *Handler) GetForecast(c *gin.Context) {
	rec, ok := h.loadForecast(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, NewForecastResponse(rec, true))
}

// GetReport handles GET /api/v1/forecast/:ticker/report. The format query
// parameter selects "html" (default) or "markdown".
func (h *Handler) GetReport(c *gin.Context) {
	rec, ok := h.loadForecast(c)
	if !ok {
		return
	}
	opts := h.settings.ReportOptions()
	if cur := c.Query("currency"); cur != "" {
		opts.Currency = strings.ToUpper(cur)
	}

	switch format := c.DefaultQuery("format", "html"); format {
	case "html":
		body, err := report.HTML(rec, opts)
		if err != nil {
			abortWithError(c, http.StatusInternalServerError, "REPORT_ERROR", err)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(body))
	case "markdown", "md":
		body, err := report.Markdown(rec, opts)
		if err != nil {
			abortWithError(c, http.StatusInternalServerError, "REPORT_ERROR", err)
			return
		}
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(body))
	default:
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", fmt.Errorf("unknown report format %q", format))
	}
}

func (h *Handler) loadForecast(c *gin.Context) (*store.ForecastRecord, bool) {
	ticker := strings.ToUpper(c.Param("ticker"))
	rec, err := h.repo.LoadForecast(c.Request.Context(), ticker)
	if errors.Is(err, store.ErrNotFound) {
		abortWithError(c, http.StatusNotFound, "NOT_FOUND", fmt.Errorf("no stored forecast for %s", ticker))
		return nil, false
	}
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "STORE_ERROR", err)
		return nil, false
	}
	return rec, true
}

// classify maps forecast errors to an HTTP status and error code.
func classify(err error) (int, string) {
	var malformed *statement.MalformedTableError
	switch {
	case errors.Is(err, pipeline.ErrNoData):
		return http.StatusBadRequest, "NO_DATA"
	case errors.Is(err, pipeline.ErrNoIncomeForecast):
		return http.StatusUnprocessableEntity, "NO_REVENUE"
	case errors.As(err, &malformed):
		return http.StatusBadRequest, "MALFORMED_TABLE"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "CANCELED"
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	}
	return http.StatusInternalServerError, "FORECAST_ERROR"
}

func abortWithError(c *gin.Context, status int, code string, err error) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorDetail{Code: code, Message: err.Error()},
	})
}

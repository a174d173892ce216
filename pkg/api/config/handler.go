package config

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"statement_forecast/pkg/core/forecast"
	"statement_forecast/pkg/core/report"
)

// Response is the active configuration as served by GET /config.
type Response struct {
	Parameters forecast.Parameters `json:"parameters"`
	Report     report.Options      `json:"report"`
	Defaults   forecast.Parameters `json:"defaults"`
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

// Settings holds the forecast parameters currently used for on-demand
// forecasts. It is safe for concurrent use.
type Settings struct {
	mu     sync.RWMutex
	params forecast.Parameters
	report report.Options
}

// NewSettings starts from params and opts.
func NewSettings(params forecast.Parameters, opts report.Options) *Settings {
	return &Settings{params: params, report: opts}
}

// Parameters returns the active parameters.
func (s *Settings) Parameters() forecast.Parameters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params
}

// ReportOptions returns the active report options.
func (s *Settings) ReportOptions() report.Options {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.report
}

// SetParameters validates and activates p.
func (s *Settings) SetParameters(p forecast.Parameters) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params = p
	return nil
}

// Handler holds dependencies for config endpoints
type Handler struct {
	Settings *Settings
}

// NewHandler creates a new config handler
func NewHandler(settings *Settings) *Handler {
	return &Handler{Settings: settings}
}

// Register mounts the config routes on r.
func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/config", h.GetConfig)
	r.PUT("/config/parameters", h.UpdateParameters)
}

// GetConfig handles GET /api/v1/config
func (h *Handler) GetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, h.response())
}

// UpdateParameters handles PUT /api/v1/config/parameters. Fields missing
// from the body keep their current value.
func (h *Handler) UpdateParameters(c *gin.Context) {
	params := h.Settings.Parameters()
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: ErrorDetail{Code: "INVALID_REQUEST", Message: err.Error()},
		})
		return
	}
	if err := h.Settings.SetParameters(params); err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error: ErrorDetail{Code: "INVALID_PARAMETERS", Message: err.Error()},
		})
		return
	}
	c.JSON(http.StatusOK, h.response())
}

func (h *Handler) response() Response {
	return Response{
		Parameters: h.Settings.Parameters(),
		Report:     h.Settings.ReportOptions(),
		Defaults:   forecast.DefaultParameters(),
	}
}

// Package forecast projects the income statement, balance sheet and cash flow
// statement of one company forward from its historical annual table, then
// reconciles cash and checks the accounting identity of the projection.
//
// Stages run strictly in order:
//
//	EstimateGrowth -> ProjectIncome -> ProjectBalance -> ProjectCashFlow
//	-> RollForwardCash (completes the balance sheet) -> CheckBalance
//
// Run sequences all of them for one company.
package forecast

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidParameters is wrapped by Parameters.Validate.
var ErrInvalidParameters = errors.New("invalid forecast parameters")

// Parameters configures one forecast run.
type Parameters struct {
	HorizonYears        int     `yaml:"forecast_horizon_years" json:"forecast_horizon_years"`
	TrailingWindowYears int     `yaml:"trailing_window_years" json:"trailing_window_years"`
	GrowthLookbackYears int     `yaml:"growth_lookback_years" json:"growth_lookback_years"`
	DefaultGrowthRate   float64 `yaml:"default_growth_rate" json:"default_growth_rate"`
	DefaultTaxRate      float64 `yaml:"default_tax_rate" json:"default_tax_rate"`
	BalanceTolerance    float64 `yaml:"balance_tolerance" json:"balance_tolerance"` // absolute, currency units
}

// Defaults
const (
	DefaultHorizonYears        = 5
	DefaultTrailingWindowYears = 3
	DefaultGrowthLookbackYears = 4
	DefaultGrowthRate          = 0.05
	DefaultTaxRate             = 0.20
	DefaultBalanceTolerance    = 0.01
)

// DefaultParameters returns the standard configuration.
func DefaultParameters() Parameters {
	return Parameters{
		HorizonYears:        DefaultHorizonYears,
		TrailingWindowYears: DefaultTrailingWindowYears,
		GrowthLookbackYears: DefaultGrowthLookbackYears,
		DefaultGrowthRate:   DefaultGrowthRate,
		DefaultTaxRate:      DefaultTaxRate,
		BalanceTolerance:    DefaultBalanceTolerance,
	}
}

// Validate reports the first unusable setting.
func (p Parameters) Validate() error {
	switch {
	case p.HorizonYears <= 0:
		return fmt.Errorf("%w: forecast_horizon_years must be positive, got %d", ErrInvalidParameters, p.HorizonYears)
	case p.TrailingWindowYears <= 0:
		return fmt.Errorf("%w: trailing_window_years must be positive, got %d", ErrInvalidParameters, p.TrailingWindowYears)
	case p.GrowthLookbackYears <= 0:
		return fmt.Errorf("%w: growth_lookback_years must be positive, got %d", ErrInvalidParameters, p.GrowthLookbackYears)
	case !finite(p.DefaultGrowthRate):
		return fmt.Errorf("%w: default_growth_rate must be finite", ErrInvalidParameters)
	case !finite(p.DefaultTaxRate):
		return fmt.Errorf("%w: default_tax_rate must be finite", ErrInvalidParameters)
	case !finite(p.BalanceTolerance) || p.BalanceTolerance < 0:
		return fmt.Errorf("%w: balance_tolerance must be a finite value >= 0, got %v", ErrInvalidParameters, p.BalanceTolerance)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

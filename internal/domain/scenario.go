package domain

import (
	"github.com/shopspring/decimal"
)

// ScenarioParameters is one economic path evaluated independently. Immutable
// once constructed.
type ScenarioParameters struct {
	Label string `yaml:"label" json:"label"`

	// GrowthReturn is the nominal mean return of the growth tier (bucket3)
	// and of pension balances.
	GrowthReturn     decimal.Decimal `yaml:"growth_return" json:"growth_return"`
	ReturnVolatility decimal.Decimal `yaml:"return_volatility" json:"return_volatility"`
	InflationRate    decimal.Decimal `yaml:"inflation_rate" json:"inflation_rate"`

	// Per-tier returns for the defensive buckets.
	CashReturn decimal.Decimal `yaml:"cash_return" json:"cash_return"`
	BondReturn decimal.Decimal `yaml:"bond_return" json:"bond_return"`
}

// YearReturn is one year of a pre-generated return path. The simulator
// consumes paths and performs no sampling itself, which keeps every run
// deterministic and bit-identical on replay.
type YearReturn struct {
	Growth    decimal.Decimal `json:"growth"`
	Bond      decimal.Decimal `json:"bond"`
	Cash      decimal.Decimal `json:"cash"`
	Inflation decimal.Decimal `json:"inflation"`
}

// Path expands the scenario into a constant return path of the given length.
func (p *ScenarioParameters) Path(years int) []YearReturn {
	path := make([]YearReturn, years)
	for i := range path {
		path[i] = YearReturn{
			Growth:    p.GrowthReturn,
			Bond:      p.BondReturn,
			Cash:      p.CashReturn,
			Inflation: p.InflationRate,
		}
	}
	return path
}

// Validate rejects rates outside a plausible band.
func (p *ScenarioParameters) Validate() error {
	if p.Label == "" {
		return &InvalidInputError{Field: "scenario.label", Reason: "must not be empty"}
	}
	minusOne := decimal.NewFromInt(-1)
	for _, r := range []decimal.Decimal{p.GrowthReturn, p.BondReturn, p.CashReturn} {
		if r.LessThanOrEqual(minusOne) {
			return &InvalidInputError{Field: "scenario." + p.Label, Reason: "return rate must exceed -100%"}
		}
	}
	if p.InflationRate.LessThan(decimal.NewFromFloat(-0.10)) || p.InflationRate.GreaterThan(decimal.NewFromFloat(0.20)) {
		return &InvalidInputError{Field: "scenario." + p.Label, Reason: "inflation rate must be between -10% and 20%"}
	}
	if p.ReturnVolatility.IsNegative() {
		return &InvalidInputError{Field: "scenario." + p.Label, Reason: "volatility must not be negative"}
	}
	return nil
}

// DefaultScenarios returns the three standard economic paths.
func DefaultScenarios() []ScenarioParameters {
	return []ScenarioParameters{
		{
			Label:            "conservative",
			GrowthReturn:     decimal.NewFromFloat(0.030),
			ReturnVolatility: decimal.NewFromFloat(0.18),
			InflationRate:    decimal.NewFromFloat(0.030),
			CashReturn:       decimal.NewFromFloat(0.015),
			BondReturn:       decimal.NewFromFloat(0.025),
		},
		{
			Label:            "base",
			GrowthReturn:     decimal.NewFromFloat(0.050),
			ReturnVolatility: decimal.NewFromFloat(0.18),
			InflationRate:    decimal.NewFromFloat(0.020),
			CashReturn:       decimal.NewFromFloat(0.020),
			BondReturn:       decimal.NewFromFloat(0.035),
		},
		{
			Label:            "aggressive",
			GrowthReturn:     decimal.NewFromFloat(0.070),
			ReturnVolatility: decimal.NewFromFloat(0.18),
			InflationRate:    decimal.NewFromFloat(0.020),
			CashReturn:       decimal.NewFromFloat(0.020),
			BondReturn:       decimal.NewFromFloat(0.040),
		},
	}
}

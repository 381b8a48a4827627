package domain

import (
	"github.com/shopspring/decimal"
)

// GuaranteedIncome is one income stream with a fixed start age: a public
// pension, an annuity, rent. Streams marked PublicPension end the bridge
// period once started.
type GuaranteedIncome struct {
	Name          string          `yaml:"name" json:"name"`
	MonthlyAmount decimal.Decimal `yaml:"monthly_amount" json:"monthly_amount"`
	StartAge      int             `yaml:"start_age" json:"start_age"`

	// StartMonth (1-12) pro-rates the first year for streams starting
	// mid-year. Zero means January.
	StartMonth int `yaml:"start_month,omitempty" json:"start_month,omitempty"`

	PublicPension bool `yaml:"public_pension,omitempty" json:"public_pension,omitempty"`
}

// MonthsReceived returns how many months of the stream are paid out at the
// given age: zero before the start age, pro-rated in the start year, twelve
// after.
func (g *GuaranteedIncome) MonthsReceived(age int) int {
	switch {
	case age < g.StartAge:
		return 0
	case age == g.StartAge && g.StartMonth > 1:
		return 13 - g.StartMonth
	default:
		return 12
	}
}

// AnnualAmount is the cash paid by the stream at the given age.
func (g *GuaranteedIncome) AnnualAmount(age int) decimal.Decimal {
	months := g.MonthsReceived(age)
	if months == 0 {
		return decimal.Zero
	}
	return g.MonthlyAmount.Mul(decimal.NewFromInt(int64(months)))
}

// Validate checks a single stream.
func (g *GuaranteedIncome) Validate() error {
	if g.MonthlyAmount.IsNegative() {
		return &InvalidInputError{Field: "income.monthly_amount", Reason: "must not be negative"}
	}
	if g.StartAge < 0 {
		return &InvalidInputError{Field: "income.start_age", Reason: "must not be negative"}
	}
	if g.StartMonth < 0 || g.StartMonth > 12 {
		return &InvalidInputError{Field: "income.start_month", Reason: "must be between 1 and 12"}
	}
	return nil
}

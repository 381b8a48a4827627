package domain

import (
	"github.com/shopspring/decimal"
)

// TaxBracket is one rung of a marginal schedule. Max is exclusive of the next
// bracket's Min; the top bracket uses a very large Max.
type TaxBracket struct {
	Min  decimal.Decimal `yaml:"min" json:"min"`
	Max  decimal.Decimal `yaml:"max" json:"max"`
	Rate decimal.Decimal `yaml:"rate" json:"rate"`
}

// TaxRuleTable carries the marginal schedules per withdrawal source for one
// rule year. It is constructed once, passed explicitly into the engine, and
// never mutated, so parallel scenario runs and future rule years cannot
// interfere.
type TaxRuleTable struct {
	Year      int                     `yaml:"year" json:"year"`
	Schedules map[string][]TaxBracket `yaml:"schedules" json:"schedules"`

	// LowTaxThreshold is the annual withdrawal ceiling per pension account
	// under which the low separated rates apply. Above it the allocator
	// routes the excess elsewhere when it can.
	LowTaxThreshold decimal.Decimal `yaml:"low_tax_threshold" json:"low_tax_threshold"`
}

// SourceKey names a schedule entry: the account kind for general and tax-free
// wrapper accounts, the sub-balance name for pension money.
func SourceKey(kind AccountKind, src PensionSource) string {
	if kind == AccountPension {
		return string(src)
	}
	return string(kind)
}

// Schedule returns the marginal schedule for a source, or a
// ConfigurationGapError when the table has no entry for it.
func (t *TaxRuleTable) Schedule(key string) ([]TaxBracket, error) {
	brackets, ok := t.Schedules[key]
	if !ok {
		return nil, &ConfigurationGapError{Source: key, Year: t.Year}
	}
	return brackets, nil
}

// MarginalTax walks the schedule for a source and returns the tax on a
// withdrawal slice, given how much has already been withdrawn from the same
// source this year (prior withdrawals consume the lower rungs).
func (t *TaxRuleTable) MarginalTax(key string, alreadyWithdrawn, amount decimal.Decimal) (decimal.Decimal, error) {
	brackets, err := t.Schedule(key)
	if err != nil {
		return decimal.Zero, err
	}
	tax := decimal.Zero
	from := alreadyWithdrawn
	to := alreadyWithdrawn.Add(amount)
	for _, b := range brackets {
		if to.LessThanOrEqual(b.Min) {
			break
		}
		lo := decimal.Max(from, b.Min)
		hi := decimal.Min(to, b.Max)
		if hi.GreaterThan(lo) {
			tax = tax.Add(hi.Sub(lo).Mul(b.Rate))
		}
	}
	return tax, nil
}

// Validate checks that every schedule is usable: no empty schedules, no
// negative rates, bounds in order. Brackets must be ascending and
// non-overlapping; MarginalTax walks them in slice order.
func (t *TaxRuleTable) Validate() error {
	if len(t.Schedules) == 0 {
		return &InvalidInputError{Field: "tax_rules.schedules", Reason: "no schedules configured"}
	}
	if t.LowTaxThreshold.IsNegative() {
		return &InvalidInputError{Field: "tax_rules.low_tax_threshold", Reason: "must not be negative"}
	}
	for key, brackets := range t.Schedules {
		if len(brackets) == 0 {
			return &ConfigurationGapError{Source: key, Year: t.Year}
		}
		for i, b := range brackets {
			if b.Rate.IsNegative() {
				return &InvalidInputError{Field: "tax_rules." + key, Reason: "bracket rate is negative"}
			}
			if b.Max.LessThanOrEqual(b.Min) {
				return &InvalidInputError{Field: "tax_rules." + key, Reason: "bracket max must exceed min"}
			}
			if i > 0 && b.Min.LessThan(brackets[i-1].Max) {
				return &InvalidInputError{Field: "tax_rules." + key, Reason: "brackets must be ascending and non-overlapping"}
			}
		}
	}
	return nil
}

// bracketTop stands in for an unbounded top bracket.
var bracketTop = decimal.NewFromInt(999_999_999_999)

// flatSchedule builds a single-bracket schedule at one rate.
func flatSchedule(rate float64) []TaxBracket {
	return []TaxBracket{{Min: decimal.Zero, Max: bracketTop, Rate: decimal.NewFromFloat(rate)}}
}

// DefaultTaxRules2025 returns the 2025-vintage rule table: flat withholding
// on general-account withdrawals, zero on the wrapper and pension principal,
// a reduced flat rate on deferred severance, and the separated low-rate
// schedule on taxable pension contributions.
func DefaultTaxRules2025() *TaxRuleTable {
	return &TaxRuleTable{
		Year: 2025,
		Schedules: map[string][]TaxBracket{
			string(AccountGeneral):          flatSchedule(0.154),
			string(AccountTaxFreeWrapper):   flatSchedule(0),
			string(SourceTaxFreePrincipal):  flatSchedule(0),
			string(SourceDeferredSeverance): flatSchedule(0.022),
			string(SourceTaxableContribution): {
				{Min: decimal.Zero, Max: decimal.NewFromInt(14_000_000), Rate: decimal.NewFromFloat(0.033)},
				{Min: decimal.NewFromInt(14_000_000), Max: decimal.NewFromInt(45_000_000), Rate: decimal.NewFromFloat(0.044)},
				{Min: decimal.NewFromInt(45_000_000), Max: bracketTop, Rate: decimal.NewFromFloat(0.055)},
			},
		},
		LowTaxThreshold: decimal.NewFromInt(14_000_000),
	}
}

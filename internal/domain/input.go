package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// GuardrailConfig holds the thresholds for the dynamic withdrawal rule. The
// freeze windows are deliberately configuration, not constants: the right
// lengths depend on the horizon and are an input decision.
type GuardrailConfig struct {
	// UpperThreshold and LowerThreshold are fractional deviations of the
	// current withdrawal rate from the initial rate (0.25 = 25%).
	UpperThreshold decimal.Decimal `yaml:"upper_threshold" json:"upper_threshold"`
	LowerThreshold decimal.Decimal `yaml:"lower_threshold" json:"lower_threshold"`

	// AdjustmentRate is the cut/raise applied on a hit (0.10 = 10%).
	AdjustmentRate decimal.Decimal `yaml:"adjustment_rate" json:"adjustment_rate"`

	// MaxAnnualAdjustment caps any single-year change relative to the prior
	// year's withdrawal (0.20 = 20%).
	MaxAnnualAdjustment decimal.Decimal `yaml:"max_annual_adjustment" json:"max_annual_adjustment"`

	// FreezeInitialYears suppresses cuts early in retirement; short-term
	// noise should not slash spending in year two.
	FreezeInitialYears int `yaml:"freeze_initial_years" json:"freeze_initial_years"`

	// FreezeFinalYears suppresses raises near the end of the horizon to
	// preserve the spending floor.
	FreezeFinalYears int `yaml:"freeze_final_years" json:"freeze_final_years"`
}

// DefaultGuardrailConfig mirrors the standard Guyton-Klinger parameters.
func DefaultGuardrailConfig() GuardrailConfig {
	return GuardrailConfig{
		UpperThreshold:      decimal.NewFromFloat(0.20),
		LowerThreshold:      decimal.NewFromFloat(0.20),
		AdjustmentRate:      decimal.NewFromFloat(0.10),
		MaxAnnualAdjustment: decimal.NewFromFloat(0.20),
		FreezeInitialYears:  5,
		FreezeFinalYears:    15,
	}
}

// Validate rejects unusable guardrail settings.
func (g *GuardrailConfig) Validate() error {
	if g.UpperThreshold.LessThanOrEqual(decimal.Zero) || g.LowerThreshold.LessThanOrEqual(decimal.Zero) {
		return &InvalidInputError{Field: "guardrail.thresholds", Reason: "thresholds must be positive"}
	}
	if g.AdjustmentRate.LessThanOrEqual(decimal.Zero) || g.AdjustmentRate.GreaterThan(decimal.NewFromFloat(0.5)) {
		return &InvalidInputError{Field: "guardrail.adjustment_rate", Reason: "must be between 0 and 50%"}
	}
	if g.MaxAnnualAdjustment.LessThanOrEqual(decimal.Zero) {
		return &InvalidInputError{Field: "guardrail.max_annual_adjustment", Reason: "must be positive"}
	}
	if g.FreezeInitialYears < 0 || g.FreezeFinalYears < 0 {
		return &InvalidInputError{Field: "guardrail.freeze", Reason: "freeze windows must not be negative"}
	}
	return nil
}

// BucketConfig sizes the three liquidity tiers.
type BucketConfig struct {
	// Bucket1Years is the cash tier target in years of current annual need.
	Bucket1Years int `yaml:"bucket1_years" json:"bucket1_years"`

	// Bucket2Years is the intermediate tier target used when rebalancing.
	Bucket2Years int `yaml:"bucket2_years" json:"bucket2_years"`

	// RebalanceInterval is how often (in years) bucket2/bucket3 weights are
	// restored; refill of bucket1 happens every year regardless.
	RebalanceInterval int `yaml:"rebalance_interval" json:"rebalance_interval"`
}

// DefaultBucketConfig matches the classic 2-year cash / 5-year intermediate
// split with a four-year rebalance cadence.
func DefaultBucketConfig() BucketConfig {
	return BucketConfig{Bucket1Years: 2, Bucket2Years: 5, RebalanceInterval: 4}
}

// Validate rejects unusable bucket settings.
func (b *BucketConfig) Validate() error {
	if b.Bucket1Years <= 0 {
		return &InvalidInputError{Field: "buckets.bucket1_years", Reason: "must be positive"}
	}
	if b.Bucket2Years < 0 {
		return &InvalidInputError{Field: "buckets.bucket2_years", Reason: "must not be negative"}
	}
	if b.RebalanceInterval <= 0 {
		return &InvalidInputError{Field: "buckets.rebalance_interval", Reason: "must be positive"}
	}
	return nil
}

// BucketState is the three-tier split of the investable balance. The three
// balances always sum to the investable balance of the account set; pension
// earmarks live outside the buckets.
type BucketState struct {
	Bucket1 decimal.Decimal `json:"bucket1"`
	Bucket2 decimal.Decimal `json:"bucket2"`
	Bucket3 decimal.Decimal `json:"bucket3"`
}

// Total is the sum of the three tiers.
func (b *BucketState) Total() decimal.Decimal {
	return b.Bucket1.Add(b.Bucket2).Add(b.Bucket3)
}

// SimulationInput is the full request for one engine invocation. It is
// constructed once from caller input and read-only to the simulation; each
// scenario run clones what it mutates.
type SimulationInput struct {
	Accounts AccountSet `yaml:"accounts,inline" json:"accounts"`

	// MonthlyLivingCost is the desired living cost in base-year money.
	MonthlyLivingCost decimal.Decimal `yaml:"monthly_living_cost" json:"monthly_living_cost"`

	CurrentAge   int `yaml:"current_age" json:"current_age"`
	HorizonYears int `yaml:"horizon_years" json:"horizon_years"`

	Incomes []GuaranteedIncome `yaml:"guaranteed_income" json:"guaranteed_income"`

	Guardrail GuardrailConfig `yaml:"guardrail" json:"guardrail"`
	Buckets   BucketConfig    `yaml:"buckets" json:"buckets"`

	TaxRules *TaxRuleTable `yaml:"tax_rules" json:"tax_rules"`

	Scenarios []ScenarioParameters `yaml:"scenarios" json:"scenarios"`
}

// PublicPensionStartAge returns the earliest start age among public pension
// streams, or false when the plan has none (permanent bridge period).
func (in *SimulationInput) PublicPensionStartAge() (int, bool) {
	age, found := 0, false
	for i := range in.Incomes {
		if !in.Incomes[i].PublicPension {
			continue
		}
		if !found || in.Incomes[i].StartAge < age {
			age = in.Incomes[i].StartAge
		}
		found = true
	}
	return age, found
}

// Validate applies the fail-fast input checks. A request that passes here
// can only terminate in COMPLETED or RUIN.
func (in *SimulationInput) Validate() error {
	if err := in.Accounts.Validate(); err != nil {
		return err
	}
	if in.MonthlyLivingCost.IsNegative() {
		return &InvalidInputError{Field: "monthly_living_cost", Reason: "must not be negative"}
	}
	if in.CurrentAge <= 0 {
		return &InvalidInputError{Field: "current_age", Reason: "must be positive"}
	}
	if in.HorizonYears <= 0 {
		return &InvalidInputError{Field: "horizon_years", Reason: "must be positive"}
	}
	for i := range in.Incomes {
		if err := in.Incomes[i].Validate(); err != nil {
			return err
		}
		if in.Incomes[i].PublicPension && in.Incomes[i].StartAge < in.CurrentAge {
			return &InvalidInputError{Field: "income.start_age", Reason: fmt.Sprintf("public pension %q starts before the current age", in.Incomes[i].Name)}
		}
	}
	if err := in.Guardrail.Validate(); err != nil {
		return err
	}
	if err := in.Buckets.Validate(); err != nil {
		return err
	}
	if in.TaxRules == nil {
		return &InvalidInputError{Field: "tax_rules", Reason: "rule table is required"}
	}
	if err := in.TaxRules.Validate(); err != nil {
		return err
	}
	if len(in.Scenarios) == 0 {
		return &InvalidInputError{Field: "scenarios", Reason: "at least one scenario is required"}
	}
	for i := range in.Scenarios {
		if err := in.Scenarios[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

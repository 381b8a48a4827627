package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// SimulationStatus is the terminal state of one scenario run.
type SimulationStatus string

const (
	StatusCompleted SimulationStatus = "COMPLETED"
	StatusRuin      SimulationStatus = "RUIN"
)

// GuardrailStatus is the one-shot transition taken in a given year.
type GuardrailStatus string

const (
	GuardrailNormal   GuardrailStatus = "NORMAL"
	GuardrailUpperHit GuardrailStatus = "UPPER_HIT"
	GuardrailLowerHit GuardrailStatus = "LOWER_HIT"
)

// WithdrawalSlice is one account's (or pension sub-balance's) share of a
// year's withdrawal, with the tax it triggered.
type WithdrawalSlice struct {
	AccountID string          `json:"account_id"`
	Kind      AccountKind     `json:"kind"`
	Source    PensionSource   `json:"source,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	Tax       decimal.Decimal `json:"tax"`
}

// AccountBalance is an end-of-year balance snapshot for one account.
type AccountBalance struct {
	AccountID string          `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
}

// SimulationYear is one row of the append-only projection log. Records are
// never mutated after they are appended.
type SimulationYear struct {
	Year int `json:"year"` // 1-based index into the horizon
	Age  int `json:"age"`

	GuaranteedIncome decimal.Decimal `json:"guaranteed_income"`
	GrossNeed        decimal.Decimal `json:"gross_need"`
	NetNeed          decimal.Decimal `json:"net_need"`

	GuardrailStatus GuardrailStatus `json:"guardrail_status"`
	Withdrawal      decimal.Decimal `json:"withdrawal"`

	Slices  []WithdrawalSlice `json:"slices"`
	TaxPaid decimal.Decimal   `json:"tax_paid"`

	// PartialAllocation is set when available balances could not cover the
	// guardrail-adjusted withdrawal. Expected near ruin, never an error.
	PartialAllocation bool            `json:"partial_allocation,omitempty"`
	UnmetNeed         decimal.Decimal `json:"unmet_need,omitempty"`

	// BucketShortfall is set when bucket1 was left under target because
	// refilling it would have sold growth assets after a down year.
	BucketShortfall bool `json:"bucket_shortfall,omitempty"`

	Buckets        BucketState      `json:"buckets"`
	EndingBalances []AccountBalance `json:"ending_balances"`
	TotalBalance   decimal.Decimal  `json:"total_balance"`

	Ruin bool `json:"ruin,omitempty"`
}

// WithdrawnTotal sums the year's slices.
func (y *SimulationYear) WithdrawnTotal() decimal.Decimal {
	total := decimal.Zero
	for i := range y.Slices {
		total = total.Add(y.Slices[i].Amount)
	}
	return total
}

// SimulationResult is the full record of one scenario run.
type SimulationResult struct {
	Scenario string           `json:"scenario"`
	Status   SimulationStatus `json:"status"`
	Years    []SimulationYear `json:"years"`

	// RuinYear and Shortfall are populated only for StatusRuin.
	RuinYear  int             `json:"ruin_year,omitempty"`
	Shortfall decimal.Decimal `json:"shortfall,omitempty"`

	TotalTaxPaid   decimal.Decimal `json:"total_tax_paid"`
	TotalWithdrawn decimal.Decimal `json:"total_withdrawn"`
	TotalIncome    decimal.Decimal `json:"total_income"`
	EndingBalance  decimal.Decimal `json:"ending_balance"`
}

// YearsLasted reports how many years the plan funded spending.
func (r *SimulationResult) YearsLasted() int { return len(r.Years) }

// ScenarioComparison is the cross-scenario summary returned alongside the
// per-scenario results.
type ScenarioComparison struct {
	Results             []SimulationResult `json:"results"`
	RuinProbability     decimal.Decimal    `json:"ruin_probability"`
	MedianEndingBalance decimal.Decimal    `json:"median_ending_balance"`
	TotalTaxPaid        decimal.Decimal    `json:"total_tax_paid"`
}

// NewScenarioComparison aggregates a set of completed runs.
func NewScenarioComparison(results []SimulationResult) *ScenarioComparison {
	cmp := &ScenarioComparison{Results: results}
	if len(results) == 0 {
		return cmp
	}
	ruined := 0
	balances := make([]decimal.Decimal, 0, len(results))
	for i := range results {
		if results[i].Status == StatusRuin {
			ruined++
		}
		balances = append(balances, results[i].EndingBalance)
		cmp.TotalTaxPaid = cmp.TotalTaxPaid.Add(results[i].TotalTaxPaid)
	}
	cmp.RuinProbability = decimal.NewFromInt(int64(ruined)).Div(decimal.NewFromInt(int64(len(results))))
	sort.Slice(balances, func(i, j int) bool { return balances[i].LessThan(balances[j]) })
	cmp.MedianEndingBalance = balances[len(balances)/2]
	return cmp
}

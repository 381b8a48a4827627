package calculation

import (
	"github.com/shopspring/decimal"

	"github.com/drawmate/withdrawal-engine/internal/domain"
	"github.com/drawmate/withdrawal-engine/pkg/money"
)

// GuardrailState tracks the withdrawal-rate anchor across a run. InitialRate
// freezes at the first funded year and is never reset mid-run; CurrentRate
// is recomputed once per year.
type GuardrailState struct {
	InitialRate decimal.Decimal
	CurrentRate decimal.Decimal
}

// GuardrailDecision is the outcome of one annual evaluation.
type GuardrailDecision struct {
	Withdrawal decimal.Decimal
	Status     domain.GuardrailStatus

	// Ruin is set when the portfolio is already empty at year start and the
	// withdrawal is forced to zero.
	Ruin bool
}

// GuardrailMachine applies the dynamic withdrawal rule: compare the current
// withdrawal rate against the rate locked in at year one and cut or raise
// spending when the deviation leaves the corridor. Exactly one transition per
// simulated year.
type GuardrailMachine struct {
	cfg     domain.GuardrailConfig
	horizon int
	state   GuardrailState
}

// NewGuardrailMachine builds a machine for one scenario run.
func NewGuardrailMachine(cfg domain.GuardrailConfig, horizonYears int) *GuardrailMachine {
	return &GuardrailMachine{cfg: cfg, horizon: horizonYears}
}

// State exposes the current rate anchor, mainly for logging and tests.
func (m *GuardrailMachine) State() GuardrailState { return m.state }

// Evaluate runs the year's single transition. planned is the inflation-grown
// withdrawal before adjustment, portfolio the total balance at year start,
// and priorWithdrawal last year's actual withdrawal (zero in year one, which
// disables the cap since there is nothing to anchor it to).
func (m *GuardrailMachine) Evaluate(year int, planned, portfolio, priorWithdrawal decimal.Decimal) GuardrailDecision {
	if portfolio.LessThanOrEqual(decimal.Zero) {
		m.state.CurrentRate = decimal.Zero
		return GuardrailDecision{Withdrawal: decimal.Zero, Status: domain.GuardrailNormal, Ruin: planned.GreaterThan(decimal.Zero)}
	}
	if planned.LessThanOrEqual(decimal.Zero) {
		m.state.CurrentRate = decimal.Zero
		return GuardrailDecision{Withdrawal: money.ClampZero(planned), Status: domain.GuardrailNormal}
	}

	rate := planned.Div(portfolio)
	m.state.CurrentRate = rate
	if m.state.InitialRate.IsZero() {
		// First funded year anchors the corridor; no adjustment applies.
		m.state.InitialRate = rate
		return GuardrailDecision{Withdrawal: planned, Status: domain.GuardrailNormal}
	}

	deviation := rate.Sub(m.state.InitialRate).Div(m.state.InitialRate)
	status := domain.GuardrailNormal
	adjusted := planned
	switch {
	case deviation.GreaterThan(m.cfg.UpperThreshold):
		// Spending has outrun the portfolio; cut unless still inside the
		// initial freeze window.
		if year > m.cfg.FreezeInitialYears {
			status = domain.GuardrailUpperHit
			adjusted = planned.Mul(decimal.NewFromInt(1).Sub(m.cfg.AdjustmentRate))
		}
	case deviation.LessThan(m.cfg.LowerThreshold.Neg()):
		// Portfolio has outrun spending; raise unless inside the final
		// freeze window.
		if year <= m.horizon-m.cfg.FreezeFinalYears {
			status = domain.GuardrailLowerHit
			adjusted = planned.Mul(decimal.NewFromInt(1).Add(m.cfg.AdjustmentRate))
		}
	}

	if status != domain.GuardrailNormal && priorWithdrawal.GreaterThan(decimal.Zero) {
		limit := priorWithdrawal.Mul(m.cfg.MaxAnnualAdjustment)
		change := adjusted.Sub(planned).Abs()
		if change.GreaterThan(limit) {
			if adjusted.GreaterThan(planned) {
				adjusted = planned.Add(limit)
			} else {
				adjusted = planned.Sub(limit)
			}
		}
	}

	return GuardrailDecision{Withdrawal: money.ClampZero(adjusted), Status: status}
}

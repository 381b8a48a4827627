package calculation

import (
	"github.com/shopspring/decimal"

	"github.com/drawmate/withdrawal-engine/internal/domain"
	"github.com/drawmate/withdrawal-engine/pkg/money"
)

// AllocationPlan is the outcome of splitting one year's withdrawal across
// accounts. Slices carry per-slice tax so every figure in the projection can
// be audited back to a schedule.
type AllocationPlan struct {
	Slices    []domain.WithdrawalSlice
	Withdrawn decimal.Decimal
	Tax       decimal.Decimal

	// Partial is set when balances could not cover the full withdrawal.
	Partial bool
	Unmet   decimal.Decimal
}

// Allocator splits a withdrawal across accounts by a fixed tax-priority
// policy. During the bridge period (before the public pension starts) pension
// accounts stay untouched and spending comes from general accounts first,
// then the tax-free wrapper. Once the pension period begins, pension
// sub-balances are drained cheapest first, each pension account capped at the
// low-tax threshold while anything else remains, then general, then wrapper,
// and only then pension money above the threshold.
type Allocator struct {
	rules *domain.TaxRuleTable
}

// NewAllocator builds an allocator over one immutable rule table.
func NewAllocator(rules *domain.TaxRuleTable) *Allocator {
	return &Allocator{rules: rules}
}

// Allocate mutates the account set, drawing down balances until the
// withdrawal is covered or everything is empty. The only error is a
// configuration gap in the rule table; shortfalls are reported on the plan.
func (a *Allocator) Allocate(set *domain.AccountSet, withdrawal decimal.Decimal, bridge bool) (*AllocationPlan, error) {
	plan := &AllocationPlan{Withdrawn: decimal.Zero, Tax: decimal.Zero, Unmet: decimal.Zero}
	remaining := money.ClampZero(withdrawal)
	if remaining.IsZero() {
		return plan, nil
	}

	// Cumulative withdrawal per (account, source) this year; marginal
	// schedules consume their lower rungs in draw order.
	cum := make(map[string]decimal.Decimal)
	var err error

	if !bridge {
		// Pension first, each account held under the low-tax threshold for
		// as long as other money can cover the rest of the year.
		remaining, err = a.drawPensions(plan, set, remaining, cum, a.rules.LowTaxThreshold)
		if err != nil {
			return nil, err
		}
	}
	for _, kind := range []domain.AccountKind{domain.AccountGeneral, domain.AccountTaxFreeWrapper} {
		for _, acct := range set.ByKind(kind) {
			remaining, err = a.drawAccount(plan, acct, remaining, cum)
			if err != nil {
				return nil, err
			}
		}
	}
	if !bridge && remaining.GreaterThan(decimal.Zero) {
		// Nothing cheap is left; accept the higher bracket above the
		// threshold rather than leave the need unmet.
		remaining, err = a.drawPensions(plan, set, remaining, cum, decimal.Zero)
		if err != nil {
			return nil, err
		}
	}

	if remaining.GreaterThan(decimal.Zero) {
		plan.Partial = true
		plan.Unmet = remaining
	}
	return plan, nil
}

// drawPensions drains pension sub-balances cheapest first. A positive
// threshold caps each account's total draw for the year; a zero threshold
// means no cap.
func (a *Allocator) drawPensions(plan *AllocationPlan, set *domain.AccountSet, remaining decimal.Decimal, cum map[string]decimal.Decimal, threshold decimal.Decimal) (decimal.Decimal, error) {
	for _, acct := range set.ByKind(domain.AccountPension) {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}
		allowance := remaining
		if threshold.GreaterThan(decimal.Zero) {
			allowance = money.ClampZero(threshold.Sub(accountDrawn(plan, acct.ID)))
		}
		for _, src := range domain.PensionSourceOrder {
			amount := money.Min(money.Min(remaining, allowance), acct.SourceBalance(src))
			if amount.LessThanOrEqual(decimal.Zero) {
				continue
			}
			key := domain.SourceKey(domain.AccountPension, src)
			tax, err := a.sliceTax(acct.ID, key, amount, cum)
			if err != nil {
				return remaining, err
			}
			acct.DrawSource(src, amount)
			plan.Slices = append(plan.Slices, domain.WithdrawalSlice{
				AccountID: acct.ID,
				Kind:      domain.AccountPension,
				Source:    src,
				Amount:    amount,
				Tax:       tax,
			})
			plan.Withdrawn = plan.Withdrawn.Add(amount)
			plan.Tax = plan.Tax.Add(tax)
			remaining = remaining.Sub(amount)
			allowance = allowance.Sub(amount)
		}
	}
	return remaining, nil
}

// drawAccount drains a general or wrapper account up to the remaining need.
func (a *Allocator) drawAccount(plan *AllocationPlan, acct *domain.Account, remaining decimal.Decimal, cum map[string]decimal.Decimal) (decimal.Decimal, error) {
	amount := money.Min(remaining, acct.Balance)
	if amount.LessThanOrEqual(decimal.Zero) {
		return remaining, nil
	}
	key := domain.SourceKey(acct.Kind, "")
	tax, err := a.sliceTax(acct.ID, key, amount, cum)
	if err != nil {
		return remaining, err
	}
	acct.Draw(amount)
	plan.Slices = append(plan.Slices, domain.WithdrawalSlice{
		AccountID: acct.ID,
		Kind:      acct.Kind,
		Amount:    amount,
		Tax:       tax,
	})
	plan.Withdrawn = plan.Withdrawn.Add(amount)
	plan.Tax = plan.Tax.Add(tax)
	return remaining.Sub(amount), nil
}

// sliceTax computes the marginal tax on one slice and advances the
// per-account, per-source cumulative position.
func (a *Allocator) sliceTax(accountID, key string, amount decimal.Decimal, cum map[string]decimal.Decimal) (decimal.Decimal, error) {
	ck := accountID + "/" + key
	tax, err := a.rules.MarginalTax(key, cum[ck], amount)
	if err != nil {
		return decimal.Zero, err
	}
	cum[ck] = cum[ck].Add(amount)
	return tax, nil
}

// accountDrawn sums what the plan has already taken from one account.
func accountDrawn(plan *AllocationPlan, accountID string) decimal.Decimal {
	total := decimal.Zero
	for i := range plan.Slices {
		if plan.Slices[i].AccountID == accountID {
			total = total.Add(plan.Slices[i].Amount)
		}
	}
	return total
}

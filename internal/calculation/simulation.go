package calculation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/drawmate/withdrawal-engine/internal/domain"
	"github.com/drawmate/withdrawal-engine/pkg/money"
)

// Simulator advances one scenario year by year until the horizon or ruin.
// It owns no shared state: every run clones the account set, so runs can be
// executed concurrently without locks. Given the same input and return path
// the output is bit-identical on replay.
type Simulator struct {
	input  *domain.SimulationInput
	logger Logger
}

// NewSimulator builds a simulator over validated input. Pass a nil logger
// for silence.
func NewSimulator(input *domain.SimulationInput, logger Logger) *Simulator {
	if logger == nil {
		logger = NopLogger{}
	}
	return &Simulator{input: input, logger: logger}
}

// Run simulates one scenario against a pre-generated return path. The path
// must cover the full horizon; the run ends early only on ruin.
func (s *Simulator) Run(label string, path []domain.YearReturn) (*domain.SimulationResult, error) {
	if len(path) < s.input.HorizonYears {
		return nil, fmt.Errorf("return path covers %d years, horizon is %d", len(path), s.input.HorizonYears)
	}

	accounts := s.input.Accounts.Clone()
	needs := NewNeedCalculator(s.input)
	guardrail := NewGuardrailMachine(s.input.Guardrail, s.input.HorizonYears)
	allocator := NewAllocator(s.input.TaxRules)
	pensionStart, hasPension := s.input.PublicPensionStartAge()

	// Seed the buckets against the first year's spending level.
	_, _, firstNeed := needs.YearNeed(s.input.CurrentAge, decimal.NewFromInt(1))
	buckets := NewBucketManager(s.input.Buckets, accounts.InvestableBalance(), firstNeed)

	result := &domain.SimulationResult{Scenario: label, Status: domain.StatusCompleted}
	inflationFactor := decimal.NewFromInt(1)
	priorWithdrawal := decimal.Zero

	for year := 1; year <= s.input.HorizonYears; year++ {
		age := s.input.CurrentAge + year - 1
		ret := path[year-1]
		startBalance := accounts.TotalBalance()

		gross, income, net := needs.YearNeed(age, inflationFactor)
		decision := guardrail.Evaluate(year, net, startBalance, priorWithdrawal)

		record := domain.SimulationYear{
			Year:             year,
			Age:              age,
			GuaranteedIncome: income,
			GrossNeed:        gross,
			NetNeed:          net,
			GuardrailStatus:  decision.Status,
			Withdrawal:       decision.Withdrawal,
		}

		if decision.Ruin {
			record.Ruin = true
			record.Buckets = buckets.State()
			record.EndingBalances = endingBalances(accounts)
			record.TotalBalance = accounts.TotalBalance()
			result.Years = append(result.Years, record)
			s.finishRuin(result, year, net)
			return result, nil
		}

		bridge := !hasPension || age < pensionStart
		plan, err := allocator.Allocate(accounts, decision.Withdrawal, bridge)
		if err != nil {
			return nil, fmt.Errorf("allocating year %d withdrawal: %w", year, err)
		}
		record.Slices = plan.Slices
		record.TaxPaid = plan.Tax
		record.PartialAllocation = plan.Partial
		record.UnmetNeed = plan.Unmet

		// Mirror the investable portion of the draw into the tiers, then
		// grow everything and re-anchor account balances to the tiers.
		buckets.Drain(investableDrawn(plan))
		buckets.Grow(ret)
		bucketState := buckets.State()
		s.applyGrowth(accounts, bucketState.Total(), ret.Growth)

		record.BucketShortfall = buckets.Refill(net, ret.Growth)
		buckets.Rebalance(year, net, ret.Bond, ret.Growth)

		record.Buckets = buckets.State()
		record.EndingBalances = endingBalances(accounts)
		record.TotalBalance = accounts.TotalBalance()

		result.Years = append(result.Years, record)
		result.TotalTaxPaid = result.TotalTaxPaid.Add(plan.Tax)
		result.TotalWithdrawn = result.TotalWithdrawn.Add(plan.Withdrawn)
		result.TotalIncome = result.TotalIncome.Add(income)
		priorWithdrawal = plan.Withdrawn

		if plan.Partial && record.TotalBalance.LessThanOrEqual(decimal.Zero) {
			record.Ruin = true
			result.Years[len(result.Years)-1].Ruin = true
			s.finishRuin(result, year, plan.Unmet)
			return result, nil
		}

		s.logger.Debugf("scenario %s year %d: withdrew %s, tax %s, balance %s",
			label, year, plan.Withdrawn.StringFixed(0), plan.Tax.StringFixed(0), record.TotalBalance.StringFixed(0))

		inflationFactor = inflationFactor.Mul(decimal.NewFromInt(1).Add(ret.Inflation))
	}

	result.EndingBalance = money.ClampZero(s.endingBalance(result))
	return result, nil
}

func (s *Simulator) finishRuin(result *domain.SimulationResult, year int, shortfall decimal.Decimal) {
	result.Status = domain.StatusRuin
	result.RuinYear = year
	result.Shortfall = shortfall
	result.EndingBalance = decimal.Zero
	s.logger.Infof("scenario %s ruined in year %d, shortfall %s", result.Scenario, year, shortfall.StringFixed(0))
}

func (s *Simulator) endingBalance(result *domain.SimulationResult) decimal.Decimal {
	if len(result.Years) == 0 {
		return s.input.Accounts.TotalBalance()
	}
	return result.Years[len(result.Years)-1].TotalBalance
}

// applyGrowth grows pension sub-balances at the growth return and scales the
// investable accounts pro-rata so their sum equals the grown tier total. The
// last investable account absorbs the rounding remainder; the tier sum and
// the investable balance must match exactly every year.
func (s *Simulator) applyGrowth(set *domain.AccountSet, investableTarget, growth decimal.Decimal) {
	one := decimal.NewFromInt(1)
	factor := one.Add(growth)
	for _, acct := range set.ByKind(domain.AccountPension) {
		acct.TaxFreePrincipal = acct.TaxFreePrincipal.Mul(factor)
		acct.DeferredSeverance = acct.DeferredSeverance.Mul(factor)
		acct.TaxableContribution = acct.TaxableContribution.Mul(factor)
		acct.Balance = acct.TaxFreePrincipal.Add(acct.DeferredSeverance).Add(acct.TaxableContribution)
	}

	var investable []*domain.Account
	old := decimal.Zero
	for i := range set.Accounts {
		switch set.Accounts[i].Kind {
		case domain.AccountGeneral, domain.AccountTaxFreeWrapper:
			investable = append(investable, &set.Accounts[i])
			old = old.Add(set.Accounts[i].Balance)
		case domain.AccountPension:
		}
	}
	if len(investable) == 0 {
		return
	}
	if old.LessThanOrEqual(decimal.Zero) {
		investable[len(investable)-1].Balance = investable[len(investable)-1].Balance.Add(investableTarget)
		return
	}
	ratio := investableTarget.Div(old)
	assigned := decimal.Zero
	for i, acct := range investable {
		if i == len(investable)-1 {
			acct.Balance = investableTarget.Sub(assigned)
			break
		}
		acct.Balance = acct.Balance.Mul(ratio)
		assigned = assigned.Add(acct.Balance)
	}
}

// investableDrawn sums the plan's slices against general and wrapper
// accounts, the portion that must leave the bucket structure.
func investableDrawn(plan *AllocationPlan) decimal.Decimal {
	total := decimal.Zero
	for i := range plan.Slices {
		switch plan.Slices[i].Kind {
		case domain.AccountGeneral, domain.AccountTaxFreeWrapper:
			total = total.Add(plan.Slices[i].Amount)
		case domain.AccountPension:
		}
	}
	return total
}

func endingBalances(set *domain.AccountSet) []domain.AccountBalance {
	out := make([]domain.AccountBalance, 0, len(set.Accounts))
	for i := range set.Accounts {
		out = append(out, domain.AccountBalance{
			AccountID: set.Accounts[i].ID,
			Balance:   set.Accounts[i].Balance,
		})
	}
	return out
}

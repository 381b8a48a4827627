package calculation

import (
	"github.com/shopspring/decimal"

	"github.com/drawmate/withdrawal-engine/internal/domain"
	"github.com/drawmate/withdrawal-engine/pkg/money"
)

// NeedCalculator converts a base-year living cost into the amount the
// portfolio must supply in a given year. It holds no mutable state; the
// inflation factor is supplied by the caller so the same calculator serves
// deterministic and sampled paths alike.
type NeedCalculator struct {
	MonthlyLivingCost decimal.Decimal
	Incomes           []domain.GuaranteedIncome
}

// NewNeedCalculator builds a calculator from the simulation input.
func NewNeedCalculator(input *domain.SimulationInput) *NeedCalculator {
	return &NeedCalculator{
		MonthlyLivingCost: input.MonthlyLivingCost,
		Incomes:           input.Incomes,
	}
}

// YearNeed computes the year's gross need (living cost compounded by the
// cumulative inflation factor), the guaranteed income received at the given
// age, and the net need the portfolio must cover, floored at zero.
func (n *NeedCalculator) YearNeed(age int, inflationFactor decimal.Decimal) (gross, income, net decimal.Decimal) {
	gross = money.Annual(n.MonthlyLivingCost).Mul(inflationFactor)
	income = decimal.Zero
	for i := range n.Incomes {
		income = income.Add(n.Incomes[i].AnnualAmount(age))
	}
	net = money.ClampZero(gross.Sub(income))
	return gross, income, net
}

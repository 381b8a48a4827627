package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMonthsReceived(t *testing.T) {
	pension := GuaranteedIncome{
		Name: "national pension", MonthlyAmount: decimal.NewFromInt(1_000_000),
		StartAge: 65, StartMonth: 7, PublicPension: true,
	}

	assert.Equal(t, 0, pension.MonthsReceived(64))
	assert.Equal(t, 6, pension.MonthsReceived(65)) // July through December
	assert.Equal(t, 12, pension.MonthsReceived(66))
}

func TestMonthsReceivedFullFirstYear(t *testing.T) {
	rent := GuaranteedIncome{Name: "rent", MonthlyAmount: decimal.NewFromInt(500_000), StartAge: 60}

	assert.Equal(t, 12, rent.MonthsReceived(60))
}

func TestAnnualAmount(t *testing.T) {
	pension := GuaranteedIncome{
		Name: "national pension", MonthlyAmount: decimal.NewFromInt(1_000_000),
		StartAge: 65, StartMonth: 7,
	}

	assert.True(t, pension.AnnualAmount(60).IsZero())
	assert.True(t, pension.AnnualAmount(65).Equal(decimal.NewFromInt(6_000_000)))
	assert.True(t, pension.AnnualAmount(70).Equal(decimal.NewFromInt(12_000_000)))
}

func TestGuaranteedIncomeValidate(t *testing.T) {
	bad := GuaranteedIncome{Name: "x", MonthlyAmount: decimal.NewFromInt(-1)}
	var invalid *InvalidInputError
	assert.ErrorAs(t, bad.Validate(), &invalid)

	badMonth := GuaranteedIncome{Name: "x", MonthlyAmount: decimal.NewFromInt(1), StartMonth: 13}
	assert.ErrorAs(t, badMonth.Validate(), &invalid)
}

package calculation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drawmate/withdrawal-engine/internal/domain"
)

func dec(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func testAccounts() *domain.AccountSet {
	return &domain.AccountSet{Accounts: []domain.Account{
		{ID: "brokerage", Kind: domain.AccountGeneral, Balance: dec(100_000_000)},
		{ID: "isa", Kind: domain.AccountTaxFreeWrapper, Balance: dec(50_000_000)},
		{
			ID: "pension-1", Kind: domain.AccountPension, Balance: dec(60_000_000),
			TaxFreePrincipal:    dec(5_000_000),
			DeferredSeverance:   dec(5_000_000),
			TaxableContribution: dec(50_000_000),
		},
	}}
}

func sliceSum(plan *AllocationPlan) decimal.Decimal {
	total := decimal.Zero
	for i := range plan.Slices {
		total = total.Add(plan.Slices[i].Amount)
	}
	return total
}

func TestAllocateBridgeUsesGeneralThenWrapper(t *testing.T) {
	set := testAccounts()
	allocator := NewAllocator(domain.DefaultTaxRules2025())

	plan, err := allocator.Allocate(set, dec(120_000_000), true)
	require.NoError(t, err)

	require.Len(t, plan.Slices, 2)
	assert.Equal(t, "brokerage", plan.Slices[0].AccountID)
	assert.True(t, plan.Slices[0].Amount.Equal(dec(100_000_000)))
	assert.Equal(t, "isa", plan.Slices[1].AccountID)
	assert.True(t, plan.Slices[1].Amount.Equal(dec(20_000_000)))

	// Pension money stays locked until the public pension starts.
	pension := set.ByKind(domain.AccountPension)[0]
	assert.True(t, pension.Balance.Equal(dec(60_000_000)))
	assert.False(t, plan.Partial)
}

func TestAllocatePensionPeriodDrainsSourcesCheapestFirst(t *testing.T) {
	set := testAccounts()
	allocator := NewAllocator(domain.DefaultTaxRules2025())

	// 12M fits inside the pension account's low-tax allowance: principal
	// first, then severance, then taxable contribution.
	plan, err := allocator.Allocate(set, dec(12_000_000), false)
	require.NoError(t, err)

	require.Len(t, plan.Slices, 3)
	assert.Equal(t, domain.SourceTaxFreePrincipal, plan.Slices[0].Source)
	assert.True(t, plan.Slices[0].Amount.Equal(dec(5_000_000)))
	assert.True(t, plan.Slices[0].Tax.IsZero())

	assert.Equal(t, domain.SourceDeferredSeverance, plan.Slices[1].Source)
	assert.True(t, plan.Slices[1].Tax.Equal(dec(110_000))) // 5M * 0.022

	assert.Equal(t, domain.SourceTaxableContribution, plan.Slices[2].Source)
	assert.True(t, plan.Slices[2].Amount.Equal(dec(2_000_000)))
	assert.True(t, plan.Slices[2].Tax.Equal(dec(66_000))) // 2M * 0.033

	assert.True(t, set.Accounts[0].Balance.Equal(dec(100_000_000)), "general untouched below threshold")
}

func TestAllocateStopsBeforeTaxableContribution(t *testing.T) {
	set := &domain.AccountSet{Accounts: []domain.Account{
		{
			ID: "pension-1", Kind: domain.AccountPension, Balance: dec(17_000),
			TaxFreePrincipal:    dec(2_000),
			DeferredSeverance:   dec(10_000),
			TaxableContribution: dec(5_000),
		},
	}}
	allocator := NewAllocator(domain.DefaultTaxRules2025())

	plan, err := allocator.Allocate(set, dec(6_000), false)
	require.NoError(t, err)

	require.Len(t, plan.Slices, 2)
	assert.Equal(t, domain.SourceTaxFreePrincipal, plan.Slices[0].Source)
	assert.True(t, plan.Slices[0].Amount.Equal(dec(2_000)))
	assert.Equal(t, domain.SourceDeferredSeverance, plan.Slices[1].Source)
	assert.True(t, plan.Slices[1].Amount.Equal(dec(4_000)))

	pension := set.ByKind(domain.AccountPension)[0]
	assert.True(t, pension.TaxableContribution.Equal(dec(5_000)), "taxable contribution must stay untouched")
}

func TestAllocateRoutesExcessAboveThresholdToGeneral(t *testing.T) {
	set := testAccounts()
	allocator := NewAllocator(domain.DefaultTaxRules2025())

	// 20M exceeds the 14M per-account allowance; the excess 6M must come
	// from the general account while it has balance.
	plan, err := allocator.Allocate(set, dec(20_000_000), false)
	require.NoError(t, err)

	pensionDrawn := decimal.Zero
	generalDrawn := decimal.Zero
	for _, s := range plan.Slices {
		switch s.AccountID {
		case "pension-1":
			pensionDrawn = pensionDrawn.Add(s.Amount)
		case "brokerage":
			generalDrawn = generalDrawn.Add(s.Amount)
		}
	}
	assert.True(t, pensionDrawn.Equal(dec(14_000_000)), "pension capped at the low-tax threshold, drew %s", pensionDrawn)
	assert.True(t, generalDrawn.Equal(dec(6_000_000)))
	assert.False(t, plan.Partial)
}

func TestAllocateAcceptsHigherBracketWhenNothingElseRemains(t *testing.T) {
	set := &domain.AccountSet{Accounts: []domain.Account{
		{
			ID: "pension-1", Kind: domain.AccountPension, Balance: dec(30_000_000),
			TaxableContribution: dec(30_000_000),
		},
	}}
	allocator := NewAllocator(domain.DefaultTaxRules2025())

	plan, err := allocator.Allocate(set, dec(20_000_000), false)
	require.NoError(t, err)

	assert.True(t, sliceSum(plan).Equal(dec(20_000_000)))
	assert.False(t, plan.Partial)
	// 14M at 3.3% plus the 6M excess at the 4.4% bracket: the marginal
	// position carries across the two passes.
	assert.True(t, plan.Tax.Equal(dec(726_000)), "got tax %s", plan.Tax)
}

func TestAllocatePartialWhenBalancesRunOut(t *testing.T) {
	set := &domain.AccountSet{Accounts: []domain.Account{
		{ID: "brokerage", Kind: domain.AccountGeneral, Balance: dec(1_000_000)},
	}}
	allocator := NewAllocator(domain.DefaultTaxRules2025())

	plan, err := allocator.Allocate(set, dec(5_000_000), true)
	require.NoError(t, err)

	assert.True(t, plan.Partial)
	assert.True(t, plan.Unmet.Equal(dec(4_000_000)))
	assert.True(t, plan.Withdrawn.Equal(dec(1_000_000)))
}

func TestAllocateMissingScheduleFailsFast(t *testing.T) {
	set := testAccounts()
	rules := &domain.TaxRuleTable{
		Year:            2025,
		Schedules:       map[string][]domain.TaxBracket{},
		LowTaxThreshold: dec(14_000_000),
	}
	allocator := NewAllocator(rules)

	_, err := allocator.Allocate(set, dec(1_000_000), true)
	var gap *domain.ConfigurationGapError
	require.ErrorAs(t, err, &gap)
}

func TestAllocateSliceSumMatchesWithdrawn(t *testing.T) {
	for _, need := range []int64{1, 12_000_000, 20_000_000, 120_000_000, 500_000_000} {
		set := testAccounts()
		allocator := NewAllocator(domain.DefaultTaxRules2025())

		plan, err := allocator.Allocate(set, dec(need), false)
		require.NoError(t, err)

		assert.True(t, sliceSum(plan).Equal(plan.Withdrawn))
		assert.True(t, plan.Withdrawn.Add(plan.Unmet).Equal(dec(need)))
		for i := range set.Accounts {
			assert.False(t, set.Accounts[i].Balance.IsNegative())
		}
	}
}

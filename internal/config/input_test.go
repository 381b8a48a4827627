package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drawmate/withdrawal-engine/internal/domain"
)

const minimalYAML = `
accounts:
  - id: brokerage
    kind: general
    balance: 300000000
  - id: pension-1
    kind: pension
    balance: 400000000
    tax_free_principal: 150000000
    deferred_severance: 100000000
    taxable_contribution: 150000000
monthly_living_cost: 3000000
current_age: 60
horizon_years: 30
guaranteed_income:
  - name: national pension
    monthly_amount: 1500000
    start_age: 65
    start_month: 7
    public_pension: true
`

func TestParseMinimalInputFillsDefaults(t *testing.T) {
	parser := NewInputParser()

	input, err := parser.Parse([]byte(minimalYAML))
	require.NoError(t, err)

	assert.Len(t, input.Accounts.Accounts, 2)
	assert.True(t, input.MonthlyLivingCost.Equal(decimal.NewFromInt(3_000_000)))

	// Omitted sections get the standard rules, not zero values.
	assert.Equal(t, domain.DefaultGuardrailConfig(), input.Guardrail)
	assert.Equal(t, domain.DefaultBucketConfig(), input.Buckets)
	require.NotNil(t, input.TaxRules)
	assert.Equal(t, 2025, input.TaxRules.Year)
	assert.Len(t, input.Scenarios, 3)
}

func TestParseRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "negative balance",
			yaml: "accounts:\n  - id: a\n    kind: general\n    balance: -1\nmonthly_living_cost: 100\ncurrent_age: 60\nhorizon_years: 30\n",
		},
		{
			name: "unknown account kind",
			yaml: "accounts:\n  - id: a\n    kind: offshore\n    balance: 100\nmonthly_living_cost: 100\ncurrent_age: 60\nhorizon_years: 30\n",
		},
		{
			name: "zero horizon",
			yaml: "accounts:\n  - id: a\n    kind: general\n    balance: 100\nmonthly_living_cost: 100\ncurrent_age: 60\nhorizon_years: 0\n",
		},
		{
			name: "pension sub-balances do not sum",
			yaml: "accounts:\n  - id: p\n    kind: pension\n    balance: 100\n    tax_free_principal: 10\nmonthly_living_cost: 100\ncurrent_age: 60\nhorizon_years: 30\n",
		},
		{
			name: "malformed yaml",
			yaml: "accounts: [",
		},
	}

	parser := NewInputParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalYAML), 0o644))

	input, err := NewInputParser().LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 30, input.HorizonYears)
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := NewInputParser().LoadFromFile("does-not-exist.yaml")
	assert.Error(t, err)
}

func TestExampleInputRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "example.yaml")

	require.NoError(t, WriteExample(path))

	input, err := NewInputParser().LoadFromFile(path)
	require.NoError(t, err)
	assert.NoError(t, input.Validate())
	assert.Equal(t, 55, input.CurrentAge)
}

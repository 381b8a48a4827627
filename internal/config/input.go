package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/drawmate/withdrawal-engine/internal/domain"
)

func dec(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

// InputParser loads and validates simulation input files.
type InputParser struct{}

// NewInputParser creates a new input parser.
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads a simulation input from a YAML file, fills omitted
// sections with defaults and validates the result. Validation is fail-fast:
// a file that loads cleanly produces a run that can only end in COMPLETED or
// RUIN.
func (ip *InputParser) LoadFromFile(filename string) (*domain.SimulationInput, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return ip.Parse(data)
}

// Parse decodes YAML input bytes, applies defaults and validates.
func (ip *InputParser) Parse(data []byte) (*domain.SimulationInput, error) {
	var input domain.SimulationInput
	if err := yaml.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	ip.applyDefaults(&input)

	if err := input.Validate(); err != nil {
		return nil, fmt.Errorf("input validation failed: %w", err)
	}
	return &input, nil
}

// applyDefaults fills sections the file omitted. A zero guardrail or bucket
// block means the user wants the standard rule, not a disabled one; the tax
// table and scenarios likewise default to the built-in 2025 set.
func (ip *InputParser) applyDefaults(input *domain.SimulationInput) {
	zero := domain.GuardrailConfig{}
	if input.Guardrail == zero {
		input.Guardrail = domain.DefaultGuardrailConfig()
	}
	if input.Buckets == (domain.BucketConfig{}) {
		input.Buckets = domain.DefaultBucketConfig()
	}
	if input.TaxRules == nil {
		input.TaxRules = domain.DefaultTaxRules2025()
	}
	if len(input.Scenarios) == 0 {
		input.Scenarios = domain.DefaultScenarios()
	}
}

// ExampleInput returns a fully populated input suitable for writing out as
// a starting template.
func ExampleInput() *domain.SimulationInput {
	return &domain.SimulationInput{
		Accounts: domain.AccountSet{Accounts: []domain.Account{
			{
				ID:      "brokerage",
				Kind:    domain.AccountGeneral,
				Balance: dec(300_000_000),
			},
			{
				ID:      "isa",
				Kind:    domain.AccountTaxFreeWrapper,
				Balance: dec(100_000_000),
			},
			{
				ID:                  "pension-1",
				Kind:                domain.AccountPension,
				Balance:             dec(400_000_000),
				TaxFreePrincipal:    dec(150_000_000),
				DeferredSeverance:   dec(100_000_000),
				TaxableContribution: dec(150_000_000),
			},
		}},
		MonthlyLivingCost: dec(3_000_000),
		CurrentAge:        55,
		HorizonYears:      35,
		Incomes: []domain.GuaranteedIncome{
			{
				Name:          "national pension",
				MonthlyAmount: dec(1_200_000),
				StartAge:      65,
				StartMonth:    7,
				PublicPension: true,
			},
		},
		Guardrail: domain.DefaultGuardrailConfig(),
		Buckets:   domain.DefaultBucketConfig(),
		TaxRules:  domain.DefaultTaxRules2025(),
		Scenarios: domain.DefaultScenarios(),
	}
}

// WriteExample marshals the example input to YAML at the given path.
func WriteExample(filename string) error {
	data, err := yaml.Marshal(ExampleInput())
	if err != nil {
		return fmt.Errorf("failed to marshal example input: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return nil
}

package calculation

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/drawmate/withdrawal-engine/internal/domain"
	"github.com/drawmate/withdrawal-engine/pkg/money"
)

// Sampling spread for the tiers that have no configured volatility of their
// own. Growth volatility comes from the scenario.
var (
	bondVolatility      = decimal.NewFromFloat(0.06)
	inflationVolatility = decimal.NewFromFloat(0.01)
	minReturn           = decimal.NewFromFloat(-0.95)
)

// MonteCarloConfig holds the sampling parameters for a randomized run.
type MonteCarloConfig struct {
	NumSimulations int
	Seed           int64

	// Scenario supplies the distribution means: growth return and
	// volatility, bond, cash and inflation.
	Scenario domain.ScenarioParameters
}

// PathOutcome summarizes one sampled path.
type PathOutcome struct {
	Path          int                     `json:"path"`
	Status        domain.SimulationStatus `json:"status"`
	YearsLasted   int                     `json:"years_lasted"`
	EndingBalance decimal.Decimal         `json:"ending_balance"`
	TotalTaxPaid  decimal.Decimal         `json:"total_tax_paid"`
}

// PercentileRanges holds the ending-balance distribution markers.
type PercentileRanges struct {
	P10 decimal.Decimal `json:"p10"`
	P25 decimal.Decimal `json:"p25"`
	P50 decimal.Decimal `json:"p50"`
	P75 decimal.Decimal `json:"p75"`
	P90 decimal.Decimal `json:"p90"`
}

// MonteCarloResult aggregates all sampled paths.
type MonteCarloResult struct {
	Outcomes            []PathOutcome    `json:"outcomes"`
	SuccessRate         decimal.Decimal  `json:"success_rate"`
	MedianEndingBalance decimal.Decimal  `json:"median_ending_balance"`
	PercentileRanges    PercentileRanges `json:"percentile_ranges"`
	NumSimulations      int              `json:"num_simulations"`
	Seed                int64            `json:"seed"`
}

// MonteCarloSimulator samples randomized return paths around a scenario's
// means and feeds each path to the deterministic year-step simulator. All
// randomness lives here; given the same seed the whole result is
// reproducible.
type MonteCarloSimulator struct {
	input  *domain.SimulationInput
	logger Logger
}

// NewMonteCarloSimulator builds a sampler over validated input.
func NewMonteCarloSimulator(input *domain.SimulationInput, logger Logger) *MonteCarloSimulator {
	if logger == nil {
		logger = NopLogger{}
	}
	return &MonteCarloSimulator{input: input, logger: logger}
}

// Run samples NumSimulations paths and simulates each one in parallel. Each
// path derives its own seeded source, so results do not depend on goroutine
// scheduling.
func (mcs *MonteCarloSimulator) Run(config MonteCarloConfig) (*MonteCarloResult, error) {
	if err := mcs.input.Validate(); err != nil {
		return nil, err
	}
	if config.NumSimulations <= 0 {
		return nil, fmt.Errorf("number of simulations must be positive, got %d", config.NumSimulations)
	}
	if config.Seed == 0 {
		config.Seed = time.Now().UnixNano()
	}

	outcomes := make([]PathOutcome, config.NumSimulations)
	errs := make([]error, config.NumSimulations)

	var wg sync.WaitGroup
	sem := make(chan struct{}, maxConcurrentRuns)
	for i := 0; i < config.NumSimulations; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			rng := rand.New(rand.NewSource(config.Seed + int64(idx)))
			path := mcs.samplePath(rng, config.Scenario)
			sim := NewSimulator(mcs.input, NopLogger{})
			label := fmt.Sprintf("%s/path-%d", config.Scenario.Label, idx)
			result, err := sim.Run(label, path)
			if err != nil {
				errs[idx] = err
				return
			}
			outcomes[idx] = PathOutcome{
				Path:          idx,
				Status:        result.Status,
				YearsLasted:   result.YearsLasted(),
				EndingBalance: result.EndingBalance,
				TotalTaxPaid:  result.TotalTaxPaid,
			}
		}(i)
	}
	wg.Wait()

	for i := range errs {
		if errs[i] != nil {
			return nil, fmt.Errorf("path %d: %w", i, errs[i])
		}
	}

	result := &MonteCarloResult{
		Outcomes:       outcomes,
		NumSimulations: config.NumSimulations,
		Seed:           config.Seed,
	}
	result.SuccessRate = successRate(outcomes)
	balances := sortedBalances(outcomes)
	result.MedianEndingBalance = balances[len(balances)/2]
	result.PercentileRanges = percentiles(balances)

	mcs.logger.Infof("monte carlo: %d paths, success rate %s, median ending balance %s",
		config.NumSimulations, result.SuccessRate.StringFixed(4), result.MedianEndingBalance.StringFixed(0))
	return result, nil
}

// samplePath draws one return path from normal distributions around the
// scenario means. Cash is held at its mean; sampled returns are floored near
// total loss to keep balances representable.
func (mcs *MonteCarloSimulator) samplePath(rng *rand.Rand, scenario domain.ScenarioParameters) []domain.YearReturn {
	path := make([]domain.YearReturn, mcs.input.HorizonYears)
	for i := range path {
		path[i] = domain.YearReturn{
			Growth:    sampleReturn(rng, scenario.GrowthReturn, scenario.ReturnVolatility),
			Bond:      sampleReturn(rng, scenario.BondReturn, bondVolatility),
			Cash:      scenario.CashReturn,
			Inflation: sampleReturn(rng, scenario.InflationRate, inflationVolatility),
		}
	}
	return path
}

// sampleReturn draws mean + z*stdDev with z from a Box-Muller transform.
func sampleReturn(rng *rand.Rand, mean, stdDev decimal.Decimal) decimal.Decimal {
	z := boxMuller(rng.Float64(), rng.Float64())
	sampled := mean.Add(decimal.NewFromFloat(z).Mul(stdDev))
	return money.Max(sampled, minReturn)
}

// boxMuller converts two uniform samples into one standard normal sample.
func boxMuller(u1, u2 float64) float64 {
	if u1 <= 0 {
		u1 = math.SmallestNonzeroFloat64
	}
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

func successRate(outcomes []PathOutcome) decimal.Decimal {
	success := 0
	for i := range outcomes {
		if outcomes[i].Status == domain.StatusCompleted {
			success++
		}
	}
	return decimal.NewFromInt(int64(success)).Div(decimal.NewFromInt(int64(len(outcomes))))
}

func sortedBalances(outcomes []PathOutcome) []decimal.Decimal {
	balances := make([]decimal.Decimal, len(outcomes))
	for i := range outcomes {
		balances[i] = outcomes[i].EndingBalance
	}
	sort.Slice(balances, func(i, j int) bool { return balances[i].LessThan(balances[j]) })
	return balances
}

func percentiles(sorted []decimal.Decimal) PercentileRanges {
	n := len(sorted)
	return PercentileRanges{
		P10: sorted[n/10],
		P25: sorted[n/4],
		P50: sorted[n/2],
		P75: sorted[3*n/4],
		P90: sorted[9*n/10],
	}
}

package calculation

import (
	"context"
	"fmt"
	"sync"

	"github.com/drawmate/withdrawal-engine/internal/domain"
)

// maxConcurrentRuns bounds the scenario worker pool.
const maxConcurrentRuns = 10

// Engine validates a simulation request once and fans the scenarios out to
// independent simulator runs. Scenarios share nothing: each run clones its
// account state, so the fan-out needs no locks around the domain model.
type Engine struct {
	logger Logger
}

// NewEngine builds an engine. Pass a nil logger for silence.
func NewEngine(logger Logger) *Engine {
	if logger == nil {
		logger = NopLogger{}
	}
	return &Engine{logger: logger}
}

// RunScenario validates the input and simulates a single scenario along its
// deterministic constant-return path.
func (e *Engine) RunScenario(ctx context.Context, input *domain.SimulationInput, scenario domain.ScenarioParameters) (*domain.SimulationResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sim := NewSimulator(input, e.logger)
	return sim.Run(scenario.Label, scenario.Path(input.HorizonYears))
}

// RunScenarios simulates every configured scenario in parallel and returns
// the per-scenario results in input order plus the cross-scenario summary.
func (e *Engine) RunScenarios(ctx context.Context, input *domain.SimulationInput) (*domain.ScenarioComparison, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	results := make([]*domain.SimulationResult, len(input.Scenarios))
	errs := make([]error, len(input.Scenarios))

	var wg sync.WaitGroup
	sem := make(chan struct{}, maxConcurrentRuns)
	for i := range input.Scenarios {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			scenario := input.Scenarios[idx]
			sim := NewSimulator(input, e.logger)
			results[idx], errs[idx] = sim.Run(scenario.Label, scenario.Path(input.HorizonYears))
		}(i)
	}
	wg.Wait()

	out := make([]domain.SimulationResult, 0, len(results))
	for i := range results {
		if errs[i] != nil {
			return nil, fmt.Errorf("scenario %s: %w", input.Scenarios[i].Label, errs[i])
		}
		out = append(out, *results[i])
		e.logger.Infof("scenario %s finished: status %s, %d years, ending balance %s",
			results[i].Scenario, results[i].Status, len(results[i].Years), results[i].EndingBalance.StringFixed(0))
	}
	return domain.NewScenarioComparison(out), nil
}

package output

import (
	"encoding/json"

	"github.com/drawmate/withdrawal-engine/internal/domain"
)

// JSONFormatter marshals the full comparison, slices and all, for machine
// consumption.
type JSONFormatter struct{}

func (JSONFormatter) Name() string { return "json" }

func (JSONFormatter) Format(comparison *domain.ScenarioComparison) ([]byte, error) {
	return json.MarshalIndent(comparison, "", "  ")
}

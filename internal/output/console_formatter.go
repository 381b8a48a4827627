package output

import (
	"fmt"
	"strings"

	"github.com/drawmate/withdrawal-engine/internal/domain"
	"github.com/drawmate/withdrawal-engine/pkg/money"
)

// ConsoleFormatter renders a human-readable plan summary with a year-by-year
// table per scenario.
type ConsoleFormatter struct{}

func (ConsoleFormatter) Name() string { return "console" }

func (ConsoleFormatter) Format(comparison *domain.ScenarioComparison) ([]byte, error) {
	var b strings.Builder

	b.WriteString("WITHDRAWAL PLAN PROJECTION\n")
	b.WriteString(strings.Repeat("=", 80) + "\n\n")

	for i := range comparison.Results {
		writeScenario(&b, &comparison.Results[i])
	}

	b.WriteString("CROSS-SCENARIO SUMMARY\n")
	b.WriteString(strings.Repeat("-", 80) + "\n")
	fmt.Fprintf(&b, "Ruin probability:       %s\n", money.FormatPercent(comparison.RuinProbability))
	fmt.Fprintf(&b, "Median ending balance:  %s\n", money.Format(comparison.MedianEndingBalance))
	fmt.Fprintf(&b, "Total tax (all runs):   %s\n", money.Format(comparison.TotalTaxPaid))

	return []byte(b.String()), nil
}

func writeScenario(b *strings.Builder, result *domain.SimulationResult) {
	fmt.Fprintf(b, "Scenario: %s\n", result.Scenario)
	b.WriteString(strings.Repeat("-", 80) + "\n")
	fmt.Fprintf(b, "Status:          %s\n", result.Status)
	if result.Status == domain.StatusRuin {
		fmt.Fprintf(b, "Ruin year:       %d (shortfall %s)\n", result.RuinYear, money.Format(result.Shortfall))
	}
	fmt.Fprintf(b, "Years funded:    %d\n", result.YearsLasted())
	fmt.Fprintf(b, "Ending balance:  %s\n", money.Format(result.EndingBalance))
	fmt.Fprintf(b, "Total withdrawn: %s\n", money.Format(result.TotalWithdrawn))
	fmt.Fprintf(b, "Total tax paid:  %s\n", money.Format(result.TotalTaxPaid))
	b.WriteString("\n")

	fmt.Fprintf(b, "%-5s %-4s %-16s %-16s %-10s %-16s %-6s\n",
		"Year", "Age", "Withdrawal", "Tax", "Rail", "End Balance", "Flags")
	for i := range result.Years {
		y := &result.Years[i]
		fmt.Fprintf(b, "%-5d %-4d %-16s %-16s %-10s %-16s %-6s\n",
			y.Year, y.Age,
			money.Format(y.WithdrawnTotal()),
			money.Format(y.TaxPaid),
			y.GuardrailStatus,
			money.Format(y.TotalBalance),
			yearFlags(y))
	}
	b.WriteString("\n")
}

// yearFlags compacts the per-year markers into a short column.
func yearFlags(y *domain.SimulationYear) string {
	var flags []string
	if y.PartialAllocation {
		flags = append(flags, "P")
	}
	if y.BucketShortfall {
		flags = append(flags, "S")
	}
	if y.Ruin {
		flags = append(flags, "RUIN")
	}
	return strings.Join(flags, ",")
}

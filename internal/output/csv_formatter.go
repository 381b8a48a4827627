package output

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/drawmate/withdrawal-engine/internal/domain"
)

// CSVFormatter exports one row per simulated year across all scenarios.
type CSVFormatter struct{}

func (CSVFormatter) Name() string { return "csv" }

func (CSVFormatter) Format(comparison *domain.ScenarioComparison) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"scenario", "year", "age", "guaranteed_income", "gross_need", "net_need",
		"guardrail_status", "withdrawal", "tax_paid", "partial_allocation",
		"bucket_shortfall", "bucket1", "bucket2", "bucket3", "total_balance", "ruin",
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for i := range comparison.Results {
		r := &comparison.Results[i]
		for j := range r.Years {
			y := &r.Years[j]
			row := []string{
				r.Scenario,
				strconv.Itoa(y.Year),
				strconv.Itoa(y.Age),
				y.GuaranteedIncome.StringFixed(2),
				y.GrossNeed.StringFixed(2),
				y.NetNeed.StringFixed(2),
				string(y.GuardrailStatus),
				y.WithdrawnTotal().StringFixed(2),
				y.TaxPaid.StringFixed(2),
				strconv.FormatBool(y.PartialAllocation),
				strconv.FormatBool(y.BucketShortfall),
				y.Buckets.Bucket1.StringFixed(2),
				y.Buckets.Bucket2.StringFixed(2),
				y.Buckets.Bucket3.StringFixed(2),
				y.TotalBalance.StringFixed(2),
				strconv.FormatBool(y.Ruin),
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

package output

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/drawmate/withdrawal-engine/internal/domain"
)

// Formatter defines a pluggable output formatter that returns a byte slice.
// Implementations should be pure (no side effects besides deterministic formatting).
type Formatter interface {
	Format(comparison *domain.ScenarioComparison) ([]byte, error)
	// Name returns a short identifier for logging / debugging.
	Name() string
}

// WriteFormatted runs a formatter and writes its output to filename. An
// empty filename produces a timestamped report file named after the format.
// Returns the name of the file written.
func WriteFormatted(f Formatter, comparison *domain.ScenarioComparison, filename string) (string, error) {
	data, err := f.Format(comparison)
	if err != nil {
		return "", err
	}
	if filename == "" {
		filename = fmt.Sprintf("withdrawal_report_%s.%s", time.Now().Format("20060102_150405"), fileExt(f.Name()))
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", err
	}
	return filename, nil
}

// fileExt maps a formatter name to a report file extension.
func fileExt(name string) string {
	if name == "console" {
		return "txt"
	}
	return name
}

// builtInFormatters stores available formatters (extended incrementally).
var builtInFormatters = []Formatter{
	ConsoleFormatter{},
	JSONFormatter{},
	CSVFormatter{},
}

// GetFormatterByName fetches a registered formatter, resolving aliases.
func GetFormatterByName(name string) Formatter {
	n := NormalizeFormatName(name)
	for _, f := range builtInFormatters {
		if f.Name() == n {
			return f
		}
	}
	return nil
}

// aliasMap provides user-friendly synonyms for format names.
var aliasMap = map[string]string{
	"text":        "console",
	"table":       "console",
	"json-pretty": "json",
	"csv-yearly":  "csv",
}

// NormalizeFormatName lowers and resolves aliases.
func NormalizeFormatName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if mapped, ok := aliasMap[n]; ok {
		return mapped
	}
	return n
}

// AvailableFormatterNames returns the canonical formatter names.
func AvailableFormatterNames() []string {
	names := make([]string, 0, len(builtInFormatters))
	for _, f := range builtInFormatters {
		names = append(names, f.Name())
	}
	sort.Strings(names)
	return names
}

package domain

import "fmt"

// InvalidInputError rejects a simulation request before any year is computed.
// Nothing is partially simulated when one of these is returned.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Reason)
}

// ConfigurationGapError reports a missing tax bracket schedule or threshold
// for an account kind or pension sub-balance. It is fatal: defaulting a
// missing rate would silently corrupt every downstream tax figure.
type ConfigurationGapError struct {
	Source string
	Year   int
}

func (e *ConfigurationGapError) Error() string {
	return fmt.Sprintf("configuration gap: no tax schedule for source %q in rule table year %d", e.Source, e.Year)
}

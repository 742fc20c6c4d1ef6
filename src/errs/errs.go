package errs

import "fmt"

// Error classes for the trading path. Anything that could cause a wrong
// trading decision must map to one of these so the orchestrator can decide
// between retry, reject, degrade and halt.

// ConfigurationError blocks startup. Never recovered at runtime.
type ConfigurationError struct {
	Section string
	Field   string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s.%s: %s", e.Section, e.Field, e.Reason)
}

func NewConfigurationError(section, field, reason string) *ConfigurationError {
	return &ConfigurationError{Section: section, Field: field, Reason: reason}
}

// ConnectivityError wraps an unreachable broker bridge, news feed or chat API.
// The caller retries with bounded backoff and then degrades to a no-op cycle.
type ConnectivityError struct {
	Target string
	Err    error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("connectivity error: %s: %v", e.Target, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

func NewConnectivityError(target string, err error) *ConnectivityError {
	return &ConnectivityError{Target: target, Err: err}
}

// ValidationError rejects a proposed trade locally. Logged, never fatal.
type ValidationError struct {
	Rule   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Rule, e.Reason)
}

func NewValidationError(rule, reason string) *ValidationError {
	return &ValidationError{Rule: rule, Reason: reason}
}

// StaleDataError flags a cache or status file older than its freshness
// threshold. Served with a warning, except for news gating which fails closed.
type StaleDataError struct {
	Source string
	AgeSec float64
}

func (e *StaleDataError) Error() string {
	return fmt.Sprintf("stale data: %s is %.0fs old", e.Source, e.AgeSec)
}

func NewStaleDataError(source string, ageSec float64) *StaleDataError {
	return &StaleDataError{Source: source, AgeSec: ageSec}
}

// Package config defines and validates the configuration for one load-test
// run: the collection to replay, how many simulated users, their cadence,
// and the global deadline.
package config

import (
	"fmt"
	"time"
)

// DefaultTimeout is the per-request timeout applied when none is configured.
const DefaultTimeout = 30 * time.Second

// RunConfig describes one load-test run. It is built once by the CLI layer
// and treated as immutable after Validate.
type RunConfig struct {
	// File is the path to the collection definition to replay. Required.
	File string
	// Users is the number of simulated users. Required, positive.
	Users int
	// Interval is the cadence between ticks for each user. Required, positive.
	Interval time.Duration
	// Total is the global deadline; no tick is scheduled after it elapses.
	// Required, positive.
	Total time.Duration
	// Stagger delays each user's first tick by a random offset in
	// [1ms, Interval].
	Stagger bool
	// Report renders the summary at the deadline.
	Report bool
	// DataFile optionally points at a request-body data set.
	DataFile string

	// Timeout bounds each individual request.
	Timeout time.Duration
	// HistoryDB optionally points at a SQLite file where completed runs
	// are recorded.
	HistoryDB string
	// Live renders a terminal dashboard instead of plain progress lines.
	Live bool
	// Output optionally writes the summary as JSON to this path.
	Output string
	// Quiet suppresses per-tick progress lines.
	Quiet bool
	// NoColor disables colored console output.
	NoColor bool
	// Seed seeds the stagger offsets; zero means time-seeded.
	Seed int64
}

// ValidationError describes a single invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns the error message.
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the configuration and returns every violation found.
func (c *RunConfig) Validate() []ValidationError {
	var errors []ValidationError

	if c.File == "" {
		errors = append(errors, ValidationError{
			Field:   "file",
			Message: "collection file is required",
		})
	}

	if c.Users <= 0 {
		errors = append(errors, ValidationError{
			Field:   "users",
			Message: fmt.Sprintf("must be a positive integer, got %d", c.Users),
		})
	}

	if c.Interval <= 0 {
		errors = append(errors, ValidationError{
			Field:   "interval",
			Message: "must be a positive number of seconds",
		})
	}

	if c.Total <= 0 {
		errors = append(errors, ValidationError{
			Field:   "total",
			Message: "must be a positive number of seconds",
		})
	}

	if c.Timeout < 0 {
		errors = append(errors, ValidationError{
			Field:   "timeout",
			Message: "cannot be negative",
		})
	}

	return errors
}

// RequestTimeout returns the configured per-request timeout, falling back
// to DefaultTimeout when unset.
func (c *RunConfig) RequestTimeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultTimeout
}

// ParseDuration parses a duration value from a config file or environment.
//
// Supported formats:
//   - Standard Go duration: "30s", "2m", "1h30m", "500ms"
//   - Seconds as integer: "30" (treated as 30 seconds)
func ParseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(s)
	if err == nil {
		return d, nil
	}

	var seconds int
	if _, err := fmt.Sscanf(s, "%d", &seconds); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}

	return 0, fmt.Errorf("invalid duration %q: use a Go duration like 30s or an integer number of seconds", s)
}

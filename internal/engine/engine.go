// Package engine executes one full collection run and reports per-request
// outcomes. The scheduler layer treats it as a black box: it hands over a
// collection plus per-run options and receives either a run summary or a
// run-level error.
package engine

import (
	"context"

	"github.com/volleyhq/volley/internal/collection"
)

// Runner executes a collection once.
type Runner interface {
	Run(ctx context.Context, coll *collection.Collection, opts Options) (*RunSummary, error)
}

// Options carries the per-run parameters supplied by the caller.
type Options struct {
	// Env is an ordered list of variable overrides for this run only.
	// Later entries win on duplicate keys.
	Env []EnvVar
	// Insecure skips TLS certificate verification.
	Insecure bool
	// Verbose streams a line per request to the runner's log writer.
	Verbose bool
}

// EnvVar is one variable override.
type EnvVar struct {
	Key   string
	Value string
}

// RunSummary is the structured result of one collection run.
type RunSummary struct {
	CollectionName string
	// Executions holds one entry per collection item, in item order.
	Executions []Execution
}

// Execution is the outcome of a single request within a run.
type Execution struct {
	ItemName   string
	StatusCode int
	DurationMs int64
}

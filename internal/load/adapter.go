package load

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/volleyhq/volley/internal/collection"
	"github.com/volleyhq/volley/internal/engine"
	"github.com/volleyhq/volley/internal/metrics"
	"github.com/volleyhq/volley/internal/payload"
)

// CollectionLoader loads the collection definition for a tick.
type CollectionLoader func(path string) (*collection.Collection, error)

// Observer is notified after each completed tick. Implementations must be
// safe for concurrent use.
type Observer interface {
	TickCompleted(userIndex int, tick int64, executions int, elapsed time.Duration)
}

// Adapter translates one scheduled tick into one collection run: it
// re-reads the collection, selects per-user request bodies, invokes the
// execution engine, and appends every outcome to the aggregator.
type Adapter struct {
	file   string
	loader CollectionLoader
	runner engine.Runner
	agg    *metrics.Aggregator

	bodies *payload.Set
	obs    Observer

	ticks atomic.Int64
}

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

// WithBodies supplies the request-body data set for per-user
// parameterization.
func WithBodies(set *payload.Set) AdapterOption {
	return func(a *Adapter) {
		a.bodies = set
	}
}

// WithObserver registers a per-tick completion observer.
func WithObserver(obs Observer) AdapterOption {
	return func(a *Adapter) {
		a.obs = obs
	}
}

// WithLoader overrides how the collection file is read.
func WithLoader(loader CollectionLoader) AdapterOption {
	return func(a *Adapter) {
		a.loader = loader
	}
}

// NewAdapter creates an adapter that replays the collection at file on
// every tick and records outcomes into agg.
func NewAdapter(file string, runner engine.Runner, agg *metrics.Aggregator, opts ...AdapterOption) *Adapter {
	a := &Adapter{
		file:   file,
		loader: collection.Load,
		runner: runner,
		agg:    agg,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ExecuteOnce performs one full collection run for the given 1-based user
// index. Collection load failures and engine run errors are returned to the
// scheduler, which treats the first one as fatal for the whole run.
func (a *Adapter) ExecuteOnce(ctx context.Context, userIndex int) error {
	started := time.Now()

	// The file is re-read on every tick, so edits take effect mid-run.
	coll, err := a.loader(a.file)
	if err != nil {
		return fmt.Errorf("loading collection: %w", err)
	}

	// Runs always skip TLS verification and never stream request lines.
	opts := engine.Options{
		Env:      a.envFor(coll, userIndex),
		Insecure: true,
		Verbose:  false,
	}

	summary, err := a.runner.Run(ctx, coll, opts)
	if err != nil {
		return err
	}

	for _, ex := range summary.Executions {
		a.agg.Append(metrics.Record{
			Name:      ex.ItemName,
			Code:      ex.StatusCode,
			LatencyMs: ex.DurationMs,
		})
	}

	if a.obs != nil {
		a.obs.TickCompleted(userIndex, a.ticks.Add(1), len(summary.Executions), time.Since(started))
	}
	return nil
}

// envFor builds the per-run variable overrides: for every collection item
// with a matching data-set entry, requestBody{position} carries the body
// selected for this user. Positions are 1-based item positions within the
// collection.
func (a *Adapter) envFor(coll *collection.Collection, userIndex int) []engine.EnvVar {
	if a.bodies == nil {
		return nil
	}

	var env []engine.EnvVar
	for i := range coll.Items {
		entry, ok := a.bodies.Lookup(coll.Items[i].Name)
		if !ok {
			continue
		}
		env = append(env, engine.EnvVar{
			Key:   fmt.Sprintf("requestBody%d", i+1),
			Value: entry.SelectBody(userIndex),
		})
	}
	return env
}

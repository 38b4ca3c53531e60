// Package load owns the simulated-user scheduling core: it spins up one
// timeline per user, fires a full collection execution per tick at a fixed
// interval, and stops scheduling when the global deadline elapses.
//
// Ticks are issued on the wall clock with no backpressure: a run that takes
// longer than the interval does not delay the next tick, so overlapping
// in-flight executions for the same user are expected under load. The
// deadline stops future scheduling only; executions already in flight keep
// running and still report their outcomes.
package load

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/volleyhq/volley/internal/config"
)

// TickExecutor performs one collection run for one simulated user.
// Implementations must be safe for concurrent calls: overlapping ticks from
// one user and parallel ticks from many users both happen.
type TickExecutor interface {
	ExecuteOnce(ctx context.Context, userIndex int) error
}

// Scheduler drives all user timelines for one run.
type Scheduler struct {
	users    int
	interval time.Duration
	total    time.Duration
	stagger  bool

	exec TickExecutor
	rng  *rand.Rand

	wg sync.WaitGroup
}

// New creates a scheduler for the given run configuration. A non-zero
// cfg.Seed makes stagger offsets reproducible.
func New(cfg config.RunConfig, exec TickExecutor) *Scheduler {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Scheduler{
		users:    cfg.Users,
		interval: cfg.Interval,
		total:    cfg.Total,
		stagger:  cfg.Stagger,
		exec:     exec,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// Run starts every user timeline and blocks until the global deadline
// elapses, the first executor error arrives, or ctx is cancelled.
//
// On deadline it returns nil without cancelling in-flight executions: their
// completions may still land after Run returns, racing with whatever the
// caller does next. The first executor error aborts all scheduling and is
// returned as-is. Cancelling ctx aborts scheduling and in-flight work both.
func (s *Scheduler) Run(ctx context.Context) error {
	deadline := time.NewTimer(s.total)
	defer deadline.Stop()

	stopCh := make(chan struct{})
	errCh := make(chan error, 1)

	// Stagger offsets are drawn before any timeline starts, from a single
	// seedable source.
	for i := 1; i <= s.users; i++ {
		delay := s.staggerDelay()
		s.wg.Add(1)
		go s.runUser(ctx, i, delay, stopCh, errCh)
	}

	var err error
	select {
	case <-deadline.C:
	case err = <-errCh:
	case <-ctx.Done():
		err = ctx.Err()
	}

	close(stopCh)
	s.wg.Wait()
	return err
}

// runUser is one user timeline: optional stagger delay, an immediate first
// tick, then one tick per interval until stopped.
func (s *Scheduler) runUser(ctx context.Context, userIndex int, delay time.Duration, stopCh <-chan struct{}, errCh chan<- error) {
	defer s.wg.Done()

	if delay > 0 {
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-stopCh:
			timer.Stop()
			return
		}
	}

	s.fire(ctx, userIndex, errCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.fire(ctx, userIndex, errCh)
		case <-stopCh:
			return
		}
	}
}

// fire dispatches one tick without waiting for it: the execution runs in
// its own goroutine so a slow collection never skews the cadence.
func (s *Scheduler) fire(ctx context.Context, userIndex int, errCh chan<- error) {
	go func() {
		if err := s.exec.ExecuteOnce(ctx, userIndex); err != nil {
			select {
			case errCh <- err:
			default:
			}
		}
	}()
}

// staggerDelay returns a user's first-tick offset: zero when stagger is
// off, otherwise a uniform draw from [1ms, interval] inclusive.
func (s *Scheduler) staggerDelay() time.Duration {
	if !s.stagger {
		return 0
	}

	intervalMs := s.interval.Milliseconds()
	if intervalMs <= 0 {
		return s.interval
	}
	return time.Duration(1+s.rng.Int63n(intervalMs)) * time.Millisecond
}

// Package scheduler drives periodic scan cycles with cooperative stop.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Loop invokes fn once immediately and then at every interval tick until the
// context is cancelled. Each loop runs on a single goroutine, so two
// invocations of the same fn never overlap; when a cycle outlasts the
// interval the intervening ticks coalesce and are skipped. Cancellation is
// honored between cycles only: a running cycle always finishes its state
// mutations first.
type Loop struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context)
}

// Runner owns a set of loops and their goroutines.
type Runner struct {
	loops []Loop
	log   zerolog.Logger
	wg    sync.WaitGroup
}

func NewRunner(logger zerolog.Logger, loops ...Loop) *Runner {
	return &Runner{loops: loops, log: logger}
}

// Start launches every loop. Use Wait to block until all loops have observed
// cancellation and finished their in-flight cycle.
func (r *Runner) Start(ctx context.Context) {
	for _, loop := range r.loops {
		r.wg.Add(1)
		go func(l Loop) {
			defer r.wg.Done()
			r.run(ctx, l)
		}(loop)
	}
}

func (r *Runner) run(ctx context.Context, l Loop) {
	log := r.log.With().Str("loop", l.Name).Logger()
	log.Info().Dur("interval", l.Interval).Msg("loop started")

	ticker := time.NewTicker(l.Interval)
	defer ticker.Stop()

	l.Run(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("loop stopped")
			return
		case <-ticker.C:
			// Re-check: cancellation during a long cycle must win over a
			// pending tick.
			select {
			case <-ctx.Done():
				log.Info().Msg("loop stopped")
				return
			default:
			}
			l.Run(ctx)
		}
	}
}

// Wait blocks until all loops have exited.
func (r *Runner) Wait() {
	r.wg.Wait()
}

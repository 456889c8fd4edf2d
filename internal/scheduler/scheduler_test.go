package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestRunnerRunsImmediatelyAndOnTicks(t *testing.T) {
	var count atomic.Int64
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := NewRunner(zerolog.Nop(), Loop{
		Name:     "fast",
		Interval: 10 * time.Millisecond,
		Run:      func(ctx context.Context) { count.Add(1) },
	})
	r.Start(ctx)

	assert.Eventually(t, func() bool { return count.Load() >= 3 },
		time.Second, 5*time.Millisecond, "first run is immediate, then ticks follow")

	cancel()
	r.Wait()
}

func TestRunnerStopsBetweenCycles(t *testing.T) {
	var count atomic.Int64
	ctx, cancel := context.WithCancel(context.Background())

	r := NewRunner(zerolog.Nop(), Loop{
		Name:     "slow",
		Interval: 5 * time.Millisecond,
		Run: func(ctx context.Context) {
			count.Add(1)
			time.Sleep(20 * time.Millisecond)
		},
	})
	r.Start(ctx)

	assert.Eventually(t, func() bool { return count.Load() >= 1 }, time.Second, time.Millisecond)
	cancel()
	r.Wait()

	final := count.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, final, count.Load(), "no cycles start after cancellation")
}

func TestRunnerMultipleLoops(t *testing.T) {
	var a, b atomic.Int64
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := NewRunner(zerolog.Nop(),
		Loop{Name: "a", Interval: 10 * time.Millisecond, Run: func(ctx context.Context) { a.Add(1) }},
		Loop{Name: "b", Interval: 10 * time.Millisecond, Run: func(ctx context.Context) { b.Add(1) }},
	)
	r.Start(ctx)

	assert.Eventually(t, func() bool { return a.Load() >= 1 && b.Load() >= 1 },
		time.Second, time.Millisecond)

	cancel()
	r.Wait()
}

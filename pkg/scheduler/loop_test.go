package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoyobot/hoyobot-go/pkg/checkin"
	"github.com/hoyobot/hoyobot-go/pkg/config"
)

type fakeRunner struct {
	mu      sync.Mutex
	calls   int
	results []bool // per-call outcome; missing entries succeed
	panics  int    // panic for the first n calls
}

func (f *fakeRunner) Run(ctx context.Context) (bool, checkin.Summary) {
	f.mu.Lock()
	f.calls++
	n := f.calls
	f.mu.Unlock()
	if n <= f.panics {
		panic("runner exploded")
	}
	ok := true
	if n <= len(f.results) {
		ok = f.results[n-1]
	}
	return ok, checkin.Summary{}
}

func (f *fakeRunner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func testLoop(cfg *config.Config, r CycleRunner) *Loop {
	l := New(cfg, r)
	l.pollInterval = time.Millisecond
	l.cooldown = time.Millisecond
	return l
}

func TestNextRunTimeDaily(t *testing.T) {
	cfg := config.Default()
	cfg.Loop.Mode = "daily"
	cfg.Loop.DailyTime = "09:00"
	l := New(cfg, nil)

	before := time.Date(2026, 1, 2, 8, 59, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC), l.NextRunTime(before))

	after := time.Date(2026, 1, 2, 9, 1, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 1, 3, 9, 0, 0, 0, time.UTC), l.NextRunTime(after))

	// Exactly on time rolls over to tomorrow.
	exact := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 1, 3, 9, 0, 0, 0, time.UTC), l.NextRunTime(exact))
}

func TestNextRunTimeDailyInvalidFallsBack(t *testing.T) {
	cfg := config.Default()
	cfg.Loop.Mode = "daily"
	cfg.Loop.DailyTime = "not-a-time"
	l := New(cfg, nil)

	now := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, now.Add(24*time.Hour), l.NextRunTime(now))
}

func TestNextRunTimeInterval(t *testing.T) {
	cfg := config.Default()
	cfg.Loop.Mode = "interval"
	cfg.Loop.IntervalHours = 6
	l := New(cfg, nil)

	now := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, now.Add(6*time.Hour), l.NextRunTime(now))
}

func TestNextRunTimeCron(t *testing.T) {
	cfg := config.Default()
	cfg.Loop.Mode = "cron"
	cfg.Loop.CronExpr = "30 10 * * *"
	l := New(cfg, nil)

	now := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 1, 2, 10, 30, 0, 0, time.UTC), l.NextRunTime(now))

	cfg.Loop.CronExpr = "garbage"
	assert.Equal(t, now.Add(24*time.Hour), l.NextRunTime(now))
}

func TestRunStopsAtMaxRuns(t *testing.T) {
	cfg := config.Default()
	cfg.Loop.Mode = "interval"
	cfg.Loop.IntervalHours = 0
	cfg.Loop.MaxRuns = 2

	runner := &fakeRunner{}
	l := testLoop(cfg, runner)
	l.Run(context.Background())

	assert.Equal(t, 2, runner.callCount())
	assert.Equal(t, 2, l.RunCount())
	assert.True(t, l.LastSuccess())
}

func TestRunRetriesFailedCycle(t *testing.T) {
	cfg := config.Default()
	cfg.Loop.Mode = "interval"
	cfg.Loop.IntervalHours = 0
	cfg.Loop.MaxRuns = 2
	cfg.Loop.RetryFailed = true
	cfg.Loop.RetryDelayMinutes = 0

	runner := &fakeRunner{results: []bool{false, true}}
	l := testLoop(cfg, runner)
	l.Run(context.Background())

	assert.Equal(t, 2, runner.callCount())
	assert.True(t, l.LastSuccess())
}

func TestRunSurvivesRunnerPanic(t *testing.T) {
	cfg := config.Default()
	cfg.Loop.Mode = "interval"
	cfg.Loop.IntervalHours = 0
	cfg.Loop.MaxRuns = 1

	runner := &fakeRunner{panics: 1}
	l := testLoop(cfg, runner)
	l.Run(context.Background())

	// The panicking call does not count as a run; the loop cools down and
	// tries again.
	assert.Equal(t, 2, runner.callCount())
	assert.Equal(t, 1, l.RunCount())
}

func TestRunCancellation(t *testing.T) {
	cfg := config.Default()
	cfg.Loop.Mode = "interval"
	cfg.Loop.IntervalHours = 24

	runner := &fakeRunner{}
	l := testLoop(cfg, runner)
	l.pollInterval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		l.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop after cancellation")
	}
	assert.Equal(t, 0, runner.callCount())
}

func TestWaitUntilHonorsCancellation(t *testing.T) {
	cfg := config.Default()
	l := testLoop(cfg, &fakeRunner{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := l.waitUntil(ctx, time.Now().Add(time.Hour))
	require.ErrorIs(t, err, context.Canceled)
}

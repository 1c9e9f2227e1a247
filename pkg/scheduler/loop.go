// Package scheduler drives the recurring check-in loop: it computes the next
// run time, waits for it in small cancellable steps, triggers a cycle and
// survives unexpected errors indefinitely.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/hoyobot/hoyobot-go/pkg/checkin"
	"github.com/hoyobot/hoyobot-go/pkg/config"
	"github.com/hoyobot/hoyobot-go/pkg/logging"
)

// CycleRunner runs one pass over all enabled games.
type CycleRunner interface {
	Run(ctx context.Context) (bool, checkin.Summary)
}

// Loop owns the scheduler state: the run counter and the last cycle result.
type Loop struct {
	cfg    *config.Config
	runner CycleRunner
	log    zerolog.Logger

	runCount    int
	lastSuccess bool

	// Overridable in tests.
	pollInterval time.Duration
	cooldown     time.Duration
	now          func() time.Time
}

// New creates a scheduler loop with production timing: 1s wait polling and a
// 60s cooldown after unexpected errors.
func New(cfg *config.Config, runner CycleRunner) *Loop {
	return &Loop{
		cfg:          cfg,
		runner:       runner,
		log:          logging.WithComponent("scheduler"),
		lastSuccess:  true,
		pollInterval: time.Second,
		cooldown:     60 * time.Second,
		now:          time.Now,
	}
}

// RunCount returns how many cycles have completed.
func (l *Loop) RunCount() int {
	return l.runCount
}

// LastSuccess reports whether the most recent cycle fully succeeded.
func (l *Loop) LastSuccess() bool {
	return l.lastSuccess
}

// NextRunTime computes when the next cycle is due, in UTC. Daily mode rolls
// to the following day once today's wall-clock time has passed; interval mode
// is now plus the configured hours; cron mode follows the expression. Parse
// failures fall back to a 24h interval with a warning.
func (l *Loop) NextRunTime(now time.Time) time.Time {
	now = now.UTC()
	loop := l.cfg.Loop

	switch loop.Mode {
	case "daily":
		hour, minute, err := config.ParseDailyTime(loop.DailyTime)
		if err != nil {
			l.log.Warn().Str("dailyTime", loop.DailyTime).Msg("invalid daily time, using 24h interval")
			return now.Add(24 * time.Hour)
		}
		next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, time.UTC)
		if !next.After(now) {
			next = next.Add(24 * time.Hour)
		}
		return next
	case "cron":
		parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
		sched, err := parser.Parse(loop.CronExpr)
		if err != nil {
			l.log.Warn().Err(err).Str("cronExpr", loop.CronExpr).Msg("invalid cron expression, using 24h interval")
			return now.Add(24 * time.Hour)
		}
		return sched.Next(now)
	default: // interval
		return now.Add(time.Duration(loop.IntervalHours) * time.Hour)
	}
}

func (l *Loop) shouldContinue() bool {
	maxRuns := l.cfg.Loop.MaxRuns
	return maxRuns == 0 || l.runCount < maxRuns
}

// waitUntil blocks until t in pollInterval steps so cancellation is honored
// within roughly one step.
func (l *Loop) waitUntil(ctx context.Context, t time.Time) error {
	for {
		remaining := t.Sub(l.now())
		if remaining <= 0 {
			return ctx.Err()
		}
		step := l.pollInterval
		if remaining < step {
			step = remaining
		}
		timer := time.NewTimer(step)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (l *Loop) waitFor(ctx context.Context, d time.Duration) error {
	return l.waitUntil(ctx, l.now().Add(d))
}

// Run executes the loop until cancellation or the max-run limit. Unexpected
// errors inside an iteration are logged and followed by a cooldown; they
// never terminate the loop.
func (l *Loop) Run(ctx context.Context) {
	for l.shouldContinue() {
		if ctx.Err() != nil {
			l.log.Info().Msg("loop interrupted")
			return
		}
		if err := l.iterate(ctx); err != nil {
			l.log.Info().Msg("loop interrupted")
			return
		}
	}
	l.log.Info().Int("runs", l.runCount).Msg("max runs reached")
}

// iterate performs one wait-run-record pass. Returns an error only on
// cancellation.
func (l *Loop) iterate(ctx context.Context) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			l.log.Error().Interface("panic", rec).Msg("loop error, cooling down")
			err = l.waitFor(ctx, l.cooldown)
		}
	}()

	next := l.NextRunTime(l.now())
	l.log.Info().
		Str("mode", l.cfg.Loop.Mode).
		Time("next_run", next).
		Bool("last_success", l.lastSuccess).
		Msg("waiting for next run")
	if err := l.waitUntil(ctx, next); err != nil {
		return err
	}

	success, _ := l.runner.Run(ctx)
	l.lastSuccess = success
	l.runCount++

	if !l.shouldContinue() {
		return nil
	}

	if !success && l.cfg.Loop.RetryFailed {
		delay := time.Duration(l.cfg.Loop.RetryDelayMinutes) * time.Minute
		l.log.Warn().Dur("delay", delay).Msg("cycle failed, retrying after delay")
		if err := l.waitFor(ctx, delay); err != nil {
			return err
		}
	}
	return nil
}

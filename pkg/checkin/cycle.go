package checkin

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hoyobot/hoyobot-go/pkg/client"
	"github.com/hoyobot/hoyobot-go/pkg/config"
	"github.com/hoyobot/hoyobot-go/pkg/cookies"
	"github.com/hoyobot/hoyobot-go/pkg/games"
	"github.com/hoyobot/hoyobot-go/pkg/logging"
	"github.com/hoyobot/hoyobot-go/pkg/notify"
)

// Result is one game's entry in a cycle summary.
type Result struct {
	Succeeded bool
}

// Summary maps game codes to results for one cycle. Immutable once returned.
type Summary struct {
	CycleID string
	Results map[string]Result
}

// Runner executes one check-in cycle over all enabled games, strictly
// sequentially and in lexical order by game code.
type Runner struct {
	cfg      *config.Config
	notifier notify.Notifier
	log      zerolog.Logger

	workflows []*Workflow
	skipped   []games.Game // credentials failed to load at startup
}

// NewRunner builds workflows for every enabled game. A game whose cookie
// file is missing or incomplete is excluded for this process run and reported
// as failed each cycle; other games are unaffected.
func NewRunner(cfg *config.Config, notifier notify.Notifier) *Runner {
	r := &Runner{
		cfg:      cfg,
		notifier: notifier,
		log:      logging.WithComponent("cycle"),
	}

	for _, game := range cfg.EnabledGames() {
		jar, err := cookies.Load(game)
		if err != nil {
			r.log.Error().Err(err).Str("game", game.ShortName).Msg("cookie error, skipping game")
			notifier.Send(game.ShortName, fmt.Sprintf("❌ Cookie error: %v", err), false)
			r.skipped = append(r.skipped, game)
			continue
		}
		exec := client.NewExecutor(game, jar, cfg, notifier)
		r.workflows = append(r.workflows, NewWorkflow(game, exec, cfg, notifier))
	}
	return r
}

// Run performs one cycle. A panic in one game's workflow is caught, reported
// and does not abort the cycle. The aggregate is the AND of all per-game
// outcomes, including games skipped for credential errors.
func (r *Runner) Run(ctx context.Context) (bool, Summary) {
	summary := Summary{
		CycleID: uuid.New().String()[:8],
		Results: make(map[string]Result),
	}
	log := r.log.With().Str("cycle", summary.CycleID).Logger()
	log.Info().Msg("starting check-ins")

	all := true
	for _, game := range r.skipped {
		summary.Results[game.Code] = Result{Succeeded: false}
		all = false
	}

	delay := time.Duration(r.cfg.Settings.DelayBetweenGames) * time.Second
	for i, w := range r.workflows {
		if i > 0 && delay > 0 {
			log.Info().Dur("delay", delay).Msg("waiting before next game")
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
			case <-timer.C:
			}
		}
		if ctx.Err() != nil {
			summary.Results[w.Game().Code] = Result{Succeeded: false}
			all = false
			continue
		}

		ok := r.runOne(ctx, w)
		summary.Results[w.Game().Code] = Result{Succeeded: ok}
		all = all && ok

		log.Info().Str("game", w.Game().ShortName).Bool("success", ok).Msg("game finished")
	}

	log.Info().Bool("all_succeeded", all).Int("games", len(summary.Results)).Msg("cycle finished")
	return all, summary
}

// runOne isolates one game's workflow, converting panics into failures.
func (r *Runner) runOne(ctx context.Context, w *Workflow) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error().Str("game", w.Game().ShortName).Interface("panic", rec).Msg("check-in error")
			r.notifier.Send(w.Game().ShortName, fmt.Sprintf("Check-in error: %v", rec), false)
			ok = false
		}
	}()
	return w.Run(ctx).Succeeded()
}

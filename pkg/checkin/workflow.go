package checkin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/hoyobot/hoyobot-go/pkg/client"
	"github.com/hoyobot/hoyobot-go/pkg/config"
	"github.com/hoyobot/hoyobot-go/pkg/cookies"
	"github.com/hoyobot/hoyobot-go/pkg/games"
	"github.com/hoyobot/hoyobot-go/pkg/logging"
	"github.com/hoyobot/hoyobot-go/pkg/notify"
)

// Workflow runs the per-game check-in sequence: fetch status, claim if
// pending, reverify, optionally resolve reward details, report.
type Workflow struct {
	game        games.Game
	exec        *client.Executor
	notifier    notify.Notifier
	log         zerolog.Logger
	lang        string
	showRewards bool
}

// NewWorkflow wires a workflow around an executor.
func NewWorkflow(game games.Game, exec *client.Executor, cfg *config.Config, notifier notify.Notifier) *Workflow {
	return &Workflow{
		game:        game,
		exec:        exec,
		notifier:    notifier,
		log:         logging.WithGame("checkin", game.ShortName),
		lang:        cfg.Settings.Language,
		showRewards: cfg.Settings.ShowDetailedRewards,
	}
}

// Game returns the game this workflow serves.
func (w *Workflow) Game() games.Game {
	return w.game
}

func (w *Workflow) baseQuery() url.Values {
	return url.Values{
		"act_id": {w.game.ActID},
		"lang":   {w.lang},
	}
}

// showCookieGuide logs the cookie setup steps. Informational, not fatal.
func (w *Workflow) showCookieGuide() {
	for i, step := range cookies.SetupGuide(w.game, w.lang) {
		w.log.Info().Msgf("cookie setup %d. %s", i+1, step)
	}
}

// GetInfo fetches today's check-in state. A non-zero retcode is a failure;
// the invalid-cookie sentinel additionally surfaces the setup guide. Failures
// are reported through the notifier.
func (w *Workflow) GetInfo(ctx context.Context) (*client.CheckinInfo, error) {
	resp, err := w.exec.Do(ctx, http.MethodGet, w.game.InfoPath, w.baseQuery(), nil)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			w.showCookieGuide()
			w.notifier.Send(w.game.ShortName, "❌ Unauthorized: invalid or expired cookies", false)
		}
		return nil, err
	}
	if resp.Retcode != client.RetSuccess {
		msg := fmt.Sprintf("❌ Failed to get check-in info: %s", resp.Message)
		w.log.Error().Int("retcode", resp.Retcode).Str("message", resp.Message).Msg("failed to get check-in info")
		w.notifier.Send(w.game.ShortName, msg, false)
		if resp.Retcode == client.RetInvalidCookie {
			w.showCookieGuide()
			return nil, fmt.Errorf("get check-in info: %s: %w", resp.Message, client.ErrUnauthorized)
		}
		return nil, fmt.Errorf("get check-in info: %s (retcode %d)", resp.Message, resp.Retcode)
	}
	return resp.DecodeInfo()
}

// PerformCheckin claims today's reward. Exactly one outcome notification is
// sent per call (network exhaustion is already reported by the executor).
func (w *Workflow) PerformCheckin(ctx context.Context) Outcome {
	query := url.Values{"act_id": {w.game.ActID}}
	body := map[string]string{"lang": w.lang}

	resp, err := w.exec.Do(ctx, http.MethodPost, w.game.SignPath, query, body)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			w.showCookieGuide()
			w.notifier.Send(w.game.ShortName, "❌ Unauthorized: invalid or expired cookies", false)
			return Outcome{Kind: OutcomeAuthInvalid, Message: err.Error()}
		}
		w.log.Error().Err(err).Msg("check-in failed")
		return Outcome{Kind: OutcomeNetworkFailure, Message: err.Error()}
	}

	var out Outcome
	var msg string
	switch resp.Retcode {
	case client.RetSuccess:
		out = Outcome{Kind: OutcomeSuccess}
		if award, err := resp.DecodeAward(); err == nil {
			out.Reward, out.Count = games.ResolveReward(w.lang, award.Name, award.Count)
		}
		msg = fmt.Sprintf("✅ Success! %s x%d", out.Reward, out.Count)
	case client.RetAlreadyClaimed:
		out = Outcome{Kind: OutcomeAlreadyDone}
		msg = "✅ Already checked in"
	case client.RetInvalidCookie:
		w.showCookieGuide()
		out = Outcome{Kind: OutcomeAuthInvalid, Message: resp.Message}
		msg = fmt.Sprintf("❌ Invalid cookie: %s", resp.Message)
	default:
		out = Outcome{Kind: OutcomeAPIError, Message: resp.Message}
		msg = fmt.Sprintf("❌ Failed: %s", resp.Message)
	}

	w.log.Info().Str("outcome", out.Kind.String()).Msg(msg)
	w.notifier.Send(w.game.ShortName, msg, out.Succeeded())
	return out
}

// rewardAt fetches the monthly reward calendar and resolves the entry at the
// given zero-based index. Best effort; failures return ok=false.
func (w *Workflow) rewardAt(ctx context.Context, index int) (name string, count int, ok bool) {
	resp, err := w.exec.Do(ctx, http.MethodGet, w.game.RewardPath, w.baseQuery(), nil)
	if err != nil || resp.Retcode != client.RetSuccess {
		return "", 0, false
	}
	awards, err := resp.DecodeAwards()
	if err != nil || index < 0 || index >= len(awards) {
		return "", 0, false
	}
	name, count = games.ResolveReward(w.lang, awards[index].Name, awards[index].Count)
	return name, count, true
}

// TodayReward resolves the reward for the current sign-in day.
func (w *Workflow) TodayReward(ctx context.Context, info *client.CheckinInfo) (string, int, bool) {
	return w.rewardAt(ctx, info.TotalSignDay-1)
}

// NextReward resolves the reward following the given sign-in day.
func (w *Workflow) NextReward(ctx context.Context, day int) (string, int, bool) {
	return w.rewardAt(ctx, day)
}

// Run drives the full workflow. It returns a success outcome once a
// checked-in state is confirmed; a status refetch failure after a successful
// claim does not invalidate the claim.
func (w *Workflow) Run(ctx context.Context) Outcome {
	info, err := w.GetInfo(ctx)
	if err != nil {
		return outcomeFromError(err)
	}

	result := Outcome{Kind: OutcomeAlreadyDone}
	if !info.IsSign {
		result = w.PerformCheckin(ctx)
		if !result.Succeeded() {
			return result
		}
		// Best-effort reverify.
		if fresh, err := w.GetInfo(ctx); err == nil {
			info = fresh
		}
	}

	status := w.log.Info().
		Bool("is_sign", info.IsSign).
		Int("day", info.TotalSignDay)
	if info.SignCntMissed > 0 {
		status = status.Int("missed", info.SignCntMissed)
	}
	if w.showRewards {
		if name, count, ok := w.TodayReward(ctx, info); ok {
			status = status.Str("today_reward", fmt.Sprintf("%s x%d", name, count))
		}
		if name, count, ok := w.NextReward(ctx, info.TotalSignDay); ok {
			status = status.Str("next_reward", fmt.Sprintf("%s x%d", name, count))
		}
	}
	status.Msg("check-in state")

	return result
}

func outcomeFromError(err error) Outcome {
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		return Outcome{Kind: OutcomeAuthInvalid, Message: err.Error()}
	case errors.Is(err, client.ErrNetwork),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return Outcome{Kind: OutcomeNetworkFailure, Message: err.Error()}
	default:
		return Outcome{Kind: OutcomeAPIError, Message: err.Error()}
	}
}

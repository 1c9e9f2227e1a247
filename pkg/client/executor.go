package client

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/hoyobot/hoyobot-go/pkg/config"
	"github.com/hoyobot/hoyobot-go/pkg/cookies"
	"github.com/hoyobot/hoyobot-go/pkg/games"
	"github.com/hoyobot/hoyobot-go/pkg/logging"
	"github.com/hoyobot/hoyobot-go/pkg/notify"
)

// ErrUnauthorized means the upstream rejected the session cookies (HTTP 401).
// Terminal for the current call; never retried.
var ErrUnauthorized = errors.New("unauthorized: invalid or expired cookies")

// ErrNetwork means all retry attempts were exhausted without a usable
// response.
var ErrNetwork = errors.New("network failure")

// dsSalt is the fixed salt for the Genshin Impact dynamic security token.
const dsSalt = "6s25p5ox5y14umn1p61aqyyvbvvl3lrt"

var chromeVersions = []string{"120.0.0.0", "121.0.0.0", "122.0.0.0"}

// Executor issues authenticated API calls for one game with rate-limit
// jitter, bounded retries and endpoint fallback. Used serially; one instance
// per game.
type Executor struct {
	game     games.Game
	jar      *cookies.Jar
	selector *Selector
	client   *http.Client
	notifier notify.Notifier
	log      zerolog.Logger

	lang        string
	userAgent   string
	maxAttempts int

	// Sleep bounds; overridable in tests, defaults match production behavior.
	jitterMin  time.Duration
	jitterMax  time.Duration
	backoffMin time.Duration // HTTP 429
	backoffMax time.Duration
}

// NewExecutor wires an executor for one game from the loaded configuration.
func NewExecutor(game games.Game, jar *cookies.Jar, cfg *config.Config, notifier notify.Notifier) *Executor {
	transport := http.DefaultTransport
	if cfg.Advanced.ProxySupport && cfg.Advanced.ProxyURL != "" {
		if proxyURL, err := url.Parse(cfg.Advanced.ProxyURL); err == nil {
			t := http.DefaultTransport.(*http.Transport).Clone()
			t.Proxy = http.ProxyURL(proxyURL)
			transport = t
		}
	}

	ua := chromeVersions[0]
	if cfg.Advanced.UserAgentRotation {
		ua = chromeVersions[rand.Intn(len(chromeVersions))]
	}

	return &Executor{
		game:     game,
		jar:      jar,
		selector: NewSelector(game.Endpoints),
		client: &http.Client{
			Timeout:   time.Duration(cfg.Advanced.RequestTimeout) * time.Second,
			Transport: transport,
		},
		notifier:    notifier,
		log:         logging.WithGame("client", game.ShortName),
		lang:        cfg.Settings.Language,
		userAgent:   fmt.Sprintf("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/%s Safari/537.36", ua),
		maxAttempts: cfg.Settings.MaxRetries,
		jitterMin:   500 * time.Millisecond,
		jitterMax:   time.Duration(cfg.Advanced.RateLimitDelay * float64(time.Second)),
		backoffMin:  5 * time.Second,
		backoffMax:  10 * time.Second,
	}
}

// Selector exposes the endpoint state, mainly for tests.
func (e *Executor) Selector() *Selector {
	return e.selector
}

// generateDS builds the dynamic security token Genshin Impact requests carry.
func generateDS() string {
	const letters = "abcdefghijklmnopqrstuvwxyz0123456789"
	t := time.Now().Unix()
	r := make([]byte, 6)
	for i := range r {
		r[i] = letters[rand.Intn(len(letters))]
	}
	sum := md5.Sum([]byte(fmt.Sprintf("salt=%s&t=%d&r=%s", dsSalt, t, r)))
	return fmt.Sprintf("%d,%s,%x", t, r, sum)
}

func (e *Executor) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("Cookie", e.jar.Header())
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-rpc-lang", e.lang)
	req.Header.Set("Referer", e.game.CheckinURL)

	if e.game.Code == "gi" {
		req.Header.Set("x-rpc-app_version", "1.5.0")
		req.Header.Set("DS", generateDS())
	} else {
		req.Header.Set("x-rpc-app_version", "2.73.1")
		req.Header.Set("x-rpc-game_biz", e.game.GameBiz)
	}
	if req.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
}

func (e *Executor) jitter() time.Duration {
	if e.jitterMax <= e.jitterMin {
		// Configured delay sits below the floor; honor the smaller bound.
		return e.jitterMax
	}
	return e.jitterMin + time.Duration(rand.Int63n(int64(e.jitterMax-e.jitterMin)))
}

func (e *Executor) backoff() time.Duration {
	if e.backoffMax <= e.backoffMin {
		return e.backoffMin
	}
	return e.backoffMin + time.Duration(rand.Int63n(int64(e.backoffMax-e.backoffMin)))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// Do performs one logical API call: method and path against the currently
// selected endpoint, with jitter before every attempt, endpoint failover on
// timeouts and retryable retcodes, a long randomized backoff on HTTP 429 and
// a hard stop on HTTP 401. A non-retryable non-zero retcode is returned as a
// response, not an error; the caller dispatches on it. After the attempt
// budget is spent a failure notification is emitted exactly once and
// ErrNetwork is returned.
func (e *Executor) Do(ctx context.Context, method, path string, query url.Values, body any) (*APIResponse, error) {
	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		if err := sleepCtx(ctx, e.jitter()); err != nil {
			return nil, err
		}

		reqURL := e.selector.Current() + path
		if len(query) > 0 {
			reqURL += "?" + query.Encode()
		}

		var reqBody io.Reader
		if body != nil {
			payload, err := json.Marshal(body)
			if err != nil {
				return nil, fmt.Errorf("marshal request body: %w", err)
			}
			reqBody = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		e.setHeaders(req)

		e.log.Debug().Str("method", method).Str("url", reqURL).Int("attempt", attempt).Msg("request")

		resp, err := e.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if isTimeout(err) && e.selector.Advance() {
				e.log.Info().Str("endpoint", e.selector.Current()).Msg("timeout, switched endpoint")
				continue
			}
			e.log.Debug().Err(err).Int("attempt", attempt).Msg("request failed")
			continue
		}

		switch {
		case resp.StatusCode == http.StatusUnauthorized:
			resp.Body.Close()
			e.log.Error().Msg("unauthorized: invalid or expired cookies")
			return nil, ErrUnauthorized
		case resp.StatusCode == http.StatusTooManyRequests:
			resp.Body.Close()
			e.log.Warn().Int("attempt", attempt).Msg("rate limited, backing off")
			if err := sleepCtx(ctx, e.backoff()); err != nil {
				return nil, err
			}
			continue
		case resp.StatusCode >= 400:
			resp.Body.Close()
			e.log.Debug().Int("status", resp.StatusCode).Int("attempt", attempt).Msg("upstream error status")
			continue
		}

		var data APIResponse
		err = json.NewDecoder(resp.Body).Decode(&data)
		resp.Body.Close()
		if err != nil {
			e.log.Debug().Err(err).Int("attempt", attempt).Msg("malformed response body")
			continue
		}

		if data.OK() {
			return &data, nil
		}
		if endpointRetryCodes[data.Retcode] && e.selector.Advance() {
			e.log.Info().Int("retcode", data.Retcode).Str("endpoint", e.selector.Current()).Msg("retryable retcode, switched endpoint")
			continue
		}

		// Generic API error; also the fall-through when a retryable retcode
		// arrives with no fallback endpoints left.
		e.log.Warn().Int("retcode", data.Retcode).Str("message", data.Message).Msg("api error")
		return &data, nil
	}

	msg := fmt.Sprintf("❌ Failed after %d attempts", e.maxAttempts)
	e.log.Error().Int("attempts", e.maxAttempts).Msg("request failed after all attempts")
	e.notifier.Send(e.game.ShortName, msg, false)
	return nil, fmt.Errorf("%w: %d attempts", ErrNetwork, e.maxAttempts)
}

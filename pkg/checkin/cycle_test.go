package checkin

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoyobot/hoyobot-go/pkg/games"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
	return dir
}

func writeCookieFile(t *testing.T, dir string, g games.Game) {
	t.Helper()
	values := map[string]string{
		"ltuid_v2":        "123",
		"ltoken_v2":       "tok",
		"account_id_v2":   "123",
		"cookie_token_v2": "ctok",
	}
	data, err := json.Marshal(values)
	require.NoError(t, err)
	path := filepath.Join(dir, g.CookieFile)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, data, 0644))
}

func TestRunnerPanicIsolation(t *testing.T) {
	upstream := &fakeUpstream{isSign: true, signDay: 3}
	server := upstream.server(t)
	defer server.Close()

	cfg := testConfig()
	cfg.Settings.DelayBetweenGames = 0
	notifier := &recordingNotifier{}

	healthy := testWorkflow(server.URL, cfg, notifier)
	gi, _ := games.Lookup("gi")
	// A nil executor panics on first use.
	broken := NewWorkflow(gi, nil, cfg, notifier)

	r := &Runner{
		cfg:       cfg,
		notifier:  notifier,
		log:       healthy.log,
		workflows: []*Workflow{broken, healthy},
	}

	all, summary := r.Run(context.Background())
	assert.False(t, all)
	require.Len(t, summary.Results, 2)
	assert.False(t, summary.Results["gi"].Succeeded)
	assert.True(t, summary.Results["hsr"].Succeeded)
	assert.NotEmpty(t, summary.CycleID)

	// The panic is reported through the notifier.
	var panicReports int
	for _, m := range notifier.messages() {
		if m.Game == "GI" && !m.Success {
			panicReports++
		}
	}
	assert.Equal(t, 1, panicReports)
}

func TestNewRunnerSkipsGamesWithoutCookies(t *testing.T) {
	chdirTemp(t)

	cfg := testConfig()
	notifier := &recordingNotifier{}
	r := NewRunner(cfg, notifier)

	// Both default games lack cookie files; each is reported at startup.
	assert.Empty(t, r.workflows)
	assert.Len(t, r.skipped, 2)
	assert.Len(t, notifier.messages(), 2)

	all, summary := r.Run(context.Background())
	assert.False(t, all)
	require.Len(t, summary.Results, 2)
	assert.False(t, summary.Results["gi"].Succeeded)
	assert.False(t, summary.Results["hsr"].Succeeded)
}

func TestNewRunnerLoadsEnabledGames(t *testing.T) {
	dir := chdirTemp(t)

	cfg := testConfig()
	for _, g := range cfg.EnabledGames() {
		writeCookieFile(t, dir, g)
	}

	r := NewRunner(cfg, &recordingNotifier{})
	assert.Empty(t, r.skipped)
	require.Len(t, r.workflows, 2)
	// Lexical order by game code.
	assert.Equal(t, "gi", r.workflows[0].Game().Code)
	assert.Equal(t, "hsr", r.workflows[1].Game().Code)
}

func TestRunnerCancelledContext(t *testing.T) {
	upstream := &fakeUpstream{isSign: true}
	server := upstream.server(t)
	defer server.Close()

	cfg := testConfig()
	cfg.Settings.DelayBetweenGames = 0
	notifier := &recordingNotifier{}

	w := testWorkflow(server.URL, cfg, notifier)
	r := &Runner{
		cfg:       cfg,
		notifier:  notifier,
		log:       w.log,
		workflows: []*Workflow{w},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	all, summary := r.Run(ctx)
	assert.False(t, all)
	assert.False(t, summary.Results["hsr"].Succeeded)
}

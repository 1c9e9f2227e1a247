package cookies

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoyobot/hoyobot-go/pkg/games"
)

func testGame(t *testing.T) games.Game {
	t.Helper()
	g, ok := games.Lookup("hsr")
	require.True(t, ok)
	g.CookieFile = filepath.Join(t.TempDir(), "hsr_cookie.json")
	return g
}

func writeCookieFile(t *testing.T, path string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))
}

func validCookies() map[string]string {
	return map[string]string{
		"ltuid_v2":        "123",
		"ltoken_v2":       "tok",
		"account_id_v2":   "123",
		"cookie_token_v2": "ctok",
	}
}

func TestLoadFlatMap(t *testing.T) {
	game := testGame(t)
	writeCookieFile(t, game.CookieFile, validCookies())

	jar, err := Load(game)
	require.NoError(t, err)
	assert.Equal(t, "tok", jar.Get("ltoken_v2"))
}

func TestLoadBrowserExport(t *testing.T) {
	game := testGame(t)
	export := map[string]any{
		"cookies": []map[string]string{
			{"name": "ltuid_v2", "value": "123"},
			{"name": "ltoken_v2", "value": "tok"},
			{"name": "account_id_v2", "value": "123"},
			{"name": "cookie_token_v2", "value": "ctok"},
		},
	}
	writeCookieFile(t, game.CookieFile, export)

	jar, err := Load(game)
	require.NoError(t, err)
	assert.Equal(t, "123", jar.Get("ltuid_v2"))
}

func TestLoadMissingFields(t *testing.T) {
	game := testGame(t)
	writeCookieFile(t, game.CookieFile, map[string]string{
		"ltuid_v2":  "123",
		"ltoken_v2": "",
	})

	_, err := Load(game)
	var missing *MissingFieldsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "HSR", missing.Game)
	assert.Contains(t, missing.Fields, "ltoken_v2")
	assert.Contains(t, missing.Fields, "account_id_v2")
	assert.Contains(t, missing.Fields, "cookie_token_v2")
	assert.NotContains(t, missing.Fields, "ltuid_v2")
}

func TestLoadFileMissing(t *testing.T) {
	game := testGame(t)
	_, err := Load(game)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestHeaderStableOrder(t *testing.T) {
	jar := New(map[string]string{"b": "2", "a": "1", "c": "3"})
	assert.Equal(t, "a=1; b=2; c=3", jar.Header())
}

func TestCreateSample(t *testing.T) {
	game := testGame(t)
	require.NoError(t, CreateSample(game, "en-us"))

	data, err := os.ReadFile(game.CookieFile)
	require.NoError(t, err)

	var sample map[string]string
	require.NoError(t, json.Unmarshal(data, &sample))
	for _, field := range Required {
		assert.Contains(t, sample, field)
	}
	assert.Equal(t, "en-us", sample["mi18nLang"])

	// A valid existing file is left alone.
	writeCookieFile(t, game.CookieFile, validCookies())
	require.NoError(t, CreateSample(game, "en-us"))
	jar, err := Load(game)
	require.NoError(t, err)
	assert.Equal(t, "tok", jar.Get("ltoken_v2"))
}

func TestSetupGuideLanguages(t *testing.T) {
	game := testGame(t)
	en := SetupGuide(game, "en-us")
	zh := SetupGuide(game, "zh-cn")
	assert.Len(t, en, 5)
	assert.Len(t, zh, 5)
	assert.Contains(t, en[0], game.CheckinURL)
	assert.Contains(t, zh[0], game.CheckinURL)
}

package cookies

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hoyobot/hoyobot-go/pkg/games"
	"github.com/hoyobot/hoyobot-go/pkg/logging"
)

// Required lists the cookie fields that must be present and non-empty for
// authenticated HoYoLAB calls.
var Required = []string{"ltuid_v2", "ltoken_v2", "account_id_v2", "cookie_token_v2"}

// MissingFieldsError reports which required cookie fields were absent.
type MissingFieldsError struct {
	Game   string
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("missing cookies for %s: %s", e.Game, strings.Join(e.Fields, ", "))
}

// Jar holds one game's cookie set.
type Jar struct {
	values map[string]string
}

// New builds a jar from explicit values, bypassing file loading.
func New(values map[string]string) *Jar {
	copied := make(map[string]string, len(values))
	for name, value := range values {
		copied[name] = value
	}
	return &Jar{values: copied}
}

// browserExport is the shape produced by browser cookie export extensions.
type browserExport struct {
	Cookies []struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	} `json:"cookies"`
}

// Load reads a game's cookie file and validates the required fields. The file
// may be a flat name→value map or a browser export with a "cookies" array.
func Load(game games.Game) (*Jar, error) {
	data, err := os.ReadFile(game.CookieFile)
	if err != nil {
		return nil, fmt.Errorf("read cookie file %s: %w", game.CookieFile, err)
	}

	values := map[string]string{}
	var export browserExport
	if err := json.Unmarshal(data, &export); err == nil && len(export.Cookies) > 0 {
		for _, c := range export.Cookies {
			values[c.Name] = c.Value
		}
	} else if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parse cookie file %s: %w", game.CookieFile, err)
	}

	var missing []string
	for _, name := range Required {
		if values[name] == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingFieldsError{Game: game.ShortName, Fields: missing}
	}

	return &Jar{values: values}, nil
}

// Header renders the jar as a Cookie request header value. Output order is
// stable so request headers are reproducible.
func (j *Jar) Header() string {
	names := make([]string, 0, len(j.values))
	for name := range j.values {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, name+"="+j.values[name])
	}
	return strings.Join(pairs, "; ")
}

// Get returns a single cookie value.
func (j *Jar) Get(name string) string {
	return j.values[name]
}

// CreateSample writes a placeholder cookie file for a game unless a valid one
// already exists.
func CreateSample(game games.Game, lang string) error {
	log := logging.WithGame("cookies", game.ShortName)

	if data, err := os.ReadFile(game.CookieFile); err == nil {
		if json.Valid(data) {
			return nil
		}
		log.Warn().Str("file", game.CookieFile).Msg("invalid JSON in cookie file, replacing with sample")
	}

	sample := map[string]string{}
	for _, name := range Required {
		sample[name] = "your_" + name + "_here"
	}
	sample["mi18nLang"] = lang

	if err := os.MkdirAll(filepath.Dir(game.CookieFile), 0755); err != nil {
		return fmt.Errorf("create cookie dir: %w", err)
	}
	data, err := json.MarshalIndent(sample, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(game.CookieFile, data, 0644); err != nil {
		return fmt.Errorf("write sample cookie file: %w", err)
	}
	log.Warn().Str("file", game.CookieFile).Msg("created sample cookie file")
	return nil
}

// SetupGuide returns the numbered cookie setup steps for a game in the given
// language. Informational only; shown when the upstream rejects credentials.
func SetupGuide(game games.Game, lang string) []string {
	fields := strings.Join(Required, ", ")
	if lang == "zh-cn" {
		return []string{
			"访问: " + game.CheckinURL,
			"登录 HoYoverse 账户",
			"按 F12 → 应用程序 → Cookies",
			"复制: " + fields,
			"更新: " + game.CookieFile,
		}
	}
	return []string{
		"Visit: " + game.CheckinURL,
		"Log in to HoYoverse",
		"F12 → Application → Cookies",
		"Copy: " + fields,
		"Update: " + game.CookieFile,
	}
}

package games

import "sort"

// Endpoints holds the primary API base URL and its ordered fallbacks.
type Endpoints struct {
	Primary  string
	Fallback []string
}

// Game describes one supported HoYoverse title.
type Game struct {
	Code       string // short code, e.g. "hsr"
	ShortName  string // display abbreviation, e.g. "HSR"
	Name       string
	NameZH     string
	ActID      string
	GameBiz    string
	CookieFile string
	Emoji      string
	CheckinURL string
	Endpoints  Endpoints
	InfoPath   string
	SignPath   string
	RewardPath string
}

// Registry maps game codes to their static metadata. Read-only for the
// process lifetime.
var Registry = map[string]Game{
	"hsr": {
		Code:       "hsr",
		ShortName:  "HSR",
		Name:       "Honkai: Star Rail",
		NameZH:     "崩坏：星穹铁道",
		ActID:      "e202303301540311",
		GameBiz:    "hkrpg_global",
		CookieFile: "cookies/hsr_cookie.json",
		Emoji:      "🚂",
		CheckinURL: "https://act.hoyolab.com/bbs/event/signin/hkrpg/index.html",
		Endpoints: Endpoints{
			Primary:  "https://sg-public-api.hoyolab.com",
			Fallback: []string{"https://sg-hk4e-api.hoyolab.com", "https://api-os-takumi.mihoyo.com"},
		},
		InfoPath:   "/event/luna/info",
		SignPath:   "/event/luna/sign",
		RewardPath: "/event/luna/home",
	},
	"gi": {
		Code:       "gi",
		ShortName:  "GI",
		Name:       "Genshin Impact",
		NameZH:     "原神",
		ActID:      "e202102251931481",
		GameBiz:    "hk4e_global",
		CookieFile: "cookies/gi_cookie.json",
		Emoji:      "⚔️",
		CheckinURL: "https://act.hoyolab.com/ys/event/signin-sea-v3/index.html",
		Endpoints: Endpoints{
			Primary:  "https://sg-hk4e-api.hoyoverse.com",
			Fallback: []string{"https://sg-hk4e-api.hoyolab.com", "https://hk4e-api-os.hoyoverse.com"},
		},
		InfoPath:   "/event/sol/info",
		SignPath:   "/event/sol/sign",
		RewardPath: "/event/sol/home",
	},
	"zzz": {
		Code:       "zzz",
		ShortName:  "ZZZ",
		Name:       "Zenless Zone Zero",
		NameZH:     "绝区零",
		ActID:      "e202406031448091",
		GameBiz:    "nap_global",
		CookieFile: "cookies/zzz_cookie.json",
		Emoji:      "🌆",
		CheckinURL: "https://act.hoyolab.com/bbs/event/signin/zzz/index.html",
		Endpoints: Endpoints{
			Primary:  "https://sg-act-nap-api.hoyolab.com",
			Fallback: []string{"https://sg-public-api.hoyolab.com", "https://api-os-takumi.mihoyo.com"},
		},
		InfoPath:   "/event/luna/zzz/info",
		SignPath:   "/event/luna/zzz/sign",
		RewardPath: "/event/luna/zzz/home",
	},
	"hi3": {
		Code:       "hi3",
		ShortName:  "HI3",
		Name:       "Honkai Impact 3rd",
		NameZH:     "崩坏3",
		ActID:      "e202110291205111",
		GameBiz:    "bh3_global",
		CookieFile: "cookies/hi3_cookie.json",
		Emoji:      "⚡",
		CheckinURL: "https://act.hoyolab.com/bbs/event/signin-bh3/index.html",
		Endpoints: Endpoints{
			Primary:  "https://sg-public-api.hoyolab.com",
			Fallback: []string{"https://api-os-takumi.mihoyo.com", "https://sg-hk4e-api.hoyolab.com"},
		},
		InfoPath:   "/event/mani/info",
		SignPath:   "/event/mani/sign",
		RewardPath: "/event/mani/home",
	},
}

// Lookup returns the metadata for a game code.
func Lookup(code string) (Game, bool) {
	g, ok := Registry[code]
	return g, ok
}

// Codes returns all supported game codes in lexical order.
func Codes() []string {
	codes := make([]string, 0, len(Registry))
	for code := range Registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// DisplayName returns the localized display name for a game.
func (g Game) DisplayName(lang string) string {
	if lang == "zh-cn" && g.NameZH != "" {
		return g.NameZH
	}
	return g.Name
}

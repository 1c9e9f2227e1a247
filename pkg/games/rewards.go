package games

import "strings"

type rewardEntry struct {
	match   string
	display string
}

// rewardNames maps lowercase substrings of upstream award names to display
// strings, per language. Order matters: more specific entries come before
// the substrings they contain.
var rewardNames = map[string][]rewardEntry{
	"en-us": {
		{"mystic enhancement ore", "⭐ Mystic Enhancement Ore"},
		{"enhancement ore", "⚡ Enhancement Ore"},
		{"mora", "💰 Mora"},
		{"primogem", "💎 Primogem"},
		{"stellar jade", "💎 Stellar Jade"},
		{"polychrome", "🌈 Polychrome"},
		{"crystal", "💎 Crystal"},
		{"credit", "💰 Credit"},
		{"denny", "💰 Denny"},
		{"hero's wit", "📘 Hero's Wit"},
		{"resin", "🌳 Fragile Resin"},
		{"recipe", "📜 Recipe"},
		{"artifact", "🗿 Artifact"},
		{"relic", "🏺 Relic"},
		{"planar ornament", "🌟 Planar Ornament"},
		{"w-engine", "⚙️ W-Engine"},
		{"adventure log", "📖 Adventure Log"},
		{"condensed aether", "🌌 Condensed Aether"},
		{"exp", "📚 EXP Material"},
	},
	"zh-cn": {
		{"mystic enhancement ore", "⭐ 精炼矿石"},
		{"enhancement ore", "⚡ 强化矿石"},
		{"mora", "💰 摩拉"},
		{"primogem", "💎 原石"},
		{"stellar jade", "💎 星穹"},
		{"polychrome", "🌈 多色"},
		{"crystal", "💎 水晶"},
		{"credit", "💰 信用点"},
		{"denny", "💰 丹尼"},
		{"hero's wit", "📘 英雄智慧"},
		{"resin", "🌳 脆弱树脂"},
		{"recipe", "📜 配方"},
		{"artifact", "🗿 圣遗物"},
		{"relic", "🏺 遗器"},
		{"planar ornament", "🌟 平面饰品"},
		{"w-engine", "⚙️ W引擎"},
		{"adventure log", "📖 冒险日志"},
		{"condensed aether", "🌌 浓缩以太"},
		{"exp", "📚 经验材料"},
	},
}

// ResolveReward derives a display name for an upstream award. Matching is
// case-insensitive on known substrings; unknown awards get a generic label.
func ResolveReward(lang, name string, count int) (string, int) {
	if count <= 0 {
		count = 1
	}
	table, ok := rewardNames[lang]
	if !ok {
		table = rewardNames["en-us"]
	}
	lower := strings.ToLower(name)
	for _, entry := range table {
		if strings.Contains(lower, entry.match) {
			return entry.display, count
		}
	}
	if name == "" {
		name = "Reward"
	}
	return "🎁 " + name, count
}

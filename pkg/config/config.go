package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hoyobot/hoyobot-go/pkg/games"
	"github.com/hoyobot/hoyobot-go/pkg/logging"
)

// DefaultPath is where the config file is created on first run.
const DefaultPath = "checkin_config.json"

type GameToggle struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
}

type Settings struct {
	RunOnStart          bool   `json:"runOnStart" yaml:"runOnStart"`
	ShowDetailedRewards bool   `json:"showDetailedRewards" yaml:"showDetailedRewards"`
	DelayBetweenGames   int    `json:"delayBetweenGames" yaml:"delayBetweenGames"` // seconds
	MaxRetries          int    `json:"maxRetries" yaml:"maxRetries"`
	RetryDelaySeconds   int    `json:"retryDelaySeconds" yaml:"retryDelaySeconds"`
	EnhancedLogging     bool   `json:"enhancedLogging" yaml:"enhancedLogging"`
	Language            string `json:"language" yaml:"language"`
}

type Loop struct {
	Enabled           bool   `json:"enabled" yaml:"enabled"`
	Mode              string `json:"mode" yaml:"mode"` // daily, interval, cron, once
	IntervalHours     int    `json:"intervalHours" yaml:"intervalHours"`
	DailyTime         string `json:"dailyTime" yaml:"dailyTime"` // HH:MM, UTC
	CronExpr          string `json:"cronExpr,omitempty" yaml:"cronExpr,omitempty"`
	MaxRuns           int    `json:"maxRuns" yaml:"maxRuns"` // 0 = unlimited
	RetryFailed       bool   `json:"retryFailed" yaml:"retryFailed"`
	RetryDelayMinutes int    `json:"retryDelayMinutes" yaml:"retryDelayMinutes"`
}

type DingTalkNotify struct {
	ClientID  string   `json:"clientId" yaml:"clientId"`
	AppSecret string   `json:"appSecret" yaml:"appSecret"`
	RobotCode string   `json:"robotCode" yaml:"robotCode"`
	Targets   []string `json:"targets" yaml:"targets"` // staff IDs or cid* conversation IDs
}

type FeishuNotify struct {
	AppID         string `json:"appId" yaml:"appId"`
	AppSecret     string `json:"appSecret" yaml:"appSecret"`
	ReceiveID     string `json:"receiveId" yaml:"receiveId"`
	ReceiveIDType string `json:"receiveIdType" yaml:"receiveIdType"`
}

type Notifications struct {
	Enabled          bool           `json:"enabled" yaml:"enabled"`
	SuccessOnly      bool           `json:"successOnly" yaml:"successOnly"`
	WebhookURL       string         `json:"webhookUrl" yaml:"webhookUrl"`
	DiscordWebhook   string         `json:"discordWebhook" yaml:"discordWebhook"`
	TelegramBotToken string         `json:"telegramBotToken" yaml:"telegramBotToken"`
	TelegramChatID   string         `json:"telegramChatId" yaml:"telegramChatId"`
	DingTalk         DingTalkNotify `json:"dingtalk" yaml:"dingtalk"`
	Feishu           FeishuNotify   `json:"feishu" yaml:"feishu"`
}

type Advanced struct {
	RequestTimeout    int     `json:"requestTimeout" yaml:"requestTimeout"` // seconds
	RateLimitDelay    float64 `json:"rateLimitDelay" yaml:"rateLimitDelay"` // jitter upper bound, seconds
	UserAgentRotation bool    `json:"userAgentRotation" yaml:"userAgentRotation"`
	ProxySupport      bool    `json:"proxySupport" yaml:"proxySupport"`
	ProxyURL          string  `json:"proxyUrl" yaml:"proxyUrl"`
}

type Config struct {
	Games         map[string]GameToggle `json:"games" yaml:"games"`
	Settings      Settings              `json:"settings" yaml:"settings"`
	Loop          Loop                  `json:"loop" yaml:"loop"`
	Notifications Notifications         `json:"notifications" yaml:"notifications"`
	Advanced      Advanced              `json:"advanced" yaml:"advanced"`
}

// Default returns the default configuration: HSR and GI enabled, daily loop
// at 09:00 UTC, retry on failure, notifications gated to successes.
func Default() *Config {
	return &Config{
		Games: map[string]GameToggle{
			"hsr": {Enabled: true},
			"gi":  {Enabled: true},
			"zzz": {Enabled: false},
			"hi3": {Enabled: false},
		},
		Settings: Settings{
			RunOnStart:          true,
			ShowDetailedRewards: true,
			DelayBetweenGames:   3,
			MaxRetries:          3,
			RetryDelaySeconds:   5,
			EnhancedLogging:     false,
			Language:            "en-us",
		},
		Loop: Loop{
			Enabled:           true,
			Mode:              "daily",
			IntervalHours:     24,
			DailyTime:         "09:00",
			MaxRuns:           0,
			RetryFailed:       true,
			RetryDelayMinutes: 30,
		},
		Notifications: Notifications{
			Enabled:     true,
			SuccessOnly: true,
			Feishu:      FeishuNotify{ReceiveIDType: "open_id"},
		},
		Advanced: Advanced{
			RequestTimeout:    10,
			RateLimitDelay:    1.5,
			UserAgentRotation: true,
		},
	}
}

// Load reads the configuration from path (JSON or YAML by extension),
// creating a default file if none exists. Malformed files fall back to
// defaults with a warning; zero enabled games is fatal.
func Load(path string) (*Config, error) {
	log := logging.WithComponent("config")
	if path == "" {
		path = DefaultPath
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if saveErr := Save(cfg, path); saveErr != nil {
			log.Warn().Err(saveErr).Msg("could not write default config file")
		} else {
			log.Warn().Str("file", path).Msg("created default config file")
		}
		return cfg, cfg.validate()
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Decoding over the defaults keeps unset fields at their documented values.
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		log.Warn().Err(err).Str("file", path).Msg("malformed config, using defaults")
		cfg = Default()
	}

	return cfg, cfg.validate()
}

// Save writes the configuration to path, JSON or YAML by extension.
func Save(cfg *Config, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	var data []byte
	var err error
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		data, err = yaml.Marshal(cfg)
	} else {
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// validate repairs invalid fields with warnings. Only an empty enabled-game
// set is an error.
func (c *Config) validate() error {
	log := logging.WithComponent("config")
	def := Default()

	if c.Games == nil {
		c.Games = def.Games
		log.Warn().Msg("missing games section, using defaults")
	}
	for code := range c.Games {
		if _, ok := games.Lookup(code); !ok {
			log.Warn().Str("game", code).Msg("unknown game in config, disabling")
			c.Games[code] = GameToggle{Enabled: false}
		}
	}

	if c.Settings.DelayBetweenGames < 0 {
		log.Warn().Int("value", c.Settings.DelayBetweenGames).Msg("invalid delayBetweenGames, using default")
		c.Settings.DelayBetweenGames = def.Settings.DelayBetweenGames
	}
	if c.Settings.MaxRetries <= 0 {
		log.Warn().Int("value", c.Settings.MaxRetries).Msg("invalid maxRetries, using default")
		c.Settings.MaxRetries = def.Settings.MaxRetries
	}
	if c.Settings.RetryDelaySeconds < 0 {
		c.Settings.RetryDelaySeconds = def.Settings.RetryDelaySeconds
	}
	if c.Settings.Language != "en-us" && c.Settings.Language != "zh-cn" {
		log.Warn().Str("value", c.Settings.Language).Msg("unsupported language, using en-us")
		c.Settings.Language = "en-us"
	}

	switch c.Loop.Mode {
	case "daily", "interval", "once":
	case "cron":
		if c.Loop.CronExpr == "" {
			log.Warn().Msg("cron mode without cronExpr, falling back to daily")
			c.Loop.Mode = "daily"
		}
	default:
		log.Warn().Str("value", c.Loop.Mode).Msg("invalid loop mode, falling back to daily")
		c.Loop.Mode = "daily"
	}
	if _, _, err := ParseDailyTime(c.Loop.DailyTime); err != nil {
		log.Warn().Str("value", c.Loop.DailyTime).Msg("invalid dailyTime, using 09:00")
		c.Loop.DailyTime = "09:00"
	}
	if c.Loop.IntervalHours <= 0 {
		log.Warn().Int("value", c.Loop.IntervalHours).Msg("invalid intervalHours, using default")
		c.Loop.IntervalHours = def.Loop.IntervalHours
	}
	if c.Loop.MaxRuns < 0 {
		c.Loop.MaxRuns = 0
	}
	if c.Loop.RetryDelayMinutes <= 0 {
		c.Loop.RetryDelayMinutes = def.Loop.RetryDelayMinutes
	}

	if c.Advanced.RequestTimeout <= 0 {
		c.Advanced.RequestTimeout = def.Advanced.RequestTimeout
	}
	if c.Advanced.RateLimitDelay <= 0 {
		c.Advanced.RateLimitDelay = def.Advanced.RateLimitDelay
	}

	if len(c.EnabledGames()) == 0 {
		return fmt.Errorf("no games enabled in configuration")
	}
	return nil
}

// EnabledGames returns the enabled games in lexical order by code.
func (c *Config) EnabledGames() []games.Game {
	var enabled []games.Game
	for code, toggle := range c.Games {
		if !toggle.Enabled {
			continue
		}
		if g, ok := games.Lookup(code); ok {
			enabled = append(enabled, g)
		}
	}
	sort.Slice(enabled, func(i, j int) bool { return enabled[i].Code < enabled[j].Code })
	return enabled
}

// IsLoopEnabled reports whether the scheduler loop should run. Mode "once"
// behaves as loop-disabled.
func (c *Config) IsLoopEnabled() bool {
	return c.Loop.Enabled && c.Loop.Mode != "once"
}

// ParseDailyTime splits an HH:MM wall-clock string.
func ParseDailyTime(s string) (hour, minute int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid daily time %q", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid daily time %q", s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid daily time %q", s)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("daily time %q out of range", s)
	}
	return hour, minute, nil
}

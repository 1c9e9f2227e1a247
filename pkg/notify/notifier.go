// Package notify delivers check-in outcomes to configured channels.
// Delivery is fire-and-forget: failures are logged, never propagated.
package notify

import (
	"github.com/hoyobot/hoyobot-go/pkg/config"
	"github.com/hoyobot/hoyobot-go/pkg/logging"
)

// Notifier reports a per-game outcome to the outside world.
type Notifier interface {
	Send(game, message string, success bool)
}

// sender is one concrete delivery channel.
type sender interface {
	name() string
	send(game, message string) error
}

// Multi fans a notification out to every configured channel, honoring the
// enabled and success-only gates.
type Multi struct {
	cfg     config.Notifications
	senders []sender
}

// New builds the notifier set from configuration. Channels without
// credentials are simply not constructed.
func New(cfg config.Notifications) *Multi {
	m := &Multi{cfg: cfg}

	if cfg.WebhookURL != "" {
		m.senders = append(m.senders, newWebhookSender("webhook", cfg.WebhookURL))
	}
	if cfg.DiscordWebhook != "" {
		m.senders = append(m.senders, newWebhookSender("discord", cfg.DiscordWebhook))
	}
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != "" {
		m.senders = append(m.senders, newTelegramSender(cfg.TelegramBotToken, cfg.TelegramChatID))
	}
	if cfg.DingTalk.ClientID != "" && cfg.DingTalk.AppSecret != "" {
		m.senders = append(m.senders, newDingTalkSender(cfg.DingTalk))
	}
	if cfg.Feishu.AppID != "" && cfg.Feishu.AppSecret != "" {
		m.senders = append(m.senders, newFeishuSender(cfg.Feishu))
	}
	return m
}

func (m *Multi) Send(game, message string, success bool) {
	if !m.cfg.Enabled {
		return
	}
	if m.cfg.SuccessOnly && !success {
		return
	}

	log := logging.WithGame("notify", game)
	for _, s := range m.senders {
		if err := s.send(game, message); err != nil {
			log.Error().Err(err).Str("channel", s.name()).Msg("notification failed")
			continue
		}
		log.Info().Str("channel", s.name()).Msg("notification sent")
	}
}

// Nop discards all notifications.
type Nop struct{}

func (Nop) Send(game, message string, success bool) {}

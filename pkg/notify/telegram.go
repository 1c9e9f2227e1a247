package notify

import (
	"fmt"
	"strconv"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// telegramSender delivers messages through a Telegram bot. The bot API client
// is created lazily on first send so a bad token does not block startup.
type telegramSender struct {
	token  string
	chatID string

	mu  sync.Mutex
	bot *tgbotapi.BotAPI
}

func newTelegramSender(token, chatID string) *telegramSender {
	return &telegramSender{token: token, chatID: chatID}
}

func (s *telegramSender) name() string {
	return "telegram"
}

func (s *telegramSender) getBot() (*tgbotapi.BotAPI, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bot != nil {
		return s.bot, nil
	}
	bot, err := tgbotapi.NewBotAPI(s.token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}
	s.bot = bot
	return bot, nil
}

func (s *telegramSender) send(game, message string) error {
	bot, err := s.getBot()
	if err != nil {
		return err
	}

	chatID, err := strconv.ParseInt(s.chatID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat ID: %s", s.chatID)
	}

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("[%s] %s", game, message))
	_, err = bot.Send(msg)
	return err
}

package notify

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	logger "github.com/sirupsen/logrus"

	"c79sniper/src/config"
)

// Notifier pushes one-way messages to the configured chat. Send failures are
// logged and swallowed: notifications must never take the trading loop down.
type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewNotifier(cfg config.TelegramConfig) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("init telegram bot: %w", err)
	}
	logger.WithField("account", bot.Self.UserName).Info("telegram notifier connected")
	return &Notifier{bot: bot, chatID: cfg.ChatID}, nil
}

// NewNotifierWithBot wires an existing bot session, used by the command
// handler so both directions share one API client.
func NewNotifierWithBot(bot *tgbotapi.BotAPI, chatID int64) *Notifier {
	return &Notifier{bot: bot, chatID: chatID}
}

func (n *Notifier) Send(text string) {
	if n == nil || n.bot == nil {
		return
	}
	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		logger.WithError(err).Error("telegram send failed")
	}
}

func (n *Notifier) Sendf(format string, args ...interface{}) {
	n.Send(fmt.Sprintf(format, args...))
}

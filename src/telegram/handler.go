package telegram

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	logger "github.com/sirupsen/logrus"

	"c79sniper/src/config"
	"c79sniper/src/mt5"
	"c79sniper/src/news"
	"c79sniper/src/profit"
	"c79sniper/src/state"
	"c79sniper/src/stats"
)

// PositionSource is the broker slice the handler needs for /positions.
type PositionSource interface {
	Positions(ctx context.Context, magic int64) ([]mt5.Position, error)
}

// Handler serves operator commands over long polling. It runs as its own
// process so commands keep working while the trading loop is down; it talks to
// the bot only through the shared state files and the broker bridge.
type Handler struct {
	cfg     *config.Config
	bot     *tgbotapi.BotAPI
	store   *state.Store
	filter  *news.Filter
	profits *profit.Manager
	tracker *stats.Tracker
	broker  PositionSource
}

func NewHandler(
	cfg *config.Config,
	bot *tgbotapi.BotAPI,
	store *state.Store,
	filter *news.Filter,
	profits *profit.Manager,
	tracker *stats.Tracker,
	broker PositionSource,
) *Handler {
	return &Handler{
		cfg:     cfg,
		bot:     bot,
		store:   store,
		filter:  filter,
		profits: profits,
		tracker: tracker,
		broker:  broker,
	}
}

// Run polls for updates until ctx is cancelled. Only messages from the
// configured chat are honored.
func (h *Handler) Run(ctx context.Context) {
	updateCfg := tgbotapi.NewUpdate(0)
	updateCfg.Timeout = h.cfg.Telegram.PollTimeout

	updates := h.bot.GetUpdatesChan(updateCfg)
	logger.WithField("account", h.bot.Self.UserName).Info("command handler started")

	for {
		select {
		case <-ctx.Done():
			h.bot.StopReceivingUpdates()
			logger.Info("command handler stopped")
			return
		case update := <-updates:
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}
			if update.Message.Chat.ID != h.cfg.Telegram.ChatID {
				logger.WithField("chat", update.Message.Chat.ID).Warn("command from unknown chat ignored")
				continue
			}
			h.reply(update.Message.Chat.ID, h.dispatch(ctx, update.Message.Command()))
		}
	}
}

func (h *Handler) dispatch(ctx context.Context, command string) string {
	now := time.Now().UTC()

	switch command {
	case "start":
		if err := h.store.ClearStopFlag(); err != nil {
			return fmt.Sprintf("Failed to clear stop flag: %v", err)
		}
		return "Stop flag cleared. Bot will resume trading (watchdog restarts it if needed)."

	case "stop":
		if err := h.store.SetStopFlag(); err != nil {
			return fmt.Sprintf("Failed to set stop flag: %v", err)
		}
		return "Stop flag set. No new entries; open positions keep their stops."

	case "status":
		return h.statusText(now)

	case "positions":
		return h.positionsText(ctx)

	case "news":
		return h.newsText(ctx, now)

	case "daily":
		return h.profits.ProgressReport(ctx, now)

	case "stats":
		return h.statsText(ctx)

	case "health":
		return h.healthText(now)

	case "help":
		return "Commands: /start /stop /status /positions /news /daily /stats /health"

	default:
		return "Unknown command. Try /help."
	}
}

func (h *Handler) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		logger.WithError(err).Error("command reply failed")
	}
}

package telegram

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"c79sniper/src/bot"
	"c79sniper/src/config"
	"c79sniper/src/database"
	"c79sniper/src/mt5"
	"c79sniper/src/news"
	"c79sniper/src/notify"
	"c79sniper/src/profit"
	"c79sniper/src/repository"
	"c79sniper/src/state"
	"c79sniper/src/stats"
	"c79sniper/src/telegram"
)

type Telegram struct {
	ConfigPath string
}

func (t *Telegram) Start() error {
	cfg, err := config.Load(t.ConfigPath)
	if err != nil {
		logrus.WithError(err).Error("Failed to load configuration")
		return err
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	if err := database.InitMainDB(); err != nil {
		logrus.WithError(err).Fatal("Failed to connect to main database")
		return err
	}

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		logrus.WithError(err).Error("Failed to connect to Telegram")
		return err
	}

	loc := cfg.RolloverLocation()
	broker := mt5.NewClient(cfg.Broker.BridgeURL)
	store := state.NewStore(cfg.System.StateDir, cfg.System.StatusFile, cfg.System.StopFlagFile)

	deals := &bot.BridgeDeals{
		Broker: broker,
		Magic:  cfg.Broker.MagicNumber,
		Symbol: cfg.Broker.Symbol,
	}

	handler := telegram.NewHandler(
		cfg,
		api,
		store,
		news.NewFilter(cfg.News, news.NewClient(cfg.News.FeedURL)),
		profit.NewManager(cfg.Profit, cfg.Trading, loc, deals),
		stats.NewTracker(repository.NewTradeRepository(cfg.System.HistoryLimit)),
		broker,
	)

	notifier := notify.NewNotifierWithBot(api, cfg.Telegram.ChatID)
	notifier.Send("Command handler online")
	defer notifier.Send("Command handler shutting down")

	handler.Run(ctx)
	return nil
}

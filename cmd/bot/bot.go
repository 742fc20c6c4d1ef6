package bot

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"c79sniper/src/bot"
	"c79sniper/src/config"
	"c79sniper/src/database"
	"c79sniper/src/mt5"
	"c79sniper/src/news"
	"c79sniper/src/notify"
	"c79sniper/src/profit"
	"c79sniper/src/repository"
	"c79sniper/src/risk"
	"c79sniper/src/security"
	"c79sniper/src/server"
	"c79sniper/src/state"
	"c79sniper/src/stats"
	"c79sniper/src/strategy"
)

type Bot struct {
	ConfigPath string
}

func (b *Bot) Start() error {
	cfg, err := config.Load(b.ConfigPath)
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

	loc := cfg.RolloverLocation()

	broker := mt5.NewClient(cfg.Broker.BridgeURL)
	if cfg.Broker.AuthTokenEnc != "" {
		token, err := security.DecryptString(cfg.Broker.AuthTokenEnc, security.GetConfig().CredentialsKey)
		if err != nil {
			logrus.WithError(err).Error("Failed to decrypt bridge auth token")
			return err
		}
		broker = mt5.NewClientWithAuth(cfg.Broker.BridgeURL, token)
	}

	store := state.NewStore(cfg.System.StateDir, cfg.System.StatusFile, cfg.System.StopFlagFile)

	notifier, err := notify.NewNotifier(cfg.Telegram)
	if err != nil {
		logrus.WithError(err).Error("Failed to connect to Telegram")
		return err
	}

	deals := &bot.BridgeDeals{
		Broker: broker,
		Magic:  cfg.Broker.MagicNumber,
		Symbol: cfg.Broker.Symbol,
	}

	orchestrator := bot.NewOrchestrator(
		cfg,
		broker,
		strategy.NewEvaluator(cfg.Strategy),
		risk.NewManager(cfg.Risk, loc),
		news.NewFilter(cfg.News, news.NewClient(cfg.News.FeedURL)),
		profit.NewManager(cfg.Profit, cfg.Trading, loc, deals),
		stats.NewTracker(repository.NewTradeRepository(cfg.System.HistoryLimit)),
		store,
		notifier,
		repository.NewExceptionRepository(),
	)

	if cfg.Broker.BridgeWSURL != "" {
		orchestrator.StartTickStream(ctx, cfg.Broker.BridgeWSURL)
	}

	serverCfg := server.GetConfig()
	go server.StartServer(ctx, serverCfg.Port, store, cfg.Watchdog.StaleStatusAfter)

	orchestrator.Run(ctx)
	return nil
}

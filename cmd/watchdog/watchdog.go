package watchdog

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"c79sniper/src/config"
	"c79sniper/src/notify"
	"c79sniper/src/state"
	"c79sniper/src/watchdog"
)

type Watchdog struct {
	ConfigPath string
}

func (w *Watchdog) Start() error {
	cfg, err := config.Load(w.ConfigPath)
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

	notifier, err := notify.NewNotifier(cfg.Telegram)
	if err != nil {
		logrus.WithError(err).Error("Failed to connect to Telegram")
		return err
	}

	store := state.NewStore(cfg.System.StateDir, cfg.System.StatusFile, cfg.System.StopFlagFile)

	dog := watchdog.New(cfg.Watchdog, cfg.RolloverLocation(), store, notifier)
	dog.Run(ctx)
	return nil
}

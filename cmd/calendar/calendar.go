package calendar

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"c79sniper/src/config"
	"c79sniper/src/news"
)

type Calendar struct {
	ConfigPath string
}

// Start fetches the weekly calendar once and rewrites the cache. Meant for
// cron and for warming the cache before the bot starts.
func (c *Calendar) Start() error {
	cfg, err := config.Load(c.ConfigPath)
	if err != nil {
		logrus.WithError(err).Error("Failed to load configuration")
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	filter := news.NewFilter(cfg.News, news.NewClient(cfg.News.FeedURL))
	if err := filter.Refresh(ctx, time.Now().UTC()); err != nil {
		return err
	}

	upcoming, err := filter.Upcoming(ctx, time.Now().UTC(), 7*24*time.Hour)
	if err != nil {
		return err
	}

	logrus.Infof("Fetched calendar, %d relevant events this week", len(upcoming))
	return nil
}

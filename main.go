package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"

	botcmd "c79sniper/cmd/bot"
)

var (
	CONFIG_PATH = os.Getenv("CONFIG_PATH")
	APP_NAME    = os.Getenv("APP_NAME")
)

func SetupLogger() {
	levelStr := strings.ToLower(os.Getenv("LOG_LEVEL"))

	level, err := logger.ParseLevel(levelStr)
	if err != nil {
		level = logger.InfoLevel
	}

	logger.SetLevel(level)
	logger.SetFormatter(&logger.TextFormatter{
		FullTimestamp: true,
	})
}

func main() {
	SetupLogger()
	defer handlePanic()

	path := CONFIG_PATH
	if path == "" {
		path = "config.yaml"
	}

	b := &botcmd.Bot{ConfigPath: path}
	if err := b.Start(); err != nil {
		logger.WithError(err).Fatal("Bot exited with error")
	}
}

func handlePanic() {
	if r := recover(); r != nil {
		logger.WithError(fmt.Errorf("%+v", r)).Error(fmt.Sprintf("Application %s panic", APP_NAME))
	}
	//nolint
	time.Sleep(time.Second * 5)
}

package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	botcmd "c79sniper/cmd/bot"
	calendarcmd "c79sniper/cmd/calendar"
	telegramcmd "c79sniper/cmd/telegram"
	watchdogcmd "c79sniper/cmd/watchdog"
	"c79sniper/src/security"
)

var Version string

func main() {
	app := cli.NewApp()
	app.Name = "C79 Sniper CMD"
	app.Usage = "The C79 Sniper command line interface"

	app.Commands = []cli.Command{
		botCMD,
		telegramCMD,
		watchdogCMD,
		calendarCMD,
		encryptCMD,
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "path to the YAML settings file",
		Value: "config.yaml",
	}

	botCMD = cli.Command{
		Name:        "bot",
		Usage:       "run the trading loop",
		Action:      botAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{configFlag},
		Description: `Run the trading loop CMD`,
	}
	telegramCMD = cli.Command{
		Name:        "telegram",
		Usage:       "run the operator command handler",
		Action:      telegramAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{configFlag},
		Description: `Run the Telegram command handler CMD`,
	}
	watchdogCMD = cli.Command{
		Name:        "watchdog",
		Usage:       "run the process watchdog",
		Action:      watchdogAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{configFlag},
		Description: `Run the watchdog CMD`,
	}
	calendarCMD = cli.Command{
		Name:        "calendar",
		Usage:       "refresh the news calendar cache once",
		Action:      calendarAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{configFlag},
		Description: `Fetch the weekly calendar and rewrite the cache CMD`,
	}
	encryptCMD = cli.Command{
		Name:        "encrypt",
		Usage:       "seal a credential for the settings file",
		Action:      encryptAction,
		ArgsUsage:   "<plaintext>",
		Flags:       []cli.Flag{},
		Description: `Encrypt a credential with BROKER_CREDENTIALS_KEY for use in auth_token_enc`,
	}
)

func botAction(c *cli.Context) error {
	logrus.Info("Starting bot CMD")

	b := &botcmd.Bot{ConfigPath: c.String("config")}
	if err := b.Start(); err != nil {
		logrus.WithError(err).Error("Starting cmd")
		return err
	}
	return nil
}

func telegramAction(c *cli.Context) error {
	logrus.Info("Starting telegram CMD")

	t := &telegramcmd.Telegram{ConfigPath: c.String("config")}
	if err := t.Start(); err != nil {
		logrus.WithError(err).Error("Starting cmd")
		return err
	}
	return nil
}

func watchdogAction(c *cli.Context) error {
	logrus.Info("Starting watchdog CMD")

	w := &watchdogcmd.Watchdog{ConfigPath: c.String("config")}
	if err := w.Start(); err != nil {
		logrus.WithError(err).Error("Starting cmd")
		return err
	}
	return nil
}

func calendarAction(c *cli.Context) error {
	logrus.Info("Starting calendar CMD")

	cal := &calendarcmd.Calendar{ConfigPath: c.String("config")}
	if err := cal.Start(); err != nil {
		logrus.WithError(err).Error("Starting cmd")
		return err
	}
	return nil
}

func encryptAction(c *cli.Context) error {
	plaintext := c.Args().First()
	if plaintext == "" {
		return fmt.Errorf("usage: encrypt <plaintext>")
	}

	sealed, err := security.EncryptString(plaintext, security.GetConfig().CredentialsKey)
	if err != nil {
		logrus.WithError(err).Error("Encryption failed")
		return err
	}

	fmt.Println(sealed)
	return nil
}

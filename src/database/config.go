package database

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Driver       string `envconfig:"DB_DRIVER" default:"sqlite"` // sqlite | postgres
	SQLitePath   string `envconfig:"DB_SQLITE_PATH" default:"state/c79sniper.db"`
	PostgresDSN  string `envconfig:"DB_POSTGRES_DSN"`
	GormLogLevel int    `envconfig:"GORM_LOG_LEVEL" default:"2"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}

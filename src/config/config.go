package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"c79sniper/src/errs"
)

// Config is the full settings tree for one bot instance. Loaded once at
// startup, immutable afterwards, passed explicitly to every component.
type Config struct {
	Broker   BrokerConfig   `yaml:"broker"`
	Trading  TradingConfig  `yaml:"trading"`
	Risk     RiskConfig     `yaml:"risk"`
	Strategy StrategyConfig `yaml:"strategy"`
	Telegram TelegramConfig `yaml:"telegram"`
	News     NewsConfig     `yaml:"news"`
	Profit   ProfitConfig   `yaml:"profit"`
	Watchdog WatchdogConfig `yaml:"watchdog"`
	System   SystemConfig   `yaml:"system"`
}

type BrokerConfig struct {
	BridgeURL   string `yaml:"bridge_url"`    // REST endpoint of the terminal bridge
	BridgeWSURL string `yaml:"bridge_ws_url"` // tick stream endpoint, optional
	Login       string `yaml:"login"`
	Server      string `yaml:"server"`
	// Bridge bearer token, sealed with the credentials key. Produced by the
	// encrypt subcommand; empty means the bridge runs without auth.
	AuthTokenEnc string `yaml:"auth_token_enc"`
	Symbol       string `yaml:"symbol"`
	Timeframe    string `yaml:"timeframe"`
	MagicNumber  int64  `yaml:"magic_number"`
}

type TradingConfig struct {
	PollInterval      time.Duration `yaml:"poll_interval"`
	BarsLookback      int           `yaml:"bars_lookback"`
	DailyProfitTarget float64       `yaml:"daily_profit_target"`
	DailyLossLimit    float64       `yaml:"daily_loss_limit"` // pause entries for the day once net P/L reaches -limit; 0 disables
	RolloverTimezone  string        `yaml:"rollover_timezone"`
	FridayCloseHour   int           `yaml:"friday_close_hour"`
}

type RiskConfig struct {
	SizingMode       string  `yaml:"sizing_mode"` // fixed | risk_pct
	FixedLots        float64 `yaml:"fixed_lots"`
	RiskPct          float64 `yaml:"risk_pct"`
	MaxOpenPositions int     `yaml:"max_open_positions"`
	MaxTotalVolume   float64 `yaml:"max_total_volume"`
	MaxDailyLoss     float64 `yaml:"max_daily_loss"`
	MaxDrawdownPct   float64 `yaml:"max_drawdown_pct"`
	ContractSize     float64 `yaml:"contract_size"` // account-currency move per 1.0 price unit per full lot
	LotStep          float64 `yaml:"lot_step"`
	MinLot           float64 `yaml:"min_lot"`
	MaxLot           float64 `yaml:"max_lot"`
}

type StrategyConfig struct {
	MAFastPeriod      int     `yaml:"ma_fast_period"`
	MASlowPeriod      int     `yaml:"ma_slow_period"`
	RSIPeriod         int     `yaml:"rsi_period"`
	RSIBuyBelow       float64 `yaml:"rsi_buy_below"`
	RSISellAbove      float64 `yaml:"rsi_sell_above"`
	StochKPeriod      int     `yaml:"stoch_k_period"`
	StochDPeriod      int     `yaml:"stoch_d_period"`
	StochSlowing      int     `yaml:"stoch_slowing"`
	StochBuyBelow     float64 `yaml:"stoch_buy_below"`
	StochSellAbove    float64 `yaml:"stoch_sell_above"`
	ADXPeriod         int     `yaml:"adx_period"`
	ADXMinStrength    float64 `yaml:"adx_min_strength"`
	ATRPeriod         int     `yaml:"atr_period"`
	MinConditions     int     `yaml:"min_conditions_required"`
	StopATRMultiple   float64 `yaml:"stop_atr_multiple"`
	TargetATRMultiple float64 `yaml:"target_atr_multiple"`
	BreakevenMultiple float64 `yaml:"breakeven_atr_multiple"`
	TrailingMultiple  float64 `yaml:"trailing_atr_multiple"`
}

type TelegramConfig struct {
	Token       string `yaml:"token"` // overridden by TELEGRAM_TOKEN env when set
	ChatID      int64  `yaml:"chat_id"`
	PollTimeout int    `yaml:"poll_timeout_seconds"`
}

type NewsConfig struct {
	FeedURL        string        `yaml:"feed_url"`
	Currencies     []string      `yaml:"currencies"`
	MinImpact      string        `yaml:"min_impact"` // High | Medium | Low
	BlockBefore    time.Duration `yaml:"block_before"`
	BlockAfter     time.Duration `yaml:"block_after"`
	CacheFile      string        `yaml:"cache_file"`
	CacheTTL       time.Duration `yaml:"cache_ttl"`
	StaleThreshold time.Duration `yaml:"stale_threshold"`
	DisplayMax     int           `yaml:"display_max"`
}

type ProfitConfig struct {
	BrokerFeePerFullLot      float64       `yaml:"broker_fee_per_full_lot"`
	EnablePacing             bool          `yaml:"enable_trade_pacing"`
	PacingMode               string        `yaml:"pacing_mode"` // gentle | aggressive | adaptive
	MinTradeIntervalNormal   time.Duration `yaml:"min_trade_interval_normal"`
	MinTradeIntervalFast     time.Duration `yaml:"min_trade_interval_aggressive"`
	AdaptiveThreshold        float64       `yaml:"adaptive_pacing_threshold"`
	EstimatedMinutesPerTrade int           `yaml:"estimated_minutes_per_trade"`
	StateFile                string        `yaml:"state_file"`
}

type WatchdogConfig struct {
	PollInterval     time.Duration  `yaml:"poll_interval"`
	RestartCommand   []string       `yaml:"restart_command"`
	StaleStatusAfter time.Duration  `yaml:"stale_status_after"`
	CacheRetention   time.Duration  `yaml:"cache_retention"`
	TradingHours     []TradingHours `yaml:"trading_hours"`
}

// TradingHours is one weekday rule. StartHour inclusive, EndHour exclusive.
type TradingHours struct {
	Weekday   time.Weekday `yaml:"weekday"`
	StartHour int          `yaml:"start_hour"`
	EndHour   int          `yaml:"end_hour"`
}

type SystemConfig struct {
	StateDir     string `yaml:"state_dir"`
	StatusFile   string `yaml:"status_file"`
	StopFlagFile string `yaml:"stop_flag_file"`
	HistoryLimit int    `yaml:"history_limit"`
}

const tokenTelegramENV = "TELEGRAM_TOKEN"

// Load reads and validates the settings document. Any missing required field
// fails with a descriptive error instead of a silent default.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	cfg := defaults()
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode config file: %w", err)
	}

	if token := os.Getenv(tokenTelegramENV); token != "" {
		cfg.Telegram.Token = token
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Trading: TradingConfig{
			PollInterval:     30 * time.Second,
			BarsLookback:     200,
			RolloverTimezone: "UTC",
			FridayCloseHour:  22,
		},
		Risk: RiskConfig{
			SizingMode:   "risk_pct",
			RiskPct:      1.0,
			ContractSize: 100,
			LotStep:      0.01,
			MinLot:       0.01,
			MaxLot:       100,
		},
		Strategy: StrategyConfig{
			MAFastPeriod:      9,
			MASlowPeriod:      21,
			RSIPeriod:         14,
			RSIBuyBelow:       35,
			RSISellAbove:      65,
			StochKPeriod:      14,
			StochDPeriod:      3,
			StochSlowing:      3,
			StochBuyBelow:     25,
			StochSellAbove:    75,
			ADXPeriod:         14,
			ADXMinStrength:    20,
			ATRPeriod:         14,
			MinConditions:     3,
			StopATRMultiple:   1.5,
			TargetATRMultiple: 3.0,
			BreakevenMultiple: 1.0,
			TrailingMultiple:  1.5,
		},
		News: NewsConfig{
			FeedURL:        "https://nfs.faireconomy.media/ff_calendar_thisweek.xml",
			MinImpact:      "High",
			BlockBefore:    30 * time.Minute,
			BlockAfter:     30 * time.Minute,
			CacheTTL:       4 * time.Hour,
			StaleThreshold: 24 * time.Hour,
			DisplayMax:     10,
		},
		Profit: ProfitConfig{
			EnablePacing:             true,
			PacingMode:               "adaptive",
			MinTradeIntervalNormal:   180 * time.Second,
			MinTradeIntervalFast:     60 * time.Second,
			AdaptiveThreshold:        0.7,
			EstimatedMinutesPerTrade: 30,
		},
		Watchdog: WatchdogConfig{
			PollInterval:     60 * time.Second,
			StaleStatusAfter: 3 * time.Minute,
			CacheRetention:   7 * 24 * time.Hour,
		},
		System: SystemConfig{
			StateDir:     "state",
			StatusFile:   "bot_status.json",
			StopFlagFile: "manual_stop.flag",
			HistoryLimit: 500,
		},
		Telegram: TelegramConfig{PollTimeout: 30},
	}
}

// Validate checks every required field. Called from Load, exported for tests.
func (c *Config) Validate() error {
	if c.Broker.BridgeURL == "" {
		return errs.NewConfigurationError("broker", "bridge_url", "required")
	}
	if c.Broker.Symbol == "" {
		return errs.NewConfigurationError("broker", "symbol", "required")
	}
	if c.Broker.Timeframe == "" {
		return errs.NewConfigurationError("broker", "timeframe", "required")
	}
	if c.Broker.MagicNumber <= 0 {
		return errs.NewConfigurationError("broker", "magic_number", "must be positive")
	}
	if c.Trading.PollInterval <= 0 {
		return errs.NewConfigurationError("trading", "poll_interval", "must be positive")
	}
	if _, err := time.LoadLocation(c.Trading.RolloverTimezone); err != nil {
		return errs.NewConfigurationError("trading", "rollover_timezone", "unknown timezone "+c.Trading.RolloverTimezone)
	}
	switch c.Risk.SizingMode {
	case "fixed":
		if c.Risk.FixedLots <= 0 {
			return errs.NewConfigurationError("risk", "fixed_lots", "must be positive in fixed mode")
		}
	case "risk_pct":
		if c.Risk.RiskPct <= 0 || c.Risk.RiskPct > 100 {
			return errs.NewConfigurationError("risk", "risk_pct", "must be in (0,100]")
		}
	default:
		return errs.NewConfigurationError("risk", "sizing_mode", "must be fixed or risk_pct")
	}
	if c.Risk.MaxOpenPositions <= 0 {
		return errs.NewConfigurationError("risk", "max_open_positions", "must be positive")
	}
	if c.Risk.LotStep <= 0 {
		return errs.NewConfigurationError("risk", "lot_step", "must be positive")
	}
	if c.Risk.ContractSize <= 0 {
		return errs.NewConfigurationError("risk", "contract_size", "must be positive")
	}
	if c.Strategy.MinConditions <= 0 {
		return errs.NewConfigurationError("strategy", "min_conditions_required", "must be positive")
	}
	if c.Strategy.MAFastPeriod >= c.Strategy.MASlowPeriod {
		return errs.NewConfigurationError("strategy", "ma_fast_period", "must be below ma_slow_period")
	}
	if c.Telegram.Token == "" {
		return errs.NewConfigurationError("telegram", "token", "required (or set TELEGRAM_TOKEN)")
	}
	if c.Telegram.ChatID == 0 {
		return errs.NewConfigurationError("telegram", "chat_id", "required")
	}
	if len(c.News.Currencies) == 0 {
		return errs.NewConfigurationError("news", "currencies", "at least one currency required")
	}
	switch c.News.MinImpact {
	case "High", "Medium", "Low":
	default:
		return errs.NewConfigurationError("news", "min_impact", "must be High, Medium or Low")
	}
	if c.News.CacheFile == "" {
		return errs.NewConfigurationError("news", "cache_file", "required")
	}
	switch c.Profit.PacingMode {
	case "gentle", "aggressive", "adaptive":
	default:
		return errs.NewConfigurationError("profit", "pacing_mode", "must be gentle, aggressive or adaptive")
	}
	if len(c.Watchdog.RestartCommand) == 0 {
		return errs.NewConfigurationError("watchdog", "restart_command", "required")
	}
	if c.System.StateDir == "" {
		return errs.NewConfigurationError("system", "state_dir", "required")
	}
	return nil
}

// RolloverLocation resolves the configured day-rollover timezone. Validate
// already guarantees it parses.
func (c *Config) RolloverLocation() *time.Location {
	loc, err := time.LoadLocation(c.Trading.RolloverTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

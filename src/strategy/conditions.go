package strategy

import (
	"fmt"

	"c79sniper/src/config"
)

// Snapshot is the indicator state of the most recent closed bar. The
// evaluator computes it once per cycle and every condition reads from it.
type Snapshot struct {
	Close  float64
	MAFast float64
	MASlow float64
	RSI    float64
	StochK float64
	StochD float64
	ADX    float64
	ATR    float64
}

// Condition is one independently-truthy rule. Check returns whether it is
// satisfied and a human-readable reason either way.
type Condition struct {
	Name  string
	Check func(s Snapshot) (bool, string)
}

// BuyConditions builds the ordered BUY rule set from configuration.
func BuyConditions(cfg config.StrategyConfig) []Condition {
	return []Condition{
		{
			Name: "ma_alignment",
			Check: func(s Snapshot) (bool, string) {
				ok := s.MAFast > s.MASlow
				return ok, fmt.Sprintf("MA fast %.5f vs slow %.5f", s.MAFast, s.MASlow)
			},
		},
		{
			Name: "price_above_fast_ma",
			Check: func(s Snapshot) (bool, string) {
				ok := s.Close > s.MAFast
				return ok, fmt.Sprintf("close %.5f vs fast MA %.5f", s.Close, s.MAFast)
			},
		},
		{
			Name: "rsi_oversold_zone",
			Check: func(s Snapshot) (bool, string) {
				ok := s.RSI < cfg.RSIBuyBelow
				return ok, fmt.Sprintf("RSI %.1f vs buy level %.1f", s.RSI, cfg.RSIBuyBelow)
			},
		},
		{
			Name: "stoch_oversold_cross",
			Check: func(s Snapshot) (bool, string) {
				ok := s.StochK < cfg.StochBuyBelow && s.StochK > s.StochD
				return ok, fmt.Sprintf("stoch K %.1f D %.1f, buy level %.1f", s.StochK, s.StochD, cfg.StochBuyBelow)
			},
		},
		{
			Name: "trend_strength",
			Check: func(s Snapshot) (bool, string) {
				ok := s.ADX >= cfg.ADXMinStrength
				return ok, fmt.Sprintf("ADX %.1f vs min %.1f", s.ADX, cfg.ADXMinStrength)
			},
		},
	}
}

// SellConditions builds the ordered SELL rule set from configuration.
// Evaluated independently of the buy set.
func SellConditions(cfg config.StrategyConfig) []Condition {
	return []Condition{
		{
			Name: "ma_alignment",
			Check: func(s Snapshot) (bool, string) {
				ok := s.MAFast < s.MASlow
				return ok, fmt.Sprintf("MA fast %.5f vs slow %.5f", s.MAFast, s.MASlow)
			},
		},
		{
			Name: "price_below_fast_ma",
			Check: func(s Snapshot) (bool, string) {
				ok := s.Close < s.MAFast
				return ok, fmt.Sprintf("close %.5f vs fast MA %.5f", s.Close, s.MAFast)
			},
		},
		{
			Name: "rsi_overbought_zone",
			Check: func(s Snapshot) (bool, string) {
				ok := s.RSI > cfg.RSISellAbove
				return ok, fmt.Sprintf("RSI %.1f vs sell level %.1f", s.RSI, cfg.RSISellAbove)
			},
		},
		{
			Name: "stoch_overbought_cross",
			Check: func(s Snapshot) (bool, string) {
				ok := s.StochK > cfg.StochSellAbove && s.StochK < s.StochD
				return ok, fmt.Sprintf("stoch K %.1f D %.1f, sell level %.1f", s.StochK, s.StochD, cfg.StochSellAbove)
			},
		},
		{
			Name: "trend_strength",
			Check: func(s Snapshot) (bool, string) {
				ok := s.ADX >= cfg.ADXMinStrength
				return ok, fmt.Sprintf("ADX %.1f vs min %.1f", s.ADX, cfg.ADXMinStrength)
			},
		},
	}
}

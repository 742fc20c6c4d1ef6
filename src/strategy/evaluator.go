package strategy

import (
	"fmt"

	logger "github.com/sirupsen/logrus"

	"c79sniper/src/config"
	"c79sniper/src/indicators"
	"c79sniper/src/model"
)

type Direction string

const (
	DirectionBuy  Direction = "buy"
	DirectionSell Direction = "sell"
	DirectionFlat Direction = "flat"
)

// Signal is the result of one evaluation cycle. Transient; the orchestrator
// acts on it and drops it.
type Signal struct {
	Direction Direction
	BuyScore  int
	SellScore int
	Reasons   []string
	Snapshot  Snapshot
}

// Evaluator runs the buy and sell rule sets independently over recent bars.
// Pure function of inputs and configuration; no side effects.
type Evaluator struct {
	cfg  config.StrategyConfig
	buy  []Condition
	sell []Condition
}

func NewEvaluator(cfg config.StrategyConfig) *Evaluator {
	return &Evaluator{
		cfg:  cfg,
		buy:  BuyConditions(cfg),
		sell: SellConditions(cfg),
	}
}

// MinBars is the number of bars needed before any condition can be computed.
func (e *Evaluator) MinBars() int {
	min := e.cfg.MASlowPeriod
	if n := e.cfg.RSIPeriod + 1; n > min {
		min = n
	}
	if n := e.cfg.StochKPeriod + e.cfg.StochDPeriod + e.cfg.StochSlowing; n > min {
		min = n
	}
	if n := 2*e.cfg.ADXPeriod + 1; n > min {
		min = n
	}
	if n := e.cfg.ATRPeriod + 1; n > min {
		min = n
	}
	return min
}

// Evaluate computes the indicator snapshot and scores both rule sets. A
// direction wins only when its score reaches MinConditions AND strictly
// exceeds the other side. Ties resolve to flat.
func (e *Evaluator) Evaluate(bars []model.Bar) (Signal, error) {
	if len(bars) < e.MinBars() {
		return Signal{Direction: DirectionFlat}, fmt.Errorf("need %d bars, have %d", e.MinBars(), len(bars))
	}

	snap, err := e.snapshot(bars)
	if err != nil {
		return Signal{Direction: DirectionFlat}, err
	}

	sig := Signal{Direction: DirectionFlat, Snapshot: snap}

	for _, cond := range e.buy {
		ok, reason := cond.Check(snap)
		if ok {
			sig.BuyScore++
			sig.Reasons = append(sig.Reasons, "buy/"+cond.Name+": "+reason)
		}
	}
	for _, cond := range e.sell {
		ok, reason := cond.Check(snap)
		if ok {
			sig.SellScore++
			sig.Reasons = append(sig.Reasons, "sell/"+cond.Name+": "+reason)
		}
	}

	sig.Direction = e.decide(sig.BuyScore, sig.SellScore)

	logger.WithFields(map[string]interface{}{
		"direction": sig.Direction,
		"buy":       sig.BuyScore,
		"sell":      sig.SellScore,
	}).Debug("strategy evaluated")

	return sig, nil
}

// decide applies the scoring rule: a side must reach the configured minimum
// AND strictly beat the other side. Ties resolve to flat.
func (e *Evaluator) decide(buyScore, sellScore int) Direction {
	switch {
	case buyScore >= e.cfg.MinConditions && buyScore > sellScore:
		return DirectionBuy
	case sellScore >= e.cfg.MinConditions && sellScore > buyScore:
		return DirectionSell
	default:
		return DirectionFlat
	}
}

func (e *Evaluator) snapshot(bars []model.Bar) (Snapshot, error) {
	closes := model.Closes(bars)
	highs := model.Highs(bars)
	lows := model.Lows(bars)

	maFast, ok1 := indicators.Last(indicators.EMA(closes, e.cfg.MAFastPeriod))
	maSlow, ok2 := indicators.Last(indicators.EMA(closes, e.cfg.MASlowPeriod))
	rsi, ok3 := indicators.Last(indicators.RSI(closes, e.cfg.RSIPeriod))
	kSeries, dSeries := indicators.Stochastic(highs, lows, closes, e.cfg.StochKPeriod, e.cfg.StochDPeriod, e.cfg.StochSlowing)
	stochK, ok4 := indicators.Last(kSeries)
	stochD, ok5 := indicators.Last(dSeries)
	adx, ok6 := indicators.Last(indicators.ADX(highs, lows, closes, e.cfg.ADXPeriod))
	atr, ok7 := indicators.Last(indicators.ATR(highs, lows, closes, e.cfg.ATRPeriod))

	if !(ok1 && ok2 && ok3 && ok4 && ok5 && ok6 && ok7) {
		return Snapshot{}, fmt.Errorf("indicator series too short for %d bars", len(bars))
	}

	return Snapshot{
		Close:  closes[len(closes)-1],
		MAFast: maFast,
		MASlow: maSlow,
		RSI:    rsi,
		StochK: stochK,
		StochD: stochD,
		ADX:    adx,
		ATR:    atr,
	}, nil
}

package strategy

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"c79sniper/src/config"
	"c79sniper/src/model"
)

func testStrategyConfig() config.StrategyConfig {
	return config.StrategyConfig{
		MAFastPeriod:   3,
		MASlowPeriod:   5,
		RSIPeriod:      3,
		RSIBuyBelow:    35,
		RSISellAbove:   65,
		StochKPeriod:   3,
		StochDPeriod:   2,
		StochSlowing:   1,
		StochBuyBelow:  25,
		StochSellAbove: 75,
		ADXPeriod:      3,
		ADXMinStrength: 20,
		ATRPeriod:      3,
		MinConditions:  3,
	}
}

func TestDecide(t *testing.T) {
	eval := NewEvaluator(testStrategyConfig())

	tests := []struct {
		name      string
		buy, sell int
		want      Direction
	}{
		{"both zero", 0, 0, DirectionFlat},
		{"buy below minimum", 2, 0, DirectionFlat},
		{"buy at minimum", 3, 0, DirectionBuy},
		{"sell at minimum", 0, 3, DirectionSell},
		{"tie above minimum", 4, 4, DirectionFlat},
		{"buy wins close race", 4, 3, DirectionBuy},
		{"sell wins close race", 3, 4, DirectionSell},
		{"both maxed", 5, 5, DirectionFlat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := eval.decide(tt.buy, tt.sell); got != tt.want {
				t.Fatalf("decide(%d, %d) = %s, want %s", tt.buy, tt.sell, got, tt.want)
			}
		})
	}
}

func TestMinBars(t *testing.T) {
	eval := NewEvaluator(testStrategyConfig())

	// ADX dominates here: 2*3+1 = 7.
	if got := eval.MinBars(); got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}
}

func TestEvaluateTooFewBars(t *testing.T) {
	eval := NewEvaluator(testStrategyConfig())

	sig, err := eval.Evaluate(makeBars(3))
	if err == nil {
		t.Fatal("expected error for too few bars")
	}
	if sig.Direction != DirectionFlat {
		t.Fatalf("short input must evaluate flat, got %s", sig.Direction)
	}
}

func TestEvaluateScoresBothSidesIndependently(t *testing.T) {
	eval := NewEvaluator(testStrategyConfig())

	sig, err := eval.Evaluate(makeBars(50))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig.BuyScore < 0 || sig.BuyScore > len(eval.buy) {
		t.Fatalf("buy score %d out of range", sig.BuyScore)
	}
	if sig.SellScore < 0 || sig.SellScore > len(eval.sell) {
		t.Fatalf("sell score %d out of range", sig.SellScore)
	}
	if len(sig.Reasons) != sig.BuyScore+sig.SellScore {
		t.Fatalf("expected %d reasons, got %d", sig.BuyScore+sig.SellScore, len(sig.Reasons))
	}
}

func makeBars(n int) []model.Bar {
	bars := make([]model.Bar, n)
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	for i := range bars {
		price := 100 + float64(i%7)
		bars[i] = model.Bar{
			Symbol:   "XAUUSD",
			Datetime: base.Add(time.Duration(i) * time.Minute),
			Open:     decimal.NewFromFloat(price),
			High:     decimal.NewFromFloat(price + 1),
			Low:      decimal.NewFromFloat(price - 1),
			Close:    decimal.NewFromFloat(price + 0.5),
			Volume:   decimal.NewFromInt(100),
		}
	}
	return bars
}

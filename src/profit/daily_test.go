package profit

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"c79sniper/src/config"
)

type fakeDeals struct {
	deals []ClosedDeal
}

func (f *fakeDeals) ClosedDeals(_ context.Context, _, _ time.Time) ([]ClosedDeal, error) {
	return f.deals, nil
}

func testProfitConfig(t *testing.T) config.ProfitConfig {
	t.Helper()
	return config.ProfitConfig{
		BrokerFeePerFullLot:      7.0,
		EnablePacing:             true,
		PacingMode:               "gentle",
		MinTradeIntervalNormal:   180 * time.Second,
		MinTradeIntervalFast:     60 * time.Second,
		AdaptiveThreshold:        0.7,
		EstimatedMinutesPerTrade: 30,
		StateFile:                filepath.Join(t.TempDir(), "daily_state.json"),
	}
}

func testTradingConfig() config.TradingConfig {
	return config.TradingConfig{
		DailyProfitTarget: 100,
		RolloverTimezone:  "UTC",
		FridayCloseHour:   22,
	}
}

func newTestManager(t *testing.T, source DealSource) *Manager {
	t.Helper()
	return NewManager(testProfitConfig(t), testTradingConfig(), time.UTC, source)
}

// monday aligns the manager's reset day with the test clock before assertions.
func monday(m *Manager) time.Time {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	m.ShouldAllowTrading(context.Background(), now)
	return now
}

func TestTradeFee(t *testing.T) {
	m := newTestManager(t, &fakeDeals{})

	tests := []struct {
		lots float64
		want float64
	}{
		{1.0, 7.0},
		{0.5, 3.5},
		{0.01, 0.07},
		{2.5, 17.5},
	}
	for _, tt := range tests {
		if got := m.TradeFee(tt.lots); got != tt.want {
			t.Fatalf("TradeFee(%v) = %v, want %v", tt.lots, got, tt.want)
		}
	}
}

func TestDailyStatsNetAccounting(t *testing.T) {
	source := &fakeDeals{deals: []ClosedDeal{
		{Lots: 1.0, Profit: 50},
		{Lots: 0.5, Profit: -10},
	}}
	m := newTestManager(t, source)
	now := monday(m)

	stats := m.DailyStats(context.Background(), now)
	if stats.TradesCount != 2 {
		t.Fatalf("expected 2 trades, got %d", stats.TradesCount)
	}
	if stats.GrossProfit != 40 {
		t.Fatalf("expected gross 40, got %v", stats.GrossProfit)
	}
	if stats.TotalFees != 10.5 {
		t.Fatalf("expected fees 10.5, got %v", stats.TotalFees)
	}
	if stats.NetProfit != 29.5 {
		t.Fatalf("expected net 29.5, got %v", stats.NetProfit)
	}
	if stats.TargetPercentage != 40 {
		t.Fatalf("expected 40%% of target, got %v", stats.TargetPercentage)
	}
}

func TestTargetReachedPausesTrading(t *testing.T) {
	source := &fakeDeals{deals: []ClosedDeal{{Lots: 1.0, Profit: 120}}}
	m := newTestManager(t, source)
	now := monday(m)

	reached, stats := m.CheckTargetReached(context.Background(), now)
	if !reached {
		t.Fatalf("expected target reached at gross %v", stats.GrossProfit)
	}

	allowed, reason := m.ShouldAllowTrading(context.Background(), now)
	if allowed {
		t.Fatal("expected trading paused after target")
	}
	if !strings.Contains(reason, "target reached") {
		t.Fatalf("unexpected reason: %s", reason)
	}
}

func TestTargetOnGrossNotNet(t *testing.T) {
	// Gross 100 hits the target even though net is below it after fees.
	source := &fakeDeals{deals: []ClosedDeal{{Lots: 2.0, Profit: 100}}}
	m := newTestManager(t, source)
	now := monday(m)

	reached, stats := m.CheckTargetReached(context.Background(), now)
	if !reached {
		t.Fatal("target compares gross profit, not net")
	}
	if stats.NetProfit >= 100 {
		t.Fatalf("test setup broken, net %v", stats.NetProfit)
	}
}

func TestRolloverResetsTargetPause(t *testing.T) {
	source := &fakeDeals{deals: []ClosedDeal{{Lots: 1.0, Profit: 120}}}
	m := newTestManager(t, source)
	now := monday(m)

	m.CheckTargetReached(context.Background(), now)

	// Next day, before any deals: pause lifts.
	source.deals = nil
	nextDay := now.Add(24 * time.Hour)
	allowed, reason := m.ShouldAllowTrading(context.Background(), nextDay)
	if !allowed {
		t.Fatalf("expected reset after rollover, blocked: %s", reason)
	}
}

func TestDailyLossLimitPausesTrading(t *testing.T) {
	trading := testTradingConfig()
	trading.DailyLossLimit = 50
	m := NewManager(testProfitConfig(t), trading, time.UTC, &fakeDeals{})
	now := monday(m)

	// Gross -45 plus the 7.00 fee lands net at -52, through the 50 floor.
	m.RecordTrade(1.0, -45, now)

	allowed, reason := m.ShouldAllowTrading(context.Background(), now.Add(5*time.Minute))
	if allowed {
		t.Fatal("expected pause at the daily loss limit")
	}
	if !strings.Contains(reason, "loss limit") {
		t.Fatalf("unexpected reason: %s", reason)
	}

	// Rollover lifts the pause.
	nextDay := now.Add(24 * time.Hour)
	if allowed, reason := m.ShouldAllowTrading(context.Background(), nextDay); !allowed {
		t.Fatalf("expected reset after rollover, blocked: %s", reason)
	}
}

func TestFridayCloseBlocks(t *testing.T) {
	m := newTestManager(t, &fakeDeals{})

	friday := time.Date(2026, 3, 6, 22, 30, 0, 0, time.UTC)
	allowed, reason := m.ShouldAllowTrading(context.Background(), friday)
	if allowed {
		t.Fatal("expected Friday close block")
	}
	if !strings.Contains(reason, "Friday") {
		t.Fatalf("unexpected reason: %s", reason)
	}

	earlier := time.Date(2026, 3, 6, 15, 0, 0, 0, time.UTC)
	if allowed, reason := m.ShouldAllowTrading(context.Background(), earlier); !allowed {
		t.Fatalf("expected allowed before close, blocked: %s", reason)
	}
}

func TestFridayHoursRemaining(t *testing.T) {
	m := newTestManager(t, &fakeDeals{})

	friday := time.Date(2026, 3, 6, 19, 0, 0, 0, time.UTC)
	if got := m.FridayHoursRemaining(friday); got != 3.0 {
		t.Fatalf("expected 3.0 hours, got %v", got)
	}

	after := time.Date(2026, 3, 6, 23, 0, 0, 0, time.UTC)
	if got := m.FridayHoursRemaining(after); got != 0 {
		t.Fatalf("expected 0 after close, got %v", got)
	}

	monday := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	if got := m.FridayHoursRemaining(monday); got >= 0 {
		t.Fatalf("expected negative off Friday, got %v", got)
	}
}

func TestPacingBlocksUntilInterval(t *testing.T) {
	m := newTestManager(t, &fakeDeals{})
	now := monday(m)

	m.RecordTrade(0.5, 10, now)

	allowed, reason := m.ShouldAllowTrading(context.Background(), now.Add(60*time.Second))
	if allowed {
		t.Fatal("expected pacing block inside the interval")
	}
	if !strings.Contains(reason, "pacing") {
		t.Fatalf("unexpected reason: %s", reason)
	}

	if allowed, reason := m.ShouldAllowTrading(context.Background(), now.Add(181*time.Second)); !allowed {
		t.Fatalf("expected allowed after the interval, blocked: %s", reason)
	}
}

func TestAdaptivePacingSpeedsUpWhenBehind(t *testing.T) {
	cfg := testProfitConfig(t)
	cfg.PacingMode = "adaptive"

	// Noon: expected progress 50%, threshold 0.7 → cutoff 35%.
	source := &fakeDeals{deals: []ClosedDeal{{Lots: 0.1, Profit: 10}}} // 10% of target
	m := NewManager(cfg, testTradingConfig(), time.UTC, source)
	now := monday(m)

	m.RecordTrade(0.1, 10, now)

	// Behind schedule: the fast interval (60s) applies, 90s is enough.
	if allowed, reason := m.ShouldAllowTrading(context.Background(), now.Add(90*time.Second)); !allowed {
		t.Fatalf("expected fast pacing when behind, blocked: %s", reason)
	}

	// Ahead of schedule: the normal interval (180s) applies, 90s is not enough.
	source.deals = []ClosedDeal{{Lots: 0.1, Profit: 90}} // 90% of target
	m2 := NewManager(cfg, testTradingConfig(), time.UTC, source)
	now2 := monday(m2)
	m2.RecordTrade(0.1, 90, now2)

	if allowed, _ := m2.ShouldAllowTrading(context.Background(), now2.Add(90*time.Second)); allowed {
		t.Fatal("expected normal pacing when ahead")
	}
}

func TestStatePersistsAcrossRestart(t *testing.T) {
	cfg := testProfitConfig(t)
	source := &fakeDeals{deals: []ClosedDeal{{Lots: 1.0, Profit: 120}}}

	m := NewManager(cfg, testTradingConfig(), time.UTC, source)
	now := time.Now().UTC()
	m.CheckTargetReached(context.Background(), now)

	// A new manager with the same state file resumes the latched pause.
	m2 := NewManager(cfg, testTradingConfig(), time.UTC, source)
	allowed, reason := m2.ShouldAllowTrading(context.Background(), now)
	if allowed {
		t.Fatal("expected persisted target pause after restart")
	}
	if !strings.Contains(reason, "target reached") {
		t.Fatalf("unexpected reason: %s", reason)
	}
}

func TestProgressReportContents(t *testing.T) {
	source := &fakeDeals{deals: []ClosedDeal{{Lots: 1.0, Profit: 50}}}
	m := newTestManager(t, source)
	now := monday(m)

	report := m.ProgressReport(context.Background(), now)
	for _, want := range []string{"Gross profit: 50.00", "NET profit: 43.00 / 100.00", "Progress: 50.0%"} {
		if !strings.Contains(report, want) {
			t.Fatalf("report missing %q:\n%s", want, report)
		}
	}

	compact := m.CompactProgress(context.Background(), now)
	if !strings.Contains(compact, "NET: 43.00 / 100.00 (50.0%)") {
		t.Fatalf("unexpected compact progress: %s", compact)
	}
}

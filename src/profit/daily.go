package profit

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	logger "github.com/sirupsen/logrus"

	"c79sniper/src/config"
)

// ClosedDeal is the slice of a closed-deal history entry the manager needs.
type ClosedDeal struct {
	Lots   float64
	Profit float64
}

// DealSource returns today's closed deals for this bot instance (already
// filtered by magic number and symbol).
type DealSource interface {
	ClosedDeals(ctx context.Context, from, to time.Time) ([]ClosedDeal, error)
}

// DailyStats is one snapshot of today's totals. Net is gross minus the
// estimated broker fees.
type DailyStats struct {
	TradesCount      int        `json:"trades_count"`
	GrossProfit      float64    `json:"gross_profit"`
	TotalFees        float64    `json:"total_fees"`
	NetProfit        float64    `json:"net_profit"`
	TargetPercentage float64    `json:"target_percentage"`
	AvgProfit        float64    `json:"average_profit_per_trade"`
	TargetETA        *time.Time `json:"estimated_target_eta,omitempty"`
}

// Manager tracks the daily profit target with fee-aware NET accounting,
// adaptive trade pacing, Friday close handling and a midnight reset in the
// configured rollover timezone.
type Manager struct {
	cfg         config.ProfitConfig
	dailyTarget float64
	lossLimit   float64
	fridayClose int
	loc         *time.Location
	source      DealSource

	targetReached bool
	lastResetDay  string
	tradesToday   int
	grossToday    float64
	feesToday     float64
	netToday      float64
	lastTradeAt   *time.Time
}

func NewManager(cfg config.ProfitConfig, trading config.TradingConfig, loc *time.Location, source DealSource) *Manager {
	if loc == nil {
		loc = time.UTC
	}
	m := &Manager{
		cfg:         cfg,
		dailyTarget: trading.DailyProfitTarget,
		lossLimit:   trading.DailyLossLimit,
		fridayClose: trading.FridayCloseHour,
		loc:         loc,
		source:      source,
	}
	m.lastResetDay = time.Now().In(loc).Format("2006-01-02")
	m.loadState()
	return m
}

// TradeFee estimates the broker fee for one trade from its lot size.
func (m *Manager) TradeFee(lots float64) float64 {
	return math.Round(lots*m.cfg.BrokerFeePerFullLot*100) / 100
}

// DailyStats queries the deal source for today's closed trades and refreshes
// the running totals.
func (m *Manager) DailyStats(ctx context.Context, now time.Time) DailyStats {
	local := now.In(m.loc)
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, m.loc)
	dayEnd := dayStart.Add(24 * time.Hour)

	deals, err := m.source.ClosedDeals(ctx, dayStart, dayEnd)
	if err != nil {
		logger.WithError(err).Error("profit: failed to load today's deals")
		return DailyStats{}
	}
	if len(deals) == 0 {
		return DailyStats{}
	}

	stats := DailyStats{TradesCount: len(deals)}
	for _, d := range deals {
		stats.GrossProfit += d.Profit
		stats.TotalFees += m.TradeFee(d.Lots)
	}
	stats.NetProfit = stats.GrossProfit - stats.TotalFees
	if m.dailyTarget > 0 {
		stats.TargetPercentage = stats.GrossProfit / m.dailyTarget * 100
	}
	stats.AvgProfit = stats.GrossProfit / float64(stats.TradesCount)

	// Estimate when the target lands, assuming the average keeps up.
	if stats.AvgProfit > 0 && stats.GrossProfit < m.dailyTarget {
		remaining := m.dailyTarget - stats.GrossProfit
		tradesNeeded := remaining / stats.AvgProfit
		eta := now.Add(time.Duration(tradesNeeded*float64(m.cfg.EstimatedMinutesPerTrade)) * time.Minute)
		stats.TargetETA = &eta
	}

	m.tradesToday = stats.TradesCount
	m.grossToday = stats.GrossProfit
	m.feesToday = stats.TotalFees
	m.netToday = stats.NetProfit

	return stats
}

// CheckTargetReached reports whether the gross target is met, latching the
// pause state on first hit.
func (m *Manager) CheckTargetReached(ctx context.Context, now time.Time) (bool, DailyStats) {
	stats := m.DailyStats(ctx, now)

	reached := stats.GrossProfit >= m.dailyTarget && m.dailyTarget > 0
	if reached && !m.targetReached {
		logger.WithFields(map[string]interface{}{
			"gross": stats.GrossProfit,
			"fees":  stats.TotalFees,
			"net":   stats.NetProfit,
		}).Info("profit: daily target reached")
		m.targetReached = true
		m.saveState()
	}
	return reached, stats
}

// ShouldAllowTrading gates new entries on target state, the daily loss limit,
// Friday close hour and trade pacing. Returns the human-readable reason when
// blocked.
func (m *Manager) ShouldAllowTrading(ctx context.Context, now time.Time) (bool, string) {
	local := now.In(m.loc)

	// Midnight reset in the rollover timezone, nowhere else.
	if day := local.Format("2006-01-02"); day != m.lastResetDay {
		m.resetDailyState(day)
	}

	if m.targetReached {
		return false, fmt.Sprintf("daily target reached (%.2f), paused until rollover", m.grossToday)
	}

	if m.lossLimit > 0 && m.netToday <= -m.lossLimit {
		return false, fmt.Sprintf("daily loss limit hit (net %.2f), paused until rollover", m.netToday)
	}

	if local.Weekday() == time.Friday && local.Hour() >= m.fridayClose {
		return false, fmt.Sprintf("Friday close at %02d:00, no new trades", m.fridayClose)
	}

	if m.cfg.EnablePacing && m.lastTradeAt != nil {
		required := m.requiredInterval(ctx, now)
		since := now.Sub(*m.lastTradeAt)
		if since < required {
			wait := required - since
			return false, fmt.Sprintf("trade pacing: wait %ds before next trade (%s mode)",
				int(wait.Seconds()), m.cfg.PacingMode)
		}
	}

	return true, "trading allowed"
}

// requiredInterval picks the pacing interval for the current mode. Adaptive
// mode compares actual progress against the expected-by-time progress scaled
// by the configured threshold and speeds up when behind.
func (m *Manager) requiredInterval(ctx context.Context, now time.Time) time.Duration {
	switch m.cfg.PacingMode {
	case "aggressive":
		return m.cfg.MinTradeIntervalFast
	case "gentle":
		return m.cfg.MinTradeIntervalNormal
	case "adaptive":
		stats := m.DailyStats(ctx, now)
		local := now.In(m.loc)
		hoursElapsed := float64(local.Hour()) + float64(local.Minute())/60.0
		expected := hoursElapsed / 24.0 * 100
		if stats.TargetPercentage < expected*m.cfg.AdaptiveThreshold {
			return m.cfg.MinTradeIntervalFast
		}
		return m.cfg.MinTradeIntervalNormal
	default:
		return m.cfg.MinTradeIntervalNormal
	}
}

// FridayHoursRemaining returns hours until the Friday close, or a negative
// value when it is not Friday.
func (m *Manager) FridayHoursRemaining(now time.Time) float64 {
	local := now.In(m.loc)
	if local.Weekday() != time.Friday {
		return -1
	}

	close := time.Date(local.Year(), local.Month(), local.Day(), m.fridayClose, 0, 0, 0, m.loc)
	if !local.Before(close) {
		return 0
	}
	return math.Round(close.Sub(local).Hours()*10) / 10
}

// RecordTrade feeds one executed trade into the pacing tracker and totals.
func (m *Manager) RecordTrade(lots, profit float64, now time.Time) {
	ts := now
	m.lastTradeAt = &ts
	m.tradesToday++

	fee := m.TradeFee(lots)
	m.grossToday += profit
	m.feesToday += fee
	m.netToday = m.grossToday - m.feesToday

	logger.WithFields(map[string]interface{}{
		"profit": profit,
		"fee":    fee,
		"net":    m.netToday,
	}).Info("profit: trade recorded")

	m.saveState()
}

func (m *Manager) resetDailyState(day string) {
	logger.Info("profit: rollover reset, new trading day")
	m.targetReached = false
	m.lastResetDay = day
	m.tradesToday = 0
	m.grossToday = 0
	m.feesToday = 0
	m.netToday = 0
	m.lastTradeAt = nil
	m.saveState()
}

// ProgressReport renders the multi-line Telegram progress summary.
func (m *Manager) ProgressReport(ctx context.Context, now time.Time) string {
	stats := m.DailyStats(ctx, now)
	local := now.In(m.loc)

	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, m.loc)
	elapsed := local.Sub(dayStart)
	hoursElapsed := int(elapsed.Hours())
	minutesElapsed := int(elapsed.Minutes()) % 60

	report := "Daily Progress Report\n"
	report += fmt.Sprintf("Gross profit: %.2f\n", stats.GrossProfit)
	report += fmt.Sprintf("Estimated fees: %.2f (%d trades)\n", stats.TotalFees, stats.TradesCount)
	report += fmt.Sprintf("NET profit: %.2f / %.2f\n", stats.NetProfit, m.dailyTarget)
	report += fmt.Sprintf("Progress: %.1f%%\n", stats.TargetPercentage)
	report += fmt.Sprintf("Time: %s (%dh %dm elapsed)\n", local.Format("15:04"), hoursElapsed, minutesElapsed)

	if stats.TradesCount > 0 {
		expected := (float64(hoursElapsed) / 24.0) * 100
		pace := "on track"
		if stats.TargetPercentage < expected*m.cfg.AdaptiveThreshold {
			pace = "behind schedule"
		} else if stats.TargetPercentage < expected {
			pace = "slightly behind"
		}
		report += "Pace: " + pace + "\n"
	}

	if hours := m.FridayHoursRemaining(now); hours >= 0 {
		report += fmt.Sprintf("Friday: %.1fh until %02d:00 close\n", hours, m.fridayClose)
	}
	if stats.TargetETA != nil {
		report += "Estimated target: " + stats.TargetETA.In(m.loc).Format("15:04") + "\n"
	}

	return report
}

// CompactProgress renders the one-line progress update.
func (m *Manager) CompactProgress(ctx context.Context, now time.Time) string {
	stats := m.DailyStats(ctx, now)
	return fmt.Sprintf("NET: %.2f / %.2f (%.1f%%)", stats.NetProfit, m.dailyTarget, stats.TargetPercentage)
}

// ----- state file -----

type persistedState struct {
	Date          string     `json:"date"`
	TargetReached bool       `json:"target_reached"`
	TradesToday   int        `json:"trades_today"`
	GrossProfit   float64    `json:"gross_profit"`
	TotalFees     float64    `json:"total_fees"`
	NetProfit     float64    `json:"net_profit"`
	LastTradeTime *time.Time `json:"last_trade_time,omitempty"`
}

func (m *Manager) saveState() {
	if m.cfg.StateFile == "" {
		return
	}

	state := persistedState{
		Date:          m.lastResetDay,
		TargetReached: m.targetReached,
		TradesToday:   m.tradesToday,
		GrossProfit:   m.grossToday,
		TotalFees:     m.feesToday,
		NetProfit:     m.netToday,
		LastTradeTime: m.lastTradeAt,
	}

	raw, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		logger.WithError(err).Error("profit: marshal state failed")
		return
	}

	if err := os.MkdirAll(filepath.Dir(m.cfg.StateFile), 0o755); err != nil {
		logger.WithError(err).Error("profit: create state dir failed")
		return
	}

	tmp := m.cfg.StateFile + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		logger.WithError(err).Error("profit: write state failed")
		return
	}
	if err := os.Rename(tmp, m.cfg.StateFile); err != nil {
		logger.WithError(err).Error("profit: replace state failed")
	}
}

// loadState restores the persisted daily state when it belongs to today.
func (m *Manager) loadState() {
	if m.cfg.StateFile == "" {
		return
	}

	raw, err := os.ReadFile(m.cfg.StateFile)
	if err != nil {
		return
	}

	var state persistedState
	if err := json.Unmarshal(raw, &state); err != nil {
		logger.WithError(err).Warn("profit: state file unreadable, starting fresh")
		return
	}

	if state.Date != m.lastResetDay {
		// Stale state from a previous day; rollover handles the reset.
		return
	}

	m.targetReached = state.TargetReached
	m.tradesToday = state.TradesToday
	m.grossToday = state.GrossProfit
	m.feesToday = state.TotalFees
	m.netToday = state.NetProfit
	m.lastTradeAt = state.LastTradeTime
}

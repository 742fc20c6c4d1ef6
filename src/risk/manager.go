package risk

import (
	"time"

	logger "github.com/sirupsen/logrus"
	"github.com/shopspring/decimal"

	"c79sniper/src/config"
	"c79sniper/src/errs"
)

// AccountState is the slice of broker account data the manager needs.
type AccountState struct {
	Equity  decimal.Decimal
	Balance decimal.Decimal
}

// OpenExposure summarizes currently open positions.
type OpenExposure struct {
	Count       int
	TotalVolume decimal.Decimal
}

// Proposal is a candidate trade before sizing.
type Proposal struct {
	Symbol     string
	Direction  string // buy | sell
	Entry      decimal.Decimal
	StopLoss   decimal.Decimal
	TakeProfit decimal.Decimal
}

// Manager enforces exposure, loss and drawdown ceilings and computes position
// size. Every violated limit rejects the whole trade with a specific reason;
// there is no partial sizing.
type Manager struct {
	cfg config.RiskConfig
	loc *time.Location

	dayKey     string
	dailyLoss  decimal.Decimal // realized losses today, positive number
	peakEquity decimal.Decimal
}

func NewManager(cfg config.RiskConfig, rollover *time.Location) *Manager {
	if rollover == nil {
		rollover = time.UTC
	}
	return &Manager{cfg: cfg, loc: rollover}
}

// ObserveEquity feeds the drawdown tracker. Called every cycle.
func (m *Manager) ObserveEquity(equity decimal.Decimal) {
	if equity.GreaterThan(m.peakEquity) {
		m.peakEquity = equity
	}
}

// RecordClose feeds the daily loss counter with a realized trade result.
func (m *Manager) RecordClose(profit decimal.Decimal, closedAt time.Time) {
	m.roll(closedAt)
	if profit.IsNegative() {
		m.dailyLoss = m.dailyLoss.Add(profit.Neg())
	}
}

// DailyLoss returns today's realized loss as a positive number.
func (m *Manager) DailyLoss(now time.Time) decimal.Decimal {
	m.roll(now)
	return m.dailyLoss
}

// roll resets the daily counters, loss and equity peak both, exactly at the
// configured rollover boundary.
func (m *Manager) roll(now time.Time) {
	key := now.In(m.loc).Format("2006-01-02")
	if key != m.dayKey {
		if m.dayKey != "" {
			logger.WithField("day", key).Info("risk: daily counters reset")
		}
		m.dayKey = key
		m.dailyLoss = decimal.Zero
		// Drawdown is measured within the trading day; the peak reseeds from
		// the first equity observed after the boundary.
		m.peakEquity = decimal.Zero
	}
}

// Check validates the proposal against every configured ceiling and, when all
// pass, returns the computed lot size. Fails closed: the first violated limit
// rejects the trade.
func (m *Manager) Check(account AccountState, open OpenExposure, proposal Proposal, now time.Time) (decimal.Decimal, error) {
	m.roll(now)

	if open.Count >= m.cfg.MaxOpenPositions {
		return decimal.Zero, errs.NewValidationError("max_open_positions",
			"already at limit "+decimal.NewFromInt(int64(m.cfg.MaxOpenPositions)).String())
	}

	if m.cfg.MaxDailyLoss > 0 && m.dailyLoss.GreaterThanOrEqual(decimal.NewFromFloat(m.cfg.MaxDailyLoss)) {
		return decimal.Zero, errs.NewValidationError("max_daily_loss",
			"realized loss "+m.dailyLoss.StringFixed(2)+" at or above limit")
	}

	if m.cfg.MaxDrawdownPct > 0 && m.peakEquity.IsPositive() {
		dd := m.peakEquity.Sub(account.Equity).
			Div(m.peakEquity).
			Mul(decimal.NewFromInt(100))
		if dd.GreaterThanOrEqual(decimal.NewFromFloat(m.cfg.MaxDrawdownPct)) {
			return decimal.Zero, errs.NewValidationError("max_drawdown_pct",
				"drawdown "+dd.StringFixed(2)+"% at or above limit")
		}
	}

	lots, err := m.size(account, proposal)
	if err != nil {
		return decimal.Zero, err
	}

	if m.cfg.MaxTotalVolume > 0 {
		projected := open.TotalVolume.Add(lots)
		if projected.GreaterThan(decimal.NewFromFloat(m.cfg.MaxTotalVolume)) {
			return decimal.Zero, errs.NewValidationError("max_total_volume",
				"projected volume "+projected.StringFixed(2)+" above limit")
		}
	}

	return lots, nil
}

// size computes lots under the configured sizing rule, snapped down to the
// lot step and clamped to [min_lot, max_lot].
func (m *Manager) size(account AccountState, proposal Proposal) (decimal.Decimal, error) {
	var lots decimal.Decimal

	switch m.cfg.SizingMode {
	case "fixed":
		lots = decimal.NewFromFloat(m.cfg.FixedLots)

	case "risk_pct":
		stopDistance := proposal.Entry.Sub(proposal.StopLoss).Abs()
		if stopDistance.IsZero() {
			return decimal.Zero, errs.NewValidationError("sizing", "stop distance is zero")
		}

		riskAmount := account.Equity.
			Mul(decimal.NewFromFloat(m.cfg.RiskPct)).
			Div(decimal.NewFromInt(100))
		lossPerLot := stopDistance.Mul(decimal.NewFromFloat(m.cfg.ContractSize))
		lots = riskAmount.Div(lossPerLot)

	default:
		return decimal.Zero, errs.NewValidationError("sizing", "unknown sizing mode "+m.cfg.SizingMode)
	}

	step := decimal.NewFromFloat(m.cfg.LotStep)
	lots = lots.Div(step).Floor().Mul(step)

	minLot := decimal.NewFromFloat(m.cfg.MinLot)
	maxLot := decimal.NewFromFloat(m.cfg.MaxLot)
	if lots.LessThan(minLot) {
		return decimal.Zero, errs.NewValidationError("sizing",
			"computed size "+lots.String()+" below minimum lot "+minLot.String())
	}
	if lots.GreaterThan(maxLot) {
		lots = maxLot
	}

	return lots, nil
}

package bot

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"time"

	logger "github.com/sirupsen/logrus"
	"github.com/shopspring/decimal"

	"c79sniper/src/config"
	"c79sniper/src/errs"
	"c79sniper/src/model"
	"c79sniper/src/mt5"
	"c79sniper/src/news"
	"c79sniper/src/notify"
	"c79sniper/src/profit"
	"c79sniper/src/repository"
	"c79sniper/src/risk"
	"c79sniper/src/state"
	"c79sniper/src/stats"
	"c79sniper/src/strategy"
)

// Broker is the slice of the terminal bridge the orchestrator uses. Narrow so
// tests can fake the whole broker side.
type Broker interface {
	Bars(ctx context.Context, symbol, timeframe string, count int) ([]model.Bar, error)
	Account(ctx context.Context) (*mt5.AccountInfo, error)
	Positions(ctx context.Context, magic int64) ([]mt5.Position, error)
	Deals(ctx context.Context, from, to time.Time) ([]mt5.Deal, error)
	PlaceOrder(ctx context.Context, req mt5.OrderRequest) (*mt5.OrderResult, error)
	ModifyPosition(ctx context.Context, ticket int64, stopLoss, takeProfit float64) error
	ClosePosition(ctx context.Context, ticket int64) error
}

// stopState tracks how far a position's protective stop has been advanced.
type stopState int

const (
	stopInitial stopState = iota
	stopBreakeven
	stopTrailing
)

// Orchestrator drives the poll cycle: heartbeat, position management, entry
// gates, signal evaluation, sizing and order placement. One instance per
// symbol; all collaborators are injected.
type Orchestrator struct {
	cfg      *config.Config
	broker   Broker
	eval     *strategy.Evaluator
	riskMgr  *risk.Manager
	filter   *news.Filter
	profits  *profit.Manager
	tracker  *stats.Tracker
	store    *state.Store
	notifier *notify.Notifier
	excRepo  *repository.ExceptionRepository

	known     map[int64]mt5.Position
	stops     map[int64]stopState
	failures  int
	pauseNote string
	tick      atomic.Value // mt5.Tick
}

func NewOrchestrator(
	cfg *config.Config,
	broker Broker,
	eval *strategy.Evaluator,
	riskMgr *risk.Manager,
	filter *news.Filter,
	profits *profit.Manager,
	tracker *stats.Tracker,
	store *state.Store,
	notifier *notify.Notifier,
	excRepo *repository.ExceptionRepository,
) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		broker:   broker,
		eval:     eval,
		riskMgr:  riskMgr,
		filter:   filter,
		profits:  profits,
		tracker:  tracker,
		store:    store,
		notifier: notifier,
		excRepo:  excRepo,
		known:    map[int64]mt5.Position{},
		stops:    map[int64]stopState{},
	}
}

// StartTickStream consumes the bridge quote stream and keeps the latest bid
// available for position management between bar closes. Optional; without it
// stops advance on the last bar close only.
func (o *Orchestrator) StartTickStream(ctx context.Context, wsURL string) {
	ticks := make(chan mt5.Tick, 64)
	go mt5.StreamTicks(ctx, wsURL, o.cfg.Broker.Symbol, ticks)
	go func() {
		for t := range ticks {
			o.tick.Store(t)
		}
	}()
}

// lastPrice prefers the streamed bid over the bar close when a recent tick
// exists.
func (o *Orchestrator) lastPrice(fallback float64) float64 {
	v := o.tick.Load()
	if v == nil {
		return fallback
	}
	t := v.(mt5.Tick)
	if t.Bid <= 0 {
		return fallback
	}
	if time.Since(time.UnixMilli(t.Time)) > o.cfg.Trading.PollInterval {
		return fallback
	}
	return t.Bid
}

// Run loops until ctx is cancelled. Consecutive bridge failures stretch the
// interval so a dead terminal is not hammered.
func (o *Orchestrator) Run(ctx context.Context) {
	logger.WithField("symbol", o.cfg.Broker.Symbol).Info("bot loop started")
	o.notifier.Sendf("Bot started on %s %s", o.cfg.Broker.Symbol, o.cfg.Broker.Timeframe)

	for {
		interval := o.cfg.Trading.PollInterval
		if err := o.Cycle(ctx, time.Now().UTC()); err != nil {
			var connErr *errs.ConnectivityError
			if errors.As(err, &connErr) {
				o.failures++
				backoff := interval * time.Duration(1<<min(o.failures, 4))
				logger.WithError(err).Warnf("bridge unreachable, backing off to %s", backoff)
				interval = backoff
			} else {
				logger.WithError(err).Error("cycle failed")
			}
			o.audit(ctx, "Cycle", err)
		} else {
			o.failures = 0
		}

		select {
		case <-ctx.Done():
			logger.Info("bot loop stopped")
			o.notifier.Send("Bot stopped")
			return
		case <-time.After(interval):
		}
	}
}

// Cycle runs one full pass. Position management always runs; new entries pass
// through every gate in order and the first closed gate wins.
func (o *Orchestrator) Cycle(ctx context.Context, now time.Time) error {
	account, err := o.broker.Account(ctx)
	if err != nil {
		o.heartbeat(now, nil, 0)
		return err
	}

	positions, err := o.broker.Positions(ctx, o.cfg.Broker.MagicNumber)
	if err != nil {
		o.heartbeat(now, account, 0)
		return err
	}

	o.riskMgr.ObserveEquity(decimal.NewFromFloat(account.Equity))
	o.detectCloses(ctx, now, positions)
	o.heartbeat(now, account, len(positions))

	bars, err := o.broker.Bars(ctx, o.cfg.Broker.Symbol, o.cfg.Broker.Timeframe, o.cfg.Trading.BarsLookback)
	if err != nil {
		return err
	}

	sig, err := o.eval.Evaluate(bars)
	if err != nil {
		logger.WithError(err).Warn("evaluation skipped")
		return nil
	}

	// Open positions are managed on every cycle, even while entries are
	// paused or blocked.
	o.managePositions(ctx, positions, o.lastPrice(sig.Snapshot.Close), sig.Snapshot.ATR)

	if blocked, note := o.entryBlocked(ctx, now); blocked {
		if note != o.pauseNote {
			logger.WithField("reason", note).Info("entries paused")
			o.pauseNote = note
		}
		return nil
	}
	o.pauseNote = ""

	if sig.Direction == strategy.DirectionFlat {
		return nil
	}

	return o.tryEnter(ctx, now, account, positions, sig)
}

// entryBlocked walks the entry gates in priority order: manual stop, news
// blackout, daily target / Friday close / pacing.
func (o *Orchestrator) entryBlocked(ctx context.Context, now time.Time) (bool, string) {
	if o.store.StopFlagSet() {
		return true, "manual stop flag set"
	}

	decision := o.filter.IsBlocked(ctx, now)
	if decision.Blocked {
		return true, decision.Reason
	}

	if reached, _ := o.profits.CheckTargetReached(ctx, now); reached {
		return true, "daily profit target reached"
	}
	if allowed, reason := o.profits.ShouldAllowTrading(ctx, now); !allowed {
		return true, reason
	}

	return false, ""
}

// tryEnter sizes and places one order for the signal direction.
func (o *Orchestrator) tryEnter(ctx context.Context, now time.Time, account *mt5.AccountInfo, positions []mt5.Position, sig strategy.Signal) error {
	entry := decimal.NewFromFloat(sig.Snapshot.Close)
	atr := decimal.NewFromFloat(sig.Snapshot.ATR)
	stopDist := atr.Mul(decimal.NewFromFloat(o.cfg.Strategy.StopATRMultiple))
	targetDist := atr.Mul(decimal.NewFromFloat(o.cfg.Strategy.TargetATRMultiple))

	var stopLoss, takeProfit decimal.Decimal
	orderType := model.OrderTypeBuy
	if sig.Direction == strategy.DirectionBuy {
		stopLoss = entry.Sub(stopDist)
		takeProfit = entry.Add(targetDist)
	} else {
		orderType = model.OrderTypeSell
		stopLoss = entry.Add(stopDist)
		takeProfit = entry.Sub(targetDist)
	}

	var volume decimal.Decimal
	for _, p := range positions {
		volume = volume.Add(decimal.NewFromFloat(p.Lots))
	}

	lots, err := o.riskMgr.Check(
		risk.AccountState{
			Equity:  decimal.NewFromFloat(account.Equity),
			Balance: decimal.NewFromFloat(account.Balance),
		},
		risk.OpenExposure{Count: len(positions), TotalVolume: volume},
		risk.Proposal{
			Symbol:     o.cfg.Broker.Symbol,
			Direction:  string(sig.Direction),
			Entry:      entry,
			StopLoss:   stopLoss,
			TakeProfit: takeProfit,
		},
		now,
	)
	if err != nil {
		logger.WithError(err).Info("trade rejected")
		return nil
	}

	lotsF, _ := lots.Float64()
	slF, _ := stopLoss.Float64()
	tpF, _ := takeProfit.Float64()

	result, err := o.broker.PlaceOrder(ctx, mt5.OrderRequest{
		Symbol:     o.cfg.Broker.Symbol,
		Type:       orderType,
		Lots:       lotsF,
		StopLoss:   slF,
		TakeProfit: tpF,
		Magic:      o.cfg.Broker.MagicNumber,
		Comment:    "c79sniper",
	})
	if err != nil {
		o.notifier.Sendf("Order FAILED: %v", err)
		return err
	}

	o.stops[result.Ticket] = stopInitial
	o.notifier.Sendf("%s %s %.2f lots @ %.5f (SL %.5f / TP %.5f)\n%s",
		sig.Direction, o.cfg.Broker.Symbol, lotsF, result.Price, slF, tpF,
		o.profits.CompactProgress(ctx, now))
	return nil
}

// detectCloses compares the live position set against the last cycle and
// records every disappeared ticket as a closed trade.
func (o *Orchestrator) detectCloses(ctx context.Context, now time.Time, current []mt5.Position) {
	live := make(map[int64]bool, len(current))
	for _, p := range current {
		live[p.Ticket] = true
	}

	for ticket, prev := range o.known {
		if live[ticket] {
			continue
		}
		o.recordClose(ctx, now, prev)
		delete(o.known, ticket)
		delete(o.stops, ticket)
	}

	for _, p := range current {
		o.known[p.Ticket] = p
	}
}

// recordClose looks the closing deal up in today's history and feeds every
// daily counter.
func (o *Orchestrator) recordClose(ctx context.Context, now time.Time, pos mt5.Position) {
	profitAmt := pos.Profit
	lots := pos.Lots
	closedAt := now

	deals, err := o.broker.Deals(ctx, now.Add(-24*time.Hour), now.Add(time.Minute))
	if err != nil {
		logger.WithError(err).Warn("deal history unavailable, using last seen floating profit")
	} else {
		for _, d := range deals {
			if d.Ticket == pos.Ticket {
				profitAmt = d.Profit
				lots = d.Lots
				closedAt = time.Unix(d.CloseTime, 0).UTC()
				break
			}
		}
	}

	reason := o.exitReason(pos.Ticket, profitAmt)

	o.riskMgr.RecordClose(decimal.NewFromFloat(profitAmt), closedAt)
	o.profits.RecordTrade(lots, profitAmt, closedAt)

	trade := &model.TradeRecord{
		Ticket:     pos.Ticket,
		Magic:      pos.Magic,
		Symbol:     pos.Symbol,
		OrderType:  pos.Type,
		Lots:       lots,
		Profit:     profitAmt,
		ExitReason: reason,
		OpenedAt:   time.Unix(pos.OpenTime, 0).UTC(),
		ClosedAt:   closedAt,
	}
	if err := o.tracker.Record(ctx, trade); err != nil {
		logger.WithError(err).Error("trade record failed")
	}

	o.notifier.Sendf("Closed #%d %s %.2f lots: %+.2f (%s)\n%s",
		pos.Ticket, pos.Symbol, lots, profitAmt, reason,
		o.profits.CompactProgress(ctx, closedAt))
}

// exitReason classifies a close from the stop progression and the sign of the
// result. Closes commanded by the daily limit or operator are tagged at the
// call site before the ticket disappears.
func (o *Orchestrator) exitReason(ticket int64, profitAmt float64) string {
	switch o.stops[ticket] {
	case stopTrailing:
		return model.ExitReasonTrailing
	case stopBreakeven:
		if profitAmt >= 0 {
			return model.ExitReasonBreakeven
		}
		return model.ExitReasonStopLoss
	default:
		if profitAmt >= 0 {
			return model.ExitReasonTakeProfit
		}
		return model.ExitReasonStopLoss
	}
}

// audit persists a trading-path error for later review. Best effort.
func (o *Orchestrator) audit(ctx context.Context, method string, err error) {
	if o.excRepo == nil {
		return
	}
	exc := &model.Exception{
		Process: "bot",
		Module:  "orchestrator",
		Method:  method,
		Message: err.Error(),
		Level:   "error",
	}
	if createErr := o.excRepo.Create(ctx, exc); createErr != nil {
		logger.WithError(createErr).Warn("exception audit write failed")
	}
}

func (o *Orchestrator) heartbeat(now time.Time, account *mt5.AccountInfo, openCount int) {
	status := model.BotStatus{
		PID:       os.Getpid(),
		Heartbeat: now,
		Running:   true,
		Paused:    o.pauseNote != "",
		PauseNote: o.pauseNote,
		Symbol:    o.cfg.Broker.Symbol,
		OpenCount: openCount,
	}
	if account != nil {
		status.Equity = account.Equity
		status.Balance = account.Balance
	}
	if err := o.store.WriteStatus(status); err != nil {
		logger.WithError(err).Error("status write failed")
	}
}

package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"

	"c79sniper/src/model"
	"c79sniper/src/repository"
)

// Snapshot is the derived aggregate view. Read-only; computed from the
// cumulative aggregate row on demand.
type Snapshot struct {
	Total         int64
	Wins          int64
	Losses        int64
	WinRatePct    float64
	TotalProfit   float64
	BestProfit    float64
	WorstProfit   float64
	CurrentStreak int64
	ExitReasons   map[string]int64
	UpdatedAt     time.Time
}

// Tracker records closed-trade outcomes write-through and serves aggregates.
// History retention is bounded by the repository; aggregates stay cumulative.
type Tracker struct {
	repo *repository.TradeRepository
}

func NewTracker(repo *repository.TradeRepository) *Tracker {
	return &Tracker{repo: repo}
}

// Record appends one closed trade. O(1) amortized: one insert plus one
// aggregate row update.
func (t *Tracker) Record(ctx context.Context, trade *model.TradeRecord) error {
	if trade.RecordUID == "" {
		trade.RecordUID = uuid.NewString()
	}
	if trade.ClosedAt.IsZero() {
		trade.ClosedAt = time.Now().UTC()
	}

	if err := t.repo.Record(ctx, trade); err != nil {
		return fmt.Errorf("record trade: %w", err)
	}

	logger.WithFields(map[string]interface{}{
		"uid":    trade.RecordUID,
		"profit": trade.Profit,
		"reason": trade.ExitReason,
	}).Info("trade recorded")
	return nil
}

// Snapshot returns the current aggregate view without mutating state.
func (t *Tracker) Snapshot(ctx context.Context) (*Snapshot, error) {
	agg, err := t.repo.Aggregate(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aggregate: %w", err)
	}

	hist := map[string]int64{}
	if agg.ExitReasons != "" {
		if err := json.Unmarshal([]byte(agg.ExitReasons), &hist); err != nil {
			logger.WithError(err).Warn("stats: exit reason histogram unreadable")
		}
	}

	snap := &Snapshot{
		Total:         agg.Total,
		Wins:          agg.Wins,
		Losses:        agg.Losses,
		TotalProfit:   agg.TotalProfit,
		BestProfit:    agg.BestProfit,
		WorstProfit:   agg.WorstProfit,
		CurrentStreak: agg.CurrentStreak,
		ExitReasons:   hist,
		UpdatedAt:     agg.UpdatedAt,
	}
	if agg.Total > 0 {
		snap.WinRatePct = 100 * float64(agg.Wins) / float64(agg.Total)
	}
	return snap, nil
}

// Recent lists the newest retained trades for reporting.
func (t *Tracker) Recent(ctx context.Context, limit int) ([]model.TradeRecord, error) {
	return t.repo.Recent(ctx, limit)
}

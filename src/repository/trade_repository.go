package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"c79sniper/src/database"
	"c79sniper/src/model"
)

// TradeRepository handles the closed-trade log and its cumulative aggregate.
type TradeRepository struct {
	db           *gorm.DB
	historyLimit int
}

// NewTradeRepository creates a new repository instance using the main database.
func NewTradeRepository(historyLimit int) *TradeRepository {
	return &TradeRepository{
		db:           database.MainDB,
		historyLimit: historyLimit,
	}
}

// NewTradeRepositoryWithDB allows overriding the underlying *gorm.DB.
// Useful for tests or when using a specific session/transaction.
func NewTradeRepositoryWithDB(db *gorm.DB, historyLimit int) *TradeRepository {
	return &TradeRepository{db: db, historyLimit: historyLimit}
}

// Record persists a closed trade and folds it into the aggregate row in one
// transaction, then prunes history beyond the configured limit. The aggregate
// is cumulative: pruning never changes it.
func (r *TradeRepository) Record(ctx context.Context, trade *model.TradeRecord) error {
	logger.WithFields(map[string]interface{}{
		"repo":   "TradeRepository",
		"op":     "Record",
		"symbol": trade.Symbol,
		"profit": trade.Profit,
		"reason": trade.ExitReason,
	}).Debug("Recording closed trade")

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(trade).Error; err != nil {
			return err
		}

		agg, err := loadOrInitAggregate(tx)
		if err != nil {
			return err
		}
		foldTrade(agg, trade)
		if err := tx.Save(agg).Error; err != nil {
			return err
		}

		return r.prune(tx)
	})
}

// Aggregate returns the cumulative statistics row without mutating anything.
func (r *TradeRepository) Aggregate(ctx context.Context) (*model.Aggregate, error) {
	agg, err := loadOrInitAggregate(r.db.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return agg, nil
}

// Recent returns the newest retained trades, newest first, capped at limit.
func (r *TradeRepository) Recent(ctx context.Context, limit int) ([]model.TradeRecord, error) {
	var rows []model.TradeRecord
	err := r.db.WithContext(ctx).
		Order("closed_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ClosedBetween returns retained trades closed inside [from, to), oldest first.
// Used by the daily profit manager for same-day totals.
func (r *TradeRepository) ClosedBetween(ctx context.Context, from, to time.Time) ([]model.TradeRecord, error) {
	var rows []model.TradeRecord
	err := r.db.WithContext(ctx).
		Where("closed_at >= ? AND closed_at < ?", from, to).
		Order("closed_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *TradeRepository) prune(tx *gorm.DB) error {
	if r.historyLimit <= 0 {
		return nil
	}

	var count int64
	if err := tx.Model(&model.TradeRecord{}).Count(&count).Error; err != nil {
		return err
	}
	if count <= int64(r.historyLimit) {
		return nil
	}

	// Delete the oldest rows beyond the retention limit.
	var cutoff model.TradeRecord
	err := tx.Order("closed_at DESC, id DESC").
		Offset(r.historyLimit - 1).
		First(&cutoff).Error
	if err != nil {
		return err
	}
	return tx.Where("closed_at < ? OR (closed_at = ? AND id < ?)", cutoff.ClosedAt, cutoff.ClosedAt, cutoff.ID).
		Delete(&model.TradeRecord{}).Error
}

func loadOrInitAggregate(tx *gorm.DB) (*model.Aggregate, error) {
	var agg model.Aggregate
	err := tx.First(&agg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &model.Aggregate{ExitReasons: "{}"}, nil
	}
	if err != nil {
		return nil, err
	}
	return &agg, nil
}

func foldTrade(agg *model.Aggregate, trade *model.TradeRecord) {
	agg.Total++
	agg.TotalProfit += trade.Profit

	if trade.Profit >= 0 {
		agg.Wins++
		if agg.CurrentStreak >= 0 {
			agg.CurrentStreak++
		} else {
			agg.CurrentStreak = 1
		}
	} else {
		agg.Losses++
		if agg.CurrentStreak <= 0 {
			agg.CurrentStreak--
		} else {
			agg.CurrentStreak = -1
		}
	}

	if agg.Total == 1 || trade.Profit > agg.BestProfit {
		agg.BestProfit = trade.Profit
	}
	if agg.Total == 1 || trade.Profit < agg.WorstProfit {
		agg.WorstProfit = trade.Profit
	}

	hist := map[string]int64{}
	if agg.ExitReasons != "" {
		_ = json.Unmarshal([]byte(agg.ExitReasons), &hist)
	}
	hist[trade.ExitReason]++
	raw, err := json.Marshal(hist)
	if err == nil {
		agg.ExitReasons = string(raw)
	}
}

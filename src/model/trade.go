package model

import "time"

const (
	OrderTypeBuy  = "buy"
	OrderTypeSell = "sell"
)

// Exit reasons recorded on close. Used for the statistics histogram.
const (
	ExitReasonStopLoss   = "stop_loss"
	ExitReasonTakeProfit = "take_profit"
	ExitReasonTrailing   = "trailing_stop"
	ExitReasonBreakeven  = "breakeven"
	ExitReasonManual     = "manual"
	ExitReasonDailyLimit = "daily_limit"
)

// TradeRecord is one closed trade. Append-only; rows beyond the configured
// history limit are pruned while the Aggregate row stays cumulative.
type TradeRecord struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	RecordUID  string    `gorm:"size:36;uniqueIndex" json:"record_uid"`
	Ticket     int64     `gorm:"index" json:"ticket"`
	Magic      int64     `gorm:"index" json:"magic"`
	Symbol     string    `gorm:"size:20;index" json:"symbol"`
	OrderType  string    `gorm:"size:10" json:"order_type"`
	Lots       float64   `json:"lots"`
	Profit     float64   `json:"profit"`
	ExitReason string    `gorm:"size:30;index" json:"exit_reason"`
	OpenedAt   time.Time `json:"opened_at"`
	ClosedAt   time.Time `gorm:"index" json:"closed_at"`
	CreatedAt  time.Time `json:"created_at"`
}

func (TradeRecord) TableName() string {
	return "trade_records"
}

// Aggregate is the single cumulative statistics row. Updated in the same
// transaction as each TradeRecord insert, so pruning history never changes it.
type Aggregate struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Total         int64     `json:"total"`
	Wins          int64     `json:"wins"`
	Losses        int64     `json:"losses"`
	TotalProfit   float64   `json:"total_profit"`
	BestProfit    float64   `json:"best_profit"`
	WorstProfit   float64   `json:"worst_profit"`
	CurrentStreak int64     `json:"current_streak"` // positive = winning streak, negative = losing
	ExitReasons   string    `gorm:"type:text" json:"exit_reasons"` // JSON histogram
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Aggregate) TableName() string {
	return "trade_aggregate"
}

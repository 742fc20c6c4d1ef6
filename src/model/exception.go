package model

import "time"

// Exception is a persisted error that affected (or could have affected) a
// trading decision. Written alongside the log line and the Telegram alert so
// degraded cycles can be audited after the fact.
type Exception struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// Where the error happened
	Process string `gorm:"size:50;index" json:"process"` // bot | telegram | watchdog
	Module  string `gorm:"size:100;index" json:"module"` // e.g. "mt5_client"
	Method  string `gorm:"size:100" json:"method"`       // e.g. "PlaceOrder"

	Message string `gorm:"type:text" json:"message"`
	Level   string `gorm:"size:20;index" json:"level"` // warn | error | fatal

	// Extra context stored as JSON (optional)
	Context string `gorm:"type:text" json:"context,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

package model

import "time"

// BotStatus is the small shared record the orchestrator writes every cycle and
// the watchdog and command handler read. It is the only inter-process
// coordination artifact besides the cache files.
type BotStatus struct {
	PID       int       `json:"pid"`
	Heartbeat time.Time `json:"heartbeat"`
	Running   bool      `json:"running"`
	Paused    bool      `json:"paused"`
	PauseNote string    `json:"pause_note,omitempty"`
	Symbol    string    `json:"symbol"`
	Equity    float64   `json:"equity"`
	Balance   float64   `json:"balance"`
	OpenCount int       `json:"open_count"`
}

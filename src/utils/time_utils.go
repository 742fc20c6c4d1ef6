package utils

import (
	"time"

	"c79sniper/src/config"
)

// DayStart returns midnight of t's calendar day in loc.
func DayStart(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// DayKey renders the calendar day of t in loc as YYYY-MM-DD. Used as the
// rollover identity for daily counters.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	return DayKey(a, loc) == DayKey(b, loc)
}

// WithinTradingHours evaluates the weekday schedule at t. An empty schedule
// means always-on. StartHour is inclusive, EndHour exclusive; an EndHour of
// zero means end of day.
func WithinTradingHours(hours []config.TradingHours, t time.Time, loc *time.Location) bool {
	if len(hours) == 0 {
		return true
	}

	local := t.In(loc)
	for _, h := range hours {
		if h.Weekday != local.Weekday() {
			continue
		}
		end := h.EndHour
		if end == 0 {
			end = 24
		}
		if local.Hour() >= h.StartHour && local.Hour() < end {
			return true
		}
	}
	return false
}

// ResetTime resets the time component based on the granularity specified.
// Pass "minute" to reset seconds to zero.
// Pass "hour" to reset minutes and seconds to zero.
func ResetTime(t time.Time, granularity string) time.Time {
	switch granularity {
	case "minute":
		return t.Truncate(time.Minute)
	case "hour":
		return t.Truncate(time.Hour)
	default:
		return t
	}
}

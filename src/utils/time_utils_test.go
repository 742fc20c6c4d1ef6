package utils

import (
	"testing"
	"time"

	"c79sniper/src/config"
)

func TestDayKeyAndSameDay(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	// 02:00 UTC on Mar 3 is still Mar 2 in New York.
	ts := time.Date(2026, 3, 3, 2, 0, 0, 0, time.UTC)

	if got := DayKey(ts, time.UTC); got != "2026-03-03" {
		t.Fatalf("expected 2026-03-03 in UTC, got %s", got)
	}
	if got := DayKey(ts, ny); got != "2026-03-02" {
		t.Fatalf("expected 2026-03-02 in New York, got %s", got)
	}

	earlier := time.Date(2026, 3, 2, 23, 0, 0, 0, time.UTC)
	if SameDay(ts, earlier, time.UTC) {
		t.Fatal("different UTC days must not match")
	}
	if !SameDay(ts, earlier, ny) {
		t.Fatal("same New York day must match")
	}
}

func TestDayStart(t *testing.T) {
	ts := time.Date(2026, 3, 2, 17, 45, 12, 0, time.UTC)
	want := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	if got := DayStart(ts, time.UTC); !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestWithinTradingHours(t *testing.T) {
	hours := []config.TradingHours{
		{Weekday: time.Monday, StartHour: 8, EndHour: 17},
		{Weekday: time.Friday, StartHour: 8, EndHour: 0}, // until end of day
	}

	tests := []struct {
		name string
		ts   time.Time
		want bool
	}{
		{"monday inside", time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC), true},
		{"monday start inclusive", time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC), true},
		{"monday end exclusive", time.Date(2026, 3, 2, 17, 0, 0, 0, time.UTC), false},
		{"tuesday not listed", time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC), false},
		{"friday late evening", time.Date(2026, 3, 6, 23, 0, 0, 0, time.UTC), true},
		{"friday before start", time.Date(2026, 3, 6, 7, 0, 0, 0, time.UTC), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WithinTradingHours(hours, tt.ts, time.UTC); got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestWithinTradingHoursEmptyScheduleAlwaysOn(t *testing.T) {
	if !WithinTradingHours(nil, time.Now(), time.UTC) {
		t.Fatal("empty schedule must mean always-on")
	}
}

func TestResetTime(t *testing.T) {
	ts := time.Date(2026, 3, 2, 17, 45, 12, 0, time.UTC)

	if got := ResetTime(ts, "minute"); got.Second() != 0 || got.Minute() != 45 {
		t.Fatalf("unexpected minute reset: %s", got)
	}
	if got := ResetTime(ts, "hour"); got.Minute() != 0 || got.Hour() != 17 {
		t.Fatalf("unexpected hour reset: %s", got)
	}
	if got := ResetTime(ts, "bogus"); !got.Equal(ts) {
		t.Fatalf("unknown granularity must return input, got %s", got)
	}
}

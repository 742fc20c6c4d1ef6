package model

import (
	"testing"
	"time"
)

const sampleCalendar = `<?xml version="1.0" encoding="UTF-8"?>
<weeklyevents>
  <event>
    <title>Non-Farm Employment Change</title>
    <country>USD</country>
    <date>03-06-2026</date>
    <time>1:30pm</time>
    <impact>High</impact>
  </event>
  <event>
    <title>Bank Holiday</title>
    <country>EUR</country>
    <date>03-02-2026</date>
    <time>All Day</time>
    <impact>Holiday</impact>
  </event>
  <event>
    <title>Broken Entry</title>
    <country>GBP</country>
    <date>not-a-date</date>
    <time>9:00am</time>
    <impact>Medium</impact>
  </event>
  <event>
    <title>Rate Statement</title>
    <country>gbp</country>
    <date>03-04-2026</date>
    <time>Tentative</time>
    <impact>Medium</impact>
  </event>
</weeklyevents>`

func TestParseCalendarXML(t *testing.T) {
	events, err := ParseCalendarXML([]byte(sampleCalendar))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The broken entry is skipped, not fatal.
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}

	nfp := events[0]
	if nfp.Currency != "USD" || nfp.Impact != ImpactHigh || nfp.AllDay {
		t.Fatalf("unexpected first event: %+v", nfp)
	}
	want := time.Date(2026, 3, 6, 13, 30, 0, 0, time.UTC)
	if !nfp.Time.Equal(want) {
		t.Fatalf("expected %s, got %s", want, nfp.Time)
	}

	holiday := events[1]
	if !holiday.IsHoliday() || !holiday.AllDay {
		t.Fatalf("expected all-day holiday, got %+v", holiday)
	}

	tentative := events[2]
	if !tentative.AllDay {
		t.Fatal("tentative events must be treated as all-day")
	}
	if tentative.Currency != "GBP" {
		t.Fatalf("currency must be upper-cased, got %q", tentative.Currency)
	}
}

func TestParseCalendarXMLInvalidDocument(t *testing.T) {
	if _, err := ParseCalendarXML([]byte("not xml at all <")); err == nil {
		t.Fatal("expected error for malformed document")
	}
}

func TestImpactRank(t *testing.T) {
	tests := []struct {
		impact string
		want   int
	}{
		{ImpactHoliday, 4},
		{ImpactHigh, 3},
		{ImpactMedium, 2},
		{ImpactLow, 1},
		{"Unknown", 0},
	}
	for _, tt := range tests {
		if got := ImpactRank(tt.impact); got != tt.want {
			t.Fatalf("ImpactRank(%q) = %d, want %d", tt.impact, got, tt.want)
		}
	}
}

package model

import (
	"encoding/xml"
	"strings"
	"time"
)

// Impact classes as published by the calendar feed. Holiday is special: it
// blocks the whole calendar day regardless of the blackout window.
const (
	ImpactHoliday = "Holiday"
	ImpactHigh    = "High"
	ImpactMedium  = "Medium"
	ImpactLow     = "Low"
)

// ImpactRank orders impact classes for the >= min_impact filter. Holiday ranks
// above High because it always gates.
func ImpactRank(impact string) int {
	switch impact {
	case ImpactHoliday:
		return 4
	case ImpactHigh:
		return 3
	case ImpactMedium:
		return 2
	case ImpactLow:
		return 1
	default:
		return 0
	}
}

// NewsEvent is one scheduled calendar entry, normalized to UTC.
type NewsEvent struct {
	Title    string    `json:"title"`
	Currency string    `json:"currency"`
	Impact   string    `json:"impact"`
	Time     time.Time `json:"time"`
	AllDay   bool      `json:"all_day"`
}

func (e NewsEvent) IsHoliday() bool { return e.Impact == ImpactHoliday }

// ----- weekly XML feed wire format -----

type calendarXML struct {
	XMLName xml.Name   `xml:"weeklyevents"`
	Events  []eventXML `xml:"event"`
}

type eventXML struct {
	Title   string `xml:"title"`
	Country string `xml:"country"`
	Date    string `xml:"date"` // MM-DD-YYYY
	Time    string `xml:"time"` // "2:30pm", "All Day", "Tentative"
	Impact  string `xml:"impact"`
}

// ParseCalendarXML decodes the weekly feed document. Feed times are GMT.
// Entries whose timestamp cannot be parsed and that are not all-day markers
// are skipped rather than failing the whole document.
func ParseCalendarXML(data []byte) ([]NewsEvent, error) {
	var doc calendarXML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	out := make([]NewsEvent, 0, len(doc.Events))
	for _, ev := range doc.Events {
		ne, ok := ev.toNewsEvent()
		if !ok {
			continue
		}
		out = append(out, ne)
	}
	return out, nil
}

func (e eventXML) toNewsEvent() (NewsEvent, bool) {
	raw := strings.TrimSpace(e.Time)
	allDay := strings.EqualFold(raw, "All Day") || strings.EqualFold(raw, "Tentative") || raw == ""

	var ts time.Time
	var err error
	if allDay {
		ts, err = time.ParseInLocation("01-02-2006", strings.TrimSpace(e.Date), time.UTC)
	} else {
		ts, err = time.ParseInLocation("01-02-2006 3:04pm", strings.TrimSpace(e.Date)+" "+raw, time.UTC)
	}
	if err != nil {
		return NewsEvent{}, false
	}

	return NewsEvent{
		Title:    strings.TrimSpace(e.Title),
		Currency: strings.ToUpper(strings.TrimSpace(e.Country)),
		Impact:   strings.TrimSpace(e.Impact),
		Time:     ts,
		AllDay:   allDay,
	}, true
}

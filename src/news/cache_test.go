package news

import (
	"path/filepath"
	"testing"
	"time"

	"c79sniper/src/model"
)

func TestCacheRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "calendar.json")
	cache := NewCache(path, time.Hour)

	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	events := []model.NewsEvent{
		{Title: "NFP", Currency: "USD", Impact: model.ImpactHigh, Time: now.Add(time.Hour)},
		{Title: "Holiday", Currency: "EUR", Impact: model.ImpactHoliday, Time: now, AllDay: true},
	}

	if err := cache.Write(events, now); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	doc, fresh, err := cache.Read(now.Add(30 * time.Minute))
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !fresh {
		t.Fatal("expected fresh inside TTL")
	}
	if len(doc.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(doc.Events))
	}
	if doc.Events[0].Title != "NFP" || !doc.Events[1].AllDay {
		t.Fatalf("round trip lost data: %+v", doc.Events)
	}
}

func TestCacheExpiry(t *testing.T) {
	cache := NewCache(filepath.Join(t.TempDir(), "calendar.json"), time.Hour)
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

	if err := cache.Write(nil, now); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if _, fresh, _ := cache.Read(now.Add(2 * time.Hour)); fresh {
		t.Fatal("expected expired beyond TTL")
	}
}

func TestCacheMissing(t *testing.T) {
	cache := NewCache(filepath.Join(t.TempDir(), "missing.json"), time.Hour)

	if _, _, err := cache.Read(time.Now()); err == nil {
		t.Fatal("expected error for missing cache file")
	}
	if age := cache.Age(time.Now()); age >= 0 {
		t.Fatalf("expected negative age for missing cache, got %s", age)
	}
}

func TestCacheOverwriteReplacesWholeDocument(t *testing.T) {
	cache := NewCache(filepath.Join(t.TempDir(), "calendar.json"), time.Hour)
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

	first := []model.NewsEvent{{Title: "A", Currency: "USD", Impact: model.ImpactHigh, Time: now}}
	second := []model.NewsEvent{{Title: "B", Currency: "EUR", Impact: model.ImpactLow, Time: now}}

	if err := cache.Write(first, now); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := cache.Write(second, now.Add(time.Minute)); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}

	doc, _, err := cache.Read(now.Add(time.Minute))
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(doc.Events) != 1 || doc.Events[0].Title != "B" {
		t.Fatalf("expected replaced document, got %+v", doc.Events)
	}
}

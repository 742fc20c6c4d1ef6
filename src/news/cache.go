package news

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"c79sniper/src/model"
)

// CachedCalendar is the on-disk cache document: fetch timestamp plus the
// event list, replaced as a whole on every refresh.
type CachedCalendar struct {
	FetchedAt time.Time         `json:"fetched_at"`
	Events    []model.NewsEvent `json:"events"`
}

// Cache persists the calendar with a freshness window. Writes go to a temp
// file first and are renamed into place so concurrent readers never observe a
// partial document.
type Cache struct {
	path string
	ttl  time.Duration
}

func NewCache(path string, ttl time.Duration) *Cache {
	return &Cache{path: path, ttl: ttl}
}

// Write replaces the cache document.
func (c *Cache) Write(events []model.NewsEvent, fetchedAt time.Time) error {
	doc := CachedCalendar{FetchedAt: fetchedAt.UTC(), Events: events}

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal calendar cache: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write calendar cache: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("replace calendar cache: %w", err)
	}
	return nil
}

// Read loads the cache document. fresh reports whether it is inside the TTL.
func (c *Cache) Read(now time.Time) (doc *CachedCalendar, fresh bool, err error) {
	raw, err := os.ReadFile(c.path)
	if err != nil {
		return nil, false, err
	}

	var parsed CachedCalendar
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, false, fmt.Errorf("decode calendar cache: %w", err)
	}

	fresh = now.Sub(parsed.FetchedAt) <= c.ttl
	return &parsed, fresh, nil
}

// Age returns how old the cached document is, or a negative duration when the
// cache does not exist.
func (c *Cache) Age(now time.Time) time.Duration {
	doc, _, err := c.Read(now)
	if err != nil {
		return -1
	}
	return now.Sub(doc.FetchedAt)
}

package news

import (
	"context"
	"sort"
	"time"

	logger "github.com/sirupsen/logrus"

	"c79sniper/src/config"
	"c79sniper/src/errs"
	"c79sniper/src/model"
)

// Fetcher is what the filter needs from the feed client. Narrow interface so
// tests can fake the remote side.
type Fetcher interface {
	FetchWeek(ctx context.Context) ([]model.NewsEvent, error)
}

// GateDecision explains one IsBlocked answer.
type GateDecision struct {
	Blocked       bool
	Reason        string
	BlockingEvent *model.NewsEvent
	BlockedUntil  time.Time
	Stale         bool
}

// Filter answers "is trading currently blocked" and "what is upcoming" from
// the cached calendar, refreshing it when the freshness window lapses.
//
// Refresh policy: serve the cache inside the TTL; refetch and overwrite on
// expiry; on fetch failure serve the stale copy with Stale=true. Gating is the
// exception: it fails closed once the copy is older than the staleness
// threshold.
type Filter struct {
	cfg     config.NewsConfig
	client  Fetcher
	cache   *Cache
	matched map[string]bool // currency relevance set
}

func NewFilter(cfg config.NewsConfig, client Fetcher) *Filter {
	matched := make(map[string]bool, len(cfg.Currencies))
	for _, c := range cfg.Currencies {
		matched[c] = true
	}

	return &Filter{
		cfg:     cfg,
		client:  client,
		cache:   NewCache(cfg.CacheFile, cfg.CacheTTL),
		matched: matched,
	}
}

// Refresh forces a fetch and cache overwrite regardless of TTL.
func (f *Filter) Refresh(ctx context.Context, now time.Time) error {
	events, err := f.client.FetchWeek(ctx)
	if err != nil {
		return err
	}
	return f.cache.Write(events, now)
}

// events loads the calendar through the cache, refetching on expiry.
func (f *Filter) events(ctx context.Context, now time.Time) ([]model.NewsEvent, bool, error) {
	doc, fresh, err := f.cache.Read(now)
	if err == nil && fresh {
		return doc.Events, false, nil
	}

	fetched, fetchErr := f.client.FetchWeek(ctx)
	if fetchErr == nil {
		if werr := f.cache.Write(fetched, now); werr != nil {
			logger.WithError(werr).Warn("news: cache write failed, serving fetched events")
		}
		return fetched, false, nil
	}

	if doc != nil {
		age := now.Sub(doc.FetchedAt)
		logger.WithError(fetchErr).Warnf("news: feed unreachable, serving stale cache (%.0fm old)", age.Minutes())
		return doc.Events, true, nil
	}

	return nil, false, fetchErr
}

// IsBlocked reports whether any relevant event gates trading at now. Fails
// closed: when no usable calendar exists, or the only copy is older than the
// staleness threshold, entry is blocked.
func (f *Filter) IsBlocked(ctx context.Context, now time.Time) GateDecision {
	events, stale, err := f.events(ctx, now)
	if err != nil {
		return GateDecision{Blocked: true, Reason: "calendar unavailable: " + err.Error()}
	}

	if stale {
		age := f.cache.Age(now)
		if age > f.cfg.StaleThreshold {
			return GateDecision{
				Blocked: true,
				Stale:   true,
				Reason:  errs.NewStaleDataError("news_cache", age.Seconds()).Error(),
			}
		}
	}

	var blocking *model.NewsEvent
	var until time.Time

	for i := range events {
		ev := events[i]
		if !f.relevant(ev) {
			continue
		}

		if ev.IsHoliday() {
			// Holiday blocks its whole calendar day regardless of window.
			dayStart := time.Date(ev.Time.Year(), ev.Time.Month(), ev.Time.Day(), 0, 0, 0, 0, time.UTC)
			dayEnd := dayStart.Add(24 * time.Hour)
			if !now.Before(dayStart) && now.Before(dayEnd) {
				if blocking == nil || dayEnd.After(until) {
					blocking = &events[i]
					until = dayEnd
				}
			}
			continue
		}

		start := ev.Time.Add(-f.cfg.BlockBefore)
		end := ev.Time.Add(f.cfg.BlockAfter)
		if !now.Before(start) && !now.After(end) {
			// Overlapping windows: wait until the latest end.
			if blocking == nil || end.After(until) {
				blocking = &events[i]
				until = end
			}
		}
	}

	if blocking == nil {
		return GateDecision{Blocked: false, Reason: "clear", Stale: stale}
	}

	return GateDecision{
		Blocked:       true,
		Reason:        "blackout for " + blocking.Currency + " " + blocking.Title,
		BlockingEvent: blocking,
		BlockedUntil:  until,
		Stale:         stale,
	}
}

// Upcoming returns relevant events inside [now, now+horizon), ascending by
// time, truncated to the configured display maximum.
func (f *Filter) Upcoming(ctx context.Context, now time.Time, horizon time.Duration) ([]model.NewsEvent, error) {
	events, _, err := f.events(ctx, now)
	if err != nil {
		return nil, err
	}

	limit := now.Add(horizon)
	out := make([]model.NewsEvent, 0, f.cfg.DisplayMax)
	for _, ev := range events {
		if !f.relevant(ev) {
			continue
		}
		if ev.Time.Before(now) || !ev.Time.Before(limit) {
			continue
		}
		out = append(out, ev)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })

	if f.cfg.DisplayMax > 0 && len(out) > f.cfg.DisplayMax {
		out = out[:f.cfg.DisplayMax]
	}
	return out, nil
}

// relevant applies the currency and impact filters. Holidays always pass the
// impact filter.
func (f *Filter) relevant(ev model.NewsEvent) bool {
	if len(f.matched) > 0 && !f.matched[ev.Currency] {
		return false
	}
	if ev.IsHoliday() {
		return true
	}
	return model.ImpactRank(ev.Impact) >= model.ImpactRank(f.cfg.MinImpact)
}

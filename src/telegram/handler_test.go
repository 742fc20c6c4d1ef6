package telegram

import (
	"context"
	"strings"
	"testing"
	"time"

	"c79sniper/src/config"
	"c79sniper/src/model"
	"c79sniper/src/state"
)

func newTestHandler(t *testing.T) (*Handler, *state.Store) {
	t.Helper()

	cfg := &config.Config{
		Broker:   config.BrokerConfig{Symbol: "XAUUSD", MagicNumber: 79001},
		Telegram: config.TelegramConfig{ChatID: 99},
		Watchdog: config.WatchdogConfig{StaleStatusAfter: 3 * time.Minute},
	}
	store := state.NewStore(t.TempDir(), "bot_status.json", "manual_stop.flag")

	return NewHandler(cfg, nil, store, nil, nil, nil, nil), store
}

func TestDispatchStartStop(t *testing.T) {
	h, store := newTestHandler(t)
	ctx := context.Background()

	reply := h.dispatch(ctx, "stop")
	if !strings.Contains(reply, "Stop flag set") {
		t.Fatalf("unexpected reply: %s", reply)
	}
	if !store.StopFlagSet() {
		t.Fatal("expected stop flag on disk")
	}

	reply = h.dispatch(ctx, "start")
	if !strings.Contains(reply, "cleared") {
		t.Fatalf("unexpected reply: %s", reply)
	}
	if store.StopFlagSet() {
		t.Fatal("expected stop flag removed")
	}
}

func TestDispatchUnknownAndHelp(t *testing.T) {
	h, _ := newTestHandler(t)
	ctx := context.Background()

	if reply := h.dispatch(ctx, "frobnicate"); !strings.Contains(reply, "Unknown command") {
		t.Fatalf("unexpected reply: %s", reply)
	}
	if reply := h.dispatch(ctx, "help"); !strings.Contains(reply, "/status") {
		t.Fatalf("help must list commands: %s", reply)
	}
}

func TestStatusTextFromStore(t *testing.T) {
	h, store := newTestHandler(t)
	now := time.Now().UTC()

	err := store.WriteStatus(model.BotStatus{
		PID:       1234,
		Heartbeat: now.Add(-30 * time.Second),
		Running:   true,
		Symbol:    "XAUUSD",
		Equity:    10250.5,
		OpenCount: 1,
	})
	if err != nil {
		t.Fatalf("write status: %v", err)
	}

	text := h.statusText(now)
	for _, want := range []string{"XAUUSD", "PID: 1234", "Open positions: 1"} {
		if !strings.Contains(text, want) {
			t.Fatalf("status text missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "stale") {
		t.Fatalf("fresh heartbeat must not warn:\n%s", text)
	}
}

func TestStatusTextStaleWarning(t *testing.T) {
	h, store := newTestHandler(t)
	now := time.Now().UTC()

	err := store.WriteStatus(model.BotStatus{PID: 1234, Heartbeat: now.Add(-time.Hour)})
	if err != nil {
		t.Fatalf("write status: %v", err)
	}

	if text := h.statusText(now); !strings.Contains(text, "stale") {
		t.Fatalf("expected staleness warning:\n%s", text)
	}
}

func TestStatusTextNoFile(t *testing.T) {
	h, _ := newTestHandler(t)

	if text := h.statusText(time.Now().UTC()); !strings.Contains(text, "No status file") {
		t.Fatalf("unexpected reply: %s", text)
	}
}

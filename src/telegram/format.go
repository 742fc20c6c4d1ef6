package telegram

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

func (h *Handler) statusText(now time.Time) string {
	status, stale, err := h.store.ReadStatus(now, h.cfg.Watchdog.StaleStatusAfter)
	if err != nil {
		return "No status file yet. The bot may not have started."
	}

	var b strings.Builder
	b.WriteString("Bot status\n")
	fmt.Fprintf(&b, "Symbol: %s\n", status.Symbol)
	fmt.Fprintf(&b, "PID: %d\n", status.PID)
	fmt.Fprintf(&b, "Heartbeat: %s ago\n", now.Sub(status.Heartbeat).Round(time.Second))
	fmt.Fprintf(&b, "Equity: %.2f / Balance: %.2f\n", status.Equity, status.Balance)
	fmt.Fprintf(&b, "Open positions: %d\n", status.OpenCount)

	if status.Paused {
		fmt.Fprintf(&b, "Paused: %s\n", status.PauseNote)
	}
	if h.store.StopFlagSet() {
		b.WriteString("Manual stop flag: SET\n")
	}
	if stale {
		b.WriteString("WARNING: heartbeat is stale, loop may be down\n")
	}
	return b.String()
}

func (h *Handler) positionsText(ctx context.Context) string {
	positions, err := h.broker.Positions(ctx, h.cfg.Broker.MagicNumber)
	if err != nil {
		return fmt.Sprintf("Bridge unreachable: %v", err)
	}
	if len(positions) == 0 {
		return "No open positions."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Open positions (%d)\n", len(positions))
	for _, p := range positions {
		fmt.Fprintf(&b, "#%d %s %s %.2f lots @ %.5f SL %.5f TP %.5f P/L %+.2f\n",
			p.Ticket, p.Type, p.Symbol, p.Lots, p.OpenPrice, p.StopLoss, p.TakeProfit, p.Profit)
	}
	return b.String()
}

func (h *Handler) newsText(ctx context.Context, now time.Time) string {
	var b strings.Builder

	decision := h.filter.IsBlocked(ctx, now)
	if decision.Blocked {
		fmt.Fprintf(&b, "Trading BLOCKED: %s\n", decision.Reason)
		if !decision.BlockedUntil.IsZero() {
			fmt.Fprintf(&b, "Until: %s\n", decision.BlockedUntil.Format("Mon 15:04 MST"))
		}
	} else {
		b.WriteString("News gate: clear\n")
	}

	upcoming, err := h.filter.Upcoming(ctx, now, 48*time.Hour)
	if err != nil {
		fmt.Fprintf(&b, "Calendar unavailable: %v\n", err)
		return b.String()
	}
	if len(upcoming) == 0 {
		b.WriteString("No relevant events in the next 48h.")
		return b.String()
	}

	b.WriteString("Upcoming events:\n")
	for _, ev := range upcoming {
		when := ev.Time.Format("Mon 15:04")
		if ev.AllDay {
			when = ev.Time.Format("Mon") + " all day"
		}
		fmt.Fprintf(&b, "%s [%s/%s] %s\n", when, ev.Currency, ev.Impact, ev.Title)
	}
	return b.String()
}

func (h *Handler) statsText(ctx context.Context) string {
	snap, err := h.tracker.Snapshot(ctx)
	if err != nil {
		return fmt.Sprintf("Statistics unavailable: %v", err)
	}
	if snap.Total == 0 {
		return "No closed trades recorded yet."
	}

	var b strings.Builder
	b.WriteString("Trade statistics\n")
	fmt.Fprintf(&b, "Total: %d (W %d / L %d, %.1f%%)\n", snap.Total, snap.Wins, snap.Losses, snap.WinRatePct)
	fmt.Fprintf(&b, "Total P/L: %+.2f\n", snap.TotalProfit)
	fmt.Fprintf(&b, "Best: %+.2f / Worst: %+.2f\n", snap.BestProfit, snap.WorstProfit)

	streak := "wins"
	if snap.CurrentStreak < 0 {
		streak = "losses"
	}
	fmt.Fprintf(&b, "Streak: %d %s\n", abs64(snap.CurrentStreak), streak)

	if len(snap.ExitReasons) > 0 {
		reasons := make([]string, 0, len(snap.ExitReasons))
		for r := range snap.ExitReasons {
			reasons = append(reasons, r)
		}
		sort.Strings(reasons)
		b.WriteString("Exits:")
		for _, r := range reasons {
			fmt.Fprintf(&b, " %s=%d", r, snap.ExitReasons[r])
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (h *Handler) healthText(now time.Time) string {
	var b strings.Builder
	b.WriteString("Host health\n")

	if pcts, err := cpu.Percent(0, false); err == nil && len(pcts) > 0 {
		fmt.Fprintf(&b, "CPU: %.1f%%\n", pcts[0])
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		fmt.Fprintf(&b, "Memory: %.1f%% of %.1f GB\n", vm.UsedPercent, float64(vm.Total)/1e9)
	}

	status, _, err := h.store.ReadStatus(now, h.cfg.Watchdog.StaleStatusAfter)
	if err != nil {
		b.WriteString("Bot process: no status file\n")
		return b.String()
	}

	alive, _ := process.PidExists(int32(status.PID))
	if alive {
		fmt.Fprintf(&b, "Bot process %d: running\n", status.PID)
	} else {
		fmt.Fprintf(&b, "Bot process %d: NOT running\n", status.PID)
	}
	return b.String()
}

func abs64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

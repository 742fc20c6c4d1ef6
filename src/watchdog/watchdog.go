package watchdog

import (
	"context"
	"os/exec"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v3/process"
	logger "github.com/sirupsen/logrus"

	"c79sniper/src/config"
	"c79sniper/src/notify"
	"c79sniper/src/state"
	"c79sniper/src/utils"
)

// Check is the evidence one poll gathered about the bot process.
type Check struct {
	ProcessAlive   bool
	HeartbeatFresh bool
	WithinHours    bool
	StopFlagSet    bool
}

// ShouldRestart is the single restart rule: the bot is expected to run (inside
// trading hours, not manually stopped) but is not demonstrably alive. Either a
// dead process or a stale heartbeat counts as not alive.
func (c Check) ShouldRestart() bool {
	expected := c.WithinHours && !c.StopFlagSet
	alive := c.ProcessAlive && c.HeartbeatFresh
	return expected && !alive
}

// Watchdog supervises the bot process from outside: it reads the shared
// status file, verifies the PID, and restarts the bot with the configured
// command when the restart rule fires.
type Watchdog struct {
	cfg      config.WatchdogConfig
	loc      *time.Location
	store    *state.Store
	notifier *notify.Notifier

	lastRestart time.Time
}

func New(cfg config.WatchdogConfig, loc *time.Location, store *state.Store, notifier *notify.Notifier) *Watchdog {
	if loc == nil {
		loc = time.UTC
	}
	return &Watchdog{cfg: cfg, loc: loc, store: store, notifier: notifier}
}

// Run polls until ctx is cancelled.
func (w *Watchdog) Run(ctx context.Context) {
	logger.Info("watchdog started")
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("watchdog stopped")
			return
		case <-ticker.C:
			w.poll(time.Now().UTC())
		}
	}
}

func (w *Watchdog) poll(now time.Time) {
	check := w.Inspect(now)

	logger.WithFields(map[string]interface{}{
		"alive":    check.ProcessAlive,
		"fresh":    check.HeartbeatFresh,
		"in_hours": check.WithinHours,
		"stopped":  check.StopFlagSet,
	}).Debug("watchdog poll")

	if check.ShouldRestart() {
		// One restart per poll interval; give the new process a full
		// interval to write its first heartbeat.
		if now.Sub(w.lastRestart) < w.cfg.PollInterval {
			return
		}
		w.restart(now, check)
	}

	if removed, err := w.store.PruneOld(now, w.cfg.CacheRetention); err != nil {
		logger.WithError(err).Warn("state prune failed")
	} else if removed > 0 {
		logger.WithField("removed", removed).Info("old state files pruned")
	}
}

// Inspect gathers the current evidence without acting on it.
func (w *Watchdog) Inspect(now time.Time) Check {
	check := Check{
		WithinHours: utils.WithinTradingHours(w.cfg.TradingHours, now, w.loc),
		StopFlagSet: w.store.StopFlagSet(),
	}

	status, stale, err := w.store.ReadStatus(now, w.cfg.StaleStatusAfter)
	if err != nil {
		// No readable status: treat as dead.
		return check
	}

	check.HeartbeatFresh = !stale
	if status.PID > 0 {
		alive, err := process.PidExists(int32(status.PID))
		check.ProcessAlive = err == nil && alive
	}
	return check
}

func (w *Watchdog) restart(now time.Time, check Check) {
	logger.WithFields(map[string]interface{}{
		"alive": check.ProcessAlive,
		"fresh": check.HeartbeatFresh,
	}).Warn("bot not alive inside trading hours, restarting")

	// Own session: the bot must survive a watchdog shutdown or signal.
	cmd := exec.Command(w.cfg.RestartCommand[0], w.cfg.RestartCommand[1:]...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		logger.WithError(err).Error("restart command failed")
		w.notifier.Sendf("Watchdog: restart FAILED: %v", err)
		return
	}

	// Detach: the watchdog must not block on the bot process.
	go func() {
		_ = cmd.Wait()
	}()

	w.lastRestart = now
	w.notifier.Sendf("Watchdog: bot restarted (pid %d)", cmd.Process.Pid)
}

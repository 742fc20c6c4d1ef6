package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"c79sniper/src/model"
)

// Store owns the shared status file and the manual-stop flag. All writes are
// temp-then-rename so the watchdog and command handler never read a partial
// document. No locks: readers tolerate slightly stale data, but Read flags
// anything older than the given threshold.
type Store struct {
	dir        string
	statusName string
	stopName   string
}

func NewStore(dir, statusName, stopName string) *Store {
	return &Store{dir: dir, statusName: statusName, stopName: stopName}
}

func (s *Store) statusPath() string { return filepath.Join(s.dir, s.statusName) }
func (s *Store) stopPath() string   { return filepath.Join(s.dir, s.stopName) }

// WriteStatus replaces the status file atomically.
func (s *Store) WriteStatus(status model.BotStatus) error {
	raw, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal status: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	tmp := s.statusPath() + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write status: %w", err)
	}
	if err := os.Rename(tmp, s.statusPath()); err != nil {
		return fmt.Errorf("replace status: %w", err)
	}
	return nil
}

// ReadStatus loads the status file. stale reports whether the heartbeat is
// older than threshold; callers must not act on a stale status silently.
func (s *Store) ReadStatus(now time.Time, threshold time.Duration) (status *model.BotStatus, stale bool, err error) {
	raw, err := os.ReadFile(s.statusPath())
	if err != nil {
		return nil, false, err
	}

	var parsed model.BotStatus
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, false, fmt.Errorf("decode status: %w", err)
	}

	stale = now.Sub(parsed.Heartbeat) > threshold
	return &parsed, stale, nil
}

// SetStopFlag creates the manual-stop flag file. Presence suppresses new
// entries and watchdog auto-restart.
func (s *Store) SetStopFlag() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	return os.WriteFile(s.stopPath(), []byte(time.Now().UTC().Format(time.RFC3339)+"\n"), 0o644)
}

// ClearStopFlag removes the flag. Missing flag is not an error.
func (s *Store) ClearStopFlag() error {
	err := os.Remove(s.stopPath())
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}

// StopFlagSet reports whether the manual-stop flag is present.
func (s *Store) StopFlagSet() bool {
	_, err := os.Stat(s.stopPath())
	return err == nil
}

// PruneOld deletes regular files in the state dir older than retention,
// keeping the status file and stop flag themselves.
func (s *Store) PruneOld(now time.Time, retention time.Duration) (removed int, err error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if name == s.statusName || name == s.stopName {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) > retention {
			if rmErr := os.Remove(filepath.Join(s.dir, name)); rmErr == nil {
				removed++
			}
		}
	}
	return removed, nil
}

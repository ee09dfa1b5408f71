package fleet

import (
	"fmt"
	"sync"
	"time"

	"fleetmap-service/internal/domain/fleet"
	xerrors "fleetmap-service/internal/pkg/errors"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	DefaultRefreshInterval = 15 * time.Second
	MinRefreshInterval     = time.Second
	MaxRefreshInterval     = time.Hour
)

// AutoRefresh keeps at most one recurring entry in a shared cron scheduler.
// Reconfiguring replaces the entry; missed ticks are never caught up.
type AutoRefresh struct {
	scheduler *cron.Cron
	tick      func()
	logger    *zap.Logger

	mu      sync.Mutex
	cfg     fleet.AutoRefreshConfig
	entryID cron.EntryID
	stopped bool
}

func NewAutoRefresh(scheduler *cron.Cron, tick func(), logger *zap.Logger) *AutoRefresh {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AutoRefresh{
		scheduler: scheduler,
		tick:      tick,
		logger:    logger,
		cfg:       fleet.AutoRefreshConfig{Interval: DefaultRefreshInterval},
	}
}

// Configure enables or disables polling. A zero interval keeps the current one.
func (a *AutoRefresh) Configure(enabled bool, interval time.Duration) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if interval == 0 {
		interval = a.cfg.Interval
	}
	if interval < MinRefreshInterval || interval > MaxRefreshInterval {
		return fmt.Errorf("%w: refresh interval %s out of range", xerrors.ErrInvalidInput, interval)
	}
	if a.stopped {
		return xerrors.ErrViewClosed
	}

	next := fleet.AutoRefreshConfig{Enabled: enabled, Interval: interval}
	if next == a.cfg && (a.entryID != 0) == enabled {
		return nil
	}

	a.removeLocked()
	a.cfg = next
	if enabled {
		a.entryID = a.scheduler.Schedule(cron.Every(interval), cron.FuncJob(a.tick))
		a.logger.Debug("auto refresh scheduled", zap.Duration("interval", interval))
	}
	return nil
}

// Config returns the current configuration.
func (a *AutoRefresh) Config() fleet.AutoRefreshConfig {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cfg
}

// Stop removes the entry for good.
func (a *AutoRefresh) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.removeLocked()
	a.cfg.Enabled = false
	a.stopped = true
}

func (a *AutoRefresh) removeLocked() {
	if a.entryID != 0 {
		a.scheduler.Remove(a.entryID)
		a.entryID = 0
	}
}

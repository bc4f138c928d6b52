package janitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"incidents-dashboard/config"
	"incidents-dashboard/core/shell"
	"incidents-dashboard/core/utils"
)

// SessionPurger removes persisted sessions past their expiry.
type SessionPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Janitor periodically expires sessions, sweeps notifications and evicts
// idle device shells.
type Janitor struct {
	cfg      config.JanitorConfig
	shells   *shell.Registry
	sessions SessionPurger
	logger   *utils.Logger
	now      func() time.Time

	mu      sync.Mutex
	cron    *cron.Cron
	cancel  context.CancelFunc
	running bool
}

func New(cfg config.JanitorConfig, shells *shell.Registry, sessions SessionPurger, logger *utils.Logger) *Janitor {
	return &Janitor{cfg: cfg, shells: shells, sessions: sessions, logger: logger, now: time.Now}
}

func (j *Janitor) StartWithContext(ctx context.Context) error {
	if j == nil || !j.cfg.Enabled {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.running {
		return nil
	}
	spec := j.cfg.Spec
	if spec == "" {
		spec = "@every 30s"
	}
	runCtx, cancel := context.WithCancel(ctx)
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(spec, func() { j.RunOnce(runCtx) }); err != nil {
		cancel()
		return fmt.Errorf("janitor schedule %q: %w", spec, err)
	}
	c.Start()
	j.cron, j.cancel, j.running = c, cancel, true
	j.logger.Printf("janitor started spec=%q", spec)
	return nil
}

func (j *Janitor) StopWithContext(ctx context.Context) error {
	if j == nil {
		return nil
	}
	j.mu.Lock()
	c, cancel, running := j.cron, j.cancel, j.running
	j.cron, j.cancel, j.running = nil, nil, false
	j.mu.Unlock()
	if !running {
		return nil
	}
	cancel()
	select {
	case <-c.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce performs a single sweep.
func (j *Janitor) RunOnce(ctx context.Context) shell.SweepStats {
	now := j.now()
	stats := j.shells.Sweep(ctx, now)
	if j.sessions != nil {
		n, err := j.sessions.PurgeExpired(ctx)
		if err != nil {
			j.logger.Errorf("janitor purge sessions: %v", err)
		} else if n > 0 {
			j.logger.Printf("janitor purged sessions=%d", n)
		}
	}
	return stats
}

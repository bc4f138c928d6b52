package shell

import (
	"context"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"

	"incidents-dashboard/core/utils"
)

// Factory builds the shell of a new device.
type Factory func(deviceID string) *Shell

type Registry struct {
	factory Factory
	idleTTL time.Duration
	logger  *utils.Logger

	mu     sync.RWMutex
	shells map[string]*Shell
}

func NewRegistry(factory Factory, idleTTL time.Duration, logger *utils.Logger) *Registry {
	if idleTTL <= 0 {
		idleTTL = 30 * time.Minute
	}
	return &Registry{factory: factory, idleTTL: idleTTL, logger: logger, shells: map[string]*Shell{}}
}

func (r *Registry) Get(deviceID string) *Shell {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.shells[deviceID]
}

// Create registers a shell under a fresh device id.
func (r *Registry) Create() *Shell {
	id := uuid.Must(uuid.NewV4()).String()
	sh := r.factory(id)
	r.mu.Lock()
	r.shells[id] = sh
	r.mu.Unlock()
	return sh
}

// GetOrCreate returns the shell for deviceID, creating a new device when the
// id is unknown.
func (r *Registry) GetOrCreate(deviceID string) (*Shell, bool) {
	if deviceID != "" {
		if sh := r.Get(deviceID); sh != nil {
			return sh, false
		}
	}
	return r.Create(), true
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.shells)
}

type SweepStats struct {
	Expired       int
	Notifications int
	Evicted       int
}

// Sweep expires sessions past their credential expiry, drops stale
// notifications and evicts anonymous shells idle for longer than the TTL.
func (r *Registry) Sweep(ctx context.Context, now time.Time) SweepStats {
	r.mu.RLock()
	shells := make([]*Shell, 0, len(r.shells))
	for _, sh := range r.shells {
		shells = append(shells, sh)
	}
	r.mu.RUnlock()

	var stats SweepStats
	var evict []*Shell
	for _, sh := range shells {
		if sh.Expire(ctx, now) {
			stats.Expired++
		}
		stats.Notifications += sh.Notices.Sweep(now)
		if !sh.SignedIn() && now.Sub(sh.LastSeen()) > r.idleTTL {
			evict = append(evict, sh)
		}
	}
	if len(evict) > 0 {
		r.mu.Lock()
		for _, sh := range evict {
			if r.shells[sh.DeviceID] == sh {
				delete(r.shells, sh.DeviceID)
				stats.Evicted++
			}
		}
		r.mu.Unlock()
		for _, sh := range evict {
			sh.Close()
		}
	}
	if stats != (SweepStats{}) {
		r.logger.Debugf("shell sweep expired=%d notifications=%d evicted=%d", stats.Expired, stats.Notifications, stats.Evicted)
	}
	return stats
}

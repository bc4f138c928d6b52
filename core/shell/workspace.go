package shell

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"incidents-dashboard/core/incidents"
)

type LoadState int

const (
	Idle LoadState = iota
	Loading
	Ready
)

func (s LoadState) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	default:
		return "idle"
	}
}

// ErrDiscarded is returned when a fetch completes after the workspace was
// discarded; its result is dropped.
var ErrDiscarded = errors.New("workspace discarded during load")

type Loader interface {
	LoadAll(ctx context.Context) ([]incidents.Incident, error)
}

// Snapshot is a read-only view of the workspace. Items must not be mutated.
type Snapshot struct {
	State      LoadState
	Items      []incidents.Incident
	Generation uint64
	LoadedAt   time.Time
	Err        error
}

// Workspace holds the loaded incident list of one signed-in device.
type Workspace struct {
	loader  Loader
	flight  singleflight.Group
	flights atomic.Uint64
	now     func() time.Time

	mu         sync.Mutex
	state      LoadState
	items      []incidents.Incident
	epoch      uint64
	generation uint64
	loadedAt   time.Time
	lastErr    error

	appliedFlight uint64
}

func NewWorkspace(loader Loader) *Workspace {
	return &Workspace{loader: loader, now: time.Now}
}

func (w *Workspace) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Snapshot{State: w.state, Items: w.items, Generation: w.generation, LoadedAt: w.loadedAt, Err: w.lastErr}
}

// EnsureLoaded performs the first load; later calls return the current snapshot.
func (w *Workspace) EnsureLoaded(ctx context.Context) (Snapshot, error) {
	w.mu.Lock()
	state := w.state
	w.mu.Unlock()
	if state == Ready {
		return w.Snapshot(), nil
	}
	return w.Load(ctx)
}

// Load fetches the whole collection. Concurrent calls within one epoch share
// a single fetch. A failed load keeps the previous items and still ends Ready.
func (w *Workspace) Load(ctx context.Context) (Snapshot, error) {
	w.mu.Lock()
	epoch := w.epoch
	w.state = Loading
	w.mu.Unlock()

	v, err, _ := w.flight.Do(strconv.FormatUint(epoch, 10), func() (any, error) {
		list, err := w.loader.LoadAll(ctx)
		if err != nil {
			return nil, err
		}
		return flightResult{id: w.flights.Add(1), items: list}, nil
	})

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.epoch != epoch {
		return Snapshot{State: w.state, Items: w.items, Generation: w.generation}, ErrDiscarded
	}
	w.state = Ready
	if err != nil {
		w.lastErr = err
		return Snapshot{State: w.state, Items: w.items, Generation: w.generation, LoadedAt: w.loadedAt, Err: err}, err
	}
	res := v.(flightResult)
	list := res.items
	if list == nil {
		list = []incidents.Incident{}
	}
	// joined callers of one flight bump the generation once
	if res.id != w.appliedFlight {
		w.appliedFlight = res.id
		w.generation++
	}
	w.items = list
	w.lastErr = nil
	w.loadedAt = w.now().UTC()
	return Snapshot{State: w.state, Items: w.items, Generation: w.generation, LoadedAt: w.loadedAt}, nil
}

// Discard drops the list and invalidates any outstanding fetch.
func (w *Workspace) Discard() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.epoch++
	w.items = nil
	w.state = Idle
	w.lastErr = nil
	w.loadedAt = time.Time{}
	w.flight.Forget(strconv.FormatUint(w.epoch-1, 10))
}

type flightResult struct {
	id    uint64
	items []incidents.Incident
}

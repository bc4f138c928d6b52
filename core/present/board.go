package present

import "sync"

// Rendering is a mounted chart. Dispose releases whatever the renderer produced.
type Rendering struct {
	Chart   Chart
	Version uint64
	Output  any
	dispose func()
}

type RenderFunc func(Chart) (output any, dispose func())

// Board owns chart identity per slot. A higher version supersedes and disposes
// the mounted rendering; an equal or lower version leaves it in place.
type Board struct {
	mu      sync.Mutex
	mounted map[Slot]*Rendering
}

func NewBoard() *Board {
	return &Board{mounted: map[Slot]*Rendering{}}
}

func (b *Board) Mount(chart Chart, render RenderFunc) *Rendering {
	b.mu.Lock()
	defer b.mu.Unlock()
	current := b.mounted[chart.Slot]
	if current != nil && chart.Version <= current.Version {
		return current
	}
	if current != nil && current.dispose != nil {
		current.dispose()
	}
	out, dispose := render(chart)
	r := &Rendering{Chart: chart, Version: chart.Version, Output: out, dispose: dispose}
	b.mounted[chart.Slot] = r
	return r
}

func (b *Board) Mounted(slot Slot) *Rendering {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mounted[slot]
}

func (b *Board) DisposeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for slot, r := range b.mounted {
		if r.dispose != nil {
			r.dispose()
		}
		delete(b.mounted, slot)
	}
}

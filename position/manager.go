package position

import (
	"sync"

	"github.com/monkbacktest/engine/instrument"
)

// Manager owns the {instrument → position} mapping for one account,
// parameterized by the concrete position type it manages (mirroring the
// source, which took a position class at construction — here that
// becomes a type parameter instead of runtime dispatch). Lookup lazily
// creates a flat position via the factory on first reference, so a
// position always exists once asked for, even before any trade.
type Manager[P any] struct {
	mu        sync.Mutex
	factory   func(*instrument.Instrument) P
	positions map[string]P
}

// NewManager returns an empty manager using factory to create a position on
// first reference to a given instrument.
func NewManager[P any](factory func(*instrument.Instrument) P) *Manager[P] {
	return &Manager[P]{factory: factory, positions: make(map[string]P)}
}

// Get returns the position for inst, creating a flat one via the factory if
// this is the first reference.
func (m *Manager[P]) Get(inst *instrument.Instrument) P {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.positions[inst.Symbol]; ok {
		return p
	}
	p := m.factory(inst)
	m.positions[inst.Symbol] = p
	return p
}

// All returns every position the manager has created so far, in no
// particular order.
func (m *Manager[P]) All() []P {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]P, 0, len(m.positions))
	for _, p := range m.positions {
		out = append(out, p)
	}
	return out
}

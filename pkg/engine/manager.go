package engine

import "fmt"

// Manager holds an ordered collection of interchangeable engines. The
// engine at the front is active and services every search; the only
// reordering operation is a true swap with the front.
type Manager struct {
	engines []Searcher
}

// NewManager composes engines in order; the first one starts active.
func NewManager(engines ...Searcher) *Manager {
	return &Manager{engines: engines}
}

// Search delegates to the active engine.
func (m *Manager) Search(code string) ([]Result, error) {
	if len(m.engines) == 0 {
		return nil, ErrNoEngine
	}
	return m.engines[0].Search(code)
}

// SetActiveEngine swaps positions 0 and k, promoting engine k and
// displacing the previous active engine to position k. Swapping the same
// index twice restores the original order.
func (m *Manager) SetActiveEngine(k int) error {
	if k < 0 || k >= len(m.engines) {
		return fmt.Errorf("engine index %d out of range [0, %d)", k, len(m.engines))
	}
	m.engines[0], m.engines[k] = m.engines[k], m.engines[0]
	return nil
}

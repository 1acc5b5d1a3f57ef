package statemachine

import (
	"slices"
	"sync"
)

// Hook observes a completed transition.
type Hook[S, E ~string] func(from, to S, event E)

// Machine is a thread-safe in-memory state machine.
// Transitions are stored as [from][event] -> to for O(1) lookups.
type Machine[S, E ~string] struct {
	initial  S
	current  S
	table    map[S]map[E]S
	wildcard map[E]S
	hooks    []Hook[S, E]
	mu       sync.RWMutex
}

// Current returns the current state.
func (m *Machine[S, E]) Current() S {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Fire applies event to the current state and returns the new state.
// Explicit transitions take precedence over wildcard ones.
func (m *Machine[S, E]) Fire(event E) (S, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	to, ok := m.lookup(m.current, event)
	if !ok {
		return m.current, NewErrNoTransitionAvailable(string(m.current), string(event))
	}

	from := m.current
	m.current = to
	for _, h := range m.hooks {
		h(from, to, event)
	}
	return to, nil
}

// CanFire reports whether event has a transition from the current state.
func (m *Machine[S, E]) CanFire(event E) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.lookup(m.current, event)
	return ok
}

// Events lists the events accepted in the current state, sorted by name.
func (m *Machine[S, E]) Events() []E {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[E]struct{})
	for e := range m.table[m.current] {
		seen[e] = struct{}{}
	}
	for e := range m.wildcard {
		seen[e] = struct{}{}
	}

	events := make([]E, 0, len(seen))
	for e := range seen {
		events = append(events, e)
	}
	slices.Sort(events)
	return events
}

// Reset returns the machine to its initial state without running hooks.
func (m *Machine[S, E]) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.initial
}

func (m *Machine[S, E]) lookup(from S, event E) (S, bool) {
	if events, ok := m.table[from]; ok {
		if to, ok := events[event]; ok {
			return to, true
		}
	}
	to, ok := m.wildcard[event]
	return to, ok
}

func (m *Machine[S, E]) add(from S, event E, to S) error {
	if from == "" || to == "" || event == "" {
		return ErrInvalidTransition
	}
	if _, ok := m.table[from]; !ok {
		m.table[from] = make(map[E]S)
	}
	if _, dup := m.table[from][event]; dup {
		return NewErrDuplicateTransition(string(from), string(event))
	}
	m.table[from][event] = to
	return nil
}

package statemachine

import (
	"fmt"
)

// Option configures a state machine during construction.
type Option[S, E ~string] func(*Machine[S, E]) error

// New creates a state machine in the initial state with the given options.
func New[S, E ~string](initial S, opts ...Option[S, E]) (*Machine[S, E], error) {
	if initial == "" {
		return nil, ErrInvalidState
	}

	m := &Machine[S, E]{
		initial:  initial,
		current:  initial,
		table:    make(map[S]map[E]S),
		wildcard: make(map[E]S),
	}

	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// MustNew is like New but panics on invalid configuration.
func MustNew[S, E ~string](initial S, opts ...Option[S, E]) *Machine[S, E] {
	m, err := New(initial, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to create state machine: %v", err))
	}
	return m
}

// WithTransition declares from --event--> to.
func WithTransition[S, E ~string](from S, event E, to S) Option[S, E] {
	return func(m *Machine[S, E]) error {
		if err := m.add(from, event, to); err != nil {
			return fmt.Errorf("transition %s->%s on %s: %w", from, to, event, err)
		}
		return nil
	}
}

// WithWildcard declares a transition on event from every state to to.
func WithWildcard[S, E ~string](event E, to S) Option[S, E] {
	return func(m *Machine[S, E]) error {
		if event == "" || to == "" {
			return ErrInvalidTransition
		}
		m.wildcard[event] = to
		return nil
	}
}

// WithHook registers a hook called after each successful Fire.
func WithHook[S, E ~string](h func(from, to S, event E)) Option[S, E] {
	return func(m *Machine[S, E]) error {
		if h != nil {
			m.hooks = append(m.hooks, h)
		}
		return nil
	}
}

// Package statemachine provides a small, type-safe finite-state machine for
// flows whose states and events are string-like constants.
//
// Transitions are declared up front with functional options. Fire looks up
// the transition for the current state and event and moves the machine, or
// returns ErrNoTransitionAvailable when the pair is not declared. A wildcard
// transition applies from every state, which is how "reset" style events are
// modelled.
//
// # Usage
//
//	type step string
//	type event string
//
//	const (
//	    draft  step  = "draft"
//	    review step  = "review"
//	    submit event = "submit"
//	    reset  event = "reset"
//	)
//
//	m := statemachine.MustNew(draft,
//	    statemachine.WithTransition(draft, submit, review),
//	    statemachine.WithWildcard(reset, draft),
//	)
//
//	if _, err := m.Fire(submit); err != nil {
//	    // statemachine.IsNoTransitionAvailableError(err)
//	}
//
// # Hooks
//
// WithHook registers a function called after every successful transition.
// Hooks run under the machine lock and must not call back into the machine.
//
// # Concurrency
//
// Machine guards its state with a RWMutex. Current and CanFire take the read
// lock, Fire and Reset the write lock.
package statemachine

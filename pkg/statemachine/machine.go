// Package statemachine implements small table-driven finite state machines.
// One Definition is shared by any number of Machines, each tracking its own
// current state.
package statemachine

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrNoTransition is returned when the current state has no transition
	// for the triggered event.
	ErrNoTransition = errors.New("statemachine: no transition")

	// ErrDuplicateTransition is returned when a definition declares two
	// transitions for the same state and event.
	ErrDuplicateTransition = errors.New("statemachine: duplicate transition")
)

// State represents a state in the state machine.
type State string

// Event represents an event that can trigger a state transition.
type Event string

// Transition moves a machine from From to To when Event is triggered.
// From and To may be equal.
type Transition struct {
	From  State
	To    State
	Event Event
}

// TransitionHook is called after every successful transition.
type TransitionHook func(from, to State, event Event)

// Definition is an immutable transition table with an initial state.
type Definition struct {
	initial State
	table   map[State]map[Event]State
}

// NewDefinition builds a definition from its transitions.
func NewDefinition(initial State, transitions ...Transition) (*Definition, error) {
	d := &Definition{
		initial: initial,
		table:   make(map[State]map[Event]State),
	}

	for _, tr := range transitions {
		if d.table[tr.From] == nil {
			d.table[tr.From] = make(map[Event]State)
		}
		if _, exists := d.table[tr.From][tr.Event]; exists {
			return nil, fmt.Errorf("%w: %s on %s", ErrDuplicateTransition, tr.From, tr.Event)
		}
		d.table[tr.From][tr.Event] = tr.To
	}
	return d, nil
}

// MustDefinition is like NewDefinition but panics on error. It is meant for
// package-level tables.
func MustDefinition(initial State, transitions ...Transition) *Definition {
	d, err := NewDefinition(initial, transitions...)
	if err != nil {
		panic(err)
	}
	return d
}

// Initial returns the state new machines start in.
func (d *Definition) Initial() State {
	return d.initial
}

// Next returns the state reached from s on event.
func (d *Definition) Next(s State, event Event) (State, bool) {
	to, ok := d.table[s][event]
	return to, ok
}

// New returns a machine in the initial state.
func (d *Definition) New() *Machine {
	return &Machine{def: d, current: d.initial}
}

// Machine is one running instance of a Definition.
type Machine struct {
	mu      sync.RWMutex
	def     *Definition
	current State
	hooks   []TransitionHook
}

// Trigger fires event and returns the new current state.
func (m *Machine) Trigger(event Event) (State, error) {
	m.mu.Lock()
	from := m.current
	to, ok := m.def.Next(from, event)
	if !ok {
		m.mu.Unlock()
		return from, fmt.Errorf("%w from %s on %s", ErrNoTransition, from, event)
	}
	m.current = to
	hooks := m.hooks
	m.mu.Unlock()

	for _, hook := range hooks {
		hook(from, to, event)
	}
	return to, nil
}

// Current returns the current state.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// OnTransition registers a hook called after every transition.
func (m *Machine) OnTransition(hook TransitionHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, hook)
}

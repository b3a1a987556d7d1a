// Package fsm provides a generic transition-validation primitive: a fixed
// set of states, named transitions with declared source states, and an
// atomic Apply that either yields the target state or reports exactly why
// the transition is illegal. It never mutates anything itself; callers
// persist the returned target under their own concurrency control.
package fsm

import (
	"errors"
	"fmt"
	"strings"
)

// Transition declares a named edge of the machine. Either Sources lists the
// states the transition may start from, or AnySource allows every
// non-terminal state.
type Transition[S ~string] struct {
	Name      string
	Sources   []S
	AnySource bool
	Target    S
}

// Config describes a machine: its transitions and its terminal states.
// Terminal states have no outgoing transitions, including AnySource ones.
type Config[S ~string] struct {
	Terminal    []S
	Transitions []Transition[S]
}

// Machine validates transitions against a fixed table.
type Machine[S ~string] struct {
	transitions map[string]Transition[S]
	names       []string
	terminal    map[S]struct{}
}

// New builds a machine from the config. Duplicate transition names panic:
// the table is static wiring, not runtime input.
func New[S ~string](cfg Config[S]) *Machine[S] {
	m := &Machine[S]{
		transitions: make(map[string]Transition[S], len(cfg.Transitions)),
		terminal:    make(map[S]struct{}, len(cfg.Terminal)),
	}
	for _, s := range cfg.Terminal {
		m.terminal[s] = struct{}{}
	}
	for _, t := range cfg.Transitions {
		if _, ok := m.transitions[t.Name]; ok {
			panic(fmt.Sprintf("fsm: duplicate transition %q", t.Name))
		}
		m.transitions[t.Name] = t
		m.names = append(m.names, t.Name)
	}
	return m
}

// IllegalTransitionError explains a rejected transition: the current state,
// the attempted transition and the sources it is allowed from.
type IllegalTransitionError[S ~string] struct {
	Current    S
	Transition string
	Allowed    []S
	AnySource  bool
}

func (e *IllegalTransitionError[S]) Error() string {
	if e.AnySource {
		return fmt.Sprintf("transition %q not allowed from terminal state %q", e.Transition, string(e.Current))
	}
	if len(e.Allowed) == 0 {
		return fmt.Sprintf("unknown transition %q from state %q", e.Transition, string(e.Current))
	}
	allowed := make([]string, len(e.Allowed))
	for i, s := range e.Allowed {
		allowed[i] = string(s)
	}
	return fmt.Sprintf("transition %q not allowed from state %q (allowed from: %s)",
		e.Transition, string(e.Current), strings.Join(allowed, ", "))
}

func (e *IllegalTransitionError[S]) illegalTransition() {}

type illegalTransition interface {
	illegalTransition()
}

// IsIllegalTransition reports whether err is an IllegalTransitionError of
// any state type. Handlers use it to map the failure to a client error.
func IsIllegalTransition(err error) bool {
	var target illegalTransition
	return errors.As(err, &target)
}

// Can is the pure predicate "may this transition run from this state".
// Exposed for bulk-action filtering; mutation paths must go through Apply.
func (m *Machine[S]) Can(name string, from S) bool {
	t, ok := m.transitions[name]
	if !ok {
		return false
	}
	if m.IsTerminal(from) {
		return false
	}
	if t.AnySource {
		return true
	}
	for _, s := range t.Sources {
		if s == from {
			return true
		}
	}
	return false
}

// Apply validates the transition and returns the target state. On failure
// it returns an IllegalTransitionError and from remains untouched; there is
// no partial effect to undo.
func (m *Machine[S]) Apply(name string, from S) (S, error) {
	if m.Can(name, from) {
		return m.transitions[name].Target, nil
	}
	var zero S
	t, ok := m.transitions[name]
	if !ok {
		return zero, &IllegalTransitionError[S]{Current: from, Transition: name}
	}
	return zero, &IllegalTransitionError[S]{
		Current:    from,
		Transition: name,
		Allowed:    t.Sources,
		AnySource:  t.AnySource,
	}
}

// IsTerminal reports whether the state has no outgoing transitions.
func (m *Machine[S]) IsTerminal(s S) bool {
	_, ok := m.terminal[s]
	return ok
}

// Transitions returns the declared transition names in declaration order.
func (m *Machine[S]) Transitions() []string {
	names := make([]string, len(m.names))
	copy(names, m.names)
	return names
}

// Package fsm implements sensor-gated finite state machine programs and
// their executors: a single-shot step function, a phased stepper for
// animated execution, and a bounded run-to-completion loop.
//
// A program is a set of named states. Each state carries an ordered list of
// transitions gated by tri-state detector conditions (yes / no / don't
// care); the first transition whose conditions match the live world wins.
// One distinguished stop state is always present, is terminal, and never
// carries transitions.
package fsm

import (
	"fmt"

	"github.com/kara-xyz/go-kara/command"
	"github.com/kara-xyz/go-kara/world"
)

// Condition is a transition's requirement on a single detector.
type Condition int

const (
	// Any ignores the detector (wildcard). Absent map entries read as Any.
	Any Condition = iota
	// Yes requires the detector to read true.
	Yes
	// No requires the detector to read false.
	No
)

func (c Condition) String() string {
	switch c {
	case Yes:
		return "yes"
	case No:
		return "no"
	default:
		return "any"
	}
}

// Transition is one gated edge of a state.
type Transition struct {
	ID         string
	Target     string
	Conditions map[world.Detector]Condition
	Actions    []command.Command
}

// Matches reports whether every non-wildcard condition agrees with the live
// sensor readings.
func (t *Transition) Matches(w *world.World) bool {
	for det, cond := range t.Conditions {
		if cond == Any {
			continue
		}
		if det.Check(w) != (cond == Yes) {
			return false
		}
	}
	return true
}

// Condition returns the requirement for a detector, defaulting to Any.
func (t *Transition) Condition(d world.Detector) Condition {
	if t.Conditions == nil {
		return Any
	}
	return t.Conditions[d]
}

// State is one node of the program.
type State struct {
	ID          string
	Name        string
	Transitions []*Transition
}

// Match returns the first transition (in declaration order) whose
// conditions match the world, or nil when the state is stuck.
func (s *State) Match(w *world.World) *Transition {
	for _, t := range s.Transitions {
		if t.Matches(w) {
			return t
		}
	}
	return nil
}

// Program is a complete state machine. StartID is empty until the author
// picks a start state; StopID always resolves to a state in States.
type Program struct {
	States  []*State
	StartID string
	StopID  string
}

// StopStateID is the id of the stop state created by New.
const StopStateID = "stop"

// New creates a program containing only the terminal stop state.
func New() *Program {
	return &Program{
		States: []*State{{ID: StopStateID, Name: "Stop"}},
		StopID: StopStateID,
	}
}

// State returns the state with the given id, or nil.
func (p *Program) State(id string) *State {
	for _, s := range p.States {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// StateByName returns the first state with the given name, or nil. The XML
// interchange format references states by name, so authors who want
// faithful round-trips must keep names unique (Validate warns otherwise).
func (p *Program) StateByName(name string) *State {
	for _, s := range p.States {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// AddState appends a new empty state.
func (p *Program) AddState(id, name string) (*State, error) {
	if p.State(id) != nil {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateID, id)
	}
	s := &State{ID: id, Name: name}
	p.States = append(p.States, s)
	return s, nil
}

// RemoveState deletes a state, removes every transition targeting it, and
// clears StartID if it pointed there. The stop state cannot be removed.
func (p *Program) RemoveState(id string) error {
	if id == p.StopID {
		return ErrRemoveStop
	}
	idx := -1
	for i, s := range p.States {
		if s.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrStateNotFound, id)
	}
	p.States = append(p.States[:idx], p.States[idx+1:]...)
	for _, s := range p.States {
		kept := s.Transitions[:0]
		for _, t := range s.Transitions {
			if t.Target != id {
				kept = append(kept, t)
			}
		}
		s.Transitions = kept
	}
	if p.StartID == id {
		p.StartID = ""
	}
	return nil
}

// AddTransition appends a transition to a state. The stop state is
// terminal and rejects transitions.
func (p *Program) AddTransition(stateID string, t *Transition) error {
	if stateID == p.StopID {
		return ErrStopTransition
	}
	s := p.State(stateID)
	if s == nil {
		return fmt.Errorf("%w: %q", ErrStateNotFound, stateID)
	}
	s.Transitions = append(s.Transitions, t)
	return nil
}

// SetStart selects the start state.
func (p *Program) SetStart(id string) error {
	if p.State(id) == nil {
		return fmt.Errorf("%w: %q", ErrStateNotFound, id)
	}
	p.StartID = id
	return nil
}

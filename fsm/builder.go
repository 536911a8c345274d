package fsm

import (
	"fmt"

	"github.com/kara-xyz/go-kara/command"
	"github.com/kara-xyz/go-kara/world"
)

// Builder provides a fluent API for constructing programs. State and
// transition ids are issued by an injectable generator so construction
// stays deterministic and testable.
//
// Example:
//
//	p := fsm.Build().
//	    State("find", "Find clover").
//	    When(fsm.If(world.OnLeaf, fsm.Yes)).
//	    Do(command.PickClover).
//	    GoTo("stop").
//	    When(fsm.If(world.TreeFront, fsm.No)).
//	    Do(command.MoveForward).
//	    GoTo("find").
//	    Start("find").
//	    Done()
type Builder struct {
	program *Program
	current *State
	pending *Transition
	nextID  func() string
	err     error
}

// Build creates a Builder with a sequential id generator.
func Build() *Builder {
	n := 0
	return BuildWithIDs(func() string {
		n++
		return fmt.Sprintf("t%d", n)
	})
}

// BuildWithIDs creates a Builder whose transition ids come from gen.
func BuildWithIDs(gen func() string) *Builder {
	return &Builder{program: New(), nextID: gen}
}

// State starts a new state; subsequent When/Do/GoTo calls attach to it.
func (b *Builder) State(id, name string) *Builder {
	if b.err != nil {
		return b
	}
	b.flush()
	s, err := b.program.AddState(id, name)
	if err != nil {
		b.err = err
		return b
	}
	b.current = s
	return b
}

// ConditionSet is a partial tri-state condition mapping for When.
type ConditionSet map[world.Detector]Condition

// If builds a single-detector condition set; chain with And.
func If(d world.Detector, c Condition) ConditionSet {
	return ConditionSet{d: c}
}

// And extends the set with another detector requirement.
func (cs ConditionSet) And(d world.Detector, c Condition) ConditionSet {
	cs[d] = c
	return cs
}

// When opens a new transition on the current state. Detectors not named in
// the set are wildcards.
func (b *Builder) When(conditions ConditionSet) *Builder {
	if b.err != nil {
		return b
	}
	if b.current == nil {
		b.err = fmt.Errorf("fsm: When called before any State")
		return b
	}
	b.flush()
	b.pending = &Transition{
		ID:         b.nextID(),
		Conditions: map[world.Detector]Condition(conditions),
	}
	return b
}

// Always opens an unconditional (all-wildcard) transition.
func (b *Builder) Always() *Builder {
	return b.When(ConditionSet{})
}

// Do appends actions to the open transition.
func (b *Builder) Do(actions ...command.Command) *Builder {
	if b.err != nil {
		return b
	}
	if b.pending == nil {
		b.err = fmt.Errorf("fsm: Do called without an open transition")
		return b
	}
	b.pending.Actions = append(b.pending.Actions, actions...)
	return b
}

// GoTo closes the open transition with its target state id.
func (b *Builder) GoTo(target string) *Builder {
	if b.err != nil {
		return b
	}
	if b.pending == nil {
		b.err = fmt.Errorf("fsm: GoTo called without an open transition")
		return b
	}
	b.pending.Target = target
	b.err = b.program.AddTransition(b.current.ID, b.pending)
	b.pending = nil
	return b
}

// Start selects the start state.
func (b *Builder) Start(id string) *Builder {
	if b.err != nil {
		return b
	}
	b.flush()
	b.err = b.program.SetStart(id)
	return b
}

// Done returns the program, or nil with the first construction error.
func (b *Builder) Done() (*Program, error) {
	b.flush()
	if b.err != nil {
		return nil, b.err
	}
	return b.program, nil
}

// MustDone is Done for tests and static programs; it panics on error.
func (b *Builder) MustDone() *Program {
	p, err := b.Done()
	if err != nil {
		panic(err)
	}
	return p
}

// flush reports a transition left open without a GoTo.
func (b *Builder) flush() {
	if b.pending != nil && b.err == nil {
		b.err = fmt.Errorf("fsm: transition %s has no target (missing GoTo)", b.pending.ID)
	}
	b.pending = nil
}

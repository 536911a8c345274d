package fsm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kara-xyz/go-kara/world"
)

var (
	// Structural errors: the program itself is malformed.
	ErrNilProgram     = errors.New("fsm: program is nil")
	ErrNoStopState    = errors.New("fsm: program has no stop state")
	ErrStateNotFound  = errors.New("fsm: state not found")
	ErrRemoveStop     = errors.New("fsm: the stop state cannot be removed")
	ErrStopTransition = errors.New("fsm: the stop state cannot have transitions")

	// Validation errors: the program cannot start a run.
	ErrNoStartState      = errors.New("fsm: no start state set")
	ErrStartStateMissing = errors.New("fsm: start state does not exist")
	ErrNoTransitions     = errors.New("fsm: program has no transitions")
	ErrDuplicateID       = errors.New("fsm: duplicate state id")
	ErrDuplicateName     = errors.New("fsm: duplicate state name")
	ErrBadTarget         = errors.New("fsm: transition targets a missing state")
)

// StuckError reports a state in which no transition's conditions match the
// live world. The message names the state and the detectors currently
// reading true so a student can diagnose the situation.
type StuckError struct {
	StateID   string
	StateName string
	Active    []world.Detector
}

func (e *StuckError) Error() string {
	if len(e.Active) == 0 {
		return fmt.Sprintf("stuck in state %q: no transition matches (no sensor is active)", e.StateName)
	}
	readings := make([]string, len(e.Active))
	for i, d := range e.Active {
		readings[i] = d.Describe()
	}
	return fmt.Sprintf("stuck in state %q: no transition matches (%s)", e.StateName, strings.Join(readings, ", "))
}

// LimitError reports an exhausted step budget, treated as a probable
// infinite loop rather than a crash.
type LimitError struct {
	Limit int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("step limit of %d transitions exceeded: possible infinite loop", e.Limit)
}

// ActionError reports a transition action that could not be performed. The
// run halts; the world returned alongside this error reflects every action
// applied before the failing one.
type ActionError struct {
	StateID      string
	TransitionID string
	ActionIndex  int
	Err          error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("action %d of transition %s failed: %v", e.ActionIndex, e.TransitionID, e.Err)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

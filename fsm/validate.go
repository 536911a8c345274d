package fsm

import (
	"errors"
	"fmt"
)

// Issue is one finding of a validation pass.
type Issue struct {
	Severity string `json:"severity"` // "error" or "warning"
	Message  string `json:"message"`
	StateID  string `json:"stateId,omitempty"`
	Err      error  `json:"-"` // the sentinel this issue maps to, if any
}

// Report is the outcome of validating a program before a run.
type Report struct {
	Valid    bool    `json:"valid"`
	Errors   []Issue `json:"errors,omitempty"`
	Warnings []Issue `json:"warnings,omitempty"`
}

// Err returns the sentinel of the first error issue, or nil.
func (r Report) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	first := r.Errors[0]
	if first.Err != nil {
		return first.Err
	}
	return errors.New(first.Message)
}

// Validate checks that a program is runnable. It never inspects a world:
// validation happens before a run starts, and a passing program can still
// get stuck or hit the step limit at execution time.
func Validate(p *Program) Report {
	r := Report{Valid: true}
	fail := func(err error, stateID, msg string) {
		r.Valid = false
		r.Errors = append(r.Errors, Issue{Severity: "error", Message: msg, StateID: stateID, Err: err})
	}
	warn := func(stateID, msg string) {
		r.Warnings = append(r.Warnings, Issue{Severity: "warning", Message: msg, StateID: stateID})
	}

	if p == nil {
		fail(ErrNilProgram, "", "program is nil")
		return r
	}
	stop := p.State(p.StopID)
	if p.StopID == "" || stop == nil {
		fail(ErrNoStopState, "", "program has no stop state")
		return r
	}
	if len(stop.Transitions) > 0 {
		fail(ErrStopTransition, stop.ID, "the stop state must not have outgoing transitions")
	}

	if p.StartID == "" {
		fail(ErrNoStartState, "", "no start state set")
	} else if p.State(p.StartID) == nil {
		fail(ErrStartStateMissing, p.StartID, fmt.Sprintf("start state %q does not exist", p.StartID))
	}

	total := 0
	names := make(map[string]string)
	for _, s := range p.States {
		total += len(s.Transitions)
		if prev, dup := names[s.Name]; dup {
			warn(s.ID, fmt.Sprintf("state name %q also used by state %s; XML export resolves states by name", s.Name, prev))
		}
		names[s.Name] = s.ID
		for _, t := range s.Transitions {
			if p.State(t.Target) == nil {
				fail(ErrBadTarget, s.ID, fmt.Sprintf("transition %s targets missing state %q", t.ID, t.Target))
			}
		}
	}
	if total == 0 {
		fail(ErrNoTransitions, "", "program has no transitions")
	}

	for _, s := range unreachable(p) {
		warn(s.ID, fmt.Sprintf("state %q is unreachable from the start state", s.Name))
	}

	return r
}

// unreachable returns states not reachable from the start state. With no
// start state set nothing is reported; the missing start is already an
// error.
func unreachable(p *Program) []*State {
	if p.StartID == "" || p.State(p.StartID) == nil {
		return nil
	}
	seen := map[string]bool{p.StartID: true}
	queue := []string{p.StartID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		s := p.State(id)
		if s == nil {
			continue
		}
		for _, t := range s.Transitions {
			if !seen[t.Target] {
				seen[t.Target] = true
				queue = append(queue, t.Target)
			}
		}
	}
	var missed []*State
	for _, s := range p.States {
		// The stop state is always considered reachable; every program
		// keeps one even while it is being drawn.
		if !seen[s.ID] && s.ID != p.StopID {
			missed = append(missed, s)
		}
	}
	return missed
}

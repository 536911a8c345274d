package fsm

import (
	"fmt"

	"github.com/kara-xyz/go-kara/world"
)

// DefaultStepLimit bounds a run at 10,000 executed transitions. The limit
// is counted in transitions, not wall-clock time, so runs are reproducible.
const DefaultStepLimit = 10000

// StepResult is the outcome of executing one logical transition.
type StepResult struct {
	// World is the world after the step. When an action fails mid-list it
	// reflects every action applied before the failing one.
	World *world.World
	// NextState is the state the machine is in after the step.
	NextState string
	// Transition is the matched transition, nil when none matched or the
	// machine was already in the stop state.
	Transition *Transition
	// Stopped reports that the run is over: the stop state was reached,
	// no transition matched, or an action failed.
	Stopped bool
	// Err is nil for a normal step and for reaching the stop state. It is
	// a *StuckError when no transition matched and an *ActionError when an
	// action was blocked.
	Err error
}

// Step executes at most one transition from the given state: it finds the
// first transition whose conditions match the world, applies its actions in
// order, and reports the target state.
func Step(w *world.World, p *Program, currentID string) StepResult {
	if err := checkShape(p, currentID); err != nil {
		return StepResult{World: w, NextState: currentID, Stopped: true, Err: err}
	}
	if currentID == p.StopID {
		return StepResult{World: w, NextState: currentID, Stopped: true}
	}

	s := p.State(currentID)
	t := s.Match(w)
	if t == nil {
		return StepResult{
			World:     w,
			NextState: currentID,
			Stopped:   true,
			Err: &StuckError{
				StateID:   s.ID,
				StateName: s.Name,
				Active:    world.ActiveDetectors(w),
			},
		}
	}

	current := w
	for i, action := range t.Actions {
		next, err := action.Apply(current)
		if err != nil {
			return StepResult{
				World:      next,
				NextState:  currentID,
				Transition: t,
				Stopped:    true,
				Err: &ActionError{
					StateID:      s.ID,
					TransitionID: t.ID,
					ActionIndex:  i,
					Err:          err,
				},
			}
		}
		current = next
	}

	return StepResult{
		World:      current,
		NextState:  t.Target,
		Transition: t,
		Stopped:    t.Target == p.StopID,
	}
}

// RunResult is the outcome of running a program to completion.
type RunResult struct {
	World      *world.World
	FinalState string
	Steps      int
	Err        error
}

// Run applies Step repeatedly from the given state until the run stops or
// the transition budget is exhausted. A limit of 0 means DefaultStepLimit.
func Run(w *world.World, p *Program, fromID string, limit int) RunResult {
	if limit <= 0 {
		limit = DefaultStepLimit
	}
	current := w
	stateID := fromID
	steps := 0
	for {
		res := Step(current, p, stateID)
		current = res.World
		stateID = res.NextState
		if res.Transition != nil {
			steps++
		}
		if res.Stopped {
			return RunResult{World: current, FinalState: stateID, Steps: steps, Err: res.Err}
		}
		if steps >= limit {
			return RunResult{
				World:      current,
				FinalState: stateID,
				Steps:      steps,
				Err:        &LimitError{Limit: limit},
			}
		}
	}
}

// checkShape verifies the structural invariants Step relies on.
func checkShape(p *Program, currentID string) error {
	if p == nil {
		return ErrNilProgram
	}
	if p.StopID == "" || p.State(p.StopID) == nil {
		return ErrNoStopState
	}
	if p.State(currentID) == nil {
		return fmt.Errorf("%w: %q", ErrStateNotFound, currentID)
	}
	return nil
}

package fsm

import (
	"errors"

	"github.com/kara-xyz/go-kara/command"
	"github.com/kara-xyz/go-kara/world"
)

// Phase is one observable sub-step of a logical transition. A driver (UI,
// ticker) calls Advance once per tick; the phases let it highlight the
// decision, each action effect, and the state change separately. The
// decision logic is exactly that of Step; phasing only changes when
// effects are applied and observed.
type Phase int

const (
	// PhaseTransitionMatched: a transition was selected; no world change.
	PhaseTransitionMatched Phase = iota
	// PhaseExecutingAction: one action of the transition was applied.
	PhaseExecutingAction
	// PhaseShowingArrow: the machine moved to the transition's target.
	PhaseShowingArrow
)

func (p Phase) String() string {
	switch p {
	case PhaseTransitionMatched:
		return "transition-matched"
	case PhaseExecutingAction:
		return "executing-action"
	default:
		return "showing-arrow"
	}
}

// PhaseResult is the outcome of one Advance call.
type PhaseResult struct {
	World   *world.World
	Phase   Phase
	Command command.Command // the action applied; valid when Applied
	Applied bool
	Stopped bool
	Err     error
}

// Stepper drives a program through phased, externally-ticked execution.
// It holds the only mutable session state of a run: the current state, the
// matched transition, the action index, and the step counter. A Stepper
// belongs to exactly one run; start a new run with a new Stepper.
type Stepper struct {
	program     *Program
	stateID     string
	prevStateID string
	transition  *Transition
	actionIndex int
	phase       Phase
	steps       int
	limit       int
	stopped     bool
}

// NewStepper creates a stepper positioned at the program's start state.
// The program must pass Validate. A limit of 0 means DefaultStepLimit.
func NewStepper(p *Program, limit int) (*Stepper, error) {
	if err := Validate(p).Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultStepLimit
	}
	return &Stepper{program: p, stateID: p.StartID, limit: limit}, nil
}

// StateID returns the current state of the run.
func (st *Stepper) StateID() string { return st.stateID }

// PrevStateID returns the state before the last completed transition.
func (st *Stepper) PrevStateID() string { return st.prevStateID }

// TransitionID returns the id of the matched transition, or "" between
// transitions.
func (st *Stepper) TransitionID() string {
	if st.transition == nil {
		return ""
	}
	return st.transition.ID
}

// ActionIndex returns the index of the next action to execute within the
// matched transition.
func (st *Stepper) ActionIndex() int { return st.actionIndex }

// Steps returns the number of completed transitions.
func (st *Stepper) Steps() int { return st.steps }

// Stopped reports whether the run is over.
func (st *Stepper) Stopped() bool { return st.stopped }

// Advance performs the next phase boundary against the given world and
// returns what happened. Once the run has stopped, further calls are quiet
// no-ops.
func (st *Stepper) Advance(w *world.World) PhaseResult {
	if st.stopped {
		return PhaseResult{World: w, Phase: st.phase, Stopped: true}
	}

	if st.transition == nil {
		return st.match(w)
	}
	if st.actionIndex < len(st.transition.Actions) {
		return st.executeAction(w)
	}
	return st.showArrow(w)
}

func (st *Stepper) match(w *world.World) PhaseResult {
	if st.stateID == st.program.StopID {
		st.stopped = true
		return PhaseResult{World: w, Phase: st.phase, Stopped: true}
	}
	if st.steps >= st.limit {
		st.stopped = true
		return PhaseResult{World: w, Phase: st.phase, Stopped: true, Err: &LimitError{Limit: st.limit}}
	}

	s := st.program.State(st.stateID)
	if s == nil {
		st.stopped = true
		return PhaseResult{World: w, Phase: st.phase, Stopped: true, Err: ErrStateNotFound}
	}
	t := s.Match(w)
	if t == nil {
		st.stopped = true
		return PhaseResult{
			World:   w,
			Phase:   st.phase,
			Stopped: true,
			Err: &StuckError{
				StateID:   s.ID,
				StateName: s.Name,
				Active:    world.ActiveDetectors(w),
			},
		}
	}
	st.transition = t
	st.actionIndex = 0
	st.phase = PhaseTransitionMatched
	return PhaseResult{World: w, Phase: PhaseTransitionMatched}
}

func (st *Stepper) executeAction(w *world.World) PhaseResult {
	action := st.transition.Actions[st.actionIndex]
	next, err := action.Apply(w)
	if err != nil {
		st.stopped = true
		return PhaseResult{
			World:   next,
			Phase:   PhaseExecutingAction,
			Command: action,
			Stopped: true,
			Err: &ActionError{
				StateID:      st.stateID,
				TransitionID: st.transition.ID,
				ActionIndex:  st.actionIndex,
				Err:          err,
			},
		}
	}
	st.actionIndex++
	st.phase = PhaseExecutingAction
	return PhaseResult{World: next, Phase: PhaseExecutingAction, Command: action, Applied: true}
}

func (st *Stepper) showArrow(w *world.World) PhaseResult {
	st.prevStateID = st.stateID
	st.stateID = st.transition.Target
	st.transition = nil
	st.actionIndex = 0
	st.steps++
	st.phase = PhaseShowingArrow
	if st.stateID == st.program.StopID {
		st.stopped = true
		return PhaseResult{World: w, Phase: PhaseShowingArrow, Stopped: true}
	}
	return PhaseResult{World: w, Phase: PhaseShowingArrow}
}

// SkipToEnd finishes the run with the non-phased step function, starting
// from wherever the stepper currently is. Used to fast-forward an animated
// run.
func (st *Stepper) SkipToEnd(w *world.World) RunResult {
	// Finish a half-executed transition first so no action runs twice.
	current := w
	if st.transition != nil {
		for st.actionIndex < len(st.transition.Actions) {
			res := st.executeAction(current)
			current = res.World
			if res.Err != nil {
				return RunResult{World: current, FinalState: st.stateID, Steps: st.steps, Err: res.Err}
			}
		}
		st.showArrow(current)
	}
	if st.stopped {
		return RunResult{World: current, FinalState: st.stateID, Steps: st.steps}
	}

	remaining := st.limit - st.steps
	if remaining <= 0 {
		st.stopped = true
		return RunResult{World: current, FinalState: st.stateID, Steps: st.steps, Err: &LimitError{Limit: st.limit}}
	}
	res := Run(current, st.program, st.stateID, remaining)
	st.stateID = res.FinalState
	st.steps += res.Steps
	st.stopped = true
	res.Steps = st.steps
	var le *LimitError
	if errors.As(res.Err, &le) {
		// Report the session's configured limit, not the remainder.
		res.Err = &LimitError{Limit: st.limit}
	}
	return res
}

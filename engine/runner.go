package engine

import (
	"github.com/kara-xyz/go-kara/command"
	"github.com/kara-xyz/go-kara/fsm"
	"github.com/kara-xyz/go-kara/lang"
	"github.com/kara-xyz/go-kara/world"
)

// Result is the outcome of one atomic unit of work.
type Result struct {
	// World is the world after the unit; identical to the input when
	// nothing was applied.
	World *world.World
	// Command is the primitive attempted this unit; valid when Acted.
	Command command.Command
	// Acted reports whether a primitive was attempted.
	Acted bool
	// Applied reports whether the primitive changed (or could have
	// changed) the world, as opposed to being blocked.
	Applied bool
	// Done reports that the program has finished.
	Done bool
	Err  error
}

// Runner adapts one program representation to tick-driven execution. Each
// Step call performs exactly one atomic unit of work: one command from a
// list, one state machine phase, or one streamed program command. Runners
// are single-run cursors; a new run needs a new Runner.
type Runner interface {
	Step(w *world.World) Result
}

type commandListRunner struct {
	inner *command.Runner
}

// CommandList returns a Runner that plays a flat command list.
func CommandList(list []command.Command) Runner {
	return &commandListRunner{inner: command.NewRunner(list)}
}

func (r *commandListRunner) Step(w *world.World) Result {
	res := r.inner.Step(w)
	return Result{
		World:   res.World,
		Command: res.Command,
		Acted:   res.Applied,
		Applied: res.Applied && res.Err == nil,
		Done:    res.Done,
		Err:     res.Err,
	}
}

type fsmRunner struct {
	stepper *fsm.Stepper
}

// StateMachine returns a Runner that executes a state machine program in
// phased mode, one phase per tick. The program must pass fsm.Validate.
// A limit of 0 means fsm.DefaultStepLimit.
func StateMachine(p *fsm.Program, limit int) (Runner, error) {
	st, err := fsm.NewStepper(p, limit)
	if err != nil {
		return nil, err
	}
	return &fsmRunner{stepper: st}, nil
}

func (r *fsmRunner) Step(w *world.World) Result {
	res := r.stepper.Advance(w)
	return Result{
		World:   res.World,
		Command: res.Command,
		Acted:   res.Phase == fsm.PhaseExecutingAction && (res.Applied || res.Err != nil),
		Applied: res.Applied,
		Done:    res.Stopped,
		Err:     res.Err,
	}
}

type langRunner struct {
	stepper *lang.Stepper
}

// MiniProgram returns a Runner that streams a compiled mini-language
// program, one primitive command per tick. Blocked primitives are quiet
// no-ops, exactly as in eager extraction.
func MiniProgram(p *lang.Program) Runner {
	return &langRunner{stepper: p.NewStepper()}
}

func (r *langRunner) Step(w *world.World) Result {
	cmd, ok, err := r.stepper.Next(w)
	if err != nil {
		return Result{World: w, Done: true, Err: err}
	}
	if !ok {
		return Result{World: w, Done: true}
	}
	next, applyErr := cmd.Apply(w)
	return Result{
		World:   next,
		Command: cmd,
		Acted:   true,
		Applied: applyErr == nil,
		Done:    r.stepper.Done(),
	}
}

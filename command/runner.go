package command

import "github.com/kara-xyz/go-kara/world"

// Runner executes a flat command list one command per step. Its only state
// is an index into the list; -1 means execution has not started. The list
// itself is owned by the caller: if commands are added or removed while a
// runner is active, the caller must Reset or Clamp the runner.
type Runner struct {
	list  []Command
	index int
}

// NewRunner creates a runner positioned before the first command.
func NewRunner(list []Command) *Runner {
	return &Runner{list: list, index: -1}
}

// Index returns the index of the last executed command, or -1.
func (r *Runner) Index() int {
	return r.index
}

// Done reports whether the index has passed the last command.
func (r *Runner) Done() bool {
	return r.index >= len(r.list)-1
}

// Reset rewinds the runner to before the first command.
func (r *Runner) Reset() {
	r.index = -1
}

// Clamp constrains a stale index after the caller shortened the list.
func (r *Runner) Clamp() {
	if r.index >= len(r.list) {
		r.index = len(r.list) - 1
	}
}

// StepResult is the outcome of executing one command (or of skipping to the
// end of the list).
type StepResult struct {
	// World is the world after the step; identical to the input on failure.
	World *world.World
	// Command is the command that was executed. Only valid when Applied.
	Command Command
	// Applied reports whether a command was consumed by this step.
	Applied bool
	// Done reports whether the list is exhausted.
	Done bool
	// Err is a *BlockedError when the command could not be performed.
	Err error
}

// Step executes the next command. The index advances even when the command
// is blocked, so a failed step can be observed and then skipped.
func (r *Runner) Step(w *world.World) StepResult {
	if r.Done() {
		return StepResult{World: w, Done: true}
	}
	r.index++
	cmd := r.list[r.index]
	next, err := cmd.Apply(w)
	return StepResult{
		World:   next,
		Command: cmd,
		Applied: true,
		Done:    r.Done(),
		Err:     err,
	}
}

// SkipToEnd executes every remaining command with no intermediate
// observation, halting early on the first blocked command. The returned
// world reflects all commands applied before the failure.
func (r *Runner) SkipToEnd(w *world.World) StepResult {
	current := w
	for !r.Done() {
		res := r.Step(current)
		current = res.World
		if res.Err != nil {
			return res
		}
	}
	return StepResult{World: current, Done: true}
}

package lang

import (
	"fmt"

	"github.com/kara-xyz/go-kara/command"
	"github.com/kara-xyz/go-kara/world"
)

// DefaultControlBudget bounds the control-flow work (loop tests, branch
// picks, routine entries) done inside a single Next call. Without it a
// command-free loop like `while true { }` would never return.
const DefaultControlBudget = 10000

// DefaultExtractLimit bounds the command sequence produced by eager
// extraction, mirroring the state machine's transition limit.
const DefaultExtractLimit = 10000

// frame is one level of the execution stack: a statement block plus a
// cursor into it. Loop body frames carry their while statement so the
// condition is re-tested against the live world after every iteration.
type frame struct {
	stmts []Stmt
	index int
	loop  *WhileStmt
}

// Stepper evaluates a compiled program one primitive command at a time.
// Each call to Next resumes exactly where the previous call left off and
// reads sensors from the world passed in, so a caller can apply each
// yielded command before asking for the next one. A Stepper belongs to one
// run; start a new run with a new Stepper.
type Stepper struct {
	// ControlBudget overrides DefaultControlBudget when positive.
	ControlBudget int

	prog *Program
	stack []frame
	done  bool
}

// NewStepper creates a fresh cursor positioned at the entry routine.
func (p *Program) NewStepper() *Stepper {
	main := p.Routines[EntryPoint]
	st := &Stepper{prog: p}
	if main != nil {
		st.stack = []frame{{stmts: main.Body}}
	}
	return st
}

// Done reports whether the program has run to completion (or failed).
func (s *Stepper) Done() bool {
	return s.done
}

// Next resumes evaluation until the program yields its next primitive
// command. ok is false when the program is complete or an error occurred;
// errors are returned as values and never panic across this boundary.
func (s *Stepper) Next(w *world.World) (cmd command.Command, ok bool, err error) {
	if s.done {
		return 0, false, nil
	}
	defer func() {
		if r := recover(); r != nil {
			s.done = true
			cmd, ok = 0, false
			err = &ExecError{Msg: fmt.Sprintf("evaluation panicked: %v", r)}
		}
	}()

	budget := s.ControlBudget
	if budget <= 0 {
		budget = DefaultControlBudget
	}

	for steps := 0; ; steps++ {
		if steps >= budget {
			s.done = true
			return 0, false, ErrBudgetExceeded
		}
		if len(s.stack) == 0 {
			s.done = true
			return 0, false, nil
		}

		f := &s.stack[len(s.stack)-1]
		if f.index >= len(f.stmts) {
			if f.loop != nil && f.loop.Cond.Eval(w) {
				f.index = 0
				continue
			}
			s.stack = s.stack[:len(s.stack)-1]
			continue
		}

		switch n := f.stmts[f.index].(type) {
		case *ActionStmt:
			f.index++
			return n.Command, true, nil
		case *RoutineCall:
			f.index++
			r := s.prog.Routines[n.Name]
			if r == nil {
				s.done = true
				return 0, false, &ExecError{Msg: fmt.Sprintf("call to undefined routine %q", n.Name)}
			}
			s.stack = append(s.stack, frame{stmts: r.Body})
		case *WhileStmt:
			f.index++
			if n.Cond.Eval(w) {
				s.stack = append(s.stack, frame{stmts: n.Body, loop: n})
			}
		case *IfStmt:
			f.index++
			if n.Cond.Eval(w) {
				s.stack = append(s.stack, frame{stmts: n.Then})
			} else if len(n.Else) > 0 {
				s.stack = append(s.stack, frame{stmts: n.Else})
			}
		default:
			s.done = true
			return 0, false, &ExecError{Msg: fmt.Sprintf("unknown statement %T", n)}
		}
	}
}

// Extract compiles source and eagerly enumerates the primitive command
// sequence the program produces against a scratch copy of w. Blocked
// commands are recorded and leave the scratch world unchanged, exactly as
// the primitives themselves behave. The caller's world is never modified.
func Extract(source string, dialect Dialect, w *world.World, limit int) ([]command.Command, error) {
	prog, err := Compile(source, dialect)
	if err != nil {
		return nil, err
	}
	return prog.Extract(w, limit)
}

// Extract enumerates the program's command sequence against a scratch copy
// of w. A limit of 0 means DefaultExtractLimit.
func (p *Program) Extract(w *world.World, limit int) ([]command.Command, error) {
	if limit <= 0 {
		limit = DefaultExtractLimit
	}
	st := p.NewStepper()
	sim := w
	var cmds []command.Command
	for {
		cmd, ok, err := st.Next(sim)
		if err != nil {
			return cmds, err
		}
		if !ok {
			return cmds, nil
		}
		cmds = append(cmds, cmd)
		if len(cmds) > limit {
			return cmds, ErrBudgetExceeded
		}
		if next, err := cmd.Apply(sim); err == nil {
			sim = next
		}
	}
}

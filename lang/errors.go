package lang

import (
	"errors"
	"fmt"
)

// ErrBudgetExceeded reports an exhausted evaluation budget, treated as a
// probable infinite loop.
var ErrBudgetExceeded = errors.New("lang: step budget exceeded: possible infinite loop")

// ParseError reports malformed source with its position.
type ParseError struct {
	Dialect Dialect
	Pos     Pos
	Msg     string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: parse error at %s: %s", e.Dialect, e.Pos, e.Msg)
}

// NoEntryError reports a program without the required entry routine. The
// message names the spelling expected by the dialect.
type NoEntryError struct {
	Dialect Dialect
}

func (e *NoEntryError) Error() string {
	return fmt.Sprintf("%s: program has no %q routine: expected %s", e.Dialect, EntryPoint, e.Dialect.EntrySpelling())
}

// ExecError reports a failure during evaluation of a compiled program.
type ExecError struct {
	Msg string
}

func (e *ExecError) Error() string {
	return "lang: " + e.Msg
}

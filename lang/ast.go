package lang

import (
	"github.com/kara-xyz/go-kara/command"
	"github.com/kara-xyz/go-kara/world"
)

// Program is a compiled mini-language program: the shared AST every dialect
// parses into. Execution starts at the EntryPoint routine.
type Program struct {
	Dialect  Dialect
	Routines map[string]*Routine
}

// Routine is one named routine body.
type Routine struct {
	Name string
	Pos  Pos
	Body []Stmt
}

// Stmt is a statement node.
type Stmt interface {
	stmtNode()
}

// ActionStmt invokes one primitive robot command.
type ActionStmt struct {
	Command command.Command
	Pos     Pos
}

// RoutineCall invokes another routine defined in the same program.
type RoutineCall struct {
	Name string
	Pos  Pos
}

// WhileStmt repeats its body while the condition holds.
type WhileStmt struct {
	Cond Expr
	Body []Stmt
	Pos  Pos
}

// IfStmt runs Then when the condition holds, otherwise Else. elif/elsif
// chains are desugared into an IfStmt nested in Else.
type IfStmt struct {
	Cond Expr
	Then []Stmt
	Else []Stmt
	Pos  Pos
}

func (*ActionStmt) stmtNode()  {}
func (*RoutineCall) stmtNode() {}
func (*WhileStmt) stmtNode()   {}
func (*IfStmt) stmtNode()      {}

// Expr is a boolean expression node.
type Expr interface {
	// Eval reads the live world; sensor evaluation is total, so no error
	// can escape here.
	Eval(w *world.World) bool
}

// SensorExpr reads one detector.
type SensorExpr struct {
	Detector world.Detector
	Pos      Pos
}

func (e *SensorExpr) Eval(w *world.World) bool {
	return e.Detector.Check(w)
}

// BoolLit is a true/false literal.
type BoolLit struct {
	Value bool
	Pos   Pos
}

func (e *BoolLit) Eval(w *world.World) bool {
	return e.Value
}

// NotExpr negates its operand.
type NotExpr struct {
	X Expr
}

func (e *NotExpr) Eval(w *world.World) bool {
	return !e.X.Eval(w)
}

// AndExpr is a short-circuit conjunction.
type AndExpr struct {
	L, R Expr
}

func (e *AndExpr) Eval(w *world.World) bool {
	return e.L.Eval(w) && e.R.Eval(w)
}

// OrExpr is a short-circuit disjunction.
type OrExpr struct {
	L, R Expr
}

func (e *OrExpr) Eval(w *world.World) bool {
	return e.L.Eval(w) || e.R.Eval(w)
}

// Package command defines the primitive command vocabulary shared by every
// program representation (flat lists, state machine actions, and compiled
// mini-language programs), and a pointer-driven executor for flat command
// lists.
package command

import (
	"fmt"

	"github.com/kara-xyz/go-kara/world"
)

// Command is one primitive robot action.
type Command int

const (
	MoveForward Command = iota
	TurnLeft
	TurnRight
	PickClover
	PlaceClover
)

// Commands returns the full vocabulary in declaration order.
func Commands() []Command {
	return []Command{MoveForward, TurnLeft, TurnRight, PickClover, PlaceClover}
}

// String returns the legacy tool's name for the command. These names appear
// verbatim in the XML interchange format and the mini-language.
func (c Command) String() string {
	switch c {
	case MoveForward:
		return "move"
	case TurnLeft:
		return "turnLeft"
	case TurnRight:
		return "turnRight"
	case PickClover:
		return "removeLeaf"
	default:
		return "putLeaf"
	}
}

// Parse resolves a command by its legacy name.
func Parse(name string) (Command, bool) {
	for _, c := range Commands() {
		if c.String() == name {
			return c, true
		}
	}
	return 0, false
}

// BlockedError reports a primitive that could not be performed. The world
// passed to Apply is unchanged when this error is returned.
type BlockedError struct {
	Command Command
	Reason  string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("cannot %s: %s", e.Command, e.Reason)
}

// Apply executes the command against a world. On success it returns the new
// world; on failure it returns the input world and a *BlockedError
// explaining what blocked the action.
func (c Command) Apply(w *world.World) (*world.World, error) {
	var next *world.World
	switch c {
	case MoveForward:
		next = world.MoveForward(w)
	case TurnLeft:
		return world.TurnLeft(w), nil
	case TurnRight:
		return world.TurnRight(w), nil
	case PickClover:
		next = world.PickClover(w)
	default:
		next = world.PlaceClover(w)
	}
	if next == w {
		return w, &BlockedError{Command: c, Reason: blockReason(c, w)}
	}
	return next, nil
}

// blockReason inspects the world to explain why a command was a no-op.
func blockReason(c Command, w *world.World) string {
	pos := w.Character.Pos
	if pos == world.OffGrid {
		return "the character is not on the grid"
	}
	switch c {
	case MoveForward:
		dx, dy := w.Character.Dir.Delta()
		tx, ty := pos.X+dx, pos.Y+dy
		switch {
		case !w.InBounds(tx, ty):
			return "blocked by the edge of the world"
		case w.Cell(tx, ty) == world.Tree:
			return "blocked by a tree"
		default:
			return "the mushroom cannot be pushed"
		}
	case PickClover:
		return "there is no clover here"
	default:
		if w.Character.Inventory <= 0 {
			return "no clover in inventory"
		}
		return "the cell is not empty"
	}
}

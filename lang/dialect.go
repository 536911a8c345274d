// Package lang implements the Kara mini-language: a restricted imperative
// language over the primitive robot actions and boolean sensors, with
// while loops and if/else conditionals.
//
// The same program can be written in four surface dialects (JavaScript-like
// braces, Python-like indentation, Ruby-like end-terminated blocks, and
// Lua-like while/do blocks). All four parse into one shared AST, which a
// tree-walking stepper evaluates either eagerly against a scratch world or
// one primitive command at a time against the live world, so unbounded
// loops can be paused and resumed without ever unrolling.
package lang

import (
	"github.com/kara-xyz/go-kara/command"
	"github.com/kara-xyz/go-kara/world"
)

// Dialect selects the surface syntax a program is written in.
type Dialect int

const (
	JavaScript Dialect = iota
	Python
	Ruby
	Lua
)

func (d Dialect) String() string {
	switch d {
	case JavaScript:
		return "javascript"
	case Python:
		return "python"
	case Ruby:
		return "ruby"
	default:
		return "lua"
	}
}

// ParseDialect resolves a dialect by name.
func ParseDialect(name string) (Dialect, bool) {
	switch name {
	case "javascript", "js":
		return JavaScript, true
	case "python", "py":
		return Python, true
	case "ruby", "rb":
		return Ruby, true
	case "lua":
		return Lua, true
	}
	return 0, false
}

// EntryPoint is the name of the routine every program must define.
const EntryPoint = "main"

// EntrySpelling returns how the entry routine header is written in this
// dialect, for use in diagnostics.
func (d Dialect) EntrySpelling() string {
	switch d {
	case JavaScript:
		return "function main() { ... }"
	case Python:
		return "def main():"
	case Ruby:
		return "def main ... end"
	default:
		return "function main() ... end"
	}
}

// actionNames maps every accepted surface spelling to its command. The
// camelCase names are the legacy tool's vocabulary; snake_case variants
// serve the Python and Ruby dialects.
var actionNames = map[string]command.Command{
	"move":        command.MoveForward,
	"turnLeft":    command.TurnLeft,
	"turn_left":   command.TurnLeft,
	"turnRight":   command.TurnRight,
	"turn_right":  command.TurnRight,
	"putLeaf":     command.PlaceClover,
	"put_leaf":    command.PlaceClover,
	"removeLeaf":  command.PickClover,
	"remove_leaf": command.PickClover,
}

// sensorNames maps surface spellings to detectors. Ruby's trailing '?' is
// stripped by the parser before lookup.
var sensorNames = map[string]world.Detector{
	"treeFront":      world.TreeFront,
	"tree_front":     world.TreeFront,
	"treeLeft":       world.TreeLeft,
	"tree_left":      world.TreeLeft,
	"treeRight":      world.TreeRight,
	"tree_right":     world.TreeRight,
	"mushroomFront":  world.MushroomFront,
	"mushroom_front": world.MushroomFront,
	"onLeaf":         world.OnLeaf,
	"on_leaf":        world.OnLeaf,
}

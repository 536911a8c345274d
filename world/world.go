// Package world implements the Kara grid world: a rectangular grid of typed
// cells plus a single character with a position, a heading, and an inventory
// of clover markers.
//
// Worlds are immutable values. Every mutating operation returns either a new
// *World with copy-on-write sharing of untouched rows, or the identical input
// pointer when nothing changed. Callers detect a failed action by comparing
// pointers, not by inspecting contents.
package world

import "strings"

// Direction is a heading on the grid. North points toward decreasing Y.
// The four directions form a cyclic group under Left/Right.
type Direction int

const (
	North Direction = iota
	East
	South
	West
)

// Left returns the direction after a 90° counterclockwise turn.
func (d Direction) Left() Direction {
	return (d + 3) % 4
}

// Right returns the direction after a 90° clockwise turn.
func (d Direction) Right() Direction {
	return (d + 1) % 4
}

// Delta returns the unit grid offset for one step in this direction.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case North:
		return 0, -1
	case East:
		return 1, 0
	case South:
		return 0, 1
	default:
		return -1, 0
	}
}

func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case East:
		return "east"
	case South:
		return "south"
	default:
		return "west"
	}
}

// CellType is the content of a single grid cell.
type CellType int

const (
	Empty CellType = iota
	Tree           // impassable, immovable
	Mushroom       // impassable, pushable
	Clover         // walkable marker, pickable and placeable
)

func (c CellType) String() string {
	switch c {
	case Tree:
		return "tree"
	case Mushroom:
		return "mushroom"
	case Clover:
		return "clover"
	default:
		return "empty"
	}
}

// Position is a grid coordinate. X grows east, Y grows south.
type Position struct {
	X int
	Y int
}

// OffGrid is the sentinel position of a character that is not on the grid.
var OffGrid = Position{X: -1, Y: -1}

// Character is the robot: where it stands, where it faces, and how many
// clovers it holds.
type Character struct {
	Pos       Position
	Dir       Direction
	Inventory int
}

// World is a rectangular grid of cells plus one character.
// The zero value is not usable; construct with New or Build.
type World struct {
	Width     int
	Height    int
	Character Character

	// rows is shared between copies; WithCell duplicates only the
	// touched row.
	rows [][]CellType
}

// New creates an empty width×height world with the character off-grid.
func New(width, height int) *World {
	rows := make([][]CellType, height)
	for y := range rows {
		rows[y] = make([]CellType, width)
	}
	return &World{
		Width:     width,
		Height:    height,
		Character: Character{Pos: OffGrid, Dir: North},
		rows:      rows,
	}
}

// InBounds reports whether (x, y) lies on the grid.
func (w *World) InBounds(x, y int) bool {
	return x >= 0 && x < w.Width && y >= 0 && y < w.Height
}

// Cell returns the content of (x, y). Out-of-bounds coordinates read as
// Empty; use InBounds to distinguish.
func (w *World) Cell(x, y int) CellType {
	if !w.InBounds(x, y) {
		return Empty
	}
	return w.rows[y][x]
}

// WithCell returns a world with (x, y) set to c. Only the affected row is
// copied. Setting an out-of-bounds cell or the value already present
// returns the receiver unchanged.
func (w *World) WithCell(x, y int, c CellType) *World {
	if !w.InBounds(x, y) || w.rows[y][x] == c {
		return w
	}
	next := *w
	next.rows = make([][]CellType, len(w.rows))
	copy(next.rows, w.rows)
	row := make([]CellType, len(w.rows[y]))
	copy(row, w.rows[y])
	row[x] = c
	next.rows[y] = row
	return &next
}

// WithCharacter returns a world with the character replaced.
func (w *World) WithCharacter(c Character) *World {
	if w.Character == c {
		return w
	}
	next := *w
	next.Character = c
	return &next
}

// Equal reports structural equality: same dimensions, same cells, same
// character. It ignores row sharing.
func (w *World) Equal(other *World) bool {
	if w == other {
		return true
	}
	if w == nil || other == nil {
		return false
	}
	if w.Width != other.Width || w.Height != other.Height || w.Character != other.Character {
		return false
	}
	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			if w.rows[y][x] != other.rows[y][x] {
				return false
			}
		}
	}
	return true
}

// String renders the grid as ASCII art, one row per line. The character is
// drawn as an arrow over its cell; clover under the character is still shown
// by the arrow.
func (w *World) String() string {
	var b strings.Builder
	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			if w.Character.Pos == (Position{x, y}) {
				b.WriteByte(arrowFor(w.Character.Dir))
				continue
			}
			switch w.rows[y][x] {
			case Tree:
				b.WriteByte('#')
			case Mushroom:
				b.WriteByte('o')
			case Clover:
				b.WriteByte('*')
			default:
				b.WriteByte('.')
			}
		}
		if y < w.Height-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func arrowFor(d Direction) byte {
	switch d {
	case North:
		return '^'
	case East:
		return '>'
	case South:
		return 'v'
	default:
		return '<'
	}
}

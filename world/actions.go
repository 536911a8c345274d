package world

// Action primitives. Each is a pure transformation of a World: it returns a
// new world on success and the identical input pointer when the action
// cannot be performed. Nothing here reports errors; callers that need a
// diagnostic compare pointers and synthesize one (see the fsm package).

// MoveForward advances the character one cell in its heading.
//
// A Tree or the grid edge blocks the move. A Mushroom is pushed one cell
// further if the cell beyond it is in-bounds and empty; otherwise the move
// is blocked. Walking onto a Clover cell leaves the clover in place.
func MoveForward(w *World) *World {
	if w.Character.Pos == OffGrid {
		return w
	}
	dx, dy := w.Character.Dir.Delta()
	tx, ty := w.Character.Pos.X+dx, w.Character.Pos.Y+dy
	if !w.InBounds(tx, ty) {
		return w
	}
	switch w.Cell(tx, ty) {
	case Tree:
		return w
	case Mushroom:
		bx, by := tx+dx, ty+dy
		if !w.InBounds(bx, by) || w.Cell(bx, by) != Empty {
			return w
		}
		next := w.WithCell(bx, by, Mushroom).WithCell(tx, ty, Empty)
		ch := next.Character
		ch.Pos = Position{tx, ty}
		return next.WithCharacter(ch)
	default:
		ch := w.Character
		ch.Pos = Position{tx, ty}
		return w.WithCharacter(ch)
	}
}

// TurnLeft rotates the character 90° counterclockwise. It always succeeds.
func TurnLeft(w *World) *World {
	ch := w.Character
	ch.Dir = ch.Dir.Left()
	return w.WithCharacter(ch)
}

// TurnRight rotates the character 90° clockwise. It always succeeds.
func TurnRight(w *World) *World {
	ch := w.Character
	ch.Dir = ch.Dir.Right()
	return w.WithCharacter(ch)
}

// PickClover removes a clover from the character's cell and adds it to the
// inventory. Fails (input returned) when the cell holds no clover.
func PickClover(w *World) *World {
	p := w.Character.Pos
	if p == OffGrid || w.Cell(p.X, p.Y) != Clover {
		return w
	}
	ch := w.Character
	ch.Inventory++
	return w.WithCell(p.X, p.Y, Empty).WithCharacter(ch)
}

// PlaceClover drops a clover from the inventory onto the character's cell.
// Fails when the cell is not empty or the inventory is exhausted.
func PlaceClover(w *World) *World {
	p := w.Character.Pos
	if p == OffGrid || w.Cell(p.X, p.Y) != Empty || w.Character.Inventory <= 0 {
		return w
	}
	ch := w.Character
	ch.Inventory--
	return w.WithCell(p.X, p.Y, Clover).WithCharacter(ch)
}

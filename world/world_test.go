package world

import "testing"

func TestDirectionCycle(t *testing.T) {
	for _, d := range []Direction{North, East, South, West} {
		if d.Left().Right() != d {
			t.Errorf("%v: Left then Right is not identity", d)
		}
		if d.Right().Left() != d {
			t.Errorf("%v: Right then Left is not identity", d)
		}
		if d.Left().Left().Left().Left() != d {
			t.Errorf("%v: four left turns is not identity", d)
		}
		if d.Right().Right().Right().Right() != d {
			t.Errorf("%v: four right turns is not identity", d)
		}
	}
	if North.Right() != East || East.Right() != South || South.Right() != West || West.Right() != North {
		t.Error("right turn does not follow N->E->S->W->N")
	}
}

func TestNewWorldCharacterOffGrid(t *testing.T) {
	w := New(4, 3)
	if w.Width != 4 || w.Height != 3 {
		t.Fatalf("expected 4x3 world, got %dx%d", w.Width, w.Height)
	}
	if w.Character.Pos != OffGrid {
		t.Errorf("expected off-grid character, got %v", w.Character.Pos)
	}
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			if w.Cell(x, y) != Empty {
				t.Errorf("cell (%d,%d) not empty", x, y)
			}
		}
	}
}

func TestWithCellCopyOnWrite(t *testing.T) {
	w := New(3, 3)
	w2 := w.WithCell(1, 1, Tree)
	if w2 == w {
		t.Fatal("WithCell returned the same world for a real change")
	}
	if w.Cell(1, 1) != Empty {
		t.Error("original world mutated")
	}
	if w2.Cell(1, 1) != Tree {
		t.Error("new world missing tree")
	}

	// Writing the value already present is a no-op.
	if w2.WithCell(1, 1, Tree) != w2 {
		t.Error("no-op write allocated a new world")
	}
	// Out-of-bounds writes are no-ops.
	if w.WithCell(-1, 0, Tree) != w || w.WithCell(0, 3, Tree) != w {
		t.Error("out-of-bounds write allocated a new world")
	}
}

func TestMoveForwardEmpty(t *testing.T) {
	for _, d := range []Direction{North, East, South, West} {
		w := Build(5, 5).Kara(2, 2, d).Done()
		moved := MoveForward(w)
		if moved == w {
			t.Fatalf("%v: move blocked on empty grid", d)
		}
		dx, dy := d.Delta()
		want := Position{2 + dx, 2 + dy}
		if moved.Character.Pos != want {
			t.Errorf("%v: expected %v, got %v", d, want, moved.Character.Pos)
		}
		// Only the position changed.
		if moved.Character.Dir != d || moved.Character.Inventory != 0 {
			t.Errorf("%v: move changed more than the position", d)
		}
	}
}

func TestMoveForwardBlockedByTree(t *testing.T) {
	// A tree directly north of the character.
	w := Build(5, 5).Tree(2, 1).Kara(2, 2, North).Done()
	if MoveForward(w) != w {
		t.Error("expected identical world when a tree blocks the move")
	}
}

func TestMoveForwardBlockedByEdge(t *testing.T) {
	w := Build(5, 5).Kara(2, 0, North).Done()
	if MoveForward(w) != w {
		t.Error("expected identical world at the grid edge")
	}
}

func TestMoveForwardPushesMushroom(t *testing.T) {
	// A mushroom ahead with an empty cell beyond it.
	w := Build(5, 5).Mushroom(2, 1).Kara(2, 2, North).Done()
	moved := MoveForward(w)
	if moved == w {
		t.Fatal("push failed")
	}
	if moved.Character.Pos != (Position{2, 1}) {
		t.Errorf("character at %v, want (2,1)", moved.Character.Pos)
	}
	if moved.Cell(2, 0) != Mushroom {
		t.Error("mushroom not pushed to (2,0)")
	}
	if moved.Cell(2, 1) != Empty {
		t.Error("mushroom's old cell not cleared")
	}
}

func TestMoveForwardUnpushableMushroom(t *testing.T) {
	// Mushroom at the edge: nothing beyond it.
	edge := Build(5, 5).Mushroom(2, 0).Kara(2, 1, North).Done()
	if MoveForward(edge) != edge {
		t.Error("mushroom pushed off-grid")
	}
	// Mushroom backed by a tree.
	tree := Build(5, 5).Tree(2, 0).Mushroom(2, 1).Kara(2, 2, North).Done()
	if MoveForward(tree) != tree {
		t.Error("mushroom pushed into a tree")
	}
	// Mushroom backed by another mushroom.
	pair := Build(5, 5).Mushroom(2, 0).Mushroom(2, 1).Kara(2, 2, North).Done()
	if MoveForward(pair) != pair {
		t.Error("mushroom pushed into another mushroom")
	}
}

func TestMoveForwardOntoClover(t *testing.T) {
	w := Build(5, 5).Clover(2, 1).Kara(2, 2, North).Done()
	moved := MoveForward(w)
	if moved == w {
		t.Fatal("clover blocked the move")
	}
	if moved.Cell(2, 1) != Clover {
		t.Error("standing on a clover removed it")
	}
}

func TestPickPlaceRoundTrip(t *testing.T) {
	w := Build(5, 5).Clover(2, 2).Kara(2, 2, North).Done()

	picked := PickClover(w)
	if picked == w {
		t.Fatal("pick failed on a clover cell")
	}
	if picked.Cell(2, 2) != Empty || picked.Character.Inventory != 1 {
		t.Fatalf("pick left cell=%v inventory=%d", picked.Cell(2, 2), picked.Character.Inventory)
	}

	placed := PlaceClover(picked)
	if placed == picked {
		t.Fatal("place failed after pick")
	}
	if !placed.Equal(w) {
		t.Error("pick then place did not restore the original world")
	}
}

func TestPickCloverFailures(t *testing.T) {
	w := Build(5, 5).Kara(2, 2, North).Done()
	if PickClover(w) != w {
		t.Error("pick succeeded on an empty cell")
	}
}

func TestPlaceCloverFailures(t *testing.T) {
	// Empty inventory.
	w := Build(5, 5).Kara(2, 2, North).Done()
	if PlaceClover(w) != w {
		t.Error("place succeeded with no clover in inventory")
	}
	// Cell already occupied.
	occupied := Build(5, 5).Clover(2, 2).Kara(2, 2, North).Inventory(1).Done()
	if PlaceClover(occupied) != occupied {
		t.Error("place succeeded onto a non-empty cell")
	}
}

func TestTurnsDoNotMove(t *testing.T) {
	w := Build(5, 5).Kara(2, 2, North).Done()
	left := TurnLeft(w)
	if left == w {
		t.Fatal("turn reported failure")
	}
	if left.Character.Pos != w.Character.Pos || left.Character.Dir != West {
		t.Errorf("turn left: pos=%v dir=%v", left.Character.Pos, left.Character.Dir)
	}
	right := TurnRight(w)
	if right.Character.Dir != East {
		t.Errorf("turn right: dir=%v", right.Character.Dir)
	}
}

package world

import "testing"

func TestTreeDetectors(t *testing.T) {
	w := Build(5, 5).
		Tree(2, 1). // north of character
		Tree(1, 2). // west of character
		Kara(2, 2, North).
		Done()

	if !TreeFront.Check(w) {
		t.Error("treeFront should see the tree to the north")
	}
	if !TreeLeft.Check(w) {
		t.Error("treeLeft should see the tree to the west")
	}
	if TreeRight.Check(w) {
		t.Error("treeRight sees a tree where there is none")
	}

	// Detectors are relative to the heading.
	turned := TurnRight(w) // facing east; the west tree is now behind
	if TreeFront.Check(turned) {
		t.Error("treeFront after turning east")
	}
	if !TreeLeft.Check(turned) {
		t.Error("treeLeft should see the north tree after turning east")
	}
}

func TestEdgeCountsAsTree(t *testing.T) {
	w := Build(3, 3).Kara(0, 0, North).Done()
	if !TreeFront.Check(w) {
		t.Error("grid edge ahead should read as blocked")
	}
	if !TreeLeft.Check(w) {
		t.Error("grid edge on the left should read as blocked")
	}
	if TreeRight.Check(w) {
		t.Error("open cell on the right misread as blocked")
	}
}

func TestMushroomFront(t *testing.T) {
	w := Build(5, 5).Mushroom(2, 1).Kara(2, 2, North).Done()
	if !MushroomFront.Check(w) {
		t.Error("mushroomFront missed the mushroom")
	}
	// Out of bounds reads as absent, not blocked.
	edge := Build(3, 3).Kara(1, 0, North).Done()
	if MushroomFront.Check(edge) {
		t.Error("mushroomFront true at the grid edge")
	}
}

func TestOnLeaf(t *testing.T) {
	w := Build(5, 5).Clover(2, 2).Kara(2, 2, North).Done()
	if !OnLeaf.Check(w) {
		t.Error("onLeaf false while standing on a clover")
	}
	if OnLeaf.Check(MoveForward(w)) {
		t.Error("onLeaf true after stepping off the clover")
	}
}

func TestOffGridCharacterReadsFalse(t *testing.T) {
	w := New(3, 3)
	for _, d := range Detectors() {
		if d.Check(w) {
			t.Errorf("%v true with no character on the grid", d)
		}
	}
}

func TestActiveDetectorsOrder(t *testing.T) {
	w := Build(5, 5).
		Tree(2, 1).
		Clover(2, 2).
		Kara(2, 2, North).
		Done()
	active := ActiveDetectors(w)
	if len(active) != 2 || active[0] != TreeFront || active[1] != OnLeaf {
		t.Errorf("expected [treeFront onLeaf], got %v", active)
	}
}

func TestParseDetector(t *testing.T) {
	for _, d := range Detectors() {
		got, ok := ParseDetector(d.String())
		if !ok || got != d {
			t.Errorf("ParseDetector(%q) = %v, %v", d.String(), got, ok)
		}
	}
	if _, ok := ParseDetector("lavaFront"); ok {
		t.Error("unknown detector name parsed")
	}
}

package world

// Detector is a boolean sensor probing one cell relative to the character.
// The tree detectors treat the grid edge as blocked; MushroomFront treats it
// as absent. A character that is off-grid reads every detector as false.
type Detector int

const (
	TreeFront Detector = iota
	TreeLeft
	TreeRight
	MushroomFront
	OnLeaf
)

// Detectors returns all detectors in their canonical declaration order.
func Detectors() []Detector {
	return []Detector{TreeFront, TreeLeft, TreeRight, MushroomFront, OnLeaf}
}

func (d Detector) String() string {
	switch d {
	case TreeFront:
		return "treeFront"
	case TreeLeft:
		return "treeLeft"
	case TreeRight:
		return "treeRight"
	case MushroomFront:
		return "mushroomFront"
	default:
		return "onLeaf"
	}
}

// Describe returns the human-readable reading used in diagnostics, e.g.
// "tree in front".
func (d Detector) Describe() string {
	switch d {
	case TreeFront:
		return "tree in front"
	case TreeLeft:
		return "tree on the left"
	case TreeRight:
		return "tree on the right"
	case MushroomFront:
		return "mushroom in front"
	default:
		return "standing on a clover"
	}
}

// ParseDetector resolves a detector by its canonical name.
func ParseDetector(name string) (Detector, bool) {
	for _, d := range Detectors() {
		if d.String() == name {
			return d, true
		}
	}
	return 0, false
}

// Check evaluates the detector against a world.
func (d Detector) Check(w *World) bool {
	pos := w.Character.Pos
	if pos == OffGrid {
		return false
	}
	switch d {
	case TreeFront:
		return treeAt(w, w.Character.Dir)
	case TreeLeft:
		return treeAt(w, w.Character.Dir.Left())
	case TreeRight:
		return treeAt(w, w.Character.Dir.Right())
	case MushroomFront:
		dx, dy := w.Character.Dir.Delta()
		return w.Cell(pos.X+dx, pos.Y+dy) == Mushroom
	default:
		return w.Cell(pos.X, pos.Y) == Clover
	}
}

// ActiveDetectors returns the detectors currently reading true, in
// canonical order. Used by stuck-state diagnostics.
func ActiveDetectors(w *World) []Detector {
	var active []Detector
	for _, d := range Detectors() {
		if d.Check(w) {
			active = append(active, d)
		}
	}
	return active
}

func treeAt(w *World, dir Direction) bool {
	dx, dy := dir.Delta()
	x, y := w.Character.Pos.X+dx, w.Character.Pos.Y+dy
	if !w.InBounds(x, y) {
		return true
	}
	return w.Cell(x, y) == Tree
}

package world

// Builder provides a fluent API for constructing worlds in tests and tools.
//
// Example:
//
//	w := world.Build(5, 5).
//	    Tree(2, 1).
//	    Mushroom(3, 3).
//	    Clover(1, 1).
//	    Kara(2, 2, world.North).
//	    Done()
type Builder struct {
	w *World
}

// Build creates a Builder for an empty width×height world.
func Build(width, height int) *Builder {
	return &Builder{w: New(width, height)}
}

// Tree places a tree at (x, y).
func (b *Builder) Tree(x, y int) *Builder {
	b.w = b.w.WithCell(x, y, Tree)
	return b
}

// Mushroom places a mushroom at (x, y).
func (b *Builder) Mushroom(x, y int) *Builder {
	b.w = b.w.WithCell(x, y, Mushroom)
	return b
}

// Clover places a clover at (x, y).
func (b *Builder) Clover(x, y int) *Builder {
	b.w = b.w.WithCell(x, y, Clover)
	return b
}

// Kara positions the character at (x, y) facing dir.
func (b *Builder) Kara(x, y int, dir Direction) *Builder {
	ch := b.w.Character
	ch.Pos = Position{x, y}
	ch.Dir = dir
	b.w = b.w.WithCharacter(ch)
	return b
}

// Inventory sets the number of clovers the character holds.
func (b *Builder) Inventory(n int) *Builder {
	ch := b.w.Character
	ch.Inventory = n
	b.w = b.w.WithCharacter(ch)
	return b
}

// Done returns the constructed world.
func (b *Builder) Done() *World {
	return b.w
}

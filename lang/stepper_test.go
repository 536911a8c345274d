package lang

import (
	"errors"
	"testing"

	"github.com/kara-xyz/go-kara/command"
	"github.com/kara-xyz/go-kara/world"
)

// marchSources is the same program in all four dialects: walk forward
// until a tree blocks the way.
var marchSources = map[Dialect]string{
	JavaScript: "function main() {\n  while (!treeFront()) {\n    move();\n  }\n}\n",
	Python:     "def main():\n    while not tree_front():\n        move()\n",
	Ruby:       "def main\n  while not tree_front?\n    move\n  end\nend\n",
	Lua:        "function main()\n  while not tree_front() do\n    move()\n  end\nend\n",
}

func TestExtractMarchToWall(t *testing.T) {
	w := world.Build(5, 1).
		Tree(4, 0).
		Kara(0, 0, world.East).
		Done()

	for d, src := range marchSources {
		cmds, err := Extract(src, d, w, 0)
		if err != nil {
			t.Fatalf("%s: Extract: %v", d, err)
		}
		if len(cmds) != 3 {
			t.Fatalf("%s: got %d commands, want 3: %v", d, len(cmds), cmds)
		}
		for i, cmd := range cmds {
			if cmd != command.MoveForward {
				t.Errorf("%s: cmds[%d] = %v, want move", d, i, cmd)
			}
		}
	}
}

func TestExtractLeavesCallerWorldUntouched(t *testing.T) {
	w := world.Build(5, 1).
		Tree(4, 0).
		Kara(0, 0, world.East).
		Done()
	before := w.Character

	if _, err := Extract(marchSources[Python], Python, w, 0); err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if w.Character != before {
		t.Errorf("caller's world changed: %+v", w.Character)
	}
}

func TestExtractRecordsBlockedCommands(t *testing.T) {
	// Kara starts against the tree, so every move is blocked and yet every
	// one still appears in the sequence.
	w := world.Build(5, 1).
		Tree(1, 0).
		Kara(0, 0, world.East).
		Done()
	src := "def main():\n    move()\n    move()\n    move()\n"

	cmds, err := Extract(src, Python, w, 0)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(cmds) != 3 {
		t.Fatalf("got %d commands, want 3: %v", len(cmds), cmds)
	}
}

func TestExtractRoutineCalls(t *testing.T) {
	src := "function turnAround() {\n  turnLeft();\n  turnLeft();\n}\n" +
		"function main() {\n  move();\n  turnAround();\n  move();\n}\n"
	w := world.Build(5, 1).Kara(2, 0, world.East).Done()

	cmds, err := Extract(src, JavaScript, w, 0)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	want := []command.Command{
		command.MoveForward,
		command.TurnLeft,
		command.TurnLeft,
		command.MoveForward,
	}
	if len(cmds) != len(want) {
		t.Fatalf("got %v, want %v", cmds, want)
	}
	for i := range want {
		if cmds[i] != want[i] {
			t.Fatalf("got %v, want %v", cmds, want)
		}
	}
}

func TestExtractBranching(t *testing.T) {
	src := "def main():\n    if on_leaf():\n        remove_leaf()\n    elif tree_front():\n        turn_left()\n    else:\n        move()\n"

	cases := []struct {
		name string
		w    *world.World
		want command.Command
	}{
		{
			name: "on leaf",
			w:    world.Build(3, 1).Clover(1, 0).Kara(1, 0, world.East).Done(),
			want: command.PickClover,
		},
		{
			name: "tree ahead",
			w:    world.Build(3, 1).Tree(2, 0).Kara(1, 0, world.East).Done(),
			want: command.TurnLeft,
		},
		{
			name: "open field",
			w:    world.Build(3, 1).Kara(1, 0, world.East).Done(),
			want: command.MoveForward,
		},
	}
	for _, tc := range cases {
		cmds, err := Extract(src, Python, tc.w, 0)
		if err != nil {
			t.Fatalf("%s: Extract: %v", tc.name, err)
		}
		if len(cmds) != 1 || cmds[0] != tc.want {
			t.Errorf("%s: got %v, want [%v]", tc.name, cmds, tc.want)
		}
	}
}

func TestExtractLimit(t *testing.T) {
	src := "function main() {\n  while (true) {\n    turnLeft();\n  }\n}\n"
	w := world.Build(3, 1).Kara(0, 0, world.East).Done()

	cmds, err := Extract(src, JavaScript, w, 5)
	if !errors.Is(err, ErrBudgetExceeded) {
		t.Fatalf("err = %v, want ErrBudgetExceeded", err)
	}
	if len(cmds) < 5 {
		t.Errorf("got only %d commands before the limit", len(cmds))
	}
}

func TestStepperCommandFreeLoop(t *testing.T) {
	src := "function main() {\n  while (true) {\n  }\n}\n"
	prog, err := Compile(src, JavaScript)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	w := world.Build(3, 1).Kara(0, 0, world.East).Done()

	st := prog.NewStepper()
	if _, _, err := st.Next(w); !errors.Is(err, ErrBudgetExceeded) {
		t.Fatalf("err = %v, want ErrBudgetExceeded", err)
	}
	if !st.Done() {
		t.Error("stepper not done after a budget failure")
	}
}

func TestStepperResumesAgainstLiveWorld(t *testing.T) {
	prog, err := Compile(marchSources[Lua], Lua)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	w := world.Build(5, 1).
		Tree(3, 0).
		Kara(0, 0, world.East).
		Done()

	st := prog.NewStepper()
	moves := 0
	for {
		cmd, ok, err := st.Next(w)
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		moves++
		next, err := cmd.Apply(w)
		if err != nil {
			t.Fatalf("Apply %v: %v", cmd, err)
		}
		w = next
	}
	if moves != 2 {
		t.Errorf("yielded %d moves, want 2", moves)
	}
	if want := (world.Position{X: 2, Y: 0}); w.Character.Pos != want {
		t.Errorf("finished at %+v, want %+v", w.Character.Pos, want)
	}
	if !st.Done() {
		t.Error("stepper not done after completion")
	}
	if _, ok, err := st.Next(w); ok || err != nil {
		t.Errorf("Next after completion = (%v, %v), want no more commands", ok, err)
	}
}

func TestStepperObservesWorldChanges(t *testing.T) {
	// The loop condition reads the world passed to each Next call, so
	// dropping a clover under Kara mid-run ends the loop.
	src := "def main():\n    while not on_leaf():\n        turn_left()\n"
	prog, err := Compile(src, Python)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	w := world.Build(3, 1).Kara(1, 0, world.East).Done()

	st := prog.NewStepper()
	if _, ok, err := st.Next(w); !ok || err != nil {
		t.Fatalf("first Next = (%v, %v), want a command", ok, err)
	}

	leafed := w.WithCell(1, 0, world.Clover)
	if _, ok, err := st.Next(leafed); ok || err != nil {
		t.Errorf("Next on leafed world = (%v, %v), want completion", ok, err)
	}
}

func TestStepperShortCircuit(t *testing.T) {
	src := "def main():\n    while not tree_front() and not on_leaf():\n        move()\n"
	w := world.Build(5, 1).
		Clover(2, 0).
		Kara(0, 0, world.East).
		Done()

	cmds, err := Extract(src, Python, w, 0)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(cmds) != 2 {
		t.Errorf("got %d commands, want 2 (stop on the clover): %v", len(cmds), cmds)
	}
}

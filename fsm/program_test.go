package fsm

import (
	"errors"
	"testing"

	"github.com/kara-xyz/go-kara/command"
	"github.com/kara-xyz/go-kara/world"
)

func TestNewProgramHasStopState(t *testing.T) {
	p := New()
	stop := p.State(p.StopID)
	if stop == nil {
		t.Fatal("stop state missing")
	}
	if len(stop.Transitions) != 0 {
		t.Error("stop state has transitions")
	}
	if p.StartID != "" {
		t.Error("fresh program has a start state")
	}
}

func TestStopStateRejectsTransitions(t *testing.T) {
	p := New()
	err := p.AddTransition(p.StopID, &Transition{ID: "t1", Target: p.StopID})
	if !errors.Is(err, ErrStopTransition) {
		t.Errorf("expected ErrStopTransition, got %v", err)
	}
}

func TestRemoveStateCleansUp(t *testing.T) {
	p := New()
	if _, err := p.AddState("a", "A"); err != nil {
		t.Fatal(err)
	}
	if _, err := p.AddState("b", "B"); err != nil {
		t.Fatal(err)
	}
	if err := p.AddTransition("a", &Transition{ID: "t1", Target: "b"}); err != nil {
		t.Fatal(err)
	}
	if err := p.AddTransition("b", &Transition{ID: "t2", Target: "a"}); err != nil {
		t.Fatal(err)
	}
	if err := p.SetStart("b"); err != nil {
		t.Fatal(err)
	}

	if err := p.RemoveState("b"); err != nil {
		t.Fatal(err)
	}
	if p.State("b") != nil {
		t.Error("state b still present")
	}
	if p.StartID != "" {
		t.Error("start id not cleared after removing the start state")
	}
	for _, tr := range p.State("a").Transitions {
		if tr.Target == "b" {
			t.Error("transition targeting removed state survived")
		}
	}
}

func TestRemoveStopStateFails(t *testing.T) {
	p := New()
	if err := p.RemoveState(p.StopID); !errors.Is(err, ErrRemoveStop) {
		t.Errorf("expected ErrRemoveStop, got %v", err)
	}
}

func TestDuplicateStateID(t *testing.T) {
	p := New()
	if _, err := p.AddState("a", "A"); err != nil {
		t.Fatal(err)
	}
	if _, err := p.AddState("a", "A again"); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("expected ErrDuplicateID, got %v", err)
	}
}

func TestTransitionMatching(t *testing.T) {
	treeAhead := world.Build(5, 5).Tree(2, 1).Kara(2, 2, world.North).Done()
	open := world.Build(5, 5).Kara(2, 2, world.North).Done()

	wildcard := &Transition{ID: "t1", Target: "stop"}
	if !wildcard.Matches(treeAhead) || !wildcard.Matches(open) {
		t.Error("all-wildcard transition should match any world")
	}

	needsTree := &Transition{
		ID:         "t2",
		Target:     "stop",
		Conditions: map[world.Detector]Condition{world.TreeFront: Yes},
	}
	if !needsTree.Matches(treeAhead) {
		t.Error("treeFront=yes should match with a tree ahead")
	}
	if needsTree.Matches(open) {
		t.Error("treeFront=yes matched an open world")
	}

	needsClear := &Transition{
		ID:         "t3",
		Target:     "stop",
		Conditions: map[world.Detector]Condition{world.TreeFront: No},
	}
	if needsClear.Matches(treeAhead) {
		t.Error("treeFront=no matched with a tree ahead")
	}
}

func TestBuilder(t *testing.T) {
	p, err := Build().
		State("find", "Find clover").
		When(If(world.OnLeaf, Yes)).
		Do(command.PickClover).
		GoTo("stop").
		When(If(world.TreeFront, No)).
		Do(command.MoveForward).
		GoTo("find").
		Start("find").
		Done()
	if err != nil {
		t.Fatal(err)
	}
	if p.StartID != "find" {
		t.Errorf("start id %q", p.StartID)
	}
	find := p.State("find")
	if find == nil || len(find.Transitions) != 2 {
		t.Fatalf("find state malformed: %+v", find)
	}
	// Declaration order is the tie-break order.
	if find.Transitions[0].Condition(world.OnLeaf) != Yes {
		t.Error("transitions out of declaration order")
	}
}

func TestBuilderErrors(t *testing.T) {
	if _, err := Build().State("a", "A").When(ConditionSet{}).Done(); err == nil {
		t.Error("open transition without GoTo accepted")
	}
	if _, err := Build().When(ConditionSet{}).Done(); err == nil {
		t.Error("When before State accepted")
	}
	if _, err := Build().State("a", "A").GoTo("stop").Done(); err == nil {
		t.Error("GoTo without When accepted")
	}
}

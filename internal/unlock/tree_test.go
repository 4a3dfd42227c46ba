package unlock

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/papapumpkin/idlecore/internal/bignum"
	"github.com/papapumpkin/idlecore/internal/clock"
	"github.com/papapumpkin/idlecore/internal/events"
)

var epoch = time.Unix(1_700_000_000, 0)

// nodeSpec is (id, tier, cost, requires...).
type nodeSpec struct {
	id       string
	tier     int32
	cost     float64
	requires []string
}

func buildTree(t *testing.T, specs []nodeSpec) *Tree {
	t.Helper()
	tr := NewTree(clock.NewFake(epoch))
	for _, s := range specs {
		if !tr.AddNode(Node{ID: s.id, Tier: s.tier, Cost: bignum.New(s.cost)}) {
			t.Fatalf("AddNode(%q) = false", s.id)
		}
	}
	for _, s := range specs {
		for _, req := range s.requires {
			if !tr.AddRequirement(s.id, req) {
				t.Fatalf("AddRequirement(%q, %q) = false", s.id, req)
			}
		}
	}
	return tr
}

func ids(ns []*Node) []string {
	out := make([]string, 0, len(ns))
	for _, n := range ns {
		out = append(out, n.ID)
	}
	return out
}

func TestAddNode(t *testing.T) {
	t.Parallel()

	tr := NewTree(nil)
	n := Node{ID: "a", Name: "Alpha", Cost: bignum.New(5)}
	if !tr.AddNode(n) {
		t.Fatal("AddNode returned false")
	}
	if tr.AddNode(Node{ID: "a"}) {
		t.Error("duplicate AddNode returned true")
	}
	n.Name = "changed"
	if got := tr.Node("a").Name; got != "Alpha" {
		t.Errorf("stored node aliases caller value: Name = %q", got)
	}
	if tr.Len() != 1 {
		t.Errorf("Len() = %d, want 1", tr.Len())
	}
	if tr.Node("missing") != nil {
		t.Error("Node(missing) != nil")
	}
}

func TestAddRequirementCycles(t *testing.T) {
	t.Parallel()

	t.Run("three node cycle", func(t *testing.T) {
		t.Parallel()
		tr := buildTree(t, []nodeSpec{{id: "a"}, {id: "b"}, {id: "c"}})
		if !tr.AddRequirement("b", "a") {
			t.Fatal("b requires a rejected")
		}
		if !tr.AddRequirement("c", "b") {
			t.Fatal("c requires b rejected")
		}
		if tr.AddRequirement("a", "c") {
			t.Fatal("a requires c accepted; closes a -> c -> b -> a")
		}
		if got := tr.Requirements("a"); len(got) != 0 {
			t.Errorf("rejected edge was recorded: %v", got)
		}
	})

	t.Run("self edge", func(t *testing.T) {
		t.Parallel()
		tr := buildTree(t, []nodeSpec{{id: "a"}})
		if tr.AddRequirement("a", "a") {
			t.Error("self requirement accepted")
		}
	})

	t.Run("missing nodes", func(t *testing.T) {
		t.Parallel()
		tr := buildTree(t, []nodeSpec{{id: "a"}})
		if tr.AddRequirement("a", "ghost") || tr.AddRequirement("ghost", "a") {
			t.Error("edge with missing endpoint accepted")
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		t.Parallel()
		tr := buildTree(t, []nodeSpec{{id: "a"}, {id: "b"}})
		for range 3 {
			if !tr.AddRequirement("b", "a") {
				t.Fatal("repeated AddRequirement returned false")
			}
		}
		if diff := cmp.Diff([]string{"a"}, tr.Requirements("b")); diff != "" {
			t.Errorf("Requirements(b) mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("diamond is not a cycle", func(t *testing.T) {
		t.Parallel()
		tr := buildTree(t, []nodeSpec{
			{id: "root"},
			{id: "left", requires: []string{"root"}},
			{id: "right", requires: []string{"root"}},
			{id: "top", requires: []string{"left", "right"}},
		})
		if tr.AddRequirement("root", "top") {
			t.Error("root requires top accepted")
		}
		if diff := cmp.Diff([]string{"left", "right", "root"}, tr.AllRequirements("top")); diff != "" {
			t.Errorf("AllRequirements(top) mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestUnlockGating(t *testing.T) {
	t.Parallel()

	tr := buildTree(t, []nodeSpec{
		{id: "base", cost: 100},
		{id: "adv", cost: 200, requires: []string{"base"}},
	})
	points := bignum.New(500)

	if tr.CanUnlock("adv", points) {
		t.Fatal("adv unlockable before base")
	}
	if !tr.CanUnlock("base", points) {
		t.Fatal("base not unlockable with 500 points")
	}
	if !tr.Unlock("base") {
		t.Fatal("Unlock(base) = false")
	}
	if !tr.CanUnlock("adv", points) {
		t.Error("adv not unlockable after base")
	}
	if tr.CanUnlock("adv", bignum.New(199)) {
		t.Error("adv unlockable with 199 points")
	}
	if tr.CanUnlock("base", points) {
		t.Error("already unlocked base reported unlockable")
	}
	if tr.Unlock("base") {
		t.Error("second Unlock(base) = true")
	}
	if got := tr.Node("base").UnlockTime; got != epoch.Unix() {
		t.Errorf("UnlockTime = %d, want %d", got, epoch.Unix())
	}
}

func TestUnlockIgnoresCost(t *testing.T) {
	t.Parallel()
	tr := buildTree(t, []nodeSpec{{id: "pricey", cost: 1e9}})
	if !tr.Unlock("pricey") {
		t.Error("Unlock should not check affordability")
	}
	if tr.Unlock("ghost") {
		t.Error("Unlock(ghost) = true")
	}
}

func TestRemoveNodeLeavesDanglingRequirement(t *testing.T) {
	t.Parallel()

	tr := buildTree(t, []nodeSpec{
		{id: "base"},
		{id: "adv", requires: []string{"base"}},
	})
	tr.Unlock("base")
	if !tr.RemoveNode("base") {
		t.Fatal("RemoveNode(base) = false")
	}
	if tr.RemoveNode("base") {
		t.Error("second RemoveNode = true")
	}
	if diff := cmp.Diff([]string{"base"}, tr.Requirements("adv")); diff != "" {
		t.Errorf("dangling requirement scrubbed (-want +got):\n%s", diff)
	}
	if tr.RequirementsMet("adv") {
		t.Error("requirement on a removed node reported met")
	}
}

func TestRemoveRequirement(t *testing.T) {
	t.Parallel()
	tr := buildTree(t, []nodeSpec{{id: "a"}, {id: "b", requires: []string{"a"}}})
	if !tr.RemoveRequirement("b", "a") {
		t.Fatal("RemoveRequirement = false")
	}
	if tr.RemoveRequirement("b", "a") {
		t.Error("second RemoveRequirement = true")
	}
	if !tr.AddRequirement("a", "b") {
		t.Error("reverse edge rejected after removal")
	}
}

func TestQueries(t *testing.T) {
	t.Parallel()

	tr := buildTree(t, []nodeSpec{
		{id: "speed", tier: 0, cost: 10},
		{id: "luck", tier: 0, cost: 50},
		{id: "power", tier: 1, cost: 100, requires: []string{"speed"}},
		{id: "haste", tier: 1, cost: 100, requires: []string{"speed"}},
		{id: "mastery", tier: 2, cost: 1000, requires: []string{"power", "luck"}},
	})

	if diff := cmp.Diff([]string{"haste", "power"}, tr.Dependents("speed")); diff != "" {
		t.Errorf("Dependents(speed) mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"power", "luck"}, tr.Requirements("mastery")); diff != "" {
		t.Errorf("Requirements(mastery) mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"speed"}, ids(tr.Available(bignum.New(20)))); diff != "" {
		t.Errorf("Available(20) mismatch (-want +got):\n%s", diff)
	}

	tr.Unlock("speed")
	if diff := cmp.Diff([]string{"luck", "haste", "power"}, ids(tr.Available(bignum.New(500)))); diff != "" {
		t.Errorf("Available(500) mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"speed"}, ids(tr.Unlocked())); diff != "" {
		t.Errorf("Unlocked() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"luck", "haste", "power", "mastery"}, ids(tr.Locked())); diff != "" {
		t.Errorf("Locked() mismatch (-want +got):\n%s", diff)
	}
	if got := tr.Progress(); got != 0.2 {
		t.Errorf("Progress() = %v, want 0.2", got)
	}
}

func TestProgressEmptyTree(t *testing.T) {
	t.Parallel()
	if got := NewTree(nil).Progress(); got != 1 {
		t.Errorf("Progress() on empty tree = %v, want 1", got)
	}
}

func TestResetAndEvents(t *testing.T) {
	t.Parallel()

	tr := buildTree(t, []nodeSpec{
		{id: "a"},
		{id: "b", requires: []string{"a"}},
		{id: "c"},
	})
	var got []string
	tr.Events().Subscribe(func(e events.Event) {
		got = append(got, string(e.Kind)+":"+e.Subject)
	})

	tr.Unlock("a")
	tr.Unlock("b")
	tr.Lock("b")
	tr.Lock("b")
	tr.Unlock("b")
	tr.Reset()

	want := []string{
		"node_unlocked:a",
		"node_unlocked:b",
		"node_locked:b",
		"node_unlocked:b",
		"node_locked:a",
		"node_locked:b",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
	if tr.Progress() != 0 {
		t.Errorf("Progress() after Reset = %v, want 0", tr.Progress())
	}
	if tr.Node("a").UnlockTime != 0 {
		t.Error("Reset kept unlock time")
	}
	if diff := cmp.Diff([]string{"a"}, tr.Requirements("b")); diff != "" {
		t.Errorf("Reset dropped edges (-want +got):\n%s", diff)
	}
}

func TestUnlockOrder(t *testing.T) {
	t.Parallel()

	tr := buildTree(t, []nodeSpec{
		{id: "z-root", tier: 0},
		{id: "a-root", tier: 0},
		{id: "late", tier: 3},
		{id: "mid", tier: 1, requires: []string{"z-root"}},
		{id: "top", tier: 2, requires: []string{"mid", "a-root"}},
	})
	got, err := tr.UnlockOrder()
	if err != nil {
		t.Fatalf("UnlockOrder: %v", err)
	}
	want := []string{"a-root", "z-root", "late", "mid", "top"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("UnlockOrder mismatch (-want +got):\n%s", diff)
	}
}

func TestUnlockOrderDetectsCorruptCycle(t *testing.T) {
	t.Parallel()
	tr := buildTree(t, []nodeSpec{{id: "a"}, {id: "b", requires: []string{"a"}}})
	// Bypass AddRequirement to simulate corrupt data.
	tr.requirements["a"] = []string{"b"}
	if _, err := tr.UnlockOrder(); !errors.Is(err, ErrCycle) {
		t.Errorf("UnlockOrder error = %v, want ErrCycle", err)
	}
}

func TestStateRoundTrip(t *testing.T) {
	t.Parallel()

	tr := buildTree(t, []nodeSpec{
		{id: "a", cost: 10},
		{id: "b", tier: 1, cost: 20, requires: []string{"a"}},
		{id: "c", tier: 2, cost: 30, requires: []string{"b", "a"}},
	})
	tr.Unlock("a")

	s := tr.State()
	wantEdges := []Edge{{"b", "a"}, {"c", "b"}, {"c", "a"}}
	if diff := cmp.Diff(wantEdges, s.Edges); diff != "" {
		t.Errorf("Edges mismatch (-want +got):\n%s", diff)
	}

	back := NewTree(nil)
	if rejected := back.Restore(s); len(rejected) != 0 {
		t.Fatalf("Restore rejected %v", rejected)
	}
	if !back.Node("a").Unlocked || back.Node("a").UnlockTime != epoch.Unix() {
		t.Error("unlock state lost")
	}
	if !back.Node("c").Cost.Equal(bignum.New(30)) {
		t.Error("cost lost")
	}
	if diff := cmp.Diff(tr.Edges(), back.Edges()); diff != "" {
		t.Errorf("edges lost (-want +got):\n%s", diff)
	}

	s.Edges = append(s.Edges, Edge{Node: "a", Requires: "c"}, Edge{Node: "a", Requires: "ghost"})
	rejected := NewTree(nil).Restore(s)
	if len(rejected) != 2 {
		t.Errorf("rejected = %v, want the cyclic and dangling edges", rejected)
	}
}

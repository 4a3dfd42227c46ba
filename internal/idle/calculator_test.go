package idle

import (
	"math"
	"testing"
	"time"

	"github.com/papapumpkin/idlecore/internal/bignum"
	"github.com/papapumpkin/idlecore/internal/clock"
)

var epoch = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func near(got bignum.Number, want float64) bool {
	g := got.Float64()
	if want == 0 {
		return g == 0
	}
	return math.Abs(g-want) <= 1e-9*math.Abs(want)
}

func newCoins(t *testing.T, clk clock.Clock) *Calculator {
	t.Helper()
	c := New(clk)
	if !c.AddGenerator(NewGenerator("coins", bignum.New(10), 5)) {
		t.Fatal("AddGenerator(coins) returned false")
	}
	return c
}

func TestTotalRate(t *testing.T) {
	t.Parallel()

	c := newCoins(t, nil)
	if got := c.TotalRate(); !near(got, 50) {
		t.Errorf("TotalRate() = %v, want 50", got)
	}
	if got := c.Simulate(10); !near(got, 500) {
		t.Errorf("Simulate(10) = %v, want 500", got)
	}

	c.SetGlobalMultiplier(2)
	c.Generator("coins").Count = 1
	if got := c.TotalRate(); !near(got, 20) {
		t.Errorf("TotalRate() with multiplier 2 = %v, want 20", got)
	}
}

func TestTotalRateSumsGenerators(t *testing.T) {
	t.Parallel()

	c := New(nil)
	c.AddGenerator(NewGenerator("a", bignum.New(1), 3))
	b := NewGenerator("b", bignum.FromParts(2, 3), 2)
	b.Multiplier = 1.5
	c.AddGenerator(b)
	off := NewGenerator("off", bignum.New(100), 10)
	off.Enabled = false
	c.AddGenerator(off)
	c.AddGenerator(NewGenerator("none", bignum.New(100), 0))

	if got := c.TotalRate(); !near(got, 3+6000) {
		t.Errorf("TotalRate() = %v, want 6003", got)
	}
}

func TestSimulateNonPositive(t *testing.T) {
	t.Parallel()
	c := newCoins(t, nil)
	for _, s := range []float64{0, -1, -100} {
		if got := c.Simulate(s); !got.IsZero() {
			t.Errorf("Simulate(%v) = %v, want 0", s, got)
		}
	}
	if got := New(nil).Simulate(60); !got.IsZero() {
		t.Errorf("empty calculator produced %v", got)
	}
}

func TestAddGeneratorCopiesAndRejectsDuplicates(t *testing.T) {
	t.Parallel()

	c := New(nil)
	g := NewGenerator("mine", bignum.New(1), 1)
	c.AddGenerator(g)
	g.Count = 99
	if c.Generator("mine").Count != 1 {
		t.Error("caller mutation leaked into stored generator")
	}
	if c.AddGenerator(NewGenerator("mine", bignum.New(5), 5)) {
		t.Error("duplicate id accepted")
	}
	if len(c.Generators()) != 1 {
		t.Errorf("Generators() has %d entries, want 1", len(c.Generators()))
	}
}

func TestRemoveGenerator(t *testing.T) {
	t.Parallel()

	c := New(nil)
	for _, id := range []string{"a", "b", "c"} {
		c.AddGenerator(NewGenerator(id, bignum.New(1), 1))
	}
	if !c.RemoveGenerator("b") {
		t.Fatal("RemoveGenerator(b) = false")
	}
	if c.RemoveGenerator("b") {
		t.Error("second RemoveGenerator(b) = true")
	}
	if c.Generator("b") != nil {
		t.Error("Generator(b) still present")
	}
	gens := c.Generators()
	if len(gens) != 2 || gens[0].ID != "a" || gens[1].ID != "c" {
		t.Errorf("remaining order wrong: %v", gens)
	}
}

func TestSimulateOffline(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		lastActive int64
		efficiency float64
		maxHours   float64
		want       float64
	}{
		{"never active", 0, 1, 0, 0},
		{"future timestamp", epoch.Unix() + 10, 1, 0, 0},
		{"one hour full efficiency", epoch.Unix() - 3600, 1, 0, 50 * 3600},
		{"half efficiency", epoch.Unix() - 100, 0.5, 0, 2500},
		{"zero efficiency", epoch.Unix() - 100, 0, 0, 0},
		{"efficiency above one ignored", epoch.Unix() - 100, 3, 0, 5000},
		{"negative efficiency ignored", epoch.Unix() - 100, -0.5, 0, 5000},
		{"clamped to max hours", epoch.Unix() - 10*3600, 1, 2, 50 * 2 * 3600},
		{"within max hours", epoch.Unix() - 60, 1, 2, 3000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := newCoins(t, clock.NewFake(epoch))
			got := c.SimulateOffline(tt.lastActive, tt.efficiency, tt.maxHours)
			if !near(got, tt.want) {
				t.Errorf("SimulateOffline() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSimulateOfflineReport(t *testing.T) {
	t.Parallel()

	c := newCoins(t, clock.NewFake(epoch))
	r := c.SimulateOfflineReport(epoch.Unix()-5*3600, 0.25, 1)
	if r.Elapsed != 5*3600 || r.Credited != 3600 || !r.Clamped {
		t.Errorf("report = %+v, want elapsed 18000, credited 3600, clamped", r)
	}
	if r.Efficiency != 0.25 {
		t.Errorf("Efficiency = %v, want 0.25", r.Efficiency)
	}
	if !near(r.Produced, 50*3600*0.25) {
		t.Errorf("Produced = %v, want %v", r.Produced, 50*3600*0.25)
	}
}

func TestSnapshot(t *testing.T) {
	t.Parallel()

	clk := clock.NewFake(epoch)
	c := newCoins(t, clk)
	if c.SnapshotTime() != 0 {
		t.Errorf("initial SnapshotTime() = %d, want 0", c.SnapshotTime())
	}
	c.TakeSnapshot()
	if c.SnapshotTime() != epoch.Unix() {
		t.Errorf("SnapshotTime() = %d, want %d", c.SnapshotTime(), epoch.Unix())
	}

	clk.Advance(2 * time.Minute)
	if got := c.SimulateOffline(c.SnapshotTime(), 1, 0); !near(got, 50*120) {
		t.Errorf("offline since snapshot = %v, want 6000", got)
	}

	c.SetSnapshotTime(42)
	if c.SnapshotTime() != 42 {
		t.Errorf("SetSnapshotTime: got %d", c.SnapshotTime())
	}
}

func TestStateRoundTrip(t *testing.T) {
	t.Parallel()

	c := newCoins(t, nil)
	c.AddGenerator(NewGenerator("gems", bignum.FromParts(3, 40), 2))
	c.SetGlobalMultiplier(1.75)
	c.SetSnapshotTime(1234)
	c.Generator("gems").Enabled = false

	restored := New(nil)
	restored.Restore(c.State())

	if restored.SnapshotTime() != 1234 || restored.GlobalMultiplier() != 1.75 {
		t.Errorf("scalar state lost: snapshot %d, multiplier %v", restored.SnapshotTime(), restored.GlobalMultiplier())
	}
	gems := restored.Generator("gems")
	if gems == nil || gems.Enabled || gems.Count != 2 || !gems.BaseRate.Equal(bignum.FromParts(3, 40)) {
		t.Errorf("gems restored as %+v", gems)
	}
	if !restored.TotalRate().Equal(c.TotalRate()) {
		t.Errorf("TotalRate differs: %v vs %v", restored.TotalRate(), c.TotalRate())
	}
}

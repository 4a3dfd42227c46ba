package game

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/papapumpkin/idlecore/internal/balance"
	"github.com/papapumpkin/idlecore/internal/bignum"
	"github.com/papapumpkin/idlecore/internal/clock"
	"github.com/papapumpkin/idlecore/internal/events"
)

var epoch = time.Unix(1_700_000_000, 0)

// testDef is a small economy: one generator producing 1/s per unit, a
// doubling milestone at 100, two chained nodes and a prestige layer at 1000.
func testDef() *balance.Definition {
	return &balance.Definition{
		Name:     "test",
		Currency: "coins",
		Generators: []balance.GeneratorDef{
			{ID: "g", Name: "Gen", BaseRate: bignum.New(1), BaseCost: bignum.New(10), CostGrowth: 2, StartCount: 1, Multiplier: 1},
		},
		Milestones: []balance.MilestoneDef{
			{ID: "hundred", Threshold: bignum.New(100), Reward: 2},
		},
		Prestige: balance.PrestigeDef{ID: "ascend", Threshold: bignum.New(1000), ScalingExponent: 0.5},
		Nodes: []balance.NodeDef{
			{ID: "boost", Cost: bignum.New(50), Effect: balance.EffectDef{Kind: balance.EffectGeneratorMultiplier, Target: "g", Factor: 3}},
			{ID: "global", Cost: bignum.New(100), Tier: 1, Requires: []string{"boost"}, Effect: balance.EffectDef{Kind: balance.EffectGlobalMultiplier, Factor: 2}},
		},
	}
}

func newSession(t *testing.T, def *balance.Definition) (*Session, *clock.Fake) {
	t.Helper()
	clk := clock.NewFake(epoch)
	s, err := NewSession(def, clk)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return s, clk
}

func approx(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(1, math.Abs(b))
}

// record collects "kind:subject" strings from the session bus.
func record(s *Session) *[]string {
	var got []string
	s.Events().Subscribe(func(e events.Event) {
		got = append(got, string(e.Kind)+":"+e.Subject)
	})
	return &got
}

func TestNewSessionRejectsInvalid(t *testing.T) {
	t.Parallel()
	def := testDef()
	def.Nodes[0].Requires = []string{"global"}
	if _, err := NewSession(def, nil); !errors.Is(err, balance.ErrCycle) {
		t.Errorf("NewSession error = %v, want ErrCycle", err)
	}
}

func TestTickProduces(t *testing.T) {
	t.Parallel()

	s, _ := newSession(t, testDef())
	if got := s.Tick(5); !approx(got.Float64(), 5) {
		t.Errorf("Tick(5) = %v, want 5", got)
	}
	if got := s.Tick(0); !got.IsZero() {
		t.Errorf("Tick(0) = %v, want 0", got)
	}
	if !approx(s.Balance().Float64(), 5) || !approx(s.Lifetime().Float64(), 5) || !approx(s.AllTime().Float64(), 5) {
		t.Errorf("wallet=%v lifetime=%v allTime=%v", s.Balance(), s.Lifetime(), s.AllTime())
	}
	if s.PlayTime() != 5 {
		t.Errorf("PlayTime() = %v, want 5", s.PlayTime())
	}
}

func TestBuyGenerator(t *testing.T) {
	t.Parallel()

	s, _ := newSession(t, testDef())
	got := record(s)

	cost, err := s.GeneratorCost("g")
	if err != nil || !cost.Equal(bignum.New(20)) {
		t.Fatalf("GeneratorCost = %v, %v; want 20", cost, err)
	}
	s.Tick(5)
	if err := s.BuyGenerator("g"); !errors.Is(err, ErrCannotAfford) {
		t.Fatalf("BuyGenerator with 5 coins error = %v, want ErrCannotAfford", err)
	}
	s.Tick(20)
	if err := s.BuyGenerator("g"); err != nil {
		t.Fatalf("BuyGenerator: %v", err)
	}
	if !approx(s.Balance().Float64(), 5) {
		t.Errorf("Balance() = %v, want 5", s.Balance())
	}
	if c := s.Calculator().Generator("g").Count; c != 2 {
		t.Errorf("Count = %d, want 2", c)
	}
	if cost, _ := s.GeneratorCost("g"); !cost.Equal(bignum.New(40)) {
		t.Errorf("next cost = %v, want 40", cost)
	}
	if err := s.BuyGenerator("ghost"); !errors.Is(err, ErrUnknownGenerator) {
		t.Errorf("BuyGenerator(ghost) error = %v", err)
	}
	if diff := cmp.Diff([]string{"generator_purchased:g"}, *got); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestBuyMax(t *testing.T) {
	t.Parallel()

	s, _ := newSession(t, testDef())
	s.Tick(99)
	// 20 + 40 = 60 <= 99 < 60 + 80.
	n, err := s.BuyMax("g", 0)
	if err != nil || n != 2 {
		t.Fatalf("BuyMax = %d, %v; want 2", n, err)
	}
	if !approx(s.Balance().Float64(), 39) {
		t.Errorf("Balance() = %v, want 39", s.Balance())
	}
	if n, _ := s.BuyMax("g", 1); n != 0 {
		t.Errorf("BuyMax with no funds = %d, want 0", n)
	}
}

func TestMilestoneBoostsProduction(t *testing.T) {
	t.Parallel()

	s, clk := newSession(t, testDef())
	got := record(s)
	s.Tick(99)
	if s.Milestones()[0].Achieved {
		t.Fatal("milestone achieved early")
	}
	clk.Advance(time.Minute)
	s.Tick(1)
	if !s.Milestones()[0].Achieved {
		t.Fatal("milestone not achieved at 100")
	}
	if at, want := s.Milestones()[0].AchievedTime, epoch.Add(time.Minute).Unix(); at != want {
		t.Errorf("AchievedTime = %d, want session clock %d", at, want)
	}
	if !approx(s.Rate().Float64(), 2) {
		t.Errorf("Rate() = %v, want 2", s.Rate())
	}
	s.Tick(1)
	if diff := cmp.Diff([]string{"milestone_achieved:hundred"}, *got); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestUnlockNode(t *testing.T) {
	t.Parallel()

	def := testDef()
	def.Milestones = nil
	s, _ := newSession(t, def)
	got := record(s)

	if err := s.UnlockNode("ghost"); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("UnlockNode(ghost) error = %v", err)
	}
	if err := s.UnlockNode("boost"); !errors.Is(err, ErrCannotAfford) {
		t.Errorf("UnlockNode(boost) broke error = %v", err)
	}
	s.Tick(200)
	if err := s.UnlockNode("global"); !errors.Is(err, ErrRequirementsUnmet) {
		t.Errorf("UnlockNode(global) early error = %v", err)
	}
	if err := s.UnlockNode("boost"); err != nil {
		t.Fatalf("UnlockNode(boost): %v", err)
	}
	if !approx(s.Balance().Float64(), 150) {
		t.Errorf("Balance() = %v, want 150", s.Balance())
	}
	if !approx(s.Rate().Float64(), 3) {
		t.Errorf("Rate() after boost = %v, want 3", s.Rate())
	}
	if err := s.UnlockNode("boost"); !errors.Is(err, ErrAlreadyUnlocked) {
		t.Errorf("second UnlockNode error = %v", err)
	}
	if err := s.UnlockNode("global"); err != nil {
		t.Fatalf("UnlockNode(global): %v", err)
	}
	if !approx(s.Rate().Float64(), 6) {
		t.Errorf("Rate() after global = %v, want 6", s.Rate())
	}
	want := []string{"node_unlocked:boost", "node_unlocked:global"}
	if diff := cmp.Diff(want, *got); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestPrestige(t *testing.T) {
	t.Parallel()

	s, _ := newSession(t, testDef())
	got := record(s)

	s.Tick(500)
	if _, err := s.Prestige(); !errors.Is(err, ErrNotEligible) {
		t.Fatalf("early Prestige error = %v", err)
	}

	// The milestone doubles production after the first tick: 500 + 2x1750.
	s.Tick(1750)
	if !approx(s.Lifetime().Float64(), 4000) {
		t.Fatalf("Lifetime() = %v, want 4000", s.Lifetime())
	}
	if err := s.UnlockNode("boost"); err != nil {
		t.Fatalf("UnlockNode: %v", err)
	}
	if !approx(s.PrestigePreview().Float64(), 2) {
		t.Errorf("PrestigePreview() = %v, want 2", s.PrestigePreview())
	}

	reward, err := s.Prestige()
	if err != nil {
		t.Fatalf("Prestige: %v", err)
	}
	if !approx(reward.Float64(), 2) {
		t.Errorf("reward = %v, want 2", reward)
	}
	if !s.Balance().IsZero() || !s.Lifetime().IsZero() {
		t.Error("run currency not reset")
	}
	if !approx(s.AllTime().Float64(), 4000) {
		t.Errorf("AllTime() = %v, want 4000", s.AllTime())
	}
	if c := s.Calculator().Generator("g").Count; c != 1 {
		t.Errorf("Count = %d, want start count 1", c)
	}
	if s.Tree().Node("boost").Unlocked {
		t.Error("unlock survived prestige")
	}
	if !s.Milestones()[0].Achieved {
		t.Error("milestone lost on prestige")
	}
	bonus := 1 + math.Sqrt(2)*0.1
	if !approx(s.Rate().Float64(), bonus*2) {
		t.Errorf("Rate() = %v, want %v", s.Rate(), bonus*2)
	}
	want := []string{"milestone_achieved:hundred", "node_unlocked:boost", "prestige_performed:ascend", "node_locked:boost"}
	if diff := cmp.Diff(want, *got); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestPrestigeNotConfigured(t *testing.T) {
	t.Parallel()
	def := testDef()
	def.Prestige = balance.PrestigeDef{ScalingExponent: 0.5}
	s, _ := newSession(t, def)
	if _, err := s.Prestige(); !errors.Is(err, ErrNoPrestige) {
		t.Errorf("Prestige error = %v, want ErrNoPrestige", err)
	}
	if !s.PrestigePreview().IsZero() {
		t.Error("PrestigePreview without a layer should be zero")
	}
}

func TestAutomationActions(t *testing.T) {
	t.Parallel()

	def := testDef()
	def.Milestones = nil
	def.Rules = []balance.RuleDef{
		{ID: "auto-boost", Trigger: "threshold", Threshold: bignum.New(60), MaxTriggers: 1, Action: "unlock:boost"},
		{ID: "auto-buy", Trigger: "interval", Interval: 10, Action: "buy:g"},
	}
	s, _ := newSession(t, def)

	// 10 coins: the buy at t=10 cannot afford 20 and stops.
	s.Tick(10)
	if c := s.Calculator().Generator("g").Count; c != 1 {
		t.Fatalf("Count after 10s = %d, want 1", c)
	}
	// 40 coins: one buy for 20 succeeds, the catch-up buy for 40 fails.
	s.Tick(30)
	if c := s.Calculator().Generator("g").Count; c != 2 {
		t.Fatalf("Count after 40s = %d, want 2", c)
	}
	if !approx(s.Balance().Float64(), 20) {
		t.Errorf("Balance() = %v, want 20", s.Balance())
	}
	if acc := s.Automation().Rule("auto-buy").AccumulatedTime; acc != 10 {
		t.Errorf("AccumulatedTime = %v, want 10 banked", acc)
	}

	// 20 + 2x20 = 60 reaches the threshold rule, which buys the boost once.
	s.Tick(20)
	if !s.Tree().Node("boost").Unlocked {
		t.Fatal("threshold rule did not unlock boost")
	}
	if s.Automation().Rule("auto-boost").Enabled {
		t.Error("capped rule still enabled")
	}
}

func TestPrestigeRuleHonorsCap(t *testing.T) {
	t.Parallel()

	def := testDef()
	def.Rules = []balance.RuleDef{
		{ID: "auto-ascend", Trigger: "threshold", Threshold: bignum.New(1000), MaxTriggers: 1, Action: "prestige"},
	}
	s, _ := newSession(t, def)

	s.Tick(1000)
	if n := s.PrestigeLayer().TimesPrestiged(); n != 1 {
		t.Fatalf("TimesPrestiged after first run = %d, want 1", n)
	}
	if s.Automation().Rule("auto-ascend").Enabled {
		t.Fatal("capped prestige rule still enabled")
	}

	s.Tick(1000)
	if n := s.PrestigeLayer().TimesPrestiged(); n != 1 {
		t.Errorf("TimesPrestiged after second run = %d, want 1", n)
	}
	if s.Lifetime().IsZero() {
		t.Error("second run was reset by the capped rule")
	}
}

func TestDoRejectsUnknownAction(t *testing.T) {
	t.Parallel()
	s, _ := newSession(t, testDef())
	if err := s.Do(balance.Action{Kind: "sell"}); !errors.Is(err, balance.ErrBadAction) {
		t.Errorf("Do(sell) error = %v", err)
	}
}

func TestApplyOffline(t *testing.T) {
	t.Parallel()

	s, clk := newSession(t, testDef())
	got := record(s)

	clk.Advance(time.Hour)
	report := s.ApplyOffline(0.5, 0)
	if report.Elapsed != 3600 || report.Clamped {
		t.Errorf("report = %+v", report)
	}
	if !approx(s.Balance().Float64(), 1800) {
		t.Errorf("Balance() = %v, want 1800", s.Balance())
	}
	if s.Calculator().SnapshotTime() != clk.Now().Unix() {
		t.Error("snapshot not refreshed")
	}

	// Nothing accrued since the new snapshot.
	if r := s.ApplyOffline(0.5, 0); !r.Produced.IsZero() {
		t.Errorf("second ApplyOffline produced %v", r.Produced)
	}

	clk.Advance(10 * time.Hour)
	report = s.ApplyOffline(1, 2)
	if !report.Clamped || report.Credited != 7200 {
		t.Errorf("clamped report = %+v", report)
	}
	want := []string{"offline_progress:", "milestone_achieved:hundred", "offline_progress:"}
	if diff := cmp.Diff(want, *got); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestStateRestore(t *testing.T) {
	t.Parallel()

	def := testDef()
	def.Rules = []balance.RuleDef{{ID: "tick", Trigger: "interval", Interval: 1000, Action: "buy:g"}}
	s, clk := newSession(t, def)
	s.Tick(300)
	if err := s.UnlockNode("boost"); err != nil {
		t.Fatal(err)
	}
	if err := s.BuyGenerator("g"); err != nil {
		t.Fatal(err)
	}
	st := s.State()

	r, _ := newSession(t, def)
	r.Restore(st)

	if !r.Balance().Equal(s.Balance()) || !r.AllTime().Equal(s.AllTime()) || r.PlayTime() != 300 {
		t.Errorf("currency lost: %v/%v", r.Balance(), r.AllTime())
	}
	if r.Calculator().Generator("g").Count != 2 {
		t.Error("generator count lost")
	}
	if !r.Tree().Node("boost").Unlocked || !r.Milestones()[0].Achieved {
		t.Error("unlock or milestone lost")
	}
	if !r.Rate().Equal(s.Rate()) {
		t.Errorf("Rate() = %v, want %v", r.Rate(), s.Rate())
	}
	if r.Automation().Rule("tick").AccumulatedTime != 300 {
		t.Error("rule accumulator lost")
	}
	if r.Calculator().SnapshotTime() != clk.Now().Unix() {
		t.Error("snapshot time lost")
	}
}

func TestReloadKeepsProgress(t *testing.T) {
	t.Parallel()

	def := testDef()
	def.Milestones = nil
	s, _ := newSession(t, def)
	got := record(s)
	s.Tick(100)
	if err := s.UnlockNode("boost"); err != nil {
		t.Fatal(err)
	}

	next := testDef()
	next.Milestones = nil
	next.Generators[0].BaseRate = bignum.New(5)
	next.Generators = append(next.Generators, balance.GeneratorDef{
		ID: "h", BaseRate: bignum.New(1), BaseCost: bignum.New(1), CostGrowth: 1.5, StartCount: 2, Multiplier: 1,
	})
	if err := s.Reload(next); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	// g: 5 x 1 x 3 (boost kept), h: 1 x 2.
	if !approx(s.Rate().Float64(), 17) {
		t.Errorf("Rate() = %v, want 17", s.Rate())
	}
	if !approx(s.Balance().Float64(), 50) {
		t.Errorf("Balance() = %v, want 50", s.Balance())
	}

	// The reloaded tree still reports to existing subscribers.
	s.Tick(1000)
	if err := s.UnlockNode("global"); err != nil {
		t.Fatal(err)
	}
	want := []string{"node_unlocked:boost", "node_unlocked:global"}
	if diff := cmp.Diff(want, *got); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}

	bad := testDef()
	bad.Generators = nil
	if err := s.Reload(bad); !errors.Is(err, balance.ErrMissingField) {
		t.Errorf("Reload(bad) error = %v", err)
	}
}

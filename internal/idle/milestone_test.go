package idle

import (
	"testing"

	"github.com/papapumpkin/idlecore/internal/bignum"
)

func TestMilestoneCheckIsOneShot(t *testing.T) {
	t.Parallel()

	m := Milestone{ID: "first-k", Threshold: bignum.New(1000), RewardMultiplier: 1.1}

	if m.Check(bignum.New(999), 10) {
		t.Fatal("Check below threshold returned true")
	}
	if m.Reward() != 1 {
		t.Errorf("Reward() before achieving = %v, want 1", m.Reward())
	}
	if !m.Check(bignum.New(1000), 20) {
		t.Fatal("Check at threshold returned false")
	}
	if !m.Achieved || m.AchievedTime != 20 {
		t.Errorf("after achieving: Achieved=%v AchievedTime=%d", m.Achieved, m.AchievedTime)
	}
	if m.Check(bignum.FromParts(1, 50), 30) {
		t.Error("second Check returned true")
	}
	if m.AchievedTime != 20 {
		t.Errorf("AchievedTime changed to %d", m.AchievedTime)
	}
	if m.Reward() != 1.1 {
		t.Errorf("Reward() = %v, want 1.1", m.Reward())
	}

	m.Reset()
	if m.Achieved || m.AchievedTime != 0 {
		t.Error("Reset did not clear achievement")
	}
	if !m.Threshold.Equal(bignum.New(1000)) {
		t.Error("Reset touched the threshold")
	}
	if !m.Check(bignum.New(5000), 40) {
		t.Error("Check after Reset returned false")
	}
}

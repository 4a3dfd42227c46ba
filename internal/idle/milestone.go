package idle

import "github.com/papapumpkin/idlecore/internal/bignum"

// Milestone is a one-shot achievement reached the first time a tracked value
// meets Threshold.
type Milestone struct {
	ID               string
	Name             string
	Description      string
	Icon             string
	Threshold        bignum.Number
	Achieved         bool
	AchievedTime     int64
	RewardMultiplier float64
}

// Check marks the milestone achieved at unix time now if current >= Threshold.
// It returns true only on the call that flips Achieved; once achieved every
// later call returns false until Reset. Callers pass their clock reading,
// typically clock.Unix, so a Milestone holds no time source of its own.
func (m *Milestone) Check(current bignum.Number, now int64) bool {
	if m.Achieved {
		return false
	}
	if current.Less(m.Threshold) {
		return false
	}
	m.Achieved = true
	m.AchievedTime = now
	return true
}

// Reset clears the achievement but keeps the configuration.
func (m *Milestone) Reset() {
	m.Achieved = false
	m.AchievedTime = 0
}

// Reward returns the multiplier this milestone grants, or 1 while it is not
// achieved or has no reward configured.
func (m *Milestone) Reward() float64 {
	if !m.Achieved || m.RewardMultiplier <= 0 {
		return 1
	}
	return m.RewardMultiplier
}

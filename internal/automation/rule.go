package automation

import (
	"fmt"
	"strings"

	"github.com/papapumpkin/idlecore/internal/bignum"
)

// Trigger selects what makes a rule fire. It is fixed when the rule is
// added.
type Trigger int

// Trigger kinds.
const (
	TriggerInterval Trigger = iota
	TriggerThreshold
	TriggerManual
)

var triggerNames = [...]string{"interval", "threshold", "manual"}

// String returns the lower-case trigger name.
func (t Trigger) String() string {
	if t < 0 || int(t) >= len(triggerNames) {
		return fmt.Sprintf("trigger(%d)", int(t))
	}
	return triggerNames[t]
}

// ParseTrigger maps a trigger name to its kind. Matching ignores case.
func ParseTrigger(s string) (Trigger, bool) {
	for i, name := range triggerNames {
		if strings.EqualFold(s, name) {
			return Trigger(i), true
		}
	}
	return 0, false
}

// MarshalText encodes the trigger by name.
func (t Trigger) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a trigger name.
func (t *Trigger) UnmarshalText(text []byte) error {
	v, ok := ParseTrigger(string(text))
	if !ok {
		return fmt.Errorf("automation: unknown trigger %q", text)
	}
	*t = v
	return nil
}

// Rule is a single automation entry. Rules hold no behavior; the action run
// on each fire is registered on the Automation with SetCallback.
type Rule struct {
	ID      string
	Name    string
	Trigger Trigger
	// Interval is the period in seconds of an interval rule. Values <= 0
	// never fire from Update.
	Interval float64
	// Threshold is the value a threshold rule compares against.
	Threshold bignum.Number
	Enabled   bool
	// MaxTriggers disables the rule once TriggerCount reaches it. 0 means
	// unlimited.
	MaxTriggers int64
	// Latch makes a threshold rule fire once per crossing instead of on
	// every update while the value stays at or above the threshold.
	Latch bool

	TriggerCount    int64
	AccumulatedTime float64
	// Latched is set after a latching threshold rule fires and cleared when
	// the value drops back below the threshold.
	Latched bool
}

// NewRule returns an enabled rule with the given trigger.
func NewRule(id string, trigger Trigger) Rule {
	return Rule{ID: id, Trigger: trigger, Enabled: true}
}

// Exhausted reports whether the rule has reached its trigger cap.
func (r *Rule) Exhausted() bool {
	return r.MaxTriggers > 0 && r.TriggerCount >= r.MaxTriggers
}

func (r *Rule) reset() {
	r.TriggerCount = 0
	r.AccumulatedTime = 0
	r.Latched = false
}

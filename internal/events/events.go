// Package events provides the notification points the progression core
// exposes to a host. Each component owns its own Bus; there is no
// process-wide registry.
package events

import "github.com/papapumpkin/idlecore/internal/bignum"

// Kind identifies what changed.
type Kind string

// Notification kinds emitted by the core and the game session.
const (
	KindRuleTriggered      Kind = "rule_triggered"
	KindNodeUnlocked       Kind = "node_unlocked"
	KindNodeLocked         Kind = "node_locked"
	KindPrestigePerformed  Kind = "prestige_performed"
	KindMilestoneAchieved  Kind = "milestone_achieved"
	KindGeneratorPurchased Kind = "generator_purchased"
	KindOfflineProgress    Kind = "offline_progress"
)

// Event is a single notification. Subject names the rule, node, milestone or
// generator involved; Value carries a magnitude when the kind has one (the
// prestige reward, the offline production, the purchase price).
type Event struct {
	Kind    Kind
	Subject string
	Value   bignum.Number
}

// Listener receives events synchronously on the emitting goroutine.
type Listener func(Event)

// Bus is an ordered observer list. It is not safe for concurrent use; like
// the component that owns it, it belongs to a single game-loop goroutine.
// A nil *Bus drops every event.
type Bus struct {
	next      int
	listeners []subscription
}

type subscription struct {
	id int
	fn Listener
}

// Subscribe registers fn and returns a function that removes it. Listeners
// run in subscription order.
func (b *Bus) Subscribe(fn Listener) (cancel func()) {
	if b == nil || fn == nil {
		return func() {}
	}
	b.next++
	id := b.next
	b.listeners = append(b.listeners, subscription{id: id, fn: fn})
	return func() {
		for i, s := range b.listeners {
			if s.id == id {
				b.listeners = append(b.listeners[:i:i], b.listeners[i+1:]...)
				return
			}
		}
	}
}

// Emit delivers e to every listener.
func (b *Bus) Emit(e Event) {
	if b == nil {
		return
	}
	// Copy so a listener may cancel itself mid-delivery.
	subs := append([]subscription(nil), b.listeners...)
	for _, s := range subs {
		s.fn(e)
	}
}

// Len returns the number of registered listeners.
func (b *Bus) Len() int {
	if b == nil {
		return 0
	}
	return len(b.listeners)
}

// Forward subscribes to src and re-emits everything on dst.
func Forward(src, dst *Bus) (cancel func()) {
	return src.Subscribe(dst.Emit)
}

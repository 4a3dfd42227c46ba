package events

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/papapumpkin/idlecore/internal/bignum"
)

func TestBusDeliversInOrder(t *testing.T) {
	t.Parallel()

	var b Bus
	var got []string
	b.Subscribe(func(e Event) { got = append(got, "first:"+e.Subject) })
	b.Subscribe(func(e Event) { got = append(got, "second:"+e.Subject) })

	b.Emit(Event{Kind: KindNodeUnlocked, Subject: "forge"})

	want := []string{"first:forge", "second:forge"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("delivery order mismatch (-want +got):\n%s", diff)
	}
}

func TestBusCancel(t *testing.T) {
	t.Parallel()

	var b Bus
	calls := 0
	cancel := b.Subscribe(func(Event) { calls++ })
	b.Emit(Event{Kind: KindRuleTriggered})
	cancel()
	cancel() // second cancel is a no-op
	b.Emit(Event{Kind: KindRuleTriggered})

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if b.Len() != 0 {
		t.Errorf("Len() = %d, want 0", b.Len())
	}
}

func TestBusSelfCancelDuringEmit(t *testing.T) {
	t.Parallel()

	var b Bus
	var cancel func()
	first, second := 0, 0
	cancel = b.Subscribe(func(Event) { first++; cancel() })
	b.Subscribe(func(Event) { second++ })

	b.Emit(Event{})
	b.Emit(Event{})

	if first != 1 || second != 2 {
		t.Errorf("first=%d second=%d, want 1 and 2", first, second)
	}
}

func TestNilBus(t *testing.T) {
	t.Parallel()
	var b *Bus
	b.Emit(Event{Kind: KindPrestigePerformed})
	b.Subscribe(func(Event) { t.Error("nil bus delivered an event") })()
	if b.Len() != 0 {
		t.Error("nil bus should report zero listeners")
	}
}

func TestForward(t *testing.T) {
	t.Parallel()

	var src, dst Bus
	var got []Event
	dst.Subscribe(func(e Event) { got = append(got, e) })
	Forward(&src, &dst)

	src.Emit(Event{Kind: KindPrestigePerformed, Value: bignum.New(2)})

	if len(got) != 1 || got[0].Kind != KindPrestigePerformed || !got[0].Value.Equal(bignum.New(2)) {
		t.Errorf("forwarded events = %+v", got)
	}
}

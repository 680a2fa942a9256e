package irq

import "testing"

func TestRaisePropagatesAcrossBiConnect(t *testing.T) {
	p := NewPool()
	a := p.AllocOne("a")
	b := p.AllocOne("b")
	p.BiConnect(a, b)

	p.Raise(a, 1)
	if p.Value(b) != 1 {
		t.Fatalf("Value(b) = %d, want 1 after raising a", p.Value(b))
	}

	p.Raise(b, 0)
	if p.Value(a) != 0 {
		t.Fatalf("Value(a) = %d, want 0 after raising b", p.Value(a))
	}
}

// TestRaiseSameValueDoesNotRecurse verifies the no-op-on-unchanged-value
// guard: without it, a BiConnect'd pair would recurse into each other
// forever on every Raise.
func TestRaiseSameValueDoesNotRecurse(t *testing.T) {
	p := NewPool()
	a := p.AllocOne("a")
	b := p.AllocOne("b")
	p.BiConnect(a, b)

	fired := 0
	p.Subscribe(a, func(pool *Pool, id ID, value uint8, ctx interface{}) { fired++ }, nil)

	p.Raise(a, 0) // already 0 (zero value) -> should be a no-op
	if fired != 0 {
		t.Fatalf("subscriber fired %d times raising to the already-current value, want 0", fired)
	}

	p.Raise(a, 1)
	if fired != 1 {
		t.Fatalf("subscriber fired %d times on a real change, want 1", fired)
	}
}

func TestBiDisconnectStopsPropagation(t *testing.T) {
	p := NewPool()
	a := p.AllocOne("a")
	b := p.AllocOne("b")
	p.BiConnect(a, b)
	p.BiDisconnect(a, b)

	p.Raise(a, 1)
	if p.Value(b) != 0 {
		t.Fatalf("Value(b) = %d, want 0 (disconnected) after raising a", p.Value(b))
	}
}

func TestClearCallbacksRemovesAllSubscribers(t *testing.T) {
	p := NewPool()
	a := p.AllocOne("a")

	fired := 0
	p.Subscribe(a, func(pool *Pool, id ID, value uint8, ctx interface{}) { fired++ }, nil)
	p.Subscribe(a, func(pool *Pool, id ID, value uint8, ctx interface{}) { fired++ }, nil)
	p.ClearCallbacks(a)

	p.Raise(a, 1)
	if fired != 0 {
		t.Fatalf("fired = %d after ClearCallbacks, want 0", fired)
	}
}

func TestConnectIsIdempotent(t *testing.T) {
	p := NewPool()
	a := p.AllocOne("a")
	b := p.AllocOne("b")
	p.Connect(a, b)
	p.Connect(a, b) // duplicate edge must not double-fire the subscriber

	fired := 0
	p.Subscribe(b, func(pool *Pool, id ID, value uint8, ctx interface{}) { fired++ }, nil)
	p.Raise(a, 1)
	if fired != 1 {
		t.Fatalf("fired = %d, want 1 (duplicate Connect should not double-propagate)", fired)
	}
}

package pullup

import "testing"

type fakeTarget struct {
	calls []call
}

type call struct {
	name       byte
	mask, val  uint8
}

func (f *fakeTarget) SetExternalPort(name byte, mask, value uint8) {
	f.calls = append(f.calls, call{name, mask, value})
}

func (f *fakeTarget) last(name byte) (uint8, bool) {
	for i := len(f.calls) - 1; i >= 0; i-- {
		if f.calls[i].name == name {
			return f.calls[i].val, true
		}
	}
	return 0, false
}

func TestDefaultsToPulledHigh(t *testing.T) {
	target := &fakeTarget{}
	tr := New(target)
	tr.OnFinishedConnect()

	for _, name := range []byte{'A', 'B', 'C', 'D'} {
		v, ok := target.last(name)
		if !ok {
			t.Fatalf("port %c: no SetExternalPort call on connect", name)
		}
		if v != 0xFF {
			t.Fatalf("port %c: default value = %#x, want 0xFF", name, v)
		}
	}
}

func TestSetPinUpdatesOnlyThatBit(t *testing.T) {
	target := &fakeTarget{}
	tr := New(target)
	target.calls = nil // drop the constructor's implicit state, nothing flushed yet

	tr.SetPin('B', 2, false)
	v, ok := target.last('B')
	if !ok {
		t.Fatalf("SetPin did not flush to target")
	}
	if v != 0xFF&^(1<<2) {
		t.Fatalf("port B after clearing pin 2: got %#x want %#x", v, 0xFF&^(1<<2))
	}

	tr.SetPin('B', 2, true)
	v, _ = target.last('B')
	if v != 0xFF {
		t.Fatalf("port B after re-setting pin 2: got %#x want 0xFF", v)
	}
}

func TestOnResetRestoresPulledHigh(t *testing.T) {
	target := &fakeTarget{}
	tr := New(target)
	tr.SetPin('A', 0, false)
	tr.SetPin('A', 1, false)

	tr.OnReset()

	v, _ := target.last('A')
	if v != 0xFF {
		t.Fatalf("port A after OnReset: got %#x want 0xFF", v)
	}
}

func TestLowercasePortName(t *testing.T) {
	target := &fakeTarget{}
	tr := New(target)
	target.calls = nil
	tr.SetPin('c', 3, false)
	if _, ok := target.last('c'); ok {
		t.Fatalf("SetExternalPort should be called with the canonical uppercase name")
	}
	v, ok := target.last('C')
	if !ok {
		t.Fatalf("lowercase pin name did not resolve to port C")
	}
	if v != 0xFF&^(1<<3) {
		t.Fatalf("got %#x want %#x", v, 0xFF&^(1<<3))
	}
}

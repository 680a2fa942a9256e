// Package pullup tracks the externally-driven level of every MCU port
// pin and keeps the core's external-port shadow in sync with it.
//
// It exists to work around the readback pitfall documented in
// SPEC_FULL.md §4.C: an AVR port pin configured as input reads back
// whatever level is asserted on it from outside, not its own PORT
// latch. Without something asserting that external level explicitly,
// an input pin with nothing connected to it would read back as if it
// were wired to its own output register. Wrong, and specifically
// wrong in a way that makes button/switch inputs look stuck. Real
// hardware gets this for free from pullup resistors; this package is
// the emulated equivalent; it defaults every pin to pulled high (1),
// exactly as an unconnected AVR input pin with its internal pullup
// enabled would read.
package pullup

const numPorts = 4

// PortSetter is the subset of avr.Core's surface the tracker needs.
// A small interface, not the concrete type, so the tracker can be
// exercised without constructing a full core.
type PortSetter interface {
	SetExternalPort(name byte, mask, value uint8)
}

// Tracker is a per-port 8-bit shadow of the level each pin would read
// if nothing else were driving it. It is flushed to a PortSetter in
// bulk (OnFinishedConnect) or pin-at-a-time (SetPin).
type Tracker struct {
	target PortSetter
	values [numPorts]uint8
}

// New returns a tracker bound to target, with every pin defaulted
// high (pulled up).
func New(target PortSetter) *Tracker {
	t := &Tracker{target: target}
	t.reset()
	return t
}

func (t *Tracker) reset() {
	for i := range t.values {
		t.values[i] = 0xFF
	}
}

// OnReset restores every tracked pin to pulled-high. Must run before
// any other reset callback that might re-read port state, see
// harness's reset ordering, which registers the tracker's callback
// first.
func (t *Tracker) OnReset() {
	t.reset()
	t.flush()
}

// OnFinishedConnect pushes the tracker's current state to the target
// core for every port. Called once all of a board's peripherals have
// finished wiring their pins, so the core's external shadow reflects
// the fully-connected circuit from the first Step.
func (t *Tracker) OnFinishedConnect() {
	t.flush()
}

func (t *Tracker) flush() {
	for i, v := range t.values {
		t.target.SetExternalPort(portName(i), 0xFF, v)
	}
}

// SetPin asserts value as the externally-driven level of a single
// port pin, then immediately re-flushes that port to the target.
func (t *Tracker) SetPin(name byte, pin uint8, value bool) {
	idx := portIndex(name)
	if value {
		t.values[idx] |= 1 << pin
	} else {
		t.values[idx] &^= 1 << pin
	}
	t.target.SetExternalPort(portName(idx), 0xFF, t.values[idx])
}

func portIndex(name byte) int {
	if name >= 'a' && name <= 'z' {
		name -= 'a' - 'A'
	}
	return int(name - 'A')
}

func portName(index int) byte {
	return byte('A' + index)
}

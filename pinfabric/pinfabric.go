// Package pinfabric maps a peripheral's pins onto MCU port pins,
// supporting multiple pins from different ports on the same endpoint.
// It is the Go counterpart of IoConnector: a peripheral model (an LCD,
// an LED strip, a button) allocates one Endpoint sized to however many
// pins it has, then Connect binds each of those pins, in order, to a
// named MCU port pin.
package pinfabric

import (
	"github.com/mjkern/avrboard/irq"
	"github.com/mjkern/avrboard/pullup"
)

// MCU is the subset of avr.Core an Endpoint needs: the signal-graph
// node for a port pin, and that pin's live value.
type MCU interface {
	GetIrq(name byte, pin uint8) irq.ID
	GetPin(name byte, pin uint8) bool
}

// PinRef names a single MCU port pin and the default level a
// peripheral drives onto it before anything else has run, e.g. PINA3
// <=> {'A', 3, false}.
type PinRef struct {
	Port    byte
	Pin     uint8
	Default bool
}

// Endpoint is a fixed-size, ordered group of peripheral pins bound to
// MCU port pins. Index i always refers to the same logical pin across
// Connect, SetPin, GetPin and AddCallback.
type Endpoint struct {
	pool     *irq.Pool
	mcu      MCU
	pullup   *pullup.Tracker
	ids      []irq.ID
	bindings []PinRef
}

// NewEndpoint allocates n signal nodes (one per peripheral pin) named
// for debugging, bound to mcu and sharing its pullup tracker.
func NewEndpoint(pool *irq.Pool, mcu MCU, pu *pullup.Tracker, names []string) *Endpoint {
	return &Endpoint{
		pool:   pool,
		mcu:    mcu,
		pullup: pu,
		ids:    pool.Alloc(names),
	}
}

// Reset tears down every MCU binding and clears this endpoint's
// subscriber callbacks. The peripheral model is expected to
// re-subscribe in its own Reset before Connect is called again. This
// is what keeps repeated resets from accumulating duplicate
// callbacks.
func (e *Endpoint) Reset() {
	for i, b := range e.bindings {
		e.pool.BiDisconnect(e.ids[i], e.mcu.GetIrq(b.Port, b.Pin))
	}
	for _, id := range e.ids {
		e.pool.ClearCallbacks(id)
	}
	e.bindings = nil
}

// Connect binds each of the endpoint's pins, in order, to the named
// MCU port pin in pins, pushes each pin's default level into the
// pullup tracker, then flushes the tracker once every pin in this
// call has been wired.
func (e *Endpoint) Connect(pins []PinRef) {
	if len(pins) != len(e.ids) {
		panic("pinfabric: Connect called with wrong pin count")
	}
	e.bindings = append([]PinRef(nil), pins...)
	for i, b := range pins {
		mcuID := e.mcu.GetIrq(b.Port, b.Pin)
		e.pool.BiConnect(e.ids[i], mcuID)
		e.pullup.SetPin(b.Port, b.Pin, b.Default)
	}
	e.pullup.OnFinishedConnect()
}

// AddCallback subscribes cb to value changes on the endpoint's own
// side of pin index.
func (e *Endpoint) AddCallback(index int, cb irq.NotifyFunc, ctx interface{}) {
	e.pool.Subscribe(e.ids[index], cb, ctx)
}

// SetPin drives value onto pin index: it updates the pullup tracker
// (so the MCU's external shadow reflects it even on input-configured
// ports) and raises the endpoint's own node, propagating to anything
// bound on the MCU side.
func (e *Endpoint) SetPin(index int, value bool) {
	b := e.bindings[index]
	e.pullup.SetPin(b.Port, b.Pin, value)
	e.raiseLocal(index, value)
}

func (e *Endpoint) raiseLocal(index int, value bool) {
	v := uint8(0)
	if value {
		v = 1
	}
	e.pool.Raise(e.ids[index], v)
}

// SetPinMask applies SetPin to every pin index whose bit is set in
// sel, using the corresponding bit of values.
func (e *Endpoint) SetPinMask(sel, values uint8) {
	for i := range e.ids {
		if i >= 8 {
			break
		}
		if sel&(1<<i) != 0 {
			e.SetPin(i, values&(1<<i) != 0)
		}
	}
}

// GetPin returns the live MCU-side level of pin index.
func (e *Endpoint) GetPin(index int) bool {
	b := e.bindings[index]
	return e.mcu.GetPin(b.Port, b.Pin)
}

// GetPinMask packs GetPin for up to 8 pins into a bitmask, pin index i
// at bit i.
func (e *Endpoint) GetPinMask() uint8 {
	var mask uint8
	for i := range e.ids {
		if i >= 8 {
			break
		}
		if e.GetPin(i) {
			mask |= 1 << i
		}
	}
	return mask
}

// Len returns the number of pins this endpoint was allocated with.
func (e *Endpoint) Len() int {
	return len(e.ids)
}

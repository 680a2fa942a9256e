// Package harness implements the execution harness around an avr.Core:
// the idle/running state machine (run, stop, single_step, reset) and
// the reset orchestrator that fans a reset out to every peripheral that
// registered an OnReset callback.
//
// All AVR mutation happens on a single dedicated worker goroutine,
// matching SPEC_FULL.md §5's preferred concurrency option: one
// goroutine owns the core and every other call is a message queued to
// it, never a second goroutine taking a lock to step in alongside it.
// This rules out the class of bug a coarse mutex doesn't: a caller
// holding the lock across a slow step while a UI thread blocks on it.
package harness

import (
	"sync/atomic"

	"github.com/mjkern/avrboard/avr"
)

// State is the harness's run state.
type State int32

const (
	Idle State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "idle"
}

type cmdKind int

const (
	cmdRun cmdKind = iota
	cmdStop
	cmdStep
	cmdReset
	cmdLoad
	cmdExec
	cmdQuit
)

type command struct {
	kind   cmdKind
	fn     func()
	path   string
	loaded *bool
	done   chan struct{}
}

// Harness drives one avr.Core through its run states and serializes
// every external interaction with it through a single worker goroutine.
type Harness struct {
	core *avr.Core

	cmd   chan command
	state int32 // atomic State

	resetCallbacks []func()
}

// New starts the harness's worker goroutine, idle, around core.
func New(core *avr.Core) *Harness {
	h := &Harness{
		core: core,
		cmd:  make(chan command),
	}
	go h.loop()
	return h
}

// State reports whether the harness is currently stepping continuously.
func (h *Harness) State() State {
	return State(atomic.LoadInt32(&h.state))
}

// OnReset registers a callback to run, in registration order, every
// time Reset completes. Register peripherals' pullup-restoring
// callback first, see SPEC_FULL.md §4.F, so everything re-wired
// after it observes a freshly pulled-up core.
func (h *Harness) OnReset(cb func()) {
	h.resetCallbacks = append(h.resetCallbacks, cb)
}

// Run switches the harness into continuous stepping and blocks until
// the worker has entered the running state. A no-op if already running.
func (h *Harness) Run() {
	h.sendSync(cmdRun, nil)
}

// Stop halts continuous stepping and blocks until the worker has
// actually stopped stepping. A no-op if already idle.
func (h *Harness) Stop() {
	h.sendSync(cmdStop, nil)
}

// SingleStep stops continuous stepping (if running) and executes
// exactly one more instruction, then blocks until it has completed.
func (h *Harness) SingleStep() {
	h.sendSync(cmdStep, nil)
}

// Reset stops the core, resets it, and fires every OnReset callback in
// registration order, after the reset, so callbacks observe
// already-cleared MCU state, matching SPEC_FULL.md §4.F/§9.
func (h *Harness) Reset() {
	h.sendSync(cmdReset, nil)
}

// LoadProgram stops the core, resets it (firing OnReset callbacks as
// Reset does), then delegates to avr.Core.LoadFirmware. Returns false
// if the firmware image could not be opened or parsed, matching
// SPEC_FULL.md §4.B.
func (h *Harness) LoadProgram(path string) bool {
	var ok bool
	done := make(chan struct{})
	h.cmd <- command{kind: cmdLoad, path: path, loaded: &ok, done: done}
	<-done
	return ok
}

// Do runs fn on the worker goroutine, serialized with any in-progress
// stepping, and blocks until fn returns. Use this for anything that
// reads or writes core/peripheral state from outside the harness.
func (h *Harness) Do(fn func()) {
	h.sendSync(cmdExec, fn)
}

// GetRegister returns general-purpose register r0..r31, read on the
// worker goroutine so it never races a concurrent Run.
func (h *Harness) GetRegister(i uint8) uint8 {
	var v uint8
	h.Do(func() { v = h.core.ReadRegister(i) })
	return v
}

// GetPC returns the current program counter, in words.
func (h *Harness) GetPC() uint32 {
	var v uint32
	h.Do(func() { v = h.core.PCWords() })
	return v
}

// GetIORegister returns the I/O-space register at index.
func (h *Harness) GetIORegister(i int) uint8 {
	var v uint8
	h.Do(func() { v = h.core.ReadIO(i) })
	return v
}

// GetPin returns the live level of the given MCU port pin.
func (h *Harness) GetPin(port byte, pin uint8) bool {
	var v bool
	h.Do(func() { v = h.core.GetPin(port, pin) })
	return v
}

// Close stops the worker goroutine permanently. The harness must not
// be used after Close returns.
func (h *Harness) Close() {
	h.sendSync(cmdQuit, nil)
}

func (h *Harness) send(c command) {
	h.cmd <- c
}

func (h *Harness) sendSync(kind cmdKind, fn func()) {
	done := make(chan struct{})
	h.cmd <- command{kind: kind, fn: fn, done: done}
	<-done
}

func (h *Harness) loop() {
	running := false
	for {
		if running {
			select {
			case c, ok := <-h.cmd:
				if !ok {
					return
				}
				if !h.handle(c, &running) {
					return
				}
			default:
				h.core.Step()
			}
			continue
		}
		c, ok := <-h.cmd
		if !ok {
			return
		}
		if !h.handle(c, &running) {
			return
		}
	}
}

// handle applies one command to the running flag and core, returns
// false if the worker should exit.
func (h *Harness) handle(c command, running *bool) bool {
	switch c.kind {
	case cmdRun:
		*running = true
		atomic.StoreInt32(&h.state, int32(Running))
	case cmdStop:
		*running = false
		atomic.StoreInt32(&h.state, int32(Idle))
	case cmdStep:
		*running = false
		atomic.StoreInt32(&h.state, int32(Idle))
		h.core.Step()
	case cmdReset:
		*running = false
		atomic.StoreInt32(&h.state, int32(Idle))
		h.core.Reset()
		for _, cb := range h.resetCallbacks {
			cb()
		}
	case cmdLoad:
		*running = false
		atomic.StoreInt32(&h.state, int32(Idle))
		h.core.Reset()
		for _, cb := range h.resetCallbacks {
			cb()
		}
		ok := h.core.LoadFirmware(c.path)
		if c.loaded != nil {
			*c.loaded = ok
		}
	case cmdExec:
		if c.fn != nil {
			c.fn()
		}
	case cmdQuit:
		if c.done != nil {
			close(c.done)
		}
		return false
	}
	if c.done != nil {
		close(c.done)
	}
	return true
}

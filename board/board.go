// Package board assembles an avr.Core, its pullup tracker, execution
// harness, and every peripheral endpoint (an HD44780 LCD, an 8-LED
// bank, a 4-button bank) into one evaluation-board emulator, the Go
// counterpart of WalnutApp.cpp's LCDLayer/LEDsLayer/ButtonsLayer plus
// Emulator wiring. Order is important since each piece depends on the
// one before it: the core must exist before its pullup tracker, the
// tracker before any endpoint connects a pin, and the harness's reset
// callbacks must register the tracker first so peripherals re-wire
// against an already pulled-high core.
package board

import (
	"fmt"

	"github.com/mjkern/avrboard/avr"
	"github.com/mjkern/avrboard/harness"
	"github.com/mjkern/avrboard/lcd"
	"github.com/mjkern/avrboard/pinfabric"
	"github.com/mjkern/avrboard/pullup"
)

// LEDs is an 8-pin bank of MCU-driven outputs, read back through the
// PIN register the same way real LED-driver firmware senses its own
// output. See spec.md's redesign note on LEDsLayer reading PIN rather
// than PORT. Every call is dispatched to the harness's worker goroutine,
// see SPEC_FULL.md §5, so a caller never reads a pin mid-Step.
type LEDs struct {
	io *pinfabric.Endpoint
	h  *harness.Harness
}

// On reports whether the MCU is currently driving LED i (0-7) high.
func (l *LEDs) On(i int) bool {
	var v bool
	l.h.Do(func() { v = l.io.GetPin(i) })
	return v
}

// Mask packs every LED's state into one byte, bit i for LED i, mirroring
// LEDsLayer's std::bitset<8> GetPinMask() display.
func (l *LEDs) Mask() uint8 {
	var v uint8
	l.h.Do(func() { v = l.io.GetPinMask() })
	return v
}

// Buttons is a 4-pin bank of externally-driven inputs, active low. Like
// LEDs, every call is serialized through the harness's worker goroutine.
type Buttons struct {
	io *pinfabric.Endpoint
	h  *harness.Harness
}

// Press pulls button i (0-3) low.
func (b *Buttons) Press(i int) {
	b.h.Do(func() { b.io.SetPin(i, false) })
}

// Release lets button i float back to pulled-high.
func (b *Buttons) Release(i int) {
	b.h.Do(func() { b.io.SetPin(i, true) })
}

// Board is one assembled emulator: a running MCU core, its execution
// harness, and every peripheral wired to it.
type Board struct {
	Core    *avr.Core
	Harness *harness.Harness
	LCD     *lcd.LCD
	LEDs    *LEDs
	Buttons *Buttons

	pullup *pullup.Tracker
	def    *Def

	lcdEndpoint *pinfabric.Endpoint
	ledEndpoint *pinfabric.Endpoint
	btnEndpoint *pinfabric.Endpoint
}

// Display returns the LCD's current 2x16 character grid, read on the
// harness's worker goroutine so it never races a concurrent Run.
func (b *Board) Display() [2][16]lcd.Character {
	var out [2][16]lcd.Character
	b.Harness.Do(func() { out = b.LCD.GetDisplay() })
	return out
}

// New assembles a board from def and loads firmwarePath into it.
func New(firmwarePath string, def *Def) (*Board, error) {
	core := avr.NewCore(def.Model)
	b := newBoard(core, def)
	if !b.Harness.LoadProgram(firmwarePath) {
		b.Harness.Close()
		return nil, fmt.Errorf("board: could not load firmware %q", firmwarePath)
	}
	return b, nil
}

// newBoard wires def's peripherals onto an already-constructed core.
// Split out from New so tests can assemble a board around a core with
// no firmware loaded.
func newBoard(core *avr.Core, def *Def) *Board {
	pu := pullup.New(core)
	h := harness.New(core)
	h.OnReset(pu.OnReset)

	b := &Board{Core: core, Harness: h, pullup: pu, def: def}

	b.lcdEndpoint = pinfabric.NewEndpoint(core.Pool, core, pu,
		[]string{"d4", "d5", "d6", "d7", "rs", "en", "rw"})
	b.lcdEndpoint.Connect(def.LCD[:])
	b.LCD = lcd.New(b.lcdEndpoint, core)
	h.OnReset(func() {
		b.lcdEndpoint.Reset()
		b.LCD.Reset()
		b.lcdEndpoint.Connect(def.LCD[:])
	})

	b.ledEndpoint = pinfabric.NewEndpoint(core.Pool, core, pu,
		[]string{"led0", "led1", "led2", "led3", "led4", "led5", "led6", "led7"})
	b.ledEndpoint.Connect(def.LEDs[:])
	b.LEDs = &LEDs{io: b.ledEndpoint, h: h}
	h.OnReset(func() {
		b.ledEndpoint.Reset()
		b.ledEndpoint.Connect(def.LEDs[:])
	})

	b.btnEndpoint = pinfabric.NewEndpoint(core.Pool, core, pu,
		[]string{"b1", "b2", "b3", "b4"})
	b.btnEndpoint.Connect(def.Buttons[:])
	b.Buttons = &Buttons{io: b.btnEndpoint, h: h}
	h.OnReset(func() {
		b.btnEndpoint.Reset()
		b.btnEndpoint.Connect(def.Buttons[:])
	})

	return b
}

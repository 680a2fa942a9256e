package lcd

import (
	"testing"

	"github.com/go-test/deep"
	"github.com/mjkern/avrboard/irq"
	"github.com/mjkern/avrboard/pinfabric"
	"github.com/mjkern/avrboard/pullup"
)

// fakeMCU stands in for avr.Core: enough of the port model to exercise
// an Endpoint's bidirectional wiring without a full instruction core.
type fakeMCU struct {
	pool *irq.Pool
	ids  map[[2]byte]irq.ID
	pins map[[2]byte]bool
}

func newFakeMCU(pool *irq.Pool) *fakeMCU {
	return &fakeMCU{pool: pool, ids: map[[2]byte]irq.ID{}, pins: map[[2]byte]bool{}}
}

func (m *fakeMCU) key(name byte, pin uint8) [2]byte { return [2]byte{name, byte(pin)} }

func (m *fakeMCU) GetIrq(name byte, pin uint8) irq.ID {
	k := m.key(name, pin)
	if id, ok := m.ids[k]; ok {
		return id
	}
	id := m.pool.AllocOne(string(name) + string(rune('0'+pin)))
	m.ids[k] = id
	m.pool.Subscribe(id, func(p *irq.Pool, id irq.ID, value uint8, ctx interface{}) {
		m.pins[k] = value != 0
	}, nil)
	return id
}

func (m *fakeMCU) GetPin(name byte, pin uint8) bool {
	return m.pins[m.key(name, pin)]
}

func (m *fakeMCU) SetExternalPort(name byte, mask, value uint8) {
	for pin := uint8(0); pin < 8; pin++ {
		if mask&(1<<pin) == 0 {
			continue
		}
		v := value&(1<<pin) != 0
		k := m.key(name, pin)
		m.pins[k] = v
		if id, ok := m.ids[k]; ok {
			raised := uint8(0)
			if v {
				raised = 1
			}
			m.pool.Raise(id, raised)
		}
	}
}

type fakeTimer struct{}

func (fakeTimer) ScheduleTimer(cyclesFromNow uint32, cb func()) { cb() }

func setupLCD(t *testing.T) (*LCD, *pinfabric.Endpoint) {
	t.Helper()
	pool := irq.NewPool()
	mcu := newFakeMCU(pool)
	pu := pullup.New(mcu)
	ep := pinfabric.NewEndpoint(pool, mcu, pu, []string{"d4", "d5", "d6", "d7", "rs", "en", "rw"})
	ep.Connect([]pinfabric.PinRef{
		{Port: 'B', Pin: 0},
		{Port: 'B', Pin: 1},
		{Port: 'B', Pin: 2},
		{Port: 'B', Pin: 3},
		{Port: 'B', Pin: 4},
		{Port: 'B', Pin: 5},
		{Port: 'B', Pin: 6},
	})
	l := New(ep, fakeTimer{})
	return l, ep
}

func setNibble(ep *pinfabric.Endpoint, v uint8) {
	for i := 0; i < 4; i++ {
		ep.SetPin(i, v&(1<<uint(i)) != 0)
	}
}

func setCtl(ep *pinfabric.Endpoint, rs, rw bool) {
	ep.SetPin(PinRS, rs)
	ep.SetPin(PinRW, rw)
}

// initFourBitMode drives the standard 4-bit bring-up sequence: three
// silent FunctionSet nibbles, a fourth that flips fourBitMode on, and a
// fifth full two-nibble FunctionSet that sets two-line mode.
func initFourBitMode(t *testing.T, l *LCD, ep *pinfabric.Endpoint) {
	t.Helper()
	setCtl(ep, false, false)
	for i := 0; i < 4; i++ {
		setNibble(ep, 0x2)
		if err := l.Tick(); err != nil {
			t.Fatalf("init tick %d: %v", i, err)
		}
	}
	if !l.fourBitMode {
		t.Fatalf("expected fourBitMode to be set after the 4th FunctionSet nibble")
	}
	setNibble(ep, 0x2)
	if err := l.Tick(); err != nil {
		t.Fatalf("function-set high nibble: %v", err)
	}
	setNibble(ep, 0x8) // N=1 (two-line), F=0
	if err := l.Tick(); err != nil {
		t.Fatalf("function-set low nibble: %v", err)
	}
	if !l.twoLineMode {
		t.Fatalf("expected twoLineMode after N=1 FunctionSet")
	}
}

func sendCommand(t *testing.T, l *LCD, ep *pinfabric.Endpoint, rs bool, high, low uint8) error {
	t.Helper()
	setCtl(ep, rs, false)
	setNibble(ep, high)
	if err := l.Tick(); err != nil {
		return err
	}
	setNibble(ep, low)
	return l.Tick()
}

func TestFourBitInitSequence(t *testing.T) {
	l, ep := setupLCD(t)
	initFourBitMode(t, l, ep)
	if l.initCounter != 3 {
		t.Fatalf("initCounter = %d, want 3", l.initCounter)
	}
}

func TestUninitializedWriteIsFatal(t *testing.T) {
	l, ep := setupLCD(t)
	setCtl(ep, true, false)
	setNibble(ep, 0x4) // 'H' high nibble, arbitrary pre-init
	_ = l.Tick()
	setNibble(ep, 0x8)
	err := l.Tick()
	if err == nil {
		t.Fatalf("expected a FatalError before the init sequence completes")
	}
	fe, ok := err.(*FatalError)
	if !ok || fe.Kind != NotInitialised {
		t.Fatalf("got error %v, want NotInitialised FatalError", err)
	}
}

func TestWriteHIToLine1(t *testing.T) {
	l, ep := setupLCD(t)
	initFourBitMode(t, l, ep)

	// EntryModeSet: I/D=1 (increment), S=0 -> command 0x06
	if err := sendCommand(t, l, ep, false, 0x0, 0x6); err != nil {
		t.Fatalf("EntryModeSet: %v", err)
	}
	// DisplayOnOffControl: D=1,C=0,B=0 -> command 0x0C
	if err := sendCommand(t, l, ep, false, 0x0, 0xC); err != nil {
		t.Fatalf("DisplayOnOffControl: %v", err)
	}

	// Write 'H' (0x48) then 'I' (0x49), RS=1.
	if err := sendCommand(t, l, ep, true, 0x4, 0x8); err != nil {
		t.Fatalf("write 'H': %v", err)
	}
	if err := sendCommand(t, l, ep, true, 0x4, 0x9); err != nil {
		t.Fatalf("write 'I': %v", err)
	}

	if l.ddram[0] != 'H' || l.ddram[1] != 'I' {
		t.Fatalf("DDRAM[0:2] = %q, want \"HI\"", l.ddram[0:2])
	}
	if l.ddramAddress != 2 {
		t.Fatalf("ddramAddress after 2 writes = %d, want 2", l.ddramAddress)
	}

	display := l.GetDisplay()
	wantH := characterFromGlyph(glyphRows('H'))
	if display[0][0] != wantH {
		t.Fatalf("display[0][0] does not match the 'H' glyph")
	}

	// The rest of line 1 and all of line 2 should still be blank.
	var wantLine1Rest, wantLine2 [16]Character
	blank := characterFromGlyph(glyphRows(' '))
	for i := range wantLine1Rest {
		wantLine1Rest[i] = blank
		wantLine2[i] = blank
	}
	if diff := deep.Equal(display[0][2:16], wantLine1Rest[2:]); diff != nil {
		t.Fatalf("rest of line 1 not blank: %v", diff)
	}
	if diff := deep.Equal(display[1][:], wantLine2[:]); diff != nil {
		t.Fatalf("line 2 not blank: %v", diff)
	}
}

func TestDisplayShiftWraps(t *testing.T) {
	l, _ := setupLCD(t)
	l.displayShift = 23
	l.shiftDisplay(true)
	if l.displayShift != 0 {
		t.Fatalf("displayShift after wrapping forward = %d, want 0", l.displayShift)
	}
	l.shiftDisplay(false)
	if l.displayShift != 23 {
		t.Fatalf("displayShift after wrapping backward = %d, want 23", l.displayShift)
	}
}

func TestResetRestoresDefaultsAndRearmsEnable(t *testing.T) {
	l, ep := setupLCD(t)
	initFourBitMode(t, l, ep)
	_ = sendCommand(t, l, ep, true, 0x4, 0x8)

	l.Reset()

	if l.fourBitMode || l.twoLineMode || l.initCounter != 0 {
		t.Fatalf("Reset did not clear mode flags/initCounter: fourBitMode=%v twoLineMode=%v initCounter=%d",
			l.fourBitMode, l.twoLineMode, l.initCounter)
	}
	if l.ddram[0] != 0 {
		t.Fatalf("Reset did not clear DDRAM")
	}

	// The enable-pulse subscriber must have been re-armed: a fresh
	// rising edge should still schedule a tick instead of silently
	// doing nothing.
	ep.SetPin(PinEN, false)
	ep.SetPin(PinEN, true)
	if !l.lastEN {
		t.Fatalf("expected the enable-pulse callback to still be subscribed after Reset")
	}
}

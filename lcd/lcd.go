// Package lcd implements a cycle-accurate HD44780 character-LCD state
// machine in 4-bit mode, wired to an MCU through a pinfabric.Endpoint.
// It follows the decode/execute/shift logic of the original
// implementation (see SPEC_FULL.md §4.E), not a line-by-line port of
// it: nibble assembly, the highest-set-bit instruction classifier, and
// the DDRAM/CGRAM address-counter arithmetic are all reproduced, while
// memory layout (CGRAM storage, built-in font data) is adapted to a
// more idiomatic Go representation.
package lcd

import (
	"log"

	"github.com/mjkern/avrboard/irq"
	"github.com/mjkern/avrboard/pinfabric"
)

// Pin indices within the 7-pin endpoint a board wires an LCD to, in
// the order IoConnector<7> declares them.
const (
	PinD4 = iota
	PinD5
	PinD6
	PinD7
	PinRS
	PinEN
	PinRW
)

// command bit positions within the assembled 10-bit command word.
const (
	cmdRW = 8
	cmdRS = 9
)

// Instruction is the decoded HD44780 opcode, identified by the
// highest set bit of the 10-bit command word.
type Instruction uint8

const (
	InstructionNone Instruction = iota
	InstructionDisplayClear
	InstructionReturnHome
	InstructionEntryModeSet
	InstructionDisplayOnOffControl
	InstructionCursorDisplayShift
	InstructionFunctionSet
	InstructionSetCGRAMAddress
	InstructionSetDDRAMAddress
	InstructionReadBusyFlagAndAddress
	InstructionWriteDataToRAM
	InstructionReadDataFromRAM
)

// Timer is the subset of avr.Core an LCD needs to defer a tick by one
// cycle after an EN rising edge, so port writes from the same
// instruction have settled before the nibble is sampled.
type Timer interface {
	ScheduleTimer(cyclesFromNow uint32, cb func())
}

// LCD is one HD44780 controller instance: 80 bytes of DDRAM, 64 bytes
// of CGRAM, the three address counters, the entry/display control
// flags, and the 4-bit nibble-assembly state machine.
type LCD struct {
	io    *pinfabric.Endpoint
	timer Timer

	ddram [80]byte
	cgram [64]byte

	ddramAddress  uint8
	cgramAddress  uint8
	cursorAddress uint8
	displayShift  uint8
	usingCGRAM    bool

	initCounter uint8

	fourBitMode     bool
	twoLineMode     bool
	fiveBySevenDots bool
	display         bool
	cursor          bool
	blink           bool
	increment       bool
	shift           bool

	lowNibble, highNibble uint8
	nibbleSelect          bool
	rs, rw                bool

	lowNibbleToWrite uint8
	pendingWrite     bool

	lastEN bool
}

// New constructs an LCD bound to io (a 7-pin endpoint in PinD4..PinRW
// order) and timer (used to schedule the one-cycle-deferred tick after
// an EN rising edge). It subscribes its own enable-pulse callback.
func New(io *pinfabric.Endpoint, timer Timer) *LCD {
	l := &LCD{io: io, timer: timer}
	l.subscribeEnable()
	return l
}

// Reset restores power-on defaults: blank DDRAM/CGRAM, every counter
// and flag cleared, and initCounter reset so the next three
// FunctionSet commands are consumed silently as the 4-bit init
// sequence. `increment` clears to false here even though the
// datasheet's own power-on default is true; this matches the
// original implementation, and firmware is expected to set entry mode
// explicitly before writing data regardless.
func (l *LCD) Reset() {
	for i := range l.ddram {
		l.ddram[i] = 0
	}
	for i := range l.cgram {
		l.cgram[i] = 0
	}
	l.ddramAddress = 0
	l.cgramAddress = 0
	l.cursorAddress = 0
	l.displayShift = 0
	l.usingCGRAM = false
	l.initCounter = 0
	l.fourBitMode = false
	l.twoLineMode = false
	l.fiveBySevenDots = false
	l.display = false
	l.cursor = false
	l.blink = false
	l.increment = false
	l.shift = false
	l.lowNibble, l.highNibble = 0, 0
	l.nibbleSelect = false
	l.rs, l.rw = false, false
	l.lastEN = false
	l.lowNibbleToWrite = 0
	l.pendingWrite = false

	// The endpoint clears LCD's subscriber on its own Reset; re-arm it.
	l.subscribeEnable()
}

func (l *LCD) subscribeEnable() {
	l.io.AddCallback(PinEN, func(pool *irq.Pool, id irq.ID, value uint8, ctx interface{}) {
		rising := !l.lastEN && value != 0
		l.lastEN = value != 0
		if !rising {
			return
		}
		l.timer.ScheduleTimer(1, func() {
			if err := l.Tick(); err != nil {
				log.Printf("lcd: %v", err)
			}
		})
	}, nil)
}

// Tick samples the current port state and, once a full command has
// been assembled (both nibbles in 4-bit mode), decodes and executes
// it. It returns a *FatalError for the protocol violations the
// original implementation treated as fatal; every other malformed
// input is absorbed silently, matching GetInstruction's "unset command
// word decodes to no instruction" behavior.
func (l *LCD) Tick() error {
	l.readPort()

	if l.fourBitMode {
		l.nibbleSelect = !l.nibbleSelect
		if l.pendingWrite {
			l.io.SetPinMask(0xF, l.lowNibbleToWrite)
			l.pendingWrite = false
		}
		if l.nibbleSelect && !l.rw {
			return nil // writing: wait for the low nibble too
		}
		if !l.nibbleSelect && l.rw {
			return nil // reading: already responded after the low nibble
		}
	}

	command := l.command()
	instr := instructionFromCommand(command)
	if instr != InstructionFunctionSet && l.initCounter < 3 {
		return &FatalError{Kind: NotInitialised, Msg: "instruction issued before the 4-bit init sequence completed"}
	}

	switch instr {
	case InstructionDisplayClear:
		l.displayClear()
	case InstructionReturnHome:
		l.returnHome()
	case InstructionEntryModeSet:
		l.entryModeSet(command)
	case InstructionDisplayOnOffControl:
		l.displayOnOffControl(command)
	case InstructionCursorDisplayShift:
		l.cursorDisplayShift(command)
	case InstructionFunctionSet:
		return l.functionSet(command)
	case InstructionSetCGRAMAddress:
		l.setCGRAMAddress(command)
	case InstructionSetDDRAMAddress:
		l.setDDRAMAddress(command)
	case InstructionReadBusyFlagAndAddress:
		l.readBusyFlagAndAddress()
	case InstructionWriteDataToRAM:
		return l.writeDataToRAM(command)
	case InstructionReadDataFromRAM:
		return l.readDataFromRAM()
	}
	return nil
}

// InFourBitMode reports whether the init sequence has completed and
// the controller is now assembling commands from paired nibbles.
func (l *LCD) InFourBitMode() bool {
	return l.fourBitMode
}

func (l *LCD) readPort() {
	mask := l.io.GetPinMask()
	nibble := mask & 0xF
	if l.nibbleSelect && l.fourBitMode {
		l.lowNibble = nibble
	} else {
		l.highNibble = nibble
	}
	l.rs = mask&(1<<PinRS) != 0
	l.rw = mask&(1<<PinRW) != 0
}

// writePin drives a full byte onto the 4-bit bus across two ticks: the
// high nibble immediately, the low nibble deferred to the next tick
// (matching real 4-bit-mode bus timing).
func (l *LCD) writePin(value uint8) {
	l.io.SetPinMask(0xF, (value>>4)&0xF)
	l.lowNibbleToWrite = value & 0xF
	l.pendingWrite = true
}

func (l *LCD) dataBus() uint8 {
	return l.lowNibble | (l.highNibble << 4)
}

func (l *LCD) command() uint16 {
	c := uint16(l.dataBus())
	if l.rw {
		c |= 1 << cmdRW
	}
	if l.rs {
		c |= 1 << cmdRS
	}
	return c
}

// instructionFromCommand classifies a command word by its
// highest set bit, matching GetInstruction's shift-until-zero loop: a
// command with no bits set decodes to InstructionNone, which Tick
// silently ignores.
func instructionFromCommand(command uint16) Instruction {
	x := command & 0x3FF
	var i Instruction
	for x != 0 {
		i++
		x >>= 1
	}
	return i
}

// Package avr is a thin façade over an AVR instruction-set core,
// modeled on the ATmega644. It owns flash, the register file, the I/O
// register space (including the per-port PIN/DDR/PORT triples), and
// the signal graph node for every port pin. Instruction-level accuracy
// of the full ATmega644 ISA is explicitly out of scope (see
// SPEC_FULL.md §1 Non-goals); Core implements a representative,
// documented instruction subset sufficient to drive real register and
// port traffic.
package avr

import (
	"debug/elf"
	"log"

	"github.com/mjkern/avrboard/irq"
)

const (
	numPorts   = 4 // 'A'..'D'
	ioRegSize  = 64
	sramSize   = 1 << 14 // 16k of general data memory, generous for the ATmega644's 4k SRAM plus headroom
	flashSize  = 1 << 16 // 64k, matches the ATmega644's 64k flash
	numRegs    = 32
	stackTop   = sramSize - 1
)

// PortIndex returns the I/O-space index of the PIN register for port
// name (case-insensitive). DDR and PORT follow at +1 and +2.
func PortIndex(name byte) int {
	if name >= 'a' && name <= 'z' {
		name -= 'a' - 'A'
	}
	return int(name-'A') * 3
}

// portLetter is the inverse of PortIndex's (name-'A') scaling.
func portLetter(idx int) byte {
	return byte('A' + idx)
}

// Core is an instantiated AVR MCU: registers, data space, flash, and
// the IRQ pool backing every port pin.
type Core struct {
	Pool *irq.Pool

	regs  [numRegs]byte
	sreg  byte
	sp    uint16
	pcw   uint32 // program counter, in words (as the hardware counts it)
	sram  [sramSize]byte
	io    [ioRegSize]byte
	flash [flashSize]byte

	flashEnd uint32

	ddr      [numPorts]byte
	port     [numPorts]byte
	external [numPorts]byte
	pin      [numPorts]byte

	portIrq [numPorts][8]irq.ID

	cycle  uint64
	timers []timer
}

type timer struct {
	at uint64
	cb func()
}

// NewCore constructs and powers on an ATmega644 core. model is
// accepted for interface parity with the MCU-handle concept in
// SPEC_FULL.md §3 ("identified by model name"); only "atmega644" is
// supported.
func NewCore(model string) *Core {
	if model != "" && model != "atmega644" {
		log.Printf("avr: unknown model %q, defaulting to atmega644", model)
	}
	c := &Core{Pool: irq.NewPool()}
	for p := 0; p < numPorts; p++ {
		names := make([]string, 8)
		for i := range names {
			names[i] = string(portLetter(p)) + string(rune('0'+i))
		}
		ids := c.Pool.Alloc(names)
		copy(c.portIrq[p][:], ids)
	}
	c.Reset()
	return c
}

// GetIrq returns the signal-graph node for a single MCU port pin.
func (c *Core) GetIrq(name byte, pin uint8) irq.ID {
	return c.portIrq[PortIndex(name)/3][pin]
}

// Reset zeros registers, SREG, SP (to the top of SRAM) and PC, and
// recomputes every port's pin level from its (cleared) DDR/PORT state
// and whatever external levels are currently asserted. It does not
// touch flash contents or the external-pullup shadow; those survive a
// soft reset exactly as on real hardware and as SPEC_FULL.md's pullup
// tracker component (not this one) is responsible for re-arming.
func (c *Core) Reset() {
	c.regs = [numRegs]byte{}
	c.sreg = 0
	c.sp = stackTop
	c.pcw = 0
	for i := range c.io {
		c.io[i] = 0
	}
	for p := 0; p < numPorts; p++ {
		c.ddr[p] = 0
		c.port[p] = 0
		c.recomputePin(p)
	}
	c.cycle = 0
	c.timers = nil
}

// LoadFirmware reads an ELF image built for the ATmega644, populates
// flash from its allocated PROGBITS sections, and resets the core.
// Returns false if the file cannot be opened or parsed.
func (c *Core) LoadFirmware(path string) bool {
	f, err := elf.Open(path)
	if err != nil {
		log.Printf("avr: can't open firmware %q: %v", path, err)
		return false
	}
	defer f.Close()

	var end uint32
	for _, sec := range f.Sections {
		if sec.Flags&elf.SHF_ALLOC == 0 {
			continue
		}
		if sec.Type != elf.SHT_PROGBITS {
			continue
		}
		if sec.Addr+sec.Size > uint64(len(c.flash)) {
			log.Printf("avr: section %s overruns flash (end %#x)", sec.Name, sec.Addr+sec.Size)
			continue
		}
		data, err := sec.Data()
		if err != nil {
			log.Printf("avr: can't read section %s: %v", sec.Name, err)
			return false
		}
		copy(c.flash[sec.Addr:], data)
		if top := uint32(sec.Addr + sec.Size); top > end {
			end = top
		}
	}
	c.flashEnd = end
	c.Reset()
	return true
}

// FlashEnd returns the byte address one past the last loaded flash
// byte, matching simavr's avr->flashend.
func (c *Core) FlashEnd() uint32 {
	return c.flashEnd
}

// ReadRegister returns general-purpose register r0..r31.
func (c *Core) ReadRegister(index uint8) uint8 {
	return c.regs[index&0x1F]
}

// ReadIO returns the I/O register at index, reflecting the live PIN
// value for port PIN registers.
func (c *Core) ReadIO(index int) uint8 {
	return c.io[index%ioRegSize]
}

// PCWords returns the program counter as a word address (bytes / 2),
// matching SPEC_FULL.md §3's pc_word conversion.
func (c *Core) PCWords() uint32 {
	return c.pcw
}

// SetExternalPort asserts value (masked by mask) as the externally
// driven level on port name. Called by the pullup tracker, never
// directly by peripheral models.
func (c *Core) SetExternalPort(name byte, mask, value uint8) {
	p := PortIndex(name) / 3
	c.external[p] = (c.external[p] &^ mask) | (value & mask)
	c.recomputePin(p)
}

// GetPin reads the live PIN-register bit for a single port pin.
func (c *Core) GetPin(name byte, pin uint8) bool {
	p := PortIndex(name) / 3
	return c.pin[p]&(1<<pin) != 0
}

// recomputePin derives the PIN register for port p from its DDR/PORT
// latch and externally-asserted level. Output-configured bits read
// back the driven PORT value, input-configured bits read back whatever
// the pullup tracker is currently asserting. This is the fix for the
// simavr pitfall SPEC_FULL.md §4.C documents: without an explicit
// external assertion, input pins would read back their own PORT
// latch instead of the outside world's driven level.
func (c *Core) recomputePin(p int) {
	ddr := c.ddr[p]
	newPin := (c.port[p] & ddr) | (c.external[p] &^ ddr)
	old := c.pin[p]
	if newPin == old {
		c.io[p*3] = newPin
		return
	}
	c.pin[p] = newPin
	c.io[p*3] = newPin
	changed := old ^ newPin
	for bit := uint8(0); bit < 8; bit++ {
		if changed&(1<<bit) != 0 {
			c.Pool.Raise(c.portIrq[p][bit], (newPin>>bit)&1)
		}
	}
}

// writeIO applies a write to I/O register index, handling the
// PIN/DDR/PORT triple's special semantics: writing PORT sets the
// output latch, writing DDR changes direction, and, matching real AVR
// hardware, writing a 1 bit to the PIN register toggles the
// corresponding PORT output bit.
func (c *Core) writeIO(index int, value uint8) {
	index %= ioRegSize
	c.io[index] = value
	p := index / 3
	if p >= numPorts {
		return
	}
	switch index % 3 {
	case 0: // PIN: write-1-to-toggle
		c.port[p] ^= value
		c.io[p*3+2] = c.port[p]
		c.recomputePin(p)
	case 1: // DDR
		c.ddr[p] = value
		c.recomputePin(p)
	case 2: // PORT
		c.port[p] = value
		c.recomputePin(p)
	}
}

// ScheduleTimer arranges for cb to run after cyclesFromNow further
// calls to Step have advanced the cycle counter. Used by peripheral
// models (the LCD) to defer sampling until the rest of the current
// instruction's port writes have settled.
func (c *Core) ScheduleTimer(cyclesFromNow uint32, cb func()) {
	c.timers = append(c.timers, timer{at: c.cycle + uint64(cyclesFromNow), cb: cb})
}

// Cycle returns the number of Step calls executed since the last reset.
func (c *Core) Cycle() uint64 {
	return c.cycle
}

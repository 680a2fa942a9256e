package lcd

// command-word data bit positions, shared with the 8-bit data bus
// layout (Command::D0..D7 in the original).
const (
	bitD0 = 1 << 0
	bitD1 = 1 << 1
	bitD2 = 1 << 2
	bitD3 = 1 << 3
	bitD4 = 1 << 4
)

func (l *LCD) displayClear() {
	for i := range l.ddram {
		l.ddram[i] = ' '
	}
	l.ddramAddress = 0
	l.usingCGRAM = false
	l.cursorAddress = 0
	l.displayShift = 0
}

func (l *LCD) returnHome() {
	l.ddramAddress = 0
	l.usingCGRAM = false
	l.cursorAddress = 0
	l.displayShift = 0
}

func (l *LCD) entryModeSet(command uint16) {
	l.increment = command&bitD1 != 0
	l.shift = command&bitD0 != 0
}

func (l *LCD) displayOnOffControl(command uint16) {
	l.display = command&bitD2 != 0
	l.cursor = command&bitD1 != 0
	l.blink = command&bitD0 != 0
}

func (l *LCD) cursorDisplayShift(command uint16) {
	shiftDisplay := command&bitD3 != 0
	rightLeft := command&bitD2 != 0
	if shiftDisplay {
		l.shiftDisplay(rightLeft)
	}
	l.incCursor(rightLeft)
}

// functionSet consumes the first three FunctionSet commands silently
// as the 4-bit initialization sequence (real 4-bit-mode firmware sends
// FunctionSet with only the high nibble three times before the
// interface is considered synchronized). The fourth call applies the
// real mode bits.
func (l *LCD) functionSet(command uint16) error {
	dataLength := command&bitD4 != 0
	twoLine := command&bitD3 != 0
	font := command&bitD2 != 0

	if l.initCounter < 3 {
		l.initCounter++
		return nil
	}

	l.fourBitMode = !dataLength
	l.twoLineMode = twoLine
	l.fiveBySevenDots = !font || twoLine

	if !l.fourBitMode {
		return &FatalError{Kind: UnsupportedMode, Msg: "8-bit mode not supported"}
	}
	return nil
}

func (l *LCD) setCGRAMAddress(command uint16) {
	l.cgramAddress = uint8(command & 0x3F)
	l.usingCGRAM = true
}

func (l *LCD) setDDRAMAddress(command uint16) {
	l.ddramAddress = uint8(command & 0x7F)
	l.usingCGRAM = false
}

func (l *LCD) readBusyFlagAndAddress() {
	// busy is always false: every operation here completes instantly.
	l.writePin(l.ddramAddress & 0x7F)
}

func (l *LCD) writeDataToRAM(command uint16) error {
	data := uint8(command & 0xFF)
	if l.usingCGRAM {
		if l.cgramAddress > 63 {
			return &FatalError{Kind: AddressOutOfBounds, Msg: "CGRAM address out of bounds"}
		}
		l.cgram[l.cgramAddress] = data
	} else {
		if l.ddramAddress > 79 {
			return &FatalError{Kind: AddressOutOfBounds, Msg: "DDRAM address out of bounds"}
		}
		l.ddram[l.ddramAddress] = data
	}
	l.incShift()
	return nil
}

func (l *LCD) readDataFromRAM() error {
	if l.usingCGRAM {
		if l.cgramAddress > 63 {
			return &FatalError{Kind: AddressOutOfBounds, Msg: "CGRAM address out of bounds"}
		}
		l.writePin(l.cgram[l.cgramAddress])
	} else {
		if l.ddramAddress > 79 {
			return &FatalError{Kind: AddressOutOfBounds, Msg: "DDRAM address out of bounds"}
		}
		l.writePin(l.ddram[l.ddramAddress])
	}
	l.incShift()
	return nil
}

func (l *LCD) incDDRam(rightLeft bool) {
	switch {
	case rightLeft && l.ddramAddress == 79:
		l.ddramAddress = 0
	case rightLeft:
		l.ddramAddress++
	case !rightLeft && l.ddramAddress == 0:
		l.ddramAddress = 79
	default:
		l.ddramAddress--
	}
}

func (l *LCD) incCGRam(rightLeft bool) {
	switch {
	case rightLeft && l.cgramAddress == 63:
		l.cgramAddress = 0
	case rightLeft:
		l.cgramAddress++
	case !rightLeft && l.cgramAddress == 0:
		l.cgramAddress = 63
	default:
		l.cgramAddress--
	}
}

func (l *LCD) incCursor(rightLeft bool) {
	switch {
	case rightLeft && l.cursorAddress == 79:
		l.cursorAddress = 0
	case rightLeft:
		l.cursorAddress++
	case !rightLeft && l.cursorAddress == 0:
		l.cursorAddress = 79
	default:
		l.cursorAddress--
	}
}

func (l *LCD) shiftDisplay(rightLeft bool) {
	switch {
	case rightLeft && l.displayShift == 23:
		l.displayShift = 0
	case rightLeft:
		l.displayShift++
	case !rightLeft && l.displayShift == 0:
		l.displayShift = 23
	default:
		l.displayShift--
	}
}

// incShift is the post-RAM-access address bump: the active register
// (CGRAM or DDRAM, whichever the last SetXRAMAddress selected) always
// advances forward by one, regardless of the entry-mode increment/
// decrement flag; only the cursor position honors that flag. This is
// grounded directly on IncShift's body: it calls IncCGRam(true) /
// IncDDRam(true) unconditionally, but IncCursor(increment).
func (l *LCD) incShift() {
	if l.shift {
		l.shiftDisplay(l.increment)
	}
	if l.usingCGRAM {
		l.incCGRam(true)
	} else {
		l.incDDRam(true)
	}
	if l.cursor {
		l.incCursor(l.increment)
	}
}

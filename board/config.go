package board

import "github.com/mjkern/avrboard/pinfabric"

// Def describes one evaluation board's pin map: which MCU port pin
// each peripheral is wired to. Model selects the AVR variant (only
// "atmega644" is implemented, see avr.NewCore).
type Def struct {
	Model string

	// LCD is the 7-pin HD44780 wiring, in lcd.PinD4..lcd.PinRW order.
	LCD [7]pinfabric.PinRef

	// LEDs is an 8-pin bank, each pin an MCU output driving one LED.
	LEDs [8]pinfabric.PinRef

	// Buttons is a 4-pin bank, each pin an MCU input a push button
	// pulls low when pressed.
	Buttons [4]pinfabric.PinRef
}

// DefaultDef mirrors the reference board's fixed wiring: an LCD on
// port B, 8 LEDs on port C, and 4 buttons on port D. LEDsLayer and
// ButtonsLayer bind both banks to the same port C pins for demo
// convenience; DefaultDef keeps each bank on its own port instead,
// since two peripherals sharing a physical pin isn't something a real
// board does and nothing in SPEC_FULL.md requires reproducing it.
func DefaultDef() *Def {
	return &Def{
		Model: "atmega644",
		LCD: [7]pinfabric.PinRef{
			{Port: 'B', Pin: 0}, // D4
			{Port: 'B', Pin: 1}, // D5
			{Port: 'B', Pin: 2}, // D6
			{Port: 'B', Pin: 3}, // D7
			{Port: 'B', Pin: 4}, // RS
			{Port: 'B', Pin: 5}, // EN
			{Port: 'B', Pin: 6}, // RW
		},
		LEDs: [8]pinfabric.PinRef{
			{Port: 'C', Pin: 0}, {Port: 'C', Pin: 1}, {Port: 'C', Pin: 2}, {Port: 'C', Pin: 3},
			{Port: 'C', Pin: 4}, {Port: 'C', Pin: 5}, {Port: 'C', Pin: 6}, {Port: 'C', Pin: 7},
		},
		Buttons: [4]pinfabric.PinRef{
			// Default true: released, matching a button wired to ground
			// through a switch with the pin pulled up (LEDsLayer/
			// ButtonsLayer's own default connector level of 1).
			{Port: 'D', Pin: 0, Default: true},
			{Port: 'D', Pin: 1, Default: true},
			{Port: 'D', Pin: 2, Default: true},
			{Port: 'D', Pin: 3, Default: true},
		},
	}
}

// Package board holds the pin assignment of the adapter PCB and builds the
// bus driver for a detected family. GPIO numbers follow the connector
// wiring of the original Arduino board, digital pin n on GPIO n.
package board

import (
	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/bus"
	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/detect"
	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/pad"
	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/pin"
)

// Sense pins.
const (
	DetectExtra  pin.ID = 8
	DetectA      pin.ID = 9
	DetectB      pin.ID = 10
	DetectC      pin.ID = 11
	DetectArcade pin.ID = 12
)

var DetectPins = detect.Pins{
	Arcade: DetectArcade,
	SenseA: DetectA,
	SenseB: DetectB,
	SenseC: DetectC,
	Extra:  DetectExtra,
}

var (
	// NES, SNES and the Neo Geo cable share one shift register port.
	ShiftPins = bus.ShiftRegisterPins{Latch: 5, Clock: 6, Data: 7}

	ArcadePins = bus.ShiftRegisterPins{Latch: 6, Clock: 7, Data: 13}

	GenesisPins = bus.GenesisPins{
		Up: 2, Down: 3, Left: 4, Right: 5,
		AB: 6, CStart: 7, Select: 14,
	}

	SaturnPins = bus.SaturnPins{
		S0:   14,
		S1:   6,
		Data: [4]pin.ID{2, 3, 4, 5},
	}

	// The PlayStation clock shares a pin with DetectExtra.
	PSXPins = bus.PSXPins{Data: 2, Command: 3, Attention: 4, Clock: 8}

	JoybusLine pin.ID = 2
)

// PSXNegotiate makes the PlayStation driver lock the pad in analog mode
// during Init.
const PSXNegotiate = true

// Driver returns the bus driver for f. Unknown families get the Genesis
// driver.
func Driver(f pad.Family, io pin.IO) bus.Driver {
	switch f {
	case pad.Arcade:
		return bus.NewShiftRegister(io, ArcadePins, bus.ArcadeBits)
	case pad.NES:
		return bus.NewShiftRegister(io, ShiftPins, bus.NESBits)
	case pad.SNES:
		return bus.NewShiftRegister(io, ShiftPins, bus.SNESBits)
	case pad.NeoGeo:
		return bus.NewShiftRegister(io, ShiftPins, bus.NeoGeoBits)
	case pad.PS2:
		return bus.NewPSX(io, PSXPins, PSXNegotiate)
	case pad.GameCube:
		return bus.GameCube(bus.NewJoybus(io, JoybusLine))
	case pad.N64:
		return bus.N64(bus.NewJoybus(io, JoybusLine))
	case pad.Saturn:
		return bus.NewSaturn(io, SaturnPins)
	}
	return bus.NewGenesis(io, GenesisPins)
}

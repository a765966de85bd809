// Package detect identifies the extension cable plugged into the adapter
// from a handful of sense pins the cable grounds.
//
// Detection runs once at startup. The code space:
//
//	arcade switch - Arcade (overrides everything)
//	0111 - Genesis (also the fallback)
//	0110 - NES
//	0101 - SNES
//	0100 - PS2
//	0011 - GameCube
//	0010 - N64
//	0001 - NeoGeo
//	0000 - reserved
//	1111 - Saturn
//	1110 - reserved (DFU dongle)
//	1100 - do not use, its low bits are the PS2 code
package detect

import (
	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/pad"
	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/pin"
)

// Code is the packed sense-pin reading.
type Code uint8

const (
	CodeNeoGeo    Code = 0b0001
	CodeN64       Code = 0b0010
	CodeGameCube  Code = 0b0011
	CodePS2       Code = 0b0100
	CodeSNES      Code = 0b0101
	CodeNES       Code = 0b0110
	CodeGenesis   Code = 0b0111
	CodeSaturn    Code = 0b1111
	CodeReserved  Code = 0b0000
	CodeDFUDongle Code = 0b1110
	CodeDoNotUse  Code = 0b1100

	// CodeArcade is returned when the arcade switch is set. It lies outside
	// the 4-bit pin space.
	CodeArcade Code = 0xFF
)

// Pins are the sense lines. SenseA, SenseB and SenseC form bits 2, 1 and 0.
// Extra extends the code with bit 3 and is shared with the PS2 clock line.
type Pins struct {
	Arcade pin.ID
	SenseA pin.ID
	SenseB pin.ID
	SenseC pin.ID
	Extra  pin.ID
}

var families = map[Code]pad.Family{
	CodeNeoGeo:   pad.NeoGeo,
	CodeN64:      pad.N64,
	CodeGameCube: pad.GameCube,
	CodePS2:      pad.PS2,
	CodeSNES:     pad.SNES,
	CodeNES:      pad.NES,
	CodeGenesis:  pad.Genesis,
	CodeSaturn:   pad.Saturn,
	CodeArcade:   pad.Arcade,
}

// Scan reads the sense pins and returns the raw code.
func Scan(io pin.IO, pins Pins) Code {
	io.Configure(pins.SenseA, pin.InputPullup)
	io.Configure(pins.SenseB, pin.InputPullup)
	io.Configure(pins.SenseC, pin.InputPullup)
	io.Configure(pins.Arcade, pin.InputPullup)

	if io.Get(pins.Arcade) {
		return CodeArcade
	}

	code := bit(io.Get(pins.SenseA))<<2 | bit(io.Get(pins.SenseB))<<1 | bit(io.Get(pins.SenseC))

	// The PS2 cable drives its clock on Extra; leave it alone.
	if code != CodePS2 {
		io.Configure(pins.Extra, pin.InputPullup)
		code |= bit(!io.Get(pins.Extra)) << 3
		io.Configure(pins.Extra, pin.Input)
	}

	return code
}

// Family maps a code to a pad family. Reserved and unknown codes fall back
// to Genesis: a pad is always assumed to be connected.
func Family(c Code) pad.Family {
	if f, ok := families[c]; ok {
		return f
	}
	return pad.Genesis
}

// Detect scans the sense pins and returns the attached family.
func Detect(io pin.IO, pins Pins) pad.Family {
	return Family(Scan(io, pins))
}

func bit(v bool) Code {
	if v {
		return 1
	}
	return 0
}

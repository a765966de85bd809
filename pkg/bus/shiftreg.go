package bus

import (
	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/pad"
	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/pin"
)

const (
	shiftLatchPulse = 12
	shiftClockDelay = 6
)

// Frame lengths of the shift-register pads.
const (
	NESBits    = 8
	SNESBits   = 16
	ArcadeBits = 16
	NeoGeoBits = 16
)

// ShiftRegisterPins wires a parallel-in serial-out pad (NES, SNES, the arcade
// board and the Neo Geo cable).
type ShiftRegisterPins struct {
	Latch pin.ID
	Clock pin.ID
	Data  pin.ID
}

// ShiftRegister reads a 4021-style shift register. Bit i of the frame is the
// i-th bit shifted out, 1 = pressed.
type ShiftRegister struct {
	io   pin.IO
	pins ShiftRegisterPins
	bits uint8
}

// NewShiftRegister creates a driver shifting in bits bits per read.
func NewShiftRegister(io pin.IO, pins ShiftRegisterPins, bits uint8) *ShiftRegister {
	if bits > 32 {
		bits = 32
	}
	return &ShiftRegister{io: io, pins: pins, bits: bits}
}

func (s *ShiftRegister) Init() error {
	s.io.Configure(s.pins.Latch, pin.Output)
	s.io.Configure(s.pins.Clock, pin.Output)
	s.io.Configure(s.pins.Data, pin.InputPullup)
	s.io.Set(s.pins.Latch, false)
	s.io.Set(s.pins.Clock, false)
	return nil
}

func (s *ShiftRegister) Read() pad.Frame {
	s.io.Set(s.pins.Latch, true)
	s.io.DelayMicroseconds(shiftLatchPulse)
	s.io.Set(s.pins.Latch, false)
	s.io.DelayMicroseconds(shiftClockDelay)

	var bits uint32
	for i := uint8(0); i < s.bits; i++ {
		if !s.io.Get(s.pins.Data) {
			bits |= 1 << i
		}
		s.io.Set(s.pins.Clock, true)
		s.io.DelayMicroseconds(shiftClockDelay)
		s.io.Set(s.pins.Clock, false)
		s.io.DelayMicroseconds(shiftClockDelay)
	}

	return pad.Frame{Bits: bits}
}

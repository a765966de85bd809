package bus

import (
	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/pad"
	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/pin"
)

// Saturn frame bits.
const (
	SaturnUp    uint32 = 1 << 0
	SaturnDown  uint32 = 1 << 1
	SaturnLeft  uint32 = 1 << 2
	SaturnRight uint32 = 1 << 3
	SaturnA     uint32 = 1 << 4
	SaturnB     uint32 = 1 << 5
	SaturnC     uint32 = 1 << 6
	SaturnX     uint32 = 1 << 7
	SaturnY     uint32 = 1 << 8
	SaturnZ     uint32 = 1 << 9
	SaturnL     uint32 = 1 << 10
	SaturnR     uint32 = 1 << 11
	SaturnStart uint32 = 1 << 12
)

const saturnSelectDelay = 4

// SaturnPins wires a Saturn pad: two select lines and four data lines.
type SaturnPins struct {
	S0, S1 pin.ID
	Data   [4]pin.ID
}

// saturnMux lists, per (S0, S1) select state, which bit each data line
// carries. Zero means the line is not a button in that state.
var saturnMux = [4]struct {
	s0, s1 bool
	lines  [4]uint32
}{
	{false, false, [4]uint32{SaturnZ, SaturnY, SaturnX, SaturnR}},
	{true, false, [4]uint32{SaturnB, SaturnC, SaturnA, SaturnStart}},
	{false, true, [4]uint32{SaturnUp, SaturnDown, SaturnLeft, SaturnRight}},
	{true, true, [4]uint32{0, 0, 0, SaturnL}},
}

// Saturn reads a standard Saturn digital pad.
type Saturn struct {
	io   pin.IO
	pins SaturnPins
}

func NewSaturn(io pin.IO, pins SaturnPins) *Saturn {
	return &Saturn{io: io, pins: pins}
}

func (s *Saturn) Init() error {
	s.io.Configure(s.pins.S0, pin.Output)
	s.io.Configure(s.pins.S1, pin.Output)
	for _, p := range s.pins.Data {
		s.io.Configure(p, pin.InputPullup)
	}
	s.io.Set(s.pins.S0, true)
	s.io.Set(s.pins.S1, true)
	return nil
}

func (s *Saturn) Read() pad.Frame {
	var bits uint32
	for _, m := range saturnMux {
		s.io.Set(s.pins.S0, m.s0)
		s.io.Set(s.pins.S1, m.s1)
		s.io.DelayMicroseconds(saturnSelectDelay)
		for i, mask := range m.lines {
			if mask != 0 && !s.io.Get(s.pins.Data[i]) {
				bits |= mask
			}
		}
	}
	s.io.Set(s.pins.S0, true)
	s.io.Set(s.pins.S1, true)
	return pad.Frame{Bits: bits}
}

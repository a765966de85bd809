// Package normalize maps raw bus frames to the canonical pad state. Every
// family is a table in layout.go; Normalize itself only knows how to fold
// byte frames into a bitmask and where each family's axes come from.
package normalize

import (
	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/bus"
	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/pad"
)

// Normalize returns the canonical state for one frame of family f. A
// PlayStation poll with a bad identifier carries no data and returns prev
// unchanged. A short Joybus reply means the pad stopped answering and
// returns the neutral state.
func Normalize(f pad.Family, fr pad.Frame, prev pad.State) pad.State {
	if !f.Valid() {
		f = pad.Genesis
	}
	l := &layouts[f]

	bits, ok := fold(f, fr)
	if !ok {
		if f == pad.PS2 {
			return prev
		}
		return pad.Neutral()
	}

	s := pad.Neutral()

	up := bits&l.up != 0
	down := bits&l.down != 0
	left := bits&l.left != 0
	right := bits&l.right != 0
	s.SetButton(pad.Up, up)
	s.SetButton(pad.Down, down)
	s.SetButton(pad.Left, left)
	s.SetButton(pad.Right, right)
	s.Direction = pad.Direction(up, down, left, right)

	for _, b := range l.buttons {
		if bits&b.mask != 0 {
			s.SetButton(b.button, true)
		}
	}

	switch l.axes {
	case dpadAxes:
		s.LeftX = synth(left, right)
		s.LeftY = synth(up, down)
	case psxAxes:
		if fr.Len >= 6 {
			s.RightX = fr.Data[2]
			s.RightY = fr.Data[3]
			s.LeftX = fr.Data[4]
			s.LeftY = fr.Data[5]
		} else {
			s.LeftX = synth(left, right)
			s.LeftY = synth(up, down)
		}
		if !bus.PSXAnalog(fr.ID) {
			s.SetButton(pad.L3, false)
			s.SetButton(pad.R3, false)
		}
	case gameCubeAxes:
		s.LeftX = fr.Data[2]
		s.LeftY = ^fr.Data[3]
		s.RightX = fr.Data[4]
		s.RightY = ^fr.Data[5]
	case n64Axes:
		// Stick bytes are two's complement, up positive.
		s.LeftX = fr.Data[2] ^ 0x80
		s.LeftY = negate(fr.Data[3])
		s.RightX = synth(bits&n64CLeft != 0, bits&n64CRight != 0)
		s.RightY = synth(bits&n64CUp != 0, bits&n64CDown != 0)
	}

	if s.IsPressed(l.guide[0]) && s.IsPressed(l.guide[1]) {
		s.SetButton(pad.Guide, true)
	}

	return s
}

// fold turns a frame into one bitmask, 1 = pressed.
func fold(f pad.Family, fr pad.Frame) (uint32, bool) {
	switch f {
	case pad.PS2:
		if fr.Len < 2 || !bus.KnownPSXID(fr.ID) {
			return 0, false
		}
		return uint32(^fr.Data[0]) | uint32(^fr.Data[1])<<8, true
	case pad.GameCube:
		if fr.Len < bus.GameCubePollLen {
			return 0, false
		}
		return uint32(fr.Data[0]) | uint32(fr.Data[1])<<8, true
	case pad.N64:
		if fr.Len < bus.N64PollLen {
			return 0, false
		}
		return uint32(fr.Data[0]) | uint32(fr.Data[1])<<8, true
	}
	return fr.Bits, true
}

// synth places a digital axis at min, center or max. The low side wins when
// both are held.
func synth(low, high bool) uint8 {
	switch {
	case low:
		return pad.AxisMin
	case high:
		return pad.AxisMax
	}
	return pad.AxisCenter
}

// negate flips a two's complement axis into the centered encoding, so that
// zero stays at AxisCenter.
func negate(v byte) uint8 {
	y := int(pad.AxisCenter) - int(int8(v))
	if y > int(pad.AxisMax) {
		y = int(pad.AxisMax)
	}
	return uint8(y)
}

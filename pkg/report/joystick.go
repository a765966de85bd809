package report

import "github.com/tuffrabit/tinygo-retropad-rp2040/pkg/pad"

// JoystickReportSize is the length of the generic joystick report.
const JoystickReportSize = 19

// Joystick encodes the generic joystick report:
//
//	[0]     square cross circle triangle l1 r1 l2 r2 (bit 0..7)
//	[1]     select start l3 r3 guide (bit 0..4)
//	[2]     direction, 0..7 clockwise from up, 8 centered
//	[3..6]  LX LY RX RY, 0x80 centered
//	[7..18] pressure: right left up down triangle circle cross square l1 r1 l2 r2
type Joystick struct {
	buf [JoystickReportSize]byte
}

func NewJoystick() *Joystick {
	return &Joystick{}
}

var joystickBits = [2][]pad.Button{
	{pad.Square, pad.Cross, pad.Circle, pad.Triangle, pad.L1, pad.R1, pad.L2, pad.R2},
	{pad.Select, pad.Start, pad.L3, pad.R3, pad.Guide},
}

var joystickPressure = [12]pad.Button{
	pad.Right, pad.Left, pad.Up, pad.Down,
	pad.Triangle, pad.Circle, pad.Cross, pad.Square,
	pad.L1, pad.R1, pad.L2, pad.R2,
}

func (j *Joystick) Present(s *pad.State) []byte {
	b := j.buf[:]
	for i, buttons := range joystickBits {
		b[i] = 0
		for bit, btn := range buttons {
			b[i] |= flag(s.IsPressed(btn), uint(bit))
		}
	}
	b[2] = s.Direction
	b[3] = s.LeftX
	b[4] = s.LeftY
	b[5] = s.RightX
	b[6] = s.RightY
	for i, btn := range joystickPressure {
		b[7+i] = pressure(s.IsPressed(btn))
	}
	return b
}

// DecodeJoystick recovers the state a joystick report was built from.
func DecodeJoystick(b []byte) (pad.State, error) {
	var s pad.State
	if len(b) < JoystickReportSize {
		return s, ErrInvalidSize
	}
	for i, buttons := range joystickBits {
		for bit, btn := range buttons {
			s.SetButton(btn, b[i]&(1<<bit) != 0)
		}
	}
	for i, btn := range joystickPressure[:4] {
		s.SetButton(btn, b[7+i] != 0)
	}
	s.Direction = b[2]
	s.LeftX = b[3]
	s.LeftY = b[4]
	s.RightX = b[5]
	s.RightY = b[6]
	return s, nil
}

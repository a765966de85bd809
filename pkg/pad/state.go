package pad

import (
	"encoding/binary"
	"errors"
)

// Button is a canonical gamepad button.
type Button uint8

// Canonical buttons. Face and shoulder names pair the PlayStation and Xbox
// conventions: Square/X, Cross/A, Circle/B, Triangle/Y, L1/White, R1/Black.
const (
	Up Button = iota
	Down
	Left
	Right
	Square
	Cross
	Circle
	Triangle
	L1
	R1
	L2
	R2
	L3
	R3
	Select
	Start
	Guide
)

// NumButtons is the number of canonical buttons.
const NumButtons = 17

var buttonNames = [NumButtons]string{
	"up", "down", "left", "right",
	"square", "cross", "circle", "triangle",
	"l1", "r1", "l2", "r2", "l3", "r3",
	"select", "start", "guide",
}

func (b Button) String() string {
	if int(b) < len(buttonNames) {
		return buttonNames[b]
	}
	return "?"
}

// Axis values in the 8-bit centered encoding.
const (
	AxisMin    uint8 = 0x00
	AxisCenter uint8 = 0x80
	AxisMax    uint8 = 0xFF
)

// StateSize is the length of a marshaled State.
const StateSize = 9

var ErrInvalidSize = errors.New("invalid state size")

// State is the canonical gamepad snapshot. Axes are 8-bit unsigned centered
// at 0x80, 0x00 is left/up.
type State struct {
	LeftX, LeftY   uint8
	RightX, RightY uint8
	Buttons        uint32 // one bit per Button
	Direction      uint8  // compass value, DirCenter when idle
}

// Neutral returns the idle state: all buttons released, axes centered.
func Neutral() State {
	return State{
		LeftX:     AxisCenter,
		LeftY:     AxisCenter,
		RightX:    AxisCenter,
		RightY:    AxisCenter,
		Direction: DirCenter,
	}
}

// SetButton sets the state of a button.
func (s *State) SetButton(b Button, pressed bool) {
	if b >= NumButtons {
		return
	}
	if pressed {
		s.Buttons |= 1 << b
	} else {
		s.Buttons &^= 1 << b
	}
}

// IsPressed returns true if a button is currently pressed.
func (s *State) IsPressed(b Button) bool {
	if b >= NumButtons {
		return false
	}
	return s.Buttons&(1<<b) != 0
}

// Pressure returns 0xFF for a pressed button and 0x00 otherwise.
func (s *State) Pressure(b Button) uint8 {
	if s.IsPressed(b) {
		return 0xFF
	}
	return 0x00
}

// MarshalBinary encodes the state as
// [LX][LY][RX][RY][Buttons u32 LE][Direction].
func (s *State) MarshalBinary() ([]byte, error) {
	buf := make([]byte, StateSize)
	buf[0] = s.LeftX
	buf[1] = s.LeftY
	buf[2] = s.RightX
	buf[3] = s.RightY
	binary.LittleEndian.PutUint32(buf[4:], s.Buttons)
	buf[8] = s.Direction
	return buf, nil
}

// UnmarshalBinary decodes a state produced by MarshalBinary.
func (s *State) UnmarshalBinary(data []byte) error {
	if len(data) < StateSize {
		return ErrInvalidSize
	}
	s.LeftX = data[0]
	s.LeftY = data[1]
	s.RightX = data[2]
	s.RightY = data[3]
	s.Buttons = binary.LittleEndian.Uint32(data[4:])
	s.Direction = data[8]
	return nil
}

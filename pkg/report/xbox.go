package report

import (
	"encoding/binary"

	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/pad"
)

// XboxReportSize is the length of the Xbox input report.
const XboxReportSize = 20

// Digital bits of report byte 2.
const (
	XboxDpadUp uint8 = 1 << iota
	XboxDpadDown
	XboxDpadLeft
	XboxDpadRight
	XboxStart
	XboxBack
	XboxLeftStick
	XboxRightStick
)

// Pressure bytes, report offsets 4..11.
const (
	XboxA = iota
	XboxB
	XboxX
	XboxY
	XboxBlack
	XboxWhite
	XboxL
	XboxR
)

// Control requests answered by HandleSetup.
const (
	RequestGetReport uint8 = 0x01
	RequestGetIdle   uint8 = 0x02
	RequestSetIdle   uint8 = 0x0A
	RequestAuxBlock  uint8 = 0x06

	requestTypeMask   uint8 = 0x60
	requestTypeClass  uint8 = 0x20
	requestTypeVendor uint8 = 0x40
)

// xboxAux is returned to the vendor request.
var xboxAux = [16]byte{
	16, 66, 0, 1, 1, 2, 20, 6,
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
}

var xboxPressure = [8]pad.Button{
	XboxA:     pad.Cross,
	XboxB:     pad.Circle,
	XboxX:     pad.Square,
	XboxY:     pad.Triangle,
	XboxBlack: pad.R1,
	XboxWhite: pad.L1,
	XboxL:     pad.L2,
	XboxR:     pad.R2,
}

// Setup is a USB control request.
type Setup struct {
	RequestType uint8
	Request     uint8
	Value       uint16
	Index       uint16
	Length      uint16
}

// Xbox encodes the original Xbox controller report:
//
//	[0]      0x00
//	[1]      0x14, the report length
//	[2]      d-up d-down d-left d-right start back l-stick r-stick
//	[3]      0x00
//	[4..11]  pressure A B X Y Black White L R
//	[12..19] LX LY RX RY, int16 little endian, Y up positive
//
// There is no guide button; guide is reported as the right stick click.
type Xbox struct {
	buf  [XboxReportSize]byte
	idle uint8
}

func NewXbox() *Xbox {
	x := &Xbox{}
	neutral := pad.Neutral()
	x.Present(&neutral)
	return x
}

func (x *Xbox) Present(s *pad.State) []byte {
	b := x.buf[:]
	b[0] = 0x00
	b[1] = XboxReportSize
	b[2] = flag(s.IsPressed(pad.Up), 0) |
		flag(s.IsPressed(pad.Down), 1) |
		flag(s.IsPressed(pad.Left), 2) |
		flag(s.IsPressed(pad.Right), 3) |
		flag(s.IsPressed(pad.Start), 4) |
		flag(s.IsPressed(pad.Select), 5) |
		flag(s.IsPressed(pad.L3), 6) |
		flag(s.IsPressed(pad.R3) || s.IsPressed(pad.Guide), 7)
	b[3] = 0x00
	for i, btn := range xboxPressure {
		b[4+i] = pressure(s.IsPressed(btn))
	}
	binary.LittleEndian.PutUint16(b[12:], uint16(XboxAxis(s.LeftX)))
	binary.LittleEndian.PutUint16(b[14:], uint16(XboxAxisInverted(s.LeftY)))
	binary.LittleEndian.PutUint16(b[16:], uint16(XboxAxis(s.RightX)))
	binary.LittleEndian.PutUint16(b[18:], uint16(XboxAxisInverted(s.RightY)))
	return b
}

// IdleRate returns the idle rate last set by the host.
func (x *Xbox) IdleRate() uint8 {
	return x.idle
}

// HandleSetup answers the Xbox control requests. ok is false for requests
// the device does not implement; the caller stalls them. SET_IDLE returns
// an empty reply.
func (x *Xbox) HandleSetup(setup Setup) (reply []byte, ok bool) {
	switch setup.RequestType & requestTypeMask {
	case requestTypeClass:
		switch setup.Request {
		case RequestGetReport:
			reply = x.buf[:]
		case RequestGetIdle:
			reply = []byte{x.idle}
		case RequestSetIdle:
			x.idle = uint8(setup.Value >> 8)
			return nil, true
		default:
			return nil, false
		}
	case requestTypeVendor:
		if setup.Request != RequestAuxBlock {
			return nil, false
		}
		reply = xboxAux[:]
	default:
		return nil, false
	}

	if int(setup.Length) < len(reply) {
		reply = reply[:setup.Length]
	}
	return reply, true
}

// XboxAxis widens a centered 8-bit axis to int16. 0x80 maps to 0, the
// extremes to -32768 and 32767.
func XboxAxis(v uint8) int16 {
	d := int32(v) - int32(pad.AxisCenter)
	if d >= 0 {
		return int16(d * 32767 / 127)
	}
	return int16(d * 256)
}

// XboxAxisInverted is XboxAxis for Y axes: the canonical state grows
// downward, the Xbox report grows upward.
func XboxAxisInverted(v uint8) int16 {
	d := -int32(XboxAxis(v))
	if d > 32767 {
		d = 32767
	}
	return int16(d)
}

// XboxInput is a decoded Xbox report.
type XboxInput struct {
	Digital        uint8
	Pressure       [8]uint8
	LX, LY, RX, RY int16
}

// DecodeXbox splits an Xbox report into its fields.
func DecodeXbox(b []byte) (XboxInput, error) {
	var in XboxInput
	if len(b) < XboxReportSize || b[1] != XboxReportSize {
		return in, ErrInvalidSize
	}
	in.Digital = b[2]
	copy(in.Pressure[:], b[4:12])
	in.LX = int16(binary.LittleEndian.Uint16(b[12:]))
	in.LY = int16(binary.LittleEndian.Uint16(b[14:]))
	in.RX = int16(binary.LittleEndian.Uint16(b[16:]))
	in.RY = int16(binary.LittleEndian.Uint16(b[18:]))
	return in, nil
}

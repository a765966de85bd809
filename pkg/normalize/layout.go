package normalize

import (
	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/bus"
	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/pad"
)

// Shift register bits, 1 = pressed.
const (
	nesA      uint32 = 0x01
	nesB      uint32 = 0x02
	nesSelect uint32 = 0x04
	nesStart  uint32 = 0x08
	nesUp     uint32 = 0x10
	nesDown   uint32 = 0x20
	nesLeft   uint32 = 0x40
	nesRight  uint32 = 0x80

	snesB = nesA
	snesY = nesB
	snesA uint32 = 0x100
	snesX uint32 = 0x200
	snesL uint32 = 0x400
	snesR uint32 = 0x800
)

const (
	arcadeUp       uint32 = 0x0001
	arcadeDown     uint32 = 0x0002
	arcadeLeft     uint32 = 0x0004
	arcadeRight    uint32 = 0x0008
	arcadeSquare   uint32 = 0x0010
	arcadeCross    uint32 = 0x0020
	arcadeTriangle uint32 = 0x0040
	arcadeCircle   uint32 = 0x0080
	arcadeL1       uint32 = 0x0100
	arcadeR1       uint32 = 0x0200
	arcadeL2       uint32 = 0x0400
	arcadeR2       uint32 = 0x0800
	arcadeSelect   uint32 = 0x1000
	arcadeStart    uint32 = 0x2000
	arcadeL3       uint32 = 0x4000
	arcadeR3       uint32 = 0x8000
)

// The Neo Geo cable reports the D button on two lines.
const (
	neoGeoA      uint32 = 0x0001
	neoGeoLeft   uint32 = 0x0002
	neoGeoUp     uint32 = 0x0004
	neoGeoSelect uint32 = 0x0100
	neoGeoD      uint32 = 0x0200
	neoGeoB      uint32 = 0x0400
	neoGeoRight  uint32 = 0x0800
	neoGeoDown   uint32 = 0x1000
	neoGeoD2     uint32 = 0x2000
	neoGeoStart  uint32 = 0x4000
	neoGeoC      uint32 = 0x8000
)

// PlayStation bits after folding: byte 1 in the low byte, byte 2 above it,
// inverted so 1 = pressed.
const (
	psxSelect   uint32 = 0x0001
	psxL3       uint32 = 0x0002
	psxR3       uint32 = 0x0004
	psxStart    uint32 = 0x0008
	psxUp       uint32 = 0x0010
	psxRight    uint32 = 0x0020
	psxDown     uint32 = 0x0040
	psxLeft     uint32 = 0x0080
	psxL2       uint32 = 0x0100
	psxR2       uint32 = 0x0200
	psxL1       uint32 = 0x0400
	psxR1       uint32 = 0x0800
	psxTriangle uint32 = 0x1000
	psxCircle   uint32 = 0x2000
	psxCross    uint32 = 0x4000
	psxSquare   uint32 = 0x8000
)

// GameCube bits after folding: response byte 0 low, byte 1 high.
const (
	gcA     uint32 = 0x0001
	gcB     uint32 = 0x0002
	gcX     uint32 = 0x0004
	gcY     uint32 = 0x0008
	gcStart uint32 = 0x0010
	gcLeft  uint32 = 0x0100
	gcRight uint32 = 0x0200
	gcDown  uint32 = 0x0400
	gcUp    uint32 = 0x0800
	gcZ     uint32 = 0x1000
	gcR     uint32 = 0x2000
	gcL     uint32 = 0x4000
)

// N64 bits after folding: response byte 0 low, byte 1 high.
const (
	n64Right  uint32 = 0x0001
	n64Left   uint32 = 0x0002
	n64Down   uint32 = 0x0004
	n64Up     uint32 = 0x0008
	n64Start  uint32 = 0x0010
	n64Z      uint32 = 0x0020
	n64B      uint32 = 0x0040
	n64A      uint32 = 0x0080
	n64CRight uint32 = 0x0100
	n64CLeft  uint32 = 0x0200
	n64CDown  uint32 = 0x0400
	n64CUp    uint32 = 0x0800
	n64R      uint32 = 0x1000
	n64L      uint32 = 0x2000
)

type axes uint8

const (
	// dpadAxes synthesizes the left stick from the d-pad and centers the
	// right stick.
	dpadAxes axes = iota
	psxAxes
	gameCubeAxes
	n64Axes
)

type binding struct {
	mask   uint32
	button pad.Button
}

type layout struct {
	buttons               []binding
	up, down, left, right uint32
	guide                 [2]pad.Button
	axes                  axes
}

var (
	selectStart = [2]pad.Button{pad.Select, pad.Start}
	upStart     = [2]pad.Button{pad.Up, pad.Start}
)

var layouts = [pad.NumFamilies]layout{
	pad.Genesis: {
		buttons: []binding{
			{bus.GenesisA, pad.Cross},
			{bus.GenesisB, pad.Circle},
			{bus.GenesisC, pad.R1},
			{bus.GenesisX, pad.Square},
			{bus.GenesisY, pad.Triangle},
			{bus.GenesisZ, pad.L1},
			{bus.GenesisMode, pad.Select},
			{bus.GenesisStart, pad.Start},
		},
		up: bus.GenesisUp, down: bus.GenesisDown, left: bus.GenesisLeft, right: bus.GenesisRight,
		guide: upStart,
	},
	pad.Arcade: {
		buttons: []binding{
			{arcadeSquare, pad.Square},
			{arcadeCross, pad.Cross},
			{arcadeTriangle, pad.Triangle},
			{arcadeCircle, pad.Circle},
			{arcadeL1, pad.L1},
			{arcadeR1, pad.R1},
			{arcadeL2, pad.L2},
			{arcadeR2, pad.R2},
			{arcadeSelect, pad.Select},
			{arcadeStart, pad.Start},
			{arcadeL3, pad.L3},
			{arcadeR3, pad.R3},
		},
		up: arcadeUp, down: arcadeDown, left: arcadeLeft, right: arcadeRight,
		guide: selectStart,
	},
	pad.NES: {
		buttons: []binding{
			{nesA, pad.Cross},
			{nesB, pad.Circle},
			{nesSelect, pad.Select},
			{nesStart, pad.Start},
		},
		up: nesUp, down: nesDown, left: nesLeft, right: nesRight,
		guide: selectStart,
	},
	pad.SNES: {
		buttons: []binding{
			{snesB, pad.Cross},
			{snesA, pad.Circle},
			{snesY, pad.Square},
			{snesX, pad.Triangle},
			{snesL, pad.L1},
			{snesR, pad.R1},
			{nesSelect, pad.Select},
			{nesStart, pad.Start},
		},
		up: nesUp, down: nesDown, left: nesLeft, right: nesRight,
		guide: selectStart,
	},
	pad.PS2: {
		buttons: []binding{
			{psxSquare, pad.Square},
			{psxCross, pad.Cross},
			{psxCircle, pad.Circle},
			{psxTriangle, pad.Triangle},
			{psxL1, pad.L1},
			{psxR1, pad.R1},
			{psxL2, pad.L2},
			{psxR2, pad.R2},
			{psxL3, pad.L3},
			{psxR3, pad.R3},
			{psxSelect, pad.Select},
			{psxStart, pad.Start},
		},
		up: psxUp, down: psxDown, left: psxLeft, right: psxRight,
		guide: selectStart,
		axes:  psxAxes,
	},
	pad.GameCube: {
		buttons: []binding{
			{gcB, pad.Cross},
			{gcA, pad.Circle},
			{gcX, pad.Triangle},
			{gcY, pad.Square},
			{gcL, pad.L1},
			{gcR, pad.R1},
			{gcZ, pad.L2},
			{gcStart, pad.Start},
		},
		up: gcUp, down: gcDown, left: gcLeft, right: gcRight,
		guide: upStart,
		axes:  gameCubeAxes,
	},
	pad.N64: {
		buttons: []binding{
			{n64A, pad.Cross},
			{n64B, pad.Square},
			{n64L, pad.L1},
			{n64R, pad.R1},
			{n64Z, pad.L2},
			{n64Start, pad.Start},
		},
		up: n64Up, down: n64Down, left: n64Left, right: n64Right,
		guide: upStart,
		axes:  n64Axes,
	},
	pad.NeoGeo: {
		buttons: []binding{
			{neoGeoA, pad.Cross},
			{neoGeoB, pad.Circle},
			{neoGeoC, pad.Square},
			{neoGeoD, pad.Triangle},
			{neoGeoD2, pad.Triangle},
			{neoGeoSelect, pad.Select},
			{neoGeoStart, pad.Start},
		},
		up: neoGeoUp, down: neoGeoDown, left: neoGeoLeft, right: neoGeoRight,
		guide: selectStart,
	},
	pad.Saturn: {
		buttons: []binding{
			{bus.SaturnA, pad.Cross},
			{bus.SaturnB, pad.Circle},
			{bus.SaturnC, pad.R1},
			{bus.SaturnX, pad.Square},
			{bus.SaturnY, pad.Triangle},
			{bus.SaturnZ, pad.L1},
			{bus.SaturnL, pad.L2},
			{bus.SaturnR, pad.R2},
			{bus.SaturnStart, pad.Start},
		},
		up: bus.SaturnUp, down: bus.SaturnDown, left: bus.SaturnLeft, right: bus.SaturnRight,
		guide: upStart,
	},
}

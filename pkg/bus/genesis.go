package bus

import (
	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/pad"
	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/pin"
)

// Genesis frame bits.
const (
	GenesisUp    uint32 = 1 << 0
	GenesisDown  uint32 = 1 << 1
	GenesisLeft  uint32 = 1 << 2
	GenesisRight uint32 = 1 << 3
	GenesisB     uint32 = 1 << 4
	GenesisC     uint32 = 1 << 5
	GenesisA     uint32 = 1 << 6
	GenesisStart uint32 = 1 << 7
	GenesisZ     uint32 = 1 << 8
	GenesisY     uint32 = 1 << 9
	GenesisX     uint32 = 1 << 10
	GenesisMode  uint32 = 1 << 11
)

const (
	genesisSelectDelay = 20
	// The pad resets its multiplex counter after ~1.5 ms without select edges.
	genesisSettle = 2000
)

// GenesisPins wires a Mega Drive / Genesis DB9 pad.
type GenesisPins struct {
	Up, Down, Left, Right pin.ID
	AB                    pin.ID // DB9 pin 6: B with select high, A with select low
	CStart                pin.ID // DB9 pin 9: C with select high, Start with select low
	Select                pin.ID // DB9 pin 7
}

// Genesis reads 3 and 6 button pads by walking the select multiplex.
type Genesis struct {
	io   pin.IO
	pins GenesisPins
}

func NewGenesis(io pin.IO, pins GenesisPins) *Genesis {
	return &Genesis{io: io, pins: pins}
}

func (g *Genesis) Init() error {
	for _, p := range []pin.ID{g.pins.Up, g.pins.Down, g.pins.Left, g.pins.Right, g.pins.AB, g.pins.CStart} {
		g.io.Configure(p, pin.InputPullup)
	}
	g.io.Configure(g.pins.Select, pin.Output)
	g.io.Set(g.pins.Select, true)
	return nil
}

func (g *Genesis) Read() pad.Frame {
	var bits uint32

	// Select high: directions, B and C.
	g.selectLine(true)
	bits |= g.pressed(g.pins.Up, GenesisUp)
	bits |= g.pressed(g.pins.Down, GenesisDown)
	bits |= g.pressed(g.pins.Left, GenesisLeft)
	bits |= g.pressed(g.pins.Right, GenesisRight)
	bits |= g.pressed(g.pins.AB, GenesisB)
	bits |= g.pressed(g.pins.CStart, GenesisC)

	// Select low: A and Start.
	g.selectLine(false)
	bits |= g.pressed(g.pins.AB, GenesisA)
	bits |= g.pressed(g.pins.CStart, GenesisStart)

	g.selectLine(true)
	g.selectLine(false)
	g.selectLine(true)
	g.selectLine(false)

	// Third low pulse: a six button pad pulls all four directions low.
	sixButton := !g.io.Get(g.pins.Up) && !g.io.Get(g.pins.Down) &&
		!g.io.Get(g.pins.Left) && !g.io.Get(g.pins.Right)

	g.selectLine(true)
	if sixButton {
		bits |= g.pressed(g.pins.Up, GenesisZ)
		bits |= g.pressed(g.pins.Down, GenesisY)
		bits |= g.pressed(g.pins.Left, GenesisX)
		bits |= g.pressed(g.pins.Right, GenesisMode)
	}
	g.selectLine(false)
	g.selectLine(true)
	g.io.DelayMicroseconds(genesisSettle)

	return pad.Frame{Bits: bits}
}

func (g *Genesis) selectLine(high bool) {
	g.io.Set(g.pins.Select, high)
	g.io.DelayMicroseconds(genesisSelectDelay)
}

// pressed returns mask when the active-low line p is held.
func (g *Genesis) pressed(p pin.ID, mask uint32) uint32 {
	if g.io.Get(p) {
		return 0
	}
	return mask
}

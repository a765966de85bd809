package bus

import (
	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/pad"
	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/pin"
)

// PlayStation pad identifiers returned in the second byte of a poll.
const (
	PSXIDDigital     byte = 0x41
	PSXIDAnalog      byte = 0x73
	PSXIDAnalogGreen byte = 0x53
	PSXIDConfig      byte = 0xF3
)

const (
	psxStart   byte = 0x01
	psxPoll    byte = 0x42
	psxIdle    byte = 0xFF
	psxReady   byte = 0x5A
	psxConfig  byte = 0x43
	psxSetMode byte = 0x44

	psxAttentionDelay = 1
	psxAckDelay       = 50
	psxByteGap        = 50
	psxClockDelay     = 4
	psxByteTail       = 4
	psxCommandGap     = 16
)

var (
	psxEnterConfig = []byte{psxStart, psxConfig, 0x00, 0x01}
	psxAnalogLock  = []byte{psxStart, psxSetMode, 0x00, 0x01, 0x03, 0x00, 0x00, 0x00, 0x00}
	psxExitConfig  = []byte{psxStart, psxConfig, 0x00, 0x00, psxReady, psxReady, psxReady, psxReady, psxReady}
)

// PSXPins wires a PlayStation pad.
type PSXPins struct {
	Data      pin.ID
	Command   pin.ID
	Attention pin.ID
	Clock     pin.ID
}

// PSX polls a PlayStation 1/2 pad. Bytes are exchanged LSB first: Command
// changes while Clock is low and Data is sampled after the rising edge.
//
// With Negotiate set, Init switches the pad to locked analog mode and fails
// unless the pad answers with a known identifier afterwards.
type PSX struct {
	io        pin.IO
	pins      PSXPins
	negotiate bool
}

func NewPSX(io pin.IO, pins PSXPins, negotiate bool) *PSX {
	return &PSX{io: io, pins: pins, negotiate: negotiate}
}

func (p *PSX) Init() error {
	p.io.Configure(p.pins.Data, pin.InputPullup)
	p.io.Configure(p.pins.Command, pin.Output)
	p.io.Configure(p.pins.Attention, pin.Output)
	p.io.Configure(p.pins.Clock, pin.Output)
	p.io.Set(p.pins.Command, true)
	p.io.Set(p.pins.Clock, true)
	p.io.Set(p.pins.Attention, true)

	if !p.negotiate {
		return nil
	}

	p.Read()
	p.transaction(psxEnterConfig)
	p.transaction(psxAnalogLock)
	p.transaction(psxExitConfig)

	if fr := p.Read(); fr.Len == 0 {
		return ErrHandshake
	}
	return nil
}

// Read polls the pad. A frame with Len 0 means the pad did not answer with a
// known identifier and ready marker; the caller keeps its previous state.
func (p *PSX) Read() pad.Frame {
	p.io.Set(p.pins.Attention, false)
	defer p.io.Set(p.pins.Attention, true)
	p.io.DelayMicroseconds(psxAttentionDelay)

	p.exchange(psxStart)
	p.io.DelayMicroseconds(psxAckDelay)
	id := p.exchange(psxPoll)

	fr := pad.Frame{ID: id}
	if !KnownPSXID(id) {
		return fr
	}
	if p.exchange(psxIdle) != psxReady {
		return fr
	}

	n := 2
	if id != PSXIDDigital {
		n = 6
	}
	for i := 0; i < n; i++ {
		fr.Data[i] = p.exchange(psxIdle)
	}
	fr.Len = uint8(n)
	return fr
}

// KnownPSXID reports whether id is a pad mode the driver can decode.
func KnownPSXID(id byte) bool {
	return id == PSXIDDigital || id == PSXIDAnalog || id == PSXIDAnalogGreen
}

// PSXAnalog reports whether id carries stick bytes and L3/R3.
func PSXAnalog(id byte) bool {
	return id == PSXIDAnalog
}

func (p *PSX) transaction(cmd []byte) {
	p.io.Set(p.pins.Attention, false)
	p.io.DelayMicroseconds(psxAttentionDelay)
	for _, b := range cmd {
		p.exchange(b)
	}
	p.io.Set(p.pins.Attention, true)
	p.io.DelayMicroseconds(psxCommandGap)
}

func (p *PSX) exchange(cmd byte) byte {
	var data byte
	p.io.DelayMicroseconds(psxByteGap)
	for i := 0; i < 8; i++ {
		p.io.Set(p.pins.Command, cmd&1 != 0)
		cmd >>= 1
		p.io.Set(p.pins.Clock, false)
		p.io.DelayMicroseconds(psxClockDelay)
		data >>= 1
		p.io.Set(p.pins.Clock, true)
		p.io.DelayMicroseconds(psxClockDelay)
		if p.io.Get(p.pins.Data) {
			data |= 0x80
		}
	}
	p.io.DelayMicroseconds(psxByteTail)
	return data
}

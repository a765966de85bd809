package bus

import (
	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/pad"
	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/pin"
)

// Response lengths of the Joybus commands.
const (
	JoybusIdentifyLen = 3
	GameCubePollLen   = 8
	N64PollLen        = 4
)

const (
	joybusIdentify byte = 0x00
	joybusN64Poll  byte = 0x01
	joybusGCPoll   byte = 0x40

	// Cells are 4 us: a 0 is 3 us low then 1 us high, a 1 is the reverse.
	joybusShortPulse  = 1
	joybusLongPulse   = 3
	joybusSampleDelay = 2
	// Bounded busy-wait for an edge from the pad, in polls. Covers the reply
	// latency after the stop bit.
	joybusWaitPolls = 400
)

// Joybus drives the single-wire open-drain bus of GameCube and N64 pads. The
// line is pulled low by switching the pin to output with a low latch and
// released by switching back to a pulled-up input.
type Joybus struct {
	io   pin.IO
	line pin.ID
}

func NewJoybus(io pin.IO, line pin.ID) *Joybus {
	return &Joybus{io: io, line: line}
}

// Init releases the line and sends the identify command. It fails with
// ErrNoResponse unless the pad answers with the full identity.
func (j *Joybus) Init() error {
	j.io.Set(j.line, false)
	j.io.Configure(j.line, pin.InputPullup)

	var id [JoybusIdentifyLen]byte
	if n := j.transfer([]byte{joybusIdentify}, id[:]); n < JoybusIdentifyLen {
		return ErrNoResponse
	}
	return nil
}

// ReadGameCube polls a GameCube pad with rumble off. n is the number of
// response bytes received.
func (j *Joybus) ReadGameCube() (resp [GameCubePollLen]byte, n int) {
	n = j.transfer([]byte{joybusGCPoll, 0x03, 0x00}, resp[:])
	return resp, n
}

// ReadN64 polls an N64 pad.
func (j *Joybus) ReadN64() (resp [N64PollLen]byte, n int) {
	n = j.transfer([]byte{joybusN64Poll}, resp[:])
	return resp, n
}

func (j *Joybus) transfer(cmd []byte, resp []byte) int {
	for _, b := range cmd {
		for bit := 7; bit >= 0; bit-- {
			j.writeBit(b&(1<<bit) != 0)
		}
	}
	// Stop bit. The pad starts replying right after it, so do not idle.
	j.low(joybusShortPulse)
	return j.receive(resp)
}

func (j *Joybus) writeBit(one bool) {
	if one {
		j.low(joybusShortPulse)
		j.io.DelayMicroseconds(joybusLongPulse)
		return
	}
	j.low(joybusLongPulse)
	j.io.DelayMicroseconds(joybusShortPulse)
}

func (j *Joybus) low(us uint32) {
	j.io.Configure(j.line, pin.Output)
	j.io.DelayMicroseconds(us)
	j.io.Configure(j.line, pin.InputPullup)
}

func (j *Joybus) receive(buf []byte) int {
	for i := range buf {
		var v byte
		for bit := 0; bit < 8; bit++ {
			if !j.waitFor(false) {
				return i
			}
			j.io.DelayMicroseconds(joybusSampleDelay)
			v <<= 1
			if j.io.Get(j.line) {
				v |= 1
			}
			if !j.waitFor(true) {
				return i
			}
		}
		buf[i] = v
	}
	return len(buf)
}

func (j *Joybus) waitFor(level bool) bool {
	for n := 0; n < joybusWaitPolls; n++ {
		if j.io.Get(j.line) == level {
			return true
		}
	}
	return false
}

type gameCube struct{ *Joybus }

// GameCube returns a Driver polling a GameCube pad on j.
func GameCube(j *Joybus) Driver {
	return gameCube{j}
}

func (g gameCube) Read() pad.Frame {
	resp, n := g.ReadGameCube()
	fr := pad.Frame{Len: uint8(n)}
	copy(fr.Data[:], resp[:])
	return fr
}

type n64 struct{ *Joybus }

// N64 returns a Driver polling an N64 pad on j.
func N64(j *Joybus) Driver {
	return n64{j}
}

func (p n64) Read() pad.Frame {
	resp, n := p.ReadN64()
	fr := pad.Frame{Len: uint8(n)}
	copy(fr.Data[:], resp[:])
	return fr
}

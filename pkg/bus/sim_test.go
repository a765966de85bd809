package bus

import (
	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/pin"
	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/pin/pintest"
)

// shiftPad is a 4021 shift register: a latch pulse loads the buttons and
// every rising clock edge shifts the next one onto data, active low.
type shiftPad struct {
	pins    ShiftRegisterPins
	pressed uint32
	latched uint32
	index   int
}

func (s *shiftPad) Edge(_ *pintest.Bus, p pin.ID, high bool) {
	switch {
	case p == s.pins.Latch && high:
		s.latched = s.pressed
		s.index = 0
	case p == s.pins.Clock && high:
		s.index++
	}
}

func (s *shiftPad) Drive(_ *pintest.Bus, p pin.ID) (bool, bool) {
	if p != s.pins.Data {
		return false, false
	}
	if s.index < 32 && s.latched&(1<<s.index) != 0 {
		return false, true
	}
	return true, true
}

// genesisPad multiplexes its buttons on the select line. A six button pad
// counts select low pulses and resets the count after 1.5 ms of silence.
type genesisPad struct {
	pins     GenesisPins
	six      bool
	pressed  uint32
	high     bool
	lows     int
	lastEdge int64
}

const genesisResetNs = 1_500_000

func newGenesisPad(pins GenesisPins, six bool) *genesisPad {
	return &genesisPad{pins: pins, six: six, high: true}
}

func (g *genesisPad) Edge(b *pintest.Bus, p pin.ID, high bool) {
	if p != g.pins.Select {
		return
	}
	if b.Now-g.lastEdge > genesisResetNs {
		g.lows = 0
	}
	g.lastEdge = b.Now
	g.high = high
	if !high {
		g.lows++
	}
}

func (g *genesisPad) Drive(b *pintest.Bus, p pin.ID) (bool, bool) {
	lows := g.lows
	if b.Now-g.lastEdge > genesisResetNs {
		lows = 0
	}
	extended := g.six && lows == 3

	released := func(mask uint32) (bool, bool) { return g.pressed&mask == 0, true }
	grounded := func() (bool, bool) { return false, true }

	switch p {
	case g.pins.Up:
		switch {
		case extended && g.high:
			return released(GenesisZ)
		case extended:
			return grounded()
		}
		return released(GenesisUp)
	case g.pins.Down:
		switch {
		case extended && g.high:
			return released(GenesisY)
		case extended:
			return grounded()
		}
		return released(GenesisDown)
	case g.pins.Left:
		switch {
		case extended && g.high:
			return released(GenesisX)
		case !g.high:
			return grounded()
		}
		return released(GenesisLeft)
	case g.pins.Right:
		switch {
		case extended && g.high:
			return released(GenesisMode)
		case !g.high:
			return grounded()
		}
		return released(GenesisRight)
	case g.pins.AB:
		if g.high {
			return released(GenesisB)
		}
		return released(GenesisA)
	case g.pins.CStart:
		if g.high {
			return released(GenesisC)
		}
		return released(GenesisStart)
	}
	return false, false
}

// saturnPad answers the four select states of a standard Saturn pad.
type saturnPad struct {
	pins    SaturnPins
	pressed uint32
}

func (s *saturnPad) Edge(*pintest.Bus, pin.ID, bool) {}

func (s *saturnPad) Drive(b *pintest.Bus, p pin.ID) (bool, bool) {
	line := -1
	for i, d := range s.pins.Data {
		if d == p {
			line = i
		}
	}
	if line < 0 {
		return false, false
	}

	var lines [4]uint32
	s0, s1 := b.Level(s.pins.S0), b.Level(s.pins.S1)
	switch {
	case !s0 && !s1:
		lines = [4]uint32{SaturnZ, SaturnY, SaturnX, SaturnR}
	case s0 && !s1:
		lines = [4]uint32{SaturnB, SaturnC, SaturnA, SaturnStart}
	case !s0 && s1:
		lines = [4]uint32{SaturnUp, SaturnDown, SaturnLeft, SaturnRight}
	default:
		// Identification nibble 0b100 on D0..D2.
		if line < 3 {
			return line == 2, true
		}
		lines[3] = SaturnL
	}
	return s.pressed&lines[line] == 0, true
}

// psxPad is a DualShock on the PlayStation serial bus. It shifts its reply
// out on falling clock edges and samples the command on rising ones.
type psxPad struct {
	pins       PSXPins
	responsive bool
	noReady    bool
	id         byte // forces the identifier when set
	analog     bool
	config     bool
	buttons    [2]byte
	sticks     [4]byte // RX RY LX LY

	selected bool
	cmd      []byte
	last     []byte
	rx       byte
	bit      int
	tx       byte
	out      bool
	polls    int
}

func newPSXPad(pins PSXPins) *psxPad {
	return &psxPad{
		pins:       pins,
		responsive: true,
		buttons:    [2]byte{0xFF, 0xFF},
		sticks:     [4]byte{0x80, 0x80, 0x80, 0x80},
		out:        true,
	}
}

func (d *psxPad) Edge(b *pintest.Bus, p pin.ID, high bool) {
	switch p {
	case d.pins.Attention:
		if !high {
			d.selected = true
			d.cmd = nil
			d.rx, d.bit = 0, 0
			d.tx = d.response(0)
			d.out = true
			return
		}
		if d.selected {
			d.finish()
		}
		d.selected = false
	case d.pins.Clock:
		if !d.selected {
			return
		}
		if !high {
			d.out = d.tx&(1<<d.bit) != 0
			return
		}
		if b.Level(d.pins.Command) {
			d.rx |= 1 << d.bit
		}
		d.bit++
		if d.bit == 8 {
			d.cmd = append(d.cmd, d.rx)
			d.rx, d.bit = 0, 0
			d.tx = d.response(len(d.cmd))
		}
	}
}

func (d *psxPad) Drive(_ *pintest.Bus, p pin.ID) (bool, bool) {
	if p != d.pins.Data || !d.selected || !d.responsive {
		return false, false
	}
	return d.out, true
}

func (d *psxPad) ident() byte {
	switch {
	case d.id != 0:
		return d.id
	case d.config:
		return PSXIDConfig
	case d.analog:
		return PSXIDAnalog
	}
	return PSXIDDigital
}

func (d *psxPad) response(i int) byte {
	switch i {
	case 0:
		return 0xFF
	case 1:
		return d.ident()
	case 2:
		if d.noReady {
			return 0x00
		}
		return psxReady
	}
	if len(d.cmd) < 2 || d.cmd[1] != psxPoll {
		return 0x00
	}
	payload := d.buttons[:]
	if d.analog {
		payload = append(payload[:2:2], d.sticks[:]...)
	}
	if i-3 < len(payload) {
		return payload[i-3]
	}
	return 0xFF
}

func (d *psxPad) finish() {
	d.last = d.cmd
	if len(d.cmd) < 2 {
		return
	}
	switch d.cmd[1] {
	case psxPoll:
		d.polls++
	case psxConfig:
		if len(d.cmd) >= 4 {
			d.config = d.cmd[3] == 1
		}
	case psxSetMode:
		if d.config && len(d.cmd) >= 4 {
			d.analog = d.cmd[3] == 1
		}
	}
}

// joybusPad decodes host commands from low pulse widths and answers on the
// same wire a few microseconds after the stop bit.
type joybusPad struct {
	line     pin.ID
	identity []byte
	poll     []byte

	falling  bool
	fellAt   int64
	bits     []bool
	expect   int
	commands [][]byte
	reply    []bool
	replyAt  int64
}

const (
	joybusCellNs  = 4000
	joybusReplyNs = 3000
)

func (j *joybusPad) Edge(b *pintest.Bus, p pin.ID, high bool) {
	if p != j.line {
		return
	}
	if !high {
		j.falling = true
		j.fellAt = b.Now
		j.reply = nil
		return
	}
	if !j.falling {
		return
	}
	j.falling = false
	j.bits = append(j.bits, b.Now-j.fellAt < 2000)

	if len(j.bits) == 8 {
		switch decodeBits(j.bits)[0] {
		case joybusGCPoll:
			j.expect = 25
		default:
			j.expect = 9
		}
	}
	if j.expect == 0 || len(j.bits) < j.expect {
		return
	}

	cmd := decodeBits(j.bits[:j.expect-1])
	j.commands = append(j.commands, cmd)
	j.bits, j.expect = nil, 0

	var resp []byte
	switch cmd[0] {
	case joybusIdentify:
		resp = j.identity
	default:
		resp = j.poll
	}
	if resp == nil {
		return
	}
	for _, v := range resp {
		for bit := 7; bit >= 0; bit-- {
			j.reply = append(j.reply, v&(1<<bit) != 0)
		}
	}
	j.reply = append(j.reply, true)
	j.replyAt = b.Now + joybusReplyNs
}

func (j *joybusPad) Drive(b *pintest.Bus, p pin.ID) (bool, bool) {
	if p != j.line || j.reply == nil {
		return false, false
	}
	t := b.Now - j.replyAt
	if t < 0 {
		return false, false
	}
	idx := int(t / joybusCellNs)
	if idx >= len(j.reply) {
		return false, false
	}
	lowFor := int64(3000)
	if j.reply[idx] {
		lowFor = 1000
	}
	return t%joybusCellNs >= lowFor, true
}

func decodeBits(bits []bool) []byte {
	out := make([]byte, len(bits)/8)
	for i, one := range bits[:len(out)*8] {
		if one {
			out[i/8] |= 0x80 >> (i % 8)
		}
	}
	return out
}

// Package pintest provides a simulated pin bus for exercising bus drivers
// and the pad detector without hardware.
//
// Time is virtual: DelayMicroseconds advances the clock, and every Get costs
// PollCost nanoseconds so busy-wait loops make progress.
package pintest

import "github.com/tuffrabit/tinygo-retropad-rp2040/pkg/pin"

// DefaultPollCost is the virtual time charged for one Get.
const DefaultPollCost = 100

// Device is a simulated peripheral attached to a Bus.
type Device interface {
	// Edge is called when the level the host puts on p changes.
	Edge(b *Bus, p pin.ID, high bool)
	// Drive reports the level the device forces on p, if it drives it.
	Drive(b *Bus, p pin.ID) (high bool, ok bool)
}

// Write records one Set call.
type Write struct {
	Pin  pin.ID
	High bool
	At   int64
}

// Bus implements pin.IO on top of simulated devices.
type Bus struct {
	Now      int64 // nanoseconds
	PollCost int64

	devices []Device
	modes   map[pin.ID]pin.Mode
	latch   map[pin.ID]bool
	line    map[pin.ID]bool
	reads   map[pin.ID]int
	configs map[pin.ID]int
	writes  []Write
}

// New returns a bus with the given devices attached.
func New(devices ...Device) *Bus {
	return &Bus{
		PollCost: DefaultPollCost,
		devices:  devices,
		modes:    make(map[pin.ID]pin.Mode),
		latch:    make(map[pin.ID]bool),
		line:     make(map[pin.ID]bool),
		reads:    make(map[pin.ID]int),
		configs:  make(map[pin.ID]int),
	}
}

// Attach adds a device to the bus.
func (b *Bus) Attach(d Device) {
	b.devices = append(b.devices, d)
}

func (b *Bus) Configure(p pin.ID, mode pin.Mode) {
	b.modes[p] = mode
	b.configs[p]++
	b.update(p)
}

func (b *Bus) Set(p pin.ID, high bool) {
	b.latch[p] = high
	b.writes = append(b.writes, Write{Pin: p, High: high, At: b.Now})
	b.update(p)
}

func (b *Bus) Get(p pin.ID) bool {
	b.Now += b.PollCost
	b.reads[p]++
	for _, d := range b.devices {
		if high, ok := d.Drive(b, p); ok {
			return high
		}
	}
	return b.hostLevel(p)
}

func (b *Bus) DelayMicroseconds(us uint32) {
	b.Now += int64(us) * 1000
}

// Mode returns the last mode configured on p.
func (b *Bus) Mode(p pin.ID) (pin.Mode, bool) {
	m, ok := b.modes[p]
	return m, ok
}

// Level returns the level the host currently puts on p.
func (b *Bus) Level(p pin.ID) bool {
	return b.hostLevel(p)
}

// Reads returns how many times p was sampled.
func (b *Bus) Reads(p pin.ID) int {
	return b.reads[p]
}

// Configured returns how many times p was configured.
func (b *Bus) Configured(p pin.ID) int {
	return b.configs[p]
}

// Writes returns every Set call in order.
func (b *Bus) Writes() []Write {
	return b.writes
}

// Touched reports whether p was configured, written or read.
func (b *Bus) Touched(p pin.ID) bool {
	if b.reads[p] > 0 || b.configs[p] > 0 {
		return true
	}
	for _, w := range b.writes {
		if w.Pin == p {
			return true
		}
	}
	return false
}

func (b *Bus) hostLevel(p pin.ID) bool {
	switch b.modes[p] {
	case pin.Output:
		return b.latch[p]
	case pin.InputPullup:
		return true
	default:
		return false
	}
}

// update notifies devices when the host level of p changes. The first
// observation only records the level.
func (b *Bus) update(p pin.ID) {
	level := b.hostLevel(p)
	old, seen := b.line[p]
	b.line[p] = level
	if !seen || old == level {
		return
	}
	for _, d := range b.devices {
		d.Edge(b, p, level)
	}
}

// Static is a device that holds pins at fixed levels.
type Static map[pin.ID]bool

func (s Static) Edge(*Bus, pin.ID, bool) {}

func (s Static) Drive(_ *Bus, p pin.ID) (bool, bool) {
	v, ok := s[p]
	return v, ok
}

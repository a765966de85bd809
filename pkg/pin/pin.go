// Package pin defines the digital I/O capabilities the bus drivers and the
// pad detector are written against.
//
// Bit-banged buses (PlayStation, Joybus) assume every call returns within a
// bounded, short time. Implementations must not yield to a scheduler inside
// Get, Set or DelayMicroseconds.
package pin

// ID identifies a GPIO line. On the RP2040 it is the GPIO number.
type ID uint8

// Mode is the electrical configuration of a pin.
type Mode uint8

const (
	Input Mode = iota
	InputPullup
	Output
)

// IO is the pin capability set: set pin mode, write, read and timed delay.
type IO interface {
	Configure(p ID, mode Mode)
	Set(p ID, high bool)
	Get(p ID) bool
	DelayMicroseconds(us uint32)
}

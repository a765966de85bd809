// Package bus implements the legacy controller bus drivers. Every driver is
// bit-banged over pin.IO and produces one pad.Frame per Read.
//
// Timing constants are in microseconds. They assume Get, Set and
// DelayMicroseconds run with bounded latency; a preemptive scheduler between
// calls breaks the PlayStation and Joybus timing.
package bus

import (
	"errors"

	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/pad"
)

var (
	ErrNoResponse = errors.New("no response from pad")
	ErrHandshake  = errors.New("pad handshake failed")
)

// Driver is one controller bus. Init may fail and is retried by the caller;
// Read never fails, a stuck bus yields whatever the sampling loop saw.
type Driver interface {
	Init() error
	Read() pad.Frame
}

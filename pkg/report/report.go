// Package report encodes the canonical pad state into the byte layouts the
// USB host expects.
package report

import (
	"errors"

	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/pad"
)

var ErrInvalidSize = errors.New("invalid report size")

// Presenter turns a state into a transport report. The returned slice is
// owned by the presenter and valid until the next call. Presenting the same
// state twice yields identical bytes.
type Presenter interface {
	Present(s *pad.State) []byte
}

func pressure(pressed bool) byte {
	if pressed {
		return 0xFF
	}
	return 0x00
}

func flag(pressed bool, bit uint) byte {
	if pressed {
		return 1 << bit
	}
	return 0
}

//go:build tinygo && !xbox

package main

import (
	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/adapter"
	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/config"
	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/gamepad"
	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/report"
)

const presentation = config.PresentationJoystick

// diagnostics is set when the USB descriptor carries the CDC port.
const diagnostics = true

func configurePresentation() (report.Presenter, adapter.Transport) {
	return report.NewJoystick(), gamepad.ConfigureJoystick()
}

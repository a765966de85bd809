//go:build tinygo && xbox

package main

import (
	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/adapter"
	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/config"
	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/gamepad"
	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/report"
)

const presentation = config.PresentationXbox

// The Xbox descriptor has no CDC interface, so there is no serial link.
const diagnostics = false

func configurePresentation() (report.Presenter, adapter.Transport) {
	x := report.NewXbox()
	return x, gamepad.ConfigureXbox(x)
}

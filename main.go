//go:build tinygo

package main

import (
	"machine"

	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/adapter"
	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/board"
	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/config"
	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/detect"
	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/display"
	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/pin"
	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/protocol"
	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/storage"
	"github.com/tuffrabit/tinygo-retropad-rp2040/serial"
)

// MAIN THREAD DUTIES
//
// Detect the cable once, record the boot, then hand the core to the pad
// loop. The diagnostics link runs in its own goroutine and only gets the
// core when the pad loop yields.

func main() {
	io := pin.Machine{}

	code := detect.Scan(io, board.DetectPins)
	family := detect.Family(code)

	screen := display.NewManager()

	// Flash is diagnostic only; the pad works without it.
	var rec config.BootRecord
	sm, err := storage.New(machine.Flash, true)
	if err != nil {
		screen.ShowError("flash mount")
		sm = nil
	} else {
		if sm.CleanupErr() != nil {
			screen.ShowError("flash cleanup")
		}
		if rec, err = sm.RecordBoot(family, uint8(code), presentation); err != nil {
			screen.ShowError("flash write")
		}
	}
	screen.ShowSession(family, rec)

	presenter, transport := configurePresentation()
	pad := adapter.New(family, board.Driver(family, io), presenter, transport, io)

	if diagnostics {
		session := config.Session{
			Family:       uint8(family),
			Presentation: presentation,
			DetectCode:   uint8(code),
		}
		link := serial.NewSerial(machine.Serial, protocol.NewHandler(sm, pad, session), screen)
		go link.Handle()
	}

	retries := pad.Start()
	if retries > 0 {
		screen.ShowRetries(retries)
		if sm != nil {
			sm.SetInitRetries(retries)
		}
	}

	pad.Poll()
}

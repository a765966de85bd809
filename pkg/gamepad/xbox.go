//go:build tinygo

package gamepad

import (
	"machine"
	"machine/usb"

	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/composite"
	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/report"
)

// Xbox is the original Xbox controller interface. Control requests are
// answered from the presenter, which also holds the last report for
// GET_REPORT.
type Xbox struct {
	endpoint
	pad *report.Xbox
}

var xboxInstance *Xbox

// ConfigureXbox installs the Xbox descriptor. The device then has no CDC
// interface.
func ConfigureXbox(x *report.Xbox) *Xbox {
	if xboxInstance != nil {
		return xboxInstance
	}
	p := &Xbox{
		endpoint: newEndpoint(composite.XboxEndpointIn),
		pad:      x,
	}
	machine.ConfigureUSBEndpoint(composite.XboxUSBDescriptor,
		[]usb.EndpointConfig{
			{
				Index:     composite.XboxEndpointIn,
				IsIn:      true,
				Type:      usb.ENDPOINT_TYPE_INTERRUPT,
				TxHandler: p.txHandler,
			},
			{
				Index:     composite.XboxEndpointOut,
				IsIn:      false,
				Type:      usb.ENDPOINT_TYPE_INTERRUPT,
				RxHandler: p.rxHandler,
			},
		},
		[]usb.SetupConfig{
			{
				Index:   composite.XboxInterface,
				Handler: p.setupHandler,
			},
		})
	xboxInstance = p
	return p
}

func (p *Xbox) setupHandler(setup usb.Setup) bool {
	reply, ok := p.pad.HandleSetup(toSetup(setup))
	if !ok {
		return false
	}
	if len(reply) == 0 {
		machine.SendZlp()
	} else {
		machine.SendUSBInPacket(0, reply)
	}
	return true
}

// rxHandler drains the rumble endpoint. Rumble is not driven.
func (p *Xbox) rxHandler(b []byte) {}

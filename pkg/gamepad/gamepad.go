//go:build tinygo

// Package gamepad carries presented reports to the USB host. Joystick is the
// HID interface of the generic build, Xbox the vendor interface of the xbox
// build. Both take whole reports and satisfy adapter.Transport.
package gamepad

import (
	"machine"
	"machine/usb"
	"machine/usb/hid"

	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/composite"
	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/report"
)

// endpoint is an interrupt IN endpoint with a queue for reports sent while
// the previous transfer is still in flight.
type endpoint struct {
	index   uint32
	buf     *hid.RingBuffer
	waitTxc bool
}

func newEndpoint(index uint32) endpoint {
	return endpoint{
		index: index,
		buf:   hid.NewRingBuffer(),
	}
}

// txHandler is called by the USB interrupt when the endpoint is ready to
// transmit.
func (e *endpoint) txHandler() {
	e.waitTxc = false
	if b, ok := e.buf.Get(); ok {
		e.waitTxc = true
		machine.SendUSBInPacket(e.index, b)
	}
}

// Ready reports whether the host has configured the device and the last
// report went out.
func (e *endpoint) Ready() bool {
	return machine.USBDev.InitEndpointComplete && !e.waitTxc
}

// Send transmits a report, queuing a copy if the endpoint is busy.
func (e *endpoint) Send(b []byte) {
	if !machine.USBDev.InitEndpointComplete {
		return
	}
	if e.waitTxc {
		// The presenter reuses b, the queue keeps its own copy.
		e.buf.Put(append([]byte(nil), b...))
		return
	}
	e.waitTxc = true
	machine.SendUSBInPacket(e.index, b)
}

// Joystick is the generic HID joystick.
type Joystick struct {
	endpoint
	idle uint8
}

var joystickInstance *Joystick

// ConfigureJoystick installs the CDC + HID descriptor and returns the
// joystick transport. The CDC serial port keeps working.
func ConfigureJoystick() *Joystick {
	if joystickInstance != nil {
		return joystickInstance
	}
	j := &Joystick{endpoint: newEndpoint(usb.HID_ENDPOINT_IN)}
	machine.ConfigureUSBEndpoint(composite.JoystickUSBDescriptor,
		[]usb.EndpointConfig{
			{
				Index:     usb.HID_ENDPOINT_IN,
				IsIn:      true,
				Type:      usb.ENDPOINT_TYPE_INTERRUPT,
				TxHandler: j.txHandler,
			},
		},
		[]usb.SetupConfig{
			{
				Index:   usb.HID_INTERFACE,
				Handler: j.setupHandler,
			},
		})
	joystickInstance = j
	return j
}

// setupHandler answers the HID class requests a host sends during
// enumeration. Only SET_IDLE and GET_IDLE are needed.
func (j *Joystick) setupHandler(setup usb.Setup) bool {
	s := toSetup(setup)
	if s.RequestType&0x60 != 0x20 {
		return false
	}
	switch s.Request {
	case report.RequestSetIdle:
		j.idle = uint8(s.Value >> 8)
		machine.SendZlp()
		return true
	case report.RequestGetIdle:
		machine.SendUSBInPacket(0, []byte{j.idle})
		return true
	}
	return false
}

func toSetup(s usb.Setup) report.Setup {
	return report.Setup{
		RequestType: s.BmRequestType,
		Request:     s.BRequest,
		Value:       uint16(s.WValueH)<<8 | uint16(s.WValueL),
		Index:       s.WIndex,
		Length:      s.WLength,
	}
}

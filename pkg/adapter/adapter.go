// Package adapter runs the polling loop: bring the bus up, then read,
// normalize, present and transmit forever.
package adapter

import (
	"runtime"

	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/bus"
	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/normalize"
	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/pad"
	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/report"
)

// InitRetryDelay is the wait between failed bus initializations, in
// microseconds.
const InitRetryDelay = 10000

// Transport carries reports to the USB host.
type Transport interface {
	// Ready reports whether the transport can take another report.
	Ready() bool
	Send(report []byte)
}

// Delayer blocks for a number of microseconds.
type Delayer interface {
	DelayMicroseconds(us uint32)
}

// Adapter owns the canonical state of one pad. It is driven from a single
// goroutine; the accessors are for diagnostics on the same cooperative
// scheduler.
type Adapter struct {
	family    pad.Family
	driver    bus.Driver
	presenter report.Presenter
	transport Transport
	delay     Delayer

	state   pad.State
	last    []byte
	retries int
	cycles  uint32
}

func New(family pad.Family, driver bus.Driver, presenter report.Presenter, transport Transport, delay Delayer) *Adapter {
	return &Adapter{
		family:    family,
		driver:    driver,
		presenter: presenter,
		transport: transport,
		delay:     delay,
		state:     pad.Neutral(),
	}
}

// Start initializes the bus, retrying until it succeeds. The neutral state
// is transmitted after every failure so the host keeps seeing a pad. It
// returns the number of failed attempts.
func (a *Adapter) Start() int {
	for a.driver.Init() != nil {
		a.retries++
		a.delay.DelayMicroseconds(InitRetryDelay)
		a.transmit()
	}
	return a.retries
}

// Step runs one polling cycle.
func (a *Adapter) Step() {
	fr := a.driver.Read()
	a.state = normalize.Normalize(a.family, fr, a.state)
	a.transmit()
	a.cycles++
}

// Run starts the bus and polls forever.
func (a *Adapter) Run() {
	a.Start()
	a.Poll()
}

// Poll steps forever, yielding between cycles so the diagnostics link gets
// the core. Call Start first.
func (a *Adapter) Poll() {
	for {
		a.Step()
		runtime.Gosched()
	}
}

func (a *Adapter) transmit() {
	b := a.presenter.Present(&a.state)
	for !a.transport.Ready() {
		runtime.Gosched()
	}
	a.transport.Send(b)
	a.last = append(a.last[:0], b...)
}

func (a *Adapter) Family() pad.Family {
	return a.family
}

// State returns the canonical state as of the last cycle.
func (a *Adapter) State() pad.State {
	return a.state
}

// LastReport returns the last transmitted report.
func (a *Adapter) LastReport() []byte {
	return a.last
}

// Retries returns the number of failed bus initializations.
func (a *Adapter) Retries() int {
	return a.retries
}

// Cycles returns the number of completed polling cycles.
func (a *Adapter) Cycles() uint32 {
	return a.cycles
}

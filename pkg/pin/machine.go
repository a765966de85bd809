//go:build tinygo

package pin

import (
	"machine"
	"time"
)

var machineModes = [...]machine.PinMode{
	Input:       machine.PinInput,
	InputPullup: machine.PinInputPullup,
	Output:      machine.PinOutput,
}

// Machine drives real GPIOs through the TinyGo machine package.
type Machine struct{}

func (Machine) Configure(p ID, mode Mode) {
	machine.Pin(p).Configure(machine.PinConfig{Mode: machineModes[mode]})
}

func (Machine) Set(p ID, high bool) {
	machine.Pin(p).Set(high)
}

func (Machine) Get(p ID) bool {
	return machine.Pin(p).Get()
}

// DelayMicroseconds busy-waits. time.Sleep would hand the core to another
// goroutine and stretch the bus timing.
func (Machine) DelayMicroseconds(us uint32) {
	deadline := time.Now().Add(time.Duration(us) * time.Microsecond)
	for time.Now().Before(deadline) {
	}
}

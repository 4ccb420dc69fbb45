// Package pin finds the output line that releases the LED chip from
// hardware shutdown.
package pin

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
)

// Consumer labels lines requested through the GPIO character device.
const Consumer = "ic60led"

// Lookup returns a registered periph pin by name, e.g. "GPIO16".
// host.Init must have run.
func Lookup(name string) (gpio.PinOut, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("pin: %q not found", name)
	}
	return p, nil
}

func level(l gpio.Level) int {
	if l == gpio.High {
		return 1
	}
	return 0
}

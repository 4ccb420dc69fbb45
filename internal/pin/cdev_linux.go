//go:build linux

package pin

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
	"periph.io/x/conn/v3/gpio"
)

// Line is an output line requested from a GPIO character device.
type Line struct {
	l *gpiocdev.Line
}

// OpenLine requests offset on chip (e.g. "gpiochip0") as an output driven
// low.
func OpenLine(chip string, offset int) (*Line, error) {
	l, err := gpiocdev.RequestLine(chip, offset,
		gpiocdev.AsOutput(0),
		gpiocdev.WithConsumer(Consumer))
	if err != nil {
		return nil, fmt.Errorf("pin: request %s:%d: %w", chip, offset, err)
	}
	return &Line{l: l}, nil
}

func (p *Line) String() string {
	return fmt.Sprintf("%s:%d", p.l.Chip(), p.l.Offset())
}

// Out drives the line.
func (p *Line) Out(l gpio.Level) error {
	return p.l.SetValue(level(l))
}

// Close releases the line.
func (p *Line) Close() error {
	return p.l.Close()
}

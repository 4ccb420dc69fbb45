//go:build !linux

package pin

import (
	"errors"

	"periph.io/x/conn/v3/gpio"
)

type Line struct{}

var errUnsupported = errors.New("pin: gpio character device not supported on this platform")

func OpenLine(chip string, offset int) (*Line, error) {
	return nil, errUnsupported
}

func (p *Line) String() string {
	return "unsupported"
}

func (p *Line) Out(l gpio.Level) error {
	return errUnsupported
}

func (p *Line) Close() error {
	return nil
}

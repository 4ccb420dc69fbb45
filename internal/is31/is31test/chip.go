// Package is31test is a register-level model of an IS31FL3731 that plugs in
// as an i2c.Bus, for tests and hardware-less runs.
package is31test

import (
	"errors"
	"fmt"
	"sync"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

const (
	regCommand        = 0xFD
	pageFunction      = 0x0B
	regPictureDisplay = 0x01
	offsetBlink       = 0x12
	offsetPWM         = 0x24
	pwmRowStride      = 0x10
)

// ErrNACK is returned for transactions addressed to another device.
var ErrNACK = errors.New("is31test: no acknowledge")

// Chip holds the register file of one chip.
type Chip struct {
	sync.Mutex
	Addr  uint16
	Speed physic.Frequency
	// Fail, when set, is consulted before every transaction; a non-nil
	// result fails it without touching registers.
	Fail func(addr uint16, w []byte) error

	page  byte
	pages map[byte]*[256]byte
	txs   int
}

// New returns a powered-down chip at addr.
func New(addr uint16) *Chip {
	return &Chip{Addr: addr, pages: map[byte]*[256]byte{}}
}

func (c *Chip) String() string { return fmt.Sprintf("is31test(0x%02X)", c.Addr) }

// SetSpeed implements i2c.Bus.
func (c *Chip) SetSpeed(f physic.Frequency) error {
	c.Lock()
	defer c.Unlock()
	c.Speed = f
	return nil
}

// Tx implements i2c.Bus.
func (c *Chip) Tx(addr uint16, w, r []byte) error {
	c.Lock()
	defer c.Unlock()
	if c.Fail != nil {
		if err := c.Fail(addr, w); err != nil {
			return err
		}
	}
	if addr != c.Addr {
		return ErrNACK
	}
	if len(w) == 0 {
		return errors.New("is31test: empty write")
	}
	c.txs++

	if w[0] == regCommand {
		if len(w) != 2 || len(r) != 0 {
			return errors.New("is31test: malformed page select")
		}
		c.page = w[1]
		return nil
	}

	regs := c.regs(c.page)
	reg := int(w[0])
	if reg+len(w)-1 > len(regs) || reg+len(r) > len(regs) {
		return fmt.Errorf("is31test: access past register 0x%02X", reg)
	}
	copy(regs[reg:], w[1:])
	copy(r, regs[reg:])
	return nil
}

func (c *Chip) regs(page byte) *[256]byte {
	p, ok := c.pages[page]
	if !ok {
		p = &[256]byte{}
		c.pages[page] = p
	}
	return p
}

// Transactions counts successful transactions.
func (c *Chip) Transactions() int {
	c.Lock()
	defer c.Unlock()
	return c.txs
}

// Page returns a copy of the register file of page.
func (c *Chip) Page(page byte) [256]byte {
	c.Lock()
	defer c.Unlock()
	return *c.regs(page)
}

// Register returns one register.
func (c *Chip) Register(page, reg byte) byte {
	p := c.Page(page)
	return p[reg]
}

// Visible is the frame page the display pointer selects.
func (c *Chip) Visible() byte {
	return c.Register(pageFunction, regPictureDisplay)
}

// Frame decodes the wired PWM values of page in LED order.
func (c *Chip) Frame(page byte) [64]byte {
	p := c.Page(page)
	var f [64]byte
	for row := 0; row < 8; row++ {
		copy(f[row*8:(row+1)*8], p[offsetPWM+row*pwmRowStride:])
	}
	return f
}

// Blink returns the blink table of page.
func (c *Chip) Blink(page byte) [offsetPWM - offsetBlink]byte {
	p := c.Page(page)
	var b [offsetPWM - offsetBlink]byte
	copy(b[:], p[offsetBlink:])
	return b
}

// Shown returns the frame and blink table of the visible page.
func (c *Chip) Shown() ([64]byte, [offsetPWM - offsetBlink]byte) {
	v := c.Visible()
	return c.Frame(v), c.Blink(v)
}

var _ i2c.Bus = &Chip{}

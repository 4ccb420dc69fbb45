// Package is31 drives an ISSI IS31FL3731 matrix LED controller: paged
// register access, the power-up sequence, and flicker-free frame updates by
// writing the hidden frame page and then flipping the display pointer.
//
// # Datasheet
//
// https://www.issi.com/WW/pdf/31FL3731.pdf
package is31

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"

	"github.com/coreman2200/ic60led/internal/bus"
)

const (
	// Addr is the 7-bit bus address with AD tied to GND.
	Addr uint16 = 0x74
	// Speed is the fastest clock the chip accepts.
	Speed = 400 * physic.KiloHertz

	RegCommand byte = 0xFD

	// PageFunction selects the function register page. Frame pages are 0..7.
	PageFunction byte = 0x0B
	PageCount         = 8

	// Function page registers.
	RegPictureDisplay byte = 0x01
	RegDisplayOption  byte = 0x05
	RegShutdown       byte = 0x0A

	// Frame page layout.
	OffsetLEDEnable byte = 0x00
	OffsetBlink     byte = 0x12
	OffsetPWM       byte = 0x24
	PageSize             = 0xB4

	// pwmRowStride is the distance between rows of the PWM table; only the
	// first 8 bytes of each row are wired on this board.
	pwmRowStride = 0x10
	pwmRowLen    = 8
	pwmRows      = 8

	functionConfigLen = 0x0D
	blinkEnable       = 1 << 3

	// DefaultSettle is the pause between power sequencing steps.
	DefaultSettle = 10 * time.Millisecond

	packageName = "is31"
)

// LEDEnable is the per-page LED-enable table matching the wired matrix of
// the Infinity60: 63 LEDs on the CA rows, none on CB.
var LEDEnable = [OffsetBlink - OffsetLEDEnable]byte{
	0xFF, 0x00,
	0xFF, 0x00,
	0xFF, 0x00,
	0xFF, 0x00,
	0xFF, 0x00,
	0xFF, 0x00,
	0xFF, 0x00,
	0x7F, 0x00,
	0x00, 0x00,
}

// EnablePin drives the chip's hardware shutdown line.
type EnablePin interface {
	Out(l gpio.Level) error
}

// Dev is one chip on a bus. It is not safe for concurrent use.
type Dev struct {
	t      *bus.Transport
	addr   uint16
	settle time.Duration
	// shown is the frame page the display pointer was last set to.
	shown byte
}

// Opts configures a Dev. Zero fields take defaults.
type Opts struct {
	Addr   uint16
	Settle time.Duration
}

// New returns a Dev on t. A negative Settle disables sequencing delays.
func New(t *bus.Transport, o *Opts) *Dev {
	d := &Dev{t: t, addr: Addr, settle: DefaultSettle}
	if o != nil {
		if o.Addr != 0 {
			d.addr = o.Addr
		}
		if o.Settle != 0 {
			d.settle = o.Settle
		}
	}
	return d
}

func (d *Dev) String() string {
	return fmt.Sprintf("%s{%s, 0x%02X}", packageName, d.t, d.addr)
}

// wrap prefixes errors leaving the package. Only exported methods call it,
// once each.
func wrap(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", packageName, err)
}

// SelectPage points subsequent register accesses at page.
func (d *Dev) SelectPage(page byte) error {
	return wrap(d.selectPage(page))
}

func (d *Dev) selectPage(page byte) error {
	if page >= PageCount && page != PageFunction {
		return fmt.Errorf("invalid page 0x%02X", page)
	}
	return d.t.Write(d.addr, []byte{RegCommand, page})
}

// WriteRegister writes one register of page.
func (d *Dev) WriteRegister(page, reg, v byte) error {
	return wrap(d.writeBlock(page, reg, []byte{v}))
}

// ReadRegister reads one register of page.
func (d *Dev) ReadRegister(page, reg byte) (byte, error) {
	if err := d.selectPage(page); err != nil {
		return 0, wrap(err)
	}
	r, err := d.t.Transact(d.addr, []byte{reg}, 1)
	if err != nil {
		return 0, wrap(err)
	}
	return r[0], nil
}

// WriteBlock writes data to consecutive registers of page starting at reg.
func (d *Dev) WriteBlock(page, reg byte, data []byte) error {
	return wrap(d.writeBlock(page, reg, data))
}

// FillRegisterRange writes count copies of v starting at reg.
func (d *Dev) FillRegisterRange(page, reg, v byte, count int) error {
	data := make([]byte, count)
	for i := range data {
		data[i] = v
	}
	return wrap(d.writeBlock(page, reg, data))
}

func (d *Dev) writeBlock(page, reg byte, data []byte) error {
	if err := d.selectPage(page); err != nil {
		return err
	}
	w := make([]byte, 1+len(data))
	w[0] = reg
	copy(w[1:], data)
	return d.t.Write(d.addr, w)
}

func (d *Dev) sleep() {
	if d.settle > 0 {
		time.Sleep(d.settle)
	}
}

// Init powers the chip up and enables the wired LEDs on every frame page.
// All steps run even when one fails; the failures are joined.
func (d *Dev) Init(enable EnablePin) error {
	var errs []error
	try := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	try(d.FillRegisterRange(PageFunction, 0, 0, functionConfigLen))

	if enable != nil {
		if err := enable.Out(gpio.High); err != nil {
			try(fmt.Errorf("%s: enable pin: %w", packageName, err))
		}
	}
	d.sleep()

	try(d.WriteRegister(PageFunction, RegShutdown, 0))
	d.sleep()

	try(d.FillRegisterRange(PageFunction, 0, 0, functionConfigLen))
	d.sleep()

	try(d.WriteRegister(PageFunction, RegShutdown, 1))
	d.sleep()

	for p := byte(0); p < PageCount; p++ {
		try(d.WriteBlock(p, OffsetLEDEnable, LEDEnable[:]))
	}
	return errors.Join(errs...)
}

// EnableBlink turns on hardware blinking with the given period setting
// (0..7).
func (d *Dev) EnableBlink(rate uint8) error {
	return d.WriteRegister(PageFunction, RegDisplayOption, blinkEnable|rate&0x07)
}

// DisplayedPage reads the frame page currently shown.
func (d *Dev) DisplayedPage() (byte, error) {
	v, err := d.ReadRegister(PageFunction, RegPictureDisplay)
	if err != nil {
		return 0, err
	}
	return v & 0x07, nil
}

// Show writes a 64 byte PWM frame and an 18 byte blink mask to the hidden
// page, then displays it. When the display pointer cannot be read the page
// last shown by this Dev is assumed.
func (d *Dev) Show(pwm, blink []byte) error {
	if len(pwm) != pwmRows*pwmRowLen {
		return fmt.Errorf("%s: pwm frame is %d bytes, want %d", packageName, len(pwm), pwmRows*pwmRowLen)
	}
	if len(blink) != int(OffsetPWM-OffsetBlink) {
		return fmt.Errorf("%s: blink mask is %d bytes, want %d", packageName, len(blink), OffsetPWM-OffsetBlink)
	}

	var errs []error
	visible, err := d.DisplayedPage()
	if err != nil {
		errs = append(errs, err)
		visible = d.shown
	}
	target := 1 - visible&1

	for i := 0; i < pwmRows; i++ {
		reg := OffsetPWM + byte(i*pwmRowStride)
		if err := d.WriteBlock(target, reg, pwm[i*pwmRowLen:(i+1)*pwmRowLen]); err != nil {
			errs = append(errs, err)
		}
	}
	if err := d.WriteBlock(target, OffsetBlink, blink); err != nil {
		errs = append(errs, err)
	}
	if err := d.WriteRegister(PageFunction, RegPictureDisplay, target); err != nil {
		errs = append(errs, err)
	} else {
		d.shown = target
	}
	return errors.Join(errs...)
}

package led

import (
	"math/bits"

	"github.com/coreman2200/ic60led/internal/keymap"
)

// HostLEDs is the USB HID keyboard LED report.
type HostLEDs uint8

const (
	NumLock HostLEDs = 1 << iota
	CapsLock
	ScrollLock
	Compose
	Kana
)

// ReportHostLEDs updates the Caps Lock indicator from a host report. A
// report that differs from the host state the firmware currently trusts is
// stale and ignored.
func (c *Controller) ReportHostLEDs(report, current HostLEDs) {
	if report != current {
		return
	}
	led := c.KeyToLEDIndex(keymap.KcCapsLock)
	if report&CapsLock != 0 {
		c.Lock(led)
	} else {
		c.Unlock(led)
	}
}

// ObserveLayerState is called from the scan loop with the layer bitmap. The
// lowest active layer is lit when it changes. Calls must come from a single
// goroutine.
func (c *Controller) ObserveLayerState(state uint32) {
	var layer uint8
	if state != 0 {
		layer = uint8(bits.TrailingZeros32(state))
	}
	if layer != c.prevLayer {
		c.SetLayer(layer)
	}
	c.prevLayer = layer
}

// Package led runs the keyboard's LED controller: callers post small
// commands without ever blocking, and a single worker goroutine owns the
// illumination state and every transaction with the chip.
package led

import (
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/coreman2200/ic60led/internal/illum"
	"github.com/coreman2200/ic60led/internal/is31"
	"github.com/coreman2200/ic60led/internal/keymap"
)

const (
	// DefaultQueueSize is the number of commands that may be pending.
	DefaultQueueSize = 5
	// DefaultBlinkRate is the chip's blink period setting.
	DefaultBlinkRate = 5
)

// Chip is the hardware the worker drives.
type Chip interface {
	Init(enable is31.EnablePin) error
	EnableBlink(rate uint8) error
	Show(pwm, blink []byte) error
}

// Options configures a Controller.
type Options struct {
	QueueSize int
	BlinkRate uint8
	Logger    zerolog.Logger
	// OnFrame is called by the worker after each command, with a copy of the
	// state. It must not block.
	OnFrame func(illum.Snapshot)
}

// Stats are counters since the controller was created.
type Stats struct {
	Enqueued  uint64 `json:"enqueued"`
	Dropped   uint64 `json:"dropped"`
	Applied   uint64 `json:"applied"`
	BusErrors uint64 `json:"bus_errors"`
}

// Controller is the command surface. Its methods are safe to call from any
// goroutine and never block.
type Controller struct {
	chip      Chip
	keys      *keymap.Keymap
	queue     chan illum.Command
	blinkRate uint8
	log       zerolog.Logger
	onFrame   func(illum.Snapshot)
	start     sync.Once

	enqueued  atomic.Uint64
	dropped   atomic.Uint64
	applied   atomic.Uint64
	busErrors atomic.Uint64

	// prevLayer belongs to the goroutine calling ObserveLayerState.
	prevLayer uint8
}

// New returns a stopped controller. Commands posted before Start wait in
// the queue.
func New(chip Chip, keys *keymap.Keymap, opts *Options) *Controller {
	o := Options{Logger: zerolog.Nop()}
	if opts != nil {
		o = *opts
	}
	if o.QueueSize <= 0 {
		o.QueueSize = DefaultQueueSize
	}
	if o.BlinkRate == 0 {
		o.BlinkRate = DefaultBlinkRate
	}
	return &Controller{
		chip:      chip,
		keys:      keys,
		queue:     make(chan illum.Command, o.QueueSize),
		blinkRate: o.BlinkRate,
		log:       o.Logger.With().Str("component", "led").Logger(),
		onFrame:   o.OnFrame,
	}
}

// OnFrame replaces the frame hook. Call it before Start.
func (c *Controller) OnFrame(fn func(illum.Snapshot)) { c.onFrame = fn }

// Init returns a controller that has already run Boot.
func Init(chip Chip, enable is31.EnablePin, keys *keymap.Keymap, opts *Options) *Controller {
	c := New(chip, keys, opts)
	c.Boot(enable)
	return c
}

// Boot brings the chip up, starts the worker and lights layer 0. Hardware
// failures are logged; the controller keeps running without feedback.
func (c *Controller) Boot(enable is31.EnablePin) {
	if err := c.chip.Init(enable); err != nil {
		c.busErrors.Add(1)
		c.log.Warn().Err(err).Msg("chip init failed")
	}
	c.Start()
	c.SetLayer(0)
}

// Start launches the worker. Later calls do nothing. The worker runs for
// the life of the process.
func (c *Controller) Start() {
	c.start.Do(func() {
		go c.run()
	})
}

func (c *Controller) run() {
	if err := c.chip.EnableBlink(c.blinkRate); err != nil {
		c.busErrors.Add(1)
		c.log.Warn().Err(err).Msg("enable blink failed")
	}

	var layout illum.Layout
	if c.keys != nil {
		layout = c.keys
	}
	state := illum.New(layout)
	for cmd := range c.queue {
		if !state.Apply(cmd) {
			continue
		}
		frame, blink := state.Frame(), state.Blink()
		if err := c.chip.Show(frame[:], blink[:]); err != nil {
			c.busErrors.Add(1)
			c.log.Warn().Err(err).Stringer("cmd", cmd).Msg("display update failed")
		} else {
			c.log.Debug().Stringer("cmd", cmd).Uint8("brightness", state.Brightness()).Msg("display updated")
		}
		c.applied.Add(1)
		if c.onFrame != nil {
			c.onFrame(state.Snapshot())
		}
	}
}

func (c *Controller) post(cmd illum.Command) bool {
	select {
	case c.queue <- cmd:
		c.enqueued.Add(1)
		return true
	default:
		c.dropped.Add(1)
		return false
	}
}

// Enable lights led in the backlight layer until the next SetLayer.
func (c *Controller) Enable(led uint8) { c.post(illum.Enable{LED: led}) }

// Disable darkens led in the backlight layer until the next SetLayer.
func (c *Controller) Disable(led uint8) { c.post(illum.Disable{LED: led}) }

// Lock shows led at full intensity, blinking, over the backlight.
func (c *Controller) Lock(led uint8) { c.post(illum.Lock{LED: led}) }

// Unlock clears the indicator on led.
func (c *Controller) Unlock(led uint8) { c.post(illum.Unlock{LED: led}) }

// SetLayer lights the keys of a keymap layer.
func (c *Controller) SetLayer(layer uint8) { c.post(illum.SetLayer{Layer: layer}) }

// SetBacklight sets the backlight to one of the levels of BacklightLevels.
// Levels past the end use the brightest.
func (c *Controller) SetBacklight(level uint8) {
	c.post(illum.SetBacklight{Raw: BacklightIntensity(level)})
}

// KeyToLEDIndex returns the LED under the first key holding code, or
// keymap.NoLED.
func (c *Controller) KeyToLEDIndex(code keymap.Keycode) uint8 {
	if c.keys == nil {
		return keymap.NoLED
	}
	return c.keys.KeyToLEDIndex(code)
}

// Stats returns the controller counters.
func (c *Controller) Stats() Stats {
	return Stats{
		Enqueued:  c.enqueued.Load(),
		Dropped:   c.dropped.Load(),
		Applied:   c.applied.Load(),
		BusErrors: c.busErrors.Load(),
	}
}

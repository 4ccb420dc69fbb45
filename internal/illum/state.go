// Package illum holds the keyboard illumination model: a backlight layer
// buffer, a status overlay, a hardware blink mask and the frame composited
// from them.
//
// A State has a single owner and is not safe for concurrent use.
package illum

const (
	// LEDCount is the number of addressable LED positions.
	LEDCount = 64
	// BlinkMaskSize is the size of the chip's per-page blink table.
	BlinkMaskSize = 0x12

	// Lit is the level written for an illuminated position.
	Lit uint8 = 255

	fullScale = 100
)

// Frame is one brightness value per LED index.
type Frame [LEDCount]uint8

// BlinkMask has one bit per LED in the even (CA) bytes of the chip table.
type BlinkMask [BlinkMaskSize]uint8

// Layout lists the LED indices lit by a keymap layer: every position that is
// neither no-key nor transparent.
type Layout interface {
	LitLEDs(layer uint8) []uint8
}

// Snapshot is a copy of the state after a command was applied.
type Snapshot struct {
	Frame      Frame
	Blink      BlinkMask
	Layer      Frame
	Overlay    Frame
	Brightness uint8
}

// State is the illumination model. The zero value is not usable; call New.
type State struct {
	layout     Layout
	layer      Frame
	overlay    Frame
	blink      BlinkMask
	brightness uint8
	frame      Frame
}

// New returns a dark State at full backlight.
func New(l Layout) *State {
	return &State{layout: l, brightness: fullScale}
}

// Apply changes exactly one of the layer buffer, the overlay (with its blink
// bit) or the backlight scalar, then recomputes the frame. LED indices out
// of range change nothing. It reports false for a command it does not know.
func (s *State) Apply(cmd Command) bool {
	switch c := cmd.(type) {
	case Enable:
		s.layer.set(c.LED, Lit)
	case Disable:
		s.layer.set(c.LED, 0)
	case Lock:
		s.overlay.set(c.LED, Lit)
		s.blink.set(c.LED, true)
	case Unlock:
		s.overlay.set(c.LED, 0)
		s.blink.set(c.LED, false)
	case SetLayer:
		s.replay(c.Layer)
	case SetBacklight:
		s.brightness = uint8(int(c.Raw) * fullScale / 255)
	default:
		return false
	}
	s.composite()
	return true
}

// replay resets the layer buffer and lights the keys of layer.
func (s *State) replay(layer uint8) {
	s.layer = Frame{}
	if s.layout == nil {
		return
	}
	for _, led := range s.layout.LitLEDs(layer) {
		s.layer.set(led, Lit)
	}
}

// composite ORs the scaled layer buffer with the overlay. The overlay is
// always at full scale.
func (s *State) composite() {
	s.frame = Frame{}
	s.frame.blend(&s.layer, s.brightness)
	s.frame.blend(&s.overlay, fullScale)
}

func (f *Frame) blend(src *Frame, brightness uint8) {
	for i := range f {
		f[i] |= uint8(int(src[i]) * int(brightness) / fullScale)
	}
}

func (f *Frame) set(led uint8, v uint8) {
	if int(led) >= len(f) {
		return
	}
	f[led] = v
}

func (m *BlinkMask) set(led uint8, on bool) {
	if int(led) >= LEDCount {
		return
	}
	idx, bit := blinkBit(led)
	if on {
		m[idx] |= bit
	} else {
		m[idx] &^= bit
	}
}

// IsSet reports whether led blinks.
func (m *BlinkMask) IsSet(led uint8) bool {
	if int(led) >= LEDCount {
		return false
	}
	idx, bit := blinkBit(led)
	return m[idx]&bit != 0
}

func blinkBit(led uint8) (int, uint8) {
	return int(led/8) * 2, 1 << (led % 8)
}

func (s *State) Frame() Frame      { return s.frame }
func (s *State) Blink() BlinkMask  { return s.blink }
func (s *State) Layer() Frame      { return s.layer }
func (s *State) Overlay() Frame    { return s.overlay }
func (s *State) Brightness() uint8 { return s.brightness }

// Snapshot copies the whole state.
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		Frame:      s.frame,
		Blink:      s.blink,
		Layer:      s.layer,
		Overlay:    s.overlay,
		Brightness: s.brightness,
	}
}

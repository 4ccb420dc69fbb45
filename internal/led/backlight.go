package led

// BacklightLevels maps a backlight level to the raw intensity sent to the
// worker.
var BacklightLevels = [...]uint8{0, 25, 50, 75, 100, 125, 150, 175, 200, 225, 255}

// MaxBacklightLevel is the brightest level.
const MaxBacklightLevel = uint8(len(BacklightLevels) - 1)

// BacklightIntensity looks up level, clamping to the last entry.
func BacklightIntensity(level uint8) uint8 {
	if level > MaxBacklightLevel {
		level = MaxBacklightLevel
	}
	return BacklightLevels[level]
}

// Backlighter takes a backlight level; Controller is one.
type Backlighter interface {
	SetBacklight(level uint8)
}

// Backlight steps the backlight level the way the keyboard's backlight keys
// do. It belongs to the caller's goroutine.
type Backlight struct {
	c       Backlighter
	level   uint8
	enabled bool
}

// NewBacklight starts at level, enabled when level is not 0. Nothing is
// sent until the first change.
func NewBacklight(c Backlighter, level uint8) *Backlight {
	if level > MaxBacklightLevel {
		level = MaxBacklightLevel
	}
	return &Backlight{c: c, level: level, enabled: level != 0}
}

func (b *Backlight) Level() uint8  { return b.level }
func (b *Backlight) Enabled() bool { return b.enabled }

// Set jumps to level.
func (b *Backlight) Set(level uint8) {
	if level > MaxBacklightLevel {
		level = MaxBacklightLevel
	}
	b.level = level
	b.enabled = level != 0
	b.c.SetBacklight(level)
}

func (b *Backlight) Increase() {
	if b.level < MaxBacklightLevel {
		b.level++
	}
	b.enabled = true
	b.c.SetBacklight(b.level)
}

func (b *Backlight) Decrease() {
	if b.level > 0 {
		b.level--
	}
	b.enabled = b.level != 0
	b.c.SetBacklight(b.level)
}

// Toggle switches the backlight off, or back on at the remembered level.
func (b *Backlight) Toggle() {
	b.enabled = !b.enabled
	if b.enabled {
		b.c.SetBacklight(b.level)
		return
	}
	b.c.SetBacklight(0)
}

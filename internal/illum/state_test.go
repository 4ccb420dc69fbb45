package illum_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/coreman2200/ic60led/internal/illum"
)

// layers lights a fixed set of LEDs per layer.
type layers map[uint8][]uint8

func (l layers) LitLEDs(layer uint8) []uint8 { return l[layer] }

var testLayout = layers{
	0: {0, 1, 2, 5, 9, 63},
	1: {1, 20},
}

func TestNewIsDark(t *testing.T) {
	s := New(testLayout)
	assert.Equal(t, Frame{}, s.Frame())
	assert.Equal(t, BlinkMask{}, s.Blink())
	assert.Equal(t, uint8(100), s.Brightness())
}

func TestLockUnlockRoundTrip(t *testing.T) {
	s := New(testLayout)
	for i := 0; i < LEDCount; i++ {
		led := uint8(i)
		assert.True(t, s.Apply(Lock{LED: led}))
		assert.Equal(t, Lit, s.Overlay()[led])
		blink := s.Blink()
		assert.True(t, blink.IsSet(led), "led %d", led)

		assert.True(t, s.Apply(Unlock{LED: led}))
		assert.Equal(t, uint8(0), s.Overlay()[led])
		blink = s.Blink()
		assert.False(t, blink.IsSet(led), "led %d", led)
	}
	assert.Equal(t, BlinkMask{}, s.Blink())
}

func TestBlinkMaskLayout(t *testing.T) {
	s := New(testLayout)
	s.Apply(Lock{LED: 0})
	s.Apply(Lock{LED: 9})
	s.Apply(Lock{LED: 62})

	want := BlinkMask{}
	want[0] = 0x01
	want[2] = 0x02
	want[14] = 0x40
	assert.Equal(t, want, s.Blink())
}

func TestSetLayerReplay(t *testing.T) {
	s := New(testLayout)
	s.Apply(SetLayer{Layer: 0})
	once := s.Layer()
	for _, led := range testLayout[0] {
		assert.Equal(t, Lit, once[led])
	}
	assert.Equal(t, uint8(0), once[3])

	s.Apply(SetLayer{Layer: 0})
	assert.Equal(t, once, s.Layer(), "replay must be idempotent")

	s.Apply(SetLayer{Layer: 1})
	assert.Equal(t, uint8(0), s.Layer()[0], "replay resets first")
	assert.Equal(t, Lit, s.Layer()[20])

	s.Apply(SetLayer{Layer: 7})
	assert.Equal(t, Frame{}, s.Layer(), "unknown layer lights nothing")
}

func TestEnableOverridesLayerUntilReplay(t *testing.T) {
	s := New(testLayout)
	s.Apply(SetLayer{Layer: 0})
	s.Apply(Enable{LED: 3})
	assert.Equal(t, Lit, s.Layer()[3])

	s.Apply(Disable{LED: 0})
	assert.Equal(t, uint8(0), s.Layer()[0])

	s.Apply(SetLayer{Layer: 0})
	assert.Equal(t, uint8(0), s.Layer()[3])
	assert.Equal(t, Lit, s.Layer()[0])
}

func TestBacklightScalesLayerOnly(t *testing.T) {
	tests := []struct {
		raw        uint8
		brightness uint8
		level      uint8
	}{
		{0, 0, 0},
		{25, 9, 22},
		{125, 49, 124},
		{200, 78, 198},
		{255, 100, 255},
	}
	for _, tt := range tests {
		s := New(testLayout)
		s.Apply(SetLayer{Layer: 0})
		s.Apply(Lock{LED: 1})
		s.Apply(SetBacklight{Raw: tt.raw})

		assert.Equal(t, tt.brightness, s.Brightness(), "raw %d", tt.raw)
		f := s.Frame()
		assert.Equal(t, tt.level, f[0], "raw %d", tt.raw)
		assert.Equal(t, Lit, f[1], "overlay ignores backlight (raw %d)", tt.raw)
		assert.Equal(t, uint8(0), f[3])
	}
}

func TestCompositeIsBitwiseOr(t *testing.T) {
	s := New(testLayout)
	s.Apply(SetLayer{Layer: 0})
	s.Apply(SetBacklight{Raw: 125})
	s.Apply(Lock{LED: 0})
	s.Apply(Lock{LED: 40})

	f := s.Frame()
	assert.Equal(t, uint8(124|255), f[0])
	assert.Equal(t, Lit, f[40])
	assert.Equal(t, uint8(124), f[2])
}

func TestOutOfRangeIgnored(t *testing.T) {
	s := New(testLayout)
	s.Apply(SetLayer{Layer: 0})
	before := s.Snapshot()

	for _, cmd := range []Command{Enable{LED: 64}, Disable{LED: 100}, Lock{LED: 64}, Unlock{LED: 255}} {
		assert.True(t, s.Apply(cmd), cmd.String())
	}
	assert.Equal(t, before, s.Snapshot())
}

func TestCommandStrings(t *testing.T) {
	assert.Equal(t, "lock(12)", Lock{LED: 12}.String())
	assert.Equal(t, "set_layer(2)", SetLayer{Layer: 2}.String())
	assert.Equal(t, "set_backlight(255)", SetBacklight{Raw: 255}.String())
}

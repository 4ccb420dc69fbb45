package led

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"

	"github.com/coreman2200/ic60led/internal/bus"
	"github.com/coreman2200/ic60led/internal/illum"
	"github.com/coreman2200/ic60led/internal/is31"
	"github.com/coreman2200/ic60led/internal/is31/is31test"
	"github.com/coreman2200/ic60led/internal/keymap"
)

func newChip() (*is31test.Chip, *is31.Dev) {
	chip := is31test.New(is31.Addr)
	return chip, is31.New(&bus.Transport{Bus: chip}, &is31.Opts{Settle: -1})
}

func frames(n int) (chan illum.Snapshot, *Options) {
	ch := make(chan illum.Snapshot, n)
	return ch, &Options{OnFrame: func(s illum.Snapshot) { ch <- s }}
}

func waitFrame(t *testing.T, ch <-chan illum.Snapshot) illum.Snapshot {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("no frame from worker")
	}
	return illum.Snapshot{}
}

func drain(c *Controller) []illum.Command {
	var out []illum.Command
	for {
		select {
		case cmd := <-c.queue:
			out = append(out, cmd)
		default:
			return out
		}
	}
}

func TestInitLocksCapsIndicator(t *testing.T) {
	chip, dev := newChip()
	pin := &gpiotest.Pin{N: "GPIO16", Num: 16}
	ch, opts := frames(16)
	keys := keymap.Infinity60()

	c := Init(dev, pin, keys, opts)
	assert.Equal(t, gpio.High, pin.L)

	s := waitFrame(t, ch)
	for _, led := range keys.LitLEDs(0) {
		assert.Equal(t, illum.Lit, s.Frame[led], "led %d", led)
	}
	assert.Equal(t, uint8(0), s.Frame[14])

	caps := c.KeyToLEDIndex(keymap.KcCapsLock)
	require.Equal(t, uint8(15), caps)
	c.SetBacklight(5)
	c.Lock(caps)
	waitFrame(t, ch)
	s = waitFrame(t, ch)

	assert.Equal(t, illum.Lit, s.Overlay[caps])
	assert.True(t, s.Blink.IsSet(caps))
	assert.Equal(t, illum.Lit, s.Frame[caps])
	for _, led := range keys.LitLEDs(0) {
		if led != caps {
			assert.Equal(t, uint8(255*49/100), s.Frame[led], "led %d", led)
		}
	}

	frame, blink := chip.Shown()
	assert.Equal(t, [64]byte(s.Frame), frame)
	assert.Equal(t, illum.BlinkMask(blink), s.Blink)
	assert.Equal(t, byte(DefaultBlinkRate|1<<3), chip.Register(is31.PageFunction, is31.RegDisplayOption))
	assert.Zero(t, c.Stats().BusErrors)
}

func TestQueueFullDropsNewest(t *testing.T) {
	_, dev := newChip()
	ch, opts := frames(16)
	c := New(dev, keymap.Infinity60(), opts)

	c.SetLayer(0)
	c.Lock(1)
	c.Lock(2)
	c.Enable(14)
	c.Unlock(1)
	c.Enable(54)

	st := c.Stats()
	assert.Equal(t, uint64(5), st.Enqueued)
	assert.Equal(t, uint64(1), st.Dropped)

	c.Start()
	c.Start()
	var s illum.Snapshot
	for i := 0; i < 5; i++ {
		s = waitFrame(t, ch)
	}
	assert.Equal(t, illum.Lit, s.Layer[14])
	assert.Equal(t, uint8(0), s.Layer[54], "dropped command never applied")
	assert.Equal(t, illum.Lit, s.Overlay[2])
	assert.Equal(t, uint8(0), s.Overlay[1])

	select {
	case extra := <-ch:
		t.Fatalf("unexpected frame %+v", extra)
	case <-time.After(20 * time.Millisecond):
	}
	assert.Equal(t, uint64(5), c.Stats().Applied)
}

func TestBusFailureIsNotFatal(t *testing.T) {
	chip, dev := newChip()
	ch, opts := frames(16)

	chip.Lock()
	chip.Fail = func(addr uint16, w []byte) error { return errors.New("bus stuck") }
	chip.Unlock()

	c := Init(dev, nil, keymap.Infinity60(), opts)
	s := waitFrame(t, ch)
	assert.Equal(t, illum.Lit, s.Frame[0], "state advances without the chip")

	chip.Lock()
	chip.Fail = nil
	chip.Unlock()

	c.Lock(3)
	s = waitFrame(t, ch)
	frame, _ := chip.Shown()
	assert.Equal(t, [64]byte(s.Frame), frame)
	assert.GreaterOrEqual(t, c.Stats().BusErrors, uint64(2))
	assert.Equal(t, uint64(2), c.Stats().Applied)
}

func TestSetBacklightLevels(t *testing.T) {
	_, dev := newChip()
	ch, opts := frames(32)
	c := New(dev, keymap.Infinity60(), opts)
	c.Start()
	c.SetLayer(0)
	waitFrame(t, ch)

	for level := 0; level <= 12; level++ {
		c.SetBacklight(uint8(level))
		s := waitFrame(t, ch)

		raw := int(BacklightIntensity(uint8(level)))
		want := uint8(255 * (raw * 100 / 255) / 100)
		assert.Equal(t, want, s.Frame[0], "level %d", level)
	}
	c.SetBacklight(200)
	assert.Equal(t, illum.Lit, waitFrame(t, ch).Frame[0])
}

func TestBacklightIntensity(t *testing.T) {
	assert.Equal(t, uint8(0), BacklightIntensity(0))
	assert.Equal(t, uint8(125), BacklightIntensity(5))
	assert.Equal(t, uint8(255), BacklightIntensity(10))
	assert.Equal(t, uint8(255), BacklightIntensity(11))
	assert.Equal(t, uint8(255), BacklightIntensity(255))
	assert.Len(t, BacklightLevels, 11)
}

func TestReportHostLEDs(t *testing.T) {
	_, dev := newChip()
	c := New(dev, keymap.Infinity60(), nil)

	c.ReportHostLEDs(CapsLock, NumLock)
	assert.Empty(t, drain(c), "stale report ignored")

	c.ReportHostLEDs(CapsLock|NumLock, CapsLock|NumLock)
	assert.Equal(t, []illum.Command{illum.Lock{LED: 15}}, drain(c))

	c.ReportHostLEDs(NumLock, NumLock)
	assert.Equal(t, []illum.Command{illum.Unlock{LED: 15}}, drain(c))
}

func TestObserveLayerState(t *testing.T) {
	_, dev := newChip()
	c := New(dev, keymap.Infinity60(), nil)

	c.ObserveLayerState(0)
	assert.Empty(t, drain(c))

	c.ObserveLayerState(1<<2 | 1<<3)
	c.ObserveLayerState(1 << 2)
	assert.Equal(t, []illum.Command{illum.SetLayer{Layer: 2}}, drain(c))

	c.ObserveLayerState(0)
	assert.Equal(t, []illum.Command{illum.SetLayer{Layer: 0}}, drain(c))
}

func TestBacklightStepper(t *testing.T) {
	_, dev := newChip()
	c := New(dev, keymap.Infinity60(), &Options{QueueSize: 16})
	b := NewBacklight(c, 9)

	b.Increase()
	b.Increase()
	assert.Equal(t, MaxBacklightLevel, b.Level())
	b.Toggle()
	assert.False(t, b.Enabled())
	b.Toggle()
	b.Set(1)
	b.Decrease()
	b.Decrease()
	assert.False(t, b.Enabled())

	assert.Equal(t, []illum.Command{
		illum.SetBacklight{Raw: 255},
		illum.SetBacklight{Raw: 255},
		illum.SetBacklight{Raw: 0},
		illum.SetBacklight{Raw: 255},
		illum.SetBacklight{Raw: 25},
		illum.SetBacklight{Raw: 0},
		illum.SetBacklight{Raw: 0},
	}, drain(c))
}

func TestKeyToLEDIndexWithoutKeymap(t *testing.T) {
	_, dev := newChip()
	c := New(dev, nil, nil)
	assert.Equal(t, keymap.NoLED, c.KeyToLEDIndex(keymap.KcCapsLock))
}

func TestBootWithLateFrameHook(t *testing.T) {
	chip, dev := newChip()
	c := New(dev, keymap.Infinity60(), nil)
	ch, opts := frames(4)
	c.OnFrame(opts.OnFrame)
	c.Boot(nil)

	s := waitFrame(t, ch)
	frame, _ := chip.Shown()
	assert.Equal(t, [64]byte(s.Frame), frame)
	assert.Equal(t, uint64(1), c.Stats().Applied)
}

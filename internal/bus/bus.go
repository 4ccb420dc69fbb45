// Package bus runs single I²C transactions against a fixed-speed bus with a
// per-transaction deadline.
package bus

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// DefaultTimeout bounds a single transaction.
const DefaultTimeout = 10 * time.Millisecond

var (
	// ErrTimeout is returned when the bus does not finish a transaction
	// before the deadline.
	ErrTimeout = errors.New("bus: timeout")
	// ErrBus wraps NACK and arbitration failures reported by the bus.
	ErrBus = errors.New("bus: transaction failed")
)

// Transport issues transactions on Bus, one at a time. Failed transactions
// are never retried here.
type Transport struct {
	Bus     i2c.Bus
	Timeout time.Duration

	// pending is set while a Tx runs, including one past its deadline.
	pending atomic.Bool
}

// New returns a Transport using DefaultTimeout.
func New(b i2c.Bus) *Transport {
	return &Transport{Bus: b, Timeout: DefaultTimeout}
}

func (t *Transport) String() string {
	return fmt.Sprintf("bus{%s}", t.Bus)
}

// SetSpeed changes the bus clock.
func (t *Transport) SetSpeed(f physic.Frequency) error {
	if err := t.Bus.SetSpeed(f); err != nil {
		return fmt.Errorf("%w: set speed %s: %v", ErrBus, f, err)
	}
	return nil
}

// Transact writes w to addr and, when n > 0, reads n bytes back in the same
// transaction.
func (t *Transport) Transact(addr uint16, w []byte, n int) ([]byte, error) {
	var r []byte
	if n > 0 {
		r = make([]byte, n)
	}
	if !t.pending.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("%w: addr 0x%02X: earlier transaction still pending", ErrTimeout, addr)
	}
	if t.Timeout <= 0 {
		err := t.Bus.Tx(addr, w, r)
		t.pending.Store(false)
		if err != nil {
			return nil, wrap(addr, err)
		}
		return r, nil
	}

	// The goroutine owns w and r until it sends. It clears pending first so
	// the next call can start as soon as this one returns.
	done := make(chan error, 1)
	go func() {
		err := t.Bus.Tx(addr, w, r)
		t.pending.Store(false)
		done <- err
	}()

	timer := time.NewTimer(t.Timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		if err != nil {
			return nil, wrap(addr, err)
		}
		return r, nil
	case <-timer.C:
		return nil, fmt.Errorf("%w: addr 0x%02X after %s", ErrTimeout, addr, t.Timeout)
	}
}

// Write is a write-only Transact.
func (t *Transport) Write(addr uint16, w []byte) error {
	_, err := t.Transact(addr, w, 0)
	return err
}

func wrap(addr uint16, err error) error {
	return fmt.Errorf("%w: addr 0x%02X: %v", ErrBus, addr, err)
}

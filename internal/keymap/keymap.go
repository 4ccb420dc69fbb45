// Package keymap is a read-only view of a layered key table, used to find
// which LED sits under a key and which LEDs a layer lights.
package keymap

import (
	"errors"
	"fmt"
)

// Keycode identifies what a key position does on one layer.
type Keycode uint16

const (
	// KcNo marks a matrix position with no key.
	KcNo Keycode = 0x0000
	// KcTrns marks a key that falls through to the layer below.
	KcTrns Keycode = 0x0001
)

// NoLED is returned by KeyToLEDIndex for a key that is in no layer. It is an
// unwired matrix position, so driving it is harmless.
const NoLED uint8 = 63

// maxLEDs bounds the LED indices handed out by LitLEDs.
const maxLEDs = 64

var ErrShape = errors.New("keymap: layer shape does not match matrix")

// Keymap is an immutable [layer][row][col] table.
type Keymap struct {
	rows, cols int
	layers     [][][]Keycode
}

// New builds a Keymap from [row][col] layers.
func New(rows, cols int, layers ...[][]Keycode) (*Keymap, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("keymap: invalid matrix %dx%d", rows, cols)
	}
	k := &Keymap{rows: rows, cols: cols}
	for n, l := range layers {
		if len(l) != rows {
			return nil, fmt.Errorf("%w: layer %d has %d rows, want %d", ErrShape, n, len(l), rows)
		}
		grid := make([][]Keycode, rows)
		for r := range l {
			if len(l[r]) != cols {
				return nil, fmt.Errorf("%w: layer %d row %d has %d cols, want %d", ErrShape, n, r, len(l[r]), cols)
			}
			grid[r] = append([]Keycode(nil), l[r]...)
		}
		k.layers = append(k.layers, grid)
	}
	return k, nil
}

// FromLayout builds a Keymap from flat layouts in column-major order:
// position p is row p%rows, column p/rows. Missing trailing positions are
// KcNo.
func FromLayout(rows, cols int, layouts ...[]Keycode) (*Keymap, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("keymap: invalid matrix %dx%d", rows, cols)
	}
	layers := make([][][]Keycode, 0, len(layouts))
	for n, flat := range layouts {
		if len(flat) > rows*cols {
			return nil, fmt.Errorf("%w: layout %d has %d keys, matrix holds %d", ErrShape, n, len(flat), rows*cols)
		}
		grid := make([][]Keycode, rows)
		for r := range grid {
			grid[r] = make([]Keycode, cols)
		}
		for p, code := range flat {
			grid[p%rows][p/rows] = code
		}
		layers = append(layers, grid)
	}
	return New(rows, cols, layers...)
}

func (k *Keymap) Rows() int   { return k.rows }
func (k *Keymap) Cols() int   { return k.cols }
func (k *Keymap) Layers() int { return len(k.layers) }

// Key returns the code at a position, KcNo when out of range.
func (k *Keymap) Key(layer, row, col int) Keycode {
	if layer < 0 || layer >= len(k.layers) || row < 0 || row >= k.rows || col < 0 || col >= k.cols {
		return KcNo
	}
	return k.layers[layer][row][col]
}

// LEDIndex is the LED wired under a matrix position.
func (k *Keymap) LEDIndex(row, col int) int {
	return col*k.rows + row
}

// KeyToLEDIndex scans layers, then rows, then columns, and returns the LED
// index of the first position holding code.
func (k *Keymap) KeyToLEDIndex(code Keycode) uint8 {
	for _, l := range k.layers {
		for r := 0; r < k.rows; r++ {
			for c := 0; c < k.cols; c++ {
				if l[r][c] == code {
					if idx := k.LEDIndex(r, c); idx < maxLEDs {
						return uint8(idx)
					}
					return NoLED
				}
			}
		}
	}
	return NoLED
}

// LitLEDs returns the LED index of every position of layer that is neither
// KcNo nor KcTrns, in LED order.
func (k *Keymap) LitLEDs(layer uint8) []uint8 {
	if int(layer) >= len(k.layers) {
		return nil
	}
	l := k.layers[layer]
	var out []uint8
	for c := 0; c < k.cols; c++ {
		for r := 0; r < k.rows; r++ {
			if code := l[r][c]; code == KcNo || code == KcTrns {
				continue
			}
			if idx := k.LEDIndex(r, c); idx < maxLEDs {
				out = append(out, uint8(idx))
			}
		}
	}
	return out
}

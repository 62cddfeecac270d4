// This file is part of mltt-sub000.
//
// mltt-sub000 is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// mltt-sub000 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with mltt-sub000.  If not, see <https://www.gnu.org/licenses/>.

// Package input implements the console keyboard matrix: an 8x8 grid
// scanned by three CRU column-select bits, an alpha-lock bit, and eight
// active-low row-read bits. The matrix itself has no notion of physical
// keys or host input devices; a KeySource supplies the currently-down
// row/column pairs, so the matrix can be driven equally by a terminal
// raw-mode reader or a Linux evdev listener without this package
// depending on either.
package input

import "github.com/mburkley/mltt-sub000/hardware/cru"

const (
	numRows = 8
	numCols = 8

	cruColumnSelect0 = 18
	cruColumnSelect1 = 19
	cruColumnSelect2 = 20
	cruAlphaLock     = 21
	cruRowBase       = 3 // rows read back on bits 3-10, mirroring the console's joystick/keyboard shared lines
)

// KeySource reports whether the key at (row, col) is currently held
// down. Down(row, col) is polled once per column scan; a host wires a
// terminal in raw/cbreak mode (the posix termios modes
// "github.com/pkg/term/termios" exposes, via Cfmakeraw/Cfmakecbreak) or
// an evdev device into an implementation of this interface. Neither is
// provided here: reading host input is a front-end concern.
type KeySource interface {
	Down(row, col int) bool
	AlphaLock() bool
}

// Matrix is the 8x8 keyboard scan matrix wired onto the CRU fabric at
// the console's column-select and row-read bits.
type Matrix struct {
	source KeySource
	column int
}

// New creates a keyboard matrix polling source for key state. source
// may be nil, in which case every key reads up.
func New(source KeySource) *Matrix {
	return &Matrix{source: source}
}

// AttachCRU wires the three column-select bits and eight row-read bits
// into the fabric. Row bits read active-low, matching the hardware: a
// pressed key pulls its row line to 0.
func (m *Matrix) AttachCRU(f *cru.Fabric) {
	f.RegisterOutput(cruColumnSelect0, func(state bool) bool { m.setColumnBit(0, state); return false })
	f.RegisterOutput(cruColumnSelect1, func(state bool) bool { m.setColumnBit(1, state); return false })
	f.RegisterOutput(cruColumnSelect2, func(state bool) bool { m.setColumnBit(2, state); return false })

	for row := 0; row < numRows; row++ {
		r := row
		f.RegisterRead(cruRowBase+r, func(stored bool) bool {
			return !m.rowActive(r)
		})
	}

	f.RegisterRead(cruAlphaLock, func(stored bool) bool {
		if m.source == nil {
			return true // inactive (not locked) reads high
		}
		return !m.source.AlphaLock()
	})
}

func (m *Matrix) setColumnBit(bit int, state bool) {
	if state {
		m.column |= 1 << bit
	} else {
		m.column &^= 1 << bit
	}
}

func (m *Matrix) rowActive(row int) bool {
	if m.source == nil || m.column >= numCols {
		return false
	}
	return m.source.Down(row, m.column)
}

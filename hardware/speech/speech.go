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

// Package speech implements the TMS5220 speech synthesizer's memory-map
// footprint only: the single read/write register at 9000-97FF. Actual
// LPC synthesis is out of scope; software that polls the "buffer low"
// status bit before pushing more speech data needs that bit to behave
// plausibly, so Write always reports the buffer as ready on the next
// read rather than leaving pollers spinning forever.
package speech

const statusBufferLow = 0x80

// Chip is the register-passthrough speech synthesizer stub. It
// satisfies bus.SpeechPort.
type Chip struct {
	lastWritten uint8
}

// New creates an idle speech chip.
func New() *Chip { return &Chip{} }

// Read returns a status byte with the buffer-low bit always set, so
// that software driving real speech data never blocks waiting on
// synthesis this emulator does not perform.
func (c *Chip) Read() uint8 { return statusBufferLow }

// Write records the most recent command/data byte. Nothing consumes it;
// it exists for the debugger to inspect and for symmetry with real
// TMS5220 software, which writes several bytes per phrase.
func (c *Chip) Write(v uint8) { c.lastWritten = v }

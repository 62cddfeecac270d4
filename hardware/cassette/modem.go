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

// Package cassette implements the console's audio-cassette storage
// format: FSK bit encoding, the preamble/record/block framing the
// console ROM's cassette routines expect, and a checksum with the
// substitution rule needed to keep a checksum byte from colliding with
// a sync byte.
package cassette

import (
	xerrors "github.com/mburkley/mltt-sub000/errors"
)

// Tone frequencies used for the two bit values, matching the console
// ROM's cassette I/O routine timings.
const (
	freqZero = 689.0
	freqOne  = 1379.0

	leadInBytes  = 768
	syncByte     = 0x00
	recordHeaderSyncs = 8
)

// checksumEscape is substituted for a computed checksum that would
// otherwise equal syncByte, so the decoder's byte-framing search never
// mistakes a checksum for the next record's lead sync.
const checksumEscape = 0x01

// Modem turns a byte stream into PCM samples and back, at a fixed
// sample rate.
type Modem struct {
	sampleRate int
}

// NewModem creates a modem producing/consuming audio at sampleRate.
func NewModem(sampleRate int) *Modem {
	return &Modem{sampleRate: sampleRate}
}

// EncodeRecord frames data as the console ROM expects: a lead-in tone,
// a repeated header/data/checksum block (written twice, the second copy
// letting BASIC's cassette read routine recover from a single flaky
// pass), and returns the full PCM sample sequence.
func (m *Modem) EncodeRecord(data []byte) []int16 {
	var samples []int16

	for i := 0; i < leadInBytes; i++ {
		samples = append(samples, m.encodeByte(0xFF)...)
	}
	samples = append(samples, m.encodeByte(syncByte)...)

	block := m.encodeBlock(data)
	samples = append(samples, block...)
	samples = append(samples, block...)

	return samples
}

func (m *Modem) encodeBlock(data []byte) []int16 {
	var samples []int16
	for i := 0; i < recordHeaderSyncs; i++ {
		samples = append(samples, m.encodeByte(0xFF)...)
	}
	samples = append(samples, m.encodeByte(syncByte)...)
	samples = append(samples, m.encodeByte(uint8(len(data)))...)
	for _, b := range data {
		samples = append(samples, m.encodeByte(b)...)
	}
	samples = append(samples, m.encodeByte(checksum(data))...)
	return samples
}

func (m *Modem) encodeByte(b uint8) []int16 {
	var samples []int16
	for bit := 7; bit >= 0; bit-- {
		v := (b >> uint(bit)) & 1
		samples = append(samples, m.encodeBit(v == 1)...)
	}
	return samples
}

// encodeBit renders one bit cell: a "1" is two cycles of the high tone,
// a "0" is one cycle of the low tone, both occupying the same duration
// per the format's self-clocking FSK scheme.
func (m *Modem) encodeBit(one bool) []int16 {
	const cellSeconds = 1.0 / freqZero
	n := int(cellSeconds * float64(m.sampleRate))
	if n < 2 {
		n = 2
	}
	out := make([]int16, n)

	cycles := 1
	if one {
		cycles = 2
	}

	for i := range out {
		t := float64(i) / float64(m.sampleRate)
		// cycles complete cycles over the fixed cell duration: one cycle
		// of freqZero for a "0", two (approximating freqOne) for a "1".
		phase := 2 * 3.14159265358979 * float64(cycles) * t / cellSeconds
		if sinApprox(phase) >= 0 {
			out[i] = 8000
		} else {
			out[i] = -8000
		}
	}
	return out
}

// sinApprox avoids pulling in math just for a sign test by using a
// simple polynomial; precision doesn't matter here since only the sign
// of the waveform selects the output level.
func sinApprox(x float64) float64 {
	const twoPi = 2 * 3.14159265358979
	for x > twoPi {
		x -= twoPi
	}
	for x < 0 {
		x += twoPi
	}
	// quadratic Bhaskara I approximation, good enough for a sign test
	if x <= 3.14159265358979 {
		return 16 * x * (3.14159265358979 - x) / (5*3.14159265358979*3.14159265358979 - 4*x*(3.14159265358979-x))
	}
	x -= 3.14159265358979
	return -16 * x * (3.14159265358979 - x) / (5*3.14159265358979*3.14159265358979 - 4*x*(3.14159265358979-x))
}

func checksum(data []byte) uint8 {
	var sum uint8
	for _, b := range data {
		sum += b
	}
	if sum == syncByte {
		return checksumEscape
	}
	return sum
}

// DecodeRecord reverses EncodeRecord: it locates the sync byte ending
// the lead-in tone, reads one length-prefixed block, and validates its
// checksum. A zero-crossing slicer recovers bit cells from the supplied
// samples.
func (m *Modem) DecodeRecord(samples []int16) ([]byte, error) {
	bits := m.sliceBits(samples)
	pos := 0

	// Skip lead-in 0xFF bytes until the sync byte.
	for {
		b, next, ok := readByte(bits, pos)
		if !ok {
			return nil, xerrors.Errorf(xerrors.CassetteNoCarrier, "lead-in")
		}
		pos = next
		if b == syncByte {
			break
		}
	}

	return m.decodeBlock(bits, pos)
}

func (m *Modem) decodeBlock(bits []bool, pos int) ([]byte, error) {
	for {
		b, next, ok := readByte(bits, pos)
		if !ok {
			return nil, xerrors.Errorf(xerrors.CassetteNoCarrier, "block header")
		}
		pos = next
		if b == syncByte {
			break
		}
	}

	length, pos, ok := readByte(bits, pos)
	if !ok {
		return nil, xerrors.Errorf(xerrors.CassetteNoCarrier, "length byte")
	}

	data := make([]byte, length)
	for i := range data {
		b, next, ok := readByte(bits, pos)
		if !ok {
			return nil, xerrors.Errorf(xerrors.CassetteNoCarrier, "data byte")
		}
		data[i] = b
		pos = next
	}

	want, _, ok := readByte(bits, pos)
	if !ok {
		return nil, xerrors.Errorf(xerrors.CassetteNoCarrier, "checksum byte")
	}
	if want != checksum(data) {
		return nil, xerrors.Errorf(xerrors.CassetteNoCarrier, "checksum mismatch")
	}

	return data, nil
}

func readByte(bits []bool, pos int) (uint8, int, bool) {
	if pos+8 > len(bits) {
		return 0, pos, false
	}
	var b uint8
	for i := 0; i < 8; i++ {
		b <<= 1
		if bits[pos+i] {
			b |= 1
		}
	}
	return b, pos + 8, true
}

// sliceBits converts a PCM stream to a bit sequence by counting
// zero-crossings inside each cell window: three or more crossings is a
// "1" (two cycles in the cell), fewer is a "0" (one cycle). This is a
// simplification of the console's edge-counting cassette read routine,
// adequate for samples produced by encodeBit.
func (m *Modem) sliceBits(samples []int16) []bool {
	const cellSeconds = 1.0 / freqZero
	cellLen := int(cellSeconds * float64(m.sampleRate))
	if cellLen < 2 {
		cellLen = 2
	}

	var bits []bool
	for start := 0; start+cellLen <= len(samples); start += cellLen {
		crossings := 0
		prevPositive := samples[start] >= 0
		for i := start + 1; i < start+cellLen; i++ {
			positive := samples[i] >= 0
			if positive != prevPositive {
				crossings++
				prevPositive = positive
			}
		}
		bits = append(bits, crossings >= 3)
	}
	return bits
}

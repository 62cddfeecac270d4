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

// Package wav adapts the cassette modem's PCM16 sample stream to actual
// .wav files, using go-audio/wav for the container and go-audio/audio
// for the intermediate sample buffer, rather than hand-rolling RIFF
// chunk framing.
package wav

import (
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	xerrors "github.com/mburkley/mltt-sub000/errors"
)

const (
	bitDepth    = 16
	numChannels = 1
)

// Writer accumulates samples and flushes them to a .wav file on Close.
// It satisfies sound.Sink via WriteSamples, letting cassette output be
// wired to the same sink contract the live PSG mixer uses.
type Writer struct {
	enc    *wav.Encoder
	format *audio.Format
}

// NewWriter creates a Writer that encodes to w at sampleRate.
func NewWriter(w io.WriteSeeker, sampleRate int) *Writer {
	return &Writer{
		enc:    wav.NewEncoder(w, sampleRate, bitDepth, numChannels, 1),
		format: &audio.Format{NumChannels: numChannels, SampleRate: sampleRate},
	}
}

// WriteSamples appends PCM16 samples to the file.
func (w *Writer) WriteSamples(samples []int16) error {
	ints := make([]int, len(samples))
	for i, s := range samples {
		ints[i] = int(s)
	}
	buf := &audio.IntBuffer{
		Format:         w.format,
		Data:           ints,
		SourceBitDepth: bitDepth,
	}
	return w.enc.Write(buf)
}

// Close finalizes the RIFF header (size fields require a final seek-back,
// which is why Writer requires a WriteSeeker rather than a plain Writer).
func (w *Writer) Close() error {
	return w.enc.Close()
}

// ReadAll decodes an entire .wav file into a PCM16 sample slice.
// Samples deeper than 16 bits are shifted down to 16; samples of 16 bits
// or fewer are copied without rescaling.
func ReadAll(r io.ReadSeeker) ([]int16, int, error) {
	dec := wav.NewDecoder(r)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, xerrors.Errorf(xerrors.MalformedROM, "cassette wav", err.Error())
	}

	out := make([]int16, len(buf.Data))
	shift := uint(buf.SourceBitDepth) - 16
	for i, v := range buf.Data {
		if buf.SourceBitDepth > 16 {
			out[i] = int16(v >> shift)
		} else {
			out[i] = int16(v)
		}
	}
	return out, buf.Format.SampleRate, nil
}

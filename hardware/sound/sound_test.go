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

package sound_test

import (
	"testing"

	"github.com/mburkley/mltt-sub000/hardware/sound"
	"github.com/mburkley/mltt-sub000/test"
)

type captureSink struct {
	frames [][]int16
}

func (s *captureSink) WriteSamples(samples []int16) error {
	cp := make([]int16, len(samples))
	copy(cp, samples)
	s.frames = append(s.frames, cp)
	return nil
}

func TestSilentChannelProducesZeroFrame(t *testing.T) {
	sink := &captureSink{}
	c := sound.New(44100, sink)

	frame := c.GenerateFrame(8)
	for _, s := range frame {
		test.Equate(t, s, int16(0))
	}
}

func TestToneWriteLatchesPeriodAndAttenuation(t *testing.T) {
	sink := &captureSink{}
	c := sound.New(44100, sink)

	// Channel 0 frequency: low 4 bits then 6 high bits.
	c.Write(0x80 | 0x05) // latch channel 0 tone, low nibble 0x5
	c.Write(0x01)        // high 6 bits = 0x01 -> period 0x015
	c.Write(0x80 | 0x10) // latch channel 0 attenuation = 0 (loudest)

	frame := c.GenerateFrame(64)
	var sawNonZero bool
	for _, s := range frame {
		if s != 0 {
			sawNonZero = true
		}
	}
	test.Equate(t, sawNonZero, true)
	test.Equate(t, len(sink.frames), 1)
}

func TestFullAttenuationIsSilent(t *testing.T) {
	sink := &captureSink{}
	c := sound.New(44100, sink)

	c.Write(0x80 | 0x05)
	c.Write(0x01)
	c.Write(0x80 | 0x1F) // attenuation 0xF = silent

	frame := c.GenerateFrame(64)
	for _, s := range frame {
		test.Equate(t, s, int16(0))
	}
}

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

package memory_test

import (
	"testing"

	"github.com/mburkley/mltt-sub000/hardware/memory"
	"github.com/mburkley/mltt-sub000/test"
)

func TestScratchpadWriteReadRoundTrip(t *testing.T) {
	m := memory.New(nil)

	test.ExpectSuccess(t, m.WriteW(0x8010, 0xBEEF))
	v, err := m.ReadW(0x8010)
	test.ExpectSuccess(t, err)
	test.Equate(t, v, uint16(0xBEEF))
}

func TestScratchpadMirrorsEvery0x100Bytes(t *testing.T) {
	m := memory.New(nil)

	test.ExpectSuccess(t, m.WriteB(0x8000, 0x42))
	v, err := m.ReadB(0x8300)
	test.ExpectSuccess(t, err)
	test.Equate(t, v, uint8(0x42))
}

func TestOddWordAddressAlignsDown(t *testing.T) {
	m := memory.New(nil)
	test.ExpectSuccess(t, m.WriteW(0x8100, 0x1234))

	v, err := m.ReadW(0x8101)
	test.ExpectSuccess(t, err)
	test.Equate(t, v, uint16(0x1234))
}

func TestCartridgeBankSwitchSelectsOnLowTwoBitsOfAddress(t *testing.T) {
	image := make([]byte, 0x2000)
	image[0] = 0xAA      // bank 0, offset 0
	image[0x1000] = 0xBB // bank 1, offset 0

	cart := memory.NewCartridge(image)
	m := memory.New(nil)
	m.AttachCartridge(cart)

	v, err := m.ReadB(0x6000)
	test.ExpectSuccess(t, err)
	test.Equate(t, v, uint8(0xAA))

	// A write whose address has low 2 bits == 2 selects bank 1.
	test.ExpectSuccess(t, m.WriteB(0x6002, 0x00))

	v, err = m.ReadB(0x6000)
	test.ExpectSuccess(t, err)
	test.Equate(t, v, uint8(0xBB))

	// Any other low-2-bits value, including 1, restores bank 0.
	test.ExpectSuccess(t, m.WriteB(0x6001, 0x00))

	v, err = m.ReadB(0x6000)
	test.ExpectSuccess(t, err)
	test.Equate(t, v, uint8(0xAA))
}

func TestUnmappedHighDeviceWindowReadsZeroWhenInactive(t *testing.T) {
	m := memory.New(nil)
	v, err := m.ReadB(0x4000)
	test.ExpectSuccess(t, err)
	test.Equate(t, v, uint8(0))
}

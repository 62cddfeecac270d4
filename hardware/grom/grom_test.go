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

package grom_test

import (
	"testing"

	"github.com/mburkley/mltt-sub000/hardware/grom"
	"github.com/mburkley/mltt-sub000/test"
)

func TestAddressRoundTripAfterReads(t *testing.T) {
	g := grom.New(make([]byte, 16))

	g.WriteAddress(0x12)
	g.WriteAddress(0x34)

	g.ReadData()
	g.ReadData()
	g.ReadData()

	test.Equate(t, g.ReadAddress(), uint8(0x34+3))
	test.Equate(t, g.ReadAddress(), uint8(0x12))
}

func TestDataReadIncrementsAndWraps(t *testing.T) {
	img := make([]byte, 4)
	img[0] = 0xAA
	img[1] = 0xBB
	g := grom.New(img)

	g.WriteAddress(0x00)
	g.WriteAddress(0x00)

	test.Equate(t, g.ReadData(), uint8(0xAA))
	test.Equate(t, g.ReadData(), uint8(0xBB))

	// Reading past 0xFFFF wraps the address back to 0x0000.
	g.WriteAddress(0xFF)
	g.WriteAddress(0xFF)
	g.ReadData()
	test.Equate(t, g.ReadData(), uint8(0xAA))
}

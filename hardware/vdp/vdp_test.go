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

package vdp_test

import (
	"testing"

	"github.com/mburkley/mltt-sub000/hardware/vdp"
	"github.com/mburkley/mltt-sub000/test"
)

func TestWriteAddressThenDataRoundTrip(t *testing.T) {
	v := vdp.New(nil)

	v.WriteCommand(0x00)
	v.WriteCommand(0x40) // set write address 0x0000
	v.WriteData(0xAB)
	v.WriteData(0xCD)

	v.WriteCommand(0x00)
	v.WriteCommand(0x00) // set read address 0x0000, primes read-ahead buffer

	test.Equate(t, v.ReadData(), uint8(0xAB))
	test.Equate(t, v.ReadData(), uint8(0xCD))
}

func TestStatusReadClearsFrameFlag(t *testing.T) {
	v := vdp.New(nil)
	v.RaiseFrameInterrupt()

	status := v.ReadStatus()
	test.Equate(t, status&vdp.StatusF, uint8(vdp.StatusF))

	again := v.ReadStatus()
	test.Equate(t, again&vdp.StatusF, uint8(0))
}

func TestRaiseFrameInterruptInvokesCallbackWhenEnabled(t *testing.T) {
	fired := false
	v := vdp.New(func() { fired = true })

	// Register 1 bit 0x20 enables VDP interrupts; write it via the
	// command port's "write register" path (top bits 0b10, register 1).
	v.WriteCommand(0x20)
	v.WriteCommand(0x81)

	v.RaiseFrameInterrupt()
	test.Equate(t, fired, true)
}

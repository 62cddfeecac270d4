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

// Package grom implements the Graphics ROM: a 64KiB serial-access mask
// ROM addressed through a two-byte split latch, auto-incrementing on
// every data read.
package grom

// Size is the address space of a GROM bank set.
const Size = 0x10000

// GROM is the auto-incrementing serial ROM port. The CPU never addresses
// it directly; all access goes through the two-byte address latch and
// the data port, exactly as on real hardware.
type GROM struct {
	data [Size]byte

	addr uint16

	// addrLatchHigh is true once the high byte of a new address has been
	// written and we are waiting for the low byte.
	addrLatchHigh bool
	addrHighByte  uint8

	// addrReadHigh tracks which half of the post-increment address the
	// next address-port read should return.
	addrReadHigh bool
}

// New creates a GROM with its data preloaded (the console + cartridge
// GROM image, concatenated). Content shorter than Size is zero-padded;
// content is not copied defensively beyond Size bytes.
func New(image []byte) *GROM {
	g := &GROM{}
	n := copy(g.data[:], image)
	_ = n
	return g
}

// ReadData returns the byte at the current address and post-increments
// it, wrapping at 16 bits. Any read clears the address-write latch.
func (g *GROM) ReadData() uint8 {
	g.addrLatchHigh = false
	g.addrReadHigh = false
	v := g.data[g.addr]
	g.addr++
	return v
}

// WriteData is a no-op: GROM content is mask-programmed and not writable
// by the guest. Present so GROM satisfies bus.GROMPort, which models the
// write port as it appears in the memory map even though it has no
// effect.
func (g *GROM) WriteData(v uint8) {}

// WriteAddress writes one byte of the two-byte address latch: high byte
// first, then low byte. Writing the low byte completes the latch and
// loads the new address.
func (g *GROM) WriteAddress(v uint8) {
	if !g.addrLatchHigh {
		g.addrHighByte = v
		g.addrLatchHigh = true
		return
	}
	g.addr = uint16(g.addrHighByte)<<8 | uint16(v)
	g.addrLatchHigh = false
}

// ReadAddress returns the post-increment address, high byte first, then
// low byte on the next call. Any data-port read or address-port read
// clears both half-byte latches on the real chip; this resets the
// read-latch phase here too.
func (g *GROM) ReadAddress() uint8 {
	g.addrLatchHigh = false
	if !g.addrReadHigh {
		g.addrReadHigh = true
		return uint8(g.addr >> 8)
	}
	g.addrReadHigh = false
	return uint8(g.addr)
}

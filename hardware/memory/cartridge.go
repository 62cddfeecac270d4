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

package memory

// Cartridge is the 6000-7FFF ROM window. Banked cartridges are 8KiB or
// larger images split into 4KiB banks; the active bank is selected not
// by a dedicated register but by the low 2 bits of the address any
// write lands on anywhere in the window, a quirk of how third-party
// cartridges actually implemented bank select on real hardware.
type Cartridge struct {
	banks   [][]byte
	active  int
	// mmap, when non-nil, overlays the top half of the window
	// (7000-7FFF) with a separate region some cartridges use for
	// battery-backed or memory-mapped expansion rather than banked ROM.
	mmap []byte
}

// NewCartridge splits a ROM image into 4KiB banks. An image smaller
// than 4KiB is treated as a single, unbanked bank.
func NewCartridge(image []byte) *Cartridge {
	const bankSize = 0x1000
	c := &Cartridge{}
	if len(image) <= bankSize {
		c.banks = [][]byte{image}
		return c
	}
	for off := 0; off < len(image); off += bankSize {
		end := off + bankSize
		if end > len(image) {
			end = len(image)
		}
		c.banks = append(c.banks, image[off:end])
	}
	return c
}

// AttachMMap overlays 7000-7FFF with a separate memory-mapped region,
// used by cartridges (and the original source's "mmap" banking variant)
// that trade the second 4KiB ROM bank for RAM or I/O.
func (c *Cartridge) AttachMMap(region []byte) { c.mmap = region }

func (c *Cartridge) Read(offset uint16) uint8 {
	if c.mmap != nil && offset >= 0x1000 {
		idx := int(offset - 0x1000)
		if idx < len(c.mmap) {
			return c.mmap[idx]
		}
		return 0
	}
	bank := c.bank(offset)
	if bank == nil {
		return 0
	}
	idx := int(offset) & 0x0FFF
	if idx >= len(bank) {
		return 0
	}
	return bank[idx]
}

// Write implements the bank-select side effect: any write to the
// cartridge ROM window selects a bank by the low 2 bits of the address
// written, regardless of the value written. Low bits equal to 2 select
// bank 1; anything else (0, 1 or 3) selects bank 0. If AttachMMap is in
// effect, writes to the top half instead go to that region.
func (c *Cartridge) Write(offset uint16, v uint8) {
	if c.mmap != nil && offset >= 0x1000 {
		idx := int(offset - 0x1000)
		if idx < len(c.mmap) {
			c.mmap[idx] = v
		}
		return
	}
	sel := 0
	if offset&0x03 == 2 {
		sel = 1
	}
	if sel < len(c.banks) {
		c.active = sel
	}
}

func (c *Cartridge) bank(offset uint16) []byte {
	_ = offset
	if c.active >= len(c.banks) {
		return nil
	}
	return c.banks[c.active]
}

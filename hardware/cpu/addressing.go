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

package cpu

// regAddr returns the workspace address of general register n. Reading
// Rn is always exactly a word read from this address: the general
// registers are not a separate array, they are the 16 words at WP.
func (c *CPU) regAddr(n uint8) uint16 {
	return c.WP + 2*uint16(n)
}

// resolveOperand computes the effective (host-addressable) address for
// an operand described by a 2-bit mode and 4-bit register field. For
// register mode the "effective address" is simply the register's own
// workspace slot, which is how register, register indirect and
// auto-increment modes can share one code path with every other
// addressing mode: everything eventually reduces to a memory address.
func (c *CPU) resolveOperand(modeReg uint16, byteOp bool) (uint16, error) {
	mode := uint8((modeReg >> 4) & 0x3)
	reg := uint8(modeReg & 0xF)
	ra := c.regAddr(reg)

	switch mode {
	case 0: // register
		return ra, nil

	case 1: // register indirect
		return c.mem.ReadW(ra)

	case 2: // symbolic / indexed
		ext, err := c.fetchWord()
		if err != nil {
			return 0, err
		}
		if reg != 0 {
			rv, err := c.mem.ReadW(ra)
			if err != nil {
				return 0, err
			}
			ext += rv
		}
		return ext, nil

	default: // 3: register indirect auto-increment
		addr, err := c.mem.ReadW(ra)
		if err != nil {
			return 0, err
		}
		inc := uint16(2)
		if byteOp {
			inc = 1
		}
		if err := c.mem.WriteW(ra, addr+inc); err != nil {
			return 0, err
		}
		return addr, nil
	}
}

// fetchWord reads the word at PC and advances PC by 2, as used both for
// instruction fetch and for symbolic-mode extension words.
func (c *CPU) fetchWord() (uint16, error) {
	v, err := c.mem.ReadW(c.PC)
	if err != nil {
		return 0, err
	}
	c.PC += 2
	return v, nil
}

// readOperandWord resolves an operand and reads its value.
func (c *CPU) readOperandWord(modeReg uint16) (addr uint16, val uint16, err error) {
	addr, err = c.resolveOperand(modeReg, false)
	if err != nil {
		return 0, 0, err
	}
	val, err = c.mem.ReadW(addr)
	return addr, val, err
}

func (c *CPU) readOperandByte(modeReg uint16) (addr uint16, val uint8, err error) {
	addr, err = c.resolveOperand(modeReg, true)
	if err != nil {
		return 0, 0, err
	}
	val, err = c.mem.ReadB(addr)
	return addr, val, err
}

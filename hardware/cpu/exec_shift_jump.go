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

import xerrors "github.com/mburkley/mltt-sub000/errors"

func (c *CPU) execShift(opcode uint16) error {
	count := uint8((opcode >> 4) & 0xF)
	reg := uint8(opcode & 0xF)

	if count == 0 {
		r0, err := c.R(0)
		if err != nil {
			return err
		}
		count = uint8(r0 & 0xF)
		if count == 0 {
			count = 16
		}
	}

	addr := c.regAddr(reg)
	v, err := c.mem.ReadW(addr)
	if err != nil {
		return err
	}

	var result uint16
	var carry, overflow bool

	switch opcode & shiftMask {
	case opSRA:
		sv := int16(v)
		for i := uint8(0); i < count; i++ {
			carry = sv&1 == 1
			sv >>= 1
		}
		result = uint16(sv)

	case opSRL:
		uv := v
		for i := uint8(0); i < count; i++ {
			carry = uv&1 == 1
			uv >>= 1
		}
		result = uv

	case opSLA:
		uv := v
		signOrig := uv&0x8000 != 0
		for i := uint8(0); i < count; i++ {
			carry = uv&0x8000 != 0
			uv <<= 1
			if (uv&0x8000 != 0) != signOrig {
				overflow = true
			}
		}
		result = uv

	case opSRC:
		uv := v
		for i := uint8(0); i < count; i++ {
			bit := uv & 1
			carry = bit == 1
			uv = (uv >> 1) | (bit << 15)
		}
		result = uv

	default:
		return xerrors.Errorf(xerrors.UndefinedOpcode, opcode, c.PC-2)
	}

	if err := c.mem.WriteW(addr, result); err != nil {
		return err
	}
	c.ST.SetC(carry)
	c.ST.SetOV(overflow)
	c.ST.setResultWord(result)
	return nil
}

// jump condition predicates, per the standard TMS9900 condition set.
func (c *CPU) jumpCondition(opcode uint16) (bool, error) {
	switch opcode & jumpMask {
	case opJMP:
		return true, nil
	case opJLT:
		return !c.ST.AGT() && !c.ST.EQ(), nil
	case opJLE:
		return !c.ST.AGT(), nil
	case opJEQ:
		return c.ST.EQ(), nil
	case opJHE:
		return c.ST.LGT() || c.ST.EQ(), nil
	case opJGT:
		return c.ST.AGT(), nil
	case opJNE:
		return !c.ST.EQ(), nil
	case opJNC:
		return !c.ST.C(), nil
	case opJOC:
		return c.ST.C(), nil
	case opJNO:
		return !c.ST.OV(), nil
	case opJL:
		return !c.ST.LGT() && !c.ST.EQ(), nil
	case opJH:
		return c.ST.LGT() && !c.ST.EQ(), nil
	case opJOP:
		return c.ST.OP(), nil
	default:
		return false, xerrors.Errorf(xerrors.UndefinedOpcode, opcode, c.PC-2)
	}
}

func (c *CPU) execJump(opcode uint16) error {
	switch opcode & jumpMask {
	case opSBO:
		base, err := c.cruBase()
		if err != nil {
			return err
		}
		c.cru.Output(base, int8(opcode&0xFF), true)
		return nil

	case opSBZ:
		base, err := c.cruBase()
		if err != nil {
			return err
		}
		c.cru.Output(base, int8(opcode&0xFF), false)
		return nil

	case opTB:
		base, err := c.cruBase()
		if err != nil {
			return err
		}
		c.ST.SetEQ(c.cru.Get(base, int8(opcode&0xFF)))
		return nil
	}

	take, err := c.jumpCondition(opcode)
	if err != nil {
		return err
	}
	if take {
		disp := int8(opcode & 0xFF)
		c.PC = c.PC + uint16(2*int32(disp))
	}
	return nil
}

// cruBase returns the CRU word-pointer base derived from R12: a 12-bit
// word pointer held in register R12, right-shifted by one.
func (c *CPU) cruBase() (uint16, error) {
	r12, err := c.R(12)
	if err != nil {
		return 0, err
	}
	return r12 >> 1, nil
}

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

// execDual1 handles COC, CZC, XOR, XOP, LDCR, STCR, MPY, DIV: an
// addressed source operand paired with a register (or, for LDCR/STCR, a
// CRU bit count).
func (c *CPU) execDual1(opcode uint16) error {
	regField := uint8((opcode >> 6) & 0xF)
	modeReg := opcode & 0x3F

	switch opcode & dual1Mask {
	case opCOC:
		_, src, err := c.readOperandWord(modeReg)
		if err != nil {
			return err
		}
		reg, err := c.R(regField)
		if err != nil {
			return err
		}
		c.ST.SetEQ((src & reg) == reg)

	case opCZC:
		_, src, err := c.readOperandWord(modeReg)
		if err != nil {
			return err
		}
		reg, err := c.R(regField)
		if err != nil {
			return err
		}
		c.ST.SetEQ((src & reg) == 0)

	case opXOR:
		_, src, err := c.readOperandWord(modeReg)
		if err != nil {
			return err
		}
		reg, err := c.R(regField)
		if err != nil {
			return err
		}
		result := reg ^ src
		if err := c.SetR(regField, result); err != nil {
			return err
		}
		c.ST.setResultWord(result)

	case opXOP:
		// Software interrupts via XOP are not used by any TI-99/4A
		// console software path this emulator targets; treated as
		// undefined.
		return xerrors.Errorf(xerrors.UndefinedOpcode, opcode, c.PC-2)

	case opLDCR:
		return c.execLDCR(regField, modeReg)

	case opSTCR:
		return c.execSTCR(regField, modeReg)

	case opMPY:
		_, src, err := c.readOperandWord(modeReg)
		if err != nil {
			return err
		}
		reg, err := c.R(regField)
		if err != nil {
			return err
		}
		product := uint32(reg) * uint32(src)
		if err := c.SetR(regField, uint16(product>>16)); err != nil {
			return err
		}
		return c.SetR(regField+1, uint16(product))

	case opDIV:
		_, src, err := c.readOperandWord(modeReg)
		if err != nil {
			return err
		}
		hi, err := c.R(regField)
		if err != nil {
			return err
		}
		lo, err := c.R(regField + 1)
		if err != nil {
			return err
		}
		if src == 0 || src <= hi {
			c.ST.SetOV(true)
			return nil
		}
		c.ST.SetOV(false)
		dividend := uint32(hi)<<16 | uint32(lo)
		q := dividend / uint32(src)
		r := dividend % uint32(src)
		if err := c.SetR(regField, uint16(q)); err != nil {
			return err
		}
		return c.SetR(regField+1, uint16(r))

	default:
		return xerrors.Errorf(xerrors.UndefinedOpcode, opcode, c.PC-2)
	}
	return nil
}

func (c *CPU) execLDCR(countField uint8, modeReg uint16) error {
	count := int(countField)
	if count == 0 {
		count = 16
	}
	base, err := c.cruBase()
	if err != nil {
		return err
	}
	if count <= 8 {
		_, v, err := c.readOperandByte(modeReg)
		if err != nil {
			return err
		}
		c.cru.MultiSet(base, uint16(v), count)
		c.ST.setResultByte(v)
		c.ST.setParity(v)
		return nil
	}
	_, v, err := c.readOperandWord(modeReg)
	if err != nil {
		return err
	}
	c.cru.MultiSet(base, v, count)
	c.ST.setResultWord(v)
	return nil
}

func (c *CPU) execSTCR(countField uint8, modeReg uint16) error {
	count := int(countField)
	if count == 0 {
		count = 16
	}
	base, err := c.cruBase()
	if err != nil {
		return err
	}
	data := c.cru.MultiGet(base, count)

	if count <= 8 {
		addr, err := c.resolveOperand(modeReg, true)
		if err != nil {
			return err
		}
		b := uint8(data)
		if err := c.mem.WriteB(addr, b); err != nil {
			return err
		}
		c.ST.setResultByte(b)
		c.ST.setParity(b)
		return nil
	}
	addr, err := c.resolveOperand(modeReg, false)
	if err != nil {
		return err
	}
	if err := c.mem.WriteW(addr, data); err != nil {
		return err
	}
	c.ST.setResultWord(data)
	return nil
}

// execDual2 handles the general two-operand format: SZC(B), S(B), C(B),
// A(B), MOV(B), SOC(B).
func (c *CPU) execDual2(opcode uint16) error {
	byteOp := opcode&0x1000 != 0
	srcModeReg := opcode & 0x3F
	dstModeReg := (opcode >> 6) & 0x3F

	opGroup := opcode & dual2Mask
	if byteOp {
		opGroup &^= 0x1000
	}

	if byteOp {
		return c.execDual2Byte(opGroup, srcModeReg, dstModeReg)
	}
	return c.execDual2Word(opGroup, srcModeReg, dstModeReg)
}

func (c *CPU) execDual2Word(opGroup, srcModeReg, dstModeReg uint16) error {
	_, src, err := c.readOperandWord(srcModeReg)
	if err != nil {
		return err
	}

	switch opGroup {
	case opSZC:
		dstAddr, dst, err := c.readOperandWord(dstModeReg)
		if err != nil {
			return err
		}
		result := dst &^ src
		if err := c.mem.WriteW(dstAddr, result); err != nil {
			return err
		}
		c.ST.setResultWord(result)

	case opS:
		dstAddr, dst, err := c.readOperandWord(dstModeReg)
		if err != nil {
			return err
		}
		result, noBorrow, overflow := subFlags16(dst, src)
		if err := c.mem.WriteW(dstAddr, result); err != nil {
			return err
		}
		c.ST.SetC(noBorrow)
		c.ST.SetOV(overflow)
		c.ST.setResultWord(result)

	case opC:
		_, dst, err := c.readOperandWord(dstModeReg)
		if err != nil {
			return err
		}
		c.ST.setCompare(src, dst)

	case opA:
		dstAddr, dst, err := c.readOperandWord(dstModeReg)
		if err != nil {
			return err
		}
		result, carry, overflow := addFlags16(dst, src)
		if err := c.mem.WriteW(dstAddr, result); err != nil {
			return err
		}
		c.ST.SetC(carry)
		c.ST.SetOV(overflow)
		c.ST.setResultWord(result)

	case opMOV:
		dstAddr, err := c.resolveOperand(dstModeReg, false)
		if err != nil {
			return err
		}
		if err := c.mem.WriteW(dstAddr, src); err != nil {
			return err
		}
		c.ST.setResultWord(src)

	case opSOC:
		dstAddr, dst, err := c.readOperandWord(dstModeReg)
		if err != nil {
			return err
		}
		result := dst | src
		if err := c.mem.WriteW(dstAddr, result); err != nil {
			return err
		}
		c.ST.setResultWord(result)

	default:
		return xerrors.Errorf(xerrors.UndefinedOpcode, opGroup, c.PC-2)
	}
	return nil
}

func (c *CPU) execDual2Byte(opGroup, srcModeReg, dstModeReg uint16) error {
	_, src, err := c.readOperandByte(srcModeReg)
	if err != nil {
		return err
	}

	switch opGroup {
	case opSZC:
		dstAddr, dst, err := c.readOperandByte(dstModeReg)
		if err != nil {
			return err
		}
		result := dst &^ src
		if err := c.mem.WriteB(dstAddr, result); err != nil {
			return err
		}
		c.ST.setResultByte(result)
		c.ST.setParity(result)

	case opS:
		dstAddr, dst, err := c.readOperandByte(dstModeReg)
		if err != nil {
			return err
		}
		result, noBorrow, overflow := subFlags8(dst, src)
		if err := c.mem.WriteB(dstAddr, result); err != nil {
			return err
		}
		c.ST.SetC(noBorrow)
		c.ST.SetOV(overflow)
		c.ST.setResultByte(result)
		c.ST.setParity(result)

	case opC:
		_, dst, err := c.readOperandByte(dstModeReg)
		if err != nil {
			return err
		}
		c.ST.setCompareByte(src, dst)
		c.ST.setParity(dst)

	case opA:
		dstAddr, dst, err := c.readOperandByte(dstModeReg)
		if err != nil {
			return err
		}
		result, carry, overflow := addFlags8(dst, src)
		if err := c.mem.WriteB(dstAddr, result); err != nil {
			return err
		}
		c.ST.SetC(carry)
		c.ST.SetOV(overflow)
		c.ST.setResultByte(result)
		c.ST.setParity(result)

	case opMOV:
		dstAddr, err := c.resolveOperand(dstModeReg, true)
		if err != nil {
			return err
		}
		if err := c.mem.WriteB(dstAddr, src); err != nil {
			return err
		}
		c.ST.setResultByte(src)
		c.ST.setParity(src)

	case opSOC:
		dstAddr, dst, err := c.readOperandByte(dstModeReg)
		if err != nil {
			return err
		}
		result := dst | src
		if err := c.mem.WriteB(dstAddr, result); err != nil {
			return err
		}
		c.ST.setResultByte(result)
		c.ST.setParity(result)

	default:
		return xerrors.Errorf(xerrors.UndefinedOpcode, opGroup, c.PC-2)
	}
	return nil
}

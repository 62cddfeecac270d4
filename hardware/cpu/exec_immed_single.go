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

func (c *CPU) execImmed(opcode uint16) error {
	reg := uint8(opcode & 0xF)

	switch opcode & immedMask {
	case opLI:
		imm, err := c.fetchWord()
		if err != nil {
			return err
		}
		if err := c.SetR(reg, imm); err != nil {
			return err
		}
		c.ST.setResultWord(imm)

	case opAI:
		cur, err := c.R(reg)
		if err != nil {
			return err
		}
		imm, err := c.fetchWord()
		if err != nil {
			return err
		}
		result, carry, overflow := addFlags16(cur, imm)
		if err := c.SetR(reg, result); err != nil {
			return err
		}
		c.ST.SetC(carry)
		c.ST.SetOV(overflow)
		c.ST.setResultWord(result)

	case opANDI:
		cur, err := c.R(reg)
		if err != nil {
			return err
		}
		imm, err := c.fetchWord()
		if err != nil {
			return err
		}
		result := cur & imm
		if err := c.SetR(reg, result); err != nil {
			return err
		}
		c.ST.setResultWord(result)

	case opORI:
		cur, err := c.R(reg)
		if err != nil {
			return err
		}
		imm, err := c.fetchWord()
		if err != nil {
			return err
		}
		result := cur | imm
		if err := c.SetR(reg, result); err != nil {
			return err
		}
		c.ST.setResultWord(result)

	case opCI:
		cur, err := c.R(reg)
		if err != nil {
			return err
		}
		imm, err := c.fetchWord()
		if err != nil {
			return err
		}
		c.ST.setCompare(cur, imm)

	case opSTWP:
		return c.SetR(reg, c.WP)

	case opSTST:
		return c.SetR(reg, uint16(c.ST))

	case opLWPI:
		imm, err := c.fetchWord()
		if err != nil {
			return err
		}
		c.WP = setEven(imm)

	case opLIMI:
		imm, err := c.fetchWord()
		if err != nil {
			return err
		}
		c.ST.SetMask(uint8(imm & 0xF))

	case opRTWP:
		return c.rtwp()

	case opIDLE, opRSET, opCKON, opCKOF, opLREX:
		// Cycle-exact clock-control behaviour is out of scope; these are
		// accepted as no-ops.
		return nil

	default:
		return xerrors.Errorf(xerrors.UndefinedOpcode, opcode, c.PC-2)
	}
	return nil
}

func (c *CPU) execSingle(opcode uint16) error {
	modeReg := opcode & 0x3F

	switch opcode & singleMask {
	case opBLWP:
		addr, err := c.resolveOperand(modeReg, false)
		if err != nil {
			return err
		}
		return c.blwpAbs(addr)

	case opB:
		addr, err := c.resolveOperand(modeReg, false)
		if err != nil {
			return err
		}
		c.PC = addr
		return nil

	case opBL:
		addr, err := c.resolveOperand(modeReg, false)
		if err != nil {
			return err
		}
		if err := c.SetR(11, c.PC); err != nil {
			return err
		}
		c.PC = addr
		return nil

	case opX:
		addr, err := c.resolveOperand(modeReg, false)
		if err != nil {
			return err
		}
		sub, err := c.mem.ReadW(addr)
		if err != nil {
			return err
		}
		return c.execute(sub)

	case opCLR:
		addr, err := c.resolveOperand(modeReg, false)
		if err != nil {
			return err
		}
		return c.mem.WriteW(addr, 0)

	case opSETO:
		addr, err := c.resolveOperand(modeReg, false)
		if err != nil {
			return err
		}
		return c.mem.WriteW(addr, 0xFFFF)

	case opINV:
		addr, v, err := c.readOperandWord(modeReg)
		if err != nil {
			return err
		}
		result := ^v
		if err := c.mem.WriteW(addr, result); err != nil {
			return err
		}
		c.ST.setResultWord(result)

	case opNEG:
		addr, v, err := c.readOperandWord(modeReg)
		if err != nil {
			return err
		}
		result := -v
		if err := c.mem.WriteW(addr, result); err != nil {
			return err
		}
		c.ST.SetC(v == 0x8000)
		c.ST.SetOV(v == 0x8000)
		c.ST.setResultWord(result)

	case opABS:
		addr, v, err := c.readOperandWord(modeReg)
		if err != nil {
			return err
		}
		result := v
		if int16(v) < 0 {
			result = -v
		}
		if err := c.mem.WriteW(addr, result); err != nil {
			return err
		}
		c.ST.SetC(v == 0x8000)
		c.ST.SetOV(v == 0x8000)
		c.ST.setResultWord(result)

	case opINC:
		addr, v, err := c.readOperandWord(modeReg)
		if err != nil {
			return err
		}
		result, carry, overflow := addFlags16(v, 1)
		if err := c.mem.WriteW(addr, result); err != nil {
			return err
		}
		c.ST.SetC(carry)
		c.ST.SetOV(overflow)
		c.ST.setResultWord(result)

	case opINCT:
		addr, v, err := c.readOperandWord(modeReg)
		if err != nil {
			return err
		}
		result, carry, overflow := addFlags16(v, 2)
		if err := c.mem.WriteW(addr, result); err != nil {
			return err
		}
		c.ST.SetC(carry)
		c.ST.SetOV(overflow)
		c.ST.setResultWord(result)

	case opDEC:
		addr, v, err := c.readOperandWord(modeReg)
		if err != nil {
			return err
		}
		result, noBorrow, overflow := subFlags16(v, 1)
		if err := c.mem.WriteW(addr, result); err != nil {
			return err
		}
		c.ST.SetC(noBorrow)
		c.ST.SetOV(overflow)
		c.ST.setResultWord(result)

	case opDECT:
		addr, v, err := c.readOperandWord(modeReg)
		if err != nil {
			return err
		}
		result, noBorrow, overflow := subFlags16(v, 2)
		if err := c.mem.WriteW(addr, result); err != nil {
			return err
		}
		c.ST.SetC(noBorrow)
		c.ST.SetOV(overflow)
		c.ST.setResultWord(result)

	case opSWPB:
		addr, v, err := c.readOperandWord(modeReg)
		if err != nil {
			return err
		}
		result := v>>8 | v<<8
		return c.mem.WriteW(addr, result)

	default:
		return xerrors.Errorf(xerrors.UndefinedOpcode, opcode, c.PC-2)
	}
	return nil
}

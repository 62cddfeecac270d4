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

// Package disassembly renders TMS9900 machine code as text, and tracks
// which addresses have actually been executed so the debugger's listing
// can distinguish "disassembled" from "seen by the running program" --
// the latter is the only way to tell code from embedded data in a
// memory dump with no symbol table.
package disassembly

import "fmt"

// Reader is the minimal memory access the disassembler needs: peeking
// words and bytes without the side effects a live bus might carry for
// an MMIO address.
type Reader interface {
	Peek(addr uint16) (uint8, error)
}

// Instruction is one decoded instruction: its address, raw words, and
// rendered text.
type Instruction struct {
	Addr   uint16
	Words  []uint16
	Text   string
	Length uint16 // bytes consumed, 2, 4, or 6
}

// Disassembler decodes instructions from a Reader and remembers which
// addresses it has seen the CPU actually fetch, via MarkExecuted.
type Disassembler struct {
	mem     Reader
	covered map[uint16]bool
}

// New creates a Disassembler reading from mem.
func New(mem Reader) *Disassembler {
	return &Disassembler{mem: mem, covered: make(map[uint16]bool)}
}

// MarkExecuted records that addr was fetched as an opcode by the
// running CPU, called once per Step from the Machine's debugger hook.
func (d *Disassembler) MarkExecuted(addr uint16) {
	d.covered[addr] = true
}

// Covered reports whether addr has ever been fetched as an opcode.
func (d *Disassembler) Covered(addr uint16) bool {
	return d.covered[addr]
}

func (d *Disassembler) readWord(addr uint16) (uint16, error) {
	hi, err := d.mem.Peek(addr)
	if err != nil {
		return 0, err
	}
	lo, err := d.mem.Peek(addr + 1)
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

// regOperand renders a 6-bit Ts|S addressing-mode field.
func regOperand(modeReg uint16) string {
	mode := (modeReg >> 4) & 0x3
	reg := modeReg & 0xF
	switch mode {
	case 0:
		return fmt.Sprintf("R%d", reg)
	case 1:
		return fmt.Sprintf("*R%d", reg)
	case 2:
		return fmt.Sprintf("@>xxxx(R%d)", reg)
	default:
		return fmt.Sprintf("*R%d+", reg)
	}
}

// operandHasExtension reports whether the symbolic/indexed mode (2) is
// used, meaning an extra word follows the opcode for this operand.
func operandHasExtension(modeReg uint16) bool {
	return (modeReg>>4)&0x3 == 2
}

// Decode disassembles one instruction at addr.
func (d *Disassembler) Decode(addr uint16) (Instruction, error) {
	opcode, err := d.readWord(addr)
	if err != nil {
		return Instruction{}, err
	}

	inst := Instruction{Addr: addr, Words: []uint16{opcode}, Length: 2}

	extra := func(n int) error {
		a := addr + 2
		for i := 0; i < n; i++ {
			w, err := d.readWord(a)
			if err != nil {
				return err
			}
			inst.Words = append(inst.Words, w)
			inst.Length += 2
			a += 2
		}
		return nil
	}

	switch {
	case opcode>>10 == 0: // immediate
		reg := opcode & 0xF
		switch opcode & 0xFFE0 {
		case 0x0200:
			extra(1)
			inst.Text = fmt.Sprintf("LI    R%d,>%04X", reg, inst.Words[len(inst.Words)-1])
		case 0x0220:
			extra(1)
			inst.Text = fmt.Sprintf("AI    R%d,>%04X", reg, inst.Words[len(inst.Words)-1])
		case 0x0240:
			extra(1)
			inst.Text = fmt.Sprintf("ANDI  R%d,>%04X", reg, inst.Words[len(inst.Words)-1])
		case 0x0260:
			extra(1)
			inst.Text = fmt.Sprintf("ORI   R%d,>%04X", reg, inst.Words[len(inst.Words)-1])
		case 0x0280:
			extra(1)
			inst.Text = fmt.Sprintf("CI    R%d,>%04X", reg, inst.Words[len(inst.Words)-1])
		case 0x02A0:
			inst.Text = fmt.Sprintf("STWP  R%d", reg)
		case 0x02C0:
			inst.Text = fmt.Sprintf("STST  R%d", reg)
		case 0x02E0:
			extra(1)
			inst.Text = "LWPI  >" + fmt.Sprintf("%04X", inst.Words[len(inst.Words)-1])
		case 0x0300:
			extra(1)
			inst.Text = "LIMI  >" + fmt.Sprintf("%04X", inst.Words[len(inst.Words)-1])
		case 0x0380:
			inst.Text = "RTWP"
		default:
			inst.Text = unrecognizedNoOperandImmediate(opcode)
		}

	case opcode>>10 == 1: // single operand
		modeReg := opcode & 0x3F
		if operandHasExtension(modeReg) {
			extra(1)
		}
		op := regOperand(modeReg)
		switch opcode & 0xFFC0 {
		case 0x0400:
			inst.Text = "BLWP  " + op
		case 0x0440:
			inst.Text = "B     " + op
		case 0x0480:
			inst.Text = "X     " + op
		case 0x04C0:
			inst.Text = "CLR   " + op
		case 0x0500:
			inst.Text = "NEG   " + op
		case 0x0540:
			inst.Text = "INV   " + op
		case 0x0580:
			inst.Text = "INC   " + op
		case 0x05C0:
			inst.Text = "INCT  " + op
		case 0x0600:
			inst.Text = "DEC   " + op
		case 0x0640:
			inst.Text = "DECT  " + op
		case 0x0680:
			inst.Text = "BL    " + op
		case 0x06C0:
			inst.Text = "SWPB  " + op
		case 0x0700:
			inst.Text = "SETO  " + op
		case 0x0740:
			inst.Text = "ABS   " + op
		default:
			inst.Text = fmt.Sprintf("DATA  >%04X", opcode)
		}

	case opcode>>10 == 2 || opcode>>10 == 3: // shift
		count := (opcode >> 4) & 0xF
		reg := opcode & 0xF
		mnem := map[uint16]string{0x0800: "SRA", 0x0900: "SRL", 0x0A00: "SLA", 0x0B00: "SRC"}[opcode&0xFF00]
		inst.Text = fmt.Sprintf("%-5s R%d,%d", mnem, reg, count)

	case opcode>>10 >= 4 && opcode>>10 <= 7: // jump / CRU single-bit
		mnem, ok := jumpMnemonics[opcode&0xFF00]
		disp := int8(opcode & 0xFF)
		if !ok {
			inst.Text = fmt.Sprintf("DATA  >%04X", opcode)
			break
		}
		if mnem == "SBO" || mnem == "SBZ" || mnem == "TB" {
			inst.Text = fmt.Sprintf("%-5s %d", mnem, disp)
		} else {
			inst.Text = fmt.Sprintf("%-5s >%04X", mnem, uint16(int32(addr)+2+2*int32(disp)))
		}

	case opcode>>10 >= 8 && opcode>>10 <= 15: // dual-operand-1
		regOrCount := (opcode >> 6) & 0xF
		modeReg := opcode & 0x3F
		if operandHasExtension(modeReg) {
			extra(1)
		}
		op := regOperand(modeReg)
		switch opcode & 0xFC00 {
		case 0x2000:
			inst.Text = fmt.Sprintf("COC   %s,R%d", op, regOrCount)
		case 0x2400:
			inst.Text = fmt.Sprintf("CZC   %s,R%d", op, regOrCount)
		case 0x2800:
			inst.Text = fmt.Sprintf("XOR   %s,R%d", op, regOrCount)
		case 0x2C00:
			inst.Text = fmt.Sprintf("XOP   %s,%d", op, regOrCount)
		case 0x3000:
			inst.Text = fmt.Sprintf("LDCR  %s,%d", op, regOrCount)
		case 0x3400:
			inst.Text = fmt.Sprintf("STCR  %s,%d", op, regOrCount)
		case 0x3800:
			inst.Text = fmt.Sprintf("MPY   %s,R%d", op, regOrCount)
		case 0x3C00:
			inst.Text = fmt.Sprintf("DIV   %s,R%d", op, regOrCount)
		}

	default: // dual-operand-2 (general)
		byteOp := opcode&0x1000 != 0
		srcModeReg := opcode & 0x3F
		dstModeReg := (opcode >> 6) & 0x3F
		if operandHasExtension(srcModeReg) {
			extra(1)
		}
		if operandHasExtension(dstModeReg) {
			extra(1)
		}
		src := regOperand(srcModeReg)
		dst := regOperand(dstModeReg)
		group := opcode & 0xF000
		if byteOp {
			group &^= 0x1000
		}
		mnem := dual2Mnemonics[group]
		if byteOp {
			mnem += "B"
		}
		inst.Text = fmt.Sprintf("%-5s %s,%s", mnem, src, dst)
	}

	return inst, nil
}

var jumpMnemonics = map[uint16]string{
	0x1000: "JMP", 0x1100: "JLT", 0x1200: "JLE", 0x1300: "JEQ",
	0x1400: "JHE", 0x1500: "JGT", 0x1600: "JNE", 0x1700: "JNC",
	0x1800: "JOC", 0x1900: "JNO", 0x1A00: "JL", 0x1B00: "JH",
	0x1C00: "JOP", 0x1D00: "SBO", 0x1E00: "SBZ", 0x1F00: "TB",
}

var dual2Mnemonics = map[uint16]string{
	0x4000: "SZC", 0x6000: "S", 0x8000: "C", 0xA000: "A",
	0xC000: "MOV", 0xE000: "SOC",
}

func unrecognizedNoOperandImmediate(opcode uint16) string {
	switch opcode & 0xFFE0 {
	case 0x0340:
		return "IDLE"
	case 0x0360:
		return "RSET"
	case 0x03A0:
		return "CKON"
	case 0x03C0:
		return "CKOF"
	case 0x03E0:
		return "LREX"
	}
	return fmt.Sprintf("DATA  >%04X", opcode)
}

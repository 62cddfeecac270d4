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

// format identifies the instruction layout a given opcode decodes to.
// formatOf (below) classifies an opcode by its top 6 bits and yields one
// of these.
type format int

const (
	fmtImmed format = iota
	fmtSingle
	fmtShift
	fmtJump
	fmtDual1
	fmtDual2
	fmtUndefined
)

// Opcode values, masks, and mnemonics for every format. Each constant is
// the fixed bit pattern; the mask isolates exactly those bits.

// Immediate format: opcode(11 bits) | unused(1) | reg(4 bits). A word
// operand follows LI/AI/ANDI/ORI/CI/LWPI/LIMI; STWP/STST take only the
// register, and RTWP/IDLE/RSET/CKON/CKOF/LREX take neither.
const immedMask = 0xFFE0

const (
	opLI   = 0x0200
	opAI   = 0x0220
	opANDI = 0x0240
	opORI  = 0x0260
	opCI   = 0x0280
	opSTWP = 0x02A0
	opSTST = 0x02C0
	opLWPI = 0x02E0
	opLIMI = 0x0300
	opIDLE = 0x0340
	opRSET = 0x0360
	opRTWP = 0x0380
	opCKON = 0x03A0
	opCKOF = 0x03C0
	opLREX = 0x03E0
)

// Single-operand format: opcode(10 bits) | Ts(2) S(4).
const singleMask = 0xFFC0

const (
	opBLWP = 0x0400
	opB    = 0x0440
	opX    = 0x0480
	opCLR  = 0x04C0
	opNEG  = 0x0500
	opINV  = 0x0540
	opINC  = 0x0580
	opINCT = 0x05C0
	opDEC  = 0x0600
	opDECT = 0x0640
	opBL   = 0x0680
	opSWPB = 0x06C0
	opSETO = 0x0700
	opABS  = 0x0740
)

// Shift format: opcode(8) | count(4) | reg(4).
const shiftMask = 0xFF00

const (
	opSRA = 0x0800
	opSRL = 0x0900
	opSLA = 0x0A00
	opSRC = 0x0B00
)

// Jump/CRU-single-bit format: opcode(8) | signed displacement/offset(8).
const jumpMask = 0xFF00

const (
	opJMP = 0x1000
	opJLT = 0x1100
	opJLE = 0x1200
	opJEQ = 0x1300
	opJHE = 0x1400
	opJGT = 0x1500
	opJNE = 0x1600
	opJNC = 0x1700
	opJOC = 0x1800
	opJNO = 0x1900
	opJL  = 0x1A00
	opJH  = 0x1B00
	opJOP = 0x1C00
	opSBO = 0x1D00
	opSBZ = 0x1E00
	opTB  = 0x1F00
)

// Dual-operand-1 format: opcode(6) | reg(4 -- count or dest reg) | Ts(2) S(4).
const dual1Mask = 0xFC00

const (
	opCOC  = 0x2000
	opCZC  = 0x2400
	opXOR  = 0x2800
	opXOP  = 0x2C00
	opLDCR = 0x3000
	opSTCR = 0x3400
	opMPY  = 0x3800
	opDIV  = 0x3C00
)

// Dual-operand-2 (general) format: opcode(4) | Td(2) D(4) | Ts(2) S(4).
const dual2Mask = 0xF000

const (
	opSZC  = 0x4000
	opSZCB = 0x5000
	opS    = 0x6000
	opSB   = 0x7000
	opC    = 0x8000
	opCB   = 0x9000
	opA    = 0xA000
	opAB   = 0xB000
	opMOV  = 0xC000
	opMOVB = 0xD000
	opSOC  = 0xE000
	opSOCB = 0xF000
)

// formatOf classifies an opcode by its top 6 bits, mirroring the
// hardware's 64-entry dispatch table.
func formatOf(opcode uint16) format {
	switch top := opcode >> 10; {
	case top == 0:
		return fmtImmed
	case top == 1:
		return fmtSingle
	case top == 2 || top == 3:
		return fmtShift
	case top >= 4 && top <= 7:
		return fmtJump
	case top >= 8 && top <= 15:
		return fmtDual1
	default:
		return fmtDual2
	}
}

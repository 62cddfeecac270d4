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

import (
	"testing"

	"github.com/mburkley/mltt-sub000/test"
)

// flatMemory is a 64KiB byte-addressable bus.Memory, enough to drive the
// interpreter without any of the console's address decoding.
type flatMemory struct {
	mem [0x10000]byte
}

func (m *flatMemory) ReadW(addr uint16) (uint16, error) {
	addr &^= 1
	return uint16(m.mem[addr])<<8 | uint16(m.mem[addr+1]), nil
}

func (m *flatMemory) WriteW(addr uint16, v uint16) error {
	addr &^= 1
	m.mem[addr] = uint8(v >> 8)
	m.mem[addr+1] = uint8(v)
	return nil
}

func (m *flatMemory) ReadB(addr uint16) (uint8, error) { return m.mem[addr], nil }

func (m *flatMemory) WriteB(addr uint16, v uint8) error {
	m.mem[addr] = v
	return nil
}

// fakeCRU is an in-memory CRU fabric standing in for hardware/cru.Fabric,
// enough to round-trip LDCR/STCR bit fields.
type fakeCRU struct {
	bits map[int]bool
}

func newFakeCRU() *fakeCRU { return &fakeCRU{bits: make(map[int]bool)} }

func (c *fakeCRU) Output(base uint16, offset int8, state bool) {
	c.bits[int(base)+int(offset)] = state
}

func (c *fakeCRU) Get(base uint16, offset int8) bool {
	return c.bits[int(base)+int(offset)]
}

func (c *fakeCRU) MultiSet(base uint16, data uint16, n int) {
	for i := 0; i < n; i++ {
		c.bits[int(base)+i] = data&(1<<uint(i)) != 0
	}
}

func (c *fakeCRU) MultiGet(base uint16, n int) uint16 {
	var v uint16
	for i := 0; i < n; i++ {
		if c.bits[int(base)+i] {
			v |= 1 << uint(i)
		}
	}
	return v
}

const (
	testWP = 0x2000 // workspace base used by every test in this file
	testPC = 0x4000 // program base
)

func newTestCPU() (*CPU, *flatMemory) {
	mem := &flatMemory{}
	c := New(mem, newFakeCRU(), nil, nil, nil)
	c.WP = testWP
	c.PC = testPC
	return c, mem
}

// regMode encodes a general-register operand in register addressing
// mode (Ts=0), the mode every test below uses to keep instruction words
// simple.
func regMode(r uint8) uint16 { return uint16(r) }

func TestShiftRightArithmeticSetsCarryFromLastBitShiftedOut(t *testing.T) {
	c, mem := newTestCPU()

	test.ExpectSuccess(t, c.SetR(1, 0x0003)) // ...011, one shift leaves carry set
	mem.WriteW(testPC, opSRA|1<<4|1)

	test.ExpectSuccess(t, c.Step())

	v, err := c.R(1)
	test.ExpectSuccess(t, err)
	test.Equate(t, v, uint16(0x0001))
	test.Equate(t, c.ST.C(), true)
}

func TestShiftRightArithmeticPreservesSignOnNegativeOperand(t *testing.T) {
	c, mem := newTestCPU()

	test.ExpectSuccess(t, c.SetR(2, 0x8000)) // sign bit set
	mem.WriteW(testPC, opSRA|1<<4|2)

	test.ExpectSuccess(t, c.Step())

	v, err := c.R(2)
	test.ExpectSuccess(t, err)
	test.Equate(t, v, uint16(0xC000)) // arithmetic shift replicates the sign bit
	test.Equate(t, c.ST.AGT(), false)
}

func TestMoveSetsEqualAndGreaterThanFlagsAgainstZero(t *testing.T) {
	c, mem := newTestCPU()

	test.ExpectSuccess(t, c.SetR(3, 0xFFFF)) // -1: AGT false, LGT true (unsigned)
	mem.WriteW(testPC, opMOV|regMode(4)<<6|regMode(3))

	test.ExpectSuccess(t, c.Step())

	v, err := c.R(4)
	test.ExpectSuccess(t, err)
	test.Equate(t, v, uint16(0xFFFF))
	test.Equate(t, c.ST.EQ(), false)
	test.Equate(t, c.ST.LGT(), true)
	test.Equate(t, c.ST.AGT(), false)

	test.ExpectSuccess(t, c.SetR(3, 0x0000))
	c.PC = testPC
	mem.WriteW(testPC, opMOV|regMode(4)<<6|regMode(3))
	test.ExpectSuccess(t, c.Step())
	test.Equate(t, c.ST.EQ(), true)
	test.Equate(t, c.ST.LGT(), false)
	test.Equate(t, c.ST.AGT(), false)
}

func TestCompareSetsLGTAndAGTFromSourceAndDestination(t *testing.T) {
	c, mem := newTestCPU()

	test.ExpectSuccess(t, c.SetR(1, 5))
	test.ExpectSuccess(t, c.SetR(2, 3))
	mem.WriteW(testPC, opC|regMode(2)<<6|regMode(1))

	test.ExpectSuccess(t, c.Step())

	test.Equate(t, c.ST.EQ(), false)
	test.Equate(t, c.ST.LGT(), true) // 5 > 3 unsigned
	test.Equate(t, c.ST.AGT(), true) // 5 > 3 signed
}

// TestStatusCarryInvertedOnSubtract exercises the TMS9900's inverted
// carry convention: DEC sets carry when the subtraction needed no
// borrow, and clears it when one occurred.
func TestStatusCarryInvertedOnSubtract(t *testing.T) {
	c, mem := newTestCPU()

	test.ExpectSuccess(t, c.SetR(5, 0x0005))
	mem.WriteW(testPC, opDEC|regMode(5))

	test.ExpectSuccess(t, c.Step())

	v, err := c.R(5)
	test.ExpectSuccess(t, err)
	test.Equate(t, v, uint16(0x0004))
	test.Equate(t, c.ST.C(), true) // no borrow: 5-1 didn't underflow

	c.PC = testPC
	test.ExpectSuccess(t, c.SetR(6, 0x0000))
	mem.WriteW(testPC, opDEC|regMode(6))
	test.ExpectSuccess(t, c.Step())

	v, err = c.R(6)
	test.ExpectSuccess(t, err)
	test.Equate(t, v, uint16(0xFFFF))
	test.Equate(t, c.ST.C(), false) // 0-1 borrowed, the no-borrow flag clears
}

func TestLDCRSTCRRoundTripThroughCRU(t *testing.T) {
	c, mem := newTestCPU()

	// An 8-bit-or-fewer LDCR/STCR addresses a register operand by its
	// most significant byte, the TMS9900's usual byte-operand convention.
	test.ExpectSuccess(t, c.SetR(12, 0x0100)) // CRU base word pointer, becomes bit base 0x80
	test.ExpectSuccess(t, c.SetR(1, 0xAB00))
	mem.WriteW(testPC, opLDCR|8<<6|regMode(1))
	test.ExpectSuccess(t, c.Step())

	c.PC = testPC + 2
	test.ExpectSuccess(t, c.SetR(2, 0))
	mem.WriteW(c.PC, opSTCR|8<<6|regMode(2))
	test.ExpectSuccess(t, c.Step())

	v, err := c.R(2)
	test.ExpectSuccess(t, err)
	test.Equate(t, v, uint16(0xAB00))
}

func TestBLWPRTWPPreservesCallerContext(t *testing.T) {
	c, mem := newTestCPU()

	const vector = 0x0100
	const newWorkspace = 0x3000
	const newEntry = 0x5000

	mem.WriteW(vector, newWorkspace)
	mem.WriteW(vector+2, newEntry)

	test.ExpectSuccess(t, c.SetR(0, vector))
	// Register-indirect (Ts=1) on R0: the operand address is the value
	// already in R0, so this BLWP vectors through the word pair just
	// written above.
	mem.WriteW(testPC, opBLWP|0x10)

	oldWP, oldPC := c.WP, c.PC+2

	test.ExpectSuccess(t, c.Step())

	test.Equate(t, c.WP, uint16(newWorkspace))
	test.Equate(t, c.PC, uint16(newEntry))

	savedWP, err := mem.ReadW(newWorkspace + 26)
	test.ExpectSuccess(t, err)
	savedPC, err := mem.ReadW(newWorkspace + 28)
	test.ExpectSuccess(t, err)
	test.Equate(t, savedWP, oldWP)
	test.Equate(t, savedPC, oldPC)

	mem.WriteW(c.PC, opRTWP)
	test.ExpectSuccess(t, c.Step())

	test.Equate(t, c.WP, oldWP)
	test.Equate(t, c.PC, oldPC)
}

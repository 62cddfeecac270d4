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

// Package cpu implements the TMS9900 instruction interpreter: the
// decoder, the addressing modes, status-flag semantics, the BLWP/RTWP
// context-switch primitives, and masked interrupt dispatch. The CPU owns
// no memory of its own; general registers are the 16 words living at WP
// in whatever bus.Memory it is given, exactly as on real hardware.
package cpu

import (
	"sync/atomic"

	xerrors "github.com/mburkley/mltt-sub000/errors"
	"github.com/mburkley/mltt-sub000/hardware/memory/bus"
	"github.com/mburkley/mltt-sub000/logger"
)

// CRU is the subset of the CRU fabric the instruction set can reach:
// SBO/SBZ/TB and LDCR/STCR.
type CRU interface {
	Output(base uint16, offset int8, state bool)
	Get(base uint16, offset int8) bool
	MultiSet(base uint16, data uint16, n int)
	MultiGet(base uint16, n int) uint16
}

// Interrupts is polled once per instruction boundary. PendingLevel
// returns the highest-priority currently asserted interrupt level, or 0
// if none is pending.
type Interrupts interface {
	PendingLevel() int
}

// RunFlag is the process-wide cancellation flag: cleared to stop the
// interpreter loop at the next instruction boundary.
type RunFlag struct {
	running atomic.Bool
}

// NewRunFlag creates a RunFlag that starts in the running state.
func NewRunFlag() *RunFlag {
	r := &RunFlag{}
	r.running.Store(true)
	return r
}

// Stop clears the flag.
func (r *RunFlag) Stop() { r.running.Store(false) }

// Start sets the flag.
func (r *RunFlag) Start() { r.running.Store(true) }

// Running reports the current state.
func (r *RunFlag) Running() bool { return r.running.Load() }

// CPU is the TMS9900 interpreter.
type CPU struct {
	PC registers16
	WP registers16
	ST Status

	mem        bus.Memory
	cru        CRU
	interrupts Interrupts
	run        *RunFlag
	log        *logger.Log
}

// registers16 is a plain alias of uint16; the type itself does not keep
// PC/WP even. The context-switch paths that load them through setEven
// mask the low bit.
type registers16 = uint16

// New creates a CPU wired to the given memory, CRU fabric and interrupt
// source. log may be nil.
func New(mem bus.Memory, cru CRU, interrupts Interrupts, run *RunFlag, log *logger.Log) *CPU {
	return &CPU{mem: mem, cru: cru, interrupts: interrupts, run: run, log: log}
}

// Reset performs the power-on/reset context switch: BLWP @0.
func (c *CPU) Reset() error {
	c.ST = 0
	return c.blwpAbs(0)
}

// R returns the current value of general register n.
func (c *CPU) R(n uint8) (uint16, error) {
	return c.mem.ReadW(c.regAddr(n))
}

// SetR sets general register n.
func (c *CPU) SetR(n uint8, v uint16) error {
	return c.mem.WriteW(c.regAddr(n), v)
}

func setEven(v uint16) uint16 { return v &^ 1 }

// blwpAbs performs BLWP against an absolute vector address (used both by
// the BLWP instruction and by interrupt/reset entry).
func (c *CPU) blwpAbs(vector uint16) error {
	newWP, err := c.mem.ReadW(vector)
	if err != nil {
		return err
	}
	newPC, err := c.mem.ReadW(vector + 2)
	if err != nil {
		return err
	}
	oldWP, oldPC, oldST := c.WP, c.PC, uint16(c.ST)

	newWP = setEven(newWP)
	if err := c.mem.WriteW(newWP+26, oldWP); err != nil { // R13
		return err
	}
	if err := c.mem.WriteW(newWP+28, oldPC); err != nil { // R14
		return err
	}
	if err := c.mem.WriteW(newWP+30, oldST); err != nil { // R15
		return err
	}
	c.WP = newWP
	c.PC = setEven(newPC)
	return nil
}

// rtwp reverses a BLWP: WP/PC/ST are restored from R13/R14/R15 of the
// workspace about to be left.
func (c *CPU) rtwp() error {
	r13, err := c.mem.ReadW(c.WP + 26)
	if err != nil {
		return err
	}
	r14, err := c.mem.ReadW(c.WP + 28)
	if err != nil {
		return err
	}
	r15, err := c.mem.ReadW(c.WP + 30)
	if err != nil {
		return err
	}
	c.ST = Status(r15)
	c.PC = setEven(r14)
	c.WP = setEven(r13)
	return nil
}

// interruptEnter vectors to 4*level and sets the mask to max(level-1,0).
func (c *CPU) interruptEnter(level int) error {
	if err := c.blwpAbs(uint16(4 * level)); err != nil {
		return err
	}
	newMask := level - 1
	if newMask < 0 {
		newMask = 0
	}
	c.ST.SetMask(uint8(newMask))
	return nil
}

// Step fetches, decodes, and executes exactly one instruction, then
// polls for a pending interrupt at the resulting instruction boundary.
// It returns an error only for genuinely fatal conditions (unmapped
// memory, an undefined opcode): these propagate to Machine.Halt.
func (c *CPU) Step() error {
	if c.run != nil && !c.run.Running() {
		return nil
	}

	opcode, err := c.fetchWord()
	if err != nil {
		return err
	}

	if err := c.execute(opcode); err != nil {
		return err
	}

	if c.interrupts != nil {
		if level := c.interrupts.PendingLevel(); level > 0 && level <= int(c.ST.Mask()) {
			if err := c.interruptEnter(level); err != nil {
				return err
			}
		}
	}
	return nil
}

// Run executes instructions until the run flag is cleared or an error
// occurs.
func (c *CPU) Run() error {
	for c.run == nil || c.run.Running() {
		if err := c.Step(); err != nil {
			return err
		}
	}
	return nil
}

func (c *CPU) execute(opcode uint16) error {
	switch formatOf(opcode) {
	case fmtImmed:
		return c.execImmed(opcode)
	case fmtSingle:
		return c.execSingle(opcode)
	case fmtShift:
		return c.execShift(opcode)
	case fmtJump:
		return c.execJump(opcode)
	case fmtDual1:
		return c.execDual1(opcode)
	case fmtDual2:
		return c.execDual2(opcode)
	default:
		return xerrors.Errorf(xerrors.UndefinedOpcode, opcode, c.PC-2)
	}
}

func (c *CPU) logf(tag, format string, args ...interface{}) {
	if c.log != nil {
		c.log.Logf(logger.Allow, tag, format, args...)
	}
}

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

package debugger_test

import (
	"testing"

	"github.com/mburkley/mltt-sub000/debugger"
	"github.com/mburkley/mltt-sub000/test"
)

type fakeRegs struct {
	pc, wp, st uint16
	r          [16]uint16
}

func (f fakeRegs) PC() uint16               { return f.pc }
func (f fakeRegs) WP() uint16               { return f.wp }
func (f fakeRegs) ST() uint16               { return f.st }
func (f fakeRegs) R(n uint8) (uint16, error) { return f.r[n], nil }

func TestCommandTableSetsBreakpoint(t *testing.T) {
	bp := debugger.NewBreakpoints()
	w := debugger.NewWatches(func(uint16) (uint8, error) { return 0, nil })
	c := debugger.NewConditions()
	table := debugger.NewTable(fakeRegs{}, bp, w, c)

	_, err := table.Dispatch("break", []string{"0x8300"})
	test.ExpectSuccess(t, err)
	test.Equate(t, bp.Hit(0x8300), true)
}

func TestCommandTableRejectsUnknownCommand(t *testing.T) {
	bp := debugger.NewBreakpoints()
	w := debugger.NewWatches(func(uint16) (uint8, error) { return 0, nil })
	c := debugger.NewConditions()
	table := debugger.NewTable(fakeRegs{}, bp, w, c)

	_, err := table.Dispatch("nonexistent", nil)
	test.ExpectFailure(t, err)
}

func TestCommandTableRejectsWrongArgCount(t *testing.T) {
	bp := debugger.NewBreakpoints()
	w := debugger.NewWatches(func(uint16) (uint8, error) { return 0, nil })
	c := debugger.NewConditions()
	table := debugger.NewTable(fakeRegs{}, bp, w, c)

	_, err := table.Dispatch("break", nil)
	test.ExpectFailure(t, err)
}

func TestStatusSnapshotReportsRegistersAndFlags(t *testing.T) {
	regs := fakeRegs{pc: 0x6000, wp: 0x8300, st: 0x9000}
	bp := debugger.NewBreakpoints()
	bp.Set(0x6000)
	w := debugger.NewWatches(func(uint16) (uint8, error) { return 0, nil })
	c := debugger.NewConditions()

	s, err := debugger.Snapshot(regs, bp, w, c)
	test.ExpectSuccess(t, err)
	test.Equate(t, s.PC, uint16(0x6000))
	test.Equate(t, s.Flags.LGT, true)
	test.Equate(t, len(s.Breakpoints), 1)
}

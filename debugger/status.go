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

package debugger

// RegisterSource is the subset of CPU state a status snapshot reads.
// Defined here rather than importing hardware/cpu so this package stays
// usable against a fake in tests, the same reasoning behind PeekFunc.
type RegisterSource interface {
	PC() uint16
	WP() uint16
	ST() uint16
	R(n uint8) (uint16, error)
}

// Flags decodes the individual bits of a status word for display,
// independent of hardware/cpu's own Status type.
type Flags struct {
	LGT, AGT, EQ, C, OV, OP, XOP bool
	Mask                         uint8
}

func decodeFlags(st uint16) Flags {
	return Flags{
		LGT:  st&(1<<15) != 0,
		AGT:  st&(1<<14) != 0,
		EQ:   st&(1<<13) != 0,
		C:    st&(1<<12) != 0,
		OV:   st&(1<<11) != 0,
		OP:   st&(1<<10) != 0,
		XOP:  st&(1<<9) != 0,
		Mask: uint8(st & 0x000F),
	}
}

// Status is a point-in-time snapshot of machine state for display or
// scripted inspection: registers, flags, and the debugger's own
// breakpoint/watch/condition tables. Grounded on the original debugger's
// status.c, which assembled the same kind of snapshot from the live CPU
// and the watch list kept in std1/watch.c, but built here as a plain
// value rather than printed directly, since the terminal rendering it
// fed is the out-of-scope CLI front end.
type Status struct {
	PC    uint16
	WP    uint16
	ST    uint16
	Flags Flags
	R     [16]uint16

	Breakpoints []uint16
	Watches     []Change
	Conditions  []string
}

// Snapshot reads regs and, if non-nil, polls bp/w/c to build a complete
// Status. Any of bp, w, c may be nil to omit that section.
func Snapshot(regs RegisterSource, bp *Breakpoints, w *Watches, c *Conditions) (Status, error) {
	s := Status{
		PC: regs.PC(),
		WP: regs.WP(),
		ST: regs.ST(),
	}
	s.Flags = decodeFlags(s.ST)

	for n := uint8(0); n < 16; n++ {
		v, err := regs.R(n)
		if err != nil {
			return Status{}, err
		}
		s.R[n] = v
	}

	if bp != nil {
		s.Breakpoints = bp.List()
	}
	if w != nil {
		changes, err := w.Check()
		if err != nil {
			return Status{}, err
		}
		s.Watches = changes
	}
	if c != nil {
		s.Conditions = c.CheckAll()
	}
	return s, nil
}

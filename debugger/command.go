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

import (
	"strconv"
	"strings"

	xerrors "github.com/mburkley/mltt-sub000/errors"
)

// Command is one entry of the debugger's command table: a name, its
// argument count, and the handler that performs it. This mirrors how
// the original debugger dispatched a parsed command line to a C
// function pointer, but stops short of owning a REPL -- reading a line
// from a terminal and splitting it into argv is a front-end concern.
type Command struct {
	Name    string
	Args    int
	Summary string
	Run     func(args []string) (string, error)
}

// Table is an ordered, named set of Commands, looked up by name for
// dispatch and walked in order for a help listing.
type Table struct {
	order []string
	byName map[string]Command
}

// NewTable builds a Table wired to the given Breakpoints, Watches and
// Conditions, exposing the handful of operations a front end needs:
// setting/clearing breakpoints, adding/removing watches, arming/disarming
// conditions, and printing a status line. No command lists the current
// breakpoints or watches.
func NewTable(regs RegisterSource, bp *Breakpoints, w *Watches, c *Conditions) *Table {
	t := &Table{byName: make(map[string]Command)}

	t.add(Command{
		Name: "break", Args: 1, Summary: "set a breakpoint at a hex address",
		Run: func(args []string) (string, error) {
			addr, err := parseHexWord(args[0])
			if err != nil {
				return "", err
			}
			bp.Set(addr)
			return "", nil
		},
	})
	t.add(Command{
		Name: "clear", Args: 1, Summary: "clear a breakpoint at a hex address",
		Run: func(args []string) (string, error) {
			addr, err := parseHexWord(args[0])
			if err != nil {
				return "", err
			}
			bp.Clear(addr)
			return "", nil
		},
	})
	t.add(Command{
		Name: "watch", Args: 1, Summary: "watch a hex memory address",
		Run: func(args []string) (string, error) {
			addr, err := parseHexWord(args[0])
			if err != nil {
				return "", err
			}
			w.Add(addr)
			return "", nil
		},
	})
	t.add(Command{
		Name: "unwatch", Args: 1, Summary: "stop watching a hex memory address",
		Run: func(args []string) (string, error) {
			addr, err := parseHexWord(args[0])
			if err != nil {
				return "", err
			}
			w.Remove(addr)
			return "", nil
		},
	})
	t.add(Command{
		Name: "arm", Args: 1, Summary: "arm a named condition",
		Run: func(args []string) (string, error) {
			c.Arm(args[0])
			return "", nil
		},
	})
	t.add(Command{
		Name: "disarm", Args: 1, Summary: "disarm a named condition",
		Run: func(args []string) (string, error) {
			c.Disarm(args[0])
			return "", nil
		},
	})
	t.add(Command{
		Name: "status", Args: 0, Summary: "print PC, WP and ST",
		Run: func(args []string) (string, error) {
			s, err := Snapshot(regs, bp, w, c)
			if err != nil {
				return "", err
			}
			return formatStatus(s), nil
		},
	})

	return t
}

func (t *Table) add(cmd Command) {
	t.order = append(t.order, cmd.Name)
	t.byName[cmd.Name] = cmd
}

// Lookup finds a command by name.
func (t *Table) Lookup(name string) (Command, bool) {
	cmd, ok := t.byName[name]
	return cmd, ok
}

// Names returns every command name in registration order, for a help
// listing.
func (t *Table) Names() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Dispatch looks up name and runs it against args, checking the
// registered argument count first.
func (t *Table) Dispatch(name string, args []string) (string, error) {
	cmd, ok := t.byName[name]
	if !ok {
		return "", xerrors.Errorf(xerrors.DebuggerUnknownCommand, name)
	}
	if len(args) != cmd.Args {
		return "", xerrors.Errorf(xerrors.DebuggerBadArgCount, name, cmd.Args, len(args))
	}
	return cmd.Run(args)
}

func parseHexWord(s string) (uint16, error) {
	v, err := strconv.ParseUint(strings.TrimPrefix(s, "0x"), 16, 16)
	if err != nil {
		return 0, xerrors.Errorf(xerrors.DebuggerBadArgument, s)
	}
	return uint16(v), nil
}

func formatStatus(s Status) string {
	var b strings.Builder
	b.WriteString("PC=" + strconv.FormatUint(uint64(s.PC), 16))
	b.WriteString(" WP=" + strconv.FormatUint(uint64(s.WP), 16))
	b.WriteString(" ST=" + strconv.FormatUint(uint64(s.ST), 16))
	return b.String()
}

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

// PeekFunc reads one byte without side effects, matching
// bus.DebuggerBus.Peek so Watches can be driven by the real memory map
// or a fake in tests.
type PeekFunc func(addr uint16) (uint8, error)

// watchEntry remembers the last observed value at an address so Check
// can report only transitions, not every poll.
type watchEntry struct {
	addr uint16
	last uint8
	have bool
}

// Watches tracks a set of memory addresses and reports which changed
// value since the last Check.
type Watches struct {
	peek    PeekFunc
	entries map[uint16]*watchEntry
}

// NewWatches creates a watch set reading through peek.
func NewWatches(peek PeekFunc) *Watches {
	return &Watches{peek: peek, entries: make(map[uint16]*watchEntry)}
}

// Add starts watching addr.
func (w *Watches) Add(addr uint16) {
	w.entries[addr] = &watchEntry{addr: addr}
}

// Remove stops watching addr.
func (w *Watches) Remove(addr uint16) { delete(w.entries, addr) }

// Change describes one watchpoint transition detected by Check.
type Change struct {
	Addr     uint16
	Previous uint8
	Current  uint8
}

// Check polls every watched address and returns the ones whose value
// has changed since the previous Check. Add does not read the address,
// so the first Check after Add only records a baseline for it and
// reports no change.
func (w *Watches) Check() ([]Change, error) {
	var changes []Change
	for _, e := range w.entries {
		v, err := w.peek(e.addr)
		if err != nil {
			return nil, err
		}
		if e.have && v != e.last {
			changes = append(changes, Change{Addr: e.addr, Previous: e.last, Current: v})
		}
		e.last = v
		e.have = true
	}
	return changes, nil
}

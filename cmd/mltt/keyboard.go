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

package main

import (
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/pkg/term/termios"
)

// keyCell names a key by its position in the console's 8x8 scan matrix.
type keyCell struct{ row, col int }

// asciiToCell maps a handful of printable keys to their matrix cell. It
// is not a complete layout -- reproducing every shift/function-key
// combination of the physical keyboard from single-byte terminal input
// is out of scope -- but it is enough to type BASIC commands during an
// interactive session.
var asciiToCell = map[byte]keyCell{
	'1': {3, 0}, '2': {3, 1}, '3': {3, 2}, '4': {3, 3},
	'q': {4, 0}, 'w': {4, 1}, 'e': {4, 2}, 'r': {4, 3},
	'a': {5, 0}, 's': {5, 1}, 'd': {5, 2}, 'f': {5, 3},
	'z': {6, 0}, 'x': {6, 1}, 'c': {6, 2}, 'v': {6, 3},
	' ': {7, 0}, '\r': {7, 1}, '\n': {7, 1},
}

// terminalKeys is a hardware/input.KeySource backed by a raw-mode
// terminal. A terminal has no key-release event, so each keypress is
// latched "down" for a short window rather than tracked continuously;
// that is the one respect in which this differs from a real matrix scan.
type terminalKeys struct {
	fd       uintptr
	original syscall.Termios

	mu       sync.Mutex
	lastCell keyCell
	lastAt   time.Time
}

const keyLatchWindow = 80 * time.Millisecond

// newTerminalKeys puts fd into cbreak mode (byte-at-a-time, no local
// echo requirements beyond what cbreak already relaxes) and starts a
// reader goroutine feeding the latch. Restore must be called to return
// the terminal to its original mode.
func newTerminalKeys(f *os.File) (*terminalKeys, func(), error) {
	fd := f.Fd()

	var original syscall.Termios
	if err := termios.Tcgetattr(fd, &original); err != nil {
		return nil, func() {}, err
	}

	cbreak := original
	termios.Cfmakecbreak(&cbreak)
	if err := termios.Tcsetattr(fd, termios.TCIFLUSH, &cbreak); err != nil {
		return nil, func() {}, err
	}

	tk := &terminalKeys{fd: fd, original: original}
	restore := func() {
		termios.Tcsetattr(fd, termios.TCIFLUSH, &tk.original)
	}

	go tk.readLoop(f)

	return tk, restore, nil
}

func (tk *terminalKeys) readLoop(f *os.File) {
	buf := make([]byte, 1)
	for {
		n, err := f.Read(buf)
		if err != nil {
			return
		}
		if n == 0 {
			continue
		}
		if cell, ok := asciiToCell[buf[0]]; ok {
			tk.mu.Lock()
			tk.lastCell = cell
			tk.lastAt = time.Now()
			tk.mu.Unlock()
		}
	}
}

// Down implements hardware/input.KeySource.
func (tk *terminalKeys) Down(row, col int) bool {
	tk.mu.Lock()
	defer tk.mu.Unlock()
	return tk.lastCell.row == row && tk.lastCell.col == col && time.Since(tk.lastAt) < keyLatchWindow
}

// AlphaLock implements hardware/input.KeySource. A terminal front end has
// no dedicated alpha-lock LED key, so this always reports unlocked.
func (tk *terminalKeys) AlphaLock() bool { return false }

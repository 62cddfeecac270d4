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

// Package logger implements a small, bounded, central logger. Components
// log through it rather than to stdout directly so that a host (CLI,
// debugger, test) can decide when and how much of the log to surface.
package logger

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// Permission is consulted before a log entry is recorded. This lets a
// caller gate logging (for example a debug build flag) without every
// call site needing to check it first.
type Permission interface {
	AllowLogging() bool
}

// Allow is a Permission that always allows logging.
var Allow = alwaysAllow{}

type alwaysAllow struct{}

func (alwaysAllow) AllowLogging() bool { return true }

type entry struct {
	tag    string
	detail string
}

func (e entry) String() string {
	return fmt.Sprintf("%s: %s", e.tag, e.detail)
}

// Log is a ring buffer of log entries shared by every component that is
// handed a reference to it.
type Log struct {
	crit sync.Mutex
	buf  []entry
	cap  int
	next int
	full bool
}

// NewLogger creates a Log with room for capacity entries. Once full,
// the oldest entry is overwritten.
func NewLogger(capacity int) *Log {
	return &Log{buf: make([]entry, capacity), cap: capacity}
}

func stringify(detail interface{}) string {
	switch v := detail.(type) {
	case error:
		return v.Error()
	case fmt.Stringer:
		return v.String()
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Log records an entry if perm allows it.
func (l *Log) Log(perm Permission, tag string, detail interface{}) {
	if l == nil || perm == nil || !perm.AllowLogging() {
		return
	}
	l.append(tag, stringify(detail))
}

// Logf records a formatted entry if perm allows it.
func (l *Log) Logf(perm Permission, tag string, format string, args ...interface{}) {
	if l == nil || perm == nil || !perm.AllowLogging() {
		return
	}
	l.append(tag, fmt.Sprintf(format, args...))
}

func (l *Log) append(tag, detail string) {
	l.crit.Lock()
	defer l.crit.Unlock()

	if l.cap == 0 {
		return
	}
	l.buf[l.next] = entry{tag: tag, detail: detail}
	l.next++
	if l.next >= l.cap {
		l.next = 0
		l.full = true
	}
}

// Clear empties the log.
func (l *Log) Clear() {
	l.crit.Lock()
	defer l.crit.Unlock()
	l.next = 0
	l.full = false
}

// ordered returns entries oldest-first.
func (l *Log) ordered() []entry {
	if !l.full {
		out := make([]entry, l.next)
		copy(out, l.buf[:l.next])
		return out
	}
	out := make([]entry, l.cap)
	copy(out, l.buf[l.next:])
	copy(out[l.cap-l.next:], l.buf[:l.next])
	return out
}

// Write writes every entry currently in the log to w, oldest first.
func (l *Log) Write(w io.Writer) {
	l.crit.Lock()
	entries := l.ordered()
	l.crit.Unlock()

	var b strings.Builder
	for _, e := range entries {
		b.WriteString(e.String())
		b.WriteByte('\n')
	}
	io.WriteString(w, b.String())
}

// Tail writes up to the last n entries to w, oldest-of-the-tail first.
func (l *Log) Tail(w io.Writer, n int) {
	l.crit.Lock()
	entries := l.ordered()
	l.crit.Unlock()

	if n > len(entries) {
		n = len(entries)
	}
	entries = entries[len(entries)-n:]

	var b strings.Builder
	for _, e := range entries {
		b.WriteString(e.String())
		b.WriteByte('\n')
	}
	io.WriteString(w, b.String())
}

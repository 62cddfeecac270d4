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

// Package test collects small helpers shared by the emulator's own test
// suites, in place of a third-party assertion library.
package test

import (
	"fmt"
	"reflect"
	"testing"
)

// Equate fails the test if got and want are not equal, as judged by
// reflect.DeepEqual.
func Equate(t *testing.T, got, want interface{}) {
	t.Helper()
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v (%T), want %v (%T)", got, got, want, want)
	}
}

// ExpectEquality is an alias of Equate, matching the name used by some of
// the emulator's older tests.
func ExpectEquality(t *testing.T, got, want interface{}) {
	t.Helper()
	Equate(t, got, want)
}

// ExpectFailure fails the test unless err is non-nil.
func ExpectFailure(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Errorf("expected an error, got nil")
	}
}

// ExpectSuccess fails the test if err is non-nil.
func ExpectSuccess(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// Panics runs f and fails the test if f does not panic.
func Panics(t *testing.T, f func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("expected a panic")
		}
	}()
	f()
}

// CappedWriter is an io.Writer that discards bytes once its buffer has
// reached capacity, bounding an output buffer without an unbounded
// allocation.
type CappedWriter struct {
	buf []byte
	cap int
}

// NewCappedWriter creates a CappedWriter with the given capacity.
func NewCappedWriter(capacity int) (*CappedWriter, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("capacity must be positive")
	}
	return &CappedWriter{cap: capacity}, nil
}

func (c *CappedWriter) Write(p []byte) (int, error) {
	room := c.cap - len(c.buf)
	if room <= 0 {
		return len(p), nil
	}
	if room > len(p) {
		room = len(p)
	}
	c.buf = append(c.buf, p[:room]...)
	return len(p), nil
}

// String returns the buffered content so far.
func (c *CappedWriter) String() string {
	return string(c.buf)
}

// Reset empties the buffer.
func (c *CappedWriter) Reset() {
	c.buf = c.buf[:0]
}

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

// Package errors provides curated, parameterised errors for the emulator
// core. Components raise a curated error rather than formatting ad-hoc
// strings so that callers can match on the message category with Is()
// regardless of the parameters baked into a particular instance.
package errors

import (
	"fmt"
	"strings"
)

// Values is the type used to specify arguments for a curated error.
type Values []interface{}

// curated is an error built from a canonical message template and a set
// of values to be interpolated into it with fmt.Errorf verbs.
type curated struct {
	message string
	values  Values
}

// Errorf creates a new curated error from a message template (a constant
// from categories.go, typically) and the values to format into it.
func Errorf(message string, values ...interface{}) error {
	return curated{message: message, values: values}
}

// Error implements the error interface. Adjacent duplicate message parts
// (which happen often when a curated error wraps another curated error of
// the same category) are de-duplicated.
func (e curated) Error() string {
	s := fmt.Errorf(e.message, e.values...).Error()

	p := strings.SplitN(s, ": ", 3)
	if len(p) > 1 && p[0] == p[1] {
		return strings.Join(p[1:], ": ")
	}
	return strings.Join(p, ": ")
}

// Is reports whether err is a curated error of the given category, as
// named by the template string.
func Is(err error, category string) bool {
	e, ok := err.(curated)
	if !ok {
		return false
	}
	return e.message == category
}

// IsAny reports whether err is a curated error of any category.
func IsAny(err error) bool {
	_, ok := err.(curated)
	return ok
}

// Head returns the leading message template of a curated error, or the
// plain Error() string for any other error.
func Head(err error) string {
	if e, ok := err.(curated); ok {
		return e.message
	}
	return err.Error()
}

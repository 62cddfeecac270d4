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

package basic_test

import (
	"testing"

	"github.com/mburkley/mltt-sub000/basic"
	"github.com/mburkley/mltt-sub000/test"
)

func TestTokenizeDetokenizeRoundTrip(t *testing.T) {
	src := `PRINT "HELLO" X`

	tok, err := basic.TokenizeLine(src)
	test.ExpectSuccess(t, err)

	got, err := basic.DetokenizeLine(tok)
	test.ExpectSuccess(t, err)
	test.Equate(t, got, src)
}

func TestTokenizeNumberLiteral(t *testing.T) {
	tok, err := basic.TokenizeLine("LET X = 42")
	test.ExpectSuccess(t, err)

	got, err := basic.DetokenizeLine(tok)
	test.ExpectSuccess(t, err)
	test.Equate(t, got, "LET X = 42")
}

func TestDetokenizeRejectsTruncatedString(t *testing.T) {
	_, err := basic.DetokenizeLine([]byte{basic.TokString, 0x05, 'h', 'i'})
	test.ExpectFailure(t, err)
}

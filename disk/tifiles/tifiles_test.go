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

package tifiles_test

import (
	"bytes"
	"testing"

	"github.com/mburkley/mltt-sub000/disk/tifiles"
	"github.com/mburkley/mltt-sub000/test"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	h := tifiles.Header{Name: "GAME", Flags: 0x00, RecordLen: 0, TotalSecs: 4}
	data := bytes.Repeat([]byte{0x5A}, 4*256)

	blob := tifiles.Encode(h, data)
	gotHeader, gotData, err := tifiles.Decode(blob)

	test.ExpectSuccess(t, err)
	test.Equate(t, gotHeader.Name, "GAME")
	test.Equate(t, gotHeader.TotalSecs, 4)
	test.Equate(t, gotData, data)
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	blob := make([]byte, tifiles.HeaderSize)
	_, _, err := tifiles.Decode(blob)
	test.ExpectFailure(t, err)
}

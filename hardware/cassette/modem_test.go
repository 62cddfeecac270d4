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

package cassette_test

import (
	"testing"

	"github.com/mburkley/mltt-sub000/hardware/cassette"
	"github.com/mburkley/mltt-sub000/test"
)

func TestEncodeDecodeRecordRoundTrip(t *testing.T) {
	m := cassette.NewModem(44100)
	want := []byte{0x01, 0x02, 0xFE, 0x00, 0x7F}

	samples := m.EncodeRecord(want)
	got, err := m.DecodeRecord(samples)

	test.ExpectSuccess(t, err)
	test.Equate(t, got, want)
}

func TestDecodeRecordRejectsEmptyInput(t *testing.T) {
	m := cassette.NewModem(44100)
	_, err := m.DecodeRecord(nil)
	test.ExpectFailure(t, err)
}

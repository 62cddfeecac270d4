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

package disk_test

import (
	"bytes"
	"testing"

	"github.com/mburkley/mltt-sub000/disk"
	"github.com/mburkley/mltt-sub000/test"
)

func TestCreateOpenFileRoundTrip(t *testing.T) {
	v := disk.NewVolume("TESTDISK", 40, 1, 9)

	content := bytes.Repeat([]byte{0xAB, 0xCD}, 300) // spans multiple sectors
	_, err := disk.CreateFile(v, "HELLO", disk.FlagDisplay, 80, content)
	test.ExpectSuccess(t, err)

	fdrSector, err := v.FDRSector("HELLO")
	test.ExpectSuccess(t, err)

	opened, err := disk.OpenFile(v, "HELLO", fdrSector)
	test.ExpectSuccess(t, err)

	got, err := opened.Read(0, len(content))
	test.ExpectSuccess(t, err)
	test.Equate(t, got, content)
}

func TestFileReadHonorsOffsetAndLength(t *testing.T) {
	v := disk.NewVolume("TESTDISK", 40, 1, 9)

	content := bytes.Repeat([]byte{0xAB, 0xCD}, 300)
	_, err := disk.CreateFile(v, "HELLO", disk.FlagDisplay, 80, content)
	test.ExpectSuccess(t, err)

	fdrSector, err := v.FDRSector("HELLO")
	test.ExpectSuccess(t, err)
	opened, err := disk.OpenFile(v, "HELLO", fdrSector)
	test.ExpectSuccess(t, err)

	// A read spanning a sector boundary returns exactly the requested
	// slice of the underlying content.
	got, err := opened.Read(250, 20)
	test.ExpectSuccess(t, err)
	test.Equate(t, got, content[250:270])

	_, err = opened.Read(len(content), 1)
	test.ExpectFailure(t, err)
}

func TestFileWriteExtendsChainAndPersistsThroughReload(t *testing.T) {
	v := disk.NewVolume("TESTDISK", 40, 1, 9)

	f, err := disk.CreateFile(v, "GROW", disk.FlagInternal, 0, []byte("hello"))
	test.ExpectSuccess(t, err)

	extra := bytes.Repeat([]byte{0x7E}, 600) // forces the chain past its first sector
	test.ExpectSuccess(t, f.Write(5, extra))

	want := append([]byte("hello"), extra...)

	image := v.Bytes()
	reloaded, err := disk.LoadVolume(image)
	test.ExpectSuccess(t, err)

	fdrSector, err := reloaded.FDRSector("GROW")
	test.ExpectSuccess(t, err)
	opened, err := disk.OpenFile(reloaded, "GROW", fdrSector)
	test.ExpectSuccess(t, err)

	got, err := opened.Read(0, len(want))
	test.ExpectSuccess(t, err)
	test.Equate(t, got, want)
}

func TestVolumeBitmapAndDirectorySurviveReload(t *testing.T) {
	v := disk.NewVolume("TESTDISK", 40, 1, 9)

	content := bytes.Repeat([]byte{0x42}, 300)
	_, err := disk.CreateFile(v, "FIRST", disk.FlagProgram, 0, content)
	test.ExpectSuccess(t, err)
	_, err = disk.CreateFile(v, "ANOTHER", disk.FlagProgram, 0, content)
	test.ExpectSuccess(t, err)

	reloaded, err := disk.LoadVolume(v.Bytes())
	test.ExpectSuccess(t, err)

	// Both files are still found by name after the reload.
	firstSector, err := reloaded.FDRSector("FIRST")
	test.ExpectSuccess(t, err)
	_, err = reloaded.FDRSector("ANOTHER")
	test.ExpectSuccess(t, err)

	opened, err := disk.OpenFile(reloaded, "FIRST", firstSector)
	test.ExpectSuccess(t, err)
	got, err := opened.Read(0, len(content))
	test.ExpectSuccess(t, err)
	test.Equate(t, got, content)

	// The reloaded volume still accepts a third file.
	_, err = disk.CreateFile(reloaded, "THIRD", disk.FlagProgram, 0, content)
	test.ExpectSuccess(t, err)
}

func TestUnlinkFreesSectorsForReuse(t *testing.T) {
	v := disk.NewVolume("TESTDISK", 40, 1, 9)

	content := bytes.Repeat([]byte{0x11}, 256*5)
	_, err := disk.CreateFile(v, "A", disk.FlagProgram, 0, content)
	test.ExpectSuccess(t, err)

	err = disk.Unlink(v, "A")
	test.ExpectSuccess(t, err)

	_, err = disk.CreateFile(v, "B", disk.FlagProgram, 0, content)
	test.ExpectSuccess(t, err)
}

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

// Package disk implements the sector-dump disk image format: the volume
// header, the flat directory of up to 126 files, the free-sector
// bitmap, and the 23-entry sector-chain pointer codec files use to
// describe their (possibly fragmented) sector allocation.
package disk

import (
	"sort"

	xerrors "github.com/mburkley/mltt-sub000/errors"
	"github.com/mburkley/mltt-sub000/hardware/fdc"
)

const (
	SectorSize      = 256
	DirSectorNumber = 1
	MaxFiles        = 126 // 126 * 2-byte pointers, written from offset 0 of sector 1

	bitmapOffset = 0x38 // allocation bitmap starts here in sector 0
	bitmapBytes  = 200  // covers sectors 0..1599
)

var _ fdc.Drive = (*Volume)(nil)

// Volume is a sector-dump disk image: a flat slice of fixed-size
// sectors, sector 0 holding the volume header and sector 1 (and its
// continuations) the directory.
type Volume struct {
	Name      string
	Sectors   [][]byte
	TotalSecs int
	SecsPerTrack int
	NumTracks    int
	Sides        int
	Density      int

	bitmap []bool // true = allocated
	files  map[string]*dirEntry
	order  []string
}

type dirEntry struct {
	name       string
	fileSector int // sector holding the File Descriptor Record
}

// NewVolume creates a blank, formatted volume of the given geometry.
func NewVolume(name string, tracks, sides, secsPerTrack int) *Volume {
	total := tracks * sides * secsPerTrack
	v := &Volume{
		Name:         name,
		Sectors:      make([][]byte, total),
		TotalSecs:    total,
		SecsPerTrack: secsPerTrack,
		NumTracks:    tracks,
		Sides:        sides,
		Density:      1,
		bitmap:       make([]bool, total),
		files:        make(map[string]*dirEntry),
	}
	for i := range v.Sectors {
		v.Sectors[i] = make([]byte, SectorSize)
	}
	v.bitmap[0] = true // header
	v.bitmap[1] = true // directory
	v.writeHeader()
	return v
}

func (v *Volume) writeHeader() {
	h := v.Sectors[0]
	copy(h[0:10], padName(v.Name, 10))
	h[10] = uint8(v.TotalSecs >> 8)
	h[11] = uint8(v.TotalSecs)
	h[12] = uint8(v.SecsPerTrack)
	copy(h[13:18], []byte("DSK  "))
	h[18] = uint8(v.protectionByte())
	h[19] = uint8(v.NumTracks)
	h[20] = uint8(v.Sides)
	h[21] = uint8(v.Density)
	v.syncBitmap()
}

// syncBitmap writes the in-memory allocation bitmap into sector 0 at
// bitmapOffset, bit i of byte bitmapOffset+(i>>3) set iff sector i is
// allocated, so the bitmap on an image written by Bytes agrees with
// what allocate/free believe is free.
func (v *Volume) syncBitmap() {
	if len(v.Sectors) == 0 {
		return
	}
	h := v.Sectors[0]
	end := bitmapOffset + bitmapBytes
	if end > len(h) {
		end = len(h)
	}
	for i := bitmapOffset; i < end; i++ {
		h[i] = 0
	}
	for i, used := range v.bitmap {
		if !used {
			continue
		}
		byteIdx := bitmapOffset + (i >> 3)
		if byteIdx >= end {
			continue
		}
		h[byteIdx] |= 1 << uint(i&7)
	}
}

// syncDirectory rebuilds sector 1 from v.order (already kept in TI-name
// sort order by insertSorted) and v.files, zero-terminating after the
// last entry the same way a freshly loaded image expects.
func (v *Volume) syncDirectory() {
	if len(v.Sectors) <= DirSectorNumber {
		return
	}
	sec := v.Sectors[DirSectorNumber]
	for i := range sec {
		sec[i] = 0
	}
	for i, name := range v.order {
		if i >= MaxFiles {
			break
		}
		entry := v.files[name]
		if entry == nil {
			continue
		}
		off := i * 2
		sec[off] = uint8(entry.fileSector >> 8)
		sec[off+1] = uint8(entry.fileSector)
	}
}

// loadDirectory reconstructs v.files/v.order from sector 1's BE16
// file-descriptor-sector pointers, reading each referenced FDR's name
// field back out, the inverse of syncDirectory.
func (v *Volume) loadDirectory() {
	if len(v.Sectors) <= DirSectorNumber {
		return
	}
	sec := v.Sectors[DirSectorNumber]
	for i := 0; i+1 < len(sec) && i/2 < MaxFiles; i += 2 {
		fileSector := int(sec[i])<<8 | int(sec[i+1])
		if fileSector == 0 {
			break
		}
		if fileSector >= len(v.Sectors) {
			continue
		}
		fdr := v.Sectors[fileSector]
		if len(fdr) < 10 {
			continue
		}
		name := string(trimPad(fdr[0:10]))
		if name == "" {
			continue
		}
		v.files[name] = &dirEntry{name: name, fileSector: fileSector}
		v.order = append(v.order, name)
	}
}

// insertSorted adds name to v.order in TI-name sort order, per the
// directory insertion rule: new entries go in sorted position rather
// than being appended.
func (v *Volume) insertSorted(name string) {
	i := sort.SearchStrings(v.order, name)
	v.order = append(v.order, "")
	copy(v.order[i+1:], v.order[i:])
	v.order[i] = name
}

func (v *Volume) protectionByte() uint8 { return 0x20 } // ' ' = unprotected

func padName(name string, n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	copy(b, name)
	return b
}

// ReadSector implements fdc.Drive, resolving a (track, side, sector)
// triple to a flat sector index. Side 1 sectors are numbered
// contiguously after all of side 0's sectors in the logical image, the
// standard TI single-sided-then-flip layout.
func (v *Volume) ReadSector(track, side, sector int) ([]byte, error) {
	idx, err := v.flatIndex(track, side, sector)
	if err != nil {
		return nil, err
	}
	return v.Sectors[idx], nil
}

func (v *Volume) WriteSector(track, side, sector int, data []byte) error {
	idx, err := v.flatIndex(track, side, sector)
	if err != nil {
		return err
	}
	copy(v.Sectors[idx], data)
	return nil
}

func (v *Volume) flatIndex(track, side, sector int) (int, error) {
	if sector < 0 || sector >= v.SecsPerTrack {
		return 0, xerrors.Errorf(xerrors.DiskFileNotFound, "sector", v.Name)
	}
	var idx int
	if side == 0 {
		idx = track*v.SecsPerTrack + sector
	} else {
		idx = (v.NumTracks+track)*v.SecsPerTrack + sector
	}
	if idx < 0 || idx >= v.TotalSecs {
		return 0, xerrors.Errorf(xerrors.DiskFileNotFound, "sector", v.Name)
	}
	return idx, nil
}

// Tracks implements fdc.Drive.
func (v *Volume) Tracks() int { return v.NumTracks }

// LoadVolume reconstructs a Volume from a raw sector-dump image (a host
// file read in its entirety), parsing the header in sector 0 the same
// way writeHeader lays it out, restoring the allocation bitmap from the
// header rather than re-deriving it, and walking the directory sector to
// rebuild the file index.
func LoadVolume(image []byte) (*Volume, error) {
	if len(image) < SectorSize {
		return nil, xerrors.Errorf(xerrors.DiskNameInvalid, "(truncated image)")
	}
	h := image[:SectorSize]
	v := &Volume{
		Name:         string(trimPad(h[0:10])),
		TotalSecs:    int(h[10])<<8 | int(h[11]),
		SecsPerTrack: int(h[12]),
		NumTracks:    int(h[19]),
		Sides:        int(h[20]),
		Density:      int(h[21]),
		files:        make(map[string]*dirEntry),
	}
	if v.TotalSecs <= 0 {
		return nil, xerrors.Errorf(xerrors.DiskNameInvalid, v.Name)
	}
	v.Sectors = make([][]byte, v.TotalSecs)
	for i := range v.Sectors {
		sec := make([]byte, SectorSize)
		off := i * SectorSize
		if off < len(image) {
			copy(sec, image[off:min(off+SectorSize, len(image))])
		}
		v.Sectors[i] = sec
	}

	v.bitmap = make([]bool, v.TotalSecs)
	bmEnd := bitmapOffset + bitmapBytes
	if bmEnd > len(h) {
		bmEnd = len(h)
	}
	for i := range v.bitmap {
		byteIdx := bitmapOffset + (i >> 3)
		if byteIdx < bmEnd {
			v.bitmap[i] = (h[byteIdx]>>uint(i&7))&1 == 1
		}
	}
	// The header and directory sectors are always occupied regardless of
	// what a possibly-stale or corrupt bitmap claims.
	if len(v.bitmap) > 0 {
		v.bitmap[0] = true
	}
	if len(v.bitmap) > 1 {
		v.bitmap[1] = true
	}

	v.loadDirectory()

	return v, nil
}

// Bytes serializes the volume back to a flat sector-dump image, the
// inverse of LoadVolume, for writing back to a host file.
func (v *Volume) Bytes() []byte {
	out := make([]byte, 0, v.TotalSecs*SectorSize)
	for _, s := range v.Sectors {
		out = append(out, s...)
	}
	return out
}

func trimPad(b []byte) []byte {
	i := len(b)
	for i > 0 && b[i-1] == ' ' {
		i--
	}
	return b[:i]
}

// allocate finds and reserves n free sectors, returning their indexes in
// allocation order. It returns DiskVolumeFull if the volume cannot
// satisfy the request.
func (v *Volume) allocate(n int) ([]int, error) {
	var out []int
	for i := 0; i < len(v.bitmap) && len(out) < n; i++ {
		if !v.bitmap[i] {
			out = append(out, i)
		}
	}
	if len(out) < n {
		return nil, xerrors.Errorf(xerrors.DiskVolumeFull, v.Name)
	}
	for _, i := range out {
		v.bitmap[i] = true
	}
	v.syncBitmap()
	return out, nil
}

// allocateNext returns a free sector to extend a chain that currently
// ends at lastSector (pass -1 for an empty chain), preferring the
// sector immediately following lastSector so the write extends the
// existing chain run instead of fragmenting it into a new entry. Failing
// that it searches from sector 34 onward, the first data sector on a
// standard double-sided double-density layout.
func (v *Volume) allocateNext(lastSector int) (int, error) {
	if lastSector >= 0 {
		cand := lastSector + 1
		if cand < len(v.bitmap) && !v.bitmap[cand] {
			v.bitmap[cand] = true
			v.syncBitmap()
			return cand, nil
		}
	}
	for i := 34; i < len(v.bitmap); i++ {
		if !v.bitmap[i] {
			v.bitmap[i] = true
			v.syncBitmap()
			return i, nil
		}
	}
	return 0, xerrors.Errorf(xerrors.DiskVolumeFull, v.Name)
}

// FDRSector returns the sector holding name's File Descriptor Record,
// resolving a name to the location on disk that OpenFile takes.
func (v *Volume) FDRSector(name string) (int, error) {
	entry, ok := v.files[name]
	if !ok {
		return 0, xerrors.Errorf(xerrors.DiskFileNotFound, name, v.Name)
	}
	return entry.fileSector, nil
}

func (v *Volume) free(sectors []int) {
	for _, i := range sectors {
		if i >= 0 && i < len(v.bitmap) {
			v.bitmap[i] = false
		}
	}
	v.syncBitmap()
}

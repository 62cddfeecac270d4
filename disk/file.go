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

package disk

import (
	"strings"

	xerrors "github.com/mburkley/mltt-sub000/errors"
)

// FileType occupies the flags byte of a File Descriptor Record.
const (
	FlagProgram    = 0x00
	FlagDisplay    = 0x01
	FlagInternal   = 0x02
	FlagVariable   = 0x80
	FlagWriteProtected = 0x08
)

const chainEntries = 23 // FDR sector-chain table: 23 3-byte packed entries

// File is an open handle on a disk file's descriptor record and data
// sectors. Read and Write operate directly against the volume's
// sectors through the chain rather than a materialized copy, so a
// write is visible to a concurrently open reader of the same file.
type File struct {
	Name       string
	Flags      uint8
	RecordLen  uint8
	TotalSecs  int
	EOFOffset  uint8

	vol        *Volume
	fdrSector  int
	contentLen int

	chain []chainRun // (start sector, run length in sectors)
}

type chainRun struct {
	start  int
	length int // number of sectors, 1-based count, run is [start, start+length)
}

// packChain encodes up to 23 runs into the FDR's 69-byte chain table
// using the classic TI disk format: each entry is 3 bytes holding a
// 12-bit sector offset and a 12-bit run length (minus one), nibble
// swapped across the byte boundary.
func packChain(runs []chainRun) ([]byte, error) {
	if len(runs) > chainEntries {
		return nil, xerrors.Errorf(xerrors.TIFilesMalformed, "too many fragments")
	}
	out := make([]byte, chainEntries*3)
	for i, r := range runs {
		off := i * 3
		start := uint16(r.start) & 0x0FFF
		length := uint16(r.length-1) & 0x0FFF
		out[off] = uint8(start)
		out[off+1] = uint8((start>>8)&0x0F) | uint8((length&0x0F)<<4)
		out[off+2] = uint8(length >> 4)
	}
	return out, nil
}

// unpackChain reverses packChain, stopping at the first all-zero entry
// past the first (a zero-length first run is a legitimately empty
// file).
func unpackChain(b []byte) ([]chainRun, error) {
	if len(b) < chainEntries*3 {
		return nil, xerrors.Errorf(xerrors.TIFilesMalformed, "short chain table")
	}
	var out []chainRun
	for i := 0; i < chainEntries; i++ {
		off := i * 3
		b0, b1, b2 := b[off], b[off+1], b[off+2]
		start := uint16(b0) | (uint16(b1&0x0F) << 8)
		length := uint16(b2)<<4 | uint16(b1>>4)
		if start == 0 && length == 0 {
			if i == 0 {
				out = append(out, chainRun{start: 0, length: 0})
			}
			break
		}
		out = append(out, chainRun{start: int(start), length: int(length) + 1})
	}
	return out, nil
}

// OpenFile reads a file's FDR (at fdrSector) and resolves its sector
// chain against the volume, returning a File ready for Read/Write.
func OpenFile(v *Volume, name string, fdrSector int) (*File, error) {
	fdr, err := safeSector(v, fdrSector)
	if err != nil {
		return nil, err
	}

	f := &File{
		Name:       strings.TrimRight(name, " "),
		Flags:      fdr[10],
		RecordLen:  fdr[11],
		TotalSecs:  int(fdr[13])<<8 | int(fdr[12]),
		vol:        v,
		fdrSector:  fdrSector,
		contentLen: int(fdr[15])<<8 | int(fdr[14]),
	}

	runs, err := unpackChain(fdr[28:])
	if err != nil {
		return nil, err
	}
	f.chain = runs

	for _, s := range f.chainSectors() {
		if _, err := safeSector(v, s); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func safeSector(v *Volume, n int) ([]byte, error) {
	if n < 0 || n >= len(v.Sectors) {
		return nil, xerrors.Errorf(xerrors.DiskFileNotFound, "sector", v.Name)
	}
	return v.Sectors[n], nil
}

// chainSectors flattens f.chain's runs into the in-order list of sector
// numbers the file occupies, the order Read and Write walk them in.
func (f *File) chainSectors() []int {
	var out []int
	for _, r := range f.chain {
		for s := r.start; s < r.start+r.length; s++ {
			out = append(out, s)
		}
	}
	return out
}

// Read returns up to length bytes of the file's decoded content
// starting at byte offset off, walking the sector chain in order and
// skipping whole sectors until off falls within one. It returns
// DiskIOOutOfRange if off is at or past the file's content length.
func (f *File) Read(off, length int) ([]byte, error) {
	if off < 0 || length < 0 || off >= f.contentLen {
		return nil, xerrors.Errorf(xerrors.DiskIOOutOfRange, off, length, f.Name)
	}
	if off+length > f.contentLen {
		length = f.contentLen - off
	}

	sectors := f.chainSectors()
	out := make([]byte, 0, length)
	pos := off
	for _, s := range sectors {
		if pos >= SectorSize {
			pos -= SectorSize
			continue
		}
		if len(out) >= length {
			break
		}
		sec, err := safeSector(f.vol, s)
		if err != nil {
			return nil, err
		}
		start := pos
		end := SectorSize
		if want := start + (length - len(out)); want < end {
			end = want
		}
		out = append(out, sec[start:end]...)
		pos = 0
	}
	return out, nil
}

// Write writes data at byte offset off, extending the file's sector
// chain as needed. A write past the current content length allocates
// new sectors one at a time, preferring the sector immediately after
// the chain's current last sector so the run stays contiguous rather
// than fragmenting into a new chain entry; failing that it takes the
// next free sector from sector 34 onward. The FDR and volume header
// are flushed to their sectors after the write completes.
func (f *File) Write(off int, data []byte) error {
	if off < 0 {
		return xerrors.Errorf(xerrors.DiskIOOutOfRange, off, len(data), f.Name)
	}

	sectors := f.chainSectors()
	need := off + len(data)
	for need > len(sectors)*SectorSize {
		last := -1
		if len(sectors) > 0 {
			last = sectors[len(sectors)-1]
		}
		next, err := f.vol.allocateNext(last)
		if err != nil {
			return err
		}
		sectors = append(sectors, next)
	}
	f.chain = contiguousRuns(sectors)
	f.TotalSecs = len(sectors)

	pos := off
	written := 0
	for _, s := range sectors {
		if pos >= SectorSize {
			pos -= SectorSize
			continue
		}
		if written >= len(data) {
			break
		}
		sec, err := safeSector(f.vol, s)
		if err != nil {
			return err
		}
		n := copy(sec[pos:], data[written:])
		written += n
		pos = 0
	}

	if need > f.contentLen {
		f.contentLen = need
	}

	return f.flush()
}

// flush rewrites the file's FDR sector from its current fields and
// chain, and syncs the volume's bitmap so a written-out image reflects
// every sector this file now occupies.
func (f *File) flush() error {
	fdr, err := safeSector(f.vol, f.fdrSector)
	if err != nil {
		return err
	}
	packed, err := packChain(f.chain)
	if err != nil {
		return err
	}
	copy(fdr[0:10], padName(f.Name, 10))
	fdr[10] = f.Flags
	fdr[11] = f.RecordLen
	fdr[12] = uint8(f.TotalSecs)
	fdr[13] = uint8(f.TotalSecs >> 8)
	fdr[14] = uint8(f.contentLen)
	fdr[15] = uint8(f.contentLen >> 8)
	copy(fdr[28:], packed)
	f.vol.syncBitmap()
	return nil
}

// CreateFile allocates sectors for data, writes them and a directory
// entry plus FDR into v, and returns the new File.
func CreateFile(v *Volume, name string, flags uint8, recordLen uint8, data []byte) (*File, error) {
	if len(name) == 0 || len(name) > 10 {
		return nil, xerrors.Errorf(xerrors.DiskNameInvalid, name)
	}
	if _, exists := v.files[name]; exists {
		return nil, xerrors.Errorf(xerrors.DiskNameInvalid, name)
	}

	needed := (len(data) + SectorSize - 1) / SectorSize

	fdrSectors, err := v.allocate(1)
	if err != nil {
		return nil, err
	}
	dataSectors, err := v.allocate(needed)
	if err != nil {
		v.free(fdrSectors)
		return nil, err
	}

	runs := contiguousRuns(dataSectors)

	for i, sec := range dataSectors {
		start := i * SectorSize
		end := start + SectorSize
		buf := make([]byte, SectorSize)
		if start < len(data) {
			copy(buf, data[start:min(end, len(data))])
		}
		v.Sectors[sec] = buf
	}

	v.files[name] = &dirEntry{name: name, fileSector: fdrSectors[0]}
	v.insertSorted(name)
	v.syncDirectory()

	f := &File{
		Name:       name,
		Flags:      flags,
		RecordLen:  recordLen,
		TotalSecs:  len(dataSectors),
		vol:        v,
		fdrSector:  fdrSectors[0],
		contentLen: len(data),
		chain:      runs,
	}
	if err := f.flush(); err != nil {
		return nil, err
	}
	return f, nil
}

func contiguousRuns(sectors []int) []chainRun {
	if len(sectors) == 0 {
		return nil
	}
	var runs []chainRun
	start := sectors[0]
	length := 1
	for i := 1; i < len(sectors); i++ {
		if sectors[i] == sectors[i-1]+1 {
			length++
			continue
		}
		runs = append(runs, chainRun{start: start, length: length})
		start = sectors[i]
		length = 1
	}
	runs = append(runs, chainRun{start: start, length: length})
	return runs
}

// Unlink removes a file's directory entry and frees its FDR and data
// sectors.
func Unlink(v *Volume, name string) error {
	entry, ok := v.files[name]
	if !ok {
		return xerrors.Errorf(xerrors.DiskFileNotFound, name, v.Name)
	}
	fdr := v.Sectors[entry.fileSector]
	runs, err := unpackChain(fdr[28:])
	if err != nil {
		return err
	}
	var toFree []int
	toFree = append(toFree, entry.fileSector)
	for _, r := range runs {
		for s := r.start; s < r.start+r.length; s++ {
			toFree = append(toFree, s)
		}
	}
	v.free(toFree)
	delete(v.files, name)
	for i, n := range v.order {
		if n == name {
			v.order = append(v.order[:i], v.order[i+1:]...)
			break
		}
	}
	v.syncDirectory()
	return nil
}

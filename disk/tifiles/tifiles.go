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

// Package tifiles codecs the TIFILES container format: a 128-byte
// header prepended to a file's raw sector data so that a disk file can
// travel as a single ordinary host file (over a PC transfer cable, in
// an archive, as an email attachment) and be reconstituted exactly.
package tifiles

import (
	xerrors "github.com/mburkley/mltt-sub000/errors"
)

const (
	HeaderSize = 128
	magic      = 0x07
)

// Header mirrors the fields of a TIFILES header that matter for
// reconstituting a disk.File.
type Header struct {
	Name      string
	Flags     uint8
	RecordLen uint8
	TotalSecs int
}

// Encode prepends a 128-byte TIFILES header to data (the file's raw
// sector bytes, already padded to a sector multiple by the caller).
func Encode(h Header, data []byte) []byte {
	out := make([]byte, HeaderSize+len(data))
	out[0] = 0x07
	out[1] = 'T'
	out[2] = 'I'
	out[3] = 'F'
	out[4] = 'I'
	out[5] = 'L'
	out[6] = 'E'
	out[7] = 'S'

	secs := h.TotalSecs
	out[8] = uint8(secs >> 8)
	out[9] = uint8(secs)
	out[10] = h.Flags
	out[13] = h.RecordLen

	name := h.Name
	if len(name) > 10 {
		name = name[:10]
	}
	for i := 0; i < 10; i++ {
		out[16+i] = ' '
	}
	copy(out[16:26], name)

	copy(out[HeaderSize:], data)
	return out
}

// Decode splits a TIFILES container back into its header and raw data,
// validating the magic byte sequence.
func Decode(blob []byte) (Header, []byte, error) {
	if len(blob) < HeaderSize {
		return Header{}, nil, xerrors.Errorf(xerrors.TIFilesMalformed, "short file")
	}
	if blob[0] != magic || string(blob[1:8]) != "TIFILES" {
		return Header{}, nil, xerrors.Errorf(xerrors.TIFilesMalformed, "bad magic")
	}

	h := Header{
		TotalSecs: int(blob[8])<<8 | int(blob[9]),
		Flags:     blob[10],
		RecordLen: blob[13],
	}

	nameEnd := 26
	for nameEnd > 16 && blob[nameEnd-1] == ' ' {
		nameEnd--
	}
	h.Name = string(blob[16:nameEnd])

	return h, blob[HeaderSize:], nil
}

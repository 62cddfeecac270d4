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

package errors

// Canonical error message templates. Each is a fmt verb template consumed
// by Errorf(); the leading word groups errors by the component that can
// raise them.
const (
	UnmappedAddress    = "memory: unmapped address %#04x"
	UndefinedOpcode    = "cpu: undefined opcode %#04x at %#04x"
	UnsupportedVDPMode = "vdp: unsupported mode %s"
	MalformedROM       = "rom: malformed image %s: %s"
	FileRequired       = "file: %s required for %s: %w"
	CRUIndexOutOfRange = "cru: index %d out of range"
	DiskVolumeFull     = "disk: volume %s has no free sectors"
	DiskFileNotFound   = "disk: file %s not found on volume %s"
	DiskNameInvalid    = "disk: invalid file name %q"
	DiskIOOutOfRange   = "disk: offset %d length %d out of range for file %s"
	TIFilesMalformed   = "tifiles: malformed header in %s"
	CassetteNoCarrier  = "cassette: no carrier detected in %s"
	FDCUnsupported     = "fdc: unsupported command %#02x"

	DebuggerUnknownCommand = "debugger: unknown command %q"
	DebuggerBadArgCount    = "debugger: command %q expects %d argument(s), got %d"
	DebuggerBadArgument    = "debugger: malformed argument %q"
)

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

// Package bus defines the interfaces that connect the CPU to the memory
// map and the memory map to the chips it multiplexes onto the MMIO
// window. Chips depend only on these interfaces, never on each other or
// on the memory package directly, so that the wiring lives entirely in
// the top level Machine.
package bus

// Memory is the interface the CPU interpreter executes against. All
// 64KiB of TMS9900 address space, however it is backed underneath, is
// reached through this interface.
type Memory interface {
	ReadW(addr uint16) (uint16, error)
	WriteW(addr uint16, v uint16) error
	ReadB(addr uint16) (uint8, error)
	WriteB(addr uint16, v uint8) error
}

// DebuggerBus is implemented by memory areas that support the
// non-side-effecting peek/poke used by the debugger shards and the CLI
// surface's "peek"/"poke" verbs.
type DebuggerBus interface {
	Peek(addr uint16) (uint8, error)
	Poke(addr uint16, v uint8) error
}

// VDPPort is the MMIO-facing side of the VDP, mapped at 8800-8FFF.
type VDPPort interface {
	ReadData() uint8
	ReadStatus() uint8
	WriteData(v uint8)
	WriteCommand(v uint8)
}

// GROMPort is the MMIO-facing side of the GROM, mapped at 9800-9FFF.
type GROMPort interface {
	ReadData() uint8
	ReadAddress() uint8
	WriteData(v uint8)
	WriteAddress(v uint8)
}

// SoundPort is the MMIO-facing side of the TMS9919, mapped at 8400-87FF.
type SoundPort interface {
	Write(v uint8)
}

// SpeechPort is the MMIO-facing side of the (register-passthrough only)
// speech synthesizer, mapped at 9000-97FF.
type SpeechPort interface {
	Read() uint8
	Write(v uint8)
}

// FDCPort is the register window embedded in the disk controller device
// ROM at 4000-5FFF, offsets 1FF0-1FFF.
type FDCPort interface {
	ReadRegister(offset uint16) uint8
	WriteRegister(offset uint16, v uint8)
}

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

// Package memory implements the TMS9900 address space decoder: console
// ROM, expansion RAM, the device ROM window with its embedded FDC
// registers, bank-switched cartridge ROM, scratchpad RAM, and the MMIO
// window that fans out to sound, VDP, speech and GROM.
//
// Every arena is backed by plain []byte rather than []uint16, which is
// what makes the TMS9900's word/byte addressing rules -- a word read of
// an odd address aligns down, a register-mode byte operand reads the
// register's high byte -- fall out of ordinary slice indexing instead of
// needing special-casing at every access.
package memory

import (
	xerrors "github.com/mburkley/mltt-sub000/errors"
	"github.com/mburkley/mltt-sub000/hardware/memory/bus"
)

const (
	consoleROMBase    = 0x0000
	consoleROMSize    = 0x2000
	lowExpansionBase  = 0x2000
	lowExpansionSize  = 0x2000
	deviceROMBase     = 0x4000
	deviceROMSize     = 0x2000
	cartridgeROMBase  = 0x6000
	cartridgeROMSize  = 0x2000
	scratchpadBase    = 0x8000
	scratchpadSize    = 0x0100
	mmioBase          = 0x8400
	mmioSize          = 0x1C00
	highExpansionBase = 0xA000
	highExpansionSize = 0x6000
)

const (
	soundBase   = 0x8400
	vdpReadBase = 0x8800
	vdpWriteBase = 0x8C00
	speechReadBase  = 0x9000
	speechWriteBase = 0x9400
	gromReadBase  = 0x9800
	gromWriteBase = 0x9C00
	mmioPortSize  = 0x0400
)

// DeviceSelect reports which CRU-selected device, if any, currently owns
// the device ROM window (4000-5FFF). Only one device is active at a
// time on the TI-99/4A bus; the disk controller card is the one this
// emulator wires in.
type DeviceSelect interface {
	DeviceROM() []byte
	FDCPort() bus.FDCPort
}

// Memory is the full 64KiB address space decoder.
type Memory struct {
	consoleROM   [consoleROMSize]byte
	lowExpansion [lowExpansionSize]byte
	cartridge    *Cartridge
	scratchpad   [scratchpadSize]byte
	highExpansion [highExpansionSize]byte

	device       DeviceSelect
	deviceActive bool

	sound  bus.SoundPort
	vdp    bus.VDPPort
	speech bus.SpeechPort
	grom   bus.GROMPort
}

// New creates a memory map with the console ROM preloaded. Ports may be
// nil at construction and wired in later with the Attach* methods, which
// lets Machine build the chips before their cross-references exist.
func New(consoleROM []byte) *Memory {
	m := &Memory{}
	copy(m.consoleROM[:], consoleROM)
	return m
}

func (m *Memory) AttachSound(p bus.SoundPort)   { m.sound = p }
func (m *Memory) AttachVDP(p bus.VDPPort)       { m.vdp = p }
func (m *Memory) AttachSpeech(p bus.SpeechPort) { m.speech = p }
func (m *Memory) AttachGROM(p bus.GROMPort)     { m.grom = p }
func (m *Memory) AttachCartridge(c *Cartridge)  { m.cartridge = c }
func (m *Memory) AttachDevice(d DeviceSelect)   { m.device = d }

// SetDeviceActive implements the CRU device-select bit: writing 1 to a
// device's CRU select bit (e.g. fabric bit 0x880, R12 = 0x1100, for the
// disk controller) maps
// its ROM and register window into 4000-5FFF; writing 0 unmaps it.
func (m *Memory) SetDeviceActive(active bool) { m.deviceActive = active }

// ReadB reads one byte. This is the sole authority for the memory map;
// ReadW is defined in terms of it.
func (m *Memory) ReadB(addr uint16) (uint8, error) {
	switch {
	case addr < consoleROMBase+consoleROMSize:
		return m.consoleROM[addr-consoleROMBase], nil

	case addr < lowExpansionBase+lowExpansionSize:
		return m.lowExpansion[addr-lowExpansionBase], nil

	case addr < deviceROMBase+deviceROMSize:
		if !m.deviceActive || m.device == nil {
			return 0, nil
		}
		off := addr - deviceROMBase
		if rom := m.device.DeviceROM(); int(off) < len(rom) {
			if fdc := m.device.FDCPort(); fdc != nil && off >= 0x1FF0 {
				return fdc.ReadRegister(off - 0x1FF0), nil
			}
			return rom[off], nil
		}
		return 0, nil

	case addr < cartridgeROMBase+cartridgeROMSize:
		if m.cartridge == nil {
			return 0, nil
		}
		return m.cartridge.Read(addr - cartridgeROMBase), nil

	case addr >= scratchpadBase && addr < mmioBase:
		// 8000-83FF mirrors the 256-byte scratchpad RAM every 0x100
		// bytes across its 0x400-byte window.
		return m.scratchpad[(addr-scratchpadBase)%scratchpadSize], nil

	case addr >= mmioBase && addr < mmioBase+mmioSize:
		return m.readMMIO(addr), nil

	case addr >= highExpansionBase:
		return m.highExpansion[addr-highExpansionBase], nil
	}

	return 0, xerrors.Errorf(xerrors.UnmappedAddress, addr)
}

func (m *Memory) readMMIO(addr uint16) uint8 {
	switch {
	case addr >= vdpReadBase && addr < vdpReadBase+mmioPortSize:
		if m.vdp == nil {
			return 0
		}
		if addr&1 == 1 {
			return m.vdp.ReadStatus()
		}
		return m.vdp.ReadData()
	case addr >= speechReadBase && addr < speechReadBase+mmioPortSize:
		if m.speech == nil {
			return 0
		}
		return m.speech.Read()
	case addr >= gromReadBase && addr < gromReadBase+mmioPortSize:
		if m.grom == nil {
			return 0
		}
		if addr&1 == 1 {
			return m.grom.ReadAddress()
		}
		return m.grom.ReadData()
	}
	return 0
}

// WriteB writes one byte.
func (m *Memory) WriteB(addr uint16, v uint8) error {
	switch {
	case addr < consoleROMBase+consoleROMSize:
		return nil // console ROM is not writable

	case addr < lowExpansionBase+lowExpansionSize:
		m.lowExpansion[addr-lowExpansionBase] = v
		return nil

	case addr < deviceROMBase+deviceROMSize:
		if m.deviceActive && m.device != nil {
			off := addr - deviceROMBase
			if fdc := m.device.FDCPort(); fdc != nil && off >= 0x1FF0 {
				fdc.WriteRegister(off-0x1FF0, v)
			}
		}
		return nil

	case addr < cartridgeROMBase+cartridgeROMSize:
		if m.cartridge != nil {
			m.cartridge.Write(addr-cartridgeROMBase, v)
		}
		return nil

	case addr >= scratchpadBase && addr < mmioBase:
		m.scratchpad[(addr-scratchpadBase)%scratchpadSize] = v
		return nil

	case addr >= mmioBase && addr < mmioBase+mmioSize:
		m.writeMMIO(addr, v)
		return nil

	case addr >= highExpansionBase:
		m.highExpansion[addr-highExpansionBase] = v
		return nil
	}

	return xerrors.Errorf(xerrors.UnmappedAddress, addr)
}

func (m *Memory) writeMMIO(addr uint16, v uint8) {
	switch {
	case addr >= soundBase && addr < soundBase+mmioPortSize:
		if m.sound != nil {
			m.sound.Write(v)
		}
	case addr >= vdpWriteBase && addr < vdpWriteBase+mmioPortSize:
		if m.vdp == nil {
			return
		}
		if addr&1 == 1 {
			m.vdp.WriteCommand(v)
		} else {
			m.vdp.WriteData(v)
		}
	case addr >= speechWriteBase && addr < speechWriteBase+mmioPortSize:
		if m.speech != nil {
			m.speech.Write(v)
		}
	case addr >= gromWriteBase && addr < gromWriteBase+mmioPortSize:
		if m.grom == nil {
			return
		}
		if addr&1 == 1 {
			m.grom.WriteAddress(v)
		} else {
			m.grom.WriteData(v)
		}
	}
}

// ReadW reads a big-endian word. An odd address is aligned down, per the
// TMS9900's word-addressing rule.
func (m *Memory) ReadW(addr uint16) (uint16, error) {
	addr &^= 1
	hi, err := m.ReadB(addr)
	if err != nil {
		return 0, err
	}
	lo, err := m.ReadB(addr + 1)
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

// WriteW writes a big-endian word, aligning an odd address down.
func (m *Memory) WriteW(addr uint16, v uint16) error {
	addr &^= 1
	if err := m.WriteB(addr, uint8(v>>8)); err != nil {
		return err
	}
	return m.WriteB(addr+1, uint8(v))
}

// Peek/Poke implement bus.DebuggerBus without the side effects (VDP
// read-ahead advance, GROM auto-increment, FDC DRQ/IRQ bookkeeping) that
// ReadB/WriteB carry for MMIO addresses and the FDC register window at
// 5FF0-5FFF; those addresses return an error instead. The debugger uses
// these for scratchpad, ROM and RAM inspection only.
func (m *Memory) Peek(addr uint16) (uint8, error) {
	if addr >= mmioBase && addr < mmioBase+mmioSize {
		return 0, xerrors.Errorf(xerrors.UnmappedAddress, addr)
	}
	if addr >= deviceROMBase+0x1FF0 && addr < deviceROMBase+deviceROMSize {
		return 0, xerrors.Errorf(xerrors.UnmappedAddress, addr)
	}
	return m.ReadB(addr)
}

func (m *Memory) Poke(addr uint16, v uint8) error {
	if addr >= mmioBase && addr < mmioBase+mmioSize {
		return xerrors.Errorf(xerrors.UnmappedAddress, addr)
	}
	if addr >= deviceROMBase+0x1FF0 && addr < deviceROMBase+deviceROMSize {
		return xerrors.Errorf(xerrors.UnmappedAddress, addr)
	}
	return m.WriteB(addr, v)
}

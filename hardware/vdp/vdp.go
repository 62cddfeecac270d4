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

// Package vdp implements the TMS9918A video display processor: its
// 16KiB VRAM, the two-port (data/command) CPU interface, Graphics I,
// Graphics II and Text modes, and the 32-sprite engine with coincidence
// and per-scanline-limit detection.
package vdp

import xerrors "github.com/mburkley/mltt-sub000/errors"

// VRAMSize is the VDP's own address space, distinct from CPU memory.
const VRAMSize = 0x4000

// Mode selects the active display mode, chosen from VDR1/VDR0 bits.
type Mode int

const (
	ModeGraphicsI Mode = iota
	ModeGraphicsII
	ModeText
	ModeMulticolor
)

// Status register bits.
const (
	StatusF       = 0x80 // frame interrupt (vertical retrace)
	StatusFifthSR = 0x40 // 5th sprite flag
	StatusC       = 0x20 // sprite coincidence
)

const (
	MaxSprites        = 32
	SpritesPerScanline = 4
	ScreenWidth       = 256
	ScreenHeight      = 192
)

// Palette is the TMS9918A's fixed 16-colour RGB table. Index 0 is
// "transparent" and is resolved to the backdrop colour by the caller,
// matching how the real chip has no true index-0 pixel.
var Palette = [16][3]uint8{
	{0, 0, 0},       // 0 transparent
	{0, 0, 0},       // 1 black
	{33, 200, 66},   // 2 medium green
	{94, 220, 120},  // 3 light green
	{84, 85, 237},   // 4 dark blue
	{125, 118, 252}, // 5 light blue
	{212, 82, 77},   // 6 dark red
	{66, 235, 245},  // 7 cyan
	{252, 85, 84},   // 8 medium red
	{255, 121, 120}, // 9 light red
	{212, 193, 84},  // 10 dark yellow
	{230, 206, 128}, // 11 light yellow
	{33, 176, 59},   // 12 dark green
	{201, 91, 186},  // 13 magenta
	{204, 204, 204}, // 14 gray
	{255, 255, 255}, // 15 white
}

// registers holds the eight write-only VDP configuration registers.
type registers struct {
	r [8]uint8
}

func (r *registers) mode() Mode {
	m2 := r.r[0]&0x02 != 0  // M3 (register 0 bit 1): graphics II select
	m1 := r.r[1]&0x10 != 0  // M2 (register 1 bit 4): multicolor
	m0 := r.r[1]&0x08 != 0  // M1 (register 1 bit 3): text
	switch {
	case m0:
		return ModeText
	case m1:
		return ModeMulticolor
	case m2:
		return ModeGraphicsII
	default:
		return ModeGraphicsI
	}
}

func (r *registers) nameTableBase() uint16    { return uint16(r.r[2]&0x0F) << 10 }
func (r *registers) colorTableBase() uint16   { return uint16(r.r[3]) << 6 }
func (r *registers) patternTableBase() uint16 { return uint16(r.r[4]&0x07) << 11 }
func (r *registers) spriteAttrBase() uint16   { return uint16(r.r[5]&0x7F) << 7 }
func (r *registers) spritePatternBase() uint16 {
	return uint16(r.r[6]&0x07) << 11
}
func (r *registers) backdropColor() uint8 { return r.r[7] & 0x0F }
func (r *registers) spritesLarge() bool   { return r.r[1]&0x02 != 0 }
func (r *registers) spritesMagnified() bool { return r.r[1]&0x01 != 0 }
func (r *registers) irqEnabled() bool     { return r.r[1]&0x20 != 0 }

// VDP is the display processor state. It satisfies bus.VDPPort.
type VDP struct {
	vram [VRAMSize]byte
	regs registers

	addr       uint16
	latchLow   uint8
	haveLatch  bool

	readBuffer uint8

	status uint8

	// onInterrupt, when set, is called whenever the frame interrupt
	// (StatusF) transitions from clear to set, letting the Machine
	// assert the corresponding TMS9901 line without VDP importing it.
	onInterrupt func()
}

// New creates a blank VDP.
func New(onInterrupt func()) *VDP {
	return &VDP{onInterrupt: onInterrupt}
}

// ReadData returns the byte at the current VRAM address from the
// read-ahead buffer, refills the buffer from the new address, and
// advances the address by one, wrapping at VRAMSize.
func (v *VDP) ReadData() uint8 {
	v.haveLatch = false
	b := v.readBuffer
	v.readBuffer = v.vram[v.addr]
	v.addr = (v.addr + 1) % VRAMSize
	return b
}

// WriteData writes the byte at the current VRAM address and advances it.
func (v *VDP) WriteData(val uint8) {
	v.haveLatch = false
	v.vram[v.addr] = val
	v.addr = (v.addr + 1) % VRAMSize
	v.readBuffer = val
}

// WriteCommand writes one byte of the two-byte command/address latch.
// The first byte is always the low byte of an address or register
// value; the second byte's top two bits select between "set read
// address" (00), "set write address" (01), and "write register" (10/11).
func (v *VDP) WriteCommand(val uint8) {
	if !v.haveLatch {
		v.latchLow = val
		v.haveLatch = true
		return
	}
	v.haveLatch = false

	switch val >> 6 {
	case 0: // set address for subsequent reads
		v.addr = (uint16(val&0x3F) << 8) | uint16(v.latchLow)
		v.readBuffer = v.vram[v.addr]
		v.addr = (v.addr + 1) % VRAMSize
	case 1: // set address for subsequent writes
		v.addr = (uint16(val&0x3F) << 8) | uint16(v.latchLow)
	default: // write register (bits 6-7 == 2 or 3)
		reg := val & 0x07
		v.regs.r[reg] = v.latchLow
	}
}

// ReadStatus returns a snapshot of the status register, then clears the
// frame, 5th-sprite and coincidence flags and the 5th-sprite index bits
// -- the standardized behaviour this emulator adopted in place of the
// undocumented read-then-clear quirks of individual TMS9918A batches.
func (v *VDP) ReadStatus() uint8 {
	snapshot := v.status
	v.status &^= StatusF | StatusFifthSR | StatusC
	v.status &^= 0x1F // 5th-sprite index field occupies the low 5 bits
	return snapshot
}

// RaiseFrameInterrupt is called by the scheduler on every vertical
// retrace (60Hz NTSC / 50Hz PAL, per the host clock). It latches StatusF
// and, if register 1 enables VDP interrupts, fires onInterrupt.
func (v *VDP) RaiseFrameInterrupt() {
	v.status |= StatusF
	if v.regs.irqEnabled() && v.onInterrupt != nil {
		v.onInterrupt()
	}
}

// Peek/Poke give the debugger non-side-effecting access to VRAM,
// implementing bus.DebuggerBus at VDP's own address granularity.
func (v *VDP) Peek(addr uint16) (uint8, error) {
	if int(addr) >= VRAMSize {
		return 0, xerrors.Errorf(xerrors.UnmappedAddress, addr)
	}
	return v.vram[addr], nil
}

func (v *VDP) Poke(addr uint16, val uint8) error {
	if int(addr) >= VRAMSize {
		return xerrors.Errorf(xerrors.UnmappedAddress, addr)
	}
	v.vram[addr] = val
	return nil
}

// Mode reports the currently selected display mode.
func (v *VDP) Mode() Mode { return v.regs.mode() }

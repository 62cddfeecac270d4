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

// Package fdc implements the FD1771 floppy disk controller command state
// machine: Restore, Seek, Step in/out, Read/Write sector, Read address,
// and Force interrupt, operating against an in-memory disk.Volume rather
// than raw flux.
package fdc

import (
	xerrors "github.com/mburkley/mltt-sub000/errors"
)

// Status register bits, type-I/type-II/type-III meanings overlap by
// position; callers interpret them according to the last command issued.
const (
	StatusBusy        = 0x01
	StatusDRQ         = 0x02
	StatusLostData    = 0x04
	StatusCRCError    = 0x08
	StatusRNF         = 0x10 // record not found
	StatusWriteFault  = 0x20
	StatusHeadLoaded  = 0x20
	StatusWriteProt   = 0x40
	StatusNotReady    = 0x80
)

const (
	SectorSize     = 256
	SectorsPerSide = 9
)

// Drive is the storage the controller reads and writes. A disk.Volume
// satisfies this.
type Drive interface {
	Tracks() int
	ReadSector(track, side, sector int) ([]byte, error)
	WriteSector(track, side, sector int, data []byte) error
}

// FDC is one FD1771 and up to four attached drives.
type FDC struct {
	drives     [4]Drive
	selected   int
	side       int
	track      int // physical head position, independent of the track register
	trackReg   uint8
	sectorReg  uint8
	dataReg    uint8
	status     uint8
	dataBuf    []byte
	dataIndex  int
	irq        bool
	drq        bool
}

// New creates an FDC with no drives attached.
func New() *FDC {
	return &FDC{}
}

// Attach installs a drive in slot 0-3.
func (f *FDC) Attach(slot int, d Drive) {
	if slot < 0 || slot > 3 {
		return
	}
	f.drives[slot] = d
}

// SelectDrive implements the CRU-driven drive/side select lines.
func (f *FDC) SelectDrive(slot int) { f.selected = slot }
func (f *FDC) SelectSide(side int)  { f.side = side }

func (f *FDC) drive() (Drive, error) {
	d := f.drives[f.selected]
	if d == nil {
		return nil, xerrors.Errorf(xerrors.FDCUnsupported, uint8(f.selected))
	}
	return d, nil
}

// WriteCommand decodes and executes a command register write.
func (f *FDC) WriteCommand(cmd uint8) error {
	f.irq = false
	switch {
	case cmd&0x80 == 0x00:
		return f.typeI(cmd)
	case cmd&0xE0 == 0x80:
		return f.readSector(cmd)
	case cmd&0xE0 == 0xA0:
		return f.writeSector(cmd)
	case cmd&0xF0 == 0xC0:
		return f.readAddress()
	case cmd&0xF0 == 0xD0:
		return f.forceInterrupt(cmd)
	case cmd&0xF0 == 0xE0:
		return f.readTrack()
	case cmd&0xF0 == 0xF0:
		return f.writeTrack()
	}
	return xerrors.Errorf(xerrors.FDCUnsupported, cmd)
}

// typeI implements Restore, Seek, Step, Step-in, Step-out (commands
// 0x00-0x7F).
func (f *FDC) typeI(cmd uint8) error {
	switch {
	case cmd&0xF0 == 0x00: // Restore
		f.track = 0
		f.trackReg = 0
	case cmd&0xF0 == 0x10: // Seek: data register holds target track
		f.track = int(f.dataReg)
		f.trackReg = f.dataReg
	case cmd&0xE0 == 0x20: // Step, repeat last direction
		// direction tracked implicitly by the last in/out command;
		// simplified to no-op since track-accurate stepping is
		// modeled at the Seek/Step-in/Step-out granularity only.
	case cmd&0xE0 == 0x40: // Step in
		f.track++
		f.trackReg = uint8(f.track)
	case cmd&0xE0 == 0x60: // Step out
		if f.track > 0 {
			f.track--
		}
		f.trackReg = uint8(f.track)
	}
	f.status = StatusHeadLoaded
	if f.track == 0 {
		f.status |= 0x04 // TRACK00
	}
	f.irq = true
	return nil
}

func (f *FDC) sectorResolution() (track, side, sector int) {
	// Side-1 sectors are numbered contiguously after side 0 in the
	// logical volume image: physical sector = sectorReg, with the side
	// selected by the SelectSide CRU line rather than encoded in the
	// register, matching the single-density FD1771 wiring on the
	// TI-99/4A disk controller card.
	return f.track, f.side, int(f.sectorReg)
}

func (f *FDC) readSector(cmd uint8) error {
	d, err := f.drive()
	if err != nil {
		f.status = StatusNotReady
		f.irq = true
		return err
	}
	track, side, sector := f.sectorResolution()
	data, err := d.ReadSector(track, side, sector)
	if err != nil {
		f.status = StatusRNF
		f.irq = true
		return err
	}
	f.dataBuf = data
	f.dataIndex = 0
	f.drq = true
	f.status = StatusDRQ
	return nil
}

func (f *FDC) writeSector(cmd uint8) error {
	if _, err := f.drive(); err != nil {
		f.status = StatusNotReady
		f.irq = true
		return err
	}
	f.dataBuf = make([]byte, SectorSize)
	f.dataIndex = 0
	f.drq = true
	f.status = StatusDRQ
	return nil
}

// flushWriteSector is called once the guest has shifted SectorSize bytes
// into the data register; see WriteData.
func (f *FDC) flushWriteSector() error {
	d, err := f.drive()
	if err != nil {
		return err
	}
	track, side, sector := f.sectorResolution()
	if err := d.WriteSector(track, side, sector, f.dataBuf); err != nil {
		f.status = StatusWriteFault
		f.irq = true
		return err
	}
	f.status = 0
	f.irq = true
	return nil
}

func (f *FDC) readAddress() error {
	f.dataBuf = []byte{uint8(f.track), uint8(f.side), f.sectorReg, 0x01, 0, 0}
	f.dataIndex = 0
	f.drq = true
	f.status = StatusDRQ
	return nil
}

func (f *FDC) readTrack() error {
	return xerrors.Errorf(xerrors.FDCUnsupported, uint8(0xE0))
}

func (f *FDC) writeTrack() error {
	return xerrors.Errorf(xerrors.FDCUnsupported, uint8(0xF0))
}

func (f *FDC) forceInterrupt(cmd uint8) error {
	f.status &^= StatusBusy
	f.drq = false
	f.irq = true
	return nil
}

// ReadStatus returns the status register and clears the pending
// interrupt flag, as on real hardware reading status acknowledges INTRQ.
func (f *FDC) ReadStatus() uint8 {
	f.irq = false
	return f.status
}

func (f *FDC) WriteTrackReg(v uint8)  { f.trackReg = v }
func (f *FDC) ReadTrackReg() uint8    { return f.trackReg }
func (f *FDC) WriteSectorReg(v uint8) { f.sectorReg = v }
func (f *FDC) ReadSectorReg() uint8   { return f.sectorReg }

// WriteData shifts one byte into the active sector buffer during a write
// command, flushing to the drive once the sector is complete.
func (f *FDC) WriteData(v uint8) error {
	if f.dataBuf == nil || f.dataIndex >= len(f.dataBuf) {
		f.dataReg = v
		return nil
	}
	f.dataBuf[f.dataIndex] = v
	f.dataIndex++
	if f.dataIndex == len(f.dataBuf) {
		f.drq = false
		return f.flushWriteSector()
	}
	return nil
}

// ReadData shifts one byte out of the active sector buffer during a read
// command.
func (f *FDC) ReadData() uint8 {
	if f.dataBuf == nil || f.dataIndex >= len(f.dataBuf) {
		return f.dataReg
	}
	v := f.dataBuf[f.dataIndex]
	f.dataIndex++
	if f.dataIndex == len(f.dataBuf) {
		f.drq = false
		f.status &^= StatusDRQ
	}
	return v
}

// DRQ and IRQ report the controller's two request lines. No TMS9901
// input line is wired to them.
func (f *FDC) DRQ() bool { return f.drq }
func (f *FDC) IRQ() bool { return f.irq }

// Register offsets within the device ROM's embedded FDC window
// (4000-5FFF, offsets 1FF0-1FFF), matching bus.FDCPort.
const (
	RegStatusCommand = 0x0
	RegTrack         = 0x2
	RegSector        = 0x4
	RegData          = 0x6
)

// ReadRegister and WriteRegister implement bus.FDCPort, multiplexing the
// controller's four addressable registers onto the narrow offset range
// the memory decoder exposes.
func (f *FDC) ReadRegister(offset uint16) uint8 {
	switch offset & 0x7 {
	case RegStatusCommand:
		return f.ReadStatus()
	case RegTrack:
		return f.ReadTrackReg()
	case RegSector:
		return f.ReadSectorReg()
	case RegData:
		return f.ReadData()
	}
	return 0xFF
}

func (f *FDC) WriteRegister(offset uint16, v uint8) {
	switch offset & 0x7 {
	case RegStatusCommand:
		_ = f.WriteCommand(v)
	case RegTrack:
		f.WriteTrackReg(v)
	case RegSector:
		f.WriteSectorReg(v)
	case RegData:
		_ = f.WriteData(v)
	}
}

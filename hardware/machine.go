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

// Package hardware wires every chip package into one running console.
// There are no package-level singletons anywhere in this tree: Machine
// is the single place that constructs a CPU, a memory map, a CRU
// fabric and every peripheral, and hands each one explicit references
// to the others it needs. A second Machine in the same process is a
// second, fully independent console.
package hardware

import (
	"time"

	"github.com/mburkley/mltt-sub000/debugger"
	"github.com/mburkley/mltt-sub000/disassembly"
	"github.com/mburkley/mltt-sub000/hardware/cpu"
	"github.com/mburkley/mltt-sub000/hardware/cru"
	"github.com/mburkley/mltt-sub000/hardware/fdc"
	"github.com/mburkley/mltt-sub000/hardware/grom"
	"github.com/mburkley/mltt-sub000/hardware/input"
	"github.com/mburkley/mltt-sub000/hardware/memory"
	"github.com/mburkley/mltt-sub000/hardware/memory/bus"
	"github.com/mburkley/mltt-sub000/hardware/sound"
	"github.com/mburkley/mltt-sub000/hardware/speech"
	"github.com/mburkley/mltt-sub000/hardware/tms9901"
	"github.com/mburkley/mltt-sub000/hardware/vdp"
	"github.com/mburkley/mltt-sub000/logger"
)

// FrameRateNTSC is the VDP's vertical refresh rate on an NTSC TI-99/4A.
// A PAL console runs at 50Hz instead; Machine takes the rate as a
// constructor argument rather than hard-coding one.
const FrameRateNTSC = 60

// deviceSlot adapts an attached device ROM image and its FDCPort
// together into memory.DeviceSelect, since the disk controller card is
// the one device this console wires into the 4000-5FFF window.
type deviceSlot struct {
	rom []byte
	fdc bus.FDCPort
}

func (d *deviceSlot) DeviceROM() []byte   { return d.rom }
func (d *deviceSlot) FDCPort() bus.FDCPort { return d.fdc }

// cpuRegisters adapts *cpu.CPU to debugger.RegisterSource.
type cpuRegisters struct{ c *cpu.CPU }

func (r cpuRegisters) PC() uint16                { return r.c.PC }
func (r cpuRegisters) WP() uint16                { return r.c.WP }
func (r cpuRegisters) ST() uint16                { return uint16(r.c.ST) }
func (r cpuRegisters) R(n uint8) (uint16, error) { return r.c.R(n) }

// Machine is a complete TI-99/4A: CPU, address space, CRU fabric, and
// every peripheral wired together the way Memory's Attach* methods and
// the CRU fabric's Register* callbacks expect.
type Machine struct {
	CPU    *cpu.CPU
	Memory *memory.Memory
	CRU    *cru.Fabric
	PSI    *tms9901.TMS9901
	VDP    *vdp.VDP
	Sound  *sound.Chip
	Speech *speech.Chip
	GROM   *grom.GROM
	FDC    *fdc.FDC
	Keyboard *input.Matrix

	Disassembler *disassembly.Disassembler
	Debugger     *debugger.Table
	Breakpoints  *debugger.Breakpoints
	Watches      *debugger.Watches
	Conditions   *debugger.Conditions

	run       *cpu.RunFlag
	log       *logger.Log
	frameRate int

	timerDeadline time.Time
	timerPeriod   time.Duration

	halted error
}

// Config gathers everything Machine needs that isn't produced by the
// wiring itself: ROM images, a sample rate for the sound chip, and an
// optional log sink.
type Config struct {
	ConsoleROM []byte
	GROMImage  []byte
	DeviceROM  []byte // disk controller DSR ROM, mapped when CRU-selected
	SampleRate int
	FrameRate  int // defaults to FrameRateNTSC if zero
	SoundSink  sound.Sink
	KeySource  input.KeySource
	Log        *logger.Log
}

// New constructs a fully wired Machine. No chip here ever reaches for
// another chip except through the interfaces in hardware/memory/bus and
// hardware/cpu; everything is assembled by this function, and nothing
// here is a package-level variable.
func New(cfg Config) *Machine {
	frameRate := cfg.FrameRate
	if frameRate == 0 {
		frameRate = FrameRateNTSC
	}

	m := &Machine{
		CRU:       cru.NewFabric(),
		Memory:    memory.New(cfg.ConsoleROM),
		GROM:      grom.New(cfg.GROMImage),
		FDC:       fdc.New(),
		Speech:    speech.New(),
		run:       cpu.NewRunFlag(),
		log:       cfg.Log,
		frameRate: frameRate,
	}

	m.PSI = tms9901.New(0, m.onTimerExpire)
	m.PSI.AttachCRU(m.CRU)

	m.Keyboard = input.New(cfg.KeySource)
	m.Keyboard.AttachCRU(m.CRU)

	m.VDP = vdp.New(func() { m.PSI.Assert(tms9901.BitIRQLevel1) })
	m.Sound = sound.New(cfg.SampleRate, cfg.SoundSink)

	m.Memory.AttachGROM(m.GROM)
	m.Memory.AttachVDP(m.VDP)
	m.Memory.AttachSound(m.Sound)
	m.Memory.AttachSpeech(m.Speech)
	m.Memory.AttachDevice(&deviceSlot{rom: cfg.DeviceROM, fdc: m.FDC})

	m.CRU.RegisterOutput(cruDeviceSelect, func(state bool) bool {
		m.Memory.SetDeviceActive(state)
		return false
	})
	m.CRU.RegisterOutput(cruFDCDriveSelect0, func(state bool) bool {
		if state {
			m.FDC.SelectDrive(0)
		}
		return false
	})
	m.CRU.RegisterOutput(cruFDCDriveSelect1, func(state bool) bool {
		if state {
			m.FDC.SelectDrive(1)
		}
		return false
	})
	m.CRU.RegisterOutput(cruFDCSideSelect, func(state bool) bool {
		side := 0
		if state {
			side = 1
		}
		m.FDC.SelectSide(side)
		return false
	})

	m.CPU = cpu.New(m.Memory, m.CRU, m.PSI, m.run, m.log)

	m.Disassembler = disassembly.New(m.Memory)
	m.Breakpoints = debugger.NewBreakpoints()
	m.Watches = debugger.NewWatches(m.Memory.Peek)
	m.Conditions = debugger.NewConditions()
	m.Debugger = debugger.NewTable(cpuRegisters{m.CPU}, m.Breakpoints, m.Watches, m.Conditions)

	return m
}

// CRU bit assignments for the disk controller card. The card answers at
// R12 = 0x1100 and the CPU addresses CRU bit R12>>1, so the select bit is
// fabric bit 0x880, followed by two drive selects (0x881, 0x882) and the
// side select (0x883).
const (
	cruDeviceSelect     = 0x1100 >> 1
	cruFDCDriveSelect0  = cruDeviceSelect + 1
	cruFDCDriveSelect1  = cruDeviceSelect + 2
	cruFDCSideSelect    = cruDeviceSelect + 3
)

// onTimerExpire is the TMS9901's countdown-timer callback. Its body is
// empty: expiry has no effect beyond the timer interrupt line that
// TMS9901.ExpireTimer asserts, and no cassette modem is notified.
func (m *Machine) onTimerExpire() {}

// Halt records a fatal error from the CPU loop and clears the run flag.
// Every component that returns an error up through CPU.Step funnels
// through this single path rather than each caller deciding separately
// whether an error is fatal.
func (m *Machine) Halt(err error) {
	m.halted = err
	m.run.Stop()
}

// Halted reports the error Halt was last called with, or nil if the
// machine is not halted.
func (m *Machine) Halted() error {
	return m.halted
}

// Run drives the CPU loop, raising the VDP frame interrupt on a
// real-time ticker at the configured refresh rate and honoring the
// TMS9901's programmable timer in between instruction boundaries. It
// returns when Halt is called or the run flag is otherwise cleared.
func (m *Machine) Run() error {
	frameInterval := time.Second / time.Duration(m.frameRate)
	frameTicker := time.NewTicker(frameInterval)
	defer frameTicker.Stop()

	for m.run.Running() {
		select {
		case <-frameTicker.C:
			m.VDP.RaiseFrameInterrupt()
		default:
		}

		m.pollTimer()
		m.Disassembler.MarkExecuted(m.CPU.PC)

		if err := m.CPU.Step(); err != nil {
			m.Halt(err)
			return err
		}

		if m.Breakpoints.Hit(m.CPU.PC) {
			m.run.Stop()
		}
	}
	return m.halted
}

// pollTimer re-arms the deadline whenever the programmed period
// changes and fires ExpireTimer once real time has passed it,
// re-arming for the next period the same way the real chip free-runs
// until disabled or reprogrammed.
func (m *Machine) pollTimer() {
	period, running := m.PSI.TimerPeriod()
	if !running {
		m.timerPeriod = 0
		return
	}
	now := time.Now()
	if period != m.timerPeriod || m.timerDeadline.IsZero() {
		m.timerPeriod = period
		m.timerDeadline = now.Add(period)
		return
	}
	if now.After(m.timerDeadline) {
		m.PSI.ExpireTimer()
		m.timerDeadline = now.Add(period)
	}
}

// Reset performs the power-on BLWP @0 and clears any halted state.
func (m *Machine) Reset() error {
	m.halted = nil
	m.run.Start()
	return m.CPU.Reset()
}

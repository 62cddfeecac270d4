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

// Package tms9901 implements the programmable system interface: a
// two-mode (interrupt/timer) peripheral with masked interrupts, a
// clock-derived countdown timer, and priority encoding, all addressed
// through the CRU fabric.
package tms9901

import (
	"time"

	"github.com/mburkley/mltt-sub000/hardware/cru"
)

// Mode selects what CRU bits 1-14 mean.
type Mode int

const (
	ModeInterrupt Mode = iota
	ModeTimer
)

// IRQLine identifies the hard-wired CRU bits used by the console.
const (
	BitMode      = 0
	BitIRQLevel1 = 1
	BitIRQTimer  = 3
	numPins      = 15 // bits 1..15, indexed 0..14 below
)

// TMS9901 is the programmable system interface peripheral.
type TMS9901 struct {
	base uint16 // CRU base address this chip is mapped at (normally 0)

	mode Mode

	// pins backs bits 1-15. In interrupt mode each is an enable flag; in
	// timer mode bits 0-13 of this array hold the timer reload register,
	// one bit per CRU line, since the real chip reuses the same latches
	// for both purposes.
	pins [numPins]bool

	// enabledSnapshot preserves the interrupt-enable state of pins while
	// timer mode is borrowing the latches for the timer register.
	enabledSnapshot [numPins]bool

	// lineState is the externally-asserted request state of each
	// interrupt line, set by Assert/Clear (in this console, only the VDP
	// frame interrupt asserts a line).
	lineState [numPins]bool

	timerCurrent uint16
	timerRunning bool

	onTimerExpire func()
}

// New creates a TMS9901 mapped at the given CRU base address (0 on a
// stock TI-99/4A). onTimerExpire, which may be nil, is invoked every
// time the countdown timer reaches zero, in addition to the emulator
// asserting the timer interrupt line.
func New(base uint16, onTimerExpire func()) *TMS9901 {
	return &TMS9901{base: base, onTimerExpire: onTimerExpire}
}

// AttachCRU wires the chip's CRU bits 0-15 into the fabric.
func (t *TMS9901) AttachCRU(f *cru.Fabric) {
	f.RegisterOutput(int(t.base)+BitMode, func(state bool) bool {
		t.setMode(state)
		return true
	})
	for i := 0; i < numPins; i++ {
		bit := i // capture
		f.RegisterOutput(int(t.base)+1+bit, func(state bool) bool {
			t.writePin(bit, state)
			return true
		})
		f.RegisterRead(int(t.base)+1+bit, func(stored bool) bool {
			return t.readPin(bit)
		})
	}
}

func (t *TMS9901) setMode(timerMode bool) {
	newMode := ModeInterrupt
	if timerMode {
		newMode = ModeTimer
	}
	if newMode == t.mode {
		return
	}
	if newMode == ModeTimer {
		t.enabledSnapshot = t.pins
	} else {
		t.pins = t.enabledSnapshot
		t.timerRunning = false
	}
	t.mode = newMode
}

// writePin handles a CRU output to bit 1+n. Writing 1 re-enables (and,
// in interrupt mode, clears any pending state on that line); writing 0
// disables.
func (t *TMS9901) writePin(n int, state bool) {
	t.pins[n] = state
	if t.mode == ModeInterrupt {
		if state {
			t.lineState[n] = false
		}
		return
	}

	// Timer mode: bits 0-13 of pins form the 14-bit reload register,
	// LSB at bit 1 (n==0).
	if n < 14 {
		t.timerCurrent = t.timerRegister()
		if t.timerCurrent != 0 {
			t.timerRunning = true
		} else {
			t.timerRunning = false
		}
	}
}

func (t *TMS9901) timerRegister() uint16 {
	var v uint16
	for i := 0; i < 14; i++ {
		if t.pins[i] {
			v |= 1 << uint(i)
		}
	}
	return v
}

func (t *TMS9901) readPin(n int) bool {
	if t.mode == ModeTimer && n < 14 {
		return (t.timerCurrent>>uint(n))&1 == 1
	}
	return t.lineState[n]
}

// Assert raises an interrupt request line (1-15), called by a
// peripheral (in this console, the VDP frame interrupt).
func (t *TMS9901) Assert(bit int) {
	if bit < 1 || bit > numPins {
		return
	}
	t.lineState[bit-1] = true
}

// Clear lowers an interrupt request line.
func (t *TMS9901) Clear(bit int) {
	if bit < 1 || bit > numPins {
		return
	}
	t.lineState[bit-1] = false
}

// PendingLevel implements cpu.Interrupts. The TI-99/4A hard-wires every
// TMS9901 request onto CPU interrupt level 1, so the priority encoder's
// job is only to decide whether *any* enabled, asserted line exists.
func (t *TMS9901) PendingLevel() int {
	if t.interruptLevel(0x0F) == 1 {
		return 1
	}
	return 0
}

// interruptLevel walks bits 1-15 low to high looking for an asserted,
// enabled line and returns 1 if one is found and the CPU's current mask
// permits level 1, else -1.
func (t *TMS9901) interruptLevel(cpuMask uint8) int {
	for i := 0; i < numPins; i++ {
		if t.mode == ModeInterrupt && t.pins[i] && t.lineState[i] {
			if 1 <= cpuMask {
				return 1
			}
			return -1
		}
	}
	return -1
}

// TimerPeriod returns the current countdown period and whether the
// timer is running. Period in nanoseconds = 1000*64*value/3, the
// decrementer's real clock-divided rate.
func (t *TMS9901) TimerPeriod() (time.Duration, bool) {
	if !t.timerRunning || t.timerCurrent == 0 {
		return 0, false
	}
	ns := int64(1000) * 64 * int64(t.timerCurrent) / 3
	return time.Duration(ns) * time.Nanosecond, true
}

// ExpireTimer is called by the scheduler when TimerPeriod has elapsed.
// It asserts the timer interrupt line and calls onTimerExpire if one was
// given; it does not notify a cassette modem itself. The timer stays
// armed for the same period (a non-zero
// 14-bit timer value is a recurring source until reprogrammed or
// disabled).
func (t *TMS9901) ExpireTimer() {
	if !t.timerRunning {
		return
	}
	t.Assert(BitIRQTimer)
	if t.onTimerExpire != nil {
		t.onTimerExpire()
	}
}

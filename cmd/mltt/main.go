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

// Command mltt wires a Machine to host files and runs it. It is
// intentionally thin: flag parsing, file loading, signal handling, a
// raw-mode stdin keyboard source when stdin is a terminal, and a single
// pass through the debugger command table when -cmd is given. An
// interactive debugger REPL -- reading commands from stdin in a loop --
// is out of scope; this binary exists to prove the wiring, not to
// replace a front end.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/mburkley/mltt-sub000/disk"
	"github.com/mburkley/mltt-sub000/hardware"
	"github.com/mburkley/mltt-sub000/hardware/cassette"
	cassettewav "github.com/mburkley/mltt-sub000/hardware/cassette/wav"
	"github.com/mburkley/mltt-sub000/hardware/input"
	"github.com/mburkley/mltt-sub000/hardware/memory"
	"github.com/mburkley/mltt-sub000/logger"
)

func main() {
	var (
		consolePath = flag.String("console-rom", "", "path to the console ROM image")
		gromPath    = flag.String("grom", "", "path to the console GROM image")
		devicePath  = flag.String("device-rom", "", "path to the disk controller DSR ROM image")
		cartPath    = flag.String("cartridge", "", "path to a cartridge ROM image")
		disk0Path   = flag.String("disk1", "", "path to a disk sector-dump image for drive 1")
		cassPath    = flag.String("cassette", "", "path to a WAV file to use as cassette input")
		sampleRate  = flag.Int("sample-rate", 44100, "sound and cassette sample rate in Hz")
		logCap      = flag.Int("log-capacity", 4096, "number of log entries to retain")
		runCommand  = flag.String("cmd", "", "run one debugger command (e.g. \"status\") and exit without starting the CPU")
	)
	flag.Parse()

	if err := run(options{
		consolePath: *consolePath,
		gromPath:    *gromPath,
		devicePath:  *devicePath,
		cartPath:    *cartPath,
		disk0Path:   *disk0Path,
		cassPath:    *cassPath,
		sampleRate:  *sampleRate,
		logCap:      *logCap,
		runCommand:  *runCommand,
	}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type options struct {
	consolePath, gromPath, devicePath, cartPath, disk0Path, cassPath string
	sampleRate, logCap                                               int
	runCommand                                                       string
}

func run(o options) error {
	consoleROM, err := os.ReadFile(o.consolePath)
	if err != nil {
		return fmt.Errorf("console ROM: %w", err)
	}
	gromImage, err := readOptional(o.gromPath)
	if err != nil {
		return fmt.Errorf("GROM image: %w", err)
	}
	deviceROM, err := readOptional(o.devicePath)
	if err != nil {
		return fmt.Errorf("device ROM: %w", err)
	}

	log := logger.NewLogger(o.logCap)

	var (
		keys        input.KeySource
		restoreTerm = func() {}
	)
	if o.runCommand == "" && stdinIsTerminal() {
		tk, restore, err := newTerminalKeys(os.Stdin)
		if err != nil {
			return fmt.Errorf("terminal keyboard: %w", err)
		}
		keys = tk
		restoreTerm = restore
	}
	defer restoreTerm()

	m := hardware.New(hardware.Config{
		ConsoleROM: consoleROM,
		GROMImage:  gromImage,
		DeviceROM:  deviceROM,
		SampleRate: o.sampleRate,
		KeySource:  keys,
		Log:        log,
	})

	if o.cartPath != "" {
		cartImage, err := os.ReadFile(o.cartPath)
		if err != nil {
			return fmt.Errorf("cartridge: %w", err)
		}
		m.Memory.AttachCartridge(memory.NewCartridge(cartImage))
	}

	if o.disk0Path != "" {
		volume, err := loadVolume(o.disk0Path)
		if err != nil {
			return fmt.Errorf("disk1: %w", err)
		}
		m.FDC.Attach(0, volume)
	}

	if o.cassPath != "" {
		if err := attachCassette(m, o.cassPath, o.sampleRate); err != nil {
			return fmt.Errorf("cassette: %w", err)
		}
	}

	if o.runCommand != "" {
		out, err := dispatchOne(m, o.runCommand)
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	go func() {
		<-sigs
		m.Halt(nil)
	}()

	if err := m.Reset(); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	if err := m.Run(); err != nil {
		return fmt.Errorf("halted: %w", err)
	}
	return nil
}

// dispatchOne splits a single command line ("break 6000") and runs it
// through the Machine's debugger command table, the same table a real
// interactive front end would drive from a read loop.
func dispatchOne(m *hardware.Machine, line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", fmt.Errorf("empty command")
	}
	return m.Debugger.Dispatch(fields[0], fields[1:])
}

// stdinIsTerminal reports whether stdin is a character device, the same
// check a real front end would make before trying to put it into cbreak
// mode -- running with stdin redirected from a file or a pipe should not
// attempt to reconfigure it.
func stdinIsTerminal() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

func readOptional(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	return os.ReadFile(path)
}

func loadVolume(path string) (*disk.Volume, error) {
	image, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return disk.LoadVolume(image)
}

// attachCassette reads a WAV file and decodes one cassette record from
// it once, up front, returning any read or decode error. The decoded
// bytes are discarded: they are not connected to the CRU or to the
// running program.
func attachCassette(m *hardware.Machine, path string, sampleRate int) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	samples, rate, err := cassettewav.ReadAll(f)
	if err != nil {
		return err
	}
	if rate != 0 {
		sampleRate = rate
	}

	modem := cassette.NewModem(sampleRate)
	data, err := modem.DecodeRecord(samples)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	_ = data // decoded only to check the recording
	return nil
}

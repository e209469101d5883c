// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/ls8/cpu"
	"github.com/ezrec/ls8/internal"
)

const (
	PROGRAM_BASE = 0 // Load address of programs.
)

var _emulator_defines = map[string]string{
	"PROGRAM_BASE": fmt.Sprintf("%v", PROGRAM_BASE),
}

// Emulator state. CPU + program listing + settings.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently running program listing.
	Config   Config       // Emulator settings.
}

// NewEmulator creates a new emulator, with PRN output sent to output.
func NewEmulator(output io.Writer) (emu *Emulator) {
	emu = &Emulator{
		Cpu:     cpu.NewCpu(output),
		Program: &cpu.Program{},
		Config:  DefaultConfig,
	}

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Cpu.Defines(),
	)
}

// Configure applies a configuration to the emulator.
func (emu *Emulator) Configure(config Config) {
	emu.Config = config
	emu.Verbose = config.Verbose
}

// Reset the CPU, and load the program into memory.
func (emu *Emulator) Reset() (err error) {
	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Strict = emu.Config.Strict

	err = emu.Cpu.Load(emu.Program.Binary())
	if err != nil {
		return
	}

	if emu.Verbose {
		log.Printf("emulator: reset, %v statements", len(emu.Program.Statements))
	}

	return
}

// Ticks returns the total ticks since a reset.
func (emu *Emulator) Ticks() int {
	return emu.Cpu.Ticks
}

// Pc returns current program counter.
func (emu *Emulator) Pc() int {
	return int(emu.Cpu.Pc)
}

// LineNo returns the current line number for the executing opcode.
func (emu *Emulator) LineNo() int {
	dbg := emu.Program.Debug(emu.Cpu.Pc)
	if dbg.Statement == nil {
		return 0
	}

	return dbg.LineNo
}

// Tick performs a single tick of the emulator.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	if emu.Cpu.Halted {
		done = true
		return
	}

	pc := emu.Cpu.Pc
	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{Pc: pc, LineNo: lineno, Err: err}
		}
	}()

	if emu.Config.TickLimit > 0 && emu.Cpu.Ticks >= emu.Config.TickLimit {
		err = ErrTickLimit
		return
	}

	err = emu.Cpu.Tick()
	if errors.Is(err, cpu.ErrHalted) {
		err = nil
	}
	if err != nil {
		return
	}

	done = emu.Cpu.Halted
	return
}

// Run ticks the emulator until the program halts.
func (emu *Emulator) Run() (err error) {
	for {
		var done bool
		done, err = emu.Tick()
		if err != nil || done {
			return
		}
	}
}

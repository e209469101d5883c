// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/ezrec/ls8/cpu"
	"github.com/ezrec/ls8/emulator"
	"github.com/ezrec/ls8/internal"
)

var (
	errNoProgram = errors.New("no program given")
	errArguments = errors.New("unknown arguments")
	errExclusive = errors.New("-c and -b are exclusive")
)

func main() {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)

	err := run(flags, os.Args[1:], os.Stdout)
	if errors.Is(err, errNoProgram) || errors.Is(err, errArguments) || errors.Is(err, errExclusive) {
		fmt.Fprintf(flags.Output(), "%v: %v\n", os.Args[0], err)
		flags.Usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal(err)
	}
}

// run parses args into flags, then assembles or loads a program and
// executes it, with PRN output to stdout.
func run(flags *flag.FlagSet, args []string, stdout io.Writer) (err error) {
	var compile string
	var binary string
	var config string
	var save bool
	var strict bool
	var limit int
	var defines bool
	var verbose bool

	flags.StringVar(&compile, "c", "", ".asm file to compile")
	flags.StringVar(&binary, "b", "", ".ls8 binary listing to run")
	flags.StringVar(&config, "f", "", ".yaml configuration file")
	flags.BoolVar(&save, "s", false, "Write binary listing to stdout, do not execute")
	flags.BoolVar(&strict, "strict", false, "Unknown opcodes are fatal")
	flags.IntVar(&limit, "limit", 0, "Maximum ticks to execute, 0 for unlimited")
	flags.BoolVar(&defines, "D", false, "List assembler predefines and exit")
	flags.BoolVar(&verbose, "v", false, "Verbose mode")

	err = flags.Parse(args)
	if err != nil {
		return
	}

	// ls8 file.ls8
	if flags.NArg() == 1 && len(binary) == 0 {
		binary = flags.Arg(0)
	} else if flags.NArg() != 0 {
		err = fmt.Errorf("%w: %v", errArguments, flags.Args())
		return
	}

	if len(compile) != 0 && len(binary) != 0 {
		err = errExclusive
		return
	}

	if len(compile) == 0 && len(binary) == 0 && !defines {
		err = errNoProgram
		return
	}

	emu := emulator.NewEmulator(stdout)

	settings := emulator.DefaultConfig
	if len(config) != 0 {
		var inf *os.File
		inf, err = os.Open(config)
		if err != nil {
			return
		}
		settings, err = emulator.ReadConfig(inf)
		inf.Close()
		if err != nil {
			err = fmt.Errorf("%v: %w", config, err)
			return
		}
	}

	// Flags override the configuration file.
	flags.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "strict":
			settings.Strict = strict
		case "limit":
			settings.TickLimit = limit
		case "v":
			settings.Verbose = verbose
		}
	})
	emu.Configure(settings)

	if defines {
		for key, value := range internal.IterSeq2Sorted(emu.Defines()) {
			fmt.Fprintf(stdout, "%v=%v\n", key, value)
		}
		return
	}

	prog := &cpu.Program{}

	// Compile a new instruction stream.
	if len(compile) != 0 {
		var inf *os.File
		inf, err = os.Open(compile)
		if err != nil {
			return
		}
		defer inf.Close()

		asm := &cpu.Assembler{Verbose: settings.Verbose}
		for key, value := range emu.Defines() {
			asm.Predefine(key, value)
		}
		prog, err = asm.Parse(inf)
		if err != nil {
			err = fmt.Errorf("%v: %w", compile, err)
			return
		}
	}

	// Load an existing binary listing.
	if len(binary) != 0 {
		var inf *os.File
		inf, err = os.Open(binary)
		if err != nil {
			return
		}
		defer inf.Close()

		prog, err = cpu.ReadBinary(inf)
		if err != nil {
			err = fmt.Errorf("%v: %w", binary, err)
			return
		}
	}

	if save {
		err = prog.WriteBinary(stdout)
		return
	}

	emu.Program = prog

	err = emu.Reset()
	if err != nil {
		return
	}

	err = emu.Run()
	return
}

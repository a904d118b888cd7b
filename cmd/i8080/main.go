// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"

	"github.com/ezrec/i8080/cpu"
	"github.com/ezrec/i8080/emulator"
)

func main() {
	var compile string
	var binary string
	var origin uint
	var memory int
	var undocumented bool
	var cpm bool
	var input string
	var output string
	var loadState string
	var saveState string
	var verbose bool

	flag.StringVar(&compile, "c", "", ".asm file to assemble and run")
	flag.StringVar(&binary, "b", "", "binary image to run")
	flag.UintVar(&origin, "org", emulator.CPM_TPA, "Load address of the -b image")
	flag.IntVar(&memory, "m", 0, "Memory size in bytes (0 for 64KiB)")
	flag.BoolVar(&undocumented, "u", false, "Enable the undocumented opcodes")
	flag.BoolVar(&cpm, "cpm", false, "Trap CP/M BDOS calls and warm boot")
	flag.StringVar(&input, "i", "-", "Console input")
	flag.StringVar(&output, "o", "-", "Console output")
	flag.StringVar(&loadState, "load-state", "", "Resume from a saved state")
	flag.StringVar(&saveState, "save-state", "", "Save the final state")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	log := logrus.New()
	log.Formatter = &logrus.TextFormatter{
		DisableTimestamp: true,
		DisableQuote:     true,
	}
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	if origin > 0xffff {
		log.Fatalf("-org %#x: out of range", origin)
	}

	emu, err := emulator.NewEmulator(cpu.Config{MemorySize: memory, Undocumented: undocumented})
	if err != nil {
		log.Fatal(err)
	}
	emu.Log = log
	emu.Verbose = verbose
	emu.CPM = cpm

	switch {
	case len(compile) != 0:
		inf, err := os.Open(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		defer inf.Close()

		asm := emu.Assembler()
		emu.Program, err = asm.Parse(inf)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
	case len(binary) != 0:
		data, err := os.ReadFile(binary)
		if err != nil {
			log.Fatalf("%v: %v", binary, err)
		}
		emu.Program = &cpu.Program{
			Opcodes: []cpu.Opcode{{Address: int(origin), Bytes: data}},
		}
	}

	err = emu.Reset()
	if err != nil {
		log.Fatal(err)
	}

	if len(loadState) != 0 {
		inf, err := os.Open(loadState)
		if err != nil {
			log.Fatalf("%v: %v", loadState, err)
		}
		err = emu.LoadState(inf)
		inf.Close()
		if err != nil {
			log.Fatalf("%v: %v", loadState, err)
		}
	}

	if input == "-" {
		emu.Tape.Input = os.Stdin
	} else {
		inf, err := os.Open(input)
		if err != nil {
			log.Fatalf("%v: %v", input, err)
		}
		defer inf.Close()
		emu.Tape.Input = inf
	}

	if output == "-" {
		emu.Tape.Output = os.Stdout
	} else {
		ouf, err := os.Create(output)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		defer ouf.Close()
		emu.Tape.Output = ouf
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runErr := emu.Run(ctx)

	if len(saveState) != 0 {
		ouf, err := os.Create(saveState)
		if err != nil {
			log.Fatalf("%v: %v", saveState, err)
		}
		err = emu.SaveState(ouf)
		if err == nil {
			err = ouf.Close()
		}
		if err != nil {
			log.Fatalf("%v: %v", saveState, err)
		}
	}

	log.WithField("cycles", emu.Ticks()).Debug(emu.Cpu.String())

	if runErr != nil {
		log.Fatal(runErr)
	}
}

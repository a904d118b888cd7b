// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"errors"
	"fmt"
	"iter"
	"maps"

	"github.com/sirupsen/logrus"

	"github.com/ezrec/i8080/cpu"
	"github.com/ezrec/i8080/internal"
	"github.com/ezrec/i8080/io"
)

const (
	CPM_WBOOT = 0x0000 // Warm boot vector; reaching it ends the program.
	CPM_BDOS  = 0x0005 // BDOS entry point.
	CPM_TPA   = 0x0100 // Load address of CP/M programs.

	PORT_CON_STATUS   = 0x00 // Console status.
	PORT_CON_DATA     = 0x01 // Console data.
	PORT_SHIFT_AMOUNT = 0x02 // Shift register amount.
	PORT_SHIFT_RESULT = 0x03 // Shift register result.
	PORT_SHIFT_DATA   = 0x04 // Shift register data.
	PORT_AUX_STATUS   = 0x10 // Auxiliary ring status.
	PORT_AUX_DATA     = 0x11 // Auxiliary ring data.

	CHECKPOINT_LIMIT = 64 // Checkpoints kept for Rewind.
)

var _emulator_defines = map[string]string{
	"WBOOT": fmt.Sprintf("%v", CPM_WBOOT),
	"BDOS":  fmt.Sprintf("%v", CPM_BDOS),
	"TPA":   fmt.Sprintf("%v", CPM_TPA),
}

// Emulator state. CPU + port devices + the running program listing.
type Emulator struct {
	Verbose  bool               // If set, enables verbose logging.
	Log      logrus.FieldLogger // Logger shared with the CPU and bus.
	*cpu.Cpu                    // Reference to the CPU simulation.
	Program  *cpu.Program       // Reference to the currently running program listing.

	Bus     *io.Bus    // Port bus.
	Tape    io.Tape    // Console on PORT_CON_*.
	Aux     io.Ring    // Auxiliary reader/punch ring on PORT_AUX_*.
	Shifter io.Shifter // Shift register on PORT_SHIFT_*.

	CPM                bool   // Trap BDOS calls and warm boot.
	CheckpointInterval uint64 // Cycles between automatic checkpoints; 0 disables them.

	history        *internal.Stack[*cpu.Snapshot]
	lastCheckpoint uint64
}

// NewEmulator creates a new emulator.
func NewEmulator(config cpu.Config) (emu *Emulator, err error) {
	cp, err := cpu.NewCpu(config)
	if err != nil {
		return
	}

	emu = &Emulator{
		Log:     logrus.StandardLogger(),
		Cpu:     cp,
		Program: &cpu.Program{},
		Bus:     io.NewBus(),
		history: internal.NewStack[*cpu.Snapshot](CHECKPOINT_LIMIT),
	}

	err = emu.Bus.Attach("CON", &emu.Tape, PORT_CON_STATUS, PORT_CON_DATA)
	if err != nil {
		return
	}
	err = emu.Bus.Attach("SHIFT", &emu.Shifter, PORT_SHIFT_AMOUNT, PORT_SHIFT_RESULT, PORT_SHIFT_DATA)
	if err != nil {
		return
	}
	err = emu.Bus.Attach("AUX", &emu.Aux, PORT_AUX_STATUS, PORT_AUX_DATA)
	if err != nil {
		return
	}

	emu.Cpu.Ports = emu.Bus

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Bus.Defines(),
	)
}

// Assembler returns an assembler for the emulator's instruction set, with
// the emulator defines predefined.
func (emu *Emulator) Assembler() (asm *cpu.Assembler) {
	asm = &cpu.Assembler{
		Verbose: emu.Verbose,
		Table:   emu.Cpu.Table(),
	}
	for name, value := range emu.Defines() {
		asm.Predefine(name, value)
	}
	return
}

// Reset the emulator state, and load the program.
//   - The CPU is reset and memory cleared.
//   - The program image is loaded.
//   - In CP/M mode, the warm boot and BDOS vectors are installed, SP is
//     set below the top of memory and execution starts at CPM_TPA.
//   - Otherwise execution starts at the lowest program address.
func (emu *Emulator) Reset() (err error) {
	emu.Cpu.Reset()
	emu.Cpu.Memory.Reset()
	emu.Tape.Rewind()
	emu.Aux.Rewind()
	emu.Shifter = io.Shifter{}
	emu.history.Reset()
	emu.lastCheckpoint = 0

	base, data := emu.Program.Image()
	err = emu.Cpu.Load(data, base)
	if err != nil {
		return
	}
	emu.Cpu.PC = base

	if emu.CPM {
		err = emu.installCPM()
		if err != nil {
			return
		}
	}

	return
}

// installCPM writes the page zero vectors a CP/M program expects.
func (emu *Emulator) installCPM() (err error) {
	top := uint16(emu.Cpu.Memory.Size() - 1)

	// HLT at warm boot, RET at BDOS, with the BDOS address word
	// holding the top of usable memory.
	err = emu.Cpu.Load([]byte{0x76}, CPM_WBOOT)
	if err != nil {
		return
	}
	err = emu.Cpu.Load([]byte{0xc9, uint8(top), uint8(top >> 8)}, CPM_BDOS)
	if err != nil {
		return
	}

	emu.Cpu.SP = top &^ 0xff
	emu.Cpu.PC = CPM_TPA
	return
}

// Ticks returns the total cycles since a reset.
func (emu *Emulator) Ticks() uint64 {
	return emu.Cpu.Cycles
}

// LineNo returns the current line number for the executing opcode.
func (emu *Emulator) LineNo() int {
	dbg := emu.Program.Debug(emu.Cpu.PC)
	if dbg.Opcode == nil {
		return 0
	}
	return dbg.LineNo
}

// Tick performs a single instruction of the emulator. done is set once the
// CPU halts or, in CP/M mode, the program warm boots.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Log = emu.Log
	emu.Bus.Verbose = emu.Verbose
	emu.Bus.Log = emu.Log

	pc := emu.Cpu.PC
	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{Address: pc, LineNo: lineno, Err: err}
		}
	}()

	if emu.CPM && emu.Cpu.Status == cpu.STATUS_RUNNING {
		switch pc {
		case CPM_WBOOT:
			done = true
			return
		case CPM_BDOS:
			done, err = emu.bdos()
			return
		}
	}

	_, status, err := emu.Cpu.Step()
	if errors.Is(err, cpu.ErrHalted) {
		err = nil
		done = true
		return
	}
	if err != nil {
		return
	}

	if status == cpu.STATUS_HALTED {
		done = true
	}

	if emu.CheckpointInterval > 0 && emu.Cpu.Cycles-emu.lastCheckpoint >= emu.CheckpointInterval {
		emu.Checkpoint()
	}

	return
}

// Checkpoint records the CPU state for Rewind. Only the CHECKPOINT_LIMIT
// most recent checkpoints are kept.
func (emu *Emulator) Checkpoint() {
	emu.history.Push(emu.Cpu.Snapshot())
	emu.lastCheckpoint = emu.Cpu.Cycles
}

// Checkpoints returns the number of checkpoints available to Rewind.
func (emu *Emulator) Checkpoints() int {
	return emu.history.Len()
}

// Rewind restores the CPU to the most recent checkpoint, and discards it.
// Port devices are not rewound.
func (emu *Emulator) Rewind() (err error) {
	snap, ok := emu.history.Pop()
	if !ok {
		err = ErrCheckpointEmpty
		return
	}

	err = emu.Cpu.Restore(snap)
	if err != nil {
		return
	}
	emu.lastCheckpoint = emu.Cpu.Cycles

	if emu.Verbose {
		emu.Log.WithField("pc", fmt.Sprintf("%04x", emu.Cpu.PC)).Infof("rewound to cycle %d", emu.Cpu.Cycles)
	}

	return
}

package cpu

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Status is the execution state of the CPU.
type Status int

//go:generate go tool stringer -linecomment -type=Status
const (
	STATUS_RUNNING = Status(0) // running
	STATUS_HALTED  = Status(1) // halted
	STATUS_FAULTED = Status(2) // faulted
)

const (
	NO_INTERRUPT = -1 // No interrupt pending.
)

// Ports is the I/O port space reached by the IN and OUT instructions.
type Ports interface {
	In(port uint8) (value uint8, err error)
	Out(port uint8, value uint8) (err error)
}

// Config selects the memory size and instruction set of a CPU.
type Config struct {
	MemorySize   int  // Address space in bytes; 0 selects the full 64KiB.
	Undocumented bool // Bind the undocumented opcodes to their documented twins.
}

// Cpu is the 8080 execution core: register file, flags, memory and the
// fetch/decode/execute loop. A Cpu is owned by the goroutine driving it.
type Cpu struct {
	Verbose bool               // Set to enable per-instruction trace logging.
	Log     logrus.FieldLogger // Trace and fault logger.

	Registers
	Flags  Flags   // Status flags.
	Memory *Memory // Address space.
	Ports  Ports   // I/O ports for IN and OUT; nil faults on either.

	InterruptEnable bool   // INTE flip-flop.
	Status          Status // Execution state.
	Fault           error  // Cause of STATUS_FAULTED.
	Cycles          uint64 // Cycles consumed since reset.

	interruptDelay bool // EI takes effect after the next instruction.
	pending        int  // Pending RST vector, or NO_INTERRUPT.

	table *Table
}

// NewCpu creates a CPU in its reset state.
func NewCpu(config Config) (cpu *Cpu, err error) {
	size := config.MemorySize
	if size == 0 {
		size = MEMORY_SIZE_MAX
	}

	mem, err := NewMemory(size)
	if err != nil {
		return
	}

	cpu = &Cpu{
		Log:    logrus.StandardLogger(),
		Memory: mem,
		table:  NewTable(config),
	}
	cpu.Reset()

	return
}

// Table returns the instruction table the CPU dispatches through.
func (cpu *Cpu) Table() *Table {
	return cpu.table
}

// Reset the CPU state.
// - Zeros all registers, SP and PC.
// - Clears all flags and disables interrupts.
// - Drops any pending interrupt.
// - Returns to STATUS_RUNNING and zeros the cycle counter.
//
// Memory is left as is.
func (cpu *Cpu) Reset() {
	cpu.Registers = Registers{}
	cpu.Flags = Flags{}
	cpu.InterruptEnable = false
	cpu.interruptDelay = false
	cpu.pending = NO_INTERRUPT
	cpu.Status = STATUS_RUNNING
	cpu.Fault = nil
	cpu.Cycles = 0
}

// Load installs a program image into memory.
func (cpu *Cpu) Load(data []byte, base uint16) (err error) {
	return cpu.Memory.Load(data, base)
}

// Interrupt latches an RST 0-7 request. It is acknowledged at the start of
// the next Step once interrupts are enabled.
func (cpu *Cpu) Interrupt(rst uint8) (err error) {
	if rst > 7 {
		err = ErrInterruptVector
		return
	}

	cpu.pending = int(rst)
	return
}

// Pending returns the latched interrupt vector, if any.
func (cpu *Cpu) Pending() (rst uint8, ok bool) {
	if cpu.pending == NO_INTERRUPT {
		return
	}
	return uint8(cpu.pending), true
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() string {
	return fmt.Sprintf("%v F=%v INTE=%v %v cycles=%d", cpu.Registers, cpu.Flags, cpu.InterruptEnable, cpu.Status, cpu.Cycles)
}

// Step executes one instruction, or acknowledges one pending interrupt,
// and returns the cycles it consumed.
//
// A halted or faulted CPU refuses to step and is left untouched.
func (cpu *Cpu) Step() (cycles int, status Status, err error) {
	switch cpu.Status {
	case STATUS_HALTED:
		return 0, cpu.Status, ErrHalted
	case STATUS_FAULTED:
		return 0, cpu.Status, errors.Join(ErrFaulted, cpu.Fault)
	}

	if cpu.pending != NO_INTERRUPT && cpu.InterruptEnable && !cpu.interruptDelay {
		cycles, err = cpu.acknowledge()
		return cycles, cpu.Status, err
	}
	cpu.interruptDelay = false

	pc := cpu.PC
	opcode, err := cpu.Memory.Read8(pc)
	if err != nil {
		return 0, cpu.fault(pc, Unimplemented(0), err), cpu.Fault
	}

	in := cpu.table.Lookup(opcode)
	if !in.Implemented() {
		err = &ErrOpcode{Opcode: opcode, Address: pc}
		return 0, cpu.fault(pc, in, err), cpu.Fault
	}

	op := Operand{
		Opcode: opcode,
		Next:   pc + uint16(in.Length),
	}
	op.Data, err = cpu.operand(pc, in.Length)
	if err != nil {
		return 0, cpu.fault(pc, in, err), cpu.Fault
	}

	priorRegisters := cpu.Registers
	priorFlags := cpu.Flags
	priorInte, priorDelay := cpu.InterruptEnable, cpu.interruptDelay

	fl, err := in.Handler(cpu, &op)
	if err != nil {
		cpu.Registers = priorRegisters
		cpu.Flags = priorFlags
		cpu.InterruptEnable, cpu.interruptDelay = priorInte, priorDelay
		return 0, cpu.fault(pc, in, err), cpu.Fault
	}

	cpu.Flags = priorFlags.Merge(fl, in.Affects)
	if op.branch {
		cpu.PC = op.target
	} else {
		cpu.PC = op.Next
	}

	cycles = in.Cycles + op.extra
	cpu.Cycles += uint64(cycles)

	if cpu.Verbose {
		cpu.Log.WithFields(logrus.Fields{
			"pc":     fmt.Sprintf("%04x", pc),
			"op":     fmt.Sprintf("%02x", opcode),
			"cycles": cycles,
		}).Debugf("%-12s %v F=%v", in.Format(op.Data), cpu.Registers, cpu.Flags)
	}

	return cycles, cpu.Status, nil
}

// Run steps until the CPU halts or faults, or ctx is done. Cancellation is
// only observed between instructions.
func (cpu *Cpu) Run(ctx context.Context) (cycles uint64, err error) {
	done := ctx.Done()
	for {
		select {
		case <-done:
			err = ctx.Err()
			return
		default:
		}

		var n int
		var status Status
		n, status, err = cpu.Step()
		cycles += uint64(n)
		if err != nil || status != STATUS_RUNNING {
			return
		}
	}
}

// operand fetches the immediate bytes of an instruction at pc.
func (cpu *Cpu) operand(pc uint16, length int) (data uint16, err error) {
	if length == 1 {
		return
	}

	end := int(pc) + length
	if end > cpu.Memory.Size() {
		err = &ErrAddress{Address: cpu.Memory.Size(), Size: cpu.Memory.Size()}
		return
	}

	switch length {
	case 2:
		var d8 uint8
		d8, err = cpu.Memory.Read8(pc + 1)
		data = uint16(d8)
	case 3:
		data, err = cpu.Memory.Read16(pc + 1)
	}
	return
}

// acknowledge services the pending interrupt the way the 8080 does for an
// RST placed on the bus: push PC, jump to rst*8, disable interrupts.
func (cpu *Cpu) acknowledge() (cycles int, err error) {
	rst := uint8(cpu.pending)
	in := cpu.table.Lookup(0xc7 | rst<<3)

	err = cpu.push(cpu.PC)
	if err != nil {
		cpu.fault(cpu.PC, in, err)
		err = cpu.Fault
		return
	}

	if cpu.Verbose {
		cpu.Log.WithField("pc", fmt.Sprintf("%04x", cpu.PC)).Debugf("interrupt RST %d", rst)
	}

	cpu.pending = NO_INTERRUPT
	cpu.InterruptEnable = false
	cpu.PC = uint16(rst) << 3

	cycles = in.Cycles
	cpu.Cycles += uint64(cycles)
	return
}

// fault moves the CPU to STATUS_FAULTED, recording the cause.
func (cpu *Cpu) fault(pc uint16, in Instruction, err error) Status {
	cpu.Status = STATUS_FAULTED
	cpu.Fault = &ErrFault{Address: pc, Mnemonic: in.Mnemonic, Err: err}

	if cpu.Verbose {
		cpu.Log.WithField("pc", fmt.Sprintf("%04x", pc)).Warn(cpu.Fault)
	}

	return cpu.Status
}

// load reads a register, or memory at HL for REG_M.
func (cpu *Cpu) load(reg Register) (value uint8, err error) {
	if reg == REG_M {
		return cpu.Memory.Read8(cpu.Pair(PAIR_HL))
	}
	return cpu.Get(reg), nil
}

// store writes a register, or memory at HL for REG_M.
func (cpu *Cpu) store(reg Register, value uint8) (err error) {
	if reg == REG_M {
		return cpu.Memory.Write8(cpu.Pair(PAIR_HL), value)
	}
	cpu.Set(reg, value)
	return
}

// push stores a word below SP. SP only moves if the write lands.
func (cpu *Cpu) push(value uint16) (err error) {
	sp := cpu.SP - 2
	err = cpu.Memory.Write16(sp, value)
	if err != nil {
		return
	}
	cpu.SP = sp
	return
}

// pop loads the word at SP.
func (cpu *Cpu) pop() (value uint16, err error) {
	value, err = cpu.Memory.Read16(cpu.SP)
	if err != nil {
		return
	}
	cpu.SP += 2
	return
}

package emulator

import (
	"github.com/ezrec/i8080/cpu"
	"github.com/ezrec/i8080/io"
)

// BDOS function numbers, passed in C.
const (
	BDOS_SYSTEM_RESET   = 0  // End the program.
	BDOS_CONSOLE_INPUT  = 1  // Read a console byte into A, echoing it.
	BDOS_CONSOLE_OUTPUT = 2  // Write E to the console.
	BDOS_READER_INPUT   = 3  // Read an auxiliary byte into A.
	BDOS_PUNCH_OUTPUT   = 4  // Write E to the auxiliary ring.
	BDOS_DIRECT_IO      = 6  // E=FFH reads the console without echo, otherwise writes E.
	BDOS_PRINT_STRING   = 9  // Write the '$' terminated string at DE.
	BDOS_CONSOLE_STATUS = 11 // A=FFH if console input is ready.
)

// bdos services a call to CPM_BDOS, then returns to the caller.
func (emu *Emulator) bdos() (done bool, err error) {
	c := emu.Cpu
	function := c.C
	var result uint8

	if emu.Verbose {
		emu.Log.WithField("function", function).Debugf("BDOS DE=%04x", c.Pair(cpu.PAIR_DE))
	}

	switch function {
	case BDOS_SYSTEM_RESET:
		done = true
		return
	case BDOS_CONSOLE_INPUT:
		result, err = emu.Tape.In(io.TAPE_DATA)
		if err == nil {
			err = emu.Tape.Out(io.TAPE_DATA, result)
		}
	case BDOS_CONSOLE_OUTPUT:
		err = emu.Tape.Out(io.TAPE_DATA, c.E)
	case BDOS_READER_INPUT:
		var ok bool
		result, ok = emu.Aux.Read()
		if !ok {
			result = io.TAPE_EOF
		}
	case BDOS_PUNCH_OUTPUT:
		err = emu.Aux.Write(c.E)
	case BDOS_DIRECT_IO:
		if c.E == 0xff {
			result, err = emu.Tape.In(io.TAPE_DATA)
		} else {
			err = emu.Tape.Out(io.TAPE_DATA, c.E)
		}
	case BDOS_PRINT_STRING:
		err = emu.printString(c.Pair(cpu.PAIR_DE))
	case BDOS_CONSOLE_STATUS:
		var status uint8
		status, err = emu.Tape.In(io.TAPE_STATUS)
		if status&io.TAPE_STATUS_INPUT != 0 {
			result = 0xff
		}
	default:
		err = ErrBdosFunction
	}
	if err != nil {
		err = &ErrBdos{Function: function, Err: err}
		return
	}

	ret, err := c.Memory.Read16(c.SP)
	if err != nil {
		return
	}

	// Results go in A and L, with B and H cleared.
	c.A, c.L = result, result
	c.B, c.H = 0, 0

	c.SP += 2
	c.PC = ret

	return
}

// printString writes bytes from addr up to the first '$'.
func (emu *Emulator) printString(addr uint16) (err error) {
	for n := range emu.Cpu.Memory.Size() {
		var value uint8
		value, err = emu.Cpu.Memory.Read8(addr + uint16(n))
		if err != nil {
			return
		}
		if value == '$' {
			return
		}
		err = emu.Tape.Out(io.TAPE_DATA, value)
		if err != nil {
			return
		}
	}

	err = ErrBdosString
	return
}

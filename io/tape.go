package io

import (
	"errors"
	"io"
)

const (
	TAPE_STATUS = 0 // Status register, read-only.
	TAPE_DATA   = 1 // Data register.

	TAPE_STATUS_INPUT  = uint8(1 << 0) // A byte (or EOF) can be read.
	TAPE_STATUS_OUTPUT = uint8(1 << 1) // A byte can be written.

	TAPE_EOF = uint8(0x1a) // Read from TAPE_DATA once input is exhausted.
)

// Tape is a byte console. Reads of the data register come from Input,
// writes go to Output.
type Tape struct {
	Input  io.Reader
	Output io.Writer

	hasInput  bool
	lastInput byte
	eof       bool
}

var _ Device = (*Tape)(nil)

// Registers of the tape.
func (tc *Tape) Registers() []string {
	return []string{"STATUS", "DATA"}
}

// Rewind drops any buffered input byte and the EOF state.
func (tc *Tape) Rewind() {
	tc.hasInput = false
	tc.eof = false
}

// fill buffers the next input byte.
func (tc *Tape) fill() (err error) {
	if tc.hasInput || tc.eof {
		return
	}

	if tc.Input == nil {
		tc.eof = true
		return
	}

	var one [1]byte
	_, err = io.ReadFull(tc.Input, one[:])
	if errors.Is(err, io.EOF) {
		tc.eof = true
		err = nil
		return
	}
	if err != nil {
		return
	}

	tc.lastInput = one[0]
	tc.hasInput = true
	return
}

// In reads the status or next input byte.
func (tc *Tape) In(reg int) (value uint8, err error) {
	err = tc.fill()
	if err != nil {
		return
	}

	switch reg {
	case TAPE_STATUS:
		value = TAPE_STATUS_INPUT
		if tc.Output != nil {
			value |= TAPE_STATUS_OUTPUT
		}
	case TAPE_DATA:
		if tc.eof {
			value = TAPE_EOF
			return
		}
		value = tc.lastInput
		tc.hasInput = false
	default:
		err = ErrPortUnmapped
	}

	return
}

// Out writes a byte to Output. Output may be nil, which discards.
func (tc *Tape) Out(reg int, value uint8) (err error) {
	switch reg {
	case TAPE_STATUS:
		err = ErrPortReadOnly
	case TAPE_DATA:
		if tc.Output == nil {
			return
		}
		_, err = tc.Output.Write([]byte{value})
	default:
		err = ErrPortUnmapped
	}

	return
}

package io

import (
	"bytes"
	"errors"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
)

func TestTape(t *testing.T) {
	assert := assert.New(t)

	output := &bytes.Buffer{}
	tape := &Tape{
		Input:  bytes.NewReader([]byte("hi")),
		Output: output,
	}

	status, err := tape.In(TAPE_STATUS)
	assert.NoError(err)
	assert.Equal(TAPE_STATUS_INPUT|TAPE_STATUS_OUTPUT, status)

	// Status does not consume input.
	status, err = tape.In(TAPE_STATUS)
	assert.NoError(err)
	assert.Equal(TAPE_STATUS_INPUT|TAPE_STATUS_OUTPUT, status)

	for _, expected := range []uint8{'h', 'i', TAPE_EOF, TAPE_EOF} {
		value, err := tape.In(TAPE_DATA)
		assert.NoError(err)
		assert.Equal(expected, value)
	}

	assert.NoError(tape.Out(TAPE_DATA, 'o'))
	assert.NoError(tape.Out(TAPE_DATA, 'k'))
	assert.Equal("ok", output.String())

	assert.ErrorIs(tape.Out(TAPE_STATUS, 0), ErrPortReadOnly)
	_, err = tape.In(7)
	assert.ErrorIs(err, ErrPortUnmapped)
	assert.ErrorIs(tape.Out(7, 0), ErrPortUnmapped)
}

func TestTape_Unconnected(t *testing.T) {
	assert := assert.New(t)

	tape := &Tape{}

	status, err := tape.In(TAPE_STATUS)
	assert.NoError(err)
	assert.Equal(TAPE_STATUS_INPUT, status)

	value, err := tape.In(TAPE_DATA)
	assert.NoError(err)
	assert.Equal(TAPE_EOF, value)

	assert.NoError(tape.Out(TAPE_DATA, 'x'))
}

func TestTape_Rewind(t *testing.T) {
	assert := assert.New(t)

	input := &bytes.Buffer{}
	tape := &Tape{Input: input}

	value, err := tape.In(TAPE_DATA)
	assert.NoError(err)
	assert.Equal(TAPE_EOF, value)

	input.WriteString("a")
	value, err = tape.In(TAPE_DATA)
	assert.NoError(err)
	assert.Equal(TAPE_EOF, value)

	tape.Rewind()
	value, err = tape.In(TAPE_DATA)
	assert.NoError(err)
	assert.Equal(uint8('a'), value)
}

func TestTape_InputError(t *testing.T) {
	assert := assert.New(t)

	failure := errors.New("unplugged")
	tape := &Tape{Input: iotest.ErrReader(failure)}

	_, err := tape.In(TAPE_DATA)
	assert.ErrorIs(err, failure)
}

package cpu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMemory(t *testing.T) {
	assert := assert.New(t)

	for _, size := range []int{-1, 0, MEMORY_SIZE_MAX + 1} {
		_, err := NewMemory(size)
		assert.ErrorIs(err, ErrMemorySize, size)
	}

	mem, err := NewMemory(MEMORY_SIZE_MAX)
	assert.NoError(err)
	assert.Equal(MEMORY_SIZE_MAX, mem.Size())
}

func TestMemory_ReadWrite(t *testing.T) {
	assert := assert.New(t)

	mem, err := NewMemory(0x100)
	require.NoError(t, err)

	assert.NoError(mem.Write8(0x10, 0xa5))
	v8, err := mem.Read8(0x10)
	assert.NoError(err)
	assert.Equal(uint8(0xa5), v8)

	assert.NoError(mem.Write16(0x20, 0x1234))
	lo, _ := mem.Read8(0x20)
	hi, _ := mem.Read8(0x21)
	assert.Equal(uint8(0x34), lo)
	assert.Equal(uint8(0x12), hi)

	v16, err := mem.Read16(0x20)
	assert.NoError(err)
	assert.Equal(uint16(0x1234), v16)
}

func TestMemory_Range(t *testing.T) {
	assert := assert.New(t)

	mem, err := NewMemory(0x100)
	require.NoError(t, err)

	_, err = mem.Read8(0x100)
	assert.ErrorIs(err, ErrAddressOutOfRange)
	var ea *ErrAddress
	if assert.True(errors.As(err, &ea)) {
		assert.Equal(0x100, ea.Address)
		assert.Equal(0x100, ea.Size)
	}

	assert.ErrorIs(mem.Write8(0xffff, 1), ErrAddressOutOfRange)

	// A word straddling the end of memory writes neither byte.
	assert.NoError(mem.Write8(0xff, 0x77))
	assert.ErrorIs(mem.Write16(0xff, 0x1234), ErrAddressOutOfRange)
	v8, _ := mem.Read8(0xff)
	assert.Equal(uint8(0x77), v8)

	_, err = mem.Read16(0xff)
	assert.ErrorIs(err, ErrAddressOutOfRange)

	// Full 64KiB never wraps to address 0.
	full, err := NewMemory(MEMORY_SIZE_MAX)
	require.NoError(t, err)
	_, err = full.Read16(0xffff)
	assert.ErrorIs(err, ErrAddressOutOfRange)
	assert.ErrorIs(full.Write16(0xffff, 0), ErrAddressOutOfRange)
}

func TestMemory_Load(t *testing.T) {
	assert := assert.New(t)

	mem, err := NewMemory(0x10)
	require.NoError(t, err)

	assert.NoError(mem.Load([]byte{1, 2, 3}, 0x0d))
	assert.Equal([]byte{1, 2, 3}, mem.Bytes()[0x0d:])

	err = mem.Load([]byte{9, 9, 9, 9}, 0x0d)
	assert.ErrorIs(err, ErrAddressOutOfRange)
	assert.Equal([]byte{1, 2, 3}, mem.Bytes()[0x0d:])

	peek := mem.Bytes()
	peek[0x0d] = 0xff
	v8, _ := mem.Read8(0x0d)
	assert.Equal(uint8(1), v8)

	mem.Reset()
	assert.Equal(make([]byte, 0x10), mem.Bytes())
}

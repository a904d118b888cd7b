package cpu

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/cespare/xxhash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func busyCpu(t *testing.T) *Cpu {
	cpu, err := NewCpu(Config{MemorySize: 0x200})
	require.NoError(t, err)

	require.NoError(t, cpu.Load([]byte{0xfb, 0x3e, 0x42, 0x76}, 0)) // EI; MVI A,42H; HLT
	cpu.Registers = Registers{B: 1, C: 2, D: 3, E: 4, H: 5, L: 6, SP: 0x1ff}
	cpu.Flags = Flags{CY: true, P: true, Pad: 0x5a}
	require.NoError(t, cpu.Interrupt(3))
	_, _, err = cpu.Step()
	require.NoError(t, err)

	return cpu
}

func TestSnapshot_Restore(t *testing.T) {
	assert := assert.New(t)

	cpu := busyCpu(t)
	snap := cpu.Snapshot()

	assert.Equal(uint16(1), snap.PC)
	assert.True(snap.InterruptEnable)
	assert.True(snap.InterruptDelay)
	assert.Equal(3, snap.Pending)
	assert.Equal(uint8(0x5a), snap.Flags.Pad)
	assert.Equal(uint64(4), snap.Cycles)

	// The snapshot shares no storage with the CPU.
	snap.Memory[0x100] = 0xee
	value, _ := cpu.Memory.Read8(0x100)
	assert.Equal(uint8(0), value)
	snap.Memory[0x100] = 0

	_, err := cpu.Run(t.Context())
	require.Error(t, err)
	assert.Equal(STATUS_FAULTED, cpu.Status)

	require.NoError(t, cpu.Restore(snap))
	assert.True(snap.Equal(cpu.Snapshot()))

	// The restored CPU runs exactly as the original did.
	_, _, err = cpu.Step()
	require.NoError(t, err)
	assert.Equal(uint8(0x42), cpu.A)
}

func TestSnapshot_RestoreIdentity(t *testing.T) {
	assert := assert.New(t)

	cpu := busyCpu(t)
	snap := cpu.Snapshot()
	require.NoError(t, cpu.Restore(cpu.Snapshot()))
	assert.True(snap.Equal(cpu.Snapshot()))

	clone := snap.Clone()
	assert.True(snap.Equal(clone))
	clone.Memory[0] = 0xff
	assert.False(snap.Equal(clone))
}

func TestSnapshot_RestoreInvalid(t *testing.T) {
	assert := assert.New(t)

	cpu := busyCpu(t)
	before := cpu.Snapshot()

	assert.ErrorIs(cpu.Restore(&Snapshot{}), ErrMemorySize)
	assert.ErrorIs(cpu.Restore(&Snapshot{Memory: make([]byte, 1), Pending: 9}), ErrInterruptVector)
	assert.ErrorIs(cpu.Restore(&Snapshot{Memory: make([]byte, 1), Pending: NO_INTERRUPT, Status: 7}), ErrSnapshotCorrupt)

	assert.True(before.Equal(cpu.Snapshot()))
}

func TestSnapshot_Binary(t *testing.T) {
	assert := assert.New(t)

	cpu := busyCpu(t)
	_, err := cpu.Run(t.Context())
	require.Error(t, err)

	snap := cpu.Snapshot()
	data, err := snap.MarshalBinary()
	require.NoError(t, err)
	assert.Equal([]byte(SNAPSHOT_MAGIC), data[:4])

	var decoded Snapshot
	require.NoError(t, decoded.UnmarshalBinary(data))
	assert.True(snap.Equal(&decoded))
	assert.Equal(snap.Fault.Error(), decoded.Fault.Error())

	other, err := NewCpu(Config{})
	require.NoError(t, err)
	require.NoError(t, other.Restore(&decoded))
	assert.Equal(0x200, other.Memory.Size())
	assert.Equal(STATUS_FAULTED, other.Status)

	_, _, err = other.Step()
	assert.ErrorIs(err, ErrFaulted)
}

func TestSnapshot_BinaryNoFault(t *testing.T) {
	assert := assert.New(t)

	cpu := busyCpu(t)
	snap := cpu.Snapshot()
	data, err := snap.MarshalBinary()
	require.NoError(t, err)

	var decoded Snapshot
	require.NoError(t, decoded.UnmarshalBinary(data))
	assert.True(snap.Equal(&decoded))
	assert.Nil(decoded.Fault)
	assert.Equal(3, decoded.Pending)
}

func TestSnapshot_BinaryCorrupt(t *testing.T) {
	assert := assert.New(t)

	snap := busyCpu(t).Snapshot()
	data, err := snap.MarshalBinary()
	require.NoError(t, err)

	// redigest replaces the trailing digest so that only the body is wrong.
	redigest := func(blob []byte) []byte {
		body := blob[:len(blob)-8]
		return binary.LittleEndian.AppendUint64(append([]byte(nil), body...), xxhash.Sum64(body))
	}

	flipped := append([]byte(nil), data...)
	flipped[10] ^= 0x01

	magic := append([]byte(nil), data...)
	magic[0] = 'X'

	version := append([]byte(nil), data...)
	version[4] = 2

	truncated := append([]byte(nil), data[:len(data)-8-0x10]...)

	table := [](struct {
		name string
		blob []byte
	}){
		{"empty", nil},
		{"short", data[:8]},
		{"flipped", flipped},
		{"magic", redigest(magic)},
		{"version", redigest(version)},
		{"truncated", redigest(append(truncated, make([]byte, 8)...))},
	}

	for _, entry := range table {
		var decoded Snapshot
		err := decoded.UnmarshalBinary(entry.blob)
		assert.True(errors.Is(err, ErrSnapshotCorrupt), entry.name)
		assert.Equal(Snapshot{}, decoded, entry.name)
	}
}

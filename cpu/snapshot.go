package cpu

import (
	"bytes"
	"errors"
	"slices"

	"github.com/cespare/xxhash"

	"github.com/ezrec/i8080/internal"
)

const (
	SNAPSHOT_MAGIC   = "i80S"
	SNAPSHOT_VERSION = 1
)

// Snapshot is a deep copy of the complete CPU state.
type Snapshot struct {
	Registers
	Flags           Flags
	Memory          []byte
	InterruptEnable bool
	InterruptDelay  bool
	Pending         int // Pending RST vector, or NO_INTERRUPT.
	Status          Status
	Fault           error
	Cycles          uint64
}

// Snapshot captures the CPU state. The result shares nothing with the CPU.
func (cpu *Cpu) Snapshot() (snap *Snapshot) {
	snap = &Snapshot{
		Registers:       cpu.Registers,
		Flags:           cpu.Flags,
		Memory:          cpu.Memory.Bytes(),
		InterruptEnable: cpu.InterruptEnable,
		InterruptDelay:  cpu.interruptDelay,
		Pending:         cpu.pending,
		Status:          cpu.Status,
		Fault:           cpu.Fault,
		Cycles:          cpu.Cycles,
	}
	return
}

// Restore replaces the CPU state, memory size included, with a snapshot.
// On error the CPU is unchanged.
func (cpu *Cpu) Restore(snap *Snapshot) (err error) {
	mem, err := NewMemory(len(snap.Memory))
	if err != nil {
		return
	}
	copy(mem.data, snap.Memory)

	switch {
	case snap.Pending != NO_INTERRUPT && (snap.Pending < 0 || snap.Pending > 7):
		err = ErrInterruptVector
		return
	case snap.Status < STATUS_RUNNING || snap.Status > STATUS_FAULTED:
		err = ErrSnapshotCorrupt
		return
	}

	cpu.Registers = snap.Registers
	cpu.Flags = snap.Flags
	cpu.Memory = mem
	cpu.InterruptEnable = snap.InterruptEnable
	cpu.interruptDelay = snap.InterruptDelay
	cpu.pending = snap.Pending
	cpu.Status = snap.Status
	cpu.Fault = snap.Fault
	cpu.Cycles = snap.Cycles

	return
}

// Equal compares two snapshots. Faults compare by message.
func (snap *Snapshot) Equal(other *Snapshot) bool {
	faultText := func(err error) string {
		if err == nil {
			return ""
		}
		return err.Error()
	}

	return snap.Registers == other.Registers &&
		snap.Flags == other.Flags &&
		bytes.Equal(snap.Memory, other.Memory) &&
		snap.InterruptEnable == other.InterruptEnable &&
		snap.InterruptDelay == other.InterruptDelay &&
		snap.Pending == other.Pending &&
		snap.Status == other.Status &&
		faultText(snap.Fault) == faultText(other.Fault) &&
		snap.Cycles == other.Cycles
}

// MarshalBinary encodes the snapshot as a versioned little-endian blob,
// trailed by an xxhash64 digest of everything before it.
func (snap *Snapshot) MarshalBinary() (data []byte, err error) {
	s := internal.NewState()
	s.WriteData([]byte(SNAPSHOT_MAGIC))
	s.Write8(SNAPSHOT_VERSION)

	for reg := REG_B; reg <= REG_A; reg++ {
		if reg == REG_M {
			continue
		}
		s.Write8(snap.Get(reg))
	}
	s.Write16(snap.SP)
	s.Write16(snap.PC)

	s.WriteBool(snap.Flags.Z)
	s.WriteBool(snap.Flags.S)
	s.WriteBool(snap.Flags.P)
	s.WriteBool(snap.Flags.CY)
	s.WriteBool(snap.Flags.AC)
	s.Write8(snap.Flags.Pad)

	s.WriteBool(snap.InterruptEnable)
	s.WriteBool(snap.InterruptDelay)
	s.Write8(uint8(int8(snap.Pending)))
	s.Write8(uint8(snap.Status))
	if snap.Fault != nil {
		s.WriteString(snap.Fault.Error())
	} else {
		s.WriteString("")
	}
	s.Write64(snap.Cycles)

	s.Write32(uint32(len(snap.Memory)))
	s.WriteData(snap.Memory)

	s.Write64(xxhash.Sum64(s.Bytes()))

	data = s.Bytes()
	return
}

// UnmarshalBinary decodes a blob written by MarshalBinary.
func (snap *Snapshot) UnmarshalBinary(data []byte) (err error) {
	const digestSize = 8
	if len(data) < len(SNAPSHOT_MAGIC)+1+digestSize {
		return ErrSnapshotCorrupt
	}

	body := data[:len(data)-digestSize]
	digest := internal.StateFromBytes(data[len(body):]).Read64()
	if digest != xxhash.Sum64(body) {
		return ErrSnapshotCorrupt
	}

	s := internal.StateFromBytes(body)
	magic := make([]byte, len(SNAPSHOT_MAGIC))
	s.ReadData(magic)
	if string(magic) != SNAPSHOT_MAGIC || s.Read8() != SNAPSHOT_VERSION {
		return ErrSnapshotCorrupt
	}

	var out Snapshot
	for reg := REG_B; reg <= REG_A; reg++ {
		if reg == REG_M {
			continue
		}
		out.Set(reg, s.Read8())
	}
	out.SP = s.Read16()
	out.PC = s.Read16()

	out.Flags.Z = s.ReadBool()
	out.Flags.S = s.ReadBool()
	out.Flags.P = s.ReadBool()
	out.Flags.CY = s.ReadBool()
	out.Flags.AC = s.ReadBool()
	out.Flags.Pad = s.Read8()

	out.InterruptEnable = s.ReadBool()
	out.InterruptDelay = s.ReadBool()
	out.Pending = int(int8(s.Read8()))
	out.Status = Status(s.Read8())
	if text := s.ReadString(); len(text) > 0 {
		out.Fault = errors.New(text)
	}
	out.Cycles = s.Read64()

	size := int(s.Read32())
	if size < 1 || size > MEMORY_SIZE_MAX || size != s.Remaining() {
		return ErrSnapshotCorrupt
	}
	out.Memory = make([]byte, size)
	s.ReadData(out.Memory)

	if s.Err() != nil {
		return errors.Join(ErrSnapshotCorrupt, s.Err())
	}

	*snap = out
	return
}

// Clone returns a deep copy.
func (snap *Snapshot) Clone() *Snapshot {
	out := *snap
	out.Memory = slices.Clone(snap.Memory)
	return &out
}

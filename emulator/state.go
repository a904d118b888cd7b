package emulator

import (
	"errors"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/ezrec/i8080/cpu"
)

// SaveState writes the CPU state as a zstd compressed snapshot.
func (emu *Emulator) SaveState(w io.Writer) (err error) {
	data, err := emu.Cpu.Snapshot().MarshalBinary()
	if err != nil {
		return
	}

	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return
	}

	_, err = enc.Write(data)
	if err != nil {
		enc.Close()
		return
	}

	err = enc.Close()
	return
}

// LoadState replaces the CPU state with one written by SaveState, and
// drops all checkpoints. On error the CPU is unchanged.
func (emu *Emulator) LoadState(r io.Reader) (err error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return
	}
	defer dec.Close()

	data, err := io.ReadAll(dec)
	if err != nil {
		err = errors.Join(ErrStateFormat, err)
		return
	}

	var snap cpu.Snapshot
	err = snap.UnmarshalBinary(data)
	if err != nil {
		return
	}

	err = emu.Cpu.Restore(&snap)
	if err != nil {
		return
	}

	emu.history.Reset()
	emu.lastCheckpoint = emu.Cpu.Cycles

	return
}

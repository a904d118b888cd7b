package cpu

import (
	"strings"
)

// FlagMask selects a set of status flags.
type FlagMask uint8

const (
	FLAG_Z  = FlagMask(1 << 0) // Zero
	FLAG_S  = FlagMask(1 << 1) // Sign
	FLAG_P  = FlagMask(1 << 2) // Parity
	FLAG_CY = FlagMask(1 << 3) // Carry
	FLAG_AC = FlagMask(1 << 4) // Auxiliary carry

	FLAG_NONE = FlagMask(0)
	FLAG_ZSP  = FLAG_Z | FLAG_S | FLAG_P
	FLAG_ALL  = FLAG_Z | FLAG_S | FLAG_P | FLAG_CY | FLAG_AC
)

// PSW bit positions.
const (
	PSW_CY = uint8(1 << 0)
	PSW_1  = uint8(1 << 1) // Always set.
	PSW_P  = uint8(1 << 2)
	PSW_AC = uint8(1 << 4)
	PSW_Z  = uint8(1 << 6)
	PSW_S  = uint8(1 << 7)
)

// Flags is a value snapshot of the status flags.
type Flags struct {
	Z  bool // Result was zero.
	S  bool // Bit 7 of the result was set.
	P  bool // Result had even parity.
	CY bool // Carry out of (or borrow into) the most significant bit.
	AC bool // Carry out of bit 3.

	// Pad is reserved. No instruction reads or writes it, and it is not
	// part of the PSW byte; it is only carried through snapshots.
	Pad uint8
}

// PSW packs the flags into the byte pushed by PUSH PSW.
func (fl Flags) PSW() (psw uint8) {
	psw = PSW_1
	if fl.S {
		psw |= PSW_S
	}
	if fl.Z {
		psw |= PSW_Z
	}
	if fl.AC {
		psw |= PSW_AC
	}
	if fl.P {
		psw |= PSW_P
	}
	if fl.CY {
		psw |= PSW_CY
	}
	return
}

// FlagsFromPSW unpacks a PSW byte. The fixed bits are ignored.
func FlagsFromPSW(psw uint8) Flags {
	return Flags{
		S:  psw&PSW_S != 0,
		Z:  psw&PSW_Z != 0,
		AC: psw&PSW_AC != 0,
		P:  psw&PSW_P != 0,
		CY: psw&PSW_CY != 0,
	}
}

// Merge returns fl with the flags selected by mask taken from next.
// Pad always comes from fl.
func (fl Flags) Merge(next Flags, mask FlagMask) Flags {
	if mask&FLAG_Z != 0 {
		fl.Z = next.Z
	}
	if mask&FLAG_S != 0 {
		fl.S = next.S
	}
	if mask&FLAG_P != 0 {
		fl.P = next.P
	}
	if mask&FLAG_CY != 0 {
		fl.CY = next.CY
	}
	if mask&FLAG_AC != 0 {
		fl.AC = next.AC
	}
	return fl
}

func (fl Flags) String() string {
	s := strings.Builder{}

	bits := []struct {
		set  bool
		name string
	}{
		{fl.S, "s"}, {fl.Z, "z"}, {fl.AC, "a"}, {fl.P, "p"}, {fl.CY, "c"},
	}
	for _, bit := range bits {
		if bit.set {
			s.WriteString(strings.ToUpper(bit.name))
		} else {
			s.WriteString(bit.name)
		}
	}

	return s.String()
}

func (fm FlagMask) String() string {
	if fm == FLAG_NONE {
		return "-"
	}

	var names []string
	for _, flag := range []struct {
		mask FlagMask
		name string
	}{
		{FLAG_Z, "Z"}, {FLAG_S, "S"}, {FLAG_P, "P"}, {FLAG_CY, "CY"}, {FLAG_AC, "AC"},
	} {
		if fm&flag.mask != 0 {
			names = append(names, flag.name)
		}
	}

	return strings.Join(names, ",")
}

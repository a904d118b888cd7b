package cpu

import (
	"fmt"
)

// Register is an 8-bit register identity, in the order the 8080 encodes
// the DDD and SSS fields of an opcode.
type Register int

//go:generate go tool stringer -linecomment -type=Register,RegisterPair
const (
	REG_B = Register(0) // B
	REG_C = Register(1) // C
	REG_D = Register(2) // D
	REG_E = Register(3) // E
	REG_H = Register(4) // H
	REG_L = Register(5) // L
	REG_M = Register(6) // M
	REG_A = Register(7) // A
)

// RegisterPair is a 16-bit register identity, in the order the 8080 encodes
// the RP field of an opcode. PAIR_PSW replaces PAIR_SP for PUSH and POP.
type RegisterPair int

const (
	PAIR_BC  = RegisterPair(0) // B
	PAIR_DE  = RegisterPair(1) // D
	PAIR_HL  = RegisterPair(2) // H
	PAIR_SP  = RegisterPair(3) // SP
	PAIR_PSW = RegisterPair(4) // PSW
)

// Registers is the 8080 register file.
type Registers struct {
	A, B, C, D, E, H, L uint8

	SP uint16 // Stack pointer.
	PC uint16 // Program counter.
}

func (r *Registers) ref(reg Register) *uint8 {
	switch reg {
	case REG_B:
		return &r.B
	case REG_C:
		return &r.C
	case REG_D:
		return &r.D
	case REG_E:
		return &r.E
	case REG_H:
		return &r.H
	case REG_L:
		return &r.L
	case REG_A:
		return &r.A
	}
	panic(fmt.Sprintf("register %v has no storage", reg))
}

// Get returns the value of an 8-bit register.
func (r *Registers) Get(reg Register) uint8 {
	return *r.ref(reg)
}

// Set sets the value of an 8-bit register.
func (r *Registers) Set(reg Register, value uint8) {
	*r.ref(reg) = value
}

// Pair returns the value of a register pair, high register in the upper byte.
func (r *Registers) Pair(rp RegisterPair) uint16 {
	switch rp {
	case PAIR_BC:
		return uint16(r.B)<<8 | uint16(r.C)
	case PAIR_DE:
		return uint16(r.D)<<8 | uint16(r.E)
	case PAIR_HL:
		return uint16(r.H)<<8 | uint16(r.L)
	case PAIR_SP:
		return r.SP
	}
	panic(fmt.Sprintf("register pair %v has no storage", rp))
}

// SetPair splits value across the two registers of a pair.
func (r *Registers) SetPair(rp RegisterPair, value uint16) {
	hi, lo := uint8(value>>8), uint8(value)
	switch rp {
	case PAIR_BC:
		r.B, r.C = hi, lo
	case PAIR_DE:
		r.D, r.E = hi, lo
	case PAIR_HL:
		r.H, r.L = hi, lo
	case PAIR_SP:
		r.SP = value
	default:
		panic(fmt.Sprintf("register pair %v has no storage", rp))
	}
}

// String returns the register file as a single trace line.
func (r Registers) String() string {
	return fmt.Sprintf("A=%02X B=%02X C=%02X D=%02X E=%02X H=%02X L=%02X SP=%04X PC=%04X",
		r.A, r.B, r.C, r.D, r.E, r.H, r.L, r.SP, r.PC)
}

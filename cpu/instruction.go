package cpu

import (
	"fmt"
	"iter"
	"strings"
)

// Handler executes one instruction. It returns the flags it computed; only
// the flags declared by the instruction's Affects mask are kept.
//
// Handlers must not move the program counter themselves; control flow goes
// through Operand.Branch.
type Handler func(cpu *Cpu, op *Operand) (fl Flags, err error)

// Operand is the decoded context of the instruction being executed.
type Operand struct {
	Opcode uint8  // Opcode byte.
	Data   uint16 // Immediate byte, or little-endian word, following the opcode.
	Next   uint16 // Address of the following instruction.

	branch bool
	target uint16
	extra  int
}

// Branch redirects execution to target, charging extra cycles on top of the
// instruction's base cost.
func (op *Operand) Branch(target uint16, extra int) {
	op.branch = true
	op.target = target
	op.extra = extra
}

// D8 is the immediate byte.
func (op *Operand) D8() uint8 {
	return uint8(op.Data)
}

// Dst decodes the DDD field.
func (op *Operand) Dst() Register {
	return Register((op.Opcode >> 3) & 0x7)
}

// Src decodes the SSS field.
func (op *Operand) Src() Register {
	return Register(op.Opcode & 0x7)
}

// Pair decodes the RP field.
func (op *Operand) Pair() RegisterPair {
	return RegisterPair((op.Opcode >> 4) & 0x3)
}

// Instruction describes one opcode. Descriptors are built once into a Table
// and never change afterwards.
type Instruction struct {
	Opcode   uint8
	Mnemonic string   // Intel mnemonic template, e.g. "LXI B,D16".
	Length   int      // Bytes consumed, including the opcode.
	Cycles   int      // Base cycle cost.
	Affects  FlagMask // Flags recomputed by the handler.
	Handler  Handler
}

// Implemented is false for the Unimplemented sentinel.
func (in Instruction) Implemented() bool {
	return in.Handler != nil
}

// Undocumented is true for the aliases of documented opcodes.
func (in Instruction) Undocumented() bool {
	return strings.HasPrefix(in.Mnemonic, "*")
}

// Format renders the mnemonic with the operand value substituted.
func (in Instruction) Format(data uint16) string {
	text := strings.TrimPrefix(in.Mnemonic, "*")
	switch {
	case strings.HasSuffix(text, "D16"):
		text = strings.TrimSuffix(text, "D16") + hexIntel(fmt.Sprintf("%04X", data))
	case strings.HasSuffix(text, "adr"):
		text = strings.TrimSuffix(text, "adr") + hexIntel(fmt.Sprintf("%04X", data))
	case strings.HasSuffix(text, "D8"):
		text = strings.TrimSuffix(text, "D8") + hexIntel(fmt.Sprintf("%02X", uint8(data)))
	}
	return text
}

// hexIntel writes hex digits in Intel form: H suffix, leading 0 before A-F.
func hexIntel(digits string) string {
	if digits[0] >= 'A' {
		digits = "0" + digits
	}
	return digits + "H"
}

func (in Instruction) String() string {
	return fmt.Sprintf("%02x %s +%dbytes (%d cycles) [%v]", in.Opcode, in.Mnemonic, in.Length, in.Cycles, in.Affects)
}

// Unimplemented is the descriptor of every opcode with no bound handler.
func Unimplemented(opcode uint8) Instruction {
	return Instruction{
		Opcode:   opcode,
		Mnemonic: "???",
		Length:   1,
		Cycles:   0,
	}
}

// Table is the opcode indexed instruction table.
type Table struct {
	entries [256]Instruction
}

// Lookup returns the descriptor of an opcode. Every opcode has one.
func (tbl *Table) Lookup(opcode uint8) Instruction {
	return tbl.entries[opcode]
}

// All iterates the table in opcode order.
func (tbl *Table) All() iter.Seq2[uint8, Instruction] {
	return func(yield func(opcode uint8, in Instruction) bool) {
		for n := range tbl.entries {
			if !yield(uint8(n), tbl.entries[n]) {
				return
			}
		}
	}
}

// Disassemble decodes the instruction at addr.
func (tbl *Table) Disassemble(mem *Memory, addr uint16) (text string, length int) {
	opcode, err := mem.Read8(addr)
	if err != nil {
		return "", 0
	}

	in := tbl.Lookup(opcode)
	length = in.Length

	var data uint16
	switch in.Length {
	case 2:
		var d8 uint8
		d8, err = mem.Read8(addr + 1)
		data = uint16(d8)
	case 3:
		data, err = mem.Read16(addr + 1)
	}
	if err != nil {
		return ".db " + hexIntel(fmt.Sprintf("%02X", opcode)), 1
	}

	if !in.Implemented() {
		return ".db " + hexIntel(fmt.Sprintf("%02X", opcode)), 1
	}

	text = in.Format(data)
	return
}

package cpu

import (
	"iter"
)

// Opcode is one assembled statement: an instruction or a data directive.
type Opcode struct {
	LineNo  int      // Source line.
	Address int      // Load address of the first byte.
	Words   []string // Source words, labels removed.
	Bytes   []byte   // Encoded bytes.
	Links   []Link   // Label references patched after the final line.
}

// Link is a label reference inside an Opcode's bytes.
type Link struct {
	Label  string
	Offset int // Index into Bytes.
	Size   int // 1 or 2 bytes, little-endian.
}

// Program is the output of the assembler.
type Program struct {
	Opcodes []Opcode
}

// Debug locates the byte at an address within its Opcode.
type Debug struct {
	*Opcode
	Index int
}

// Debug returns the Opcode holding addr, or a zero Debug if none does.
func (prog *Program) Debug(addr uint16) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if int(addr) >= op.Address && int(addr) < op.Address+len(op.Bytes) {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  int(addr) - op.Address,
			}
			break
		}
	}

	return
}

// Bytes iterates every assembled byte with its address, in source order.
func (prog *Program) Bytes() iter.Seq2[uint16, byte] {
	return func(yield func(addr uint16, value byte) bool) {
		for _, op := range prog.Opcodes {
			for n, value := range op.Bytes {
				if !yield(uint16(op.Address+n), value) {
					return
				}
			}
		}
	}
}

// Image returns a contiguous memory image of the program, from its lowest
// to its highest assembled address. Gaps are zero filled.
func (prog *Program) Image() (base uint16, data []byte) {
	low, high := -1, -1
	for _, op := range prog.Opcodes {
		if len(op.Bytes) == 0 {
			continue
		}
		if low < 0 || op.Address < low {
			low = op.Address
		}
		if end := op.Address + len(op.Bytes); end > high {
			high = end
		}
	}
	if low < 0 {
		return
	}

	base = uint16(low)
	data = make([]byte, high-low)
	for addr, value := range prog.Bytes() {
		data[int(addr)-low] = value
	}

	return
}

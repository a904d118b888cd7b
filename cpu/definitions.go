package cpu

import (
	"fmt"
)

// cycles is the base cost of each opcode in clock states. Conditional CALL
// and RET list the not-taken cost; taking the branch adds 6.
var cycles = [256]int{
	4, 10, 7, 5, 5, 5, 7, 4, 4, 10, 7, 5, 5, 5, 7, 4,
	4, 10, 7, 5, 5, 5, 7, 4, 4, 10, 7, 5, 5, 5, 7, 4,
	4, 10, 16, 5, 5, 5, 7, 4, 4, 10, 16, 5, 5, 5, 7, 4,
	4, 10, 13, 5, 10, 10, 10, 4, 4, 10, 13, 5, 5, 5, 7, 4,
	5, 5, 5, 5, 5, 5, 7, 5, 5, 5, 5, 5, 5, 5, 7, 5,
	5, 5, 5, 5, 5, 5, 7, 5, 5, 5, 5, 5, 5, 5, 7, 5,
	5, 5, 5, 5, 5, 5, 7, 5, 5, 5, 5, 5, 5, 5, 7, 5,
	7, 7, 7, 7, 7, 7, 7, 7, 5, 5, 5, 5, 5, 5, 7, 5,
	4, 4, 4, 4, 4, 4, 7, 4, 4, 4, 4, 4, 4, 4, 7, 4,
	4, 4, 4, 4, 4, 4, 7, 4, 4, 4, 4, 4, 4, 4, 7, 4,
	4, 4, 4, 4, 4, 4, 7, 4, 4, 4, 4, 4, 4, 4, 7, 4,
	4, 4, 4, 4, 4, 4, 7, 4, 4, 4, 4, 4, 4, 4, 7, 4,
	5, 10, 10, 10, 11, 11, 7, 11, 5, 10, 10, 10, 11, 17, 7, 11,
	5, 10, 10, 10, 11, 11, 7, 11, 5, 10, 10, 10, 11, 17, 7, 11,
	5, 10, 10, 18, 11, 11, 7, 11, 5, 5, 10, 4, 11, 17, 7, 11,
	5, 10, 10, 4, 11, 11, 7, 11, 5, 5, 10, 4, 11, 17, 7, 11,
}

const (
	BRANCH_EXTRA_CYCLES = 6 // Added when a conditional CALL or RET is taken.
)

// conditions in CCC field order.
var conditions = [8]string{"NZ", "Z", "NC", "C", "PO", "PE", "P", "M"}

// Cond evaluates the CCC condition field of a conditional opcode.
func (fl Flags) Cond(ccc uint8) bool {
	switch ccc & 0x7 {
	case 0:
		return !fl.Z
	case 1:
		return fl.Z
	case 2:
		return !fl.CY
	case 3:
		return fl.CY
	case 4:
		return !fl.P
	case 5:
		return fl.P
	case 6:
		return !fl.S
	}
	return fl.S
}

// builder collects definitions for NewTable.
type builder struct {
	tbl *Table
}

func (b *builder) define(opcode uint8, mnemonic string, length int, affects FlagMask, fn Handler) {
	if b.tbl.entries[opcode].Implemented() {
		panic(fmt.Sprintf("opcode 0x%02x defined twice", opcode))
	}
	b.tbl.entries[opcode] = Instruction{
		Opcode:   opcode,
		Mnemonic: mnemonic,
		Length:   length,
		Cycles:   cycles[opcode],
		Affects:  affects,
		Handler:  fn,
	}
}

// alias binds an undocumented opcode to the handler of a documented one.
func (b *builder) alias(opcode uint8, twin uint8) {
	in := b.tbl.entries[twin]
	b.define(opcode, "*"+in.Mnemonic, in.Length, in.Affects, in.Handler)
}

// undocumented opcodes and their documented twins.
var undocumented = map[uint8]uint8{
	0x08: 0x00, 0x10: 0x00, 0x18: 0x00, 0x20: 0x00,
	0x28: 0x00, 0x30: 0x00, 0x38: 0x00,
	0xcb: 0xc3,
	0xd9: 0xc9,
	0xdd: 0xcd, 0xed: 0xcd, 0xfd: 0xcd,
}

// NewTable builds the instruction table for a configuration.
func NewTable(config Config) (tbl *Table) {
	tbl = &Table{}
	for n := range tbl.entries {
		tbl.entries[n] = Unimplemented(uint8(n))
	}

	b := &builder{tbl: tbl}
	b.dataTransfer()
	b.arithmetic()
	b.logical()
	b.branch()
	b.control()

	if config.Undocumented {
		for opcode, twin := range undocumented {
			b.alias(opcode, twin)
		}
	}

	return
}

func (b *builder) dataTransfer() {
	for dst := REG_B; dst <= REG_A; dst++ {
		for src := REG_B; src <= REG_A; src++ {
			if dst == REG_M && src == REG_M {
				continue // HLT
			}
			opcode := 0x40 | uint8(dst)<<3 | uint8(src)
			b.define(opcode, fmt.Sprintf("MOV %v,%v", dst, src), 1, FLAG_NONE, movR)
		}
		b.define(0x06|uint8(dst)<<3, fmt.Sprintf("MVI %v,D8", dst), 2, FLAG_NONE, mvi)
	}

	for rp := PAIR_BC; rp <= PAIR_SP; rp++ {
		b.define(0x01|uint8(rp)<<4, fmt.Sprintf("LXI %v,D16", rp), 3, FLAG_NONE, lxi)
	}

	for rp := PAIR_BC; rp <= PAIR_DE; rp++ {
		b.define(0x02|uint8(rp)<<4, fmt.Sprintf("STAX %v", rp), 1, FLAG_NONE, stax)
		b.define(0x0a|uint8(rp)<<4, fmt.Sprintf("LDAX %v", rp), 1, FLAG_NONE, ldax)
	}

	b.define(0x22, "SHLD adr", 3, FLAG_NONE, func(cpu *Cpu, op *Operand) (fl Flags, err error) {
		err = cpu.Memory.Write16(op.Data, cpu.Pair(PAIR_HL))
		return
	})
	b.define(0x2a, "LHLD adr", 3, FLAG_NONE, func(cpu *Cpu, op *Operand) (fl Flags, err error) {
		value, err := cpu.Memory.Read16(op.Data)
		if err != nil {
			return
		}
		cpu.SetPair(PAIR_HL, value)
		return
	})
	b.define(0x32, "STA adr", 3, FLAG_NONE, func(cpu *Cpu, op *Operand) (fl Flags, err error) {
		err = cpu.Memory.Write8(op.Data, cpu.A)
		return
	})
	b.define(0x3a, "LDA adr", 3, FLAG_NONE, func(cpu *Cpu, op *Operand) (fl Flags, err error) {
		cpu.A, err = cpu.Memory.Read8(op.Data)
		return
	})
	b.define(0xeb, "XCHG", 1, FLAG_NONE, func(cpu *Cpu, op *Operand) (fl Flags, err error) {
		cpu.D, cpu.H = cpu.H, cpu.D
		cpu.E, cpu.L = cpu.L, cpu.E
		return
	})
}

func (b *builder) arithmetic() {
	for r := REG_B; r <= REG_A; r++ {
		b.define(0x04|uint8(r)<<3, fmt.Sprintf("INR %v", r), 1, FLAG_ZSP|FLAG_AC, inr)
		b.define(0x05|uint8(r)<<3, fmt.Sprintf("DCR %v", r), 1, FLAG_ZSP|FLAG_AC, dcr)
	}

	for rp := PAIR_BC; rp <= PAIR_SP; rp++ {
		b.define(0x03|uint8(rp)<<4, fmt.Sprintf("INX %v", rp), 1, FLAG_NONE, inx)
		b.define(0x0b|uint8(rp)<<4, fmt.Sprintf("DCX %v", rp), 1, FLAG_NONE, dcx)
		b.define(0x09|uint8(rp)<<4, fmt.Sprintf("DAD %v", rp), 1, FLAG_CY, dad)
	}

	b.define(0x27, "DAA", 1, FLAG_ALL, func(cpu *Cpu, op *Operand) (fl Flags, err error) {
		cpu.A, fl = daa(cpu.A, cpu.Flags)
		return
	})

	// ALU group, register and immediate forms share the operation index.
	for n, name := range aluOps {
		for r := REG_B; r <= REG_A; r++ {
			b.define(0x80|uint8(n)<<3|uint8(r), fmt.Sprintf("%s %v", name, r), 1, FLAG_ALL, alu)
		}
		b.define(0xc6|uint8(n)<<3, fmt.Sprintf("%s D8", aluImm[n]), 2, FLAG_ALL, alu)
	}
}

func (b *builder) logical() {
	b.define(0x07, "RLC", 1, FLAG_CY, func(cpu *Cpu, op *Operand) (fl Flags, err error) {
		cpu.A, fl = rlc(cpu.A)
		return
	})
	b.define(0x0f, "RRC", 1, FLAG_CY, func(cpu *Cpu, op *Operand) (fl Flags, err error) {
		cpu.A, fl = rrc(cpu.A)
		return
	})
	b.define(0x17, "RAL", 1, FLAG_CY, func(cpu *Cpu, op *Operand) (fl Flags, err error) {
		cpu.A, fl = ral(cpu.A, cpu.Flags.CY)
		return
	})
	b.define(0x1f, "RAR", 1, FLAG_CY, func(cpu *Cpu, op *Operand) (fl Flags, err error) {
		cpu.A, fl = rar(cpu.A, cpu.Flags.CY)
		return
	})
	b.define(0x2f, "CMA", 1, FLAG_NONE, func(cpu *Cpu, op *Operand) (fl Flags, err error) {
		cpu.A = ^cpu.A
		return
	})
	b.define(0x37, "STC", 1, FLAG_CY, func(cpu *Cpu, op *Operand) (fl Flags, err error) {
		fl.CY = true
		return
	})
	b.define(0x3f, "CMC", 1, FLAG_CY, func(cpu *Cpu, op *Operand) (fl Flags, err error) {
		fl.CY = !cpu.Flags.CY
		return
	})
}

func (b *builder) branch() {
	b.define(0xc3, "JMP adr", 3, FLAG_NONE, func(cpu *Cpu, op *Operand) (fl Flags, err error) {
		op.Branch(op.Data, 0)
		return
	})
	b.define(0xcd, "CALL adr", 3, FLAG_NONE, func(cpu *Cpu, op *Operand) (fl Flags, err error) {
		err = cpu.push(op.Next)
		if err != nil {
			return
		}
		op.Branch(op.Data, 0)
		return
	})
	b.define(0xc9, "RET", 1, FLAG_NONE, func(cpu *Cpu, op *Operand) (fl Flags, err error) {
		target, err := cpu.pop()
		if err != nil {
			return
		}
		op.Branch(target, 0)
		return
	})
	b.define(0xe9, "PCHL", 1, FLAG_NONE, func(cpu *Cpu, op *Operand) (fl Flags, err error) {
		op.Branch(cpu.Pair(PAIR_HL), 0)
		return
	})

	for ccc, name := range conditions {
		b.define(0xc2|uint8(ccc)<<3, fmt.Sprintf("J%s adr", name), 3, FLAG_NONE, jumpCond)
		b.define(0xc4|uint8(ccc)<<3, fmt.Sprintf("C%s adr", name), 3, FLAG_NONE, callCond)
		b.define(0xc0|uint8(ccc)<<3, fmt.Sprintf("R%s", name), 1, FLAG_NONE, retCond)
	}

	for n := range 8 {
		b.define(0xc7|uint8(n)<<3, fmt.Sprintf("RST %d", n), 1, FLAG_NONE, rst)
	}
}

func (b *builder) control() {
	b.define(0x00, "NOP", 1, FLAG_NONE, func(cpu *Cpu, op *Operand) (fl Flags, err error) {
		return
	})
	b.define(0x76, "HLT", 1, FLAG_NONE, func(cpu *Cpu, op *Operand) (fl Flags, err error) {
		cpu.Status = STATUS_HALTED
		return
	})
	b.define(0xf3, "DI", 1, FLAG_NONE, func(cpu *Cpu, op *Operand) (fl Flags, err error) {
		cpu.InterruptEnable = false
		cpu.interruptDelay = false
		return
	})
	b.define(0xfb, "EI", 1, FLAG_NONE, func(cpu *Cpu, op *Operand) (fl Flags, err error) {
		cpu.InterruptEnable = true
		cpu.interruptDelay = true
		return
	})

	for rp := PAIR_BC; rp <= PAIR_SP; rp++ {
		name := rp.String()
		affects := FLAG_NONE
		if rp == PAIR_SP {
			name = PAIR_PSW.String()
			affects = FLAG_ALL
		}
		b.define(0xc5|uint8(rp)<<4, "PUSH "+name, 1, FLAG_NONE, push)
		b.define(0xc1|uint8(rp)<<4, "POP "+name, 1, affects, pop)
	}

	b.define(0xe3, "XTHL", 1, FLAG_NONE, func(cpu *Cpu, op *Operand) (fl Flags, err error) {
		value, err := cpu.Memory.Read16(cpu.SP)
		if err != nil {
			return
		}
		err = cpu.Memory.Write16(cpu.SP, cpu.Pair(PAIR_HL))
		if err != nil {
			return
		}
		cpu.SetPair(PAIR_HL, value)
		return
	})
	b.define(0xf9, "SPHL", 1, FLAG_NONE, func(cpu *Cpu, op *Operand) (fl Flags, err error) {
		cpu.SP = cpu.Pair(PAIR_HL)
		return
	})

	b.define(0xdb, "IN D8", 2, FLAG_NONE, func(cpu *Cpu, op *Operand) (fl Flags, err error) {
		if cpu.Ports == nil {
			err = ErrPortInvalid
			return
		}
		cpu.A, err = cpu.Ports.In(op.D8())
		return
	})
	b.define(0xd3, "OUT D8", 2, FLAG_NONE, func(cpu *Cpu, op *Operand) (fl Flags, err error) {
		if cpu.Ports == nil {
			err = ErrPortInvalid
			return
		}
		err = cpu.Ports.Out(op.D8(), cpu.A)
		return
	})
}

// Family handlers, decoding their operands from the opcode bits.

func movR(cpu *Cpu, op *Operand) (fl Flags, err error) {
	value, err := cpu.load(op.Src())
	if err != nil {
		return
	}
	err = cpu.store(op.Dst(), value)
	return
}

func mvi(cpu *Cpu, op *Operand) (fl Flags, err error) {
	err = cpu.store(op.Dst(), op.D8())
	return
}

func lxi(cpu *Cpu, op *Operand) (fl Flags, err error) {
	cpu.SetPair(op.Pair(), op.Data)
	return
}

func stax(cpu *Cpu, op *Operand) (fl Flags, err error) {
	err = cpu.Memory.Write8(cpu.Pair(op.Pair()), cpu.A)
	return
}

func ldax(cpu *Cpu, op *Operand) (fl Flags, err error) {
	cpu.A, err = cpu.Memory.Read8(cpu.Pair(op.Pair()))
	return
}

func inr(cpu *Cpu, op *Operand) (fl Flags, err error) {
	value, err := cpu.load(op.Dst())
	if err != nil {
		return
	}
	value, fl = inr8(value)
	err = cpu.store(op.Dst(), value)
	return
}

func dcr(cpu *Cpu, op *Operand) (fl Flags, err error) {
	value, err := cpu.load(op.Dst())
	if err != nil {
		return
	}
	value, fl = dcr8(value)
	err = cpu.store(op.Dst(), value)
	return
}

func inx(cpu *Cpu, op *Operand) (fl Flags, err error) {
	cpu.SetPair(op.Pair(), cpu.Pair(op.Pair())+1)
	return
}

func dcx(cpu *Cpu, op *Operand) (fl Flags, err error) {
	cpu.SetPair(op.Pair(), cpu.Pair(op.Pair())-1)
	return
}

func dad(cpu *Cpu, op *Operand) (fl Flags, err error) {
	var value uint16
	value, fl = dad16(cpu.Pair(PAIR_HL), cpu.Pair(op.Pair()))
	cpu.SetPair(PAIR_HL, value)
	return
}

var aluOps = [8]string{"ADD", "ADC", "SUB", "SBB", "ANA", "XRA", "ORA", "CMP"}
var aluImm = [8]string{"ADI", "ACI", "SUI", "SBI", "ANI", "XRI", "ORI", "CPI"}

// alu handles both 10AAASSS (register) and 11AAA110 (immediate) forms.
func alu(cpu *Cpu, op *Operand) (fl Flags, err error) {
	var value uint8
	if op.Opcode&0xc0 == 0xc0 {
		value = op.D8()
	} else {
		value, err = cpu.load(op.Src())
		if err != nil {
			return
		}
	}

	result := cpu.A
	switch (op.Opcode >> 3) & 0x7 {
	case 0:
		result, fl = add8(cpu.A, value, false)
	case 1:
		result, fl = add8(cpu.A, value, cpu.Flags.CY)
	case 2:
		result, fl = sub8(cpu.A, value, false)
	case 3:
		result, fl = sub8(cpu.A, value, cpu.Flags.CY)
	case 4:
		result, fl = and8(cpu.A, value)
	case 5:
		result, fl = xor8(cpu.A, value)
	case 6:
		result, fl = or8(cpu.A, value)
	case 7:
		_, fl = sub8(cpu.A, value, false)
	}
	cpu.A = result
	return
}

func jumpCond(cpu *Cpu, op *Operand) (fl Flags, err error) {
	if cpu.Flags.Cond(op.Opcode >> 3) {
		op.Branch(op.Data, 0)
	}
	return
}

// callCond pushes the return address only when the branch is taken.
func callCond(cpu *Cpu, op *Operand) (fl Flags, err error) {
	if !cpu.Flags.Cond(op.Opcode >> 3) {
		return
	}
	err = cpu.push(op.Next)
	if err != nil {
		return
	}
	op.Branch(op.Data, BRANCH_EXTRA_CYCLES)
	return
}

func retCond(cpu *Cpu, op *Operand) (fl Flags, err error) {
	if !cpu.Flags.Cond(op.Opcode >> 3) {
		return
	}
	target, err := cpu.pop()
	if err != nil {
		return
	}
	op.Branch(target, BRANCH_EXTRA_CYCLES)
	return
}

func rst(cpu *Cpu, op *Operand) (fl Flags, err error) {
	err = cpu.push(op.Next)
	if err != nil {
		return
	}
	op.Branch(uint16(op.Opcode&0x38), 0)
	return
}

func push(cpu *Cpu, op *Operand) (fl Flags, err error) {
	var value uint16
	if op.Pair() == PAIR_SP {
		value = uint16(cpu.A)<<8 | uint16(cpu.Flags.PSW())
	} else {
		value = cpu.Pair(op.Pair())
	}
	err = cpu.push(value)
	return
}

func pop(cpu *Cpu, op *Operand) (fl Flags, err error) {
	value, err := cpu.pop()
	if err != nil {
		return
	}
	if op.Pair() == PAIR_SP {
		cpu.A = uint8(value >> 8)
		fl = FlagsFromPSW(uint8(value))
	} else {
		cpu.SetPair(op.Pair(), value)
	}
	return
}

package cpu

// Zero is true when value, truncated to width bits, is zero.
func Zero(value uint16, width int) bool {
	return value&widthMask(width) == 0
}

// Sign is true when the most significant bit of value, within width bits, is set.
func Sign(value uint16, width int) bool {
	return (value>>(width-1))&1 == 1
}

// Parity is true when the low 8 bits of value have an even number of set bits.
func Parity(value uint16) bool {
	count := 0
	for range 8 {
		count += int(value & 1)
		value >>= 1
	}
	return count&1 == 0
}

func widthMask(width int) uint16 {
	if width >= 16 {
		return 0xffff
	}
	return (1 << width) - 1
}

// zsp computes the Zero, Sign and Parity flags of an 8-bit result.
func zsp(result uint8) Flags {
	return Flags{
		Z: Zero(uint16(result), 8),
		S: Sign(uint16(result), 8),
		P: Parity(uint16(result)),
	}
}

// add8 adds with carry in.
//
// Flags: Z S P CY AC
func add8(a, b uint8, carry bool) (result uint8, fl Flags) {
	sum := uint16(a) + uint16(b)
	if carry {
		sum++
	}
	result = uint8(sum)
	fl = zsp(result)
	fl.CY = sum > 0xff
	fl.AC = (a^b^result)&0x10 != 0
	return
}

// sub8 subtracts with borrow in, as a + ^b + !borrow. CY is the borrow,
// AC is the carry out of bit 3 of the addition.
//
// Flags: Z S P CY AC
func sub8(a, b uint8, borrow bool) (result uint8, fl Flags) {
	result, fl = add8(a, ^b, !borrow)
	fl.CY = !fl.CY
	return
}

// inr8 increments.
//
// Flags: Z S P AC (CY is not affected)
func inr8(value uint8) (result uint8, fl Flags) {
	result = value + 1
	fl = zsp(result)
	fl.AC = result&0x0f == 0
	return
}

// dcr8 decrements.
//
// Flags: Z S P AC (CY is not affected)
func dcr8(value uint8) (result uint8, fl Flags) {
	result = value - 1
	fl = zsp(result)
	fl.AC = result&0x0f != 0x0f
	return
}

// and8 is the logical AND. AC reflects bit 3 of the operands.
//
// Flags: Z S P CY AC
func and8(a, b uint8) (result uint8, fl Flags) {
	result = a & b
	fl = zsp(result)
	fl.AC = (a|b)&0x08 != 0
	return
}

// xor8 is the logical exclusive OR.
//
// Flags: Z S P CY AC
func xor8(a, b uint8) (result uint8, fl Flags) {
	result = a ^ b
	fl = zsp(result)
	return
}

// or8 is the logical OR.
//
// Flags: Z S P CY AC
func or8(a, b uint8) (result uint8, fl Flags) {
	result = a | b
	fl = zsp(result)
	return
}

// daa adjusts the accumulator to two BCD digits.
//
// Flags: Z S P CY AC
func daa(a uint8, prior Flags) (result uint8, fl Flags) {
	var correction uint8
	carry := prior.CY

	lsb := a & 0x0f
	msb := a >> 4
	if prior.AC || lsb > 9 {
		correction += 0x06
	}
	if prior.CY || msb > 9 || (msb >= 9 && lsb > 9) {
		correction += 0x60
		carry = true
	}

	result, fl = add8(a, correction, false)
	fl.CY = carry
	return
}

// dad16 is the 16-bit add of DAD.
//
// Flags: CY
func dad16(a, b uint16) (result uint16, fl Flags) {
	sum := uint32(a) + uint32(b)
	result = uint16(sum)
	fl.CY = sum > 0xffff
	return
}

// rlc rotates left, bit 7 into bit 0 and CY.
//
// Flags: CY
func rlc(a uint8) (result uint8, fl Flags) {
	result = a<<1 | a>>7
	fl.CY = a&0x80 != 0
	return
}

// rrc rotates right, bit 0 into bit 7 and CY.
//
// Flags: CY
func rrc(a uint8) (result uint8, fl Flags) {
	result = a>>1 | a<<7
	fl.CY = a&0x01 != 0
	return
}

// ral rotates left through carry.
//
// Flags: CY
func ral(a uint8, carry bool) (result uint8, fl Flags) {
	result = a << 1
	if carry {
		result |= 0x01
	}
	fl.CY = a&0x80 != 0
	return
}

// rar rotates right through carry.
//
// Flags: CY
func rar(a uint8, carry bool) (result uint8, fl Flags) {
	result = a >> 1
	if carry {
		result |= 0x80
	}
	fl.CY = a&0x01 != 0
	return
}

package io

const (
	SHIFTER_AMOUNT = 0 // Shift amount register, write-only.
	SHIFTER_RESULT = 1 // Shifted result register, read-only.
	SHIFTER_DATA   = 2 // Data register, write-only.
)

// Shifter is the 16-bit hardware shift register of 8080 arcade boards.
//
// Writes to the data register shift a byte into the high half of the
// register. The result is the 8 bits starting (8 - amount) bits up.
type Shifter struct {
	Amount uint8 // Low 3 bits are significant.
	Value  uint16
}

var _ Device = (*Shifter)(nil)

// Registers of the shifter.
func (sr *Shifter) Registers() []string {
	return []string{"AMOUNT", "RESULT", "DATA"}
}

// Result returns the shifted byte.
func (sr *Shifter) Result() uint8 {
	return uint8(sr.Value >> (8 - sr.Amount&0x7))
}

// In reads the result.
func (sr *Shifter) In(reg int) (value uint8, err error) {
	switch reg {
	case SHIFTER_RESULT:
		value = sr.Result()
	case SHIFTER_AMOUNT, SHIFTER_DATA:
		err = ErrPortWriteOnly
	default:
		err = ErrPortUnmapped
	}

	return
}

// Out sets the amount, or shifts in data.
func (sr *Shifter) Out(reg int, value uint8) (err error) {
	switch reg {
	case SHIFTER_AMOUNT:
		sr.Amount = value & 0x7
	case SHIFTER_DATA:
		sr.Value = uint16(value)<<8 | sr.Value>>8
	case SHIFTER_RESULT:
		err = ErrPortReadOnly
	default:
		err = ErrPortUnmapped
	}

	return
}

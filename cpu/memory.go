package cpu

const (
	MEMORY_SIZE_MAX = 0x10000 // 16-bit address space.
)

// Memory is a flat, byte addressable store. All accesses are checked
// against the configured size; nothing wraps.
type Memory struct {
	data []byte
}

// NewMemory creates a zeroed memory of size bytes.
func NewMemory(size int) (mem *Memory, err error) {
	if size < 1 || size > MEMORY_SIZE_MAX {
		err = ErrMemorySize
		return
	}

	mem = &Memory{data: make([]byte, size)}
	return
}

// Size returns the configured address space size.
func (mem *Memory) Size() int {
	return len(mem.data)
}

func (mem *Memory) check(addr int, count int) (err error) {
	if addr < 0 || addr+count > len(mem.data) {
		bad := addr
		if bad >= 0 && bad < len(mem.data) {
			bad = len(mem.data)
		}
		err = &ErrAddress{Address: bad, Size: len(mem.data)}
	}
	return
}

// Read8 reads a byte.
func (mem *Memory) Read8(addr uint16) (value uint8, err error) {
	err = mem.check(int(addr), 1)
	if err != nil {
		return
	}

	value = mem.data[addr]
	return
}

// Write8 writes a byte.
func (mem *Memory) Write8(addr uint16, value uint8) (err error) {
	err = mem.check(int(addr), 1)
	if err != nil {
		return
	}

	mem.data[addr] = value
	return
}

// Read16 reads a little-endian word: low byte at addr, high byte at addr+1.
func (mem *Memory) Read16(addr uint16) (value uint16, err error) {
	err = mem.check(int(addr), 2)
	if err != nil {
		return
	}

	value = uint16(mem.data[int(addr)+1])<<8 | uint16(mem.data[addr])
	return
}

// Write16 writes a little-endian word. Both addresses are checked before
// either byte is written.
func (mem *Memory) Write16(addr uint16, value uint16) (err error) {
	err = mem.check(int(addr), 2)
	if err != nil {
		return
	}

	mem.data[addr] = uint8(value)
	mem.data[int(addr)+1] = uint8(value >> 8)
	return
}

// Load copies data into memory starting at base. Memory is untouched
// if the image does not fit.
func (mem *Memory) Load(data []byte, base uint16) (err error) {
	err = mem.check(int(base), len(data))
	if err != nil {
		return
	}

	copy(mem.data[base:], data)
	return
}

// Bytes returns a copy of the memory contents.
func (mem *Memory) Bytes() []byte {
	return append([]byte(nil), mem.data...)
}

// Reset zeroes memory.
func (mem *Memory) Reset() {
	clear(mem.data)
}

package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable(t *testing.T) {
	assert := assert.New(t)

	tbl := NewTable(Config{})

	implemented := 0
	for opcode, in := range tbl.All() {
		assert.Equal(opcode, in.Opcode)
		if !in.Implemented() {
			assert.Equal("???", in.Mnemonic)
			assert.Equal(1, in.Length)
			continue
		}
		implemented++
		assert.False(in.Undocumented(), in.String())
		assert.True(in.Length >= 1 && in.Length <= 3, in.String())
		assert.True(in.Cycles >= 4, in.String())
	}
	assert.Equal(244, implemented)

	for opcode := range undocumented {
		assert.False(tbl.Lookup(opcode).Implemented())
	}
}

func TestTable_Undocumented(t *testing.T) {
	assert := assert.New(t)

	tbl := NewTable(Config{Undocumented: true})

	for _, in := range tbl.All() {
		assert.True(in.Implemented(), in.String())
	}

	for opcode, twin := range undocumented {
		in := tbl.Lookup(opcode)
		assert.True(in.Undocumented())
		assert.Equal("*"+tbl.Lookup(twin).Mnemonic, in.Mnemonic)
		assert.Equal(tbl.Lookup(twin).Length, in.Length)
	}

	assert.Equal("*JMP adr", tbl.Lookup(0xcb).Mnemonic)
	assert.Equal("JMP 1234H", tbl.Lookup(0xcb).Format(0x1234))
}

func TestTable_Entries(t *testing.T) {
	assert := assert.New(t)

	tbl := NewTable(Config{})

	table := [](struct {
		opcode   uint8
		mnemonic string
		length   int
		cycles   int
		affects  FlagMask
	}){
		{0x00, "NOP", 1, 4, FLAG_NONE},
		{0x01, "LXI B,D16", 3, 10, FLAG_NONE},
		{0x02, "STAX B", 1, 7, FLAG_NONE},
		{0x05, "DCR B", 1, 5, FLAG_ZSP | FLAG_AC},
		{0x06, "MVI B,D8", 2, 7, FLAG_NONE},
		{0x09, "DAD B", 1, 10, FLAG_CY},
		{0x22, "SHLD adr", 3, 16, FLAG_NONE},
		{0x27, "DAA", 1, 4, FLAG_ALL},
		{0x31, "LXI SP,D16", 3, 10, FLAG_NONE},
		{0x34, "INR M", 1, 10, FLAG_ZSP | FLAG_AC},
		{0x36, "MVI M,D8", 2, 10, FLAG_NONE},
		{0x37, "STC", 1, 4, FLAG_CY},
		{0x76, "HLT", 1, 7, FLAG_NONE},
		{0x77, "MOV M,A", 1, 7, FLAG_NONE},
		{0x78, "MOV A,B", 1, 5, FLAG_NONE},
		{0x86, "ADD M", 1, 7, FLAG_ALL},
		{0xbf, "CMP A", 1, 4, FLAG_ALL},
		{0xc0, "RNZ", 1, 5, FLAG_NONE},
		{0xc3, "JMP adr", 3, 10, FLAG_NONE},
		{0xc4, "CNZ adr", 3, 11, FLAG_NONE},
		{0xc9, "RET", 1, 10, FLAG_NONE},
		{0xcd, "CALL adr", 3, 17, FLAG_NONE},
		{0xd3, "OUT D8", 2, 10, FLAG_NONE},
		{0xe3, "XTHL", 1, 18, FLAG_NONE},
		{0xe6, "ANI D8", 2, 7, FLAG_ALL},
		{0xeb, "XCHG", 1, 4, FLAG_NONE},
		{0xf1, "POP PSW", 1, 10, FLAG_ALL},
		{0xf5, "PUSH PSW", 1, 11, FLAG_NONE},
		{0xfb, "EI", 1, 4, FLAG_NONE},
		{0xff, "RST 7", 1, 11, FLAG_NONE},
	}

	for _, entry := range table {
		in := tbl.Lookup(entry.opcode)
		assert.Equal(entry.mnemonic, in.Mnemonic, "0x%02x", entry.opcode)
		assert.Equal(entry.length, in.Length, entry.mnemonic)
		assert.Equal(entry.cycles, in.Cycles, entry.mnemonic)
		assert.Equal(entry.affects, in.Affects, entry.mnemonic)
	}
}

func TestInstruction_Format(t *testing.T) {
	assert := assert.New(t)

	tbl := NewTable(Config{})

	assert.Equal("LXI B,1234H", tbl.Lookup(0x01).Format(0x1234))
	assert.Equal("LXI B,0BEEFH", tbl.Lookup(0x01).Format(0xbeef))
	assert.Equal("MVI A,0FFH", tbl.Lookup(0x3e).Format(0xff))
	assert.Equal("MVI A,12H", tbl.Lookup(0x3e).Format(0x3412))
	assert.Equal("JMP 0000H", tbl.Lookup(0xc3).Format(0))
	assert.Equal("RET", tbl.Lookup(0xc9).Format(0x1234))
}

func TestTable_Disassemble(t *testing.T) {
	assert := assert.New(t)

	tbl := NewTable(Config{})
	mem, err := NewMemory(5)
	require.NoError(t, err)
	require.NoError(t, mem.Load([]byte{0x01, 0x34, 0x12, 0x08, 0xc3}, 0))

	table := [](struct {
		addr   uint16
		text   string
		length int
	}){
		{0, "LXI B,1234H", 3},
		{3, ".db 08H", 1},
		{4, ".db 0C3H", 1},
		{5, "", 0},
	}

	for _, entry := range table {
		text, length := tbl.Disassemble(mem, entry.addr)
		assert.Equal(entry.text, text)
		assert.Equal(entry.length, length)
	}
}

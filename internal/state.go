package internal

import (
	"errors"
)

var ErrStateShort = errors.New("state truncated")

// State is a little-endian byte stream used to save and load machine
// state. Reads past the end of the stream return zero values and set a
// sticky error, reported by Err.
type State struct {
	raw          []byte
	readPosition int
	err          error
}

// NewState creates an empty state for writing.
func NewState() *State {
	return &State{
		raw: make([]byte, 0),
	}
}

// StateFromBytes creates a state for reading raw.
func StateFromBytes(raw []byte) *State {
	return &State{
		raw: raw,
	}
}

// Bytes returns the written stream.
func (s *State) Bytes() []byte {
	return s.raw
}

// Err returns the first read error.
func (s *State) Err() error {
	return s.err
}

// Remaining is the count of unread bytes.
func (s *State) Remaining() int {
	return len(s.raw) - s.readPosition
}

func (s *State) Write8(value uint8) {
	s.raw = append(s.raw, value)
}

func (s *State) Write16(value uint16) {
	s.raw = append(s.raw, byte(value), byte(value>>8))
}

func (s *State) Write32(value uint32) {
	s.raw = append(s.raw, byte(value), byte(value>>8), byte(value>>16), byte(value>>24))
}

func (s *State) Write64(value uint64) {
	s.Write32(uint32(value))
	s.Write32(uint32(value >> 32))
}

func (s *State) WriteBool(value bool) {
	if value {
		s.raw = append(s.raw, 1)
	} else {
		s.raw = append(s.raw, 0)
	}
}

func (s *State) WriteData(data []byte) {
	s.raw = append(s.raw, data...)
}

// WriteString writes a 16-bit length followed by the string bytes.
func (s *State) WriteString(text string) {
	s.Write16(uint16(len(text)))
	s.raw = append(s.raw, text[:uint16(len(text))]...)
}

// take consumes n bytes, or none if fewer remain.
func (s *State) take(n int) (data []byte) {
	if s.err != nil {
		return
	}
	if n < 0 || s.Remaining() < n {
		s.err = ErrStateShort
		return
	}
	data = s.raw[s.readPosition : s.readPosition+n]
	s.readPosition += n
	return
}

func (s *State) Read8() uint8 {
	data := s.take(1)
	if data == nil {
		return 0
	}
	return data[0]
}

func (s *State) Read16() uint16 {
	data := s.take(2)
	if data == nil {
		return 0
	}
	return uint16(data[0]) | uint16(data[1])<<8
}

func (s *State) Read32() uint32 {
	data := s.take(4)
	if data == nil {
		return 0
	}
	return uint32(data[0]) | uint32(data[1])<<8 | uint32(data[2])<<16 | uint32(data[3])<<24
}

func (s *State) Read64() uint64 {
	lo := s.Read32()
	hi := s.Read32()
	return uint64(hi)<<32 | uint64(lo)
}

func (s *State) ReadBool() bool {
	return s.Read8() != 0
}

// ReadData fills p from the stream.
func (s *State) ReadData(p []byte) {
	copy(p, s.take(len(p)))
}

func (s *State) ReadString() string {
	size := int(s.Read16())
	return string(s.take(size))
}

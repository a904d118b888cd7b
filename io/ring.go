package io

import (
	"io"
)

const (
	RING_STATUS = 0 // Status register, read-only.
	RING_DATA   = 1 // Data register.

	RING_STATUS_READY = uint8(1 << 0) // A byte can be read.
	RING_STATUS_SPACE = uint8(1 << 1) // A byte can be written.

	// RING_DEFAULT_CAPACITY is the default capacity in bytes for a new ring.
	RING_DEFAULT_CAPACITY = 4096
)

// Ring is a circular byte buffer. OUT to the data register appends, IN
// from it consumes the oldest byte, or reads 0 when empty.
type Ring struct {
	Capacity int

	ReadIndex int
	Length    int
	Data      []uint8
}

var _ Device = (*Ring)(nil)

// Registers of the ring.
func (ring *Ring) Registers() []string {
	return []string{"STATUS", "DATA"}
}

// Rewind empties the ring, allocating its storage if needed.
func (ring *Ring) Rewind() {
	if ring.Data == nil {
		if ring.Capacity == 0 {
			ring.Capacity = RING_DEFAULT_CAPACITY
		}
		ring.Data = make([]byte, ring.Capacity)
	} else {
		ring.Capacity = len(ring.Data)
	}

	ring.ReadIndex = 0
	ring.Length = 0
}

// Unmarshal loads ring contents from a reader, replacing any existing data.
// Bytes past the capacity are dropped with ErrRingFull.
func (ring *Ring) Unmarshal(file io.Reader) (err error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return
	}

	ring.Rewind()
	for _, value := range data {
		err = ring.Write(value)
		if err != nil {
			return
		}
	}

	return
}

// Marshal writes the unread ring contents, oldest first.
func (ring *Ring) Marshal(file io.Writer) (err error) {
	out := make([]byte, 0, ring.Length)
	for n := range ring.Length {
		out = append(out, ring.Data[(ring.ReadIndex+n)%len(ring.Data)])
	}

	_, err = file.Write(out)
	return
}

// Write appends a byte. Returns ErrRingFull if the ring is at capacity.
func (ring *Ring) Write(value uint8) (err error) {
	if ring.Data == nil {
		ring.Rewind()
	}

	if ring.Length >= len(ring.Data) {
		err = ErrRingFull
		return
	}

	ring.Data[(ring.ReadIndex+ring.Length)%len(ring.Data)] = value
	ring.Length++
	return
}

// Read consumes the oldest byte.
func (ring *Ring) Read() (value uint8, ok bool) {
	if ring.Length == 0 {
		return
	}

	value = ring.Data[ring.ReadIndex]
	ring.ReadIndex = (ring.ReadIndex + 1) % len(ring.Data)
	ring.Length--
	return value, true
}

// In reads the status or the oldest byte.
func (ring *Ring) In(reg int) (value uint8, err error) {
	switch reg {
	case RING_STATUS:
		if ring.Length > 0 {
			value |= RING_STATUS_READY
		}
		if ring.Data == nil || ring.Length < len(ring.Data) {
			value |= RING_STATUS_SPACE
		}
	case RING_DATA:
		value, _ = ring.Read()
	default:
		err = ErrPortUnmapped
	}

	return
}

// Out appends to the ring.
func (ring *Ring) Out(reg int, value uint8) (err error) {
	switch reg {
	case RING_STATUS:
		err = ErrPortReadOnly
	case RING_DATA:
		err = ring.Write(value)
	default:
		err = ErrPortUnmapped
	}

	return
}

package io

import (
	"errors"

	"github.com/ezrec/i8080/cpu"
	"github.com/ezrec/i8080/translate"
)

var f = translate.From

var (
	// Bus errors
	ErrPortUnmapped  = errors.New(f("port unmapped"))
	ErrPortBusy      = errors.New(f("port busy"))
	ErrPortCount     = errors.New(f("port count mismatch"))
	ErrPortReadOnly  = errors.New(f("port read-only"))
	ErrPortWriteOnly = errors.New(f("port write-only"))

	// Device errors
	ErrRingFull = errors.New(f("ring full"))
)

// ErrPort is the failure of one port access.
type ErrPort struct {
	Port  uint8
	Write bool
	Err   error
}

func (err *ErrPort) Error() string {
	if err.Write {
		return f("OUT %02XH: %v", err.Port, err.Err)
	}
	return f("IN %02XH: %v", err.Port, err.Err)
}

func (err *ErrPort) Unwrap() error {
	return err.Err
}

// Is matches cpu.ErrPortInvalid.
func (err *ErrPort) Is(target error) bool {
	return target == cpu.ErrPortInvalid
}

package emulator

import (
	"errors"

	"github.com/ezrec/i8080/translate"
)

var f = translate.From

var (
	ErrCheckpointEmpty = errors.New(f("no checkpoint to rewind to"))
	ErrBdosFunction    = errors.New(f("unsupported BDOS function"))
	ErrBdosString      = errors.New(f("unterminated BDOS string"))
	ErrStateFormat     = errors.New(f("save state format"))
)

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	Address uint16
	LineNo  int
	Err     error
}

func (err *ErrRuntime) Error() string {
	if err.LineNo == 0 {
		return f("%04XH: %v", err.Address, err.Err)
	}
	return f("line %d (%04XH): %v", err.LineNo, err.Address, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}

// ErrBdos is the failure of a BDOS call.
type ErrBdos struct {
	Function uint8
	Err      error
}

func (err *ErrBdos) Error() string {
	return f("BDOS function %d: %v", err.Function, err.Err)
}

func (err *ErrBdos) Unwrap() error {
	return err.Err
}

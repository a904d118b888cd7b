package cpu

import (
	"errors"

	"github.com/ezrec/i8080/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrUnimplementedOpcode = errors.New(f("unimplemented opcode"))
	ErrAddressOutOfRange   = errors.New(f("address out of range"))
	ErrHalted              = errors.New(f("cpu halted"))
	ErrFaulted             = errors.New(f("cpu faulted"))
	ErrInterruptVector     = errors.New(f("interrupt vector invalid"))
	ErrPortInvalid         = errors.New(f("port invalid"))
	ErrMemorySize          = errors.New(f("memory size invalid"))

	// Snapshot errors
	ErrSnapshotCorrupt = errors.New(f("snapshot corrupt"))

	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrOriginSyntax       = errors.New(f(".org syntax"))
	ErrDataSyntax         = errors.New(f("data syntax"))
	ErrOpcodeMissing      = errors.New(f("opcode missing"))
	ErrOperandInvalid     = errors.New(f("operand invalid"))
	ErrOperandRange       = errors.New(f("operand out of range"))
	ErrProgramOverlap     = errors.New(f("program overlaps itself"))
	ErrInstructionInvalid = errors.New(f("instruction invalid"))
	ErrMacroSyntax        = errors.New(f("macro syntax"))
	ErrMacroNesting       = errors.New(f("macro nesting not permitted"))
	ErrMacroDuplicate     = errors.New(f("macro duplicated"))
	ErrMacroLonelyEndm    = errors.New(f(".endm without .macro"))
	ErrMacroLonely        = errors.New(f(".macro without .endm"))
)

// ErrOpcode reports an opcode with no bound handler.
type ErrOpcode struct {
	Opcode  uint8
	Address uint16
}

func (eo *ErrOpcode) Error() string {
	return f("unimplemented opcode 0x%02x at 0x%04x", eo.Opcode, eo.Address)
}

func (eo *ErrOpcode) Is(err error) bool {
	return err == ErrUnimplementedOpcode
}

// ErrAddress reports a memory access outside of the configured address space.
type ErrAddress struct {
	Address int
	Size    int
}

func (ea *ErrAddress) Error() string {
	return f("address 0x%04x out of range (size 0x%04x)", ea.Address, ea.Size)
}

func (ea *ErrAddress) Is(err error) bool {
	return err == ErrAddressOutOfRange
}

// ErrFault records the instruction that faulted the CPU.
type ErrFault struct {
	Address  uint16
	Mnemonic string
	Err      error
}

func (ef *ErrFault) Error() string {
	return f("fault at 0x%04x (%v): %v", ef.Address, ef.Mnemonic, ef.Err)
}

func (ef *ErrFault) Unwrap() error {
	return ef.Err
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

type ErrParseCharacter string

func (err ErrParseCharacter) Error() string {
	return f("'%v' is not a character", string(err))
}

type ErrMacro struct {
	Macro string
	Line  int
	Err   error
}

func (err ErrMacro) Error() string {
	return f("macro %v line %v %v", err.Macro, err.Line, err.Err.Error())
}

func (err ErrMacro) Unwrap() error {
	return err.Err
}

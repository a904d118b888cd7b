// Package cpu implements an Intel 8080 instruction-execution core and its
// assembler.
//
// The CPU consists of seven 8-bit registers (A, B, C, D, E, H, L), a stack
// pointer, a program counter, five status flags and a range-checked byte
// addressable memory of up to 64KiB. Instructions are dispatched through a
// 256-entry table; each entry declares its length, base cycle cost and the
// flags it may change, and the dispatcher enforces all three.
//
// A step that fails (an unimplemented opcode, or a memory or port access out
// of range) leaves the CPU faulted with its registers and flags as they were
// before the step. Halted and faulted CPUs refuse to step until Reset or
// Restore.
//
// The assembler accepts Intel mnemonics, derived from the same table,
// supporting labels, equates, data directives and compile-time expression
// evaluation.
package cpu

// Package cpu implements the Intel 8080 microprocessor and an assembler for it.
//
// The CPU consists of seven 8-bit registers (A, B, C, D, E, H, L), a 16-bit
// stack pointer and program counter, five condition flags, an interrupt
// enable bit, and exclusive ownership of a 64KiB memory image. Instructions
// are decoded through a 256-entry table built once at package init; every
// entry is explicit, so an opcode can never fall through into its
// neighbour's semantics.
//
// The assembler provides the Intel mnemonics of the 8080 instruction set,
// supporting macros, labels, equates, and compile-time expression evaluation.
package cpu

// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"fmt"
	"iter"
	"log"
	"maps"
)

var _cpu_defines = map[string]string{
	"MEMORY_SIZE": fmt.Sprintf("%#x", MEMORY_SIZE),
	"MAX_ADDRESS": fmt.Sprintf("%#x", MAX_ADDRESS),
}

// Cpu is the simulation context for an Intel 8080.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	A, B, C, D, E, H, L uint8 // Registers.

	SP Address // Stack pointer.
	PC Address // Program counter.

	Memory *Memory // Memory image, owned by this Cpu.

	Ticks int   // Cycle counter.
	State State // Dispatcher state.

	flags Flags // Condition flags.
	inte  bool  // Interrupt enable.
}

// NewCpu creates a new CPU with a zeroed memory image.
func NewCpu() (cpu *Cpu) {
	cpu = &Cpu{
		Memory: &Memory{},
	}

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// Reset the CPU state.
// - Clears the registers, flags, SP and PC.
// - Zeros the cycle counter.
// - Disables interrupts.
// - Leaves memory untouched.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	cpu.A, cpu.B, cpu.C, cpu.D, cpu.E, cpu.H, cpu.L = 0, 0, 0, 0, 0, 0, 0
	cpu.SP = 0
	cpu.PC = 0
	cpu.Ticks = 0
	cpu.State = STATE_FETCHING
	cpu.flags = Flags{}
	cpu.inte = false
}

// Flags returns a snapshot of the condition flags.
func (cpu *Cpu) Flags() Flags {
	return cpu.flags
}

// InterruptEnabled returns the interrupt enable bit.
func (cpu *Cpu) InterruptEnabled() bool {
	return cpu.inte
}

// Jump sets the program counter for the next Step.
// Addresses outside of [0, MAX_ADDRESS] return ErrAddressRange and leave
// the CPU unchanged.
func (cpu *Cpu) Jump(pc int) (err error) {
	if pc < 0 || pc > MAX_ADDRESS {
		err = ErrAddressRange
		return
	}

	cpu.PC = Address(pc)

	return
}

// Fault stops the CPU. Every later Step returns ErrFaulted until Reset.
func (cpu *Cpu) Fault() {
	cpu.State = STATE_FAULTED
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	text += fmt.Sprintf("   pc: %v\n", cpu.PC)
	text += fmt.Sprintf("   sp: %v\n", cpu.SP)
	text += fmt.Sprintf("    a: %02X\n", cpu.A)
	text += fmt.Sprintf("   bc: %04X\n", cpu.BC())
	text += fmt.Sprintf("   de: %04X\n", cpu.DE())
	text += fmt.Sprintf("   hl: %04X\n", cpu.HL())
	text += fmt.Sprintf("flags: %v\n", cpu.flags)
	text += fmt.Sprintf(" inte: %v\n", cpu.inte)

	return
}

// Step executes exactly one instruction.
//
// Returns nil on success, *ErrOpcode for an unimplemented opcode (the PC
// still advances past it, nothing else changes), ErrHalted once a HLT has
// executed, and ErrFaulted after Fault.
func (cpu *Cpu) Step() (err error) {
	switch cpu.State {
	case STATE_HALTED:
		return ErrHalted
	case STATE_FAULTED:
		return ErrFaulted
	}

	pc := cpu.PC

	cpu.State = STATE_FETCHING
	op := cpu.Memory.Read(pc)
	data := cpu.Memory.ReadWord(pc + 1)

	cpu.State = STATE_DECODING
	inst := Decode(op)

	if cpu.Verbose {
		log.Printf("cpu: %v: %-16v a=%02X bc=%04X de=%04X hl=%04X sp=%v [%v]", pc, inst.Format(data), cpu.A, cpu.BC(), cpu.DE(), cpu.HL(), cpu.SP, cpu.flags)
	}

	cpu.State = STATE_EXECUTING
	cpu.Ticks += inst.Cycles

	if inst.exec == nil {
		cpu.PC = pc + Address(inst.Length)
		cpu.State = STATE_FETCHING
		err = &ErrOpcode{Opcode: op, Pc: pc}
		if cpu.Verbose {
			log.Printf("cpu: %v", err)
		}
		return
	}

	if !inst.exec(cpu, data) {
		cpu.PC = pc + Address(inst.Length)
	}

	if cpu.State == STATE_HALTED {
		err = ErrHalted
		return
	}

	cpu.State = STATE_FETCHING

	return
}

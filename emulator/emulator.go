// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"context"
	"errors"
	"fmt"
	stdio "io"
	"io/fs"
	"iter"
	"log"
	"maps"
	"slices"

	"github.com/ezrec/i8080/cpu"
	"github.com/ezrec/i8080/internal"
	"github.com/ezrec/i8080/io"
)

const (
	STACK_TOP = cpu.MAX_ADDRESS // Conventional initial stack for test programs.
)

var _emulator_defines = map[string]string{
	"STACK_TOP": fmt.Sprintf("%#x", STACK_TOP),
}

// Emulator state. CPU + loaded image.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	Strict   bool         // If set, an unimplemented opcode faults the CPU.
	MaxSteps int          // If non-zero, Run stops with ErrStepLimit after this many steps.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Listing of the loaded image, if it was assembled.

	Rom    io.Rom // Loaded image.
	Length int    // Length of the loaded image.
	Steps  int    // Instructions executed since Reset.

	Unimplemented []cpu.ErrOpcode // Unimplemented opcodes met since Reset.
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Cpu:     cpu.NewCpu(),
		Program: &cpu.Program{},
	}

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.UniqueConcat2(maps.All(_emulator_defines),
		emu.Cpu.Defines(),
		emu.Rom.Defines(),
	)
}

// Load reads a flat image from src into memory at address 0.
func (emu *Emulator) Load(src stdio.Reader) (err error) {
	rom := io.Rom{}
	err = rom.Read(src)
	if err != nil {
		return
	}

	emu.install(rom)
	emu.Program = &cpu.Program{}

	return
}

// LoadFS loads the image named name from fsys. The image must be exactly
// the size fsys reports for it.
func (emu *Emulator) LoadFS(fsys fs.FS, name string) (err error) {
	mem := &cpu.Memory{}
	length, err := io.LoadFS(mem, fsys, name)
	if err != nil {
		return
	}

	emu.install(io.Rom{Data: slices.Clone(mem[:length])})
	emu.Program = &cpu.Program{}

	return
}

// LoadProgram installs an assembled program, keeping its listing for
// line number lookups.
func (emu *Emulator) LoadProgram(prog *cpu.Program) (err error) {
	emu.install(io.Rom{Data: prog.Binary()})
	emu.Program = prog

	return
}

// install replaces memory with the image.
func (emu *Emulator) install(rom io.Rom) {
	emu.Rom = rom
	emu.Cpu.Memory.Reset()
	emu.Length = emu.Rom.Store(emu.Cpu.Memory)

	if emu.Verbose {
		log.Printf("emulator: loaded %d bytes", emu.Length)
	}
}

// Reset the CPU, leaving the loaded image in memory.
func (emu *Emulator) Reset() (err error) {
	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Reset()
	emu.Steps = 0
	emu.Unimplemented = nil

	return
}

// Ticks returns the total cycles since a reset.
func (emu *Emulator) Ticks() int {
	return emu.Cpu.Ticks
}

// Pc returns current program counter.
func (emu *Emulator) Pc() int {
	return int(emu.Cpu.PC)
}

// LineNo returns the source line number for the executing opcode, or 0
// if the image was not assembled.
func (emu *Emulator) LineNo() int {
	dbg := emu.Program.Debug(emu.Cpu.PC)
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.LineNo
}

// Tick performs a single instruction of the emulator.
// done is set once the CPU halts, or the PC leaves the loaded image.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	if emu.Pc() >= emu.Length {
		if emu.Verbose {
			log.Printf("emulator: pc %v past end of image", emu.Cpu.PC)
		}
		done = true
		return
	}

	pc := emu.Cpu.PC
	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{Pc: pc, LineNo: lineno, Err: err}
		}
	}()

	err = emu.Cpu.Step()
	emu.Steps++

	var opcode_err *cpu.ErrOpcode
	switch {
	case err == nil:
	case errors.Is(err, cpu.ErrHalted):
		err = nil
		done = true
	case errors.As(err, &opcode_err):
		emu.Unimplemented = append(emu.Unimplemented, *opcode_err)
		if emu.Strict {
			emu.Cpu.Fault()
			return
		}
		if emu.Verbose {
			log.Printf("emulator: %v", err)
		}
		err = nil
	}

	return
}

// Run ticks the emulator until done, an error, or ctx is cancelled.
// Cancellation is only observed between instructions.
func (emu *Emulator) Run(ctx context.Context) (err error) {
	for {
		err = ctx.Err()
		if err != nil {
			return
		}

		if emu.MaxSteps != 0 && emu.Steps >= emu.MaxSteps {
			err = &ErrRuntime{Pc: emu.Cpu.PC, LineNo: emu.LineNo(), Err: ErrStepLimit}
			return
		}

		var done bool
		done, err = emu.Tick()
		if err != nil || done {
			return
		}
	}
}

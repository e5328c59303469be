// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ezrec/i8080/cpu"
	"github.com/ezrec/i8080/emulator"
	"github.com/ezrec/i8080/io"
)

// isSource returns true if the file should be assembled before use.
func isSource(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".asm", ".s", ".a80":
		return true
	}
	return false
}

// assemble parses the source file, with the emulator defines predefined.
func assemble(emu *emulator.Emulator, name string, verbose bool) (prog *cpu.Program, err error) {
	inf, err := os.Open(name)
	if err != nil {
		return
	}
	defer inf.Close()

	asm := &cpu.Assembler{Verbose: verbose}
	for key, value := range emu.Defines() {
		asm.Predefine(key, value)
	}

	prog, err = asm.Parse(inf)
	if err != nil {
		err = fmt.Errorf("%v: %w", name, err)
	}

	return
}

// parseAddress accepts C (0x1F) or Intel (1Fh) notation.
func parseAddress(text string) (addr cpu.Address, err error) {
	var value uint64
	if strings.HasSuffix(strings.ToLower(text), "h") {
		value, err = strconv.ParseUint(text[:len(text)-1], 16, 16)
	} else {
		value, err = strconv.ParseUint(text, 0, 16)
	}
	addr = cpu.Address(value)
	return
}

func main() {
	rootCmd := &cobra.Command{
		Use:          "i8080",
		Short:        "Intel 8080 emulator, assembler and disassembler",
		SilenceUsage: true,
	}

	// run command
	var verbose bool
	var strict bool
	var maxSteps int

	runCmd := &cobra.Command{
		Use:   "run ROM",
		Short: "Run a ROM image (or .asm source) from address 0",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			emu := emulator.NewEmulator()
			emu.Verbose = verbose
			emu.Strict = strict
			emu.MaxSteps = maxSteps

			name := args[0]
			if isSource(name) {
				var prog *cpu.Program
				prog, err = assemble(emu, name, verbose)
				if err != nil {
					return
				}
				err = emu.LoadProgram(prog)
			} else {
				err = emu.LoadFS(os.DirFS(filepath.Dir(name)), filepath.Base(name))
			}
			if err != nil {
				return
			}

			err = emu.Reset()
			if err != nil {
				return
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			err = emu.Run(ctx)

			fmt.Print(emu.Cpu.String())
			fmt.Printf("steps: %d\n", emu.Steps)
			fmt.Printf("ticks: %d\n", emu.Ticks())
			for _, opcode_err := range emu.Unimplemented {
				fmt.Printf("unimplemented: %v\n", &opcode_err)
			}

			return
		},
	}
	runCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose mode")
	runCmd.Flags().BoolVar(&strict, "strict", false, "Fault on the first unimplemented opcode")
	runCmd.Flags().IntVar(&maxSteps, "max-steps", 0, "Stop after this many instructions (0 is unlimited)")

	// asm command
	var output string
	var listing bool

	asmCmd := &cobra.Command{
		Use:   "asm SRC",
		Short: "Assemble a source file into a flat ROM image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			name := args[0]
			prog, err := assemble(emulator.NewEmulator(), name, verbose)
			if err != nil {
				return
			}

			if listing {
				for _, op := range prog.Opcodes {
					var hex []string
					for _, value := range op.Bytes {
						hex = append(hex, fmt.Sprintf("%02X", value))
					}
					fmt.Printf("%v  %-9v %5d  %v\n", cpu.Address(op.Addr), strings.Join(hex, " "), op.LineNo, strings.Join(op.Words, " "))
				}
			}

			if len(output) == 0 {
				output = strings.TrimSuffix(name, filepath.Ext(name)) + ".rom"
			}

			err = os.WriteFile(output, prog.Binary(), 0o644)

			return
		},
	}
	asmCmd.Flags().StringVarP(&output, "output", "o", "", "Output ROM image (default SRC with .rom extension)")
	asmCmd.Flags().BoolVarP(&listing, "listing", "l", false, "Print a listing")
	asmCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose mode")

	// disasm command
	var start string
	var count int

	disasmCmd := &cobra.Command{
		Use:   "disasm ROM",
		Short: "Disassemble a ROM image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			addr, err := parseAddress(start)
			if err != nil {
				return fmt.Errorf("--start %v: %w", start, err)
			}

			name := args[0]
			mem := &cpu.Memory{}
			length, err := io.LoadFS(mem, os.DirFS(filepath.Dir(name)), filepath.Base(name))
			if err != nil {
				return
			}

			if count == 0 {
				count = length
			}

			for offset := 0; offset < count; {
				text, size := cpu.Disassemble(mem, addr)
				var hex []string
				for n := range size {
					hex = append(hex, fmt.Sprintf("%02X", mem.Read(addr+cpu.Address(n))))
				}
				fmt.Printf("%v  %-9v %v\n", addr, strings.Join(hex, " "), text)
				addr += cpu.Address(size)
				offset += size
			}

			return
		},
	}
	disasmCmd.Flags().StringVar(&start, "start", "0", "First address to disassemble")
	disasmCmd.Flags().IntVarP(&count, "count", "n", 0, "Number of bytes to disassemble (default the image length)")

	rootCmd.AddCommand(runCmd, asmCmd, disasmCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package emulator

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/i8080/cpu"
	"github.com/ezrec/i8080/io"
)

func TestEmulator(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	assert.False(emu.Verbose)
	assert.False(emu.Strict)
	assert.NotNil(emu.Cpu)
	assert.NotNil(emu.Cpu.Memory)
	assert.NotNil(emu.Program)

	// Nothing loaded, so the first tick is done.
	done, err := emu.Tick()
	assert.NoError(err)
	assert.True(done)
}

func TestEmulator_Defines(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	defines := map[string]string{}
	for key, value := range emu.Defines() {
		defines[key] = value
	}

	assert.Equal("0xffff", defines["STACK_TOP"])
	assert.Equal("0x10000", defines["MEMORY_SIZE"])
	assert.Equal("0x10000", defines["ROM_LIMIT"])
	assert.Equal("0x0", defines["ROM_BASE"])
}

// doAssemble assembles program with the emulator defines, and loads it.
func doAssemble(emu *Emulator, program []string, t *testing.T) {
	asm := &cpu.Assembler{}
	for key, value := range emu.Defines() {
		asm.Predefine(key, value)
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	if err != nil {
		t.Fatal(err)
	}

	err = emu.LoadProgram(prog)
	if err != nil {
		t.Fatal(err)
	}

	err = emu.Reset()
	if err != nil {
		t.Fatal(err)
	}
}

var subroutineProgram = []string{
	"        LXI SP,STACK_TOP",
	"        MVI B,3",
	"loop:   DCR B",
	"        JNZ loop",
	"        CALL sub",
	"        HLT",
	"sub:    MVI A,0x42",
	"        RET",
}

func TestEmulator_Run(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	doAssemble(emu, subroutineProgram, t)

	err := emu.Run(context.Background())
	assert.NoError(err)

	assert.Equal(uint8(0x42), emu.Cpu.A)
	assert.Equal(uint8(0), emu.Cpu.B)
	assert.Equal(cpu.Address(cpu.MAX_ADDRESS), emu.Cpu.SP)
	assert.Equal(cpu.STATE_HALTED, emu.Cpu.State)
	assert.Equal(12, emu.Steps)
	assert.Equal(103, emu.Ticks())
	assert.Equal(0, len(emu.Unimplemented))

	// Reset keeps the image.
	assert.NoError(emu.Reset())
	assert.Equal(0, emu.Pc())
	assert.Equal(0, emu.Steps)
	assert.NoError(emu.Run(context.Background()))
	assert.Equal(uint8(0x42), emu.Cpu.A)
}

func TestEmulator_Tick(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	doAssemble(emu, subroutineProgram, t)

	lines := []int{1, 2, 3, 4, 3, 4, 3, 4, 5, 7, 8, 6}
	for n, lineno := range lines {
		assert.Equal(lineno, emu.LineNo(), "step %d", n)
		done, err := emu.Tick()
		assert.NoError(err)
		assert.Equal(n == len(lines)-1, done, "step %d", n)
	}

	assert.Equal(len(lines), emu.Steps)
}

func TestEmulator_PastEnd(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	doAssemble(emu, []string{"NOP", "MVI A,5"}, t)

	assert.NoError(emu.Run(context.Background()))
	assert.Equal(uint8(5), emu.Cpu.A)
	assert.Equal(3, emu.Pc())
	assert.Equal(2, emu.Steps)
	assert.Equal(cpu.STATE_FETCHING, emu.Cpu.State)
}

func TestEmulator_Unimplemented(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	doAssemble(emu, []string{"DAA", "OUT 0x10", "MVI A,1", "HLT"}, t)

	err := emu.Run(context.Background())
	assert.NoError(err)
	assert.Equal(uint8(1), emu.Cpu.A)
	assert.Equal([]cpu.ErrOpcode{
		{Opcode: 0x27, Pc: 0},
		{Opcode: 0xd3, Pc: 1},
	}, emu.Unimplemented)
}

func TestEmulator_Strict(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.Strict = true
	doAssemble(emu, []string{"MVI A,1", "RST 7", "MVI A,2", "HLT"}, t)

	err := emu.Run(context.Background())
	assert.Error(err)
	assert.ErrorIs(err, cpu.ErrUnimplemented)
	assert.Equal(cpu.STATUS_UNIMPLEMENTED, cpu.StatusOf(err))

	var runtime_err *ErrRuntime
	assert.True(errors.As(err, &runtime_err))
	assert.Equal(cpu.Address(2), runtime_err.Pc)
	assert.Equal(2, runtime_err.LineNo)
	assert.Contains(err.Error(), "line 2")

	assert.Equal(uint8(1), emu.Cpu.A)
	assert.Equal(cpu.STATE_FAULTED, emu.Cpu.State)

	_, err = emu.Tick()
	assert.ErrorIs(err, cpu.ErrFaulted)
}

func TestEmulator_MaxSteps(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.MaxSteps = 10
	doAssemble(emu, []string{"loop: JMP loop"}, t)

	err := emu.Run(context.Background())
	assert.ErrorIs(err, ErrStepLimit)
	assert.Equal(10, emu.Steps)
	assert.Equal(100, emu.Ticks())
}

func TestEmulator_Cancel(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	doAssemble(emu, []string{"loop: JMP loop"}, t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := emu.Run(ctx)
	assert.ErrorIs(err, context.Canceled)
	assert.Equal(0, emu.Steps)
}

func TestEmulator_Load(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	doAssemble(emu, subroutineProgram, t)

	err := emu.Load(bytes.NewReader([]uint8{0x3e, 0x07, 0x76}))
	assert.NoError(err)
	assert.Equal(3, emu.Length)
	assert.NoError(emu.Reset())

	// Memory past the new image was cleared.
	assert.Equal(uint8(0), emu.Cpu.Memory.Read(3))

	assert.Equal(0, emu.LineNo())
	assert.NoError(emu.Run(context.Background()))
	assert.Equal(uint8(7), emu.Cpu.A)
}

func TestEmulator_Load_TooLarge(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	err := emu.Load(bytes.NewReader(make([]uint8, io.ROM_LIMIT+1)))
	assert.ErrorIs(err, io.ErrTooLarge)
	assert.Equal(0, emu.Length)
}

func TestEmulator_LoadFS(t *testing.T) {
	assert := assert.New(t)

	fsys := fstest.MapFS{
		"add.rom": &fstest.MapFile{Data: []uint8{0x3e, 0x02, 0xc6, 0x03, 0x76}},
	}

	emu := NewEmulator()
	assert.NoError(emu.LoadFS(fsys, "add.rom"))
	assert.NoError(emu.Reset())
	assert.NoError(emu.Run(context.Background()))
	assert.Equal(uint8(5), emu.Cpu.A)

	err := emu.LoadFS(fsys, "missing.rom")
	assert.Error(err)
}

// shortFS reports a file size larger than the data it serves.
type shortFS struct {
	fstest.MapFS
	size int64
}

func (sfs shortFS) Open(name string) (fs.File, error) {
	file, err := sfs.MapFS.Open(name)
	if err != nil {
		return nil, err
	}
	return shortFile{File: file, size: sfs.size}, nil
}

type shortFile struct {
	fs.File
	size int64
}

func (sf shortFile) Stat() (fs.FileInfo, error) {
	info, err := sf.File.Stat()
	if err != nil {
		return nil, err
	}
	return shortInfo{FileInfo: info, size: sf.size}, nil
}

type shortInfo struct {
	fs.FileInfo
	size int64
}

func (si shortInfo) Size() int64 {
	return si.size
}

func TestEmulator_LoadFS_Truncated(t *testing.T) {
	assert := assert.New(t)

	fsys := shortFS{
		MapFS: fstest.MapFS{
			"short.rom": &fstest.MapFile{Data: []uint8{0x3e, 0x02, 0x76}},
		},
		size: 10,
	}

	emu := NewEmulator()
	doAssemble(emu, []string{"MVI A,9", "HLT"}, t)

	err := emu.LoadFS(fsys, "short.rom")
	assert.ErrorIs(err, io.ErrTruncated)

	var load_err *io.ErrLoad
	assert.True(errors.As(err, &load_err))
	assert.Equal(3, load_err.Size)

	// The previous image is still loaded.
	assert.Equal(3, emu.Length)
	assert.Equal(uint8(9), emu.Cpu.Memory.Read(1))
	assert.NotEmpty(emu.Program.Opcodes)
}

// Package io loads flat, headerless 8080 ROM images into CPU memory.
package io

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"maps"

	"github.com/ezrec/i8080/cpu"
)

const (
	ROM_BASE  = 0               // Address of the first image byte.
	ROM_LIMIT = cpu.MEMORY_SIZE // Largest image, in bytes.
)

var _rom_defines = map[string]string{
	"ROM_BASE":  fmt.Sprintf("%#x", ROM_BASE),
	"ROM_LIMIT": fmt.Sprintf("%#x", ROM_LIMIT),
}

// Rom is a loaded ROM image.
type Rom struct {
	Data []uint8
}

// Defines for the ROM loader.
func (rom *Rom) Defines() iter.Seq2[string, string] {
	return maps.All(_rom_defines)
}

// Read reads a whole image from src. The image must fit in the address
// space.
func (rom *Rom) Read(src io.Reader) (err error) {
	// Read one byte past the limit to detect an oversized source.
	data, err := io.ReadAll(io.LimitReader(src, ROM_LIMIT+1))
	if err != nil {
		err = &ErrLoad{Size: len(data), Err: errors.Join(ErrTruncated, err)}
		return
	}
	if len(data) > ROM_LIMIT {
		err = &ErrLoad{Size: len(data), Err: ErrTooLarge}
		return
	}

	rom.Data = data

	return
}

// Store copies the image into mem, starting at ROM_BASE.
func (rom *Rom) Store(mem *cpu.Memory) (length int) {
	length = copy(mem[ROM_BASE:], rom.Data)
	return
}

// Load reads an image from src into mem starting at address 0, and returns
// the image length. On error mem is left untouched.
func Load(mem *cpu.Memory, src io.Reader) (length int, err error) {
	rom := &Rom{}
	err = rom.Read(src)
	if err != nil {
		return
	}

	length = rom.Store(mem)

	return
}

// LoadSized reads exactly size bytes from src into mem starting at
// address 0. A short read is ErrTruncated; on error mem is left untouched.
func LoadSized(mem *cpu.Memory, src io.Reader, size int) (length int, err error) {
	if size > ROM_LIMIT || size < 0 {
		err = &ErrLoad{Size: size, Err: ErrTooLarge}
		return
	}

	data := make([]uint8, size)
	n, err := io.ReadFull(src, data)
	if err != nil {
		err = &ErrLoad{Size: n, Err: errors.Join(ErrTruncated, err)}
		return
	}

	rom := &Rom{Data: data}
	length = rom.Store(mem)

	return
}

package cpu

import (
	"fmt"
)

const (
	MEMORY_SIZE = 0x10000 // Size of the 8080 address space, in bytes.
	MAX_ADDRESS = 0xffff  // Highest addressable byte.
)

// Address is a location in the 8080 address space. Arithmetic on an
// Address wraps at 16 bits, so every access is in range by construction.
type Address uint16

// String returns the address as four hex digits.
func (addr Address) String() string {
	return fmt.Sprintf("%04X", uint16(addr))
}

// Memory is the flat 64KiB byte-addressable space of the 8080.
type Memory [MEMORY_SIZE]uint8

// Read returns the byte at addr.
func (mem *Memory) Read(addr Address) uint8 {
	return mem[addr]
}

// Write stores value at addr.
func (mem *Memory) Write(addr Address, value uint8) {
	mem[addr] = value
}

// ReadWord returns the little-endian word at addr. The high byte is read
// from addr+1, which wraps to 0x0000 at the top of memory.
func (mem *Memory) ReadWord(addr Address) uint16 {
	return uint16(mem[addr]) | (uint16(mem[addr+1]) << 8)
}

// WriteWord stores value little-endian at addr and addr+1.
func (mem *Memory) WriteWord(addr Address, value uint16) {
	mem[addr] = uint8(value)
	mem[addr+1] = uint8(value >> 8)
}

// Reset zeros the whole memory image.
func (mem *Memory) Reset() {
	clear(mem[:])
}

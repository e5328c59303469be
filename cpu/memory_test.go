package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemory(t *testing.T) {
	assert := assert.New(t)

	mem := &Memory{}

	mem.Write(0x1234, 0xa5)
	assert.Equal(uint8(0xa5), mem.Read(0x1234))

	mem.WriteWord(0x2000, 0xbeef)
	assert.Equal(uint8(0xef), mem.Read(0x2000))
	assert.Equal(uint8(0xbe), mem.Read(0x2001))
	assert.Equal(uint16(0xbeef), mem.ReadWord(0x2000))

	mem.Reset()
	assert.Equal(uint8(0), mem.Read(0x1234))
	assert.Equal(uint16(0), mem.ReadWord(0x2000))
}

func TestMemory_Wrap(t *testing.T) {
	assert := assert.New(t)

	mem := &Memory{}

	mem.WriteWord(MAX_ADDRESS, 0x1234)
	assert.Equal(uint8(0x34), mem.Read(0xffff))
	assert.Equal(uint8(0x12), mem.Read(0x0000))
	assert.Equal(uint16(0x1234), mem.ReadWord(MAX_ADDRESS))
}

func TestAddress(t *testing.T) {
	assert := assert.New(t)

	addr := Address(MAX_ADDRESS)
	addr++
	assert.Equal(Address(0), addr)
	addr -= 2
	assert.Equal(Address(0xfffe), addr)

	assert.Equal("00FF", Address(0xff).String())
	assert.Equal("ABCD", Address(0xabcd).String())
}

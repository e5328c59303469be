package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlags_Parity(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		value  uint8
		parity bool
	}){
		{0x00, true},
		{0x01, false},
		{0x03, true},
		{0x07, false},
		{0x80, false},
		{0x81, true},
		{0xfe, false},
		{0xff, true},
	}

	for _, entry := range table {
		fl := Flags{}
		fl.update(FLAG_P, uint16(entry.value), false)
		assert.Equal(entry.parity, fl.Parity(), "%#02x", entry.value)
	}
}

func TestFlags_Update(t *testing.T) {
	assert := assert.New(t)

	fl := Flags{}

	fl.update(FLAG_ALL, 0x100, true)
	assert.True(fl.Zero())
	assert.True(fl.Carry())
	assert.True(fl.AuxCarry())
	assert.False(fl.Sign())
	assert.True(fl.Parity())

	// Only selected flags change.
	fl.update(FLAG_ZSP, 0x80, false)
	assert.False(fl.Zero())
	assert.True(fl.Sign())
	assert.False(fl.Parity())
	assert.True(fl.Carry())
	assert.True(fl.AuxCarry())

	// A wrapped uint16 subtraction is a borrow.
	a, b := uint16(0x01), uint16(0x02)
	fl.update(FLAG_C, a-b, false)
	assert.True(fl.Carry())
}

func TestFlags_PSW(t *testing.T) {
	assert := assert.New(t)

	fl := Flags{}
	assert.Equal(PSW_ONE, fl.PSW())

	fl.setPSW(0xff)
	assert.True(fl.Carry())
	assert.True(fl.AuxCarry())
	assert.True(fl.Sign())
	assert.True(fl.Parity())
	assert.True(fl.Zero())
	assert.Equal(uint8(0xd7), fl.PSW())

	for psw := range 256 {
		fl.setPSW(uint8(psw))
		assert.Equal((uint8(psw)&0xd5)|PSW_ONE, fl.PSW(), "%#02x", psw)
	}
}

func TestFlags_String(t *testing.T) {
	assert := assert.New(t)

	fl := Flags{}
	assert.Equal("- -- - - -", fl.String())

	fl.setPSW(PSW_S | PSW_P | PSW_Z)
	assert.Equal("- -- S P Z", fl.String())

	fl.setPSW(0xff)
	assert.Equal("C AC S P Z", fl.String())
}

func TestFlags_Aux(t *testing.T) {
	assert := assert.New(t)

	assert.True(auxAdd(0x0f, 0x01, false))
	assert.False(auxAdd(0x0e, 0x01, false))
	assert.True(auxAdd(0x0e, 0x01, true))

	// No borrow from the low nibble sets AC.
	assert.True(auxSub(0x42, 0x42, false))
	assert.True(auxSub(0x05, 0x01, false))
	assert.False(auxSub(0x10, 0x01, false))
	assert.False(auxSub(0x05, 0x05, true))
}

package cpu

import (
	"strings"
)

// Flag selects one or more of the 8080 condition flags.
type Flag uint8

const (
	FLAG_C   = Flag(0x01) // Carry
	FLAG_AC  = Flag(0x02) // Auxiliary carry
	FLAG_S   = Flag(0x04) // Sign
	FLAG_P   = Flag(0x08) // Parity
	FLAG_Z   = Flag(0x10) // Zero
	FLAG_ZSP = FLAG_Z | FLAG_S | FLAG_P
	FLAG_ALL = FLAG_C | FLAG_AC | FLAG_ZSP
)

// Bit positions of the flags in the processor status word (PSW) low byte.
const (
	PSW_C   = uint8(0x01)
	PSW_ONE = uint8(0x02) // Always reads as 1.
	PSW_P   = uint8(0x04)
	PSW_AC  = uint8(0x10)
	PSW_Z   = uint8(0x40)
	PSW_S   = uint8(0x80)
)

// parityTable is true for every byte value with an even number of set bits.
var parityTable [256]bool

func init() {
	for i := range 256 {
		j := uint8(i)
		parity := uint8(0)
		for range 8 {
			parity ^= j & 1
			j >>= 1
		}
		parityTable[i] = parity == 0
	}
}

// Flags holds the five condition flags. Only instruction semantics write
// them; hosts observe them through the accessors.
type Flags struct {
	carry    bool
	auxCarry bool
	sign     bool
	parity   bool
	zero     bool
}

// Carry returns the carry (C) flag.
func (fl Flags) Carry() bool { return fl.carry }

// AuxCarry returns the auxiliary carry (AC) flag.
func (fl Flags) AuxCarry() bool { return fl.auxCarry }

// Sign returns the sign (S) flag.
func (fl Flags) Sign() bool { return fl.sign }

// Parity returns the parity (P) flag. Set means even parity.
func (fl Flags) Parity() bool { return fl.parity }

// Zero returns the zero (Z) flag.
func (fl Flags) Zero() bool { return fl.zero }

// update sets the flags selected by mask from an operation result.
//
// result must be the untruncated value of the operation. Subtraction done in
// uint16 wraps below zero, so a borrow also shows up as result > 0xff.
// aux is the carry out of bit 3, which only the caller can know since it
// depends on the operands rather than the result.
func (fl *Flags) update(mask Flag, result uint16, aux bool) {
	value := uint8(result)
	if mask&FLAG_Z != 0 {
		fl.zero = value == 0
	}
	if mask&FLAG_C != 0 {
		fl.carry = result > 0xff
	}
	if mask&FLAG_AC != 0 {
		fl.auxCarry = aux
	}
	if mask&FLAG_S != 0 {
		fl.sign = (value & 0x80) != 0
	}
	if mask&FLAG_P != 0 {
		fl.parity = parityTable[value]
	}
}

// PSW packs the flags into the 8080 status byte layout: S Z 0 AC 0 P 1 C.
func (fl Flags) PSW() (psw uint8) {
	psw = PSW_ONE
	if fl.sign {
		psw |= PSW_S
	}
	if fl.zero {
		psw |= PSW_Z
	}
	if fl.auxCarry {
		psw |= PSW_AC
	}
	if fl.parity {
		psw |= PSW_P
	}
	if fl.carry {
		psw |= PSW_C
	}
	return
}

// setPSW unpacks a status byte, ignoring the fixed bits.
func (fl *Flags) setPSW(psw uint8) {
	fl.sign = psw&PSW_S != 0
	fl.zero = psw&PSW_Z != 0
	fl.auxCarry = psw&PSW_AC != 0
	fl.parity = psw&PSW_P != 0
	fl.carry = psw&PSW_C != 0
}

// String returns the flags as "C AC S P Z", with '-' for a cleared flag.
func (fl Flags) String() string {
	names := []struct {
		name string
		set  bool
	}{
		{"C", fl.carry},
		{"AC", fl.auxCarry},
		{"S", fl.sign},
		{"P", fl.parity},
		{"Z", fl.zero},
	}

	out := make([]string, 0, len(names))
	for _, entry := range names {
		if entry.set {
			out = append(out, entry.name)
		} else {
			out = append(out, strings.Repeat("-", len(entry.name)))
		}
	}

	return strings.Join(out, " ")
}

// auxAdd reports the carry out of bit 3 for a + b + carry.
func auxAdd(a, b uint8, carry bool) bool {
	sum := (a & 0xf) + (b & 0xf)
	if carry {
		sum++
	}
	return sum > 0xf
}

// auxSub reports the auxiliary carry for a - b - borrow. The 8080 subtracts
// by adding the one's complement of b, so AC is the carry out of bit 3 of
// that addition and is set when the low nibble did not borrow.
func auxSub(a, b uint8, borrow bool) bool {
	return auxAdd(a, ^b, !borrow)
}

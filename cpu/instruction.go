package cpu

import (
	"fmt"
	"iter"
	"strings"
)

// execFunc performs the semantics of one instruction. data holds the two
// bytes following the opcode, little-endian. It returns true when it has
// set PC itself, in which case the dispatcher does not advance PC.
type execFunc func(cpu *Cpu, data uint16) (jumped bool)

// Instruction describes a single opcode.
type Instruction struct {
	Opcode   uint8  // Opcode value.
	Mnemonic string // Intel mnemonic, with d8, d16 or a16 for the operand.
	Length   int    // Total length in bytes, including the opcode.
	Cycles   int    // Base cycle count.

	exec execFunc
}

// Implemented returns true if the instruction semantics are modelled.
func (inst *Instruction) Implemented() bool {
	return inst.exec != nil
}

// Format returns the assembly text for the instruction given its operand
// bytes.
func (inst *Instruction) Format(data uint16) string {
	text := inst.Mnemonic
	switch inst.Length {
	case 2:
		text = strings.Replace(text, "d8", fmt.Sprintf("0x%02x", uint8(data)), 1)
	case 3:
		value := fmt.Sprintf("0x%04x", data)
		text = strings.Replace(text, "d16", value, 1)
		text = strings.Replace(text, "a16", value, 1)
	}
	return text
}

func (inst *Instruction) String() string {
	return fmt.Sprintf("%02X %v (%d bytes, %d cycles)", inst.Opcode, inst.Mnemonic, inst.Length, inst.Cycles)
}

// Base cycle counts, indexed by opcode.
var cycleTable = [256]int{
	4, 10, 7, 5, 5, 5, 7, 4, 4, 10, 7, 5, 5, 5, 7, 4,
	4, 10, 7, 5, 5, 5, 7, 4, 4, 10, 7, 5, 5, 5, 7, 4,
	4, 10, 16, 5, 5, 5, 7, 4, 4, 10, 16, 5, 5, 5, 7, 4,
	4, 10, 13, 5, 10, 10, 10, 4, 4, 10, 13, 5, 5, 5, 7, 4,
	5, 5, 5, 5, 5, 5, 7, 5, 5, 5, 5, 5, 5, 5, 7, 5,
	5, 5, 5, 5, 5, 5, 7, 5, 5, 5, 5, 5, 5, 5, 7, 5,
	5, 5, 5, 5, 5, 5, 7, 5, 5, 5, 5, 5, 5, 5, 7, 5,
	7, 7, 7, 7, 7, 7, 7, 7, 5, 5, 5, 5, 5, 5, 7, 5,
	4, 4, 4, 4, 4, 4, 7, 4, 4, 4, 4, 4, 4, 4, 7, 4,
	4, 4, 4, 4, 4, 4, 7, 4, 4, 4, 4, 4, 4, 4, 7, 4,
	4, 4, 4, 4, 4, 4, 7, 4, 4, 4, 4, 4, 4, 4, 7, 4,
	4, 4, 4, 4, 4, 4, 7, 4, 4, 4, 4, 4, 4, 4, 7, 4,
	5, 10, 10, 10, 11, 11, 7, 11, 5, 10, 10, 10, 11, 17, 7, 11,
	5, 10, 10, 10, 11, 11, 7, 11, 5, 10, 10, 10, 11, 17, 7, 11,
	5, 10, 10, 18, 11, 11, 7, 11, 5, 5, 10, 4, 11, 17, 7, 11,
	5, 10, 10, 4, 11, 11, 7, 11, 5, 5, 10, 4, 11, 17, 7, 11,
}

// instructions is the decode table. Filled once by init, read-only after.
var instructions [256]Instruction

// Decode returns the table entry for an opcode.
func Decode(op uint8) *Instruction {
	return &instructions[op]
}

// Instructions iterates over all 256 table entries in opcode order.
func Instructions() iter.Seq[*Instruction] {
	return func(yield func(inst *Instruction) bool) {
		for n := range instructions {
			if !yield(&instructions[n]) {
				return
			}
		}
	}
}

// Disassemble returns the assembly text and length of the instruction at
// addr. Operand reads wrap at the top of memory.
func Disassemble(mem *Memory, addr Address) (text string, length int) {
	inst := Decode(mem.Read(addr))
	return inst.Format(mem.ReadWord(addr + 1)), inst.Length
}

// define sets a table entry. The length is taken from the operand
// placeholder in the mnemonic; a nil exec marks the opcode unimplemented.
func define(op int, mnemonic string, exec execFunc) {
	length := 1
	switch {
	case strings.Contains(mnemonic, "d16"), strings.Contains(mnemonic, "a16"):
		length = 3
	case strings.Contains(mnemonic, "d8"):
		length = 2
	}

	instructions[op] = Instruction{
		Opcode:   uint8(op),
		Mnemonic: mnemonic,
		Length:   length,
		Cycles:   cycleTable[op],
		exec:     exec,
	}
}

var aluName = [8]string{"ADD", "ADC", "SUB", "SBB", "ANA", "XRA", "ORA", "CMP"}
var aluImmName = [8]string{"ADI", "ACI", "SUI", "SBI", "ANI", "XRI", "ORI", "CPI"}
var condName = [8]string{"NZ", "Z", "NC", "C", "PO", "PE", "P", "M"}

func init() {
	// Undocumented encodings stay unimplemented unless overridden below.
	for op := range instructions {
		define(op, "???", nil)
	}

	define(0x00, "NOP", opNop)

	for pair := PAIR_BC; pair <= PAIR_SP; pair++ {
		base := int(pair) << 4
		define(0x01+base, fmt.Sprintf("LXI %v,d16", pair), opLxi(pair))
		define(0x03+base, fmt.Sprintf("INX %v", pair), opInx(pair))
		define(0x09+base, fmt.Sprintf("DAD %v", pair), opDad(pair))
		define(0x0B+base, fmt.Sprintf("DCX %v", pair), opDcx(pair))
	}

	define(0x02, "STAX B", opStax(PAIR_BC))
	define(0x12, "STAX D", opStax(PAIR_DE))
	define(0x0A, "LDAX B", opLdax(PAIR_BC))
	define(0x1A, "LDAX D", opLdax(PAIR_DE))
	define(0x22, "SHLD a16", opShld)
	define(0x2A, "LHLD a16", opLhld)
	define(0x32, "STA a16", opSta)
	define(0x3A, "LDA a16", opLda)

	for reg := REG_B; reg <= REG_A; reg++ {
		base := int(reg) << 3
		define(0x04+base, fmt.Sprintf("INR %v", reg), opInr(reg))
		define(0x05+base, fmt.Sprintf("DCR %v", reg), opDcr(reg))
		define(0x06+base, fmt.Sprintf("MVI %v,d8", reg), opMvi(reg))
	}

	define(0x07, "RLC", opRlc)
	define(0x0F, "RRC", opRrc)
	define(0x17, "RAL", opRal)
	define(0x1F, "RAR", opRar)
	define(0x27, "DAA", nil)
	define(0x2F, "CMA", opCma)
	define(0x37, "STC", opStc)
	define(0x3F, "CMC", opCmc)

	for op := 0x40; op <= 0x7F; op++ {
		dst := Register((op >> 3) & 7)
		src := Register(op & 7)
		define(op, fmt.Sprintf("MOV %v,%v", dst, src), opMov(dst, src))
	}
	define(0x76, "HLT", opHlt)

	for alu := range 8 {
		for src := REG_B; src <= REG_A; src++ {
			op := 0x80 | (alu << 3) | int(src)
			define(op, fmt.Sprintf("%v %v", aluName[alu], src), opAluReg(alu, src))
		}
		define(0xC6|(alu<<3), fmt.Sprintf("%v d8", aluImmName[alu]), opAluImm(alu))
	}

	for cc := range 8 {
		base := cc << 3
		define(0xC0+base, fmt.Sprintf("R%v", condName[cc]), opRetCond(cc))
		define(0xC2+base, fmt.Sprintf("J%v a16", condName[cc]), opJmpCond(cc))
		define(0xC4+base, fmt.Sprintf("C%v a16", condName[cc]), opCallCond(cc))
		define(0xC7+base, fmt.Sprintf("RST %d", cc), nil)
	}

	// PSW takes the stack slot that SP has in the LXI/INX/DAD/DCX encodings.
	for slot, pair := range []RegisterPair{PAIR_BC, PAIR_DE, PAIR_HL, PAIR_PSW} {
		base := slot << 4
		define(0xC1+base, fmt.Sprintf("POP %v", pair), opPop(pair))
		define(0xC5+base, fmt.Sprintf("PUSH %v", pair), opPush(pair))
	}

	define(0xC3, "JMP a16", opJmp)
	define(0xC9, "RET", opRet)
	define(0xCD, "CALL a16", opCall)
	define(0xD3, "OUT d8", nil)
	define(0xDB, "IN d8", nil)
	define(0xE3, "XTHL", opXthl)
	define(0xE9, "PCHL", opPchl)
	define(0xEB, "XCHG", opXchg)
	define(0xF3, "DI", opDi)
	define(0xF9, "SPHL", opSphl)
	define(0xFB, "EI", opEi)
}

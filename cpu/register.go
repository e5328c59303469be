package cpu

// Register is an 8-bit operand, in the 3-bit encoding used by the opcodes.
type Register int

const (
	REG_B = Register(0) // B
	REG_C = Register(1) // C
	REG_D = Register(2) // D
	REG_E = Register(3) // E
	REG_H = Register(4) // H
	REG_L = Register(5) // L
	REG_M = Register(6) // M, the memory byte addressed by HL
	REG_A = Register(7) // A
)

var registerName = [8]string{"B", "C", "D", "E", "H", "L", "M", "A"}

func (reg Register) String() string {
	return registerName[reg&7]
}

// RegisterPair names a 16-bit view over two 8-bit registers, SP, or the
// processor status word.
type RegisterPair int

const (
	PAIR_BC  = RegisterPair(0) // B
	PAIR_DE  = RegisterPair(1) // D
	PAIR_HL  = RegisterPair(2) // H
	PAIR_SP  = RegisterPair(3) // SP
	PAIR_PSW = RegisterPair(4) // PSW
)

var pairName = [5]string{"B", "D", "H", "SP", "PSW"}

func (pair RegisterPair) String() string {
	return pairName[pair]
}

// Register returns the value of an 8-bit register, reading memory at HL
// for REG_M.
func (cpu *Cpu) Register(reg Register) uint8 {
	switch reg {
	case REG_B:
		return cpu.B
	case REG_C:
		return cpu.C
	case REG_D:
		return cpu.D
	case REG_E:
		return cpu.E
	case REG_H:
		return cpu.H
	case REG_L:
		return cpu.L
	case REG_M:
		return cpu.Memory.Read(Address(cpu.HL()))
	case REG_A:
		return cpu.A
	}
	panic("unknown register")
}

// SetRegister writes an 8-bit register, writing memory at HL for REG_M.
func (cpu *Cpu) SetRegister(reg Register, value uint8) {
	switch reg {
	case REG_B:
		cpu.B = value
	case REG_C:
		cpu.C = value
	case REG_D:
		cpu.D = value
	case REG_E:
		cpu.E = value
	case REG_H:
		cpu.H = value
	case REG_L:
		cpu.L = value
	case REG_M:
		cpu.Memory.Write(Address(cpu.HL()), value)
	case REG_A:
		cpu.A = value
	default:
		panic("unknown register")
	}
}

// BC returns the B:C register pair.
func (cpu *Cpu) BC() uint16 { return uint16(cpu.B)<<8 | uint16(cpu.C) }

// DE returns the D:E register pair.
func (cpu *Cpu) DE() uint16 { return uint16(cpu.D)<<8 | uint16(cpu.E) }

// HL returns the H:L register pair.
func (cpu *Cpu) HL() uint16 { return uint16(cpu.H)<<8 | uint16(cpu.L) }

// Pair returns the 16-bit value of a register pair, high byte first.
func (cpu *Cpu) Pair(pair RegisterPair) uint16 {
	switch pair {
	case PAIR_BC:
		return cpu.BC()
	case PAIR_DE:
		return cpu.DE()
	case PAIR_HL:
		return cpu.HL()
	case PAIR_SP:
		return uint16(cpu.SP)
	case PAIR_PSW:
		return uint16(cpu.A)<<8 | uint16(cpu.flags.PSW())
	}
	panic("unknown register pair")
}

// SetPair writes both halves of a register pair. Writing PSW also loads
// the condition flags, so it is reserved for instruction semantics.
func (cpu *Cpu) SetPair(pair RegisterPair, value uint16) {
	hi := uint8(value >> 8)
	lo := uint8(value)
	switch pair {
	case PAIR_BC:
		cpu.B, cpu.C = hi, lo
	case PAIR_DE:
		cpu.D, cpu.E = hi, lo
	case PAIR_HL:
		cpu.H, cpu.L = hi, lo
	case PAIR_SP:
		cpu.SP = Address(value)
	default:
		panic("register pair not writable")
	}
}

// setPSW loads A and the flags from a status word.
func (cpu *Cpu) setPSW(value uint16) {
	cpu.A = uint8(value >> 8)
	cpu.flags.setPSW(uint8(value))
}

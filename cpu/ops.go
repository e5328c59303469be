package cpu

// Data movement

func opNop(cpu *Cpu, data uint16) bool {
	return false
}

func opMov(dst, src Register) execFunc {
	return func(cpu *Cpu, data uint16) bool {
		cpu.SetRegister(dst, cpu.Register(src))
		return false
	}
}

func opMvi(dst Register) execFunc {
	return func(cpu *Cpu, data uint16) bool {
		cpu.SetRegister(dst, uint8(data))
		return false
	}
}

func opLxi(pair RegisterPair) execFunc {
	return func(cpu *Cpu, data uint16) bool {
		cpu.SetPair(pair, data)
		return false
	}
}

func opStax(pair RegisterPair) execFunc {
	return func(cpu *Cpu, data uint16) bool {
		cpu.Memory.Write(Address(cpu.Pair(pair)), cpu.A)
		return false
	}
}

func opLdax(pair RegisterPair) execFunc {
	return func(cpu *Cpu, data uint16) bool {
		cpu.A = cpu.Memory.Read(Address(cpu.Pair(pair)))
		return false
	}
}

func opSta(cpu *Cpu, data uint16) bool {
	cpu.Memory.Write(Address(data), cpu.A)
	return false
}

func opLda(cpu *Cpu, data uint16) bool {
	cpu.A = cpu.Memory.Read(Address(data))
	return false
}

func opShld(cpu *Cpu, data uint16) bool {
	cpu.Memory.WriteWord(Address(data), cpu.HL())
	return false
}

func opLhld(cpu *Cpu, data uint16) bool {
	cpu.SetPair(PAIR_HL, cpu.Memory.ReadWord(Address(data)))
	return false
}

func opXchg(cpu *Cpu, data uint16) bool {
	cpu.D, cpu.H = cpu.H, cpu.D
	cpu.E, cpu.L = cpu.L, cpu.E
	return false
}

// Increment and decrement

func opInr(reg Register) execFunc {
	return func(cpu *Cpu, data uint16) bool {
		value := cpu.Register(reg)
		result := uint16(value) + 1
		cpu.flags.update(FLAG_ZSP|FLAG_AC, result, auxAdd(value, 1, false))
		cpu.SetRegister(reg, uint8(result))
		return false
	}
}

func opDcr(reg Register) execFunc {
	return func(cpu *Cpu, data uint16) bool {
		value := cpu.Register(reg)
		result := uint16(value) - 1
		cpu.flags.update(FLAG_ZSP|FLAG_AC, result, auxSub(value, 1, false))
		cpu.SetRegister(reg, uint8(result))
		return false
	}
}

func opInx(pair RegisterPair) execFunc {
	return func(cpu *Cpu, data uint16) bool {
		cpu.SetPair(pair, cpu.Pair(pair)+1)
		return false
	}
}

func opDcx(pair RegisterPair) execFunc {
	return func(cpu *Cpu, data uint16) bool {
		cpu.SetPair(pair, cpu.Pair(pair)-1)
		return false
	}
}

func opDad(pair RegisterPair) execFunc {
	return func(cpu *Cpu, data uint16) bool {
		sum := uint32(cpu.HL()) + uint32(cpu.Pair(pair))
		cpu.flags.carry = sum > 0xffff
		cpu.SetPair(PAIR_HL, uint16(sum))
		return false
	}
}

// Arithmetic and logic

const (
	ALU_ADD = 0
	ALU_ADC = 1
	ALU_SUB = 2
	ALU_SBB = 3
	ALU_ANA = 4
	ALU_XRA = 5
	ALU_ORA = 6
	ALU_CMP = 7
)

// add adds value and the optional carry into A.
func (cpu *Cpu) add(value uint8, carry bool) {
	a := cpu.A
	result := uint16(a) + uint16(value)
	if carry {
		result++
	}
	cpu.flags.update(FLAG_ALL, result, auxAdd(a, value, carry))
	cpu.A = uint8(result)
}

// sub computes A - value - borrow, updates all flags, and returns the
// difference without storing it.
func (cpu *Cpu) sub(value uint8, borrow bool) uint8 {
	a := cpu.A
	result := uint16(a) - uint16(value)
	if borrow {
		result--
	}
	cpu.flags.update(FLAG_ALL, result, auxSub(a, value, borrow))
	return uint8(result)
}

// logic stores a logical result in A. Carry and auxiliary carry are reset.
func (cpu *Cpu) logic(result uint8) {
	cpu.flags.update(FLAG_ALL, uint16(result), false)
	cpu.A = result
}

// alu performs one of the eight accumulator operations.
func (cpu *Cpu) alu(op int, value uint8) {
	switch op {
	case ALU_ADD:
		cpu.add(value, false)
	case ALU_ADC:
		cpu.add(value, cpu.flags.carry)
	case ALU_SUB:
		cpu.A = cpu.sub(value, false)
	case ALU_SBB:
		cpu.A = cpu.sub(value, cpu.flags.carry)
	case ALU_ANA:
		cpu.logic(cpu.A & value)
	case ALU_XRA:
		cpu.logic(cpu.A ^ value)
	case ALU_ORA:
		cpu.logic(cpu.A | value)
	case ALU_CMP:
		cpu.sub(value, false)
	}
}

func opAluReg(op int, src Register) execFunc {
	return func(cpu *Cpu, data uint16) bool {
		cpu.alu(op, cpu.Register(src))
		return false
	}
}

func opAluImm(op int) execFunc {
	return func(cpu *Cpu, data uint16) bool {
		cpu.alu(op, uint8(data))
		return false
	}
}

func opCma(cpu *Cpu, data uint16) bool {
	cpu.A = ^cpu.A
	return false
}

func opStc(cpu *Cpu, data uint16) bool {
	cpu.flags.carry = true
	return false
}

func opCmc(cpu *Cpu, data uint16) bool {
	cpu.flags.carry = !cpu.flags.carry
	return false
}

// Rotates

func opRlc(cpu *Cpu, data uint16) bool {
	out := cpu.A >> 7
	cpu.A = (cpu.A << 1) | out
	cpu.flags.carry = out != 0
	return false
}

func opRrc(cpu *Cpu, data uint16) bool {
	out := cpu.A & 1
	cpu.A = (cpu.A >> 1) | (out << 7)
	cpu.flags.carry = out != 0
	return false
}

func opRal(cpu *Cpu, data uint16) bool {
	var in uint8
	if cpu.flags.carry {
		in = 1
	}
	cpu.flags.carry = (cpu.A & 0x80) != 0
	cpu.A = (cpu.A << 1) | in
	return false
}

func opRar(cpu *Cpu, data uint16) bool {
	var in uint8
	if cpu.flags.carry {
		in = 0x80
	}
	cpu.flags.carry = (cpu.A & 1) != 0
	cpu.A = (cpu.A >> 1) | in
	return false
}

// Control transfer

// condition tests the 3-bit condition code of a Jcc, Ccc or Rcc opcode.
func (cpu *Cpu) condition(cc int) bool {
	switch cc {
	case 0:
		return !cpu.flags.zero
	case 1:
		return cpu.flags.zero
	case 2:
		return !cpu.flags.carry
	case 3:
		return cpu.flags.carry
	case 4:
		return !cpu.flags.parity
	case 5:
		return cpu.flags.parity
	case 6:
		return !cpu.flags.sign
	case 7:
		return cpu.flags.sign
	}
	panic("unknown condition")
}

// call pushes the address of the instruction after a 3-byte CALL.
func (cpu *Cpu) call(target uint16) {
	cpu.Push(uint16(cpu.PC + 3))
	cpu.PC = Address(target)
}

func opJmp(cpu *Cpu, data uint16) bool {
	cpu.PC = Address(data)
	return true
}

func opJmpCond(cc int) execFunc {
	return func(cpu *Cpu, data uint16) bool {
		if !cpu.condition(cc) {
			return false
		}
		cpu.PC = Address(data)
		return true
	}
}

func opCall(cpu *Cpu, data uint16) bool {
	cpu.call(data)
	return true
}

func opCallCond(cc int) execFunc {
	return func(cpu *Cpu, data uint16) bool {
		if !cpu.condition(cc) {
			return false
		}
		cpu.call(data)
		return true
	}
}

func opRet(cpu *Cpu, data uint16) bool {
	cpu.PC = Address(cpu.Pop())
	return true
}

func opRetCond(cc int) execFunc {
	return func(cpu *Cpu, data uint16) bool {
		if !cpu.condition(cc) {
			return false
		}
		cpu.PC = Address(cpu.Pop())
		return true
	}
}

func opPchl(cpu *Cpu, data uint16) bool {
	cpu.PC = Address(cpu.HL())
	return true
}

// Stack

func opPush(pair RegisterPair) execFunc {
	return func(cpu *Cpu, data uint16) bool {
		cpu.Push(cpu.Pair(pair))
		return false
	}
}

func opPop(pair RegisterPair) execFunc {
	return func(cpu *Cpu, data uint16) bool {
		value := cpu.Pop()
		if pair == PAIR_PSW {
			cpu.setPSW(value)
		} else {
			cpu.SetPair(pair, value)
		}
		return false
	}
}

func opXthl(cpu *Cpu, data uint16) bool {
	top := cpu.Peek()
	cpu.Memory.WriteWord(cpu.SP, cpu.HL())
	cpu.SetPair(PAIR_HL, top)
	return false
}

func opSphl(cpu *Cpu, data uint16) bool {
	cpu.SP = Address(cpu.HL())
	return false
}

// Machine control

func opHlt(cpu *Cpu, data uint16) bool {
	cpu.State = STATE_HALTED
	return false
}

func opEi(cpu *Cpu, data uint16) bool {
	cpu.inte = true
	return false
}

func opDi(cpu *Cpu, data uint16) bool {
	cpu.inte = false
	return false
}

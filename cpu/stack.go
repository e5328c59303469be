package cpu

// Push decrements SP by two and stores value with the high byte at SP+1
// and the low byte at SP.
func (cpu *Cpu) Push(value uint16) {
	cpu.SP -= 2
	cpu.Memory.WriteWord(cpu.SP, value)
}

// Pop reads the word at SP, low byte first, and increments SP by two.
func (cpu *Cpu) Pop() (value uint16) {
	value = cpu.Memory.ReadWord(cpu.SP)
	cpu.SP += 2
	return
}

// Peek returns the word at the top of the stack without moving SP.
func (cpu *Cpu) Peek() uint16 {
	return cpu.Memory.ReadWord(cpu.SP)
}

package cpu

// The stack lives in memory, growing down from STACK_TOP.
// R7 (SP) addresses the most recently pushed byte.

// Sp returns the current stack pointer.
func (cpu *Cpu) Sp() uint8 {
	return cpu.Register[REG_SP]
}

// Push decrements SP then stores value at the new top of stack.
func (cpu *Cpu) Push(value uint8) (err error) {
	if cpu.StackFull() {
		err = ErrStackOverflow
		return
	}

	cpu.Register[REG_SP]--
	err = cpu.Memory.Write(uint(cpu.Sp()), value)
	return
}

// Pop reads the top of stack, then increments SP.
func (cpu *Cpu) Pop() (value uint8, err error) {
	value, err = cpu.Peek()
	if err != nil {
		return
	}

	cpu.Register[REG_SP]++
	return
}

// Peek reads the top of stack without moving SP.
func (cpu *Cpu) Peek() (value uint8, err error) {
	if cpu.StackEmpty() {
		err = ErrStackUnderflow
		return
	}

	return cpu.Memory.Read(uint(cpu.Sp()))
}

// StackEmpty returns true if nothing is on the stack.
// SP at or above STACK_TOP is empty, whatever was pushed to reach it.
func (cpu *Cpu) StackEmpty() bool {
	return cpu.StackDepth() == 0
}

// StackFull returns true if SP has reached the bottom of memory.
func (cpu *Cpu) StackFull() bool {
	return cpu.Sp() == 0
}

// StackDepth returns the number of bytes between SP and STACK_TOP.
func (cpu *Cpu) StackDepth() int {
	depth := STACK_TOP - int(cpu.Sp())
	if depth < 0 {
		return 0
	}
	return depth
}

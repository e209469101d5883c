package cpu

const (
	REGISTER_COUNT = 8    // General purpose registers, including SP.
	REG_SP         = 7    // Register index of the stack pointer.
	STACK_TOP      = 0xF4 // Initial stack pointer, below reserved memory.
)

// Registers is the LS-8 register file.
type Registers [REGISTER_COUNT]uint8

// Get returns the value of register index.
func (regs *Registers) Get(index uint8) (value uint8, err error) {
	if index >= REGISTER_COUNT {
		err = ErrRegister(index)
		return
	}

	value = regs[index]
	return
}

// Set assigns value to register index.
func (regs *Registers) Set(index uint8, value uint8) (err error) {
	if index >= REGISTER_COUNT {
		err = ErrRegister(index)
		return
	}

	regs[index] = value
	return
}

// Reset clears all registers and sets SP to the top of the stack.
func (regs *Registers) Reset() {
	clear(regs[:])
	regs[REG_SP] = STACK_TOP
}

// Flag is the condition code register, written only by CMP.
type Flag uint8

const (
	FLAG_EQ = Flag(1 << 0) // Equal.
	FLAG_GT = Flag(1 << 1) // Greater than.
	FLAG_LT = Flag(1 << 2) // Less than.
)

// Compare returns the flag value for comparing a against b.
// Exactly one bit is set in the result.
func Compare(a, b uint8) Flag {
	switch {
	case a < b:
		return FLAG_LT
	case a > b:
		return FLAG_GT
	}
	return FLAG_EQ
}

// Equal returns true if the equal bit is set.
func (fl Flag) Equal() bool {
	return (fl & FLAG_EQ) != 0
}

// Greater returns true if the greater-than bit is set.
func (fl Flag) Greater() bool {
	return (fl & FLAG_GT) != 0
}

// Less returns true if the less-than bit is set.
func (fl Flag) Less() bool {
	return (fl & FLAG_LT) != 0
}

func (fl Flag) String() string {
	bits := []byte("---")
	if fl.Less() {
		bits[0] = 'L'
	}
	if fl.Greater() {
		bits[1] = 'G'
	}
	if fl.Equal() {
		bits[2] = 'E'
	}
	return string(bits)
}

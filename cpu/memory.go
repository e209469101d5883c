package cpu

const (
	MEMORY_SIZE = 256 // Bytes of addressable memory.
)

// Memory is the flat, byte addressed LS-8 memory.
type Memory [MEMORY_SIZE]uint8

// Read returns the byte at addr.
func (mem *Memory) Read(addr uint) (value uint8, err error) {
	if addr >= MEMORY_SIZE {
		err = ErrAddress(addr)
		return
	}

	value = mem[addr]
	return
}

// Write stores value at addr.
func (mem *Memory) Write(addr uint, value uint8) (err error) {
	if addr >= MEMORY_SIZE {
		err = ErrAddress(addr)
		return
	}

	mem[addr] = value
	return
}

// Peek returns the byte at addr, or 0 past the end of memory.
// Used for operand fetch, which always reads two bytes after the opcode.
func (mem *Memory) Peek(addr uint) uint8 {
	if addr >= MEMORY_SIZE {
		return 0
	}
	return mem[addr]
}

// Load copies data into memory starting at addr.
func (mem *Memory) Load(addr uint, data []uint8) (err error) {
	if addr > MEMORY_SIZE || uint(len(data)) > MEMORY_SIZE-addr {
		err = ErrProgramSize
		return
	}

	copy(mem[addr:], data)
	return
}

// Reset zero-fills the memory.
func (mem *Memory) Reset() {
	clear(mem[:])
}

package cpu

import (
	"fmt"
	"strings"
)

// Opcode is the first byte of an LS-8 instruction.
//
// The byte layout is AABCDDDD:
//   - AA: number of operand bytes that follow (0-2)
//   - B: set for operations performed by the ALU
//   - C: set for operations that set PC directly
//   - DDDD: instruction identifier
type Opcode uint8

const (
	OP_HLT  = Opcode(0b00000001) // Halt the CPU.
	OP_RET  = Opcode(0b00010001) // Return from subroutine.
	OP_PUSH = Opcode(0b01000101) // Push register onto the stack.
	OP_POP  = Opcode(0b01000110) // Pop the stack into a register.
	OP_PRN  = Opcode(0b01000111) // Print register as decimal.
	OP_CALL = Opcode(0b01010000) // Call subroutine at address in register.
	OP_JMP  = Opcode(0b01010100) // Jump to address in register.
	OP_JEQ  = Opcode(0b01010101) // Jump if equal flag set.
	OP_JNE  = Opcode(0b01010110) // Jump if equal flag clear.
	OP_LDI  = Opcode(0b10000010) // Load immediate into register.
	OP_ADD  = Opcode(0b10100000) // ALU add.
	OP_MUL  = Opcode(0b10100010) // ALU multiply.
	OP_CMP  = Opcode(0b10100111) // ALU compare.
)

const (
	OPCODE_OPERANDS_SHIFT = 6          // Shift of the operand count bits.
	OPCODE_ALU            = 0b00100000 // Set for ALU operations.
	OPCODE_SETS_PC        = 0b00010000 // Set for operations that assign PC.
	OPCODE_ID_MASK        = 0b00001111 // Mask of the instruction identifier.
)

// opcodeName maps each opcode in the instruction set to its mnemonic.
var opcodeName = map[Opcode]string{
	OP_HLT:  "HLT",
	OP_RET:  "RET",
	OP_PUSH: "PUSH",
	OP_POP:  "POP",
	OP_PRN:  "PRN",
	OP_CALL: "CALL",
	OP_JMP:  "JMP",
	OP_JEQ:  "JEQ",
	OP_JNE:  "JNE",
	OP_LDI:  "LDI",
	OP_ADD:  "ADD",
	OP_MUL:  "MUL",
	OP_CMP:  "CMP",
}

// mnemonicMap maps upper-case mnemonics to their opcodes.
var mnemonicMap = func() map[string]Opcode {
	mm := make(map[string]Opcode, len(opcodeName))
	for op, name := range opcodeName {
		mm[name] = op
	}
	return mm
}()

// LookupOpcode returns the opcode for a mnemonic, ignoring case.
func LookupOpcode(mnemonic string) (op Opcode, ok bool) {
	op, ok = mnemonicMap[strings.ToUpper(mnemonic)]
	return
}

// Valid returns true if the opcode is part of the instruction set.
func (op Opcode) Valid() bool {
	_, ok := opcodeName[op]
	return ok
}

// Operands returns the number of operand bytes following the opcode.
func (op Opcode) Operands() int {
	return int(op >> OPCODE_OPERANDS_SHIFT)
}

// Size returns the total instruction length in bytes.
func (op Opcode) Size() uint {
	return uint(op.Operands()) + 1
}

// IsAlu returns true if the opcode is executed by the ALU.
func (op Opcode) IsAlu() bool {
	return (op & OPCODE_ALU) != 0
}

// String returns the mnemonic, or a hex form for unknown opcodes.
func (op Opcode) String() string {
	name, ok := opcodeName[op]
	if !ok {
		return fmt.Sprintf("Opcode(0x%02X)", uint8(op))
	}
	return name
}

// AluOp is an ALU operation type.
type AluOp int

//go:generate go tool stringer -linecomment -type=AluOp
const (
	ALU_OP_ADD = AluOp(0) // ADD
	ALU_OP_MUL = AluOp(1) // MUL
	ALU_OP_CMP = AluOp(2) // CMP
)

// Package cpu implements the LS-8 byte-code processor and its assembler.
//
// The processor consists of a 256 byte memory, a program counter (PC),
// eight 8-bit registers (R0-R7, where R7 is the stack pointer), an ALU and
// a three bit condition flag register. Each cycle fetches the opcode at PC
// along with two candidate operand bytes, dispatches through a fixed
// opcode table, and applies the resulting Step to PC.
//
// The assembler provides a small assembly language for the LS-8
// instruction set, supporting macros, labels, equates, and compile-time
// expression evaluation. Assembled programs can be written and read in the
// line-oriented binary listing format used to distribute LS-8 programs.
package cpu

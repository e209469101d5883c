package cpu

import (
	"fmt"
	"io"
	"iter"
	"log"
	"maps"
	"strings"
)

var _cpu_defines = map[string]string{
	"MEMORY_SIZE": fmt.Sprintf("%v", MEMORY_SIZE),
	"STACK_TOP":   fmt.Sprintf("0x%02X", STACK_TOP),
	"REG_SP":      fmt.Sprintf("%v", REG_SP),
	"FLAG_EQ":     fmt.Sprintf("%v", uint8(FLAG_EQ)),
	"FLAG_GT":     fmt.Sprintf("%v", uint8(FLAG_GT)),
	"FLAG_LT":     fmt.Sprintf("%v", uint8(FLAG_LT)),
}

// handler executes one instruction, given both candidate operand bytes.
type handler func(cpu *Cpu, operand_a, operand_b uint8) (step Step, err error)

// dispatch is the fixed opcode table. Nil entries are not in the
// instruction set.
var dispatch = [256]handler{
	OP_HLT:  (*Cpu).hlt,
	OP_RET:  (*Cpu).ret,
	OP_PUSH: (*Cpu).push,
	OP_POP:  (*Cpu).pop,
	OP_PRN:  (*Cpu).prn,
	OP_CALL: (*Cpu).call,
	OP_JMP:  (*Cpu).jmp,
	OP_JEQ:  (*Cpu).jeq,
	OP_JNE:  (*Cpu).jne,
	OP_LDI:  (*Cpu).ldi,
	OP_ADD:  (*Cpu).add,
	OP_MUL:  (*Cpu).mul,
	OP_CMP:  (*Cpu).cmp,
}

// ErrInstruction locates an execution error at the failing instruction.
type ErrInstruction struct {
	Pc     uint
	Opcode Opcode
	Err    error
}

func (err *ErrInstruction) Error() string {
	return f("0x%02x: %v %v", err.Pc, err.Opcode.String(), err.Err)
}

func (err *ErrInstruction) Unwrap() error {
	return err.Err
}

// Cpu is the simulation context for an LS-8 processor.
type Cpu struct {
	Verbose bool      // Set to enable verbose logging.
	Strict  bool      // Set to fail on opcodes outside the instruction set.
	Output  io.Writer // Destination of PRN output.

	Pc       uint      // Address of the next opcode.
	Register Registers // Register bank; R7 is SP.
	Flag     Flag      // Condition flags, set by CMP.
	Memory   Memory    // Program, data and stack memory.
	Halted   bool      // Set once HLT executes.

	Ticks int // CPU ticks counter.
}

// NewCpu creates a new, reset CPU printing to output.
func NewCpu(output io.Writer) (cpu *Cpu) {
	cpu = &Cpu{
		Output: output,
	}

	cpu.Reset()

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// Reset the CPU state.
// - Zeros memory, registers, flags and PC.
// - Sets SP to STACK_TOP.
// - Zeros the tick counter.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	cpu.Memory.Reset()
	cpu.Register.Reset()
	cpu.Flag = 0
	cpu.Pc = 0
	cpu.Halted = false
	cpu.Ticks = 0
}

// Load resets the CPU, then places program at address 0.
func (cpu *Cpu) Load(program []uint8) (err error) {
	cpu.Reset()

	err = cpu.Memory.Load(0, program)
	if err != nil {
		return
	}

	if cpu.Verbose {
		log.Printf("cpu: loaded %v bytes", len(program))
	}

	return
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	regs := []string{
		"pc", "fl",
		"r0", "r1", "r2", "r3", "r4", "r5", "r6", "sp",
		"stack",
	}
	for _, reg := range regs {
		var strval string
		switch reg {
		case "pc":
			strval = fmt.Sprintf("%02X", cpu.Pc)
		case "fl":
			strval = cpu.Flag.String()
		case "r0", "r1", "r2", "r3", "r4", "r5", "r6":
			strval = fmt.Sprintf("%02X", cpu.Register[reg[1]-'0'])
		case "sp":
			strval = fmt.Sprintf("%02X", cpu.Sp())
		case "stack":
			val, err := cpu.Peek()
			if err == nil {
				strval = fmt.Sprintf("%02X", val)
			} else {
				strval = "--"
			}
		}
		text += fmt.Sprintf("% 5s: %v\n", reg, strval)
	}

	return
}

// Trace returns PC, the three bytes at PC, and all registers, in hex.
func (cpu *Cpu) Trace() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "TRACE: %02X | %02X %02X %02X |",
		cpu.Pc,
		cpu.Memory.Peek(cpu.Pc),
		cpu.Memory.Peek(cpu.Pc+1),
		cpu.Memory.Peek(cpu.Pc+2),
	)

	for _, reg := range cpu.Register {
		fmt.Fprintf(&sb, " %02X", reg)
	}

	return sb.String()
}

// Disassemble renders the instruction at addr in assembler syntax.
func (cpu *Cpu) Disassemble(addr uint) string {
	op := Opcode(cpu.Memory.Peek(addr))
	operand_a := cpu.Memory.Peek(addr + 1)
	operand_b := cpu.Memory.Peek(addr + 2)

	if !op.Valid() {
		return fmt.Sprintf(".db 0x%02X", uint8(op))
	}

	switch {
	case op.IsAlu():
		return fmt.Sprintf("%v R%d,R%d", op, operand_a, operand_b)
	case op == OP_LDI:
		return fmt.Sprintf("%v R%d,%d", op, operand_a, operand_b)
	case op.Operands() == 1:
		return fmt.Sprintf("%v R%d", op, operand_a)
	}

	return op.String()
}

// Fetch reads the opcode at PC and the two bytes that follow it.
// Operand bytes past the end of memory read as zero.
func (cpu *Cpu) Fetch() (op Opcode, operand_a, operand_b uint8, err error) {
	ir, err := cpu.Memory.Read(cpu.Pc)
	if err != nil {
		return
	}

	op = Opcode(ir)
	operand_a = cpu.Memory.Peek(cpu.Pc + 1)
	operand_b = cpu.Memory.Peek(cpu.Pc + 2)
	return
}

// Tick executes a single CPU instruction cycle.
func (cpu *Cpu) Tick() (err error) {
	if cpu.Halted {
		err = ErrHalted
		return
	}

	if cpu.Verbose {
		log.Printf("cpu: %v", cpu.Trace())
	}

	op, operand_a, operand_b, err := cpu.Fetch()
	if err != nil {
		return
	}

	step, err := cpu.Execute(op, operand_a, operand_b)
	if err != nil {
		return
	}

	if step.Kind == STEP_HALT {
		cpu.Halted = true
	} else {
		cpu.Pc = step.Next(cpu.Pc)
	}

	cpu.Ticks += 1

	return
}

// Run ticks the CPU until it halts, or an error occurs.
func (cpu *Cpu) Run() (err error) {
	for !cpu.Halted {
		err = cpu.Tick()
		if err != nil {
			return
		}
	}

	return
}

// Execute executes a single decoded instruction, returning the
// PC update it requests.
func (cpu *Cpu) Execute(op Opcode, operand_a, operand_b uint8) (step Step, err error) {
	defer func() {
		if err != nil {
			err = &ErrInstruction{Pc: cpu.Pc, Opcode: op, Err: err}
		}
	}()

	if cpu.Verbose {
		log.Printf("%02x: %v", cpu.Pc, cpu.Disassemble(cpu.Pc))
	}

	fn := dispatch[op]
	if fn == nil {
		if cpu.Strict {
			err = ErrOpcode(op)
			return
		}
		if cpu.Verbose {
			log.Printf("cpu: skipping unknown opcode 0x%02x", uint8(op))
		}
		step = Advance(1)
		return
	}

	step, err = fn(cpu, operand_a, operand_b)
	return
}

// Alu performs the requested ALU action on two registers.
// ADD and MUL write back to reg_a; CMP writes the flags.
func (cpu *Cpu) Alu(op AluOp, reg_a, reg_b uint8) (err error) {
	a, err := cpu.Register.Get(reg_a)
	if err != nil {
		return
	}
	b, err := cpu.Register.Get(reg_b)
	if err != nil {
		return
	}

	switch op {
	case ALU_OP_ADD:
		cpu.Register[reg_a] = a + b
	case ALU_OP_MUL:
		cpu.Register[reg_a] = a * b
	case ALU_OP_CMP:
		cpu.Flag = Compare(a, b)
	default:
		err = ErrAluUnsupported
	}

	return
}

func (cpu *Cpu) hlt(_, _ uint8) (step Step, err error) {
	step = Halt()
	return
}

func (cpu *Cpu) ldi(reg, value uint8) (step Step, err error) {
	err = cpu.Register.Set(reg, value)
	step = Advance(OP_LDI.Size())
	return
}

func (cpu *Cpu) prn(reg, _ uint8) (step Step, err error) {
	value, err := cpu.Register.Get(reg)
	if err != nil {
		return
	}

	out := cpu.Output
	if out == nil {
		out = io.Discard
	}

	_, err = fmt.Fprintf(out, "%d\n", value)
	step = Advance(OP_PRN.Size())
	return
}

func (cpu *Cpu) add(reg_a, reg_b uint8) (step Step, err error) {
	err = cpu.Alu(ALU_OP_ADD, reg_a, reg_b)
	step = Advance(OP_ADD.Size())
	return
}

func (cpu *Cpu) mul(reg_a, reg_b uint8) (step Step, err error) {
	err = cpu.Alu(ALU_OP_MUL, reg_a, reg_b)
	step = Advance(OP_MUL.Size())
	return
}

func (cpu *Cpu) cmp(reg_a, reg_b uint8) (step Step, err error) {
	err = cpu.Alu(ALU_OP_CMP, reg_a, reg_b)
	step = Advance(OP_CMP.Size())
	return
}

func (cpu *Cpu) push(reg, _ uint8) (step Step, err error) {
	value, err := cpu.Register.Get(reg)
	if err != nil {
		return
	}

	err = cpu.Push(value)
	step = Advance(OP_PUSH.Size())
	return
}

func (cpu *Cpu) pop(reg, _ uint8) (step Step, err error) {
	value, err := cpu.Peek()
	if err != nil {
		return
	}

	// Register write precedes the SP increment, so POP R7 lands one
	// above the popped value.
	err = cpu.Register.Set(reg, value)
	if err != nil {
		return
	}
	cpu.Register[REG_SP]++

	step = Advance(OP_POP.Size())
	return
}

func (cpu *Cpu) jmp(reg, _ uint8) (step Step, err error) {
	target, err := cpu.Register.Get(reg)
	if err != nil {
		return
	}

	step = Jump(uint(target))
	return
}

func (cpu *Cpu) jeq(reg, _ uint8) (step Step, err error) {
	if !cpu.Flag.Equal() {
		step = Advance(OP_JEQ.Size())
		return
	}

	return cpu.jmp(reg, 0)
}

func (cpu *Cpu) jne(reg, _ uint8) (step Step, err error) {
	if cpu.Flag.Equal() {
		step = Advance(OP_JNE.Size())
		return
	}

	return cpu.jmp(reg, 0)
}

func (cpu *Cpu) call(reg, _ uint8) (step Step, err error) {
	target, err := cpu.Register.Get(reg)
	if err != nil {
		return
	}

	next_pc := cpu.Pc + OP_CALL.Size()
	if next_pc >= MEMORY_SIZE {
		err = ErrAddress(next_pc)
		return
	}

	err = cpu.Push(uint8(next_pc))
	if err != nil {
		return
	}

	step = Jump(uint(target))
	return
}

func (cpu *Cpu) ret(_, _ uint8) (step Step, err error) {
	target, err := cpu.Pop()
	if err != nil {
		return
	}

	step = Jump(uint(target))
	return
}

package cpu

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssembler(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	prog, err := asm.Parse(strings.NewReader(""))
	assert.NoError(err)
	assert.Equal(0, len(prog.Statements))

	assert.Equal("0", asm.Equate["LINENO"])
	assert.Equal(fmt.Sprintf("%v", MEMORY_SIZE), asm.Equate["MEMORY_SIZE"])
	assert.Equal("0xF4", asm.Equate["STACK_TOP"])
	assert.Equal("7", asm.Equate["REG_SP"])
}

func stEqual(t *testing.T, expected, statements []Statement) {
	assert := assert.New(t)

	assert.Equal(len(expected), len(statements))
	if len(expected) == len(statements) {
		for n := range len(expected) {
			assert.Equal(expected[n], statements[n])
		}
	}
}

// assemble parses program, failing the test on error.
func assemble(t *testing.T, program []string) (prog *Program) {
	asm := &Assembler{}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	if err != nil {
		t.Fatal(err)
	}

	return
}

func TestAssemblerMultiply(t *testing.T) {
	program := []string{
		"; mult.ls8",
		"LDI R0,8",
		"LDI R1,9",
		"MUL R0,R1",
		"PRN R0 # 72",
		"HLT",
	}

	prog := assemble(t, program)

	expected := []Statement{
		{2, 0, []string{"LDI", "R0", "8"}, []uint8{0x82, 0, 8}, ""},
		{3, 3, []string{"LDI", "R1", "9"}, []uint8{0x82, 1, 9}, ""},
		{4, 6, []string{"MUL", "R0", "R1"}, []uint8{0xa2, 0, 1}, ""},
		{5, 9, []string{"PRN", "R0"}, []uint8{0x47, 0}, ""},
		{6, 11, []string{"HLT"}, []uint8{0x01}, ""},
	}

	stEqual(t, expected, prog.Statements)
}

func TestAssemblerSyntax(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"  ldi r2 , 0x10",
		"\tpush SP",
		"add R1, R2",
		"ldi r3,-1",
		"ldi r4,~0x0f",
		"ldi r5,'A'",
		"ldi r6,'#' ; a quoted hash is not a comment",
		"ldi r0,'\\n'",
		".db 1 2 0xff",
	}

	prog := assemble(t, program)

	assert.Equal([]uint8{
		0x82, 2, 0x10,
		0x45, 7,
		0xa0, 1, 2,
		0x82, 3, 0xff,
		0x82, 4, 0xf0,
		0x82, 5, 'A',
		0x82, 6, '#',
		0x82, 0, '\n',
		1, 2, 0xff,
	}, prog.Binary())
}

func TestAssemblerLabel(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"LDI R0,3",         // 0x00
		"LDI R1,3",         // 0x03
		"LDI R2,Equal",     // 0x06
		"CMP R0,R1",        // 0x09
		"JEQ R2",           // 0x0c
		"PRN R0",           // 0x0e
		"HLT",              // 0x10
		"Equal: LDI R3,99", // 0x11
		"PRN R3",           // 0x14
		"Done:",            // 0x16
		"HLT",              // 0x16
	}

	prog := assemble(t, program)

	assert.Equal(uint8(0x11), prog.Statements[2].Bytes[2])
	assert.Equal("Equal", prog.Statements[2].LinkLabel)

	out := &bytes.Buffer{}
	cpu := NewCpu(out)
	assert.NoError(cpu.Load(prog.Binary()))
	assert.NoError(cpu.Run())
	assert.Equal("99\n", out.String())
	assert.Equal(uint(0x16), cpu.Pc)
}

func TestAssemblerEqu(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		".equ CONST_10 0x10",
		".equ COUNTER R3",
		"LDI R0,CONST_10",
		"LDI R1,$(CONST_10 + CONST_10)",
		".equ CONST_30 $(2 * CONST_10 + CONST_10)",
		"LDI R2,CONST_30",
		"LDI COUNTER,$(LINENO * 8 + 0x10)",
		"LDI R4,$(STACK_TOP - 4)",
		"LDI R5,$(max(1, 7))",
	}

	prog := assemble(t, program)

	assert.Equal([]uint8{
		0x82, 0, 0x10,
		0x82, 1, 0x20,
		0x82, 2, 0x30,
		0x82, 3, 0x48,
		0x82, 4, 0xf0,
		0x82, 5, 7,
	}, prog.Binary())
}

func TestAssemblerMacro(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		".macro SETMUL rn, a, b",
		"LDI rn,a",
		"LDI R7,b",
		"MUL rn,R7",
		".endm",
		".macro SKIP",
		"LDI R6,@over",
		"JMP R6",
		".db 0xff",
		"@over:",
		".endm",
		"LDI R7,STACK_TOP",
		"SETMUL R0,8,9",
		"SKIP",
		"PRN R0",
		"LDI R7,STACK_TOP",
		"HLT",
	}

	prog := assemble(t, program)

	out := &bytes.Buffer{}
	cpu := NewCpu(out)
	assert.NoError(cpu.Load(prog.Binary()))
	assert.NoError(cpu.Run())
	assert.Equal("72\n", out.String())
	assert.Equal(uint8(STACK_TOP), cpu.Sp())
}

func TestAssemblerMacroNested(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		".macro INNER",
		"LDI R6,@over",
		"JMP R6",
		".db 0xff",
		"@over:",
		"ADD R0,R1",
		".endm",
		".macro OUTER",
		"INNER",
		".endm",
		"LDI R0,0",
		"LDI R1,1",
		"OUTER",
		"OUTER",
		"PRN R0",
		"HLT",
	}

	asm := &Assembler{}
	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		return
	}

	assert.Contains(asm.Label, "INNER_2_over")
	assert.Contains(asm.Label, "INNER_4_over")

	out := &bytes.Buffer{}
	cpu := NewCpu(out)
	assert.NoError(cpu.Load(prog.Binary()))
	assert.NoError(cpu.Run())
	assert.Equal("2\n", out.String())

	// Expansion numbering restarts with each parse.
	_, err = asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	assert.Contains(asm.Label, "INNER_2_over")
}

func TestAssemblerErrors(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name    string
		program []string
		lineno  int
		err     error
	}){
		{"unknown", []string{"HLT", "NOP"}, 2, ErrInstructionInvalid},
		{"missing", []string{"LDI R0"}, 1, ErrOpcodeMissing},
		{"extra", []string{"PRN R0,R1"}, 1, ErrOpcodeExtraArgs},
		{"register", []string{"PRN R8"}, 1, ErrRegisterInvalid},
		{"register_imm", []string{"ADD R0,5"}, 1, ErrRegisterInvalid},
		{"range", []string{"LDI R0,256"}, 1, ErrValueRange},
		{"range_neg", []string{"LDI R0,-129"}, 1, ErrValueRange},
		{"equ", []string{".equ A"}, 1, ErrEquateSyntax},
		{"equ_dup", []string{".equ A 1", ".equ A 2"}, 2, ErrEquateDuplicate},
		{"label_dup", []string{"A: HLT", "A: HLT"}, 2, ErrLabelDuplicate},
		{"label_missing", []string{"HLT", "LDI R0,Nowhere"}, 2, ErrLabelMissing("Nowhere")},
		{"macro_lonely", []string{".macro X", "HLT"}, 2, ErrMacroLonely},
		{"endm_lonely", []string{".endm"}, 1, ErrMacroLonelyEndm},
		{"macro_nest", []string{".macro X", ".macro Y"}, 2, ErrMacroNesting},
		{"macro_dup", []string{".macro X", ".endm", ".macro X"}, 3, ErrMacroDuplicate},
		{"macro_args", []string{".macro X a", "PRN a", ".endm", "X"}, 4, ErrMacroSyntax},
		{"label_range", []string{"LDI R0,End", ".db " + strings.Repeat("0 ", MEMORY_SIZE-3), "End:"}, 1, ErrValueRange},
		{"too_large", []string{".db " + strings.Repeat("0 ", MEMORY_SIZE+1)}, 1, ErrProgramSize},
	}

	for _, entry := range table {
		asm := &Assembler{}
		_, err := asm.Parse(strings.NewReader(strings.Join(entry.program, "\n")))
		assert.ErrorIs(err, entry.err, entry.name)

		var syntax *ErrSyntax
		assert.True(errors.As(err, &syntax), entry.name)
		if syntax != nil {
			assert.Equal(entry.lineno, syntax.LineNo, entry.name)
		}
	}
}

func TestAssemblerExpressionError(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	_, err := asm.Parse(strings.NewReader("LDI R0,$(\"text\")"))
	assert.Error(err)

	var pe ErrParseExpression
	assert.True(errors.As(err, &pe))
	assert.Equal(ErrParseExpression(`"text"`), pe)
}

func TestAssemblerPredefine(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	asm.Predefine("BASE", "0x20")
	asm.Predefine("BASE", "0x30")

	prog, err := asm.Parse(strings.NewReader("LDI R0,$(BASE + 1)"))
	assert.NoError(err)
	assert.Equal([]uint8{0x82, 0, 0x31}, prog.Binary())

	// Predefines survive a second parse.
	prog, err = asm.Parse(strings.NewReader("LDI R1,BASE"))
	assert.NoError(err)
	assert.Equal([]uint8{0x82, 1, 0x30}, prog.Binary())
}

func TestAssemblerListing(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"LDI R0,8",
		"PRN R0",
		"HLT",
	}

	prog := assemble(t, program)

	out := &bytes.Buffer{}
	assert.NoError(prog.WriteBinary(out))

	loaded, err := ReadBinary(out)
	assert.NoError(err)
	assert.Equal(prog.Binary(), loaded.Binary())
	assert.Equal([]string{"LDI", "R0", "8"}, loaded.Statements[0].Words)

	cpu := NewCpu(nil)
	assert.NoError(cpu.Load(loaded.Binary()))
	for addr := range prog.Bytes() {
		dbg := prog.Debug(addr)
		if dbg.Index == 0 {
			assert.Equal(strings.ToUpper(strings.Join(dbg.Words, " ")),
				strings.ReplaceAll(cpu.Disassemble(addr), ",", " "))
		}
	}
}

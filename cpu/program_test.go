package cpu

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// print8 is the print8.ls8 listing distributed with the LS-8 exercises.
var print8 = []string{
	"# print8.ls8",
	"",
	"10000010 # LDI R0,8",
	"00000000",
	"00001000",
	"01000111 # PRN R0",
	"00000000",
	"00000001 # HLT",
}

func TestReadBinary(t *testing.T) {
	assert := assert.New(t)

	prog, err := ReadBinary(strings.NewReader(strings.Join(print8, "\n")))
	assert.NoError(err)

	assert.Equal([]uint8{0x82, 0x00, 0x08, 0x47, 0x00, 0x01}, prog.Binary())
	assert.Equal(6, len(prog.Statements))

	assert.Equal(Statement{LineNo: 3, Address: 0, Words: []string{"LDI", "R0,8"}, Bytes: []uint8{0x82}}, prog.Statements[0])
	assert.Equal(Statement{LineNo: 4, Address: 1, Bytes: []uint8{0x00}}, prog.Statements[1])
	assert.Equal(8, prog.Statements[5].LineNo)

	out := &bytes.Buffer{}
	cpu := NewCpu(out)
	assert.NoError(cpu.Load(prog.Binary()))
	assert.NoError(cpu.Run())
	assert.Equal("8\n", out.String())
}

func TestReadBinary_Skipped(t *testing.T) {
	assert := assert.New(t)

	listing := []string{
		"   # indented comment",
		"  10000010 indented lines do not start with a digit",
		"LDI R0,8",
		"#10000010",
		"",
		"000000011 trailing digits are ignored",
		"01000111\t\r",
		"00000000",
	}

	prog, err := ReadBinary(strings.NewReader(strings.Join(listing, "\n")))
	assert.NoError(err)
	assert.Equal([]uint8{0x01, 0x47, 0x00}, prog.Binary())
	assert.Equal(6, prog.Statements[0].LineNo)
}

func TestReadBinary_Error(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name   string
		line   string
		lineno int
	}){
		{"short", "0101", 2},
		{"short_comment", "0101 # LDI", 2},
		{"letter", "0101010x", 2},
		{"digit", "01010102", 2},
	}

	for _, entry := range table {
		listing := "00000001\n" + entry.line + "\n00000001\n"
		_, err := ReadBinary(strings.NewReader(listing))
		assert.Error(err, entry.name)
		assert.ErrorIs(err, ErrBinaryDigits, entry.name)

		var el *ErrLoad
		assert.True(errors.As(err, &el), entry.name)
		if el != nil {
			assert.Equal(entry.lineno, el.LineNo, entry.name)
			assert.Equal(entry.line, el.Line, entry.name)
		}
	}
}

func TestProgram_WriteBinary(t *testing.T) {
	assert := assert.New(t)

	prog := &Program{
		Statements: []Statement{
			{LineNo: 1, Address: 0, Words: []string{"LDI", "R0", "8"}, Bytes: []uint8{0x82, 0x00, 0x08}},
			{LineNo: 2, Address: 3, Words: []string{"PRN", "R0"}, Bytes: []uint8{0x47, 0x00}},
			{LineNo: 3, Address: 5, Words: []string{"HLT"}, Bytes: []uint8{0x01}},
		},
	}

	out := &bytes.Buffer{}
	assert.NoError(prog.WriteBinary(out))

	expected := []string{
		"10000010 # LDI R0 8",
		"00000000",
		"00001000",
		"01000111 # PRN R0",
		"00000000",
		"00000001 # HLT",
		"",
	}
	assert.Equal(strings.Join(expected, "\n"), out.String())

	loaded, err := ReadBinary(out)
	assert.NoError(err)
	assert.Equal(prog.Binary(), loaded.Binary())
}

func TestProgram_Debug(t *testing.T) {
	assert := assert.New(t)

	prog := &Program{
		Statements: []Statement{
			{LineNo: 1, Address: 0, Words: []string{"LDI", "R0", "8"}, Bytes: []uint8{0x82, 0x00, 0x08}},
			{LineNo: 3, Address: 3, Words: []string{"PRN", "R0"}, Bytes: []uint8{0x47, 0x00}},
		},
	}

	dbg := prog.Debug(0)
	assert.NotNil(dbg.Statement)
	assert.Equal(1, dbg.LineNo)
	assert.Equal(0, dbg.Index)

	dbg = prog.Debug(2)
	assert.NotNil(dbg.Statement)
	assert.Equal(1, dbg.LineNo)
	assert.Equal(2, dbg.Index)

	dbg = prog.Debug(4)
	assert.NotNil(dbg.Statement)
	assert.Equal(3, dbg.LineNo)
	assert.Equal(1, dbg.Index)

	dbg = prog.Debug(5)
	assert.Nil(dbg.Statement)
	assert.Equal(0, dbg.Index)
}

func TestProgram_Binary(t *testing.T) {
	assert := assert.New(t)

	prog := &Program{
		Statements: []Statement{
			{Address: 0, Bytes: []uint8{0x01}},
			{Address: 4, Bytes: []uint8{0x02, 0x03}},
		},
	}

	assert.Equal([]uint8{0x01, 0, 0, 0, 0x02, 0x03}, prog.Binary())

	var addrs []uint
	for addr := range prog.Bytes() {
		addrs = append(addrs, addr)
	}
	assert.Equal([]uint{0, 4, 5}, addrs)

	assert.Nil((&Program{}).Binary())
}

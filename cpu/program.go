package cpu

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"
)

// Statement is a line of source with the bytes it generated.
type Statement struct {
	LineNo    int      // Source line number.
	Address   int      // Memory address of the first byte.
	Words     []string // Source words, after equate expansion.
	Bytes     []uint8  // Generated bytes.
	LinkLabel string   // Label to resolve into the last byte, if any.
}

// Program is an assembled or loaded LS-8 program.
type Program struct {
	Statements []Statement
}

type Debug struct {
	*Statement
	Index int
}

// Debug locates the statement that generated the byte at addr.
func (prog *Program) Debug(addr uint) (dbg Debug) {
	for n, st := range prog.Statements {
		if addr >= uint(st.Address) && addr < uint(st.Address)+uint(len(st.Bytes)) {
			dbg = Debug{
				Statement: &prog.Statements[n],
				Index:     int(addr - uint(st.Address)),
			}
			break
		}
	}

	return
}

// Bytes iterates over every generated byte and its address.
func (prog *Program) Bytes() iter.Seq2[uint, uint8] {
	return func(yield func(addr uint, value uint8) bool) {
		for _, st := range prog.Statements {
			addr := uint(st.Address)
			for n, value := range st.Bytes {
				if !yield(addr+uint(n), value) {
					return
				}
			}
		}
	}
}

// Binary returns the memory image of the program, starting at address 0.
func (prog *Program) Binary() (bins []uint8) {
	for addr, value := range prog.Bytes() {
		for uint(len(bins)) < addr {
			bins = append(bins, 0)
		}
		bins = append(bins, value)
	}

	return
}

// WriteBinary writes the program as a binary listing: one byte per line,
// as 8 binary digits, with the source text as a comment.
func (prog *Program) WriteBinary(out io.Writer) (err error) {
	w := bufio.NewWriter(out)

	for _, st := range prog.Statements {
		for n, value := range st.Bytes {
			if n == 0 && len(st.Words) > 0 {
				_, err = fmt.Fprintf(w, "%08b # %v\n", value, strings.Join(st.Words, " "))
			} else {
				_, err = fmt.Fprintf(w, "%08b\n", value)
			}
			if err != nil {
				return
			}
		}
	}

	err = w.Flush()
	return
}

// ReadBinary parses a binary listing.
//
// Each line that starts with '0' or '1' holds one byte, as its leading
// 8 binary digits. Text after '#' is a comment. All other lines are
// ignored.
func ReadBinary(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	prog = &Program{}

	var lineno int
	var address int
	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		line, comment, _ := strings.Cut(text, "#")
		line = strings.TrimRight(line, " \t\r")
		if len(line) == 0 {
			continue
		}
		if line[0] != '0' && line[0] != '1' {
			continue
		}

		if len(line) < 8 {
			err = &ErrLoad{LineNo: lineno, Line: text, Err: ErrBinaryDigits}
			return
		}

		var value uint64
		value, err = strconv.ParseUint(line[:8], 2, 8)
		if err != nil {
			err = &ErrLoad{LineNo: lineno, Line: text, Err: ErrBinaryDigits}
			return
		}

		st := Statement{
			LineNo:  lineno,
			Address: address,
			Bytes:   []uint8{uint8(value)},
		}
		if words := strings.Fields(comment); len(words) > 0 {
			st.Words = words
		}
		prog.Statements = append(prog.Statements, st)
		address += 1
	}

	err = scanner.Err()
	return
}

package cpu

import (
	"fmt"
)

// StepKind is the kind of PC update requested by an instruction.
type StepKind int

//go:generate go tool stringer -linecomment -type=StepKind
const (
	STEP_ADVANCE = StepKind(0) // advance
	STEP_JUMP    = StepKind(1) // jump
	STEP_HALT    = StepKind(2) // halt
)

// Step is the result of executing one instruction.
//
// For STEP_ADVANCE, Value is the number of bytes to add to PC.
// For STEP_JUMP, Value is the absolute address to load into PC.
// For STEP_HALT, Value is unused.
type Step struct {
	Kind  StepKind
	Value uint
}

// Advance requests PC to move forward by n bytes.
func Advance(n uint) Step {
	return Step{Kind: STEP_ADVANCE, Value: n}
}

// Jump requests PC to be set to addr.
func Jump(addr uint) Step {
	return Step{Kind: STEP_JUMP, Value: addr}
}

// Halt requests the CPU to stop.
func Halt() Step {
	return Step{Kind: STEP_HALT}
}

// Next returns the PC following this step, from the current PC.
func (st Step) Next(pc uint) uint {
	switch st.Kind {
	case STEP_ADVANCE:
		return pc + st.Value
	case STEP_JUMP:
		return st.Value
	}
	return pc
}

func (st Step) String() string {
	switch st.Kind {
	case STEP_ADVANCE:
		return fmt.Sprintf("%v(%d)", st.Kind, st.Value)
	case STEP_JUMP:
		return fmt.Sprintf("%v(0x%02X)", st.Kind, st.Value)
	}
	return st.Kind.String()
}

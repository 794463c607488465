package pcode

import (
	"fmt"
	"strings"

	"github.com/retroenv/pcodedis/internal/space"
)

// Op is one pcode operation of a decoded instruction in tree form. The
// output is nil for operations without a result. The inputs are ordered
// and their count is implied by the opcode, sinks validate arity if they
// care about it.
type Op struct {
	Opcode OpCode
	Output *space.Varnode
	Inputs []space.Varnode
}

// String returns the operation in a readable listing form, for example
// "unique:0x10:1 = INT_ADD ram:0x0:1, const:0x1:1".
func (o Op) String() string {
	var sb strings.Builder
	if o.Output != nil {
		sb.WriteString(o.Output.String())
		sb.WriteString(" = ")
	}
	sb.WriteString(o.Opcode.String())
	for i, input := range o.Inputs {
		if i == 0 {
			sb.WriteString(" ")
		} else {
			sb.WriteString(", ")
		}
		sb.WriteString(input.String())
	}
	return sb.String()
}

// Instruction groups the operations of one decoded machine instruction.
// An unimplemented instruction carries its byte length but no operations:
// the instruction is valid for the architecture but has no pcode
// translation.
type Instruction struct {
	Address       space.Address
	Length        int
	Unimplemented bool
	Ops           []Op
}

// String returns a multi line listing of the instruction group.
func (i Instruction) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%d bytes)", i.Address, i.Length)
	if i.Unimplemented {
		sb.WriteString(" unimplemented")
		return sb.String()
	}
	for _, op := range i.Ops {
		sb.WriteString("\n  ")
		sb.WriteString(op.String())
	}
	return sb.String()
}

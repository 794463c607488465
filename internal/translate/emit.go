package translate

import (
	"github.com/retroenv/pcodedis/internal/pcode"
	"github.com/retroenv/pcodedis/internal/space"
)

// PcodeEmit receives the pcode operations of a decoded instruction. Dump
// is called exactly once per operation, in program order, synchronously
// from within the decode call. The output varnode is nil for operations
// without a result, the inputs are ordered and their count is implied by
// the opcode.
type PcodeEmit interface {
	Dump(addr space.Address, opc pcode.OpCode, output *space.Varnode, inputs []space.Varnode) error
}

// AssemblyEmit receives the disassembly text of a decoded instruction.
// Dump is called once per instruction. Mnemonic and operand body are
// passed separately so a consumer can format them independently.
type AssemblyEmit interface {
	Dump(addr space.Address, mnemonic, body string) error
}

// PcodeEmitFunc adapts a function to the PcodeEmit interface.
type PcodeEmitFunc func(addr space.Address, opc pcode.OpCode, output *space.Varnode, inputs []space.Varnode) error

// Dump calls the wrapped function.
func (f PcodeEmitFunc) Dump(addr space.Address, opc pcode.OpCode, output *space.Varnode, inputs []space.Varnode) error {
	return f(addr, opc, output, inputs)
}

// AssemblyEmitFunc adapts a function to the AssemblyEmit interface.
type AssemblyEmitFunc func(addr space.Address, mnemonic, body string) error

// Dump calls the wrapped function.
func (f AssemblyEmitFunc) Dump(addr space.Address, mnemonic, body string) error {
	return f(addr, mnemonic, body)
}

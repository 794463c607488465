// Package translate defines the contract between an architecture specific
// decode engine and the application consuming its disassembly and pcode.
// It acts as a bridge between the address space model and the per
// architecture decoder implementations.
package translate

import "github.com/retroenv/pcodedis/internal/space"

// Config carries the architecture configuration consumed during the one
// time initialization of a translator: the space definitions and
// truncation directives, in the order a configuration loader produced
// them.
type Config struct {
	Spaces      []space.Descriptor
	Truncations []space.Truncation
}

// Register associates a register name with its storage location.
type Register struct {
	Name     string
	Location space.Varnode
}

// Translator is the interface an architecture specific decode engine
// implements. It disassembles single machine instructions and translates
// them into pcode, and it is the repository for the exact register and
// address space configuration of the processor.
//
// Initialize is called exactly once before any decode call. All decode
// methods are bounded synchronous computations, they do not block and do
// not retry internally. Per-instruction failure conditions are reported
// as UnimplementedError or BadDataError and never abort a batch decode.
type Translator interface {
	// Initialize populates the address spaces, registers, context
	// variables and float formats of the processor.
	Initialize(cfg *Config) error

	// Spaces returns the address space manager of the processor.
	Spaces() *space.Manager

	// InstructionLength decodes just enough of the instruction at the
	// address to determine the number of bytes it occupies.
	InstructionLength(addr space.Address) (int, error)

	// OneInstruction translates the instruction at the address into
	// pcode. The emit sink is invoked exactly once per operation in
	// program order. It returns the number of bytes consumed.
	OneInstruction(emit PcodeEmit, addr space.Address) (int, error)

	// PrintAssembly disassembles the instruction at the address into
	// mnemonic and operand text. It returns the number of bytes
	// consumed. The path is independent of OneInstruction, an
	// implementation may support one without the other.
	PrintAssembly(emit AssemblyEmit, addr space.Address) (int, error)

	// GetRegister returns the storage location of a register by name,
	// exact matches only.
	GetRegister(name string) (space.Varnode, error)

	// GetRegisterName returns the name of the register exactly matching
	// the location, or an empty string. It never guesses a best effort
	// match.
	GetRegisterName(spc *space.AddrSpace, offset uint64, size uint32) string

	// AllRegisters returns all named registers sorted by name.
	AllRegisters() []Register

	// UserOpNames returns the names of the processor specific pcode
	// operations in index order, as referenced by CallOther operations.
	UserOpNames() []string

	// RegisterContext adds a context variable covering the given bit
	// range of the packed context state. Optional, architectures without
	// processor state dependent decoding use the no-op default.
	RegisterContext(name string, startBit, endBit int)

	// SetContextDefault sets the value a context variable takes when no
	// address range specifies one.
	SetContextDefault(name string, value uint32)

	// AllowContextSet toggles whether decoding may change the global
	// context and thereby affect later decoding.
	AllowContextSet(allow bool)
}

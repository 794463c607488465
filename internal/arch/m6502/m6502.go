// Package m6502 implements the MOS 6502 decode backend: disassembly and
// pcode translation of single machine instructions on top of the shared
// address space model.
package m6502

import (
	"errors"
	"fmt"

	"github.com/retroenv/pcodedis/internal/space"
	"github.com/retroenv/pcodedis/internal/translate"
	"github.com/retroenv/retrogolib/arch/cpu/cpu6502"
)

// names of the address spaces of the processor model.
const (
	SpaceRAM      = "ram"
	SpaceRegister = "register"
	SpaceConst    = "const"
	SpaceUnique   = "unique"
	SpaceStack    = "stack"
	SpaceIop      = "iop"
	SpaceFspec    = "fspec"
	SpaceJoin     = "join"
)

// uniqueReserve is the boundary in the unique space below which offsets
// are reserved for temporaries of the pcode translation itself.
const uniqueReserve = 0x100

// Compile-time check to ensure Backend implements translate.Translator.
var _ translate.Translator = (*Backend)(nil)

// Backend implements the translate.Translator contract for the 6502.
type Backend struct {
	translate.Core

	mem  Memory
	regs *translate.Registers

	ram      *space.AddrSpace
	register *space.AddrSpace
	unique   *space.AddrSpace

	initialized bool
}

// New returns a new 6502 backend reading instruction bytes from mem.
// Initialize has to be called once before any decode call.
func New(mem Memory) *Backend {
	return &Backend{
		mem:  mem,
		regs: translate.NewRegisters(),
	}
}

// DefaultConfig returns the space configuration of the standalone 6502:
// a 64 KiB RAM as default space, the register file, the internal spaces
// and a stack space based on the SP register growing downwards.
func DefaultConfig() *translate.Config {
	return &translate.Config{
		Spaces: []space.Descriptor{
			{Name: SpaceRAM, Kind: space.KindProcessor, AddrSize: 2, Default: true},
			{Name: SpaceConst, Kind: space.KindConstant, AddrSize: 8},
			{Name: SpaceRegister, Kind: space.KindProcessor, AddrSize: 4},
			{Name: SpaceUnique, Kind: space.KindInternal, AddrSize: 4},
			{
				Name:               SpaceStack,
				Kind:               space.KindSpacebase,
				AddrSize:           2,
				Contain:            SpaceRAM,
				BaseRegisterSpace:  SpaceRegister,
				BaseRegisterOffset: regSP,
				BaseRegisterSize:   2,
				BaseRegisterTrunc:  1,
				GrowsNegative:      true,
			},
			{Name: SpaceIop, Kind: space.KindIop, AddrSize: 8},
			{Name: SpaceFspec, Kind: space.KindFspec, AddrSize: 8},
			{Name: SpaceJoin, Kind: space.KindJoin, AddrSize: 8},
		},
	}
}

// Initialize builds the address spaces and registers of the processor.
// A nil config uses the default standalone 6502 configuration.
func (b *Backend) Initialize(cfg *translate.Config) error {
	if b.initialized {
		return errors.New("backend already initialized")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}

	manager, err := space.Build(cfg.Spaces, cfg.Truncations)
	if err != nil {
		return fmt.Errorf("building address spaces: %w", err)
	}

	b.ram = manager.GetDefaultSpace()
	b.register = manager.GetSpaceByName(SpaceRegister)
	b.unique = manager.GetUniqueSpace()
	if b.ram == nil || b.register == nil || b.unique == nil || manager.GetConstantSpace() == nil {
		return fmt.Errorf("space configuration misses a required space: %w", space.ErrUnknownSpace)
	}

	b.Core = translate.NewCore(manager)
	b.SetBigEndian(false)
	b.SetAlignment(1)
	b.SetUniqueBase(uniqueReserve)
	b.SetDefaultFloatFormats()

	b.addRegisters()
	b.initialized = true
	return nil
}

// UserOpNames returns the processor specific pcode operations. The brk
// instruction is translated into a CallOther of the software interrupt
// operation.
func (b *Backend) UserOpNames() []string {
	return []string{"break"}
}

// GetRegister returns the storage location of a register by name.
func (b *Backend) GetRegister(name string) (space.Varnode, error) {
	return b.regs.Get(name)
}

// GetRegisterName returns the name of the register exactly matching the
// location, or an empty string.
func (b *Backend) GetRegisterName(spc *space.AddrSpace, offset uint64, size uint32) string {
	return b.regs.NameAt(spc, offset, size)
}

// AllRegisters returns all named registers sorted by name.
func (b *Backend) AllRegisters() []translate.Register {
	return b.regs.All()
}

// InstructionLength decodes the instruction at the address just enough
// to determine the number of bytes it occupies.
func (b *Backend) InstructionLength(addr space.Address) (int, error) {
	decoded, err := b.fetch(addr)
	if err != nil {
		return 0, err
	}
	return decoded.length, nil
}

// decodedInstruction is the raw fetch result of one instruction.
type decodedInstruction struct {
	opcode  cpu6502.Opcode
	operand []byte // raw operand bytes following the opcode byte
	length  int
}

// fetch reads and identifies the instruction at the address. Bytes that
// do not decode to any 6502 instruction are reported as bad data.
func (b *Backend) fetch(addr space.Address) (decodedInstruction, error) {
	pc, err := b.busAddress(addr)
	if err != nil {
		return decodedInstruction{}, err
	}

	opcodeByte, err := b.mem.ReadMemory(pc)
	if err != nil {
		return decodedInstruction{}, &translate.BadDataError{Address: addr, Reason: err.Error()}
	}
	opcode := cpu6502.Opcodes[opcodeByte]
	if opcode.Instruction == nil {
		return decodedInstruction{}, &translate.BadDataError{
			Address: addr,
			Reason:  fmt.Sprintf("no instruction for opcode byte %02x", opcodeByte),
		}
	}

	operandSize, ok := addressingSize[opcode.Addressing]
	if !ok {
		return decodedInstruction{}, &translate.BadDataError{
			Address: addr,
			Reason:  fmt.Sprintf("unsupported addressing mode %d", opcode.Addressing),
		}
	}

	operand := make([]byte, 0, operandSize)
	for i := 0; i < operandSize; i++ {
		value, err := b.mem.ReadMemory(pc + 1 + uint16(i))
		if err != nil {
			return decodedInstruction{}, &translate.BadDataError{Address: addr, Reason: err.Error()}
		}
		operand = append(operand, value)
	}

	return decodedInstruction{
		opcode:  opcode,
		operand: operand,
		length:  1 + operandSize,
	}, nil
}

// busAddress validates that the address points into the modeled RAM and
// converts it to a bus address.
func (b *Backend) busAddress(addr space.Address) (uint16, error) {
	if addr.Space != b.ram {
		return 0, &translate.BadDataError{
			Address: addr,
			Reason:  "address outside of the default space",
		}
	}
	if addr.Offset > b.ram.Highest() {
		return 0, &translate.BadDataError{
			Address: addr,
			Reason:  "address beyond the end of the default space",
		}
	}
	return uint16(addr.Offset), nil
}

package m6502

import (
	"fmt"

	"github.com/retroenv/pcodedis/internal/space"
	"github.com/retroenv/pcodedis/internal/translate"
	"github.com/retroenv/retrogolib/arch/cpu/cpu6502"
)

// addressingSize maps an addressing mode to the number of operand bytes
// following the opcode byte.
var addressingSize = map[cpu6502.AddressingMode]int{
	cpu6502.ImpliedAddressing:     0,
	cpu6502.AccumulatorAddressing: 0,
	cpu6502.ImmediateAddressing:   1,
	cpu6502.ZeroPageAddressing:    1,
	cpu6502.ZeroPageXAddressing:   1,
	cpu6502.ZeroPageYAddressing:   1,
	cpu6502.RelativeAddressing:    1,
	cpu6502.IndirectXAddressing:   1,
	cpu6502.IndirectYAddressing:   1,
	cpu6502.AbsoluteAddressing:    2,
	cpu6502.AbsoluteXAddressing:   2,
	cpu6502.AbsoluteYAddressing:   2,
	cpu6502.IndirectAddressing:    2,
}

// PrintAssembly disassembles the instruction at the address into mnemonic
// and operand text and returns the number of bytes consumed. The path is
// independent of the pcode translation, unofficial instructions that
// have no pcode still disassemble.
func (b *Backend) PrintAssembly(emit translate.AssemblyEmit, addr space.Address) (int, error) {
	decoded, err := b.fetch(addr)
	if err != nil {
		return 0, err
	}

	body := formatOperand(decoded, uint16(addr.Offset))
	if err := emit.Dump(addr, decoded.opcode.Instruction.Name, body); err != nil {
		return 0, fmt.Errorf("emitting assembly: %w", err)
	}
	return decoded.length, nil
}

// formatOperand renders the operand bytes of the instruction according
// to its addressing mode.
func formatOperand(decoded decodedInstruction, pc uint16) string {
	operand := decoded.operand

	switch decoded.opcode.Addressing {
	case cpu6502.ImpliedAddressing:
		return ""
	case cpu6502.AccumulatorAddressing:
		return "a"
	case cpu6502.ImmediateAddressing:
		return fmt.Sprintf("#$%02x", operand[0])
	case cpu6502.ZeroPageAddressing:
		return fmt.Sprintf("$%02x", operand[0])
	case cpu6502.ZeroPageXAddressing:
		return fmt.Sprintf("$%02x,x", operand[0])
	case cpu6502.ZeroPageYAddressing:
		return fmt.Sprintf("$%02x,y", operand[0])
	case cpu6502.AbsoluteAddressing:
		return fmt.Sprintf("$%04x", operandWord(operand))
	case cpu6502.AbsoluteXAddressing:
		return fmt.Sprintf("$%04x,x", operandWord(operand))
	case cpu6502.AbsoluteYAddressing:
		return fmt.Sprintf("$%04x,y", operandWord(operand))
	case cpu6502.IndirectAddressing:
		return fmt.Sprintf("($%04x)", operandWord(operand))
	case cpu6502.IndirectXAddressing:
		return fmt.Sprintf("($%02x,x)", operand[0])
	case cpu6502.IndirectYAddressing:
		return fmt.Sprintf("($%02x),y", operand[0])
	case cpu6502.RelativeAddressing:
		return fmt.Sprintf("$%04x", branchTarget(pc, operand[0]))
	default:
		return ""
	}
}

// operandWord combines two little endian operand bytes.
func operandWord(operand []byte) uint16 {
	return uint16(operand[0]) | uint16(operand[1])<<8
}

// branchTarget calculates the destination of a relative branch at pc.
func branchTarget(pc uint16, offset byte) uint16 {
	return pc + 2 + uint16(int16(int8(offset)))
}

package m6502

import (
	"fmt"

	"github.com/retroenv/pcodedis/internal/pcode"
	"github.com/retroenv/pcodedis/internal/space"
	"github.com/retroenv/pcodedis/internal/translate"
	"github.com/retroenv/retrogolib/arch/cpu/cpu6502"
)

// OneInstruction translates the instruction at the address into pcode,
// invoking the emit sink once per operation in program order. It returns
// the number of bytes consumed. Unofficial instructions and the jam
// opcodes are valid but have no pcode translation and are reported as
// unimplemented.
func (b *Backend) OneInstruction(emit translate.PcodeEmit, addr space.Address) (int, error) {
	decoded, err := b.fetch(addr)
	if err != nil {
		return 0, err
	}
	if decoded.opcode.Instruction.Unofficial || decoded.opcode.Instruction.Name == cpu6502.KilName {
		return 0, &translate.UnimplementedError{Address: addr, Length: decoded.length}
	}

	g := &opEmitter{
		b:    b,
		emit: emit,
		addr: addr,
	}
	g.translateInstruction(decoded)
	if g.err != nil {
		return 0, fmt.Errorf("translating instruction at %s: %w", addr, g.err)
	}
	return decoded.length, nil
}

// opEmitter builds the pcode operation sequence of one instruction. The
// first emit error is kept and turns all later emits into no-ops.
type opEmitter struct {
	b    *Backend
	emit translate.PcodeEmit
	addr space.Address

	nextTemp uint64
	err      error
}

func (g *opEmitter) dump(opc pcode.OpCode, output *space.Varnode, inputs ...space.Varnode) {
	if g.err != nil {
		return
	}
	g.err = g.emit.Dump(g.addr, opc, output, inputs)
}

// temp allocates a fresh temporary location in the unique space. The
// allocation restarts for every instruction and stays below the reserved
// boundary of the unique space.
func (g *opEmitter) temp(size uint32) space.Varnode {
	v := space.Varnode{Space: g.b.unique, Offset: g.nextTemp, Size: size}
	g.nextTemp += uint64(size)
	return v
}

func (g *opEmitter) constant(value uint64, size uint32) space.Varnode {
	return space.Varnode{Space: g.b.Spaces().GetConstantSpace(), Offset: value, Size: size}
}

// ramPointer is the space identifier input of load and store operations,
// referencing the RAM space.
func (g *opEmitter) ramPointer() space.Varnode {
	addr := g.b.Spaces().CreateConstFromSpace(g.b.ram)
	return space.Varnode{Space: addr.Space, Offset: addr.Offset, Size: 4}
}

// ramLoc returns a direct varnode into RAM.
func (g *opEmitter) ramLoc(address uint16, size uint32) space.Varnode {
	return space.Varnode{Space: g.b.ram, Offset: uint64(address), Size: size}
}

// operand describes how an instruction accesses its operand: either as a
// direct location (register, RAM cell or constant) or through a 16-bit
// pointer value computed into the unique space.
type operand struct {
	direct  *space.Varnode
	pointer *space.Varnode
}

func directOperand(v space.Varnode) operand { return operand{direct: &v} }

// resolveOperand emits the effective address computation for the
// addressing mode of the instruction and returns the resulting operand
// access.
func (g *opEmitter) resolveOperand(decoded decodedInstruction) operand {
	raw := decoded.operand

	switch decoded.opcode.Addressing {
	case cpu6502.ImmediateAddressing:
		return directOperand(g.constant(uint64(raw[0]), 1))

	case cpu6502.AccumulatorAddressing:
		return directOperand(g.b.reg(regA, 1))

	case cpu6502.ZeroPageAddressing:
		return directOperand(g.ramLoc(uint16(raw[0]), 1))

	case cpu6502.ZeroPageXAddressing:
		return g.zeroPageIndexed(raw[0], g.b.reg(regX, 1))

	case cpu6502.ZeroPageYAddressing:
		return g.zeroPageIndexed(raw[0], g.b.reg(regY, 1))

	case cpu6502.AbsoluteAddressing:
		return directOperand(g.ramLoc(operandWord(raw), 1))

	case cpu6502.AbsoluteXAddressing:
		return g.absoluteIndexed(operandWord(raw), g.b.reg(regX, 1))

	case cpu6502.AbsoluteYAddressing:
		return g.absoluteIndexed(operandWord(raw), g.b.reg(regY, 1))

	case cpu6502.IndirectXAddressing:
		// pointer fetched from the X indexed zero page location
		sum := g.temp(1)
		g.dump(pcode.IntAdd, &sum, g.constant(uint64(raw[0]), 1), g.b.reg(regX, 1))
		wide := g.temp(2)
		g.dump(pcode.IntZExt, &wide, sum)
		ptr := g.temp(2)
		g.dump(pcode.Load, &ptr, g.ramPointer(), wide)
		return operand{pointer: &ptr}

	case cpu6502.IndirectYAddressing:
		// pointer fetched from the zero page location, then Y indexed
		base := g.temp(2)
		g.dump(pcode.Load, &base, g.ramPointer(), g.constant(uint64(raw[0]), 2))
		wide := g.temp(2)
		g.dump(pcode.IntZExt, &wide, g.b.reg(regY, 1))
		ptr := g.temp(2)
		g.dump(pcode.IntAdd, &ptr, base, wide)
		return operand{pointer: &ptr}

	default:
		g.err = fmt.Errorf("no operand for addressing mode %d", decoded.opcode.Addressing)
		return operand{}
	}
}

func (g *opEmitter) zeroPageIndexed(zp byte, index space.Varnode) operand {
	// the sum wraps inside the zero page
	sum := g.temp(1)
	g.dump(pcode.IntAdd, &sum, g.constant(uint64(zp), 1), index)
	ptr := g.temp(2)
	g.dump(pcode.IntZExt, &ptr, sum)
	return operand{pointer: &ptr}
}

func (g *opEmitter) absoluteIndexed(base uint16, index space.Varnode) operand {
	wide := g.temp(2)
	g.dump(pcode.IntZExt, &wide, index)
	ptr := g.temp(2)
	g.dump(pcode.IntAdd, &ptr, g.constant(uint64(base), 2), wide)
	return operand{pointer: &ptr}
}

// readOperand returns a varnode holding the operand value, loading it
// through the computed pointer if needed.
func (g *opEmitter) readOperand(op operand) space.Varnode {
	if op.direct != nil {
		return *op.direct
	}
	value := g.temp(1)
	g.dump(pcode.Load, &value, g.ramPointer(), *op.pointer)
	return value
}

// writeOperand stores a value into the operand location.
func (g *opEmitter) writeOperand(op operand, value space.Varnode) {
	if op.direct != nil {
		g.dump(pcode.Copy, op.direct, value)
		return
	}
	g.dump(pcode.Store, nil, g.ramPointer(), *op.pointer, value)
}

// setNZ updates the negative and zero flags from a result value.
func (g *opEmitter) setNZ(value space.Varnode) {
	zero := g.b.reg(flagZ, 1)
	g.dump(pcode.IntEqual, &zero, value, g.constant(0, value.Size))
	negative := g.b.reg(flagN, 1)
	g.dump(pcode.IntSLess, &negative, value, g.constant(0, value.Size))
}

// translateInstruction dispatches on the identified instruction and
// emits its operation sequence.
func (g *opEmitter) translateInstruction(decoded decodedInstruction) {
	name := decoded.opcode.Instruction.Name

	switch name {
	case cpu6502.LdaName:
		g.load(decoded, g.b.reg(regA, 1))
	case cpu6502.LdxName:
		g.load(decoded, g.b.reg(regX, 1))
	case cpu6502.LdyName:
		g.load(decoded, g.b.reg(regY, 1))

	case cpu6502.StaName:
		g.store(decoded, g.b.reg(regA, 1))
	case cpu6502.StxName:
		g.store(decoded, g.b.reg(regX, 1))
	case cpu6502.StyName:
		g.store(decoded, g.b.reg(regY, 1))

	case cpu6502.TaxName:
		g.transfer(g.b.reg(regA, 1), g.b.reg(regX, 1), true)
	case cpu6502.TayName:
		g.transfer(g.b.reg(regA, 1), g.b.reg(regY, 1), true)
	case cpu6502.TxaName:
		g.transfer(g.b.reg(regX, 1), g.b.reg(regA, 1), true)
	case cpu6502.TyaName:
		g.transfer(g.b.reg(regY, 1), g.b.reg(regA, 1), true)
	case cpu6502.TsxName:
		g.transfer(g.b.reg(regSP, 1), g.b.reg(regX, 1), true)
	case cpu6502.TxsName:
		g.transfer(g.b.reg(regX, 1), g.b.reg(regSP, 1), false)

	case cpu6502.AndName:
		g.logic(decoded, pcode.IntAnd)
	case cpu6502.OraName:
		g.logic(decoded, pcode.IntOr)
	case cpu6502.EorName:
		g.logic(decoded, pcode.IntXor)

	case cpu6502.AdcName:
		g.addWithCarry(decoded)
	case cpu6502.SbcName:
		g.subtractWithBorrow(decoded)

	case cpu6502.CmpName:
		g.compare(decoded, g.b.reg(regA, 1))
	case cpu6502.CpxName:
		g.compare(decoded, g.b.reg(regX, 1))
	case cpu6502.CpyName:
		g.compare(decoded, g.b.reg(regY, 1))

	case cpu6502.IncName:
		g.stepOperand(decoded, pcode.IntAdd)
	case cpu6502.DecName:
		g.stepOperand(decoded, pcode.IntSub)
	case cpu6502.InxName:
		g.stepRegister(g.b.reg(regX, 1), pcode.IntAdd)
	case cpu6502.InyName:
		g.stepRegister(g.b.reg(regY, 1), pcode.IntAdd)
	case cpu6502.DexName:
		g.stepRegister(g.b.reg(regX, 1), pcode.IntSub)
	case cpu6502.DeyName:
		g.stepRegister(g.b.reg(regY, 1), pcode.IntSub)

	case cpu6502.AslName:
		g.shiftLeft(decoded, false)
	case cpu6502.RolName:
		g.shiftLeft(decoded, true)
	case cpu6502.LsrName:
		g.shiftRight(decoded, false)
	case cpu6502.RorName:
		g.shiftRight(decoded, true)

	case cpu6502.BitName:
		g.bitTest(decoded)

	case cpu6502.BeqName:
		g.branch(decoded, flagZ, true)
	case cpu6502.BneName:
		g.branch(decoded, flagZ, false)
	case cpu6502.BcsName:
		g.branch(decoded, flagC, true)
	case cpu6502.BccName:
		g.branch(decoded, flagC, false)
	case cpu6502.BmiName:
		g.branch(decoded, flagN, true)
	case cpu6502.BplName:
		g.branch(decoded, flagN, false)
	case cpu6502.BvsName:
		g.branch(decoded, flagV, true)
	case cpu6502.BvcName:
		g.branch(decoded, flagV, false)

	case cpu6502.JmpName:
		g.jump(decoded)
	case cpu6502.JsrName:
		g.callSubroutine(decoded)
	case cpu6502.RtsName:
		g.returnFromSubroutine()
	case cpu6502.RtiName:
		g.returnFromInterrupt()

	case cpu6502.PhaName:
		g.push(g.b.reg(regA, 1))
	case cpu6502.PhpName:
		g.push(g.b.reg(regP, 1))
	case cpu6502.PlaName:
		g.pull(g.b.reg(regA, 1), true)
	case cpu6502.PlpName:
		g.pull(g.b.reg(regP, 1), false)

	case cpu6502.SecName:
		g.setFlag(flagC, 1)
	case cpu6502.ClcName:
		g.setFlag(flagC, 0)
	case cpu6502.SeiName:
		g.setFlag(flagI, 1)
	case cpu6502.CliName:
		g.setFlag(flagI, 0)
	case cpu6502.SedName:
		g.setFlag(flagD, 1)
	case cpu6502.CldName:
		g.setFlag(flagD, 0)
	case cpu6502.ClvName:
		g.setFlag(flagV, 0)

	case cpu6502.BrkName:
		// software interrupt, modeled as user operation 0
		g.dump(pcode.CallOther, nil, g.constant(0, 4))

	case cpu6502.NopName:
		// no operations

	default:
		g.err = fmt.Errorf("no translation for instruction %s", name)
	}
}

func (g *opEmitter) load(decoded decodedInstruction, register space.Varnode) {
	value := g.readOperand(g.resolveOperand(decoded))
	g.dump(pcode.Copy, &register, value)
	g.setNZ(register)
}

func (g *opEmitter) store(decoded decodedInstruction, register space.Varnode) {
	g.writeOperand(g.resolveOperand(decoded), register)
}

func (g *opEmitter) transfer(src, dst space.Varnode, flags bool) {
	g.dump(pcode.Copy, &dst, src)
	if flags {
		g.setNZ(dst)
	}
}

func (g *opEmitter) logic(decoded decodedInstruction, opc pcode.OpCode) {
	value := g.readOperand(g.resolveOperand(decoded))
	a := g.b.reg(regA, 1)
	g.dump(opc, &a, a, value)
	g.setNZ(a)
}

func (g *opEmitter) addWithCarry(decoded decodedInstruction) {
	value := g.readOperand(g.resolveOperand(decoded))
	a := g.b.reg(regA, 1)
	carry := g.b.reg(flagC, 1)

	sum1 := g.temp(1)
	g.dump(pcode.IntAdd, &sum1, a, value)
	carry1 := g.temp(1)
	g.dump(pcode.IntCarry, &carry1, a, value)
	overflow1 := g.temp(1)
	g.dump(pcode.IntSCarry, &overflow1, a, value)

	sum2 := g.temp(1)
	g.dump(pcode.IntAdd, &sum2, sum1, carry)
	carry2 := g.temp(1)
	g.dump(pcode.IntCarry, &carry2, sum1, carry)
	overflow2 := g.temp(1)
	g.dump(pcode.IntSCarry, &overflow2, sum1, carry)

	g.dump(pcode.BoolOr, &carry, carry1, carry2)
	overflow := g.b.reg(flagV, 1)
	g.dump(pcode.BoolOr, &overflow, overflow1, overflow2)
	g.dump(pcode.Copy, &a, sum2)
	g.setNZ(a)
}

func (g *opEmitter) subtractWithBorrow(decoded decodedInstruction) {
	value := g.readOperand(g.resolveOperand(decoded))
	a := g.b.reg(regA, 1)
	carry := g.b.reg(flagC, 1)

	borrowIn := g.temp(1)
	g.dump(pcode.BoolNegate, &borrowIn, carry)

	diff1 := g.temp(1)
	g.dump(pcode.IntSub, &diff1, a, value)
	borrow1 := g.temp(1)
	g.dump(pcode.IntLess, &borrow1, a, value)
	overflow1 := g.temp(1)
	g.dump(pcode.IntSBorrow, &overflow1, a, value)

	diff2 := g.temp(1)
	g.dump(pcode.IntSub, &diff2, diff1, borrowIn)
	borrow2 := g.temp(1)
	g.dump(pcode.IntLess, &borrow2, diff1, borrowIn)
	overflow2 := g.temp(1)
	g.dump(pcode.IntSBorrow, &overflow2, diff1, borrowIn)

	borrow := g.temp(1)
	g.dump(pcode.BoolOr, &borrow, borrow1, borrow2)
	g.dump(pcode.BoolNegate, &carry, borrow)
	overflow := g.b.reg(flagV, 1)
	g.dump(pcode.BoolOr, &overflow, overflow1, overflow2)
	g.dump(pcode.Copy, &a, diff2)
	g.setNZ(a)
}

func (g *opEmitter) compare(decoded decodedInstruction, register space.Varnode) {
	value := g.readOperand(g.resolveOperand(decoded))

	carry := g.b.reg(flagC, 1)
	g.dump(pcode.IntLessEqual, &carry, value, register)
	zero := g.b.reg(flagZ, 1)
	g.dump(pcode.IntEqual, &zero, register, value)
	diff := g.temp(1)
	g.dump(pcode.IntSub, &diff, register, value)
	negative := g.b.reg(flagN, 1)
	g.dump(pcode.IntSLess, &negative, diff, g.constant(0, 1))
}

func (g *opEmitter) stepOperand(decoded decodedInstruction, opc pcode.OpCode) {
	op := g.resolveOperand(decoded)
	value := g.readOperand(op)
	result := g.temp(1)
	g.dump(opc, &result, value, g.constant(1, 1))
	g.writeOperand(op, result)
	g.setNZ(result)
}

func (g *opEmitter) stepRegister(register space.Varnode, opc pcode.OpCode) {
	g.dump(opc, &register, register, g.constant(1, 1))
	g.setNZ(register)
}

func (g *opEmitter) shiftLeft(decoded decodedInstruction, rotate bool) {
	op := g.resolveOperand(decoded)
	value := g.readOperand(op)
	carry := g.b.reg(flagC, 1)

	// the old sign bit becomes the new carry
	carryOut := g.temp(1)
	g.dump(pcode.IntSLess, &carryOut, value, g.constant(0, 1))

	result := g.temp(1)
	g.dump(pcode.IntLeft, &result, value, g.constant(1, 1))
	if rotate {
		rotated := g.temp(1)
		g.dump(pcode.IntOr, &rotated, result, carry)
		result = rotated
	}
	g.dump(pcode.Copy, &carry, carryOut)
	g.writeOperand(op, result)
	g.setNZ(result)
}

func (g *opEmitter) shiftRight(decoded decodedInstruction, rotate bool) {
	op := g.resolveOperand(decoded)
	value := g.readOperand(op)
	carry := g.b.reg(flagC, 1)

	carryOut := g.temp(1)
	g.dump(pcode.IntAnd, &carryOut, value, g.constant(1, 1))

	result := g.temp(1)
	g.dump(pcode.IntRight, &result, value, g.constant(1, 1))
	if rotate {
		high := g.temp(1)
		g.dump(pcode.IntLeft, &high, carry, g.constant(7, 1))
		rotated := g.temp(1)
		g.dump(pcode.IntOr, &rotated, result, high)
		result = rotated
	}
	g.dump(pcode.Copy, &carry, carryOut)
	g.writeOperand(op, result)
	g.setNZ(result)
}

func (g *opEmitter) bitTest(decoded decodedInstruction) {
	value := g.readOperand(g.resolveOperand(decoded))
	a := g.b.reg(regA, 1)

	masked := g.temp(1)
	g.dump(pcode.IntAnd, &masked, a, value)
	zero := g.b.reg(flagZ, 1)
	g.dump(pcode.IntEqual, &zero, masked, g.constant(0, 1))
	negative := g.b.reg(flagN, 1)
	g.dump(pcode.IntSLess, &negative, value, g.constant(0, 1))
	bit6 := g.temp(1)
	g.dump(pcode.IntAnd, &bit6, value, g.constant(0x40, 1))
	overflow := g.b.reg(flagV, 1)
	g.dump(pcode.IntNotEqual, &overflow, bit6, g.constant(0, 1))
}

func (g *opEmitter) branch(decoded decodedInstruction, flagOffset uint64, taken bool) {
	target := branchTarget(uint16(g.addr.Offset), decoded.operand[0])
	condition := g.b.reg(flagOffset, 1)
	if !taken {
		negated := g.temp(1)
		g.dump(pcode.BoolNegate, &negated, condition)
		condition = negated
	}
	g.dump(pcode.CBranch, nil, g.ramLoc(target, 2), condition)
}

func (g *opEmitter) jump(decoded decodedInstruction) {
	target := operandWord(decoded.operand)
	if decoded.opcode.Addressing == cpu6502.IndirectAddressing {
		ptr := g.temp(2)
		g.dump(pcode.Load, &ptr, g.ramPointer(), g.constant(uint64(target), 2))
		g.dump(pcode.BranchInd, nil, ptr)
		return
	}
	g.dump(pcode.Branch, nil, g.ramLoc(target, 2))
}

func (g *opEmitter) callSubroutine(decoded decodedInstruction) {
	target := operandWord(decoded.operand)
	// the pushed return address is the last byte of the jsr instruction
	returnAddr := uint16(g.addr.Offset) + 2
	sp := g.b.reg(regSP, 2)

	slot := g.temp(2)
	g.dump(pcode.IntSub, &slot, sp, g.constant(1, 2))
	g.dump(pcode.Store, nil, g.ramPointer(), slot, g.constant(uint64(returnAddr), 2))
	g.dump(pcode.IntSub, &sp, sp, g.constant(2, 2))
	g.dump(pcode.Call, nil, g.ramLoc(target, 2))
}

func (g *opEmitter) returnFromSubroutine() {
	sp := g.b.reg(regSP, 2)

	slot := g.temp(2)
	g.dump(pcode.IntAdd, &slot, sp, g.constant(1, 2))
	stored := g.temp(2)
	g.dump(pcode.Load, &stored, g.ramPointer(), slot)
	g.dump(pcode.IntAdd, &sp, sp, g.constant(2, 2))
	target := g.temp(2)
	g.dump(pcode.IntAdd, &target, stored, g.constant(1, 2))
	g.dump(pcode.Return, nil, target)
}

func (g *opEmitter) returnFromInterrupt() {
	sp := g.b.reg(regSP, 2)
	status := g.b.reg(regP, 1)

	statusSlot := g.temp(2)
	g.dump(pcode.IntAdd, &statusSlot, sp, g.constant(1, 2))
	pulled := g.temp(1)
	g.dump(pcode.Load, &pulled, g.ramPointer(), statusSlot)
	g.dump(pcode.Copy, &status, pulled)

	returnSlot := g.temp(2)
	g.dump(pcode.IntAdd, &returnSlot, sp, g.constant(2, 2))
	target := g.temp(2)
	g.dump(pcode.Load, &target, g.ramPointer(), returnSlot)
	g.dump(pcode.IntAdd, &sp, sp, g.constant(3, 2))
	g.dump(pcode.Return, nil, target)
}

func (g *opEmitter) push(register space.Varnode) {
	sp := g.b.reg(regSP, 2)
	g.dump(pcode.Store, nil, g.ramPointer(), sp, register)
	g.dump(pcode.IntSub, &sp, sp, g.constant(1, 2))
}

func (g *opEmitter) pull(register space.Varnode, flags bool) {
	sp := g.b.reg(regSP, 2)
	g.dump(pcode.IntAdd, &sp, sp, g.constant(1, 2))
	value := g.temp(1)
	g.dump(pcode.Load, &value, g.ramPointer(), sp)
	g.dump(pcode.Copy, &register, value)
	if flags {
		g.setNZ(register)
	}
}

func (g *opEmitter) setFlag(flagOffset uint64, value uint64) {
	flag := g.b.reg(flagOffset, 1)
	g.dump(pcode.Copy, &flag, g.constant(value, 1))
}

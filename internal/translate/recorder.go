package translate

import (
	"github.com/retroenv/pcodedis/internal/pcode"
	"github.com/retroenv/pcodedis/internal/space"
)

// Recorder is a PcodeEmit sink that builds the structured tree form of a
// decode session: one pcode.Instruction per decoded machine instruction.
// It is the in-process equivalent of the packed byte stream.
type Recorder struct {
	instructions []pcode.Instruction
	current      *pcode.Instruction
}

var _ PcodeEmit = (*Recorder)(nil)

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// BeginInstruction opens the operation group of one machine instruction.
func (r *Recorder) BeginInstruction(addr space.Address, length int) {
	r.instructions = append(r.instructions, pcode.Instruction{
		Address: addr,
		Length:  length,
	})
	r.current = &r.instructions[len(r.instructions)-1]
}

// Dump implements PcodeEmit, appending one operation to the open group.
// Operations emitted outside a group open an implicit one.
func (r *Recorder) Dump(addr space.Address, opc pcode.OpCode, output *space.Varnode, inputs []space.Varnode) error {
	if r.current == nil {
		r.BeginInstruction(addr, 0)
	}

	op := pcode.Op{
		Opcode: opc,
		Inputs: append([]space.Varnode(nil), inputs...),
	}
	if output != nil {
		out := *output
		op.Output = &out
	}
	r.current.Ops = append(r.current.Ops, op)
	return nil
}

// EndInstruction closes the open operation group.
func (r *Recorder) EndInstruction() {
	r.current = nil
}

// Unimplemented records the unimplemented condition for an instruction
// of the given length.
func (r *Recorder) Unimplemented(addr space.Address, length int) {
	r.instructions = append(r.instructions, pcode.Instruction{
		Address:       addr,
		Length:        length,
		Unimplemented: true,
	})
	r.current = nil
}

// Instructions returns the recorded instruction groups in decode order.
func (r *Recorder) Instructions() []pcode.Instruction {
	return r.instructions
}

// Reset clears the recorder for reuse.
func (r *Recorder) Reset() {
	r.instructions = nil
	r.current = nil
}

// Replay feeds a recorded instruction back into a PcodeEmit sink, one
// Dump call per operation in the recorded order.
func Replay(ins pcode.Instruction, emit PcodeEmit) error {
	for _, op := range ins.Ops {
		if err := emit.Dump(ins.Address, op.Opcode, op.Output, op.Inputs); err != nil {
			return err
		}
	}
	return nil
}

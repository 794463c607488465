package translate

import (
	"testing"

	"github.com/retroenv/pcodedis/internal/pcode"
	"github.com/retroenv/pcodedis/internal/space"
	"github.com/retroenv/retrogolib/assert"
)

func TestRecorderGroupsOperations(t *testing.T) {
	m := testManager(t)
	ram := m.GetDefaultSpace()
	unique := m.GetUniqueSpace()

	addr := space.Address{Space: ram, Offset: 0x8000}
	output := space.Varnode{Space: unique, Offset: 0, Size: 1}
	input := space.Varnode{Space: m.GetConstantSpace(), Offset: 1, Size: 1}

	rec := NewRecorder()
	rec.BeginInstruction(addr, 2)
	assert.NoError(t, rec.Dump(addr, pcode.Copy, &output, []space.Varnode{input}))
	assert.NoError(t, rec.Dump(addr, pcode.Return, nil, []space.Varnode{output}))
	rec.EndInstruction()
	rec.Unimplemented(space.Address{Space: ram, Offset: 0x8002}, 1)

	instructions := rec.Instructions()
	assert.Len(t, instructions, 2)

	first := instructions[0]
	assert.Equal(t, addr, first.Address)
	assert.Equal(t, 2, first.Length)
	assert.Len(t, first.Ops, 2)
	assert.Equal(t, pcode.Copy, first.Ops[0].Opcode)
	assert.Equal(t, output, *first.Ops[0].Output)
	assert.Nil(t, first.Ops[1].Output)

	assert.True(t, instructions[1].Unimplemented)
	assert.Equal(t, 1, instructions[1].Length)

	rec.Reset()
	assert.Len(t, rec.Instructions(), 0)
}

func TestRecorderImplicitGroup(t *testing.T) {
	m := testManager(t)
	ram := m.GetDefaultSpace()
	addr := space.Address{Space: ram, Offset: 0x9000}

	rec := NewRecorder()
	assert.NoError(t, rec.Dump(addr, pcode.Branch, nil,
		[]space.Varnode{{Space: ram, Offset: 0x9100, Size: 4}}))

	instructions := rec.Instructions()
	assert.Len(t, instructions, 1)
	assert.Equal(t, addr, instructions[0].Address)
}

func TestRecorderInputsAreCopied(t *testing.T) {
	m := testManager(t)
	ram := m.GetDefaultSpace()
	addr := space.Address{Space: ram, Offset: 0}

	inputs := []space.Varnode{{Space: ram, Offset: 1, Size: 1}}
	rec := NewRecorder()
	assert.NoError(t, rec.Dump(addr, pcode.Copy, nil, inputs))

	// callers may reuse their input slice between operations
	inputs[0].Offset = 99
	assert.Equal(t, uint64(1), rec.Instructions()[0].Ops[0].Inputs[0].Offset)
}

func TestReplay(t *testing.T) {
	m := testManager(t)
	ram := m.GetDefaultSpace()
	addr := space.Address{Space: ram, Offset: 0x8000}
	output := space.Varnode{Space: ram, Offset: 0x10, Size: 1}

	rec := NewRecorder()
	rec.BeginInstruction(addr, 2)
	assert.NoError(t, rec.Dump(addr, pcode.Copy, &output,
		[]space.Varnode{{Space: m.GetConstantSpace(), Offset: 7, Size: 1}}))
	rec.EndInstruction()

	replayed := NewRecorder()
	replayed.BeginInstruction(addr, 2)
	assert.NoError(t, Replay(rec.Instructions()[0], replayed))
	replayed.EndInstruction()

	assert.Equal(t, rec.Instructions(), replayed.Instructions())
}

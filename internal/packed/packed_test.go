package packed

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/retroenv/pcodedis/internal/pcode"
	"github.com/retroenv/pcodedis/internal/space"
	"github.com/retroenv/retrogolib/assert"
)

func buildTestManager(t *testing.T) *space.Manager {
	t.Helper()

	m, err := space.Build([]space.Descriptor{
		{Name: "const", Kind: space.KindConstant, AddrSize: 8},
		{Name: "ram", Kind: space.KindProcessor, AddrSize: 2, Default: true},
		{Name: "register", Kind: space.KindProcessor, AddrSize: 4},
		{Name: "unique", Kind: space.KindInternal, AddrSize: 4},
	}, nil)
	assert.NoError(t, err)
	return m
}

func TestRoundTripInstructions(t *testing.T) {
	m := buildTestManager(t)
	ram := m.GetSpaceByName("ram")
	register := m.GetSpaceByName("register")
	unique := m.GetSpaceByName("unique")
	constant := m.GetConstantSpace()

	a := space.Varnode{Space: register, Offset: 0, Size: 1}
	ramPtr := space.Varnode{Space: constant, Offset: uint64(ram.Index()), Size: 4}

	instructions := []pcode.Instruction{
		{
			Address: space.Address{Space: ram, Offset: 0x8000},
			Length:  2,
			Ops: []pcode.Op{
				{
					Opcode: pcode.Copy,
					Output: &a,
					Inputs: []space.Varnode{{Space: constant, Offset: 0x42, Size: 1}},
				},
			},
		},
		{
			Address: space.Address{Space: ram, Offset: 0x8002},
			Length:  3,
			Ops: []pcode.Op{
				{
					Opcode: pcode.Load,
					Output: &space.Varnode{Space: unique, Offset: 0, Size: 1},
					Inputs: []space.Varnode{
						ramPtr,
						{Space: unique, Offset: 0x10, Size: 2},
					},
				},
				{
					// store has no output slot
					Opcode: pcode.Store,
					Inputs: []space.Varnode{
						ramPtr,
						{Space: unique, Offset: 0x10, Size: 2},
						a,
					},
				},
			},
		},
	}

	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	for _, ins := range instructions {
		assert.NoError(t, enc.EncodeInstruction(ins))
	}
	assert.NoError(t, enc.Flush())

	decoded, err := NewDecoder(&buf, m).DecodeAll()
	assert.NoError(t, err)
	assert.Equal(t, instructions, decoded)
}

func TestRoundTripUnimplemented(t *testing.T) {
	m := buildTestManager(t)

	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	assert.NoError(t, enc.Unimplemented(2))
	assert.NoError(t, enc.Flush())

	ins, err := NewDecoder(&buf, m).Next()
	assert.NoError(t, err)
	assert.True(t, ins.Unimplemented)
	assert.Equal(t, 2, ins.Length)
	assert.Len(t, ins.Ops, 0)
}

func TestEncoderAsEmitSink(t *testing.T) {
	m := buildTestManager(t)
	ram := m.GetSpaceByName("ram")
	register := m.GetSpaceByName("register")

	addr := space.Address{Space: ram, Offset: 0x8000}
	output := space.Varnode{Space: register, Offset: 1, Size: 1}

	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	assert.NoError(t, enc.BeginInstruction(addr, 1))
	assert.NoError(t, enc.Dump(addr, pcode.IntAdd, &output,
		[]space.Varnode{output, {Space: m.GetConstantSpace(), Offset: 1, Size: 1}}))
	assert.NoError(t, enc.EndInstruction())
	assert.NoError(t, enc.Flush())

	decoded, err := NewDecoder(&buf, m).DecodeAll()
	assert.NoError(t, err)
	assert.Len(t, decoded, 1)
	assert.Equal(t, addr, decoded[0].Address)
	assert.Len(t, decoded[0].Ops, 1)
	assert.Equal(t, pcode.IntAdd, decoded[0].Ops[0].Opcode)
}

func TestEncoderFraming(t *testing.T) {
	m := buildTestManager(t)
	ram := m.GetSpaceByName("ram")
	addr := space.Address{Space: ram, Offset: 0}

	enc := NewEncoder(&bytes.Buffer{})

	// operations need an open instruction group
	err := enc.Dump(addr, pcode.Copy, nil, nil)
	assert.True(t, errors.Is(err, ErrMalformed))
	err = enc.EndInstruction()
	assert.True(t, errors.Is(err, ErrMalformed))

	assert.NoError(t, enc.BeginInstruction(addr, 1))
	err = enc.BeginInstruction(addr, 1)
	assert.True(t, errors.Is(err, ErrMalformed))
	err = enc.Unimplemented(1)
	assert.True(t, errors.Is(err, ErrMalformed))

	err = enc.Dump(addr, pcode.Copy, &space.Varnode{}, nil)
	assert.True(t, errors.Is(err, ErrMalformed))

	err = NewEncoder(&bytes.Buffer{}).BeginInstruction(space.Address{}, 1)
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestDecoderMalformed(t *testing.T) {
	m := buildTestManager(t)

	// empty stream ends cleanly
	_, err := NewDecoder(bytes.NewReader(nil), m).Next()
	assert.True(t, errors.Is(err, io.EOF))

	// unknown tag at instruction level
	_, err = NewDecoder(bytes.NewReader([]byte{0x42}), m).Next()
	assert.True(t, errors.Is(err, ErrMalformed))

	// truncated instruction group
	_, err = NewDecoder(bytes.NewReader([]byte{tagInst, 1, 1, 0}), m).Next()
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))

	// unknown opcode inside an op group
	_, err = NewDecoder(bytes.NewReader([]byte{tagInst, 1, 1, 0, tagOp, 0xff, 0x01}), m).Next()
	assert.True(t, errors.Is(err, ErrMalformed))

	// space index out of range
	_, err = NewDecoder(bytes.NewReader([]byte{tagInst, 1, 9, 0}), m).Next()
	assert.True(t, errors.Is(err, space.ErrUnknownSpace))
}

func TestDecoderSizeOutOfRange(t *testing.T) {
	m := buildTestManager(t)

	// a zero size value slot never describes a storage location
	stream := []byte{tagInst, 1, 1, 0, tagOp, 1, tagAddrSz, 1, 0, 0, tagEnd, tagEnd}
	_, err := NewDecoder(bytes.NewReader(stream), m).Next()
	assert.True(t, errors.Is(err, ErrMalformed))

	// size varint above 32 bits must not be truncated into a small size
	stream = []byte{tagInst, 1, 1, 0, tagOp, 1, tagAddrSz, 1, 0, 0x81, 0x80, 0x80, 0x80, 0x10, tagEnd, tagEnd}
	_, err = NewDecoder(bytes.NewReader(stream), m).Next()
	assert.True(t, errors.Is(err, ErrMalformed))

	// same checks on the spaceid form
	stream = []byte{tagInst, 1, 1, 0, tagOp, 1, tagVoid, tagSpaceID, 1, 0, tagEnd, tagEnd}
	_, err = NewDecoder(bytes.NewReader(stream), m).Next()
	assert.True(t, errors.Is(err, ErrMalformed))
}

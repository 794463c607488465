package packed

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/retroenv/pcodedis/internal/pcode"
	"github.com/retroenv/pcodedis/internal/space"
)

// Decoder reconstructs instruction groups from a packed byte stream.
// Space indices in the stream are resolved through the manager that
// produced the stream, indices are not portable across architectures or
// manager instances.
type Decoder struct {
	r      *bufio.Reader
	spaces *space.Manager
}

// NewDecoder creates a decoder reading from r, resolving space indices
// through the given manager.
func NewDecoder(r io.Reader, spaces *space.Manager) *Decoder {
	return &Decoder{
		r:      bufio.NewReader(r),
		spaces: spaces,
	}
}

// Next reads the next instruction group from the stream. It returns
// io.EOF once the stream is exhausted at a group boundary.
func (d *Decoder) Next() (*pcode.Instruction, error) {
	tag, err := d.r.ReadByte()
	if errors.Is(err, io.EOF) {
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("reading tag: %w", err)
	}

	switch tag {
	case tagUnimpl:
		length, err := d.readUvarint()
		if err != nil {
			return nil, err
		}
		return &pcode.Instruction{
			Length:        int(length),
			Unimplemented: true,
		}, nil

	case tagInst:
		return d.decodeInstruction()

	default:
		return nil, fmt.Errorf("unexpected tag 0x%02x at instruction level: %w", tag, ErrMalformed)
	}
}

// DecodeAll reads all remaining instruction groups of the stream.
func (d *Decoder) DecodeAll() ([]pcode.Instruction, error) {
	var instructions []pcode.Instruction
	for {
		ins, err := d.Next()
		if errors.Is(err, io.EOF) {
			return instructions, nil
		}
		if err != nil {
			return nil, err
		}
		instructions = append(instructions, *ins)
	}
}

func (d *Decoder) decodeInstruction() (*pcode.Instruction, error) {
	length, err := d.readUvarint()
	if err != nil {
		return nil, err
	}
	addr, err := d.readAddress()
	if err != nil {
		return nil, err
	}

	ins := &pcode.Instruction{
		Address: addr,
		Length:  int(length),
	}

	for {
		tag, err := d.r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("reading group tag: %w", unexpectedEOF(err))
		}
		switch tag {
		case tagEnd:
			return ins, nil
		case tagOp:
			op, err := d.decodeOp()
			if err != nil {
				return nil, err
			}
			ins.Ops = append(ins.Ops, *op)
		default:
			return nil, fmt.Errorf("unexpected tag 0x%02x in instruction group: %w", tag, ErrMalformed)
		}
	}
}

func (d *Decoder) decodeOp() (*pcode.Op, error) {
	rawOpc, err := d.readUvarint()
	if err != nil {
		return nil, err
	}
	opc := pcode.OpCode(rawOpc)
	if !opc.IsValid() {
		return nil, fmt.Errorf("unknown opcode %d: %w", rawOpc, ErrMalformed)
	}
	op := &pcode.Op{Opcode: opc}

	// exactly one output slot, then input slots until the group closes
	tag, err := d.r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("reading output slot: %w", unexpectedEOF(err))
	}
	if tag != tagVoid {
		output, err := d.readVarnode(tag)
		if err != nil {
			return nil, err
		}
		op.Output = output
	}

	for {
		tag, err := d.r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("reading input slot: %w", unexpectedEOF(err))
		}
		if tag == tagEnd {
			return op, nil
		}
		input, err := d.readVarnode(tag)
		if err != nil {
			return nil, err
		}
		op.Inputs = append(op.Inputs, *input)
	}
}

func (d *Decoder) readVarnode(tag byte) (*space.Varnode, error) {
	switch tag {
	case tagAddrSz:
		spc, err := d.readSpace()
		if err != nil {
			return nil, err
		}
		offset, err := d.readUvarint()
		if err != nil {
			return nil, err
		}
		size, err := d.readSize()
		if err != nil {
			return nil, err
		}
		return &space.Varnode{Space: spc, Offset: offset, Size: size}, nil

	case tagSpaceID:
		// the offset encodes the stable index of the referenced space,
		// the location itself lives in the constant space
		index, err := d.readUvarint()
		if err != nil {
			return nil, err
		}
		if d.spaces.GetSpace(int(index)) == nil {
			return nil, fmt.Errorf("space index %d: %w", index, space.ErrUnknownSpace)
		}
		size, err := d.readSize()
		if err != nil {
			return nil, err
		}
		constant := d.spaces.GetConstantSpace()
		if constant == nil {
			return nil, fmt.Errorf("decoding spaceid without constant space: %w", space.ErrUnknownSpace)
		}
		return &space.Varnode{Space: constant, Offset: index, Size: size}, nil

	default:
		return nil, fmt.Errorf("unexpected tag 0x%02x in value slot: %w", tag, ErrMalformed)
	}
}

func (d *Decoder) readAddress() (space.Address, error) {
	spc, err := d.readSpace()
	if err != nil {
		return space.Address{}, err
	}
	offset, err := d.readUvarint()
	if err != nil {
		return space.Address{}, err
	}
	return space.Address{Space: spc, Offset: offset}, nil
}

func (d *Decoder) readSpace() (*space.AddrSpace, error) {
	index, err := d.readUvarint()
	if err != nil {
		return nil, err
	}
	spc := d.spaces.GetSpace(int(index))
	if spc == nil {
		return nil, fmt.Errorf("space index %d: %w", index, space.ErrUnknownSpace)
	}
	return spc, nil
}

// readSize reads a varnode size slot. A varnode always covers at least
// one byte and the size field is 32 bits wide, anything outside that
// range marks a malformed stream.
func (d *Decoder) readSize() (uint32, error) {
	size, err := d.readUvarint()
	if err != nil {
		return 0, err
	}
	if size == 0 || size > math.MaxUint32 {
		return 0, fmt.Errorf("varnode size %d out of range: %w", size, ErrMalformed)
	}
	return uint32(size), nil
}

func (d *Decoder) readUvarint() (uint64, error) {
	value, err := binary.ReadUvarint(d.r)
	if err != nil {
		return 0, fmt.Errorf("reading varint: %w", unexpectedEOF(err))
	}
	return value, nil
}

// unexpectedEOF converts a clean EOF inside a group into an unexpected
// EOF, a truncated stream is a framing error, not a normal end.
func unexpectedEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

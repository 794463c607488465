package packed

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/retroenv/pcodedis/internal/pcode"
	"github.com/retroenv/pcodedis/internal/space"
	"github.com/retroenv/pcodedis/internal/translate"
)

var _ translate.PcodeEmit = (*Encoder)(nil)

// Encoder writes a pcode emission session as a packed byte stream. It
// implements the pcode emit sink contract, so a decode engine can write
// directly into it: open an instruction group, pass the encoder as sink
// to the decode call, close the group.
type Encoder struct {
	w   *bufio.Writer
	buf []byte // scratch for varint encoding

	inInstruction bool
}

// NewEncoder creates an encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{
		w:   bufio.NewWriter(w),
		buf: make([]byte, 0, binary.MaxVarintLen64),
	}
}

// BeginInstruction opens the operation group of one machine instruction,
// carrying its byte length and address.
func (e *Encoder) BeginInstruction(addr space.Address, length int) error {
	if e.inInstruction {
		return fmt.Errorf("instruction group already open: %w", ErrMalformed)
	}
	if addr.IsInvalid() {
		return fmt.Errorf("encoding instruction at invalid address: %w", ErrMalformed)
	}
	e.inInstruction = true

	if err := e.w.WriteByte(tagInst); err != nil {
		return fmt.Errorf("writing instruction tag: %w", err)
	}
	if err := e.writeUvarint(uint64(length)); err != nil {
		return err
	}
	if err := e.writeUvarint(uint64(addr.Space.Index())); err != nil {
		return err
	}
	return e.writeUvarint(addr.Offset)
}

// Dump writes one pcode operation group. It satisfies the pcode emit
// sink contract of the translate package.
func (e *Encoder) Dump(addr space.Address, opc pcode.OpCode, output *space.Varnode, inputs []space.Varnode) error {
	if !e.inInstruction {
		return fmt.Errorf("operation outside instruction group: %w", ErrMalformed)
	}

	if err := e.w.WriteByte(tagOp); err != nil {
		return fmt.Errorf("writing op tag: %w", err)
	}
	if err := e.writeUvarint(uint64(opc)); err != nil {
		return err
	}

	if output == nil {
		if err := e.w.WriteByte(tagVoid); err != nil {
			return fmt.Errorf("writing void tag: %w", err)
		}
	} else if err := e.writeVarnode(*output, false); err != nil {
		return err
	}

	for i, input := range inputs {
		// the space pointer input of load and store encodes a space
		// identifier in its offset
		spaceID := i == 0 && (opc == pcode.Load || opc == pcode.Store)
		if err := e.writeVarnode(input, spaceID); err != nil {
			return err
		}
	}

	if err := e.w.WriteByte(tagEnd); err != nil {
		return fmt.Errorf("writing op end tag: %w", err)
	}
	return nil
}

// EndInstruction closes the open instruction group.
func (e *Encoder) EndInstruction() error {
	if !e.inInstruction {
		return fmt.Errorf("no instruction group open: %w", ErrMalformed)
	}
	e.inInstruction = false
	if err := e.w.WriteByte(tagEnd); err != nil {
		return fmt.Errorf("writing instruction end tag: %w", err)
	}
	return nil
}

// Unimplemented writes the unimplemented marker for a valid instruction
// of the given byte length that has no pcode translation.
func (e *Encoder) Unimplemented(length int) error {
	if e.inInstruction {
		return fmt.Errorf("instruction group still open: %w", ErrMalformed)
	}
	if err := e.w.WriteByte(tagUnimpl); err != nil {
		return fmt.Errorf("writing unimpl tag: %w", err)
	}
	return e.writeUvarint(uint64(length))
}

// EncodeInstruction writes a complete structured instruction record.
func (e *Encoder) EncodeInstruction(ins pcode.Instruction) error {
	if ins.Unimplemented {
		return e.Unimplemented(ins.Length)
	}
	if err := e.BeginInstruction(ins.Address, ins.Length); err != nil {
		return err
	}
	for _, op := range ins.Ops {
		if err := e.Dump(ins.Address, op.Opcode, op.Output, op.Inputs); err != nil {
			return err
		}
	}
	return e.EndInstruction()
}

// Flush writes all buffered data to the underlying writer.
func (e *Encoder) Flush() error {
	if err := e.w.Flush(); err != nil {
		return fmt.Errorf("flushing packed stream: %w", err)
	}
	return nil
}

func (e *Encoder) writeVarnode(v space.Varnode, spaceID bool) error {
	if v.Space == nil || v.Size == 0 {
		return fmt.Errorf("encoding invalid varnode %s: %w", v, ErrMalformed)
	}

	if spaceID {
		// the offset is the stable index of the referenced space
		if err := e.w.WriteByte(tagSpaceID); err != nil {
			return fmt.Errorf("writing spaceid tag: %w", err)
		}
		if err := e.writeUvarint(v.Offset); err != nil {
			return err
		}
		return e.writeUvarint(uint64(v.Size))
	}

	if err := e.w.WriteByte(tagAddrSz); err != nil {
		return fmt.Errorf("writing addrsz tag: %w", err)
	}
	if err := e.writeUvarint(uint64(v.Space.Index())); err != nil {
		return err
	}
	if err := e.writeUvarint(v.Offset); err != nil {
		return err
	}
	return e.writeUvarint(uint64(v.Size))
}

func (e *Encoder) writeUvarint(value uint64) error {
	e.buf = binary.AppendUvarint(e.buf[:0], value)
	if _, err := e.w.Write(e.buf); err != nil {
		return fmt.Errorf("writing varint: %w", err)
	}
	return nil
}

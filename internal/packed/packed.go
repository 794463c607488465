// Package packed implements the compact binary encoding of a pcode
// emission session, used to transport decoded operations across a
// process boundary without a shared object graph.
//
// The stream is tag delimited. An instruction group opens with the inst
// tag carrying the instruction byte length and address, contains zero or
// more op groups and is closed by the end tag. An op group carries the
// opcode, exactly one output slot (void or a value), zero or more input
// slots and is closed by the end tag. A valid instruction without a
// pcode translation is encoded as a single unimpl tag plus its length.
//
// All scalars, offsets and sizes are unsigned LEB128 varints: little
// endian groups of 7 bits with the high bit as continuation marker.
// Offsets are carried in the native addressing unit of their space and
// spaces are identified by their stable index, so a stream can only be
// decoded through the same address space manager that produced it.
package packed

import "errors"

// Tag byte values of the packed stream. The values are fixed for
// interoperability and must match exactly.
const (
	tagUnimpl  = 0x20 // instruction is valid but untranslated
	tagInst    = 0x21 // begin one instruction's operation group
	tagOp      = 0x22 // begin one pcode operation
	tagVoid    = 0x23 // absent output slot
	tagSpaceID = 0x24 // location whose offset encodes an address space
	tagAddrSz  = 0x25 // a (space, offset, size) location
	tagEnd     = 0x60 // close the innermost open group
)

// ErrMalformed is returned when a packed stream violates the framing or
// varint rules.
var ErrMalformed = errors.New("malformed packed pcode stream")

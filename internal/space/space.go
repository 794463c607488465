// Package space models the address universe of a single processor:
// address spaces, varnodes, join records and the manager that owns them.
package space

import "fmt"

// Kind classifies an address space.
type Kind int

const (
	// KindProcessor is an ordinary physical space like RAM or a register file.
	KindProcessor Kind = iota
	// KindConstant holds constants encoded as offsets.
	KindConstant
	// KindSpacebase is a virtual space addressed relative to a base register,
	// the canonical example being a stack.
	KindSpacebase
	// KindInternal is the unique space holding temporary registers of the
	// decode and simplification engines.
	KindInternal
	// KindIop holds internal pointers to pcode operations.
	KindIop
	// KindFspec holds internal pointers to call specifications.
	KindFspec
	// KindJoin provides synthetic addresses for values split across
	// multiple physical locations.
	KindJoin
)

// String returns the kind as a readable name.
func (k Kind) String() string {
	switch k {
	case KindProcessor:
		return "processor"
	case KindConstant:
		return "constant"
	case KindSpacebase:
		return "spacebase"
	case KindInternal:
		return "internal"
	case KindIop:
		return "iop"
	case KindFspec:
		return "fspec"
	case KindJoin:
		return "join"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// AddrSpace describes one region of the address universe. Spaces are created
// once during architecture setup and owned by the manager, they are immutable
// afterwards except for an explicit truncation that shrinks the address size.
type AddrSpace struct {
	name     string
	kind     Kind
	index    int
	wordSize uint32 // addressing unit in bytes
	addrSize uint32 // size of an offset into this space in bytes
	shortcut byte   // single character identifying the space in textual forms

	bigEndian        bool
	reverseJustified bool
	truncated        bool
	deadcodeDelay    int
	highest          uint64 // highest valid offset

	// spacebase fields, only used when kind is KindSpacebase
	contain         *AddrSpace
	hasBaseRegister bool
	negativeStack   bool
	baseLoc         Varnode // base register, possibly truncated
	baseOrig        Varnode // base register before truncation
}

// Name returns the unique name of the space.
func (s *AddrSpace) Name() string { return s.name }

// Kind returns the kind of the space.
func (s *AddrSpace) Kind() Kind { return s.kind }

// Index returns the stable index assigned at insertion time.
func (s *AddrSpace) Index() int { return s.index }

// WordSize returns the addressing unit of the space in bytes.
func (s *AddrSpace) WordSize() uint32 { return s.wordSize }

// AddrSize returns the size of an offset into this space in bytes.
func (s *AddrSpace) AddrSize() uint32 { return s.addrSize }

// Shortcut returns the single character identifying the space in
// compact textual forms.
func (s *AddrSpace) Shortcut() byte { return s.shortcut }

// IsBigEndian returns true if data in the space is encoded big endian.
func (s *AddrSpace) IsBigEndian() bool { return s.bigEndian }

// IsReverseJustified returns true if small logical values are stored at the
// opposite end of their physical container than the endianness implies.
func (s *AddrSpace) IsReverseJustified() bool { return s.reverseJustified }

// IsTruncated returns true if the address size has been shrunk from the
// size the space was created with.
func (s *AddrSpace) IsTruncated() bool { return s.truncated }

// DeadcodeDelay returns the number of analysis passes to delay dead code
// elimination for locations in this space.
func (s *AddrSpace) DeadcodeDelay() int { return s.deadcodeDelay }

// Highest returns the highest valid offset of the space.
func (s *AddrSpace) Highest() uint64 { return s.highest }

// WrapOffset reduces an offset into the valid range of the space.
func (s *AddrSpace) WrapOffset(offset uint64) uint64 {
	if s.highest == maxOffset {
		return offset
	}
	return offset % (s.highest + 1)
}

// String returns the space name.
func (s *AddrSpace) String() string { return s.name }

const maxOffset = ^uint64(0)

// highestOffset calculates the highest valid offset for an address size.
func highestOffset(addrSize uint32) uint64 {
	if addrSize >= 8 {
		return maxOffset
	}
	return (uint64(1) << (8 * addrSize)) - 1
}

// truncate shrinks the address size of the space. Growing is not allowed.
func (s *AddrSpace) truncate(newSize uint32) error {
	if newSize == 0 || newSize >= s.addrSize {
		return fmt.Errorf("space %s: truncating address size from %d to %d: %w",
			s.name, s.addrSize, newSize, ErrInvalidTruncation)
	}
	s.addrSize = newSize
	s.highest = highestOffset(newSize)
	s.truncated = true
	return nil
}

package space

import "fmt"

// NewSpacebaseSpace creates a virtual space whose addresses are offsets
// relative to the runtime value of a base register, the canonical example
// being a stack frame. The containing space is the space the base
// register points into. The base register can be attached later to
// accommodate configurations that declare the space before the register.
func NewSpacebaseSpace(name string, addrSize uint32, contain *AddrSpace, delay int) (*AddrSpace, error) {
	if contain == nil {
		return nil, fmt.Errorf("creating spacebase space '%s' without containing space: %w",
			name, ErrUnknownSpace)
	}
	return &AddrSpace{
		name:          name,
		kind:          KindSpacebase,
		wordSize:      contain.wordSize,
		addrSize:      addrSize,
		bigEndian:     contain.bigEndian,
		deadcodeDelay: delay,
		highest:       highestOffset(addrSize),
		contain:       contain,
	}, nil
}

// Contain returns the space a spacebase space is contained in, nil for
// other kinds.
func (s *AddrSpace) Contain() *AddrSpace { return s.contain }

// AttachBaseRegister completes the two-phase construction of a spacebase
// space by attaching its base register. The full register location is
// kept for register identity comparisons while a form truncated to
// truncSize bytes is derived for effective address arithmetic. A
// truncSize of zero keeps the full register.
func (s *AddrSpace) AttachBaseRegister(pointer Varnode, truncSize uint32, stackGrowsNegative bool) error {
	if s.kind != KindSpacebase {
		return fmt.Errorf("attaching base register to %s space '%s': %w",
			s.kind, s.name, ErrInvalidSpacebase)
	}
	if pointer.Space == nil || pointer.Size == 0 {
		return fmt.Errorf("attaching invalid base register to space '%s': %w",
			s.name, ErrInvalidSpacebase)
	}
	if truncSize == 0 || truncSize > pointer.Size {
		truncSize = pointer.Size
	}

	s.baseOrig = pointer
	s.baseLoc = pointer
	s.baseLoc.Size = truncSize
	if truncSize != pointer.Size && pointer.Space.IsBigEndian() {
		// keep the least significant bytes of the register
		s.baseLoc.Offset += uint64(pointer.Size - truncSize)
	}
	s.hasBaseRegister = true
	s.negativeStack = stackGrowsNegative
	return nil
}

// NumSpacebase returns the number of base registers attached to the space.
func (s *AddrSpace) NumSpacebase() int {
	if s.hasBaseRegister {
		return 1
	}
	return 0
}

// GetSpacebase returns the possibly truncated base register location used
// for effective address arithmetic.
func (s *AddrSpace) GetSpacebase(i int) (Varnode, error) {
	if s.kind != KindSpacebase || !s.hasBaseRegister || i != 0 {
		return Varnode{}, fmt.Errorf("space '%s' has no base register %d: %w",
			s.name, i, ErrInvalidSpacebase)
	}
	return s.baseLoc, nil
}

// GetSpacebaseFull returns the original base register location before any
// truncation, used for register identity comparisons.
func (s *AddrSpace) GetSpacebaseFull(i int) (Varnode, error) {
	if s.kind != KindSpacebase || !s.hasBaseRegister || i != 0 {
		return Varnode{}, fmt.Errorf("space '%s' has no base register %d: %w",
			s.name, i, ErrInvalidSpacebase)
	}
	return s.baseOrig, nil
}

// StackGrowsNegative returns true if pushing onto the modeled stack
// decrements the base register value.
func (s *AddrSpace) StackGrowsNegative() bool { return s.negativeStack }

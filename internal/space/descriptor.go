package space

import "fmt"

// Descriptor is one space definition record as supplied by an
// architecture configuration. Descriptors and truncation tags are
// consumed by Build in declaration order to produce a fully indexed
// manager.
type Descriptor struct {
	Name     string
	Kind     Kind
	AddrSize uint32
	WordSize uint32 // addressing unit in bytes, 1 if zero
	Shortcut byte   // optional shortcut hint, auto assigned if taken or zero

	BigEndian     bool
	DeadcodeDelay int

	// spacebase fields
	Contain string // name of the containing space, required for KindSpacebase

	// optional base register of a spacebase space, attached when
	// BaseRegisterSize > 0, otherwise the register is attached later
	BaseRegisterSpace  string
	BaseRegisterOffset uint64
	BaseRegisterSize   uint32 // physical register size in bytes
	BaseRegisterTrunc  uint32 // truncated size for address arithmetic, 0 keeps full
	GrowsNegative      bool

	Default bool // designate as the default space
}

// Truncation is a one-shot configuration command that shrinks the
// address size of a named space.
type Truncation struct {
	SpaceName string
	NewSize   uint32
}

// NewSpace creates an ordinary address space of the given kind. Spacebase
// spaces are created with NewSpacebaseSpace instead.
func NewSpace(name string, kind Kind, addrSize, wordSize uint32, bigEndian bool) *AddrSpace {
	if wordSize == 0 {
		wordSize = 1
	}
	return &AddrSpace{
		name:      name,
		kind:      kind,
		wordSize:  wordSize,
		addrSize:  addrSize,
		bigEndian: bigEndian,
		highest:   highestOffset(addrSize),
	}
}

// Build creates a manager from a sequence of space descriptors and
// truncation tags. Spaces are inserted in declaration order, a spacebase
// descriptor has to follow its containing space. Truncations are applied
// after all spaces exist. Any unknown reference or irreconcilable
// shortcut collision fails with a configuration error.
func Build(descriptors []Descriptor, truncations []Truncation) (*Manager, error) {
	m := NewManager()

	for _, desc := range descriptors {
		spc, err := m.buildSpace(desc)
		if err != nil {
			return nil, err
		}
		if err := m.InsertSpace(spc); err != nil {
			return nil, err
		}
		if desc.Default {
			if err := m.SetDefaultSpace(spc.Index()); err != nil {
				return nil, err
			}
		}
	}

	for _, tag := range truncations {
		if err := m.TruncateSpace(tag); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Manager) buildSpace(desc Descriptor) (*AddrSpace, error) {
	if desc.Kind != KindSpacebase {
		spc := NewSpace(desc.Name, desc.Kind, desc.AddrSize, desc.WordSize, desc.BigEndian)
		spc.shortcut = desc.Shortcut
		spc.deadcodeDelay = desc.DeadcodeDelay
		return spc, nil
	}

	contain := m.GetSpaceByName(desc.Contain)
	if contain == nil {
		return nil, fmt.Errorf("spacebase space '%s' contained in '%s': %w",
			desc.Name, desc.Contain, ErrUnknownSpace)
	}
	spc, err := NewSpacebaseSpace(desc.Name, desc.AddrSize, contain, desc.DeadcodeDelay)
	if err != nil {
		return nil, err
	}
	spc.shortcut = desc.Shortcut
	if desc.BaseRegisterSize > 0 {
		regSpace := m.GetSpaceByName(desc.BaseRegisterSpace)
		if regSpace == nil {
			return nil, fmt.Errorf("base register space '%s' of spacebase space '%s': %w",
				desc.BaseRegisterSpace, desc.Name, ErrUnknownSpace)
		}
		pointer := Varnode{
			Space:  regSpace,
			Offset: desc.BaseRegisterOffset,
			Size:   desc.BaseRegisterSize,
		}
		if err := spc.AttachBaseRegister(pointer,
			desc.BaseRegisterTrunc, desc.GrowsNegative); err != nil {
			return nil, err
		}
	}
	return spc, nil
}

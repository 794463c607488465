package space

import (
	"fmt"
	"sort"
)

// Manager owns the full collection of address spaces of one architecture.
// It indexes spaces by name, shortcut and insertion order, designates the
// distinguished spaces and tracks the join records that unify split
// storage locations.
//
// All configuration mutators are called single-threaded during
// architecture setup. Lookups are read-only afterwards and safe for
// concurrent use. FindAddJoin mutates shared state and has to be
// serialized externally if decodes run concurrently.
type Manager struct {
	baselist        []*AddrSpace
	nameToSpace     map[string]*AddrSpace
	shortcutToSpace map[byte]*AddrSpace
	resolvers       map[int]Resolver

	constantSpace *AddrSpace
	defaultSpace  *AddrSpace
	iopSpace      *AddrSpace
	fspecSpace    *AddrSpace
	joinSpace     *AddrSpace
	stackSpace    *AddrSpace
	uniqueSpace   *AddrSpace

	joinAllocate uint64
	splitList    []*JoinRecord // in allocation order, offsets are monotone
	splitOrder   []*JoinRecord // sorted by record comparison order
}

// NewManager creates an empty address space manager.
func NewManager() *Manager {
	return &Manager{
		nameToSpace:     map[string]*AddrSpace{},
		shortcutToSpace: map[byte]*AddrSpace{},
		resolvers:       map[int]Resolver{},
	}
}

// InsertSpace adds a new address space to the model. The space receives the
// next sequential index and a free shortcut character. The first space of a
// distinguished kind is designated as that kind's reference, the first
// spacebase space becomes the stack space.
func (m *Manager) InsertSpace(spc *AddrSpace) error {
	if spc.name == "" {
		return fmt.Errorf("inserting space without name: %w", ErrUnknownSpace)
	}
	if _, ok := m.nameToSpace[spc.name]; ok {
		return fmt.Errorf("inserting space '%s': %w", spc.name, ErrDuplicateSpace)
	}
	if err := m.assignShortcut(spc); err != nil {
		return err
	}

	spc.index = len(m.baselist)
	m.baselist = append(m.baselist, spc)
	m.nameToSpace[spc.name] = spc
	m.shortcutToSpace[spc.shortcut] = spc

	switch spc.kind {
	case KindConstant:
		if m.constantSpace == nil {
			m.constantSpace = spc
		}
	case KindInternal:
		if m.uniqueSpace == nil {
			m.uniqueSpace = spc
		}
	case KindIop:
		if m.iopSpace == nil {
			m.iopSpace = spc
		}
	case KindFspec:
		if m.fspecSpace == nil {
			m.fspecSpace = spc
		}
	case KindJoin:
		if m.joinSpace == nil {
			m.joinSpace = spc
		}
	case KindSpacebase:
		if m.stackSpace == nil {
			m.stackSpace = spc
		}
	case KindProcessor:
	}
	return nil
}

// assignShortcut selects a free shortcut character for a new space. A
// preset shortcut is honored if it is still free, otherwise the first
// letter of the name is tried in both cases, then the rest of the
// alphabet. Running out of characters is a configuration error.
func (m *Manager) assignShortcut(spc *AddrSpace) error {
	if spc.shortcut != 0 {
		if _, used := m.shortcutToSpace[spc.shortcut]; !used {
			return nil
		}
	}

	candidates := make([]byte, 0, 2+2*26)
	if c := spc.name[0]; c >= 'a' && c <= 'z' {
		candidates = append(candidates, c, c-'a'+'A')
	} else if c >= 'A' && c <= 'Z' {
		candidates = append(candidates, c+'a'-'A', c)
	}
	for c := byte('a'); c <= 'z'; c++ {
		candidates = append(candidates, c, c-'a'+'A')
	}

	for _, c := range candidates {
		if _, used := m.shortcutToSpace[c]; !used {
			spc.shortcut = c
			return nil
		}
	}
	return fmt.Errorf("assigning shortcut for space '%s': %w", spc.name, ErrShortcutsExhausted)
}

// NumSpaces returns the number of address spaces, including all special
// spaces like the constant and the join space.
func (m *Manager) NumSpaces() int { return len(m.baselist) }

// GetSpace returns the address space with the given stable index or nil
// if the index is out of range.
func (m *Manager) GetSpace(index int) *AddrSpace {
	if index < 0 || index >= len(m.baselist) {
		return nil
	}
	return m.baselist[index]
}

// GetSpaceByName returns the address space with the given name or nil.
// Callers treat a nil result as a configuration error.
func (m *Manager) GetSpaceByName(name string) *AddrSpace {
	return m.nameToSpace[name]
}

// GetSpaceByShortcut returns the address space assigned the given
// shortcut character or nil.
func (m *Manager) GetSpaceByShortcut(shortcut byte) *AddrSpace {
	return m.shortcutToSpace[shortcut]
}

// GetNextSpaceInOrder returns the space following the given one in index
// order, modeling the spaces as abutting in one conceptual global layout.
// It returns nil after the last space.
func (m *Manager) GetNextSpaceInOrder(spc *AddrSpace) *AddrSpace {
	return m.GetSpace(spc.index + 1)
}

// GetConstantSpace returns the constant space.
func (m *Manager) GetConstantSpace() *AddrSpace { return m.constantSpace }

// GetDefaultSpace returns the default space, generally the primary RAM
// that assembly pointers point into.
func (m *Manager) GetDefaultSpace() *AddrSpace { return m.defaultSpace }

// GetIopSpace returns the space reserved for internal pcode operation
// pointers.
func (m *Manager) GetIopSpace() *AddrSpace { return m.iopSpace }

// GetFspecSpace returns the space reserved for internal call
// specification pointers.
func (m *Manager) GetFspecSpace() *AddrSpace { return m.fspecSpace }

// GetJoinSpace returns the space unifying split storage locations.
func (m *Manager) GetJoinSpace() *AddrSpace { return m.joinSpace }

// GetStackSpace returns the stack space of the processor.
func (m *Manager) GetStackSpace() *AddrSpace { return m.stackSpace }

// GetUniqueSpace returns the temporary register space of the processor.
func (m *Manager) GetUniqueSpace() *AddrSpace { return m.uniqueSpace }

// GetDefaultSize returns the size of addresses in the default space.
func (m *Manager) GetDefaultSize() uint32 {
	if m.defaultSpace == nil {
		return 0
	}
	return m.defaultSpace.addrSize
}

// SetDefaultSpace designates the space with the given index as the
// default space. It can only be set once.
func (m *Manager) SetDefaultSpace(index int) error {
	if m.defaultSpace != nil {
		return fmt.Errorf("default space already set to '%s': %w",
			m.defaultSpace.name, ErrDuplicateSpace)
	}
	spc := m.GetSpace(index)
	if spc == nil {
		return fmt.Errorf("setting default space index %d: %w", index, ErrUnknownSpace)
	}
	m.defaultSpace = spc
	return nil
}

// SetDeadcodeDelay overrides the number of analysis passes to delay dead
// code elimination for locations in the given space.
func (m *Manager) SetDeadcodeDelay(spc *AddrSpace, delay int) {
	spc.deadcodeDelay = delay
}

// SetReverseJustified marks the space as storing small logical values at
// the opposite end of their physical container.
func (m *Manager) SetReverseJustified(spc *AddrSpace) {
	spc.reverseJustified = true
}

// InsertResolver overrides the constant resolution strategy for a space.
// At most one resolver is kept per space.
func (m *Manager) InsertResolver(spc *AddrSpace, resolver Resolver) {
	m.resolvers[spc.index] = resolver
}

// ResolveConstant resolves a constant embedded in decoded code into the
// address it refers to within the given space. A registered resolver is
// delegated to, otherwise the value itself is the offset and the full
// encoding.
func (m *Manager) ResolveConstant(spc *AddrSpace, value uint64, size uint32, point Address) (Address, uint64) {
	if resolver, ok := m.resolvers[spc.index]; ok {
		return resolver.Resolve(value, size, point)
	}
	offset := spc.WrapOffset(value)
	return Address{Space: spc, Offset: offset}, offset
}

// GetConstant encodes a value as an address in the constant space.
func (m *Manager) GetConstant(value uint64) Address {
	return Address{Space: m.constantSpace, Offset: value}
}

// CreateConstFromSpace encodes an address space as a constant address,
// as used for the space pointer input of load and store operations. The
// stable index of the space is the encoded offset.
func (m *Manager) CreateConstFromSpace(spc *AddrSpace) Address {
	return Address{Space: m.constantSpace, Offset: uint64(spc.index)}
}

// SpaceFromConst decodes an address space from a constant address
// produced by CreateConstFromSpace.
func (m *Manager) SpaceFromConst(addr Address) *AddrSpace {
	return m.GetSpace(int(addr.Offset))
}

// TruncateSpace shrinks the address size of the named space. Truncation
// is a one-shot setup command: truncating an unknown space, growing a
// space or truncating after a join record referencing the space exists
// are configuration errors.
func (m *Manager) TruncateSpace(tag Truncation) error {
	spc := m.GetSpaceByName(tag.SpaceName)
	if spc == nil {
		return fmt.Errorf("truncating space '%s': %w", tag.SpaceName, ErrUnknownSpace)
	}
	for _, record := range m.splitList {
		if record.referencesSpace(spc) {
			return fmt.Errorf("truncating space '%s': %w", tag.SpaceName, ErrTruncatedAfterJoin)
		}
	}
	if err := spc.truncate(tag.NewSize); err != nil {
		return err
	}
	return nil
}

// AddSpacebasePointer attaches the base register to a spacebase space.
// The original register location is preserved and a truncated form using
// only truncSize bytes is derived for effective address arithmetic.
func (m *Manager) AddSpacebasePointer(spc *AddrSpace, pointer Varnode, truncSize uint32, stackGrowsNegative bool) error {
	return spc.AttachBaseRegister(pointer, truncSize, stackGrowsNegative)
}

// FindAddJoin returns the join record for the given piece combination,
// creating it on first request. The pieces have to be listed from most
// significant to least significant. For a true split of two or more
// pieces the logical size has to equal the sum of the piece sizes. A
// single piece with a larger logical size denotes a float extension.
//
// The operation is idempotent for identical piece sequences. A new record
// receives a fresh, monotonically increasing offset in the join space.
func (m *Manager) FindAddJoin(pieces []Varnode, logicalSize uint32) (*JoinRecord, error) {
	if m.joinSpace == nil {
		return nil, fmt.Errorf("creating join record: no join space: %w", ErrUnknownSpace)
	}
	if len(pieces) == 0 {
		return nil, fmt.Errorf("creating join record without pieces: %w", ErrInvalidJoin)
	}

	var sum uint32
	for _, piece := range pieces {
		if piece.Space == nil || piece.Size == 0 {
			return nil, fmt.Errorf("creating join record with invalid piece %s: %w",
				piece, ErrInvalidJoin)
		}
		sum += piece.Size
	}
	switch {
	case len(pieces) == 1:
		// a single piece is only meaningful as a float extension and
		// must grow the piece
		if logicalSize <= pieces[0].Size {
			return nil, fmt.Errorf("float extension of size %d does not extend piece %s: %w",
				logicalSize, pieces[0], ErrInvalidJoin)
		}
	case logicalSize == 0:
		logicalSize = sum
	case logicalSize != sum:
		return nil, fmt.Errorf("logical size %d does not match piece sum %d: %w",
			logicalSize, sum, ErrInvalidJoin)
	}

	record := &JoinRecord{
		// callers may reuse their slice
		pieces: append([]Varnode(nil), pieces...),
	}

	idx := sort.Search(len(m.splitOrder), func(i int) bool {
		return m.splitOrder[i].Compare(record) >= 0
	})
	if idx < len(m.splitOrder) && m.splitOrder[idx].Compare(record) == 0 {
		return m.splitOrder[idx], nil
	}

	record.unified = Varnode{
		Space:  m.joinSpace,
		Offset: m.joinAllocate,
		Size:   logicalSize,
	}
	m.joinAllocate += uint64(logicalSize)

	m.splitOrder = append(m.splitOrder, nil)
	copy(m.splitOrder[idx+1:], m.splitOrder[idx:])
	m.splitOrder[idx] = record
	m.splitList = append(m.splitList, record)
	return record, nil
}

// FindJoin returns the join record whose unified range contains the given
// join space offset.
func (m *Manager) FindJoin(offset uint64) (*JoinRecord, error) {
	idx := sort.Search(len(m.splitList), func(i int) bool {
		return m.splitList[i].unified.Offset > offset
	})
	if idx > 0 {
		record := m.splitList[idx-1]
		if record.unified.Contains(offset) {
			return record, nil
		}
	}
	return nil, fmt.Errorf("join offset 0x%x: %w", offset, ErrNoJoinRecord)
}

// ConstructFloatExtensionAddress builds the join address for a wider
// logical float value backed by a narrower physical register.
func (m *Manager) ConstructFloatExtensionAddress(real Varnode, logicalSize uint32) (Address, error) {
	record, err := m.FindAddJoin([]Varnode{real}, logicalSize)
	if err != nil {
		return Address{}, err
	}
	return record.Unified().Address(), nil
}

// ConstructJoinAddress builds the join address for a logical whole backed
// by a most significant and a least significant piece.
func (m *Manager) ConstructJoinAddress(hi, lo Varnode) (Address, error) {
	record, err := m.FindAddJoin([]Varnode{hi, lo}, hi.Size+lo.Size)
	if err != nil {
		return Address{}, err
	}
	return record.Unified().Address(), nil
}

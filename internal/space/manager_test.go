package space

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func buildTestManager(t *testing.T) *Manager {
	t.Helper()

	m, err := Build([]Descriptor{
		{Name: "const", Kind: KindConstant, AddrSize: 8, Shortcut: '#'},
		{Name: "ram", Kind: KindProcessor, AddrSize: 4, Default: true},
		{Name: "register", Kind: KindProcessor, AddrSize: 4},
		{Name: "unique", Kind: KindInternal, AddrSize: 4},
		{Name: "stack", Kind: KindSpacebase, AddrSize: 4, Contain: "ram",
			BaseRegisterSpace:  "register",
			BaseRegisterOffset: 0x10,
			BaseRegisterSize:   4,
			GrowsNegative:      true},
		{Name: "iop", Kind: KindIop, AddrSize: 8},
		{Name: "fspec", Kind: KindFspec, AddrSize: 8},
		{Name: "join", Kind: KindJoin, AddrSize: 8},
	}, nil)
	assert.NoError(t, err)
	return m
}

func TestManagerInsertAndLookup(t *testing.T) {
	m := buildTestManager(t)

	assert.Equal(t, 8, m.NumSpaces())

	ram := m.GetSpaceByName("ram")
	assert.NotNil(t, ram)
	assert.Equal(t, 1, ram.Index())
	assert.Equal(t, byte('r'), ram.Shortcut())
	assert.Equal(t, ram, m.GetSpace(1))
	assert.Equal(t, ram, m.GetSpaceByShortcut('r'))

	// name collision on the first letter falls back to the upper case form
	register := m.GetSpaceByName("register")
	assert.Equal(t, byte('R'), register.Shortcut())

	assert.Equal(t, "const", m.GetConstantSpace().Name())
	assert.Equal(t, byte('#'), m.GetConstantSpace().Shortcut())
	assert.Equal(t, ram, m.GetDefaultSpace())
	assert.Equal(t, "unique", m.GetUniqueSpace().Name())
	assert.Equal(t, "stack", m.GetStackSpace().Name())
	assert.Equal(t, "iop", m.GetIopSpace().Name())
	assert.Equal(t, "fspec", m.GetFspecSpace().Name())
	assert.Equal(t, "join", m.GetJoinSpace().Name())
	assert.Equal(t, uint32(4), m.GetDefaultSize())

	assert.Nil(t, m.GetSpaceByName("rom"))
	assert.Nil(t, m.GetSpace(8))
	assert.Nil(t, m.GetSpace(-1))
}

func TestManagerDuplicateSpace(t *testing.T) {
	m := buildTestManager(t)

	err := m.InsertSpace(NewSpace("ram", KindProcessor, 4, 1, false))
	assert.True(t, errors.Is(err, ErrDuplicateSpace))

	err = m.InsertSpace(NewSpace("", KindProcessor, 4, 1, false))
	assert.Error(t, err)
}

func TestManagerDefaultSpaceSetOnce(t *testing.T) {
	m := buildTestManager(t)

	err := m.SetDefaultSpace(2)
	assert.True(t, errors.Is(err, ErrDuplicateSpace))

	m2 := NewManager()
	assert.NoError(t, m2.InsertSpace(NewSpace("ram", KindProcessor, 4, 1, false)))
	err = m2.SetDefaultSpace(7)
	assert.True(t, errors.Is(err, ErrUnknownSpace))
}

func TestManagerNextSpaceInOrder(t *testing.T) {
	m := buildTestManager(t)

	count := 0
	for spc := m.GetSpace(0); spc != nil; spc = m.GetNextSpaceInOrder(spc) {
		assert.Equal(t, count, spc.Index())
		count++
	}
	assert.Equal(t, m.NumSpaces(), count)
}

func TestManagerTruncateSpace(t *testing.T) {
	m := buildTestManager(t)
	ram := m.GetSpaceByName("ram")

	assert.NoError(t, m.TruncateSpace(Truncation{SpaceName: "ram", NewSize: 2}))
	assert.Equal(t, uint32(2), ram.AddrSize())
	assert.Equal(t, uint64(0xffff), ram.Highest())
	assert.True(t, ram.IsTruncated())

	// growing is not allowed
	err := m.TruncateSpace(Truncation{SpaceName: "ram", NewSize: 4})
	assert.True(t, errors.Is(err, ErrInvalidTruncation))

	err = m.TruncateSpace(Truncation{SpaceName: "rom", NewSize: 2})
	assert.True(t, errors.Is(err, ErrUnknownSpace))
}

func TestManagerTruncateAfterJoin(t *testing.T) {
	m := buildTestManager(t)
	ram := m.GetSpaceByName("ram")

	_, err := m.FindAddJoin([]Varnode{
		{Space: ram, Offset: 0x1000, Size: 4},
		{Space: ram, Offset: 0x1004, Size: 4},
	}, 8)
	assert.NoError(t, err)

	err = m.TruncateSpace(Truncation{SpaceName: "ram", NewSize: 2})
	assert.True(t, errors.Is(err, ErrTruncatedAfterJoin))
}

func TestManagerWrapOffset(t *testing.T) {
	m := buildTestManager(t)
	ram := m.GetSpaceByName("ram")

	assert.Equal(t, uint64(0xffffffff), ram.Highest())
	assert.Equal(t, uint64(1), ram.WrapOffset(0x100000001))
	assert.Equal(t, uint64(0xffffffff), ram.WrapOffset(0xffffffff))

	// 8 byte spaces cover the full offset range
	join := m.GetSpaceByName("join")
	assert.Equal(t, ^uint64(0), join.WrapOffset(^uint64(0)))
}

type pageResolver struct {
	page uint64
}

func (r pageResolver) Resolve(value uint64, _ uint32, _ Address) (Address, uint64) {
	return Address{}, r.page | value
}

func TestManagerResolveConstant(t *testing.T) {
	m := buildTestManager(t)
	ram := m.GetSpaceByName("ram")

	// default resolution wraps the value into the space
	addr, full := m.ResolveConstant(ram, 0x100000001, 4, Address{})
	assert.Equal(t, ram, addr.Space)
	assert.Equal(t, uint64(1), addr.Offset)
	assert.Equal(t, uint64(1), full)

	m.InsertResolver(ram, pageResolver{page: 0xff0000})
	_, full = m.ResolveConstant(ram, 0x34, 2, Address{})
	assert.Equal(t, uint64(0xff0034), full)
}

func TestManagerConstantEncoding(t *testing.T) {
	m := buildTestManager(t)
	ram := m.GetSpaceByName("ram")

	addr := m.GetConstant(42)
	assert.Equal(t, m.GetConstantSpace(), addr.Space)
	assert.Equal(t, uint64(42), addr.Offset)

	// space pointer round trip through the constant encoding
	ptr := m.CreateConstFromSpace(ram)
	assert.Equal(t, m.GetConstantSpace(), ptr.Space)
	assert.Equal(t, ram, m.SpaceFromConst(ptr))
}

package translate

import (
	"errors"
	"testing"

	"github.com/retroenv/pcodedis/internal/space"
	"github.com/retroenv/retrogolib/assert"
)

func testRegisterSpace(t *testing.T) *space.AddrSpace {
	t.Helper()
	return space.NewSpace("register", space.KindProcessor, 4, 1, false)
}

func TestRegistersLookup(t *testing.T) {
	registerSpace := testRegisterSpace(t)
	regs := NewRegisters()

	a := space.Varnode{Space: registerSpace, Offset: 0, Size: 1}
	sp := space.Varnode{Space: registerSpace, Offset: 4, Size: 2}
	regs.Add("A", a)
	regs.Add("SP", sp)

	got, err := regs.Get("A")
	assert.NoError(t, err)
	assert.Equal(t, a, got)

	_, err = regs.Get("B")
	assert.True(t, errors.Is(err, ErrNoSuchRegister))

	// reverse lookup needs the exact location triple
	assert.Equal(t, "SP", regs.NameAt(registerSpace, 4, 2))
	assert.Equal(t, "", regs.NameAt(registerSpace, 4, 1))
	assert.Equal(t, "", regs.NameAt(registerSpace, 5, 2))
}

func TestRegistersAllSorted(t *testing.T) {
	registerSpace := testRegisterSpace(t)
	regs := NewRegisters()

	regs.Add("Y", space.Varnode{Space: registerSpace, Offset: 2, Size: 1})
	regs.Add("A", space.Varnode{Space: registerSpace, Offset: 0, Size: 1})
	regs.Add("X", space.Varnode{Space: registerSpace, Offset: 1, Size: 1})

	all := regs.All()
	assert.Len(t, all, 3)
	assert.Equal(t, "A", all[0].Name)
	assert.Equal(t, "X", all[1].Name)
	assert.Equal(t, "Y", all[2].Name)
}

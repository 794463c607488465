package space

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestVarnodeCompare(t *testing.T) {
	m := buildTestManager(t)
	ram := m.GetSpaceByName("ram")
	register := m.GetSpaceByName("register")

	a := Varnode{Space: ram, Offset: 0x10, Size: 4}

	tests := []struct {
		name  string
		other Varnode
		want  int
	}{
		{"equal", Varnode{Space: ram, Offset: 0x10, Size: 4}, 0},
		{"lower space wins", Varnode{Space: register, Offset: 0, Size: 1}, -1},
		{"offset breaks space tie", Varnode{Space: ram, Offset: 0x20, Size: 4}, -1},
		{"size breaks offset tie", Varnode{Space: ram, Offset: 0x10, Size: 2}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.Compare(tt.other))
			assert.Equal(t, -tt.want, tt.other.Compare(a))
		})
	}
}

func TestVarnodeContains(t *testing.T) {
	m := buildTestManager(t)
	ram := m.GetSpaceByName("ram")

	v := Varnode{Space: ram, Offset: 0x10, Size: 4}
	assert.True(t, v.Contains(0x10))
	assert.True(t, v.Contains(0x13))
	assert.False(t, v.Contains(0x14))
	assert.False(t, v.Contains(0x0f))
}

func TestAddressString(t *testing.T) {
	m := buildTestManager(t)
	ram := m.GetSpaceByName("ram")

	addr := Address{Space: ram, Offset: 0x8000}
	assert.Equal(t, "r0x8000", addr.String())
	assert.Equal(t, "<invalid>", Address{}.String())
	assert.True(t, Address{}.IsInvalid())
	assert.False(t, addr.IsInvalid())
}

func TestVarnodeString(t *testing.T) {
	m := buildTestManager(t)
	ram := m.GetSpaceByName("ram")

	v := Varnode{Space: ram, Offset: 0x2000, Size: 4}
	assert.Equal(t, "ram:0x2000:4", v.String())
	assert.Equal(t, "<invalid>", Varnode{}.String())
	assert.Equal(t, Address{Space: ram, Offset: 0x2000}, v.Address())
}

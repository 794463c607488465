package translate

import (
	"fmt"

	"github.com/retroenv/pcodedis/internal/space"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type registerKey struct {
	spaceIndex int
	offset     uint64
	size       uint32
}

// Registers maps register names to their storage locations and back.
// The reverse lookup matches exactly: a location that does not correspond
// exactly to a named register yields an empty name. Backends populate the
// registry during initialization, afterwards it is read-only.
type Registers struct {
	byName map[string]space.Varnode
	byLoc  map[registerKey]string
}

// NewRegisters creates an empty register registry.
func NewRegisters() *Registers {
	return &Registers{
		byName: map[string]space.Varnode{},
		byLoc:  map[registerKey]string{},
	}
}

// Add registers a named register location.
func (r *Registers) Add(name string, location space.Varnode) {
	r.byName[name] = location
	r.byLoc[keyOf(location)] = name
}

// Get returns the location of a register by name.
func (r *Registers) Get(name string) (space.Varnode, error) {
	location, ok := r.byName[name]
	if !ok {
		return space.Varnode{}, fmt.Errorf("register '%s': %w", name, ErrNoSuchRegister)
	}
	return location, nil
}

// NameAt returns the name of the register exactly matching the location,
// or an empty string.
func (r *Registers) NameAt(spc *space.AddrSpace, offset uint64, size uint32) string {
	if spc == nil {
		return ""
	}
	return r.byLoc[keyOf(space.Varnode{Space: spc, Offset: offset, Size: size})]
}

// All returns all registers sorted by name.
func (r *Registers) All() []Register {
	names := maps.Keys(r.byName)
	slices.Sort(names)

	registers := make([]Register, 0, len(names))
	for _, name := range names {
		registers = append(registers, Register{Name: name, Location: r.byName[name]})
	}
	return registers
}

func keyOf(v space.Varnode) registerKey {
	return registerKey{
		spaceIndex: v.Space.Index(),
		offset:     v.Offset,
		size:       v.Size,
	}
}

package space

import "fmt"

// Address identifies a single location as a space and an offset into it.
// An Address with a nil space is invalid.
type Address struct {
	Space  *AddrSpace
	Offset uint64
}

// IsInvalid returns true if the address does not point into any space.
func (a Address) IsInvalid() bool { return a.Space == nil }

// Compare orders addresses by space index first, then by offset.
func (a Address) Compare(other Address) int {
	if c := compareSpaces(a.Space, other.Space); c != 0 {
		return c
	}
	return compareUint64(a.Offset, other.Offset)
}

// String returns the address in the compact shortcut notation, for
// example "r0x8000".
func (a Address) String() string {
	if a.Space == nil {
		return "<invalid>"
	}
	return fmt.Sprintf("%c0x%x", a.Space.Shortcut(), a.Offset)
}

// Varnode describes a storage location as the triple of a space, an offset
// in the space's native addressing unit and a size in bytes. The size is
// always greater than zero for a valid varnode.
type Varnode struct {
	Space  *AddrSpace
	Offset uint64
	Size   uint32
}

// Address returns the location of the varnode without its size.
func (v Varnode) Address() Address {
	return Address{Space: v.Space, Offset: v.Offset}
}

// Contains returns true if the given address offset falls inside the varnode.
func (v Varnode) Contains(offset uint64) bool {
	return offset >= v.Offset && offset < v.Offset+uint64(v.Size)
}

// Compare orders varnodes by space index, then offset, then size.
func (v Varnode) Compare(other Varnode) int {
	if c := compareSpaces(v.Space, other.Space); c != 0 {
		return c
	}
	if c := compareUint64(v.Offset, other.Offset); c != 0 {
		return c
	}
	return compareUint32(v.Size, other.Size)
}

// String returns the varnode in the form "space:0xoffset:size".
func (v Varnode) String() string {
	if v.Space == nil {
		return "<invalid>"
	}
	return fmt.Sprintf("%s:0x%x:%d", v.Space.Name(), v.Offset, v.Size)
}

func compareSpaces(a, b *AddrSpace) int {
	switch {
	case a == b:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	default:
		return compareInt(a.Index(), b.Index())
	}
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareUint32(a, b uint32) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareUint64(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

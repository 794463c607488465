package m6502

import "fmt"

// Memory provides read access to the address bus of the system.
type Memory interface {
	ReadMemory(address uint16) (byte, error)
}

// ROM is a read only memory image loaded at a base address.
type ROM struct {
	data []byte
	base uint16
}

// NewROM returns a ROM backed by the data, mapped at the base address.
func NewROM(data []byte, base uint16) *ROM {
	return &ROM{
		data: data,
		base: base,
	}
}

// Base returns the address the image is mapped at.
func (r *ROM) Base() uint16 {
	return r.base
}

// Size returns the size of the image in bytes.
func (r *ROM) Size() int {
	return len(r.data)
}

// ReadMemory reads a byte from the image.
func (r *ROM) ReadMemory(address uint16) (byte, error) {
	if address < r.base || int(address-r.base) >= len(r.data) {
		return 0, fmt.Errorf("address 0x%04x is outside of the mapped image", address)
	}
	return r.data[address-r.base], nil
}

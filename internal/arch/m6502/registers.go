package m6502

import "github.com/retroenv/pcodedis/internal/space"

// Register offsets in the register space. SP is modeled as a 16-bit
// register including the fixed stack page, its low byte is the 8-bit S
// register of the processor. The status flags are additionally modeled
// as single byte pseudo registers so pcode can reference them directly.
const (
	regA  = 0x00
	regX  = 0x01
	regY  = 0x02
	regP  = 0x03
	regSP = 0x04 // 2 bytes
	regPC = 0x06 // 2 bytes

	flagN = 0x08
	flagV = 0x09
	flagB = 0x0a
	flagD = 0x0b
	flagI = 0x0c
	flagZ = 0x0d
	flagC = 0x0e
)

// addRegisters populates the register registry with the named registers
// of the processor.
func (b *Backend) addRegisters() {
	for name, reg := range map[string]struct {
		offset uint64
		size   uint32
	}{
		"A":  {regA, 1},
		"X":  {regX, 1},
		"Y":  {regY, 1},
		"P":  {regP, 1},
		"S":  {regSP, 1}, // low byte of SP
		"SP": {regSP, 2},
		"PC": {regPC, 2},
		"N":  {flagN, 1},
		"V":  {flagV, 1},
		"B":  {flagB, 1},
		"D":  {flagD, 1},
		"I":  {flagI, 1},
		"Z":  {flagZ, 1},
		"C":  {flagC, 1},
	} {
		b.regs.Add(name, space.Varnode{Space: b.register, Offset: reg.offset, Size: reg.size})
	}
}

// reg returns a varnode for a register space location.
func (b *Backend) reg(offset uint64, size uint32) space.Varnode {
	return space.Varnode{Space: b.register, Offset: offset, Size: size}
}

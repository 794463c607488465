package translate

import "github.com/retroenv/pcodedis/internal/space"

// Core holds the processor state shared by all translator
// implementations: endianness, instruction alignment, the reserved part
// of the unique space and the float format table. Backends embed it and
// configure it during their initialization.
type Core struct {
	manager *space.Manager

	bigEndian  bool
	alignment  int
	uniqueBase uint64

	floats map[uint32]*FloatFormat

	allowContext bool
}

// NewCore creates the shared translator state bound to an address space
// manager.
func NewCore(manager *space.Manager) Core {
	return Core{
		manager:      manager,
		alignment:    1,
		floats:       map[uint32]*FloatFormat{},
		allowContext: true,
	}
}

// Spaces returns the address space manager of the processor.
func (c *Core) Spaces() *space.Manager { return c.manager }

// IsBigEndian returns true if the processor globally uses big endian
// encoding.
func (c *Core) IsBigEndian() bool { return c.bigEndian }

// SetBigEndian sets the general endianness of the processor.
func (c *Core) SetBigEndian(big bool) { c.bigEndian = big }

// Alignment returns the byte modulo machine instructions are aligned on,
// 1 if the architecture has no alignment constraint.
func (c *Core) Alignment() int { return c.alignment }

// SetAlignment sets the instruction alignment of the processor.
func (c *Core) SetAlignment(alignment int) {
	if alignment < 1 {
		alignment = 1
	}
	c.alignment = alignment
}

// UniqueBase returns the offset in the unique space below which locations
// are reserved for the decode engine. Later analysis passes allocate
// their temporaries at or above this offset.
func (c *Core) UniqueBase() uint64 { return c.uniqueBase }

// SetUniqueBase raises the reserved boundary of the unique space. The
// boundary only ever grows.
func (c *Core) SetUniqueBase(base uint64) {
	if base > c.uniqueBase {
		c.uniqueBase = base
	}
}

// FloatFormat returns the float encoding of the given byte size used by
// the processor, or nil if the size is not supported.
func (c *Core) FloatFormat(size uint32) *FloatFormat {
	return c.floats[size]
}

// AddFloatFormat registers a float encoding with the processor.
func (c *Core) AddFloatFormat(format *FloatFormat) {
	c.floats[format.Size()] = format
}

// SetDefaultFloatFormats populates the float format table with the
// standard 4 and 8 byte IEEE 754 encodings if no explicit formats were
// configured.
func (c *Core) SetDefaultFloatFormats() {
	if len(c.floats) > 0 {
		return
	}
	c.AddFloatFormat(IEEESingle())
	c.AddFloatFormat(IEEEDouble())
}

// RegisterContext is a no-op default, architectures with processor state
// dependent decoding override it.
func (c *Core) RegisterContext(name string, startBit, endBit int) {}

// SetContextDefault is a no-op default.
func (c *Core) SetContextDefault(name string, value uint32) {}

// AllowContextSet records whether decoding may change the global context.
func (c *Core) AllowContextSet(allow bool) { c.allowContext = allow }

// ContextSetAllowed returns true if decoding may change the global
// context.
func (c *Core) ContextSetAllowed() bool { return c.allowContext }

// UserOpNames is an empty default, architectures with user defined pcode
// operations override it.
func (c *Core) UserOpNames() []string { return nil }

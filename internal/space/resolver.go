package space

// Resolver converts a native constant embedded in decoded code into the
// address it refers to. A resolver is registered per space for
// architectures where this needs a special calculation, the typical case
// being segmented pointers where a near pointer has to be extended with
// implied segment information.
//
// Resolve receives the constant value, its size in bytes and the address
// at which the constant is used. It returns the resolved address and the
// full pointer encoding in case the value was only a partial encoding.
type Resolver interface {
	Resolve(value uint64, size uint32, point Address) (Address, uint64)
}

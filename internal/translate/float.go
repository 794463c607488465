package translate

// FloatFormat describes the bit layout of one floating point encoding
// supported by a processor, keyed by its total size in bytes. Only the
// layout is modeled here, conversion routines live with the analysis
// stages that need them.
type FloatFormat struct {
	size uint32 // encoding size in bytes

	signPos     int
	fracPos     int
	fracSize    int
	expPos      int
	expSize     int
	bias        int
	jBitImplied bool
}

// Size returns the total size of the encoding in bytes.
func (f *FloatFormat) Size() uint32 { return f.size }

// ExpBias returns the exponent bias of the encoding.
func (f *FloatFormat) ExpBias() int { return f.bias }

// ExpSize returns the number of exponent bits.
func (f *FloatFormat) ExpSize() int { return f.expSize }

// FracSize returns the number of fraction bits.
func (f *FloatFormat) FracSize() int { return f.fracSize }

// JBitImplied returns true if the integer bit of the significand is
// implied rather than stored.
func (f *FloatFormat) JBitImplied() bool { return f.jBitImplied }

// IEEEHalf returns the 2 byte IEEE 754 binary16 layout.
func IEEEHalf() *FloatFormat {
	return &FloatFormat{
		size: 2, signPos: 15, expPos: 10, expSize: 5,
		fracPos: 0, fracSize: 10, bias: 15, jBitImplied: true,
	}
}

// IEEESingle returns the 4 byte IEEE 754 binary32 layout.
func IEEESingle() *FloatFormat {
	return &FloatFormat{
		size: 4, signPos: 31, expPos: 23, expSize: 8,
		fracPos: 0, fracSize: 23, bias: 127, jBitImplied: true,
	}
}

// IEEEDouble returns the 8 byte IEEE 754 binary64 layout.
func IEEEDouble() *FloatFormat {
	return &FloatFormat{
		size: 8, signPos: 63, expPos: 52, expSize: 11,
		fracPos: 0, fracSize: 52, bias: 1023, jBitImplied: true,
	}
}

// IEEEQuad returns the 16 byte IEEE 754 binary128 layout.
func IEEEQuad() *FloatFormat {
	return &FloatFormat{
		size: 16, signPos: 127, expPos: 112, expSize: 15,
		fracPos: 0, fracSize: 112, bias: 16383, jBitImplied: true,
	}
}

// Package options contains the program options.
package options

// Parameters contains file path options.
type Parameters struct {
	Input  string
	Output string
	Packed string
	Batch  string
}

// Flags contains behavior options.
type Flags struct {
	CodeBase     string
	AssemblyOnly bool
	NoLabels     bool
	Debug        bool
	Quiet        bool
}

// Program options of the translator.
type Program struct {
	Parameters
	Flags
}

// Listing defines options to control the produced listing.
type Listing struct {
	CodeBase     uint16 // address the binary is loaded at
	AssemblyOnly bool   // omit the pcode operations of every instruction
	Labels       bool   // mark branch and call destinations with labels
}

// NewListing returns a new options instance with default options.
func NewListing(codeBase uint16) Listing {
	return Listing{
		CodeBase: codeBase,
		Labels:   true,
	}
}

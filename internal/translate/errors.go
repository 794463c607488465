package translate

import (
	"errors"
	"fmt"

	"github.com/retroenv/pcodedis/internal/space"
)

// UnimplementedError reports that the decoded byte pattern is a valid
// instruction for the architecture but has no pcode translation. The
// instruction length is known, so a caller can mark the location as code
// with unknown effect and continue behind it.
type UnimplementedError struct {
	Address space.Address
	Length  int // instruction length in bytes
}

// Error implements the error interface.
func (e *UnimplementedError) Error() string {
	return fmt.Sprintf("instruction at %s has no pcode translation (%d bytes)",
		e.Address, e.Length)
}

// BadDataError reports that the bytes at the address do not decode to any
// valid instruction for the architecture. A caller typically reclassifies
// the location as data or retries at a different alignment.
type BadDataError struct {
	Address space.Address
	Reason  string
}

// Error implements the error interface.
func (e *BadDataError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("invalid instruction data at %s", e.Address)
	}
	return fmt.Sprintf("invalid instruction data at %s: %s", e.Address, e.Reason)
}

// AsUnimplemented returns the unimplemented condition carried by the
// error chain, if any.
func AsUnimplemented(err error) (*UnimplementedError, bool) {
	var unimplErr *UnimplementedError
	if errors.As(err, &unimplErr) {
		return unimplErr, true
	}
	return nil, false
}

// IsBadData returns true if the error chain carries a bad data condition.
func IsBadData(err error) bool {
	var badDataErr *BadDataError
	return errors.As(err, &badDataErr)
}

// ErrNoSuchRegister is returned by register lookups for unknown names.
var ErrNoSuchRegister = errors.New("no such register")

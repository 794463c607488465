package space

import "errors"

// Configuration errors of the space model. They indicate a broken
// architecture setup and abort initialization, they are never a normal
// per-instruction condition.
var (
	// ErrUnknownSpace is returned when a referenced space name or index
	// does not exist in the manager.
	ErrUnknownSpace = errors.New("unknown address space")

	// ErrDuplicateSpace is returned when a space name is registered twice.
	ErrDuplicateSpace = errors.New("duplicate address space name")

	// ErrShortcutsExhausted is returned when no free shortcut character
	// can be assigned to a new space.
	ErrShortcutsExhausted = errors.New("address space shortcuts exhausted")

	// ErrInvalidTruncation is returned when a truncation does not shrink
	// the address size of a space.
	ErrInvalidTruncation = errors.New("invalid space truncation")

	// ErrTruncatedAfterJoin is returned when a space is truncated after a
	// join record referencing it has been created.
	ErrTruncatedAfterJoin = errors.New("space truncated after join record creation")

	// ErrNoJoinRecord is returned when a join space offset does not fall
	// into any recorded unified range.
	ErrNoJoinRecord = errors.New("no join record at offset")

	// ErrInvalidJoin is returned when a join request is malformed, for
	// example an empty piece list or a logical size mismatch.
	ErrInvalidJoin = errors.New("invalid join request")

	// ErrInvalidSpacebase is returned when spacebase specific operations
	// are requested on a space that is not a spacebase or is incompletely
	// configured.
	ErrInvalidSpacebase = errors.New("invalid spacebase space")
)

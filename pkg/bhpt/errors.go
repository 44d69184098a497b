package bhpt

import "errors"

// Sentinel errors returned by Table operations.
//
// Callers should use [errors.Is] to check error types.
var (
	// ErrNoCapacity indicates Insert was called on a full table with
	// AutoRemove disabled, or on a zero-capacity table.
	//
	// Recovery: remove an entry, or construct the table with AutoRemove.
	ErrNoCapacity = errors.New("bhpt: no capacity")

	// ErrInvalidIndex indicates an index argument is out of [0, Capacity).
	//
	// This is a programming error.
	ErrInvalidIndex = errors.New("bhpt: invalid index")

	// ErrInvalidArgument indicates a malformed construction parameter or
	// runtime argument: N outside [1, L], MWSP outside [-1, N), or a
	// state bit outside {0, 1}.
	//
	// This is a programming error.
	ErrInvalidArgument = errors.New("bhpt: invalid argument")

	// ErrNoSelectableEntry indicates Select was called while the total
	// weight across all valid entries is zero: no valid entry, or every
	// valid entry has a zero weight with MWSP disabled.
	//
	// Recovery: push a 1-bit to some entry, insert a new entry, or enable
	// MWSP and retry.
	ErrNoSelectableEntry = errors.New("bhpt: no selectable entry")
)

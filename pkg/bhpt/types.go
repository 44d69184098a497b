package bhpt

// Config configures the construction of a Table.
//
// Capacity, HistoryLength, ConsiderationDepth and AutoRemove are fixed for
// the lifetime of the table. MWSP and Defer may be changed afterward via
// [Table.SetMWSP] and [Table.SetDefer].
type Config struct {
	// Capacity is the number of entry slots the table holds. Zero is a
	// legal (degenerate) capacity: every Insert on such a table returns
	// ErrNoCapacity regardless of AutoRemove.
	Capacity int

	// HistoryLength is the number of bits (L) of history kept per entry.
	// Must be >= 1.
	HistoryLength int

	// ConsiderationDepth is the number of most-recent history bits (N)
	// the weight function examines. Must satisfy 1 <= N <= HistoryLength.
	// Zero means "default to HistoryLength".
	ConsiderationDepth int

	// MWSP is the Minimal Weight State Position: during weight
	// evaluation, position MWSP is forced to 1. Must satisfy
	// -1 <= MWSP < ConsiderationDepth. -1 disables the override.
	MWSP int

	// Defer selects deferred (batched) weight recomputation instead of
	// eager (per-push) recomputation. See [Table.SetDefer].
	Defer bool

	// AutoRemove enables evicting the lowest-weight entry when Insert is
	// called on a full table, instead of returning ErrNoCapacity.
	// Immutable after construction.
	AutoRemove bool

	// Seed seeds the table's deterministic PRNG. Two tables built with
	// the same Seed and the same call sequence produce identical Select
	// results. Zero is a legal seed and does not mean "unseeded"; pass
	// an actual random value yourself if you want non-reproducible runs.
	Seed uint64
}

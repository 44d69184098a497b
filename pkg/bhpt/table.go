package bhpt

import (
	"fmt"
	"math/rand/v2"
)

// Table is a Binary History Probability Table: capacity entries, each
// with an L-bit shift-register history and a cached weight, supporting
// weighted random selection biased toward entries with more recent 1s.
//
// A Table is not safe for concurrent use; see the package doc.
type Table struct {
	capacity int
	l        int
	n        int
	m        int
	defer_   bool
	auto     bool

	hist    *historyStore
	valid   *validitySet
	weights []float64
	dirty   *dirtyTracker
	we      weigher

	cum   []float64
	total float64

	rng  *rand.Rand
	seed uint64

	drawCount    int
	rebuildCount int
}

// New constructs a Table from cfg. ConsiderationDepth of zero defaults to
// HistoryLength.
//
// Returns ErrInvalidArgument if Capacity, HistoryLength, ConsiderationDepth
// or MWSP are out of range.
func New(cfg Config) (*Table, error) {
	n := cfg.ConsiderationDepth
	if n == 0 {
		n = cfg.HistoryLength
	}

	if err := validateConfig(cfg, n); err != nil {
		return nil, err
	}

	t := &Table{
		capacity: cfg.Capacity,
		l:        cfg.HistoryLength,
		n:        n,
		m:        cfg.MWSP,
		defer_:   cfg.Defer,
		auto:     cfg.AutoRemove,
		hist:     newHistoryStore(cfg.Capacity, cfg.HistoryLength),
		valid:    newValiditySet(cfg.Capacity),
		weights:  make([]float64, cfg.Capacity),
		dirty:    newDirtyTracker(cfg.Capacity),
		we:       newPositionalWeigher(n, cfg.MWSP),
		cum:      make([]float64, cfg.Capacity+1),
		rng:      rand.New(rand.NewPCG(cfg.Seed, cfg.Seed)),
		seed:     cfg.Seed,
	}

	return t, nil
}

func validateConfig(cfg Config, n int) error {
	if cfg.Capacity < 0 {
		return fmt.Errorf("capacity must be >= 0, got %d: %w", cfg.Capacity, ErrInvalidArgument)
	}

	if cfg.Capacity > maxCapacity {
		return fmt.Errorf("capacity %d exceeds max %d: %w", cfg.Capacity, maxCapacity, ErrInvalidArgument)
	}

	if cfg.HistoryLength < 1 {
		return fmt.Errorf("history_length must be >= 1, got %d: %w", cfg.HistoryLength, ErrInvalidArgument)
	}

	if cfg.HistoryLength > maxHistoryLength {
		return fmt.Errorf("history_length %d exceeds max %d: %w", cfg.HistoryLength, maxHistoryLength, ErrInvalidArgument)
	}

	if n < 1 || n > cfg.HistoryLength {
		return fmt.Errorf("consideration_depth must be in [1, %d], got %d: %w", cfg.HistoryLength, n, ErrInvalidArgument)
	}

	if cfg.MWSP < -1 || cfg.MWSP >= n {
		return fmt.Errorf("mwsp must be in [-1, %d), got %d: %w", n, cfg.MWSP, ErrInvalidArgument)
	}

	return nil
}

func (t *Table) checkIndex(e int) error {
	if e < 0 || e >= t.capacity {
		return fmt.Errorf("index %d out of [0, %d): %w", e, t.capacity, ErrInvalidIndex)
	}

	return nil
}

// Capacity returns I, the fixed number of entry slots.
func (t *Table) Capacity() int { return t.capacity }

// HistoryLength returns L, the fixed number of history bits per entry.
func (t *Table) HistoryLength() int { return t.l }

// ConsiderationDepth returns N, the number of most-recent bits the weight
// function examines.
func (t *Table) ConsiderationDepth() int { return t.n }

// MWSP returns the current Minimal Weight State Position (-1 if disabled).
func (t *Table) MWSP() int { return t.m }

// Defer returns the current deferred-recomputation mode.
func (t *Table) Defer() bool { return t.defer_ }

// AutoRemove returns whether the table evicts the lowest-weight entry on
// Insert when full. Immutable after construction.
func (t *Table) AutoRemove() bool { return t.auto }

// ValidCount returns the number of currently valid entries.
func (t *Table) ValidCount() int { return t.valid.validCount() }

// FreeCount returns the number of currently free entry slots.
func (t *Table) FreeCount() int { return t.valid.freeCount() }

// IsValid reports whether entry e currently holds a tracked variable.
//
// Returns ErrInvalidIndex if e is outside [0, Capacity).
func (t *Table) IsValid(e int) (bool, error) {
	if err := t.checkIndex(e); err != nil {
		return false, err
	}

	return t.valid.isValid(e), nil
}

// HistoryOf returns entry e's L-bit history in position order (position 0
// is the most recent push). Valid-but-never-written and invalid entries
// both read as all-zero.
//
// Returns ErrInvalidIndex if e is outside [0, Capacity).
func (t *Table) HistoryOf(e int) ([]int, error) {
	if err := t.checkIndex(e); err != nil {
		return nil, err
	}

	return t.hist.readRow(e), nil
}

// Push records the most recent state s (0 or 1) for entry e. If e was
// invalid, it is implicitly validated with an all-zero history prior to
// this push.
//
// Returns ErrInvalidIndex if e is outside [0, Capacity), or
// ErrInvalidArgument if s is not 0 or 1.
func (t *Table) Push(e int, s int) error {
	if err := t.checkIndex(e); err != nil {
		return err
	}

	if s != 0 && s != 1 {
		return fmt.Errorf("state bit must be 0 or 1, got %d: %w", s, ErrInvalidArgument)
	}

	if !t.valid.isValid(e) {
		// e stops being free: take it off the free-list so Insert cannot
		// hand it out again while it is valid.
		for i, f := range t.valid.free {
			if int(f) == e {
				t.valid.free = append(t.valid.free[:i], t.valid.free[i+1:]...)

				break
			}
		}
	}

	t.valid.setValid(e)
	t.hist.shiftIn(e, s)
	t.onEntryChanged(e)

	return nil
}

// onEntryChanged applies the eager/deferred weight recomputation
// discipline after a history-affecting mutation to a valid entry e.
func (t *Table) onEntryChanged(e int) {
	if t.defer_ {
		t.dirty.markEntry(e)

		return
	}

	t.weights[e] = t.we.weight(t.hist, e)
	t.dirty.clearEntry(e)
	t.dirty.stale = true
}

// SetMWSP changes the Minimal Weight State Position. Any integer is
// accepted at the type level, but it must satisfy -1 <= m < N or
// ErrInvalidArgument is returned; -1 disables the override. Changing MWSP
// changes the weight function itself, so every entry's weight is marked
// for recomputation.
func (t *Table) SetMWSP(m int) error {
	if m < -1 || m >= t.n {
		return fmt.Errorf("mwsp must be in [-1, %d), got %d: %w", t.n, m, ErrInvalidArgument)
	}

	t.m = m
	t.we = newPositionalWeigher(t.n, m)
	t.dirty.markAll()

	return nil
}

// SetDefer switches between eager and deferred weight recomputation. It
// never invalidates already-cached weights; it only changes the cost
// schedule of subsequent pushes.
func (t *Table) SetDefer(b bool) {
	t.defer_ = b
}

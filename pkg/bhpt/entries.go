package bhpt

import (
	"fmt"
	"math"
)

// Insert allocates a free entry, zero-fills its history, applies the
// optional initial state (oldest bit first, as a sequence of pushes), and
// returns its index.
//
// If the table is full: with AutoRemove disabled, returns ErrNoCapacity.
// With AutoRemove enabled, the lowest-weight valid entry is evicted (ties
// broken uniformly at random) and its index reused. A zero-capacity table
// always returns ErrNoCapacity, regardless of AutoRemove.
func (t *Table) Insert(initial []int) (int, error) {
	for _, b := range initial {
		if b != 0 && b != 1 {
			return 0, fmt.Errorf("initial state bit must be 0 or 1, got %d: %w", b, ErrInvalidArgument)
		}
	}

	e, ok := t.valid.popFree()
	if !ok {
		if t.capacity == 0 || !t.auto {
			return 0, ErrNoCapacity
		}

		victim, evictErr := t.evictLowestWeight()
		if evictErr != nil {
			return 0, evictErr
		}

		t.removeInternal(victim)
		e = victim
	}

	t.valid.setValid(e)
	t.hist.clear(e)

	for _, b := range initial {
		t.hist.shiftIn(e, b)
	}

	t.onEntryChanged(e)

	return e, nil
}

// Remove invalidates entry e, zeroing its history and cached weight. It is
// a no-op if e is already invalid.
//
// Returns ErrInvalidIndex if e is outside [0, Capacity).
func (t *Table) Remove(e int) error {
	if err := t.checkIndex(e); err != nil {
		return err
	}

	if !t.valid.isValid(e) {
		return nil
	}

	t.removeInternal(e)
	t.valid.pushFree(e)

	return nil
}

// removeInternal clears e's validity, history and cached weight, and
// marks the distribution stale. It does not touch the free-list; callers
// push e back onto it (Remove) or reuse it directly (auto-evict).
func (t *Table) removeInternal(e int) {
	t.valid.clearValid(e)
	t.hist.clear(e)
	t.weights[e] = 0
	t.dirty.clearEntry(e)
	t.dirty.stale = true
}

// evictLowestWeight recomputes any dirty weights, finds the set of valid
// entries at the minimum cached weight, and returns one chosen uniformly
// at random.
func (t *Table) evictLowestWeight() (int, error) {
	if t.dirty.stale {
		t.rebuildDistribution()
	}

	min := math.Inf(1)

	var candidates []int

	for e := range t.capacity {
		if !t.valid.isValid(e) {
			continue
		}

		w := t.weights[e]

		switch {
		case w < min:
			min = w
			candidates = candidates[:0]
			candidates = append(candidates, e)
		case w == min:
			candidates = append(candidates, e)
		}
	}

	if len(candidates) == 0 {
		return 0, ErrNoCapacity
	}

	pick := t.rng.IntN(len(candidates))

	return candidates[pick], nil
}

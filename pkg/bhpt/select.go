package bhpt

// rebuildDistribution recomputes every per-entry-dirty weight, then
// rebuilds the cumulative-weight array and total. Called lazily by
// Select, and only when the table-level stale flag is set.
//
// The recompute loop runs regardless of defer_: entries can be left
// per-entry-dirty by SetMWSP (which marks every entry dirty but never
// recomputes) or by a SetDefer(false) transition out of a deferred
// period, not just by pushes made while deferred.
func (t *Table) rebuildDistribution() {
	for e := range t.capacity {
		if !t.dirty.isEntryDirty(e) {
			continue
		}

		if t.valid.isValid(e) {
			t.weights[e] = t.we.weight(t.hist, e)
		} else {
			t.weights[e] = 0
		}

		t.dirty.clearEntry(e)
	}

	var sum float64

	t.cum[0] = 0

	for e := range t.capacity {
		w := t.weights[e]
		if !t.valid.isValid(e) {
			w = 0
		}

		sum += w
		t.cum[e+1] = sum
	}

	t.total = sum
	t.dirty.stale = false
	t.rebuildCount++
}

// Select draws a valid entry index, weighted by cached weight, using the
// table's own deterministic PRNG.
//
// Returns ErrNoSelectableEntry if the total weight across all valid
// entries is zero.
func (t *Table) Select() (int, error) {
	if t.dirty.stale {
		t.rebuildDistribution()
	}

	if t.total == 0 {
		return 0, ErrNoSelectableEntry
	}

	u := t.rng.Float64() * t.total
	t.drawCount++

	lo, hi := 0, t.capacity-1
	for lo < hi {
		mid := (lo + hi) / 2
		if t.cum[mid+1] > u {
			hi = mid
		} else {
			lo = mid + 1
		}
	}

	return lo, nil
}

// Weights returns a snapshot of current per-entry weights, recomputing any
// dirty ones first. Invalid entries read as 0.
func (t *Table) Weights() []float64 {
	if t.dirty.stale {
		t.rebuildDistribution()
	}

	out := make([]float64, t.capacity)

	for e := range t.capacity {
		if t.valid.isValid(e) {
			out[e] = t.weights[e]
		}
	}

	return out
}

package bhpt

// Export internal counters for testing.
// This file is only compiled during tests.

// DrawCountForTesting returns how many PRNG draws Select has performed
// since construction.
func (t *Table) DrawCountForTesting() int {
	return t.drawCount
}

// RebuildCountForTesting returns how many times the distribution cache
// has been rebuilt since construction.
func (t *Table) RebuildCountForTesting() int {
	return t.rebuildCount
}

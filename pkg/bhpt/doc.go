// Package bhpt provides a Binary History Probability Table: a fixed-capacity
// set of entries, each tracking a shift-register history of recent binary
// states, with weighted random selection of an entry biased toward entries
// with more recent 1-bits.
//
// # Basic Usage
//
//	table, err := bhpt.New(bhpt.Config{
//	    Capacity:          64,
//	    HistoryLength:     8,
//	    ConsiderationDepth: 8,
//	    MWSP:              -1,
//	})
//	if err != nil {
//	    // handle ErrInvalidArgument
//	}
//
//	index, err := table.Insert(nil)
//	table.Push(index, 1)
//
//	chosen, err := table.Select()
//	if errors.Is(err, bhpt.ErrNoSelectableEntry) {
//	    // no valid entry has nonzero weight
//	}
//
// # Concurrency
//
// A Table is not safe for concurrent use. It is a synchronous, single-
// threaded data structure with no internal goroutines or blocking points;
// callers sharing a Table across goroutines must provide their own mutual
// exclusion.
//
// # Error Handling
//
// Errors are sentinel values checked with [errors.Is]: [ErrNoCapacity],
// [ErrInvalidIndex], [ErrInvalidArgument], [ErrNoSelectableEntry]. None of
// them are fatal; each documents its own recovery path.
package bhpt

package bhpt_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/bhpt/pkg/bhpt"
)

// Test_HistoryOf_Crosses_Word_Boundary exercises a history length that
// does not divide evenly into 64-bit words, to catch off-by-one errors in
// the word/bit addressing.
func Test_HistoryOf_Crosses_Word_Boundary(t *testing.T) {
	t.Parallel()

	const l = 65

	table, err := bhpt.New(bhpt.Config{Capacity: 1, HistoryLength: l, MWSP: -1})
	require.NoError(t, err)

	index, err := table.Insert(nil)
	require.NoError(t, err)

	// Push l+3 bits; only the last l survive, position 0 = most recent.
	pushed := make([]int, l+3)
	for i := range pushed {
		pushed[i] = (i + 1) % 2
		require.NoError(t, table.Push(index, pushed[i]))
	}

	want := make([]int, l)
	for pos := range want {
		want[pos] = pushed[len(pushed)-1-pos]
	}

	got, err := table.HistoryOf(index)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func Test_Remove_Zeroes_History(t *testing.T) {
	t.Parallel()

	table, err := bhpt.New(bhpt.Config{Capacity: 1, HistoryLength: 4, MWSP: -1})
	require.NoError(t, err)

	index, err := table.Insert(nil)
	require.NoError(t, err)
	require.NoError(t, table.Push(index, 1))
	require.NoError(t, table.Push(index, 1))

	require.NoError(t, table.Remove(index))

	history, err := table.HistoryOf(index)
	require.NoError(t, err)
	require.Equal(t, []int{0, 0, 0, 0}, history)

	weights := table.Weights()
	require.Equal(t, 0.0, weights[index])
}

func Test_Insert_Applies_Initial_State_Oldest_First(t *testing.T) {
	t.Parallel()

	table, err := bhpt.New(bhpt.Config{Capacity: 1, HistoryLength: 4, MWSP: -1})
	require.NoError(t, err)

	index, err := table.Insert([]int{1, 0, 1})
	require.NoError(t, err)

	history, err := table.HistoryOf(index)
	require.NoError(t, err)

	// Pushed left-to-right (1 oldest, then 0, then 1 newest): position 0
	// is the last-pushed bit.
	require.Equal(t, []int{1, 0, 1, 0}, history)
}

func Test_Insert_Rejects_NonBinary_Initial_State(t *testing.T) {
	t.Parallel()

	table, err := bhpt.New(bhpt.Config{Capacity: 1, HistoryLength: 4})
	require.NoError(t, err)

	_, err = table.Insert([]int{0, 2})
	require.ErrorIs(t, err, bhpt.ErrInvalidArgument)
	require.Equal(t, 1, table.FreeCount(), "a rejected initial state must not consume a slot")
}

package bhpt

// Hardcoded implementation limits.
//
// These limits are intentionally generous; they exist primarily to keep
// arithmetic safely away from overflow boundaries and to bound resource
// usage for configurations the project does not test. All limit
// violations are treated as programming/configuration errors and return
// ErrInvalidArgument.
const (
	// maxCapacity bounds Capacity so capacity*historyLength bit counts and
	// the cumulative-weight array stay well inside int range.
	maxCapacity = 1 << 24

	// maxHistoryLength bounds HistoryLength for the same reason.
	maxHistoryLength = 1 << 20
)

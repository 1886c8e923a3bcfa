package tempo

// Priority orders compute-pool tasks. Higher priorities are fully drained
// before lower ones are considered: Critical before High before Low.
type Priority int

const (
	// Low priority runs last. Use for opportunistic background work such as
	// cache warming or speculative asset decoding.
	Low Priority = iota

	// High priority runs before Low. Use for work the next few ticks will
	// likely need.
	High

	// Critical priority runs first. Use for work the current tick is
	// waiting on.
	Critical

	// priorityCount is the total number of priorities.
	priorityCount
)

// String returns the string representation of the priority.
func (p Priority) String() string {
	switch p {
	case Low:
		return "Low"
	case High:
		return "High"
	case Critical:
		return "Critical"
	default:
		return "Unknown"
	}
}

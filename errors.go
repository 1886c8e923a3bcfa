package tempo

import (
	"errors"
	"fmt"
)

// ErrCancelled is returned from a checkpoint once the task's cancellation
// token has been set. Tasks propagate it with ordinary error returns; the
// compute pool treats a cancelled task as finished, not failed.
var ErrCancelled = errors.New("tempo: cancelled")

// ShutdownError reports that background tasks were still pending when the
// shutdown budget elapsed.
type ShutdownError struct {
	// Remaining is the number of tasks left in the pool.
	Remaining int
}

func (e *ShutdownError) Error() string {
	return fmt.Sprintf("tempo: shutdown budget exceeded with %d tasks pending", e.Remaining)
}

package tournament

import "time"

// Clock supplies the current time. Tournament expiry and rolling-window
// leaderboard pruning are driven entirely through this interface so tests can
// move time deterministically.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// NewSystemClock returns a Clock backed by the wall clock.
func NewSystemClock() Clock { return systemClock{} }

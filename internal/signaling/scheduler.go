package signaling

import "time"

// Timer is a pending delayed action.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d. The router uses it for post-completion
// room cleanup.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type clockScheduler struct{}

func (clockScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// pendingCleanup identifies one scheduled cleanup so a late firing can tell
// whether it was superseded.
type pendingCleanup struct {
	timer Timer
}

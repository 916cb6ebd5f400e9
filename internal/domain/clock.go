package domain

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// snapshotClock stamps Snapshot.ComputedAt. It is process-wide, so callers
// that swap it must not overlap with one another.
var snapshotClock = struct {
	sync.RWMutex
	c clockwork.Clock
}{c: clockwork.NewRealClock()}

// SetClock swaps the snapshot time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		c = clockwork.NewRealClock()
	}
	snapshotClock.Lock()
	snapshotClock.c = c
	snapshotClock.Unlock()
}

func now() time.Time {
	snapshotClock.RLock()
	defer snapshotClock.RUnlock()
	return snapshotClock.c.Now().UTC()
}

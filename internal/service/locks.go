package service

import "sync"

// tripLocks serializes spend-window transitions against expense writes on
// the same trip. The close sequence reads the expense snapshot, computes a
// plan, then writes settlements; an expense edit racing between the read
// and the write would let settlements materialize from a stale snapshot.
// Trips are independent units of work, so locking is keyed per trip and
// never crosses trips.
type tripLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newTripLocks() *tripLocks {
	return &tripLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for tripID, creating it on first use, and
// returns the unlock function.
func (t *tripLocks) Lock(tripID string) func() {
	t.mu.Lock()
	lock, ok := t.locks[tripID]
	if !ok {
		lock = &sync.Mutex{}
		t.locks[tripID] = lock
	}
	t.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

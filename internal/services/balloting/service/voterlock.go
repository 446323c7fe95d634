package service

import "sync"

// voterLocks hands out one mutex per normalized national id. Entries are
// reference-counted and dropped once the last holder unlocks, so the map
// does not grow with the electorate.
type voterLocks struct {
	mu      sync.Mutex
	entries map[string]*voterLockEntry
}

type voterLockEntry struct {
	mu   sync.Mutex
	refs int
}

func newVoterLocks() *voterLocks {
	return &voterLocks{entries: make(map[string]*voterLockEntry)}
}

// lock acquires the mutex for one voter and returns its release function.
func (l *voterLocks) lock(nationalID string) (unlock func()) {
	l.mu.Lock()
	entry, ok := l.entries[nationalID]
	if !ok {
		entry = &voterLockEntry{}
		l.entries[nationalID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.entries, nationalID)
		}
		l.mu.Unlock()
	}
}

package numbering

import "sync"

// EpochLocks serializes order-number allocation per epoch so two concurrent
// creations in the same window cannot read the same maximum. Creations in
// different epochs do not contend.
type EpochLocks struct {
	mu    sync.Mutex
	locks map[string]*epochLock
}

type epochLock struct {
	mu   sync.Mutex
	refs int
}

// Lock blocks until the epoch identified by key is free and returns the
// matching unlock function.
func (l *EpochLocks) Lock(key string) (unlock func()) {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*epochLock)
	}
	el, ok := l.locks[key]
	if !ok {
		el = &epochLock{}
		l.locks[key] = el
	}
	el.refs++
	l.mu.Unlock()

	el.mu.Lock()
	return func() {
		el.mu.Unlock()
		l.mu.Lock()
		el.refs--
		if el.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}

// Len returns the number of epochs currently held or awaited.
func (l *EpochLocks) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

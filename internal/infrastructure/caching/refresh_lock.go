// Package caching provides application-wide caching and related utilities.
package caching

import "sync"

// RefreshLock prevents thundering-herd background refreshes by ensuring only
// one refresh task runs for a given key at a time.
type RefreshLock struct {
	mu    sync.Mutex
	locks map[string]struct{}
}

// NewRefreshLock creates a new instance of a RefreshLock.
func NewRefreshLock() *RefreshLock {
	return &RefreshLock{locks: make(map[string]struct{})}
}

// TryLock attempts to acquire a lock for a given key. It returns true if the
// lock was acquired and false if it is already held. Non-blocking.
func (l *RefreshLock) TryLock(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.locks[key]; exists {
		return false
	}
	l.locks[key] = struct{}{}
	return true
}

// Unlock releases a lock for a given key. Call with defer in the goroutine
// that acquired the lock.
func (l *RefreshLock) Unlock(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.locks, key)
}

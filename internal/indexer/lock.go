package indexer

import "sync"

// tenantLocks provides non-blocking per-tenant lock semantics so two
// project runs for the same tenant cannot interleave their walks and
// sweeps. Runs for different tenants proceed independently.
type tenantLocks struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func newTenantLocks() *tenantLocks {
	return &tenantLocks{held: make(map[string]struct{})}
}

// TryAcquire attempts to acquire the lock for key without blocking.
// Returns true if the lock was successfully acquired, false otherwise.
func (l *tenantLocks) TryAcquire(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[key]; ok {
		return false
	}
	l.held[key] = struct{}{}
	return true
}

// Release releases the lock for key.
// Must only be called by the caller that successfully acquired it.
func (l *tenantLocks) Release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
}

package tokenx

import (
	"sync"
	"time"
)

// RevocationList is a process-wide set of revoked token IDs. Each entry
// carries the expiry of the token it belongs to: once the token itself can
// no longer verify there is no point remembering the revocation, so Sweep
// evicts entries past that time instead of blanket-clearing the set. A
// multi-instance deployment needs this behind a shared store; the type is
// deliberately narrow so an external implementation can replace it.
type RevocationList struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

// NewRevocationList returns an empty revocation list.
func NewRevocationList() *RevocationList {
	return &RevocationList{entries: make(map[string]time.Time)}
}

// Revoke marks a token ID as revoked until expiresAt. A zero expiry keeps
// the entry until explicitly swept with a later time.
func (l *RevocationList) Revoke(jti string, expiresAt time.Time) {
	if jti == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[jti] = expiresAt
}

// IsRevoked reports membership. Callers must check this after Verify
// succeeds; a verified-but-revoked token is unauthenticated.
func (l *RevocationList) IsRevoked(jti string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.entries[jti]
	return ok
}

// Sweep drops entries whose token expiry has passed and returns how many
// were evicted.
func (l *RevocationList) Sweep(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	evicted := 0
	for jti, expiresAt := range l.entries {
		if !expiresAt.IsZero() && now.After(expiresAt) {
			delete(l.entries, jti)
			evicted++
		}
	}
	return evicted
}

// Len returns the number of live entries.
func (l *RevocationList) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

package banksdk

import (
	"sync"
	"time"
)

// tokenStore holds the current credential pair. Reads never observe a
// half-written pair; writers compare-and-swap on a version counter so that
// racing refresh attempts install exactly one rotation.
type tokenStore struct {
	mu      sync.RWMutex
	cred    Credential
	present bool
	version uint64
}

// get returns the current credential, its version, and whether one is set.
func (s *tokenStore) get() (Credential, uint64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cred, s.version, s.present
}

// set installs a credential unconditionally and returns the new version.
// Used by the login flow, where there is no prior version to race against.
func (s *tokenStore) set(cred Credential) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = cred
	s.present = true
	s.version++
	return s.version
}

// installIfCurrent installs cred only if the store still holds the version
// the writer observed before refreshing. Returns false when another writer
// rotated first; the caller discards its now-stale result and re-reads.
func (s *tokenStore) installIfCurrent(cred Credential, observed uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.version != observed {
		return false
	}
	s.cred = cred
	s.present = true
	s.version++
	return true
}

// clear drops the credential. The version still advances so that any
// in-flight writer detects the change.
func (s *tokenStore) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = Credential{}
	s.present = false
	s.version++
}

// validAt reports whether a credential is present and not yet expired.
func (s *tokenStore) validAt(now time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.present && s.cred.ExpiresAt.After(now)
}

// expiry returns the current expiry instant, if a credential is present.
func (s *tokenStore) expiry() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.present {
		return time.Time{}, false
	}
	return s.cred.ExpiresAt, true
}

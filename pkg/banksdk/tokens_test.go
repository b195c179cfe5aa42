package banksdk

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTokenStoreSetAndGet(t *testing.T) {
	s := &tokenStore{}

	_, _, ok := s.get()
	require.False(t, ok)

	cred := Credential{AccessToken: "a1", RefreshToken: "r1", ExpiresAt: time.Now().Add(time.Hour)}
	v := s.set(cred)
	require.Equal(t, uint64(1), v)

	got, version, ok := s.get()
	require.True(t, ok)
	require.Equal(t, cred, got)
	require.Equal(t, uint64(1), version)
}

func TestTokenStoreInstallIfCurrent(t *testing.T) {
	s := &tokenStore{}
	s.set(Credential{AccessToken: "a1", RefreshToken: "r1"})

	_, version, _ := s.get()

	ok := s.installIfCurrent(Credential{AccessToken: "a2", RefreshToken: "r2"}, version)
	require.True(t, ok)

	// A second writer with the stale version loses.
	ok = s.installIfCurrent(Credential{AccessToken: "a3", RefreshToken: "r3"}, version)
	require.False(t, ok)

	got, _, _ := s.get()
	require.Equal(t, "a2", got.AccessToken)
	require.Equal(t, "r2", got.RefreshToken)
}

func TestTokenStoreConcurrentWritersOneWinner(t *testing.T) {
	s := &tokenStore{}
	s.set(Credential{AccessToken: "a1", RefreshToken: "r1"})
	_, version, _ := s.get()

	const writers = 16
	var wins int
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.installIfCurrent(Credential{AccessToken: "new"}, version) {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, wins)
}

func TestTokenStoreClearAdvancesVersion(t *testing.T) {
	s := &tokenStore{}
	s.set(Credential{AccessToken: "a1"})
	_, version, _ := s.get()

	s.clear()

	_, _, ok := s.get()
	require.False(t, ok)

	// An in-flight writer holding the pre-clear version must not
	// resurrect the credential.
	require.False(t, s.installIfCurrent(Credential{AccessToken: "stale"}, version))
	_, _, ok = s.get()
	require.False(t, ok)
}

func TestTokenStoreValidAt(t *testing.T) {
	now := time.Now()
	s := &tokenStore{}

	require.False(t, s.validAt(now))

	s.set(Credential{AccessToken: "a1", ExpiresAt: now.Add(time.Minute)})
	require.True(t, s.validAt(now))
	require.False(t, s.validAt(now.Add(time.Minute)), "expiry instant itself is invalid")
	require.False(t, s.validAt(now.Add(2*time.Minute)))
}

func TestTokenStoreExpiry(t *testing.T) {
	s := &tokenStore{}

	_, ok := s.expiry()
	require.False(t, ok)

	at := time.Now().Add(10 * time.Minute)
	s.set(Credential{AccessToken: "a1", ExpiresAt: at})

	got, ok := s.expiry()
	require.True(t, ok)
	require.Equal(t, at, got)
}

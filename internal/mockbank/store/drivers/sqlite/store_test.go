package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ledgerlane/comdirect/internal/mockbank/domain"
	"github.com/ledgerlane/comdirect/internal/mockbank/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=5000"
	s, err := NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func TestSessionRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created := domain.Session{
		ID:        "sess-1",
		UserID:    "user-1",
		CreatedAt: time.Now().Truncate(time.Second),
	}
	require.NoError(t, s.Sessions().CreateSession(ctx, created))

	got, err := s.Sessions().GetSession(ctx, "sess-1")
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)
	require.Equal(t, created.UserID, got.UserID)
	require.False(t, got.TANActive)

	require.NoError(t, s.Sessions().ActivateSession(ctx, "sess-1"))
	got, err = s.Sessions().GetSession(ctx, "sess-1")
	require.NoError(t, err)
	require.True(t, got.TANActive)
}

func TestSessionNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Sessions().GetSession(ctx, "nope")
	require.ErrorIs(t, err, store.ErrNotFound)

	err = s.Sessions().ActivateSession(ctx, "nope")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestChallengeRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Sessions().CreateSession(ctx, domain.Session{
		ID: "sess-1", UserID: "user-1", CreatedAt: time.Now(),
	}))

	now := time.Now().Truncate(time.Second)
	approveAt := now.Add(3 * time.Second)
	ch := domain.Challenge{
		ID:        "chal-1",
		SessionID: "sess-1",
		Kind:      domain.TANKindPush,
		Status:    domain.ChallengePending,
		CreatedAt: now,
		ExpiresAt: now.Add(2 * time.Minute),
		ApproveAt: &approveAt,
	}
	require.NoError(t, s.Challenges().CreateChallenge(ctx, ch))

	got, err := s.Challenges().GetChallenge(ctx, "chal-1")
	require.NoError(t, err)
	require.Equal(t, domain.ChallengePending, got.Status)
	require.NotNil(t, got.ApproveAt)
	require.Equal(t, approveAt.Unix(), got.ApproveAt.Unix())

	require.NoError(t, s.Challenges().UpdateChallengeStatus(ctx, "chal-1", domain.ChallengeAuthenticated))
	got, err = s.Challenges().GetChallenge(ctx, "chal-1")
	require.NoError(t, err)
	require.Equal(t, domain.ChallengeAuthenticated, got.Status)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Sessions().CreateSession(ctx, domain.Session{
		ID: "sess-1", UserID: "user-1", CreatedAt: time.Now(),
	}))

	now := time.Now().Truncate(time.Second)
	rt := domain.RefreshToken{
		ID:        "rt-1",
		UserID:    "user-1",
		SessionID: "sess-1",
		TokenHash: "hash-1",
		ExpiresAt: now.Add(24 * time.Hour),
		CreatedAt: now,
	}
	require.NoError(t, s.RefreshTokens().CreateRefreshToken(ctx, rt))

	got, err := s.RefreshTokens().GetRefreshTokenByHash(ctx, "hash-1")
	require.NoError(t, err)
	require.False(t, got.Revoked)
	require.Equal(t, "sess-1", got.SessionID)

	require.NoError(t, s.RefreshTokens().RevokeRefreshToken(ctx, "hash-1"))
	got, err = s.RefreshTokens().GetRefreshTokenByHash(ctx, "hash-1")
	require.NoError(t, err)
	require.True(t, got.Revoked)

	_, err = s.RefreshTokens().GetRefreshTokenByHash(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sentinel := errors.New("boom")
	err := s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Sessions().CreateSession(ctx, domain.Session{
			ID: "sess-1", UserID: "user-1", CreatedAt: time.Now(),
		}); err != nil {
			return err
		}
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	_, err = s.Sessions().GetSession(ctx, "sess-1")
	require.ErrorIs(t, err, store.ErrNotFound, "rolled back writes must not be visible")
}

func TestWithTxCommits(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.WithTx(ctx, func(tx store.Tx) error {
		return tx.Sessions().CreateSession(ctx, domain.Session{
			ID: "sess-1", UserID: "user-1", CreatedAt: time.Now(),
		})
	}))

	_, err := s.Sessions().GetSession(ctx, "sess-1")
	require.NoError(t, err)
}

func TestAccountsAndTransactions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	empty, err := s.Accounts().IsEmpty(ctx)
	require.NoError(t, err)
	require.True(t, empty)

	require.NoError(t, s.Accounts().CreateAccount(ctx, domain.Account{
		ID: "acct-1", HolderName: "Test User",
		BalanceValue: "100.00", BalanceUnit: "EUR", AvailableValue: "90.00",
	}))
	require.NoError(t, s.Accounts().CreateTransaction(ctx, domain.Transaction{
		ID: "t-1", AccountID: "acct-1", Reference: "REF-1",
		BookingStatus: "BOOKED", BookingDate: "2026-08-20",
		AmountValue: "-10.00", AmountUnit: "EUR",
	}))
	require.NoError(t, s.Accounts().CreateTransaction(ctx, domain.Transaction{
		ID: "t-2", AccountID: "acct-1", Reference: "REF-2",
		BookingStatus: "NOTBOOKED", BookingDate: "2026-08-22",
		AmountValue: "-5.00", AmountUnit: "EUR",
	}))

	accounts, err := s.Accounts().ListAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 1)

	empty, err = s.Accounts().IsEmpty(ctx)
	require.NoError(t, err)
	require.False(t, empty)

	txns, err := s.Accounts().ListTransactions(ctx, "acct-1")
	require.NoError(t, err)
	require.Len(t, txns, 2)
	require.Equal(t, "REF-2", txns[0].Reference, "newest first")

	_, err = s.Accounts().GetAccount(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

package store

import (
	"context"
	"errors"

	"github.com/ledgerlane/comdirect/internal/mockbank/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for
// now) implement this. Sub-repositories keep concerns tidy and stop
// callers from accidentally nesting transactions.
type Store interface {
	Sessions() Sessions
	Challenges() Challenges
	RefreshTokens() RefreshTokens
	Accounts() Accounts

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed. This is the
	// recommended way to run multi-step operations that must be atomic
	// (e.g. refresh token rotation).
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds
// Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Sessions interface {
	// CreateSession inserts a new session (id is provided by app via ULID).
	CreateSession(ctx context.Context, s domain.Session) error

	// GetSession returns a session by id.
	GetSession(ctx context.Context, id string) (domain.Session, error)

	// ActivateSession flips tan_active for a session.
	ActivateSession(ctx context.Context, id string) error
}

type Challenges interface {
	// CreateChallenge inserts a new challenge in PENDING state.
	CreateChallenge(ctx context.Context, c domain.Challenge) error

	// GetChallenge returns a challenge by id.
	GetChallenge(ctx context.Context, id string) (domain.Challenge, error)

	// UpdateChallengeStatus moves a challenge to a new status.
	UpdateChallengeStatus(ctx context.Context, id, status string) error
}

type RefreshTokens interface {
	// CreateRefreshToken stores a new refresh token record.
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// GetRefreshTokenByHash returns the token by its SHA-256 fingerprint.
	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)

	// RevokeRefreshToken flips revoked=1 for the given fingerprint.
	RevokeRefreshToken(ctx context.Context, hash string) error

	// DeleteExpiredRefreshTokens is optional housekeeping.
	DeleteExpiredRefreshTokens(ctx context.Context) error
}

type Accounts interface {
	// CreateAccount inserts a seeded account.
	CreateAccount(ctx context.Context, a domain.Account) error

	// CreateTransaction inserts a seeded transaction.
	CreateTransaction(ctx context.Context, t domain.Transaction) error

	// GetAccount returns an account by id.
	GetAccount(ctx context.Context, id string) (domain.Account, error)

	// ListAccounts returns all accounts ordered by id.
	ListAccounts(ctx context.Context) ([]domain.Account, error)

	// ListTransactions returns an account's transactions, newest first.
	ListTransactions(ctx context.Context, accountID string) ([]domain.Transaction, error)

	// IsEmpty returns true if there are no accounts (seed trigger).
	IsEmpty(ctx context.Context) (bool, error)
}

// Package domain holds the mock bank's persisted entity types.
package domain

import "time"

// TAN challenge kinds, mirroring the values the real API reports in the
// x-once-authentication-info header.
const (
	TANKindPush  = "P_TAN_PUSH"
	TANKindPhoto = "P_TAN"
	TANKindSMS   = "M_TAN"
)

// Challenge lifecycle statuses as surfaced by the poll endpoint.
const (
	ChallengePending       = "PENDING"
	ChallengeAuthenticated = "AUTHENTICATED"
	ChallengeCancelled     = "CANCELLED"
	ChallengeExpired       = "EXPIRED"
)

// Session is a banking session created by the password grant. TANActive
// flips once the session has been activated with an approved challenge.
type Session struct {
	ID        string
	UserID    string
	TANActive bool
	CreatedAt time.Time
}

// Challenge is a pending or settled TAN challenge for a session.
// ApproveAt, when set, is the instant a push challenge self-approves.
type Challenge struct {
	ID        string
	SessionID string
	Kind      string
	Status    string
	CreatedAt time.Time
	ExpiresAt time.Time
	ApproveAt *time.Time
}

// RefreshToken stores the fingerprint of an issued refresh token. Raw
// token values never touch the database.
type RefreshToken struct {
	ID        string
	UserID    string
	SessionID string
	TokenHash string
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
}

// TokenPair is what a successful token grant hands back. RefreshToken is
// empty for the primary (two-factor) token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
}

// Account is a seeded bank account with its current balance.
type Account struct {
	ID             string
	HolderName     string
	BalanceValue   string
	BalanceUnit    string
	AvailableValue string
}

// Transaction is one booked or pending movement on an account.
type Transaction struct {
	ID              string
	AccountID       string
	Reference       string
	BookingStatus   string
	BookingDate     string
	AmountValue     string
	AmountUnit      string
	Remitter        string
	Creditor        string
	TransactionType string
	RemittanceInfo  string
}

// Package service holds the mock bank's business logic, one service per
// concern: token grants, TAN challenges, session activation, banking data.
package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/ledgerlane/comdirect/internal/mockbank/domain"
	"github.com/ledgerlane/comdirect/internal/mockbank/store"
	"github.com/ledgerlane/comdirect/pkg/cryptox"
	"github.com/ledgerlane/comdirect/pkg/idx"
	"github.com/ledgerlane/comdirect/pkg/jwtx"
	"github.com/ledgerlane/comdirect/pkg/slogx"
)

var (
	ErrInvalidCredentials   = errors.New("invalid_credentials")
	ErrInvalidClient        = errors.New("invalid_client")
	ErrInvalidGrant         = errors.New("invalid_grant")
	ErrInvalidRefresh       = errors.New("invalid_refresh_token")
	ErrSessionNotActivated  = errors.New("session_not_activated")
	ErrChallengeNotApproved = errors.New("challenge_not_approved")
	ErrChallengeSettled     = errors.New("challenge_already_settled")
	ErrInvalidTOTP          = errors.New("invalid_totp_code")
	ErrInvalidBookingStatus = errors.New("invalid_booking_status")
)

// TokenService implements the three /oauth/token grants. There is a
// single configured user and OAuth client, like a personal comdirect
// API registration.
type TokenService struct {
	Store  store.Store
	Signer *jwtx.HS256

	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	ClientID     string
	ClientSecret string
	Username     string
	PasswordHash string // argon2id PHC string
}

// PasswordGrant is the first leg of the login flow. It opens a fresh,
// not-yet-TAN-activated session and mints a primary access token bound
// to it. No refresh token is issued at this stage.
func (s *TokenService) PasswordGrant(
	ctx context.Context,
	clientID, clientSecret, username, password string,
) (*domain.TokenPair, error) {
	if err := s.checkClient(clientID, clientSecret); err != nil {
		return nil, err
	}

	if subtle.ConstantTimeCompare([]byte(username), []byte(s.Username)) != 1 {
		// Burn a hash check anyway so unknown users cost as much as bad
		// passwords.
		_ = cryptox.VerifyPassword(password, s.PasswordHash)
		return nil, ErrInvalidCredentials
	}
	if err := cryptox.VerifyPassword(password, s.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	now := time.Now()
	session := domain.Session{
		ID:        idx.New().String(),
		UserID:    s.Username,
		CreatedAt: now,
	}
	if err := s.Store.Sessions().CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	access, err := s.Signer.Sign(jwtx.NewAccessClaims(
		s.Username, session.ID, []string{jwtx.ScopeTwoFactor}, s.Issuer, s.AccessTTL, now,
	))
	if err != nil {
		return nil, err
	}

	slogx.FromContext(ctx).Info("password grant issued", "session", session.ID)
	return &domain.TokenPair{AccessToken: access, ExpiresIn: s.AccessTTL}, nil
}

// SecondaryGrant exchanges a primary token whose session has been
// TAN-activated for a banking-scoped access/refresh pair.
func (s *TokenService) SecondaryGrant(
	ctx context.Context,
	clientID, clientSecret, primaryToken string,
) (*domain.TokenPair, error) {
	if err := s.checkClient(clientID, clientSecret); err != nil {
		return nil, err
	}

	claims, err := s.Signer.Parse(primaryToken)
	if err != nil {
		return nil, ErrInvalidGrant
	}
	if !claims.HasScope(jwtx.ScopeTwoFactor) {
		return nil, ErrInvalidGrant
	}

	session, err := s.Store.Sessions().GetSession(ctx, claims.SID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidGrant
		}
		return nil, err
	}
	if !session.TANActive {
		return nil, ErrSessionNotActivated
	}

	pair, err := s.mintBankingPair(ctx, s.Store, session.ID)
	if err != nil {
		return nil, err
	}

	slogx.FromContext(ctx).Info("secondary grant issued", "session", session.ID)
	return pair, nil
}

// RefreshGrant rotates a refresh token: the presented token is revoked
// and its replacement stored inside the same transaction, so a rotated
// token can never be replayed.
func (s *TokenService) RefreshGrant(
	ctx context.Context,
	clientID, clientSecret, refreshToken string,
) (*domain.TokenPair, error) {
	if err := s.checkClient(clientID, clientSecret); err != nil {
		return nil, err
	}

	hash := cryptox.FingerprintToken(refreshToken)

	var pair *domain.TokenPair
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		record, err := tx.RefreshTokens().GetRefreshTokenByHash(ctx, hash)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidRefresh
			}
			return err
		}
		if record.Revoked || time.Now().After(record.ExpiresAt) {
			return ErrInvalidRefresh
		}

		if err := tx.RefreshTokens().RevokeRefreshToken(ctx, hash); err != nil {
			return err
		}

		pair, err = s.mintBankingPair(ctx, tx, record.SessionID)
		return err
	})
	if err != nil {
		return nil, err
	}

	slogx.FromContext(ctx).Info("refresh grant rotated")
	return pair, nil
}

// mintBankingPair mints a banking-scoped access token plus a fresh opaque
// refresh token, storing only the refresh token's fingerprint.
func (s *TokenService) mintBankingPair(ctx context.Context, st store.Store, sessionID string) (*domain.TokenPair, error) {
	now := time.Now()

	access, err := s.Signer.Sign(jwtx.NewAccessClaims(
		s.Username, sessionID, []string{jwtx.ScopeBanking}, s.Issuer, s.AccessTTL, now,
	))
	if err != nil {
		return nil, err
	}

	refresh, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}
	record := domain.RefreshToken{
		ID:        idx.New().String(),
		UserID:    s.Username,
		SessionID: sessionID,
		TokenHash: cryptox.FingerprintToken(refresh),
		ExpiresAt: now.Add(s.RefreshTTL),
		CreatedAt: now,
	}
	if err := st.RefreshTokens().CreateRefreshToken(ctx, record); err != nil {
		return nil, fmt.Errorf("storing refresh token: %w", err)
	}

	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    s.AccessTTL,
	}, nil
}

func (s *TokenService) checkClient(clientID, clientSecret string) error {
	idOK := subtle.ConstantTimeCompare([]byte(clientID), []byte(s.ClientID)) == 1
	secretOK := subtle.ConstantTimeCompare([]byte(clientSecret), []byte(s.ClientSecret)) == 1
	if !idOK || !secretOK {
		return ErrInvalidClient
	}
	return nil
}

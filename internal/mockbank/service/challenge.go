package service

import (
	"context"
	"errors"
	"time"

	"github.com/pquerna/otp/totp"

	"github.com/ledgerlane/comdirect/internal/mockbank/domain"
	"github.com/ledgerlane/comdirect/internal/mockbank/store"
	"github.com/ledgerlane/comdirect/pkg/idx"
	"github.com/ledgerlane/comdirect/pkg/slogx"
)

// ChallengeService manages TAN challenges. Push challenges self-approve
// after ApproveDelay, imitating a user tapping the notification; photo
// and SMS challenges wait for the admin approve/deny endpoints.
type ChallengeService struct {
	Store store.Store

	// Kind is the TAN kind handed out for new challenges.
	Kind string

	// ApproveDelay is how long a push challenge stays PENDING before it
	// self-approves. Ignored for non-push kinds.
	ApproveDelay time.Duration

	// TTL bounds a challenge's life; past it the poll reports EXPIRED.
	TTL time.Duration

	// TANSecret, when set, requires a valid TOTP code on manual approval.
	TANSecret string
}

// Create opens a PENDING challenge for the session.
func (s *ChallengeService) Create(ctx context.Context, sessionID string) (domain.Challenge, error) {
	if _, err := s.Store.Sessions().GetSession(ctx, sessionID); err != nil {
		return domain.Challenge{}, err
	}

	now := time.Now()
	ch := domain.Challenge{
		ID:        idx.New().String(),
		SessionID: sessionID,
		Kind:      s.Kind,
		Status:    domain.ChallengePending,
		CreatedAt: now,
		ExpiresAt: now.Add(s.TTL),
	}
	if ch.Kind == domain.TANKindPush {
		approveAt := now.Add(s.ApproveDelay)
		ch.ApproveAt = &approveAt
	}

	if err := s.Store.Challenges().CreateChallenge(ctx, ch); err != nil {
		return domain.Challenge{}, err
	}

	slogx.FromContext(ctx).Info("challenge created",
		"challenge", ch.ID, "kind", ch.Kind, "session", sessionID)
	return ch, nil
}

// Status reads a challenge, applying time-driven transitions lazily:
// expiry first, then push self-approval.
func (s *ChallengeService) Status(ctx context.Context, id string) (domain.Challenge, error) {
	ch, err := s.Store.Challenges().GetChallenge(ctx, id)
	if err != nil {
		return domain.Challenge{}, err
	}
	if ch.Status != domain.ChallengePending {
		return ch, nil
	}

	now := time.Now()
	switch {
	case now.After(ch.ExpiresAt):
		ch.Status = domain.ChallengeExpired
	case ch.ApproveAt != nil && !now.Before(*ch.ApproveAt):
		ch.Status = domain.ChallengeAuthenticated
	default:
		return ch, nil
	}

	if err := s.Store.Challenges().UpdateChallengeStatus(ctx, ch.ID, ch.Status); err != nil {
		return domain.Challenge{}, err
	}
	return ch, nil
}

// Approve settles a PENDING challenge as AUTHENTICATED. When a TAN
// secret is configured the caller must supply a valid TOTP code.
func (s *ChallengeService) Approve(ctx context.Context, id, totpCode string) error {
	if s.TANSecret != "" && !totp.Validate(totpCode, s.TANSecret) {
		return ErrInvalidTOTP
	}
	return s.settle(ctx, id, domain.ChallengeAuthenticated)
}

// Deny settles a PENDING challenge as CANCELLED.
func (s *ChallengeService) Deny(ctx context.Context, id string) error {
	return s.settle(ctx, id, domain.ChallengeCancelled)
}

func (s *ChallengeService) settle(ctx context.Context, id, status string) error {
	ch, err := s.Status(ctx, id)
	if err != nil {
		return err
	}
	if ch.Status != domain.ChallengePending {
		return ErrChallengeSettled
	}

	if err := s.Store.Challenges().UpdateChallengeStatus(ctx, id, status); err != nil {
		return err
	}
	slogx.FromContext(ctx).Info("challenge settled", "challenge", id, "status", status)
	return nil
}

// SessionService covers session lookup and TAN activation.
type SessionService struct {
	Store store.Store
}

// Get returns the session by id.
func (s *SessionService) Get(ctx context.Context, id string) (domain.Session, error) {
	return s.Store.Sessions().GetSession(ctx, id)
}

// Activate marks the session TAN-active, provided the named challenge
// belongs to it and has been approved.
func (s *SessionService) Activate(ctx context.Context, sessionID, challengeID string) error {
	ch, err := s.Store.Challenges().GetChallenge(ctx, challengeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrChallengeNotApproved
		}
		return err
	}
	if ch.SessionID != sessionID || ch.Status != domain.ChallengeAuthenticated {
		return ErrChallengeNotApproved
	}

	if err := s.Store.Sessions().ActivateSession(ctx, sessionID); err != nil {
		return err
	}
	slogx.FromContext(ctx).Info("session activated", "session", sessionID)
	return nil
}

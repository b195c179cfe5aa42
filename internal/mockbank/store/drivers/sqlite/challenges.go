package sqlite

import (
	"context"
	"database/sql"

	"github.com/ledgerlane/comdirect/internal/mockbank/domain"
	"github.com/ledgerlane/comdirect/internal/mockbank/store"
)

type challengesRepo struct {
	h dbtx
}

func (r *challengesRepo) CreateChallenge(ctx context.Context, c domain.Challenge) error {
	_, err := r.h.ExecContext(ctx, `
		INSERT INTO challenges (id, session_id, kind, status, created_at, expires_at, approve_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.SessionID, c.Kind, c.Status,
		toUnix(c.CreatedAt), toUnix(c.ExpiresAt), toNullUnix(c.ApproveAt),
	)
	return err
}

func (r *challengesRepo) GetChallenge(ctx context.Context, id string) (domain.Challenge, error) {
	row := r.h.QueryRowContext(ctx, `
		SELECT id, session_id, kind, status, created_at, expires_at, approve_at
		FROM challenges WHERE id = ?`, id)

	var (
		c         domain.Challenge
		createdAt int64
		expiresAt int64
		approveAt sql.NullInt64
	)
	if err := row.Scan(&c.ID, &c.SessionID, &c.Kind, &c.Status, &createdAt, &expiresAt, &approveAt); err != nil {
		return domain.Challenge{}, mapNotFound(err)
	}
	c.CreatedAt = fromUnix(createdAt)
	c.ExpiresAt = fromUnix(expiresAt)
	c.ApproveAt = fromNullUnix(approveAt)
	return c, nil
}

func (r *challengesRepo) UpdateChallengeStatus(ctx context.Context, id, status string) error {
	res, err := r.h.ExecContext(ctx,
		`UPDATE challenges SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

// requireRowAffected maps an UPDATE that touched nothing to ErrNotFound.
func requireRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

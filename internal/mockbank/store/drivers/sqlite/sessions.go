package sqlite

import (
	"context"

	"github.com/ledgerlane/comdirect/internal/mockbank/domain"
)

type sessionsRepo struct {
	h dbtx
}

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	_, err := r.h.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, tan_active, created_at)
		VALUES (?, ?, ?, ?)`,
		s.ID, s.UserID, boolToInt(s.TANActive), toUnix(s.CreatedAt),
	)
	return err
}

func (r *sessionsRepo) GetSession(ctx context.Context, id string) (domain.Session, error) {
	row := r.h.QueryRowContext(ctx, `
		SELECT id, user_id, tan_active, created_at
		FROM sessions WHERE id = ?`, id)

	var (
		s         domain.Session
		tanActive int64
		createdAt int64
	)
	if err := row.Scan(&s.ID, &s.UserID, &tanActive, &createdAt); err != nil {
		return domain.Session{}, mapNotFound(err)
	}
	s.TANActive = tanActive != 0
	s.CreatedAt = fromUnix(createdAt)
	return s, nil
}

func (r *sessionsRepo) ActivateSession(ctx context.Context, id string) error {
	res, err := r.h.ExecContext(ctx,
		`UPDATE sessions SET tan_active = 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

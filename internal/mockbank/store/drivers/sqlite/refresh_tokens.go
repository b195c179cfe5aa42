package sqlite

import (
	"context"

	"github.com/ledgerlane/comdirect/internal/mockbank/domain"
)

type refreshTokensRepo struct {
	h dbtx
}

func (r *refreshTokensRepo) CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	_, err := r.h.ExecContext(ctx, `
		INSERT INTO refresh_tokens (id, user_id, session_id, token_hash, expires_at, revoked, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.SessionID, t.TokenHash,
		toUnix(t.ExpiresAt), boolToInt(t.Revoked), toUnix(t.CreatedAt),
	)
	return err
}

func (r *refreshTokensRepo) GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error) {
	row := r.h.QueryRowContext(ctx, `
		SELECT id, user_id, session_id, token_hash, expires_at, revoked, created_at
		FROM refresh_tokens WHERE token_hash = ?`, hash)

	var (
		t         domain.RefreshToken
		expiresAt int64
		revoked   int64
		createdAt int64
	)
	if err := row.Scan(&t.ID, &t.UserID, &t.SessionID, &t.TokenHash, &expiresAt, &revoked, &createdAt); err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}
	t.ExpiresAt = fromUnix(expiresAt)
	t.Revoked = revoked != 0
	t.CreatedAt = fromUnix(createdAt)
	return t, nil
}

func (r *refreshTokensRepo) RevokeRefreshToken(ctx context.Context, hash string) error {
	res, err := r.h.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked = 1 WHERE token_hash = ?`, hash)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *refreshTokensRepo) DeleteExpiredRefreshTokens(ctx context.Context) error {
	_, err := r.h.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE expires_at < unixepoch()`)
	return err
}

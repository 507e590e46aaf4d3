package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vibast-solutions/ms-go-users/app/entity"
)

// RefreshTokenRepository keeps at most one refresh token per user in MySQL.
type RefreshTokenRepository struct {
	db  DBTX
	now func() time.Time
}

func NewRefreshTokenRepository(db DBTX) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db, now: time.Now}
}

func (r *RefreshTokenRepository) WithTx(tx *sql.Tx) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: tx, now: r.now}
}

// Save replaces whatever token the user had before.
func (r *RefreshTokenRepository) Save(ctx context.Context, userID, token string) error {
	query := `
		INSERT INTO refresh_tokens (user_id, refresh_token, updated_at)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE refresh_token = VALUES(refresh_token), updated_at = VALUES(updated_at)
	`
	_, err := r.db.ExecContext(ctx, query, userID, token, r.now())
	return err
}

func (r *RefreshTokenRepository) FindByToken(ctx context.Context, token string) (*entity.RefreshToken, error) {
	query := `
		SELECT user_id, refresh_token, updated_at
		FROM refresh_tokens WHERE refresh_token = ?
	`
	rt := &entity.RefreshToken{}
	err := r.db.QueryRowContext(ctx, query, token).Scan(
		&rt.UserID,
		&rt.Token,
		&rt.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	// the column collation must not widen the match
	if rt.Token != token {
		return nil, nil
	}
	return rt, nil
}

// DeleteByToken removes the record holding token and returns it, or nil when
// no record matched.
func (r *RefreshTokenRepository) DeleteByToken(ctx context.Context, token string) (*entity.RefreshToken, error) {
	rt, err := r.FindByToken(ctx, token)
	if err != nil || rt == nil {
		return nil, err
	}

	query := `DELETE FROM refresh_tokens WHERE user_id = ? AND refresh_token = ?`
	result, err := r.db.ExecContext(ctx, query, rt.UserID, rt.Token)
	if err != nil {
		return nil, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, nil
	}
	return rt, nil
}

func (r *RefreshTokenRepository) DeleteByUserID(ctx context.Context, userID string) error {
	query := `DELETE FROM refresh_tokens WHERE user_id = ?`
	_, err := r.db.ExecContext(ctx, query, userID)
	return err
}

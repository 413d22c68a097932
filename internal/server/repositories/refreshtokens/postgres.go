// Package refreshtokens provides a PostgreSQL-backed repository for the
// rotating refresh tokens of the identity service. Only token hashes are
// stored.
package refreshtokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/medtrack/internal/common"
	"github.com/dmitrijs2005/medtrack/internal/dbx"
	"github.com/dmitrijs2005/medtrack/internal/server/models"
)

// PostgresRepository works over dbx.DBTX (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create stores tokenHash for userID, expiring at now+validity.
func (r *PostgresRepository) Create(ctx context.Context, userID, tokenHash string, signedInAt time.Time, validity time.Duration) error {
	query := `
		INSERT INTO refresh_tokens (user_id, token_hash, signed_in_at, expires_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.db.ExecContext(ctx, query, userID, tokenHash, signedInAt, time.Now().Add(validity)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Find returns the row for tokenHash or common.ErrorNotFound.
func (r *PostgresRepository) Find(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	query := `
		SELECT user_id, signed_in_at, expires_at
		FROM refresh_tokens
		WHERE token_hash = $1
	`
	t := &models.RefreshToken{TokenHash: tokenHash}
	if err := r.db.QueryRowContext(ctx, query, tokenHash).Scan(&t.UserID, &t.SignedInAt, &t.Expires); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, tokenHash string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE token_hash = $1`, tokenHash); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// DeleteForUser revokes every session of userID, e.g. after a password change.
func (r *PostgresRepository) DeleteForUser(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

package actiontokens

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

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, t *models.ActionToken) error {
	query := `
		INSERT INTO action_tokens (token_hash, purpose, user_id, subject, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.db.ExecContext(ctx, query, t.TokenHash, t.Purpose, t.UserID, t.Subject, t.ExpiresAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Consume(ctx context.Context, tokenHash, purpose string, now time.Time) (*models.ActionToken, error) {
	query := `
		UPDATE action_tokens SET used_at = $3
		WHERE token_hash = $1 AND purpose = $2 AND used_at IS NULL AND expires_at > $3
		RETURNING user_id, subject, expires_at
	`
	t := &models.ActionToken{TokenHash: tokenHash, Purpose: purpose, UsedAt: &now}
	err := r.db.QueryRowContext(ctx, query, tokenHash, purpose, now).Scan(&t.UserID, &t.Subject, &t.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

package challenges

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

// PostgresRepository implements both PhoneRepository and FederatedRepository.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreatePhone(ctx context.Context, c *models.PhoneChallenge) error {
	query := `INSERT INTO phone_challenges (id, phone_number, code_hash, attempts, expires_at) VALUES ($1, $2, $3, $4, $5)`
	return r.exec(ctx, query, c.ID, c.PhoneNumber, c.CodeHash, c.Attempts, c.ExpiresAt)
}

func (r *PostgresRepository) GetPhone(ctx context.Context, id string) (*models.PhoneChallenge, error) {
	query := `SELECT id, phone_number, code_hash, attempts, expires_at FROM phone_challenges WHERE id = $1`
	c := &models.PhoneChallenge{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.PhoneNumber, &c.CodeHash, &c.Attempts, &c.ExpiresAt)
	if err != nil {
		return nil, wrap(err)
	}
	return c, nil
}

func (r *PostgresRepository) IncrementAttempts(ctx context.Context, id string) error {
	return r.exec(ctx, `UPDATE phone_challenges SET attempts = attempts + 1 WHERE id = $1`, id)
}

func (r *PostgresRepository) DeletePhone(ctx context.Context, id string) error {
	return r.exec(ctx, `DELETE FROM phone_challenges WHERE id = $1`, id)
}

func (r *PostgresRepository) CreateFederated(ctx context.Context, s *models.FederatedState) error {
	query := `INSERT INTO federated_states (state, nonce, code_verifier, expires_at) VALUES ($1, $2, $3, $4)`
	return r.exec(ctx, query, s.State, s.Nonce, s.CodeVerifier, s.ExpiresAt)
}

func (r *PostgresRepository) GetFederated(ctx context.Context, state string) (*models.FederatedState, error) {
	query := `SELECT state, nonce, code_verifier, user_id, completed, expires_at FROM federated_states WHERE state = $1`
	s := &models.FederatedState{}
	var userID sql.NullString
	err := r.db.QueryRowContext(ctx, query, state).Scan(&s.State, &s.Nonce, &s.CodeVerifier, &userID, &s.Completed, &s.ExpiresAt)
	if err != nil {
		return nil, wrap(err)
	}
	s.UserID = userID.String
	return s, nil
}

func (r *PostgresRepository) CompleteFederated(ctx context.Context, state, userID string) error {
	return r.exec(ctx, `UPDATE federated_states SET user_id = $2, completed = TRUE WHERE state = $1`, state, userID)
}

func (r *PostgresRepository) DeleteFederated(ctx context.Context, state string) error {
	return r.exec(ctx, `DELETE FROM federated_states WHERE state = $1`, state)
}

// DeleteExpired sweeps abandoned phone and federated flows.
func (r *PostgresRepository) DeleteExpired(ctx context.Context, now time.Time) error {
	if err := r.exec(ctx, `DELETE FROM phone_challenges WHERE expires_at < $1`, now); err != nil {
		return err
	}
	return r.exec(ctx, `DELETE FROM federated_states WHERE expires_at < $1`, now)
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) error {
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func wrap(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrorNotFound
	}
	return fmt.Errorf("db error: %w", err)
}

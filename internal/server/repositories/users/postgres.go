package users

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

const selectUser = `SELECT id, email, email_verified, password_hash, phone_number, display_name,
       photo_url, provider, provider_subject, failed_sign_ins, last_failed_at, created_at
  FROM users`

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := `INSERT INTO users (email, email_verified, password_hash, phone_number, display_name, photo_url, provider, provider_subject)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		nullable(user.Email), user.EmailVerified, user.PasswordHash, nullable(user.PhoneNumber),
		user.DisplayName, user.PhotoURL, user.Provider, user.ProviderSubject,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, selectUser+` WHERE id = $1`, id)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, selectUser+` WHERE lower(email) = lower($1)`, email)
}

func (r *PostgresRepository) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	return r.getOne(ctx, selectUser+` WHERE phone_number = $1`, phone)
}

func (r *PostgresRepository) GetByProviderSubject(ctx context.Context, provider, subject string) (*models.User, error) {
	return r.getOne(ctx, selectUser+` WHERE provider = $1 AND provider_subject = $2`, provider, subject)
}

func (r *PostgresRepository) MarkEmailVerified(ctx context.Context, id string) error {
	return r.execOne(ctx, `UPDATE users SET email_verified = TRUE WHERE id = $1`, id)
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id string, hash []byte) error {
	return r.execOne(ctx, `UPDATE users SET password_hash = $2, failed_sign_ins = 0, last_failed_at = NULL WHERE id = $1`, id, hash)
}

func (r *PostgresRepository) UpdateProfile(ctx context.Context, id, displayName, photoURL string) error {
	return r.execOne(ctx, `UPDATE users SET display_name = $2, photo_url = $3 WHERE id = $1`, id, displayName, photoURL)
}

// RecordFailedSignIn bumps the failure counter and returns its new value.
// A failure older than window restarts the count at 1.
func (r *PostgresRepository) RecordFailedSignIn(ctx context.Context, id string, at time.Time, window time.Duration) (int, error) {
	query := `UPDATE users
   SET failed_sign_ins = CASE WHEN last_failed_at IS NULL OR last_failed_at < $3 THEN 1 ELSE failed_sign_ins + 1 END,
       last_failed_at = $2
 WHERE id = $1
RETURNING failed_sign_ins`

	var n int
	if err := r.db.QueryRowContext(ctx, query, id, at, at.Add(-window)).Scan(&n); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrorNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) ResetFailedSignIns(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE users SET failed_sign_ins = 0, last_failed_at = NULL WHERE id = $1`, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, args ...any) (*models.User, error) {
	var (
		u            models.User
		email, phone sql.NullString
		lastFailed   sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&u.ID, &email, &u.EmailVerified, &u.PasswordHash, &phone, &u.DisplayName,
		&u.PhotoURL, &u.Provider, &u.ProviderSubject, &u.FailedSignIns, &lastFailed, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	u.Email = email.String
	u.PhoneNumber = phone.String
	if lastFailed.Valid {
		t := lastFailed.Time
		u.LastFailedAt = &t
	}
	return &u, nil
}

func (r *PostgresRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

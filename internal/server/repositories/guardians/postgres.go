package guardians

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

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

const selectGuardian = `SELECT id, owner_id, email, permissions, status FROM guardians`

type scanner interface {
	Scan(dest ...any) error
}

func scanGuardian(s scanner) (*models.Guardian, error) {
	var (
		g     models.Guardian
		perms []byte
	)
	if err := s.Scan(&g.ID, &g.OwnerID, &g.Email, &perms, &g.Status); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(perms, &g.Permissions); err != nil {
		return nil, fmt.Errorf("decode permissions: %w", err)
	}
	return &g, nil
}

// Create fails with common.ErrorAlreadyExists when the owner already invited email.
func (r *PostgresRepository) Create(ctx context.Context, g *models.Guardian) (*models.Guardian, error) {
	perms := g.Permissions
	if perms == nil {
		perms = []models.Permission{}
	}
	b, err := json.Marshal(perms)
	if err != nil {
		return nil, fmt.Errorf("encode permissions: %w", err)
	}

	query := `INSERT INTO guardians (owner_id, email, permissions, status) VALUES ($1, $2, $3, $4) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query, g.OwnerID, g.Email, string(b), g.Status).Scan(&g.ID); err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return g, nil
}

func (r *PostgresRepository) Get(ctx context.Context, ownerID, id string) (*models.Guardian, error) {
	g, err := scanGuardian(r.db.QueryRowContext(ctx, selectGuardian+` WHERE owner_id = $1 AND id = $2`, ownerID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return g, nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Guardian, error) {
	rows, err := r.db.QueryContext(ctx, selectGuardian+` WHERE owner_id = $1 ORDER BY created_at, id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.Guardian, 0)
	for rows.Next() {
		g, err := scanGuardian(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Activate(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE guardians SET status = $3 WHERE owner_id = $1 AND id = $2`, ownerID, id, models.GuardianActive)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("db error: %w", err)
	} else if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

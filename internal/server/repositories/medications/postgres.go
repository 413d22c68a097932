package medications

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

const selectMedication = `SELECT id, owner_id, name, dosage, times, repeat, start_date, end_date,
       status, image_url, image_path, updated_at
  FROM medications`

type scanner interface {
	Scan(dest ...any) error
}

func scanMedication(s scanner) (*models.Medication, error) {
	var (
		m     models.Medication
		times []byte
		end   sql.NullTime
	)
	err := s.Scan(&m.ID, &m.OwnerID, &m.Name, &m.Dosage, &times, &m.Repeat, &m.StartDate, &end,
		&m.Status, &m.ImageURL, &m.ImagePath, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(times, &m.Times); err != nil {
		return nil, fmt.Errorf("decode times: %w", err)
	}
	if end.Valid {
		t := end.Time
		m.EndDate = &t
	}
	return &m, nil
}

func encodeTimes(times []string) (string, error) {
	if times == nil {
		times = []string{}
	}
	b, err := json.Marshal(times)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func endDate(m *models.Medication) sql.NullTime {
	if m.EndDate == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *m.EndDate, Valid: true}
}

func (r *PostgresRepository) Create(ctx context.Context, m *models.Medication) (*models.Medication, error) {
	times, err := encodeTimes(m.Times)
	if err != nil {
		return nil, fmt.Errorf("encode times: %w", err)
	}

	query := `INSERT INTO medications (owner_id, name, dosage, times, repeat, start_date, end_date, status, image_url, image_path)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id, updated_at`

	err = r.db.QueryRowContext(ctx, query, m.OwnerID, m.Name, m.Dosage, times, m.Repeat, m.StartDate,
		endDate(m), m.Status, m.ImageURL, m.ImagePath).Scan(&m.ID, &m.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return m, nil
}

// Update overwrites every mutable field of the record given by m.ID.
func (r *PostgresRepository) Update(ctx context.Context, m *models.Medication) (*models.Medication, error) {
	times, err := encodeTimes(m.Times)
	if err != nil {
		return nil, fmt.Errorf("encode times: %w", err)
	}

	query := `UPDATE medications
   SET name = $3, dosage = $4, times = $5, repeat = $6, start_date = $7, end_date = $8,
       status = $9, image_url = $10, image_path = $11, updated_at = now()
 WHERE owner_id = $1 AND id = $2
RETURNING updated_at`

	err = r.db.QueryRowContext(ctx, query, m.OwnerID, m.ID, m.Name, m.Dosage, times, m.Repeat, m.StartDate,
		endDate(m), m.Status, m.ImageURL, m.ImagePath).Scan(&m.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return m, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM medications WHERE owner_id = $1 AND id = $2`, ownerID, id)
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

func (r *PostgresRepository) Get(ctx context.Context, ownerID, id string) (*models.Medication, error) {
	m, err := scanMedication(r.db.QueryRowContext(ctx, selectMedication+` WHERE owner_id = $1 AND id = $2`, ownerID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return m, nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Medication, error) {
	rows, err := r.db.QueryContext(ctx, selectMedication+` WHERE owner_id = $1 ORDER BY name, id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.Medication, 0)
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

package logs

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/medtrack/internal/dbx"
	"github.com/dmitrijs2005/medtrack/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, e *models.LogEntry) (*models.LogEntry, error) {
	query := `INSERT INTO logs (owner_id, medication_id, medication_name, taken_at, status, note)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id`

	err := r.db.QueryRowContext(ctx, query, e.OwnerID, e.MedicationID, e.MedicationName, e.TakenAt, e.Status, e.Note).Scan(&e.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

// ListByOwner returns the newest entries first.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.LogEntry, error) {
	query := `SELECT id, owner_id, medication_id, medication_name, taken_at, status, note
  FROM logs
 WHERE owner_id = $1
 ORDER BY taken_at DESC, id`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.LogEntry, 0)
	for rows.Next() {
		var e models.LogEntry
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.MedicationID, &e.MedicationName, &e.TakenAt, &e.Status, &e.Note); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

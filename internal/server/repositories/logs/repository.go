package logs

import (
	"context"

	"github.com/dmitrijs2005/medtrack/internal/server/models"
)

// Repository is append-only: entries are never updated or removed.
type Repository interface {
	Create(ctx context.Context, e *models.LogEntry) (*models.LogEntry, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.LogEntry, error)
}

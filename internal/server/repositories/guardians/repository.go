package guardians

import (
	"context"

	"github.com/dmitrijs2005/medtrack/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, g *models.Guardian) (*models.Guardian, error)
	Get(ctx context.Context, ownerID, id string) (*models.Guardian, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Guardian, error)
	Activate(ctx context.Context, ownerID, id string) error
}

package medications

import (
	"context"

	"github.com/dmitrijs2005/medtrack/internal/server/models"
)

// Repository scopes every call by owner; a record of another owner behaves
// as missing.
type Repository interface {
	Create(ctx context.Context, m *models.Medication) (*models.Medication, error)
	Update(ctx context.Context, m *models.Medication) (*models.Medication, error)
	Delete(ctx context.Context, ownerID, id string) error
	Get(ctx context.Context, ownerID, id string) (*models.Medication, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Medication, error)
}

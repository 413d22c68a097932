package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/medtrack/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, userID, tokenHash string, signedInAt time.Time, validity time.Duration) error
	Find(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Delete(ctx context.Context, tokenHash string) error
	DeleteForUser(ctx context.Context, userID string) error
}

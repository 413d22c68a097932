package actiontokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/medtrack/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, t *models.ActionToken) error
	// Consume marks the token used and returns it. Used, expired, unknown or
	// wrong-purpose tokens yield common.ErrorNotFound.
	Consume(ctx context.Context, tokenHash, purpose string, now time.Time) (*models.ActionToken, error)
}

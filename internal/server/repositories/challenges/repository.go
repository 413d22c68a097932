// Package challenges stores the short-lived state of the phone and
// federated sign-in flows.
package challenges

import (
	"context"
	"time"

	"github.com/dmitrijs2005/medtrack/internal/server/models"
)

type PhoneRepository interface {
	CreatePhone(ctx context.Context, c *models.PhoneChallenge) error
	GetPhone(ctx context.Context, id string) (*models.PhoneChallenge, error)
	IncrementAttempts(ctx context.Context, id string) error
	DeletePhone(ctx context.Context, id string) error
}

type FederatedRepository interface {
	CreateFederated(ctx context.Context, s *models.FederatedState) error
	GetFederated(ctx context.Context, state string) (*models.FederatedState, error)
	CompleteFederated(ctx context.Context, state, userID string) error
	DeleteFederated(ctx context.Context, state string) error
	DeleteExpired(ctx context.Context, now time.Time) error
}

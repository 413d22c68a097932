// Package users stores identity-provider accounts.
package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/medtrack/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
	GetByProviderSubject(ctx context.Context, provider, subject string) (*models.User, error)
	MarkEmailVerified(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id string, hash []byte) error
	UpdateProfile(ctx context.Context, id, displayName, photoURL string) error
	RecordFailedSignIn(ctx context.Context, id string, at time.Time, window time.Duration) (int, error)
	ResetFailedSignIns(ctx context.Context, id string) error
}

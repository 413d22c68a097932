// Package documents is the per-owner document store behind the medication,
// log and guardian collections. Watches deliver the full collection on
// subscribe and again after every change.
package documents

import (
	"context"

	"github.com/dmitrijs2005/medtrack/internal/server/models"
)

type Store interface {
	AddMedication(ctx context.Context, m *models.Medication) (*models.Medication, error)
	UpdateMedication(ctx context.Context, m *models.Medication) (*models.Medication, error)
	DeleteMedication(ctx context.Context, ownerID, id string) error
	GetMedication(ctx context.Context, ownerID, id string) (*models.Medication, error)

	AddLog(ctx context.Context, e *models.LogEntry) (*models.LogEntry, error)

	AddGuardian(ctx context.Context, g *models.Guardian) (*models.Guardian, error)
	ActivateGuardian(ctx context.Context, ownerID, id string) error

	// Watch* block until ctx is done or the backend fails. A non-nil error
	// from fn stops the watch and is returned.
	WatchMedications(ctx context.Context, ownerID string, fn func([]models.Medication) error) error
	WatchLogs(ctx context.Context, ownerID string, fn func([]models.LogEntry) error) error
	WatchGuardians(ctx context.Context, ownerID string, fn func([]models.Guardian) error) error

	Close() error
}

package mirror

import (
	"context"

	"github.com/dmitrijs2005/medtrack/internal/client/models"
)

// Feed delivers full collection snapshots until ctx is done.
type Feed interface {
	WatchMedications(ctx context.Context, deliver func([]models.Medication)) error
	WatchLogs(ctx context.Context, deliver func([]models.LogEntry)) error
}

type Writer interface {
	AddMedication(ctx context.Context, m *models.Medication) (*models.Medication, error)
	UpdateMedication(ctx context.Context, m *models.Medication) error
	DeleteMedication(ctx context.Context, id string) error
	AddLog(ctx context.Context, l *models.LogEntry) error
}

// Blobs hands out presigned upload URLs and removes stored objects.
type Blobs interface {
	CreateUploadURL(ctx context.Context, key, contentType string) (uploadURL, downloadURL string, err error)
	DeleteObject(ctx context.Context, key string) error
}

type GuardianFeed interface {
	WatchGuardians(ctx context.Context, deliver func([]models.Guardian)) error
}

type GuardianWriter interface {
	AddGuardian(ctx context.Context, email string, perms []models.Permission) (*models.Guardian, error)
}

// Notifier shows a short user-facing message.
type Notifier interface {
	Notify(msg string)
}

package documents

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/medtrack/internal/common"
	"github.com/dmitrijs2005/medtrack/internal/server/changefeed"
	"github.com/dmitrijs2005/medtrack/internal/server/models"
	"github.com/dmitrijs2005/medtrack/internal/server/repositories/repomanager"
)

// Subscriber is the part of changefeed.Hub the store needs.
type Subscriber interface {
	Subscribe(ownerID, collection string) (<-chan struct{}, func())
}

// PostgresStore serves writes through the repositories and watches through
// the change feed: each signal re-queries the collection.
type PostgresStore struct {
	db   *sql.DB
	rm   repomanager.RepositoryManager
	feed Subscriber
}

var _ Subscriber = (*changefeed.Hub)(nil)

func NewPostgresStore(db *sql.DB, rm repomanager.RepositoryManager, feed Subscriber) *PostgresStore {
	return &PostgresStore{db: db, rm: rm, feed: feed}
}

func (s *PostgresStore) AddMedication(ctx context.Context, m *models.Medication) (*models.Medication, error) {
	return s.rm.Medications(s.db).Create(ctx, m)
}

func (s *PostgresStore) UpdateMedication(ctx context.Context, m *models.Medication) (*models.Medication, error) {
	return s.rm.Medications(s.db).Update(ctx, m)
}

func (s *PostgresStore) DeleteMedication(ctx context.Context, ownerID, id string) error {
	return s.rm.Medications(s.db).Delete(ctx, ownerID, id)
}

func (s *PostgresStore) GetMedication(ctx context.Context, ownerID, id string) (*models.Medication, error) {
	return s.rm.Medications(s.db).Get(ctx, ownerID, id)
}

func (s *PostgresStore) AddLog(ctx context.Context, e *models.LogEntry) (*models.LogEntry, error) {
	return s.rm.Logs(s.db).Create(ctx, e)
}

func (s *PostgresStore) AddGuardian(ctx context.Context, g *models.Guardian) (*models.Guardian, error) {
	return s.rm.Guardians(s.db).Create(ctx, g)
}

func (s *PostgresStore) ActivateGuardian(ctx context.Context, ownerID, id string) error {
	return s.rm.Guardians(s.db).Activate(ctx, ownerID, id)
}

func (s *PostgresStore) WatchMedications(ctx context.Context, ownerID string, fn func([]models.Medication) error) error {
	return watch(ctx, s.feed, ownerID, common.CollectionMedications, func(ctx context.Context) ([]models.Medication, error) {
		return s.rm.Medications(s.db).ListByOwner(ctx, ownerID)
	}, fn)
}

func (s *PostgresStore) WatchLogs(ctx context.Context, ownerID string, fn func([]models.LogEntry) error) error {
	return watch(ctx, s.feed, ownerID, common.CollectionLogs, func(ctx context.Context) ([]models.LogEntry, error) {
		return s.rm.Logs(s.db).ListByOwner(ctx, ownerID)
	}, fn)
}

func (s *PostgresStore) WatchGuardians(ctx context.Context, ownerID string, fn func([]models.Guardian) error) error {
	return watch(ctx, s.feed, ownerID, common.CollectionGuardians, func(ctx context.Context) ([]models.Guardian, error) {
		return s.rm.Guardians(s.db).ListByOwner(ctx, ownerID)
	}, fn)
}

// Close is a no-op; the pool belongs to the caller.
func (s *PostgresStore) Close() error { return nil }

// watch subscribes before the first query so a change landing between the
// query and the wait still produces a snapshot.
func watch[T any](ctx context.Context, feed Subscriber, ownerID, collection string,
	list func(context.Context) ([]T, error), fn func([]T) error) error {

	signals, cancel := feed.Subscribe(ownerID, collection)
	defer cancel()

	for {
		items, err := list(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if err := fn(items); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-signals:
		}
	}
}

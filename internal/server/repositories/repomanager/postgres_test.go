package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T) *sql.DB {
	t.Helper()
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestManagerSatisfiesInterface(t *testing.T) {
	var m RepositoryManager = NewPostgresRepositoryManager()
	db := newDB(t)

	assert.NotNil(t, m.Users(db))
	assert.NotNil(t, m.RefreshTokens(db))
	assert.NotNil(t, m.ActionTokens(db))
	assert.NotNil(t, m.PhoneChallenges(db))
	assert.NotNil(t, m.FederatedStates(db))
	assert.NotNil(t, m.Medications(db))
	assert.NotNil(t, m.Logs(db))
	assert.NotNil(t, m.Guardians(db))
}

func TestRunMigrations(t *testing.T) {
	db := newDB(t)
	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	var gotDir string
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}
	require.NoError(t, NewPostgresRepositoryManager().RunMigrations(context.Background(), db))
	assert.Equal(t, ".", gotDir)

	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	assert.EqualError(t, NewPostgresRepositoryManager().RunMigrations(context.Background(), db), "boom")
}

// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/medtrack/internal/dbx"
	"github.com/dmitrijs2005/medtrack/internal/server/migrations"
	"github.com/dmitrijs2005/medtrack/internal/server/repositories/actiontokens"
	"github.com/dmitrijs2005/medtrack/internal/server/repositories/challenges"
	"github.com/dmitrijs2005/medtrack/internal/server/repositories/guardians"
	"github.com/dmitrijs2005/medtrack/internal/server/repositories/logs"
	"github.com/dmitrijs2005/medtrack/internal/server/repositories/medications"
	"github.com/dmitrijs2005/medtrack/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/medtrack/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

type PostgresRepositoryManager struct{}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return refreshtokens.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) ActionTokens(db dbx.DBTX) actiontokens.Repository {
	return actiontokens.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) PhoneChallenges(db dbx.DBTX) challenges.PhoneRepository {
	return challenges.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) FederatedStates(db dbx.DBTX) challenges.FederatedRepository {
	return challenges.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Medications(db dbx.DBTX) medications.Repository {
	return medications.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Logs(db dbx.DBTX) logs.Repository {
	return logs.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Guardians(db dbx.DBTX) guardians.Repository {
	return guardians.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded schema with the pgx dialect.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/medtrack/internal/dbx"
	"github.com/dmitrijs2005/medtrack/internal/server/repositories/actiontokens"
	"github.com/dmitrijs2005/medtrack/internal/server/repositories/challenges"
	"github.com/dmitrijs2005/medtrack/internal/server/repositories/guardians"
	"github.com/dmitrijs2005/medtrack/internal/server/repositories/logs"
	"github.com/dmitrijs2005/medtrack/internal/server/repositories/medications"
	"github.com/dmitrijs2005/medtrack/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/medtrack/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so the same code
// runs against *sql.DB or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	ActionTokens(db dbx.DBTX) actiontokens.Repository
	PhoneChallenges(db dbx.DBTX) challenges.PhoneRepository
	FederatedStates(db dbx.DBTX) challenges.FederatedRepository
	Medications(db dbx.DBTX) medications.Repository
	Logs(db dbx.DBTX) logs.Repository
	Guardians(db dbx.DBTX) guardians.Repository
}

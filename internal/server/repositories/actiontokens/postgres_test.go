package actiontokens

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/medtrack/internal/common"
	"github.com/dmitrijs2005/medtrack/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func TestCreate(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	exp := time.Now().Add(time.Hour)

	mock.ExpectExec(`INSERT INTO action_tokens`).
		WithArgs("h", models.PurposeVerifyEmail, "u1", "u1", exp).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), &models.ActionToken{
		TokenHash: "h", Purpose: models.PurposeVerifyEmail, UserID: "u1", Subject: "u1", ExpiresAt: exp,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsume(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()
	exp := now.Add(time.Hour)

	mock.ExpectQuery(`(?s)UPDATE action_tokens SET used_at = \$3.*used_at IS NULL AND expires_at > \$3.*RETURNING user_id, subject, expires_at`).
		WithArgs("h", models.PurposeGuardianInvite, now).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "subject", "expires_at"}).AddRow("u1", "g1", exp))

	tok, err := repo.Consume(context.Background(), "h", models.PurposeGuardianInvite, now)
	require.NoError(t, err)
	assert.Equal(t, "u1", tok.UserID)
	assert.Equal(t, "g1", tok.Subject)
	require.NotNil(t, tok.UsedAt)
	assert.Equal(t, now, *tok.UsedAt)
}

func TestConsume_AlreadyUsed(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(`UPDATE action_tokens`).WillReturnError(sql.ErrNoRows)

	_, err := repo.Consume(context.Background(), "h", models.PurposeResetPassword, time.Now())
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

package challenges

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

func TestPhoneLifecycle(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	ctx := context.Background()
	exp := time.Now().Add(5 * time.Minute)

	mock.ExpectExec(`INSERT INTO phone_challenges`).
		WithArgs("c1", "+15550100", "hash", 0, exp).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT id, phone_number, code_hash, attempts, expires_at FROM phone_challenges WHERE id = \$1`).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "phone_number", "code_hash", "attempts", "expires_at"}).
			AddRow("c1", "+15550100", "hash", 2, exp))
	mock.ExpectExec(`UPDATE phone_challenges SET attempts = attempts \+ 1 WHERE id = \$1`).
		WithArgs("c1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM phone_challenges WHERE id = \$1`).
		WithArgs("c1").WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.CreatePhone(ctx, &models.PhoneChallenge{ID: "c1", PhoneNumber: "+15550100", CodeHash: "hash", ExpiresAt: exp}))
	c, err := repo.GetPhone(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 2, c.Attempts)
	require.NoError(t, repo.IncrementAttempts(ctx, "c1"))
	require.NoError(t, repo.DeletePhone(ctx, "c1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPhone_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(`FROM phone_challenges`).WillReturnError(sql.ErrNoRows)

	_, err := repo.GetPhone(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestFederatedLifecycle(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	ctx := context.Background()
	exp := time.Now().Add(10 * time.Minute)

	mock.ExpectExec(`INSERT INTO federated_states`).
		WithArgs("st", "n", "v", exp).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM federated_states WHERE state = \$1`).
		WithArgs("st").
		WillReturnRows(sqlmock.NewRows([]string{"state", "nonce", "code_verifier", "user_id", "completed", "expires_at"}).
			AddRow("st", "n", "v", nil, false, exp))
	mock.ExpectExec(`UPDATE federated_states SET user_id = \$2, completed = TRUE WHERE state = \$1`).
		WithArgs("st", "u1").WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.CreateFederated(ctx, &models.FederatedState{State: "st", Nonce: "n", CodeVerifier: "v", ExpiresAt: exp}))
	s, err := repo.GetFederated(ctx, "st")
	require.NoError(t, err)
	assert.False(t, s.Completed)
	assert.Empty(t, s.UserID)
	require.NoError(t, repo.CompleteFederated(ctx, "st", "u1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteExpired(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectExec(`DELETE FROM phone_challenges WHERE expires_at < \$1`).WithArgs(now).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM federated_states WHERE expires_at < \$1`).WithArgs(now).WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, repo.DeleteExpired(context.Background(), now))
	assert.NoError(t, mock.ExpectationsWereMet())
}

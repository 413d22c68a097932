package guardians

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/medtrack/internal/common"
	"github.com/dmitrijs2005/medtrack/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
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
	mock.ExpectQuery(`INSERT INTO guardians \(owner_id, email, permissions, status\)`).
		WithArgs("u1", "mom@example.com", `["viewLogs"]`, models.GuardianPending).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("g1"))

	g, err := repo.Create(context.Background(), &models.Guardian{
		OwnerID: "u1", Email: "mom@example.com", Permissions: []models.Permission{models.PermissionViewLogs}, Status: models.GuardianPending,
	})
	require.NoError(t, err)
	assert.Equal(t, "g1", g.ID)
}

func TestCreate_Duplicate(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(`INSERT INTO guardians`).WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.Create(context.Background(), &models.Guardian{OwnerID: "u1", Email: "mom@example.com"})
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestListByOwner(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(`FROM guardians WHERE owner_id = \$1 ORDER BY created_at, id`).WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "email", "permissions", "status"}).
			AddRow("g1", "u1", "mom@example.com", []byte(`["viewLogs","receiveAlerts"]`), "active"))

	got, err := repo.ListByOwner(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []models.Permission{models.PermissionViewLogs, models.PermissionReceiveAlerts}, got[0].Permissions)
	assert.Equal(t, models.GuardianActive, got[0].Status)
}

func TestActivate(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectExec(`UPDATE guardians SET status = \$3 WHERE owner_id = \$1 AND id = \$2`).
		WithArgs("u1", "g1", models.GuardianActive).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE guardians`).
		WithArgs("u1", "nope", models.GuardianActive).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Activate(context.Background(), "u1", "g1"))
	assert.ErrorIs(t, repo.Activate(context.Background(), "u1", "nope"), common.ErrorNotFound)
}

func TestGet(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(`FROM guardians WHERE owner_id = \$1 AND id = \$2`).WithArgs("u1", "g1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "email", "permissions", "status"}).
			AddRow("g1", "u1", "mom@example.com", []byte(`[]`), "pending"))

	g, err := repo.Get(context.Background(), "u1", "g1")
	require.NoError(t, err)
	assert.Equal(t, "mom@example.com", g.Email)
	assert.Empty(t, g.Permissions)
}

package mirror

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/medtrack/internal/client/models"
	"github.com/dmitrijs2005/medtrack/internal/common"
	"github.com/dmitrijs2005/medtrack/internal/filex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 4, 2, 9, 15, 0, 0, time.Local)

func attached(t *testing.T) *fixture {
	t.Helper()
	f := newFixture(t)
	f.m.now = func() time.Time { return fixedNow }
	f.m.Attach("u1")
	f.feed.waitOpen(t, 1)
	return f
}

// objectStore accepts presigned PUTs and remembers the bodies.
func objectStore(t *testing.T, status int) (*httptest.Server, map[string][]byte) {
	t.Helper()
	got := map[string][]byte{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		b, _ := io.ReadAll(r.Body)
		got[r.URL.Path] = b
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

var pill = &filex.Image{Name: "my pill.png", ContentType: "image/png", Data: []byte("\x89PNG")}

func TestAddMedication_WithoutImage(t *testing.T) {
	f := attached(t)
	f.m.now = time.Now

	before := time.Now()
	saved, err := f.m.AddMedication(context.Background(), models.MedicationInput{
		Name: "Aspirin", Dosage: "100mg", Times: []string{"08:00"}, Repeat: models.RepeatDaily,
	}, nil)
	require.NoError(t, err)
	require.NotNil(t, saved)

	require.Len(t, f.writer.added, 1)
	rec := f.writer.added[0]
	assert.Empty(t, rec.ImageURL)
	assert.Empty(t, rec.ImagePath)
	assert.Equal(t, models.MedicationActive, rec.Status)
	assert.Equal(t, "u1", rec.OwnerID)
	assert.WithinDuration(t, before, rec.StartDate, time.Second)
	assert.Equal(t, []string{"add:Aspirin"}, f.calls.all())
	assert.Empty(t, f.notes.all())
}

func TestAddMedication_UploadsImageFirst(t *testing.T) {
	f := attached(t)
	srv, bodies := objectStore(t, http.StatusOK)
	f.blobs.uploadURL = srv.URL + "/upload"

	_, err := f.m.AddMedication(context.Background(), models.MedicationInput{Name: "Aspirin"}, pill)
	require.NoError(t, err)

	wantKey := fmt.Sprintf("users/u1/medications/%d_my_pill.png", fixedNow.UnixMilli())
	assert.Equal(t, wantKey, ImageKey("u1", fixedNow.UnixMilli(), "my pill.png"))

	assert.Equal(t, []string{"presign:" + wantKey, "add:Aspirin"}, f.calls.all())
	assert.Equal(t, pill.Data, bodies["/upload"])
	rec := f.writer.added[0]
	assert.Equal(t, wantKey, rec.ImagePath)
	assert.Equal(t, "https://cdn.example/"+wantKey, rec.ImageURL)
}

func TestAddMedication_UploadFailureSavesWithoutImage(t *testing.T) {
	f := attached(t)
	srv, _ := objectStore(t, http.StatusForbidden)
	f.blobs.uploadURL = srv.URL + "/upload"

	_, err := f.m.AddMedication(context.Background(), models.MedicationInput{Name: "Aspirin"}, pill)
	require.NoError(t, err)

	rec := f.writer.added[0]
	assert.Empty(t, rec.ImageURL)
	assert.Empty(t, rec.ImagePath)
	assert.Empty(t, f.notes.all(), "image errors are never surfaced")
}

func TestAddMedication_WriteFailureNotifiesAndReturns(t *testing.T) {
	f := attached(t)
	f.writer.err = errors.New("permission denied")

	_, err := f.m.AddMedication(context.Background(), models.MedicationInput{Name: "Aspirin"}, nil)
	require.Error(t, err)
	assert.Equal(t, []string{MsgSaveFailed}, f.notes.all())
}

func TestAddMedication_NotAttached(t *testing.T) {
	f := newFixture(t)

	_, err := f.m.AddMedication(context.Background(), models.MedicationInput{Name: "Aspirin"}, nil)
	assert.ErrorIs(t, err, ErrNotAttached)
	assert.Equal(t, []string{MsgSaveFailed}, f.notes.all())
}

func TestUpdateMedication_ReplacesImage(t *testing.T) {
	f := attached(t)
	srv, _ := objectStore(t, http.StatusOK)
	f.blobs.uploadURL = srv.URL + "/upload"
	f.blobs.deleteErr = errors.New("already gone")

	rec := models.Medication{ID: "m1", Name: "Aspirin", ImagePath: "users/u1/medications/1_old.png", ImageURL: "https://cdn.example/old"}
	require.NoError(t, f.m.UpdateMedication(context.Background(), rec, pill))

	newKey := ImageKey("u1", fixedNow.UnixMilli(), pill.Name)
	assert.Equal(t, []string{
		"delete-object:users/u1/medications/1_old.png",
		"presign:" + newKey,
		"update:m1",
	}, f.calls.all())
	require.Len(t, f.writer.updated, 1)
	assert.Equal(t, newKey, f.writer.updated[0].ImagePath)
	assert.Equal(t, "u1", f.writer.updated[0].OwnerID)
	assert.Empty(t, f.notes.all())
}

func TestUpdateMedication_KeepsImageWithoutReplacement(t *testing.T) {
	f := attached(t)

	rec := models.Medication{ID: "m1", Name: "Aspirin 2", ImagePath: "users/u1/medications/1_old.png", ImageURL: "u"}
	require.NoError(t, f.m.UpdateMedication(context.Background(), rec, nil))
	assert.Equal(t, []string{"update:m1"}, f.calls.all())
	assert.Equal(t, "users/u1/medications/1_old.png", f.writer.updated[0].ImagePath)
}

func TestUpdateMedication_Errors(t *testing.T) {
	f := attached(t)

	err := f.m.UpdateMedication(context.Background(), models.Medication{Name: "x"}, nil)
	assert.ErrorIs(t, err, common.ErrorValidation)

	f.writer.err = errors.New("offline")
	err = f.m.UpdateMedication(context.Background(), models.Medication{ID: "m1"}, nil)
	assert.Error(t, err)
	assert.Equal(t, []string{MsgUpdateFailed, MsgUpdateFailed}, f.notes.all())
}

func TestDeleteMedication_DeletesImageOnceBeforeRecord(t *testing.T) {
	f := attached(t)
	f.feed.pushMeds(
		models.Medication{ID: "m1", ImagePath: "users/u1/medications/1_a.png"},
		models.Medication{ID: "m2"},
	)

	f.m.DeleteMedication(context.Background(), "m1")
	assert.Equal(t, []string{"delete-object:users/u1/medications/1_a.png", "delete:m1"}, f.calls.all())

	f.m.DeleteMedication(context.Background(), "m2")
	assert.Equal(t, []string{"delete-object:users/u1/medications/1_a.png", "delete:m1", "delete:m2"}, f.calls.all())
}

func TestDeleteMedication_FailuresAreSwallowed(t *testing.T) {
	f := attached(t)
	f.feed.pushMeds(models.Medication{ID: "m1", ImagePath: "users/u1/medications/1_a.png"})
	f.blobs.deleteErr = errors.New("s3 down")
	f.writer.err = errors.New("offline")

	f.m.DeleteMedication(context.Background(), "m1")
	assert.Equal(t, []string{"delete-object:users/u1/medications/1_a.png", "delete:m1"}, f.calls.all())
	assert.Equal(t, []string{MsgDeleteFailed}, f.notes.all())
}

func TestAddLog(t *testing.T) {
	f := attached(t)

	f.m.AddLog(context.Background(), models.LogInput{MedicationID: "m1", MedicationName: "Aspirin", Status: models.LogTaken})
	require.Len(t, f.writer.logged, 1)
	got := f.writer.logged[0]
	assert.Equal(t, "Aspirin", got.MedicationName)
	assert.Equal(t, "u1", got.OwnerID)
	assert.True(t, got.TakenAt.Equal(fixedNow))

	f.writer.err = errors.New("offline")
	f.m.AddLog(context.Background(), models.LogInput{MedicationID: "m1", MedicationName: "Aspirin", Status: models.LogMissed})
	assert.Equal(t, []string{MsgLogFailed}, f.notes.all())
}

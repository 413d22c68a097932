package mirror

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/dmitrijs2005/medtrack/internal/client/models"
	"github.com/dmitrijs2005/medtrack/internal/common"
	"github.com/dmitrijs2005/medtrack/internal/filex"
	"github.com/dmitrijs2005/medtrack/internal/netx"
)

// AddMedication writes a new active medication starting now. A supplied
// image is uploaded first; if that fails the record is saved without one.
func (m *Mirror) AddMedication(ctx context.Context, in models.MedicationInput, image *filex.Image) (*models.Medication, error) {
	uid := m.UID()
	if uid == "" {
		m.notifier.Notify(MsgSaveFailed)
		return nil, ErrNotAttached
	}

	rec := models.Medication{
		OwnerID:   uid,
		Name:      in.Name,
		Dosage:    in.Dosage,
		Times:     in.Times,
		Repeat:    in.Repeat,
		StartDate: m.now(),
		EndDate:   in.EndDate,
		Status:    models.MedicationActive,
	}
	if image != nil {
		if url, key, err := m.uploadImage(ctx, uid, image); err != nil {
			m.logger.Warn(ctx, "image upload failed", "error", err)
		} else {
			rec.ImageURL, rec.ImagePath = url, key
		}
	}

	saved, err := m.writer.AddMedication(ctx, &rec)
	if err != nil {
		m.logger.Error(ctx, "add medication failed", "error", err)
		m.notifier.Notify(MsgSaveFailed)
		return nil, fmt.Errorf("add medication: %w", err)
	}
	return saved, nil
}

// UpdateMedication writes every mutable field of rec. With a new image the
// old object is removed first, best effort.
func (m *Mirror) UpdateMedication(ctx context.Context, rec models.Medication, image *filex.Image) error {
	uid := m.UID()
	if uid == "" {
		m.notifier.Notify(MsgUpdateFailed)
		return ErrNotAttached
	}
	if rec.ID == "" {
		m.notifier.Notify(MsgUpdateFailed)
		return fmt.Errorf("%w: medication id is required", common.ErrorValidation)
	}
	rec.OwnerID = uid

	if image != nil {
		if rec.ImagePath != "" {
			if err := m.blobs.DeleteObject(ctx, rec.ImagePath); err != nil {
				m.logger.Warn(ctx, "deleting previous image failed", "key", rec.ImagePath, "error", err)
			}
		}
		rec.ImageURL, rec.ImagePath = "", ""
		if url, key, err := m.uploadImage(ctx, uid, image); err != nil {
			m.logger.Warn(ctx, "image upload failed", "error", err)
		} else {
			rec.ImageURL, rec.ImagePath = url, key
		}
	}

	if err := m.writer.UpdateMedication(ctx, &rec); err != nil {
		m.logger.Error(ctx, "update medication failed", "id", rec.ID, "error", err)
		m.notifier.Notify(MsgUpdateFailed)
		return fmt.Errorf("update medication: %w", err)
	}
	return nil
}

// DeleteMedication removes the stored image, then the record. Failures are
// reported and swallowed.
func (m *Mirror) DeleteMedication(ctx context.Context, id string) {
	if med, ok := m.Medication(id); ok && med.ImagePath != "" {
		if err := m.blobs.DeleteObject(ctx, med.ImagePath); err != nil {
			m.logger.Warn(ctx, "deleting image failed", "key", med.ImagePath, "error", err)
		}
	}

	if err := m.writer.DeleteMedication(ctx, id); err != nil {
		m.logger.Error(ctx, "delete medication failed", "id", id, "error", err)
		m.notifier.Notify(MsgDeleteFailed)
	}
}

// AddLog appends a dose record. The caller supplies MedicationName.
// Failures are reported and swallowed.
func (m *Mirror) AddLog(ctx context.Context, in models.LogInput) {
	uid := m.UID()
	if uid == "" {
		m.notifier.Notify(MsgLogFailed)
		return
	}

	rec := models.LogEntry{
		OwnerID:        uid,
		MedicationID:   in.MedicationID,
		MedicationName: in.MedicationName,
		TakenAt:        in.TakenAt,
		Status:         in.Status,
		Note:           in.Note,
	}
	if rec.TakenAt.IsZero() {
		rec.TakenAt = m.now()
	}

	if err := m.writer.AddLog(ctx, &rec); err != nil {
		m.logger.Error(ctx, "add log failed", "medication_id", in.MedicationID, "error", err)
		m.notifier.Notify(MsgLogFailed)
	}
}

// ImageKey is where an image named filename uploaded at unixMillis lives.
func ImageKey(uid string, unixMillis int64, filename string) string {
	name := strings.ReplaceAll(path.Base(filename), " ", "_")
	return fmt.Sprintf("%s%s/%d_%s", common.UserNamespace(uid), common.CollectionMedications, unixMillis, name)
}

func (m *Mirror) uploadImage(ctx context.Context, uid string, image *filex.Image) (url, key string, err error) {
	key = ImageKey(uid, m.now().UnixMilli(), image.Name)

	uploadURL, downloadURL, err := m.blobs.CreateUploadURL(ctx, key, image.ContentType)
	if err != nil {
		return "", "", fmt.Errorf("create upload url: %w", err)
	}
	if err := netx.PutPresigned(ctx, m.http, uploadURL, image.ContentType, image.Data); err != nil {
		return "", "", err
	}
	return downloadURL, key, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/medtrack/internal/common"
	"github.com/dmitrijs2005/medtrack/internal/logging"
	"github.com/dmitrijs2005/medtrack/internal/server/blobs"
	"github.com/dmitrijs2005/medtrack/internal/server/documents"
	"github.com/dmitrijs2005/medtrack/internal/server/models"
)

type BlobStore interface {
	UploadURL(ctx context.Context, uid, key, contentType string) (string, error)
	DownloadURL(ctx context.Context, uid, key string) (string, error)
	Delete(ctx context.Context, uid, key string) error
}

// Inviter issues and redeems guardian invitation links.
type Inviter interface {
	SendGuardianInvite(ctx context.Context, ownerID, guardianID, guardianEmail string) error
	AcceptGuardianInvite(ctx context.Context, token string) (ownerID, guardianID string, err error)
}

// DataService validates writes to the owner's collections and mediates
// access to the owner's blobs. Every operation is scoped by the caller's uid.
type DataService struct {
	docs    documents.Store
	blobs   BlobStore
	inviter Inviter
	logger  logging.Logger
}

func NewDataService(docs documents.Store, b BlobStore, inviter Inviter, logger logging.Logger) *DataService {
	return &DataService{docs: docs, blobs: b, inviter: inviter, logger: logger.With("module", "data")}
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", common.ErrorValidation, fmt.Sprintf(format, args...))
}

func validateMedication(m *models.Medication) error {
	m.Name = strings.TrimSpace(m.Name)
	if m.Name == "" {
		return validationError("medication name is required")
	}
	if !m.Repeat.Valid() {
		return validationError("unknown repeat %q", m.Repeat)
	}
	if !m.Status.Valid() {
		return validationError("unknown status %q", m.Status)
	}
	if m.StartDate.IsZero() {
		return validationError("start date is required")
	}
	if m.EndsBeforeStart() {
		return validationError("end date before start date")
	}
	if m.ImagePath != "" {
		if err := blobs.CheckKey(m.OwnerID, m.ImagePath); err != nil {
			return err
		}
	}
	return nil
}

func (s *DataService) AddMedication(ctx context.Context, ownerID string, m *models.Medication) (*models.Medication, error) {
	m.OwnerID = ownerID
	if err := validateMedication(m); err != nil {
		return nil, err
	}
	return s.docs.AddMedication(ctx, m)
}

// UpdateMedication overwrites every mutable field of an existing record.
func (s *DataService) UpdateMedication(ctx context.Context, ownerID string, m *models.Medication) (*models.Medication, error) {
	m.OwnerID = ownerID
	if m.ID == "" {
		return nil, validationError("medication id is required")
	}
	if err := validateMedication(m); err != nil {
		return nil, err
	}
	return s.docs.UpdateMedication(ctx, m)
}

func (s *DataService) DeleteMedication(ctx context.Context, ownerID, id string) error {
	return s.docs.DeleteMedication(ctx, ownerID, id)
}

func (s *DataService) AddLog(ctx context.Context, ownerID string, e *models.LogEntry) (*models.LogEntry, error) {
	e.OwnerID = ownerID
	if e.MedicationID == "" {
		return nil, validationError("medication id is required")
	}
	if !e.Status.Valid() {
		return nil, validationError("unknown log status %q", e.Status)
	}
	if e.TakenAt.IsZero() {
		return nil, validationError("takenAt is required")
	}
	return s.docs.AddLog(ctx, e)
}

// AddGuardian records a pending guardian and emails the invitation. A
// failed email leaves the guardian pending.
func (s *DataService) AddGuardian(ctx context.Context, ownerID, email string, perms []models.Permission) (*models.Guardian, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	for _, p := range perms {
		if !p.Valid() {
			return nil, validationError("unknown permission %q", p)
		}
	}

	g, err := s.docs.AddGuardian(ctx, &models.Guardian{
		OwnerID:     ownerID,
		Email:       email,
		Permissions: perms,
		Status:      models.GuardianPending,
	})
	if err != nil {
		return nil, err
	}
	if err := s.inviter.SendGuardianInvite(ctx, ownerID, g.ID, g.Email); err != nil {
		s.logger.Warn(ctx, "guardian invite not sent", "guardian_id", g.ID, "error", err)
	}
	return g, nil
}

func (s *DataService) AcceptGuardianInvite(ctx context.Context, token string) error {
	ownerID, guardianID, err := s.inviter.AcceptGuardianInvite(ctx, token)
	if err != nil {
		return err
	}
	if err := s.docs.ActivateGuardian(ctx, ownerID, guardianID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrInvalidActionCode
		}
		return err
	}
	return nil
}

func (s *DataService) WatchMedications(ctx context.Context, ownerID string, fn func([]models.Medication) error) error {
	return s.docs.WatchMedications(ctx, ownerID, fn)
}

func (s *DataService) WatchLogs(ctx context.Context, ownerID string, fn func([]models.LogEntry) error) error {
	return s.docs.WatchLogs(ctx, ownerID, fn)
}

func (s *DataService) WatchGuardians(ctx context.Context, ownerID string, fn func([]models.Guardian) error) error {
	return s.docs.WatchGuardians(ctx, ownerID, fn)
}

// CreateUploadURL presigns a PUT for key and also returns the download URL
// the record should store once the upload succeeds.
func (s *DataService) CreateUploadURL(ctx context.Context, ownerID, key, contentType string) (uploadURL, downloadURL string, err error) {
	uploadURL, err = s.blobs.UploadURL(ctx, ownerID, key, contentType)
	if err != nil {
		return "", "", err
	}
	downloadURL, err = s.blobs.DownloadURL(ctx, ownerID, key)
	if err != nil {
		return "", "", err
	}
	return uploadURL, downloadURL, nil
}

func (s *DataService) GetDownloadURL(ctx context.Context, ownerID, key string) (string, error) {
	return s.blobs.DownloadURL(ctx, ownerID, key)
}

func (s *DataService) DeleteObject(ctx context.Context, ownerID, key string) error {
	return s.blobs.Delete(ctx, ownerID, key)
}

package grpc

import (
	"github.com/dmitrijs2005/medtrack/internal/api"
	"github.com/dmitrijs2005/medtrack/internal/server/models"
	"github.com/dmitrijs2005/medtrack/internal/server/services"
)

func toAPIUser(u *models.User) *api.User {
	if u == nil {
		return nil
	}
	return &api.User{
		UID:           u.ID,
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
		DisplayName:   u.DisplayName,
		PhotoURL:      u.PhotoURL,
		PhoneNumber:   u.PhoneNumber,
		Provider:      u.Provider,
	}
}

func toAPISession(s *services.Session) *api.Session {
	return &api.Session{
		AccessToken:  s.Tokens.AccessToken,
		RefreshToken: s.Tokens.RefreshToken,
		User:         toAPIUser(s.User),
	}
}

func toAPIMedication(m *models.Medication) *api.Medication {
	return &api.Medication{
		ID:        m.ID,
		Name:      m.Name,
		Dosage:    m.Dosage,
		Times:     m.Times,
		Repeat:    string(m.Repeat),
		StartDate: api.Timestamp(m.StartDate),
		EndDate:   api.OptionalTimestamp(m.EndDate),
		Status:    string(m.Status),
		ImageURL:  m.ImageURL,
		ImagePath: m.ImagePath,
		UpdatedAt: api.Timestamp(m.UpdatedAt),
	}
}

func fromAPIMedication(m *api.Medication) *models.Medication {
	return &models.Medication{
		ID:        m.ID,
		Name:      m.Name,
		Dosage:    m.Dosage,
		Times:     m.Times,
		Repeat:    models.Repeat(m.Repeat),
		StartDate: api.Time(m.StartDate),
		EndDate:   api.OptionalTime(m.EndDate),
		Status:    models.MedicationStatus(m.Status),
		ImageURL:  m.ImageURL,
		ImagePath: m.ImagePath,
	}
}

func toAPILog(e *models.LogEntry) *api.LogEntry {
	return &api.LogEntry{
		ID:             e.ID,
		MedicationID:   e.MedicationID,
		MedicationName: e.MedicationName,
		TakenAt:        api.Timestamp(e.TakenAt),
		Status:         string(e.Status),
		Note:           e.Note,
	}
}

func fromAPILog(e *api.LogEntry) *models.LogEntry {
	return &models.LogEntry{
		ID:             e.ID,
		MedicationID:   e.MedicationID,
		MedicationName: e.MedicationName,
		TakenAt:        api.Time(e.TakenAt),
		Status:         models.LogStatus(e.Status),
		Note:           e.Note,
	}
}

func toAPIGuardian(g *models.Guardian) *api.Guardian {
	perms := make([]string, 0, len(g.Permissions))
	for _, p := range g.Permissions {
		perms = append(perms, string(p))
	}
	return &api.Guardian{ID: g.ID, Email: g.Email, Permissions: perms, Status: string(g.Status)}
}

func fromAPIPermissions(in []string) []models.Permission {
	out := make([]models.Permission, 0, len(in))
	for _, p := range in {
		out = append(out, models.Permission(p))
	}
	return out
}

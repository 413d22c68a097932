package client

import (
	"github.com/dmitrijs2005/medtrack/internal/api"
	"github.com/dmitrijs2005/medtrack/internal/client/models"
)

func toPrincipal(u *api.User) *models.Principal {
	if u == nil {
		return nil
	}
	return &models.Principal{
		UID:           u.UID,
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
		DisplayName:   u.DisplayName,
		PhotoURL:      u.PhotoURL,
		PhoneNumber:   u.PhoneNumber,
		Provider:      u.Provider,
	}
}

// Wire records carry no owner; the server scopes them by token.
func toMedication(m *api.Medication) models.Medication {
	return models.Medication{
		ID:        m.ID,
		Name:      m.Name,
		Dosage:    m.Dosage,
		Times:     append([]string(nil), m.Times...),
		Repeat:    models.Repeat(m.Repeat),
		StartDate: api.Time(m.StartDate),
		EndDate:   api.OptionalTime(m.EndDate),
		Status:    models.MedicationStatus(m.Status),
		ImageURL:  m.ImageURL,
		ImagePath: m.ImagePath,
	}
}

func fromMedication(m *models.Medication) *api.Medication {
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
	}
}

func toLogEntry(l *api.LogEntry) models.LogEntry {
	return models.LogEntry{
		ID:             l.ID,
		MedicationID:   l.MedicationID,
		MedicationName: l.MedicationName,
		TakenAt:        api.Time(l.TakenAt),
		Status:         models.LogStatus(l.Status),
		Note:           l.Note,
	}
}

func fromLogEntry(l *models.LogEntry) *api.LogEntry {
	return &api.LogEntry{
		ID:             l.ID,
		MedicationID:   l.MedicationID,
		MedicationName: l.MedicationName,
		TakenAt:        api.Timestamp(l.TakenAt),
		Status:         string(l.Status),
		Note:           l.Note,
	}
}

func toGuardian(g *api.Guardian) models.Guardian {
	perms := make([]models.Permission, 0, len(g.Permissions))
	for _, p := range g.Permissions {
		perms = append(perms, models.Permission(p))
	}
	return models.Guardian{
		ID:          g.ID,
		Email:       g.Email,
		Permissions: perms,
		Status:      models.GuardianStatus(g.Status),
	}
}

func fromPermissions(perms []models.Permission) []string {
	out := make([]string, 0, len(perms))
	for _, p := range perms {
		out = append(out, string(p))
	}
	return out
}

package models

import "time"

type Repeat string

const (
	RepeatDaily  Repeat = "daily"
	RepeatWeekly Repeat = "weekly"
	RepeatCustom Repeat = "custom"
)

type MedicationStatus string

const (
	MedicationActive   MedicationStatus = "active"
	MedicationInactive MedicationStatus = "inactive"
)

// Medication is a scheduled medication. ImageURL and ImagePath are either
// both set or both empty.
type Medication struct {
	ID        string
	OwnerID   string
	Name      string
	Dosage    string
	Times     []string
	Repeat    Repeat
	StartDate time.Time
	EndDate   *time.Time
	Status    MedicationStatus
	ImageURL  string
	ImagePath string
}

// ActiveOn reports whether m belongs to the medications of the calendar day
// containing day, compared in day's location.
func (m *Medication) ActiveOn(day time.Time) bool {
	if m.Status != MedicationActive {
		return false
	}
	d := truncateDay(day)
	if truncateDay(m.StartDate.In(day.Location())).After(d) {
		return false
	}
	if m.EndDate != nil && truncateDay(m.EndDate.In(day.Location())).Before(d) {
		return false
	}
	return true
}

// MedicationInput carries the user-entered fields of a new medication.
type MedicationInput struct {
	Name    string
	Dosage  string
	Times   []string
	Repeat  Repeat
	EndDate *time.Time
}

func truncateDay(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, t.Location())
}

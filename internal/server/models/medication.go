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
	UpdatedAt time.Time
}

func (r Repeat) Valid() bool {
	switch r {
	case RepeatDaily, RepeatWeekly, RepeatCustom:
		return true
	}
	return false
}

func (s MedicationStatus) Valid() bool {
	return s == MedicationActive || s == MedicationInactive
}

// EndsBeforeStart reports whether the end date falls on an earlier calendar
// day than the start. Both are compared in the end date's location; a
// medication may end on the day it starts.
func (m *Medication) EndsBeforeStart() bool {
	if m.EndDate == nil {
		return false
	}
	loc := m.EndDate.Location()
	return truncateDay(m.EndDate.In(loc)).Before(truncateDay(m.StartDate.In(loc)))
}

func truncateDay(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, t.Location())
}

package models

import "time"

type LogStatus string

const (
	LogTaken  LogStatus = "taken"
	LogMissed LogStatus = "missed"
)

// LogEntry is one recorded dose outcome. MedicationName is a copy taken
// when the entry was written.
type LogEntry struct {
	ID             string
	OwnerID        string
	MedicationID   string
	MedicationName string
	TakenAt        time.Time
	Status         LogStatus
	Note           string
}

type LogInput struct {
	MedicationID   string
	MedicationName string
	TakenAt        time.Time
	Status         LogStatus
	Note           string
}

package models

import "time"

type LogStatus string

const (
	LogTaken  LogStatus = "taken"
	LogMissed LogStatus = "missed"
)

func (s LogStatus) Valid() bool {
	return s == LogTaken || s == LogMissed
}

// LogEntry is append-only. MedicationName is copied at write time so the
// history stays readable after a medication is renamed or removed.
type LogEntry struct {
	ID             string
	OwnerID        string
	MedicationID   string
	MedicationName string
	TakenAt        time.Time
	Status         LogStatus
	Note           string
}

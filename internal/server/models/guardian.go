package models

type Permission string

const (
	PermissionViewLogs      Permission = "viewLogs"
	PermissionReceiveAlerts Permission = "receiveAlerts"
)

type GuardianStatus string

const (
	GuardianPending GuardianStatus = "pending"
	GuardianActive  GuardianStatus = "active"
)

type Guardian struct {
	ID          string
	OwnerID     string
	Email       string
	Permissions []Permission
	Status      GuardianStatus
}

func (p Permission) Valid() bool {
	return p == PermissionViewLogs || p == PermissionReceiveAlerts
}

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

// Guardian is someone invited to follow the owner's adherence.
type Guardian struct {
	ID          string
	OwnerID     string
	Email       string
	Permissions []Permission
	Status      GuardianStatus
}

func (g *Guardian) Can(p Permission) bool {
	for _, have := range g.Permissions {
		if have == p {
			return true
		}
	}
	return false
}

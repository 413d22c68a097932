package models

import "time"

// Sign-in providers recorded on a user.
const (
	ProviderPassword = "password"
	ProviderPhone    = "phone"
	ProviderOIDC     = "oidc"
)

type User struct {
	ID              string
	Email           string
	EmailVerified   bool
	PasswordHash    []byte
	PhoneNumber     string
	DisplayName     string
	PhotoURL        string
	Provider        string
	ProviderSubject string
	FailedSignIns   int
	LastFailedAt    *time.Time
	CreatedAt       time.Time
}

package models

import "time"

// RefreshToken is stored by hash; the plain token only ever lives on the client.
type RefreshToken struct {
	UserID     string
	TokenHash  string
	SignedInAt time.Time
	Expires    time.Time
}

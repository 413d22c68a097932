package models

import "time"

// Purposes of out-of-band action links.
const (
	PurposeVerifyEmail    = "verify_email"
	PurposeResetPassword  = "reset_password"
	PurposeGuardianInvite = "guardian_invite"
)

// ActionToken backs a single-use emailed link. Subject is the id the link
// acts on: a user id for verification and reset, a guardian id for invites.
type ActionToken struct {
	TokenHash string
	Purpose   string
	UserID    string
	Subject   string
	ExpiresAt time.Time
	UsedAt    *time.Time
}

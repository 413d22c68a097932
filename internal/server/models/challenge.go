package models

import "time"

// PhoneChallenge is an outstanding one-time code sent by SMS.
type PhoneChallenge struct {
	ID          string
	PhoneNumber string
	CodeHash    string
	Attempts    int
	ExpiresAt   time.Time
}

// FederatedState tracks one redirect sign-in between start and result.
type FederatedState struct {
	State        string
	Nonce        string
	CodeVerifier string
	UserID       string
	Completed    bool
	ExpiresAt    time.Time
}

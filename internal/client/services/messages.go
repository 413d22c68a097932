package services

import (
	"errors"

	"github.com/dmitrijs2005/medtrack/internal/client/client"
	"github.com/dmitrijs2005/medtrack/internal/common"
)

const (
	msgUnexpected = "An unexpected error occurred. Please try again."
	msgOffline    = "Cannot reach the server. Please check your connection."
)

// SignInMessage maps a failed email/password sign-in to a form message.
func SignInMessage(err error) string {
	switch {
	case errors.Is(err, common.ErrWrongPassword), errors.Is(err, common.ErrInvalidCredential),
		errors.Is(err, common.ErrUserNotFound):
		return "Invalid email or password."
	case errors.Is(err, common.ErrTooManyRequests):
		return "Too many failed attempts. Please try again later."
	case errors.Is(err, common.ErrInvalidEmail):
		return "Please enter a valid email address."
	}
	return fallback(err, "Failed to sign in.")
}

func SignUpMessage(err error) string {
	switch {
	case errors.Is(err, common.ErrEmailAlreadyInUse):
		return "This email is already registered."
	case errors.Is(err, common.ErrWeakPassword):
		return "Password should be at least 6 characters."
	case errors.Is(err, common.ErrInvalidEmail):
		return "Please enter a valid email address."
	}
	return fallback(err, "Failed to create account.")
}

func ForgotPasswordMessage(err error) string {
	if errors.Is(err, common.ErrUserNotFound) {
		return "No user found with this email address."
	}
	return fallback(err, msgUnexpected)
}

// OTPMessage covers both halves of the phone flow.
func OTPMessage(err error) string {
	switch {
	case errors.Is(err, common.ErrInvalidVerificationCode), errors.Is(err, common.ErrCodeExpired):
		return "Invalid OTP. Please try again."
	case errors.Is(err, common.ErrInvalidPhoneNumber):
		return "Please enter a valid phone number."
	case errors.Is(err, common.ErrTooManyRequests):
		return "Too many failed attempts. Please try again later."
	}
	return fallback(err, "Failed to send OTP.")
}

func FederatedMessage(err error) string {
	switch {
	case errors.Is(err, common.ErrNoRedirectResult):
		return "Sign-in was not completed in the browser yet."
	case errors.Is(err, common.ErrProviderUnavailable):
		return "This sign-in method is not available."
	case errors.Is(err, common.ErrEmailAlreadyInUse):
		return "An account with this email already exists. Sign in with your password."
	}
	return fallback(err, "Failed to sign in.")
}

func ChangePasswordMessage(err error) string {
	switch {
	case errors.Is(err, common.ErrWrongPassword), errors.Is(err, common.ErrInvalidCredential):
		return "Incorrect current password."
	case errors.Is(err, common.ErrRequiresRecentLogin):
		return "Please sign in again to change your password."
	case errors.Is(err, common.ErrWeakPassword):
		return "Password should be at least 6 characters."
	}
	return fallback(err, "Failed to change password.")
}

func fallback(err error, msg string) string {
	if errors.Is(err, client.ErrUnavailable) {
		return msgOffline
	}
	return msg
}

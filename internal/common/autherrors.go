package common

import "errors"

// AuthError is an identity-provider error identified by a stable code that
// travels over the wire unchanged.
type AuthError struct {
	Code string
}

func (e *AuthError) Error() string { return e.Code }

// Is reports whether target is an AuthError with the same code, so that a
// reconstructed error on the client matches the sentinel with errors.Is.
func (e *AuthError) Is(target error) bool {
	var t *AuthError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

var (
	ErrWrongPassword           = &AuthError{Code: "auth/wrong-password"}
	ErrInvalidCredential       = &AuthError{Code: "auth/invalid-credential"}
	ErrUserNotFound            = &AuthError{Code: "auth/user-not-found"}
	ErrEmailAlreadyInUse       = &AuthError{Code: "auth/email-already-in-use"}
	ErrWeakPassword            = &AuthError{Code: "auth/weak-password"}
	ErrRequiresRecentLogin     = &AuthError{Code: "auth/requires-recent-login"}
	ErrTooManyRequests         = &AuthError{Code: "auth/too-many-requests"}
	ErrInvalidVerificationCode = &AuthError{Code: "auth/invalid-verification-code"}
	ErrCodeExpired             = &AuthError{Code: "auth/code-expired"}
	ErrInvalidActionCode       = &AuthError{Code: "auth/invalid-action-code"}
	ErrInvalidEmail            = &AuthError{Code: "auth/invalid-email"}
	ErrInvalidPhoneNumber      = &AuthError{Code: "auth/invalid-phone-number"}
	ErrNoRedirectResult        = &AuthError{Code: "auth/no-redirect-result"}
	ErrProviderUnavailable     = &AuthError{Code: "auth/operation-not-allowed"}
)

var authErrorsByCode = func() map[string]*AuthError {
	all := []*AuthError{
		ErrWrongPassword, ErrInvalidCredential, ErrUserNotFound, ErrEmailAlreadyInUse,
		ErrWeakPassword, ErrRequiresRecentLogin, ErrTooManyRequests, ErrInvalidVerificationCode,
		ErrCodeExpired, ErrInvalidActionCode, ErrInvalidEmail, ErrInvalidPhoneNumber,
		ErrNoRedirectResult, ErrProviderUnavailable,
	}
	m := make(map[string]*AuthError, len(all))
	for _, e := range all {
		m[e.Code] = e
	}
	return m
}()

// LookupAuthError returns the known AuthError for code, or nil.
func LookupAuthError(code string) error {
	if e, ok := authErrorsByCode[code]; ok {
		return e
	}
	return nil
}

// AuthCode extracts the provider code from err, or "" if err carries none.
func AuthCode(err error) string {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

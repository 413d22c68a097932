package models

// Provider names an identity provider. They match the server's values.
const (
	ProviderPassword = "password"
	ProviderPhone    = "phone"
	ProviderOIDC     = "oidc"
)

// Principal is the authenticated identity. A nil *Principal means nobody
// is signed in.
type Principal struct {
	UID           string
	Email         string
	EmailVerified bool
	DisplayName   string
	PhotoURL      string
	PhoneNumber   string
	Provider      string
}

// Verified reports whether routing should treat p as verified. Phone
// principals carry no email and so have nothing to verify.
func (p *Principal) Verified() bool {
	if p == nil {
		return false
	}
	return p.EmailVerified || p.Provider == ProviderPhone
}

// Name is the best human label for p.
func (p *Principal) Name() string {
	switch {
	case p == nil:
		return ""
	case p.DisplayName != "":
		return p.DisplayName
	case p.Email != "":
		return p.Email
	default:
		return p.PhoneNumber
	}
}

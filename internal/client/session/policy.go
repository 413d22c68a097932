package session

import (
	"net/url"

	"github.com/dmitrijs2005/medtrack/internal/client/models"
)

// Locations of the application shell.
const (
	LocationOnboarding     = "/onboarding"
	LocationLogin          = "/login"
	LocationSignup         = "/signup"
	LocationVerifyEmail    = "/verify-email"
	LocationForgotPassword = "/forgot-password"
	LocationDashboard      = "/dashboard"
	LocationMedications    = "/dashboard/medications"
	LocationLogs           = "/dashboard/logs"
	LocationAskAI          = "/dashboard/ask-ai"
	LocationGuardians      = "/dashboard/guardians"
	LocationSettings       = "/dashboard/settings"
)

// authLocations are where a verified principal has no business.
var authLocations = map[string]bool{
	LocationLogin:       true,
	LocationSignup:      true,
	LocationVerifyEmail: true,
}

// IsPublic reports whether path can be shown without a principal.
func IsPublic(path string) bool {
	return authLocations[path] || path == LocationForgotPassword || path == LocationOnboarding
}

// Decision is the routing outcome for one location.
type Decision struct {
	// Wait is set until the first auth-state report arrives.
	Wait bool
	// Redirect is where to go instead, or "" to stay.
	Redirect string
}

// Decide evaluates the routing policy. location may carry a query string.
func Decide(p *models.Principal, ready bool, location string) Decision {
	if !ready {
		return Decision{Wait: true}
	}
	path := Path(location)

	switch {
	case p == nil:
		if !IsPublic(path) {
			return Decision{Redirect: LocationLogin}
		}
	case !p.Verified():
		if path != LocationVerifyEmail {
			return Decision{Redirect: VerifyEmailLocation(p.Email)}
		}
	default:
		if authLocations[path] {
			return Decision{Redirect: LocationDashboard}
		}
	}
	return Decision{}
}

// VerifyEmailLocation is the verification page carrying email.
func VerifyEmailLocation(email string) string {
	if email == "" {
		return LocationVerifyEmail
	}
	return LocationVerifyEmail + "?" + url.Values{"email": {email}}.Encode()
}

// Path strips the query from a location.
func Path(location string) string {
	u, err := url.Parse(location)
	if err != nil {
		return location
	}
	return u.Path
}

// Query returns the value of key in location's query string.
func Query(location, key string) string {
	u, err := url.Parse(location)
	if err != nil {
		return ""
	}
	return u.Query().Get(key)
}

type Gating int

const (
	Placeholder Gating = iota
	Render
)

func (g Gating) String() string {
	if g == Render {
		return "render"
	}
	return "placeholder"
}

// Gate reports whether location may render. It only does once the store
// is ready and the policy keeps the viewer where they are.
func Gate(p *models.Principal, ready bool, location string) Gating {
	d := Decide(p, ready, location)
	if d.Wait || d.Redirect != "" {
		return Placeholder
	}
	return Render
}

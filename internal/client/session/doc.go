// Package session holds who is signed in and decides where they may be.
//
// Store keeps the current principal and a readiness flag; the auth service
// reports every change of authentication state to it. Decide and Gate
// evaluate the routing policy for a location, Router applies it to a
// Navigator whenever the principal or the location changes, and
// VerificationPoller reloads an unverified principal until the address is
// confirmed.
package session

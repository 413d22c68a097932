// Package common contains constants and sentinel errors shared by the
// MedTrack client and server.
package common

// AccessTokenHeaderName is the gRPC metadata key that carries the access token.
const AccessTokenHeaderName = "access_token"

// Collection names used by the per-owner document namespace users/{uid}/...
const (
	CollectionMedications = "medications"
	CollectionLogs        = "logs"
	CollectionGuardians   = "guardians"
)

// UserNamespace returns the blob and document prefix owned by uid.
func UserNamespace(uid string) string {
	return "users/" + uid + "/"
}

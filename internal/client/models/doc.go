// Package models defines the client-side view of the MedTrack data:
// the signed-in principal and the per-owner medications, dose logs and
// guardians mirrored from the server.
package models

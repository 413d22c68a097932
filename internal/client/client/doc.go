// Package client contains the MedTrack client's link to the backend.
//
// # Overview
//
// The package provides:
//  1. GRPCClient, which manages a connection to the MedTrack gRPC service,
//     injects the access token via interceptors, transparently refreshes an
//     expired token once per call, and maps gRPC statuses back to the
//     sentinel errors of package common.
//  2. Blocking watch calls (WatchMedications, WatchLogs, WatchGuardians) that
//     deliver every collection snapshot to a callback until the context is
//     cancelled or the stream fails.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) that opens the
//     SQLite session database and applies the embedded goose migrations. The
//     rotated refresh token is written there so a session survives restarts.
//
// # Error Handling
//
// Identity-provider failures come back as the common.AuthError with the same
// code, so callers match them with errors.Is(err, common.ErrWrongPassword).
// Transport failures map to ErrUnavailable and a missing or dead session to
// common.ErrorUnauthorized.
//
// Concurrency & Contexts
//
// GRPCClient is safe for concurrent use. All operations accept
// context.Context and honor cancellation.
package client

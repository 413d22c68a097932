// Package cli provides the interactive MedTrack terminal client.
//
// It wires configuration, the local session database, the gRPC client, the
// session store with its router, the data mirror and the guardian roster, and
// runs a REPL with one page per location. Typical flow: resume the stored
// session, let the router pick the page, and execute the page's commands.
//
// Pages:
//   - /onboarding: shown on the first start until left once
//   - /login, /signup, /forgot-password: email, phone and browser sign-in
//   - /verify-email: waits for the verification link while shown
//   - /dashboard: today's medications
//   - /dashboard/medications, /dashboard/logs: records and dose history
//   - /dashboard/ask-ai, /dashboard/guardians, /dashboard/settings
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli

// Package mirror keeps local copies of the signed-in owner's collections.
//
// A Mirror follows the session: when a principal appears it opens live
// watches over medications and dose logs, replaces each list wholesale on
// every snapshot, and drops everything the moment the principal changes or
// signs out. Its mutators write through to the server and report failures
// to a Notifier; the watches bring the written state back.
//
// Roster does the same for the guardian list with a lifecycle of its own.
package mirror

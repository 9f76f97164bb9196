// Package remote is the client for the wiki page store's content API.
//
// The engine itself never performs I/O; this package supplies the two
// operations around a merge: fetching a page's storage-format body with its
// version token, and saving a new body with the version bumped by one. The
// store rejects a save against a stale version with a conflict, surfaced
// here as ErrVersionConflict so the publisher can rerun the whole
// fetch-merge-save transaction from a fresh fetch.
//
// Transient failures (network errors, 5xx responses) are retried with
// exponential backoff; conflicts and other 4xx responses are terminal.
// Credentials come from CERTPAGE_API_TOKEN.
package remote

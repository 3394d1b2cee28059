// Package common defines shared constants and sentinel errors used across
// the liftaudit client layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// ErrStorageUnavailable means the local database could not be opened or a
	// statement against it failed. Offline features must degrade, not crash.
	ErrStorageUnavailable = errors.New("local storage unavailable")

	// Per-draft validation errors detected before any network activity.
	ErrValidation = errors.New("validation error")

	// Transport-level failures: connection refused, DNS, timeout.
	ErrTransport = errors.New("transport error")

	// ErrServerRejected means the server answered with a non-ok envelope.
	ErrServerRejected = errors.New("server rejected request")

	// ErrPartialUpload means the audit batch was accepted but at least one
	// attachment upload failed. The draft is not done and must be retried.
	ErrPartialUpload = errors.New("partial attachment upload failure")

	// Sync engine flow control.
	ErrSyncInProgress = errors.New("sync already in progress")
	ErrOffline        = errors.New("server is not reachable")
)

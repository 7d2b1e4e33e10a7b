// Package common defines shared sentinel errors used across the registro
// client layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Local store errors.
	ErrStorageQuotaExceeded = errors.New("local storage quota exceeded")
	ErrStorageUnavailable   = errors.New("local storage unavailable")

	// Remote service errors.
	ErrNetworkUnreachable = errors.New("network unreachable")
	ErrServerUnavailable  = errors.New("server unavailable")
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation error")
	ErrFolioConflict      = errors.New("folio already taken")
	ErrUploadFailed       = errors.New("upload failed")

	// Sync engine errors.
	ErrSyncInProgress = errors.New("sync already in progress")
)

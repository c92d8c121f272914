package library

import "errors"

// Sentinel errors for library operations.
var (
	ErrLibraryRootMissing = errors.New("library root is not configured")
	ErrSourceMissing      = errors.New("source file not accessible")
	ErrTargetNotCleared   = errors.New("existing target could not be removed")
	ErrHardlinkFailed     = errors.New("failed to create hard link")
	ErrCrossDevice        = errors.New("cross-device link not supported")
)

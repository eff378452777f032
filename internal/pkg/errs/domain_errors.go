package errs

import "errors"

// Domain-specific sentinel errors shared across usecase layers
var (
	// Packet errors
	ErrPacketNotFound = errors.New("packet not found")
	ErrInvalidState   = errors.New("invalid packet state for transition")
	ErrStaleState     = errors.New("packet state changed concurrently")
	ErrDuplicateID    = errors.New("identifier already in use")

	// Configuration errors
	ErrValidation        = errors.New("destination validation failed")
	ErrRateLimitExceeded = errors.New("update rate limit exceeded")

	// Artifact errors
	ErrArtifactRejected = errors.New("artifact rejected")

	// Operation errors
	ErrDatabaseOperationFailed = errors.New("database operation failed")
)

package media

import "errors"

// Failure classes reported by devices. Backends wrap these with %w so callers
// can classify with errors.Is.
var (
	// ErrPermissionDenied means the user or system refused camera access.
	ErrPermissionDenied = errors.New("camera permission denied")
	// ErrNotSupported means capture is unavailable in this environment.
	ErrNotSupported = errors.New("camera capture not supported")
	// ErrAborted is a transient failure, usually device contention.
	ErrAborted = errors.New("camera acquisition aborted")
	// ErrOverConstrained means the device rejected the requested constraints.
	ErrOverConstrained = errors.New("constraints cannot be satisfied")
)

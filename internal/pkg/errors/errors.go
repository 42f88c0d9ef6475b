package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is a generic sentinel for malformed input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrPermissionDenied signals a role/ownership/scope gate failure.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrConflict signals a duplicate resource (e.g. an identical fingerprint).
	ErrConflict = errors.New("conflict")
	// ErrPolicyViolation signals a governance gate such as an active legal hold.
	ErrPolicyViolation = errors.New("policy violation")
	// ErrProcessingFailed signals a contained per-document pipeline failure.
	ErrProcessingFailed = errors.New("processing failed")
	// ErrUnavailable signals shared infrastructure that cannot be reached.
	ErrUnavailable = errors.New("unavailable")
)

package models

import "errors"

// Sentinel errors shared by repositories, services and handlers.
// Lower layers wrap them with fmt.Errorf("...: %w", err); handlers match them with errors.Is.
var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrConflict         = errors.New("conflict")
	ErrValidation       = errors.New("validation error")
)

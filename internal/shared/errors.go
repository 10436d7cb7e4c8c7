// Package shared holds cross-module primitives: sentinel errors and audit logging.
package shared

import "errors"

var (
	// ErrNotFound indicates a lookup or delete against a missing row.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate indicates a unique-constraint conflict.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrValidation indicates rejected input before any persistence access.
	ErrValidation = errors.New("validation failed")
)

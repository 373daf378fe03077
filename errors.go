// errors.go: structured error taxonomy for the vigil Keeper.
//
// This file provides structured error types using the go-errors library,
// enabling rich error context, categorization, and standardized error
// codes for every Keeper failure mode.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package vigil

import (
	goerrors "errors"

	"github.com/agilira/go-errors"
)

// Error codes for vigil Keeper operations.
const (
	// Integrity errors
	ErrCodeIntegrityViolation errors.ErrorCode = "VIGIL_INTEGRITY_VIOLATION"

	// Policy errors
	ErrCodeRefusedWhileTampered errors.ErrorCode = "VIGIL_REFUSED_WHILE_TAMPERED"

	// Persistence errors
	ErrCodeStoreUnavailable errors.ErrorCode = "VIGIL_STORE_UNAVAILABLE"

	// Construction errors
	ErrCodeClockUnavailable errors.ErrorCode = "VIGIL_CLOCK_UNAVAILABLE"
	ErrCodeInvalidConfig    errors.ErrorCode = "VIGIL_INVALID_CONFIG"
)

const (
	msgIntegrityViolation   = "prior state failed decryption, authentication, parsing, or the clock handshake"
	msgRefusedWhileTampered = "refused: keeper is in the tampered/locked state"
	msgStoreUnavailable     = "state store operation failed"
	msgClockUnavailable     = "no monotonic clock source available"
	msgInvalidConfig        = "invalid keeper configuration"
)

// NewErrIntegrityViolation creates the error emitted when a prior blob
// cannot be loaded or fails decryption/parsing, or the startup handshake
// detects a clock discrepancy beyond tolerance. corruptionCause is
// populated for the former and left empty for the latter.
func NewErrIntegrityViolation(corruptionCause string, cause error) error {
	if cause != nil {
		return errors.Wrap(cause, ErrCodeIntegrityViolation, msgIntegrityViolation).
			WithContext("corruption_cause", corruptionCause)
	}
	return errors.NewWithContext(ErrCodeIntegrityViolation, msgIntegrityViolation, map[string]interface{}{
		"corruption_cause": corruptionCause,
	})
}

// NewErrRefusedWhileTampered creates the error SetBudget returns while the
// Keeper is LOCKED.
func NewErrRefusedWhileTampered(operation string) error {
	return errors.NewWithField(ErrCodeRefusedWhileTampered, msgRefusedWhileTampered, "operation", operation)
}

// NewErrStoreUnavailable creates a transient store error; retried on the
// next heartbeat per the Keeper's failure semantics.
func NewErrStoreUnavailable(operation, path string, cause error) error {
	return errors.Wrap(cause, ErrCodeStoreUnavailable, msgStoreUnavailable).
		WithContext("operation", operation).
		WithContext("path", path).
		AsRetryable()
}

// NewErrClockUnavailable creates the fatal, construction-time-only error
// for a platform with no usable monotonic source.
func NewErrClockUnavailable(cause error) error {
	return errors.Wrap(cause, ErrCodeClockUnavailable, msgClockUnavailable).
		WithSeverity("critical")
}

// NewErrInvalidConfig creates an error for a Config that Validate cannot
// reasonably default its way out of (currently: missing StatePath or
// Passphrase).
func NewErrInvalidConfig(field string) error {
	return errors.NewWithField(ErrCodeInvalidConfig, msgInvalidConfig, "field", field)
}

// IsIntegrityViolationErr reports whether err is (or wraps) an
// IntegrityViolation.
func IsIntegrityViolationErr(err error) bool {
	return errors.HasCode(err, ErrCodeIntegrityViolation)
}

// IsRefusedWhileTampered reports whether err is the RefusedWhileTampered
// error returned by SetBudget in the LOCKED state.
func IsRefusedWhileTampered(err error) bool {
	return errors.HasCode(err, ErrCodeRefusedWhileTampered)
}

// IsStoreUnavailable reports whether err is a transient store error.
func IsStoreUnavailable(err error) bool {
	return errors.HasCode(err, ErrCodeStoreUnavailable)
}

// IsRetryable reports whether err can be retried, e.g. on the next
// heartbeat.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var retryable errors.Retryable
	if goerrors.As(err, &retryable) {
		return retryable.IsRetryable()
	}
	return false
}

// GetErrorCode extracts the error code from err, if any.
func GetErrorCode(err error) errors.ErrorCode {
	if err == nil {
		return ""
	}
	var coder errors.ErrorCoder
	if goerrors.As(err, &coder) {
		return coder.ErrorCode()
	}
	return ""
}

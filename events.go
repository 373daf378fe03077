// events.go: the Keeper's observer surface.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package vigil

// TamperDetected is emitted at most once per Keeper instance, at the
// moment the LOCKED state is entered (either from a corrupted/unreadable
// prior blob, or from a clock handshake discrepancy beyond tolerance).
type TamperDetected struct {
	MonoElapsedMS   int64
	WallElapsedMS   int64
	DiscrepancyMS   int64
	CorruptionCause string

	// Err is the structured VIGIL_INTEGRITY_VIOLATION error (see
	// NewErrIntegrityViolation), suitable for IsIntegrityViolationErr,
	// GetErrorCode, and errors.RootCause.
	Err error
}

// HeartbeatSaved is emitted after every successful persist performed by
// the heartbeat (not by Initialize or Dispose).
type HeartbeatSaved struct {
	RemainingMS    uint64
	HeartbeatCount uint64
}

// TamperDetectedFunc and HeartbeatSavedFunc are the callback shapes
// subscribers register. Callbacks run synchronously: TamperDetected
// callbacks inside Initialize, while the Keeper's mutex is held;
// HeartbeatSaved callbacks on the heartbeat goroutine, after the tick has
// released the mutex. They must be fast and non-blocking.
type TamperDetectedFunc func(TamperDetected)
type HeartbeatSavedFunc func(HeartbeatSaved)

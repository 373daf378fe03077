// keeper.go: the policy brain — handshake, debit, tamper freeze, heartbeat.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package vigil

import (
	"sync"
	"sync/atomic"
	"time"
)

// Keeper owns the in-memory State exclusively, performs the startup
// handshake, debits RemainingMS against monotonic elapsed time, enforces
// the tamper freeze, emits events, and drives the heartbeat.
//
// All mutation of State is serialized by mu: Initialize, SetBudget,
// Debit, the heartbeat goroutine, and Dispose all acquire it for the
// duration of their critical section. The only operation that may block
// inside a critical section is the Store write, and Store implementations
// must not interleave two writes to the same path.
type Keeper struct {
	cfg Config

	mu                     sync.Mutex
	state                  State
	initialized            bool
	sessionAnchorMonoTicks int64 // mono reading at the last Debit call

	heartbeatPeriodNS atomic.Int64 // live-tunable via HotTuning
	stopHeartbeat     chan struct{}
	heartbeatDone     chan struct{}
}

// applyTuning updates the live-tunable subset of cfg. ToleranceMS is read
// only by the handshake inside Initialize, so a value applied after
// Initialize has no effect on this Keeper and is not persisted for a
// later process; HeartbeatPeriod takes effect on the heartbeat's next
// tick.
func (k *Keeper) applyTuning(t Tuning) {
	k.mu.Lock()
	k.cfg.ToleranceMS = t.ToleranceMS
	k.mu.Unlock()
	k.heartbeatPeriodNS.Store(int64(t.HeartbeatPeriod))
}

// New constructs a Keeper from cfg. cfg is validated and defaulted in
// place; construction fails only if a required field is missing or the
// clock/cipher collaborators cannot be built (ClockUnavailable).
func New(cfg Config) (*Keeper, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Keeper{cfg: cfg}, nil
}

// Initialize must be called exactly once per Keeper instance before any
// other operation. It loads the prior blob (if any), runs the startup
// handshake, and persists the resulting State.
func (k *Keeper) Initialize(initialBudgetMS uint64) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.initialized {
		return nil
	}

	blob, err := k.cfg.Store.Load()
	switch {
	case err == ErrNotFound:
		k.state = k.freshState(initialBudgetMS)
	case err != nil:
		k.state = k.lockedState(initialBudgetMS, "store unavailable", err)
	default:
		plaintext, decErr := k.cfg.Cipher.Decrypt(blob)
		if decErr != nil {
			k.state = k.lockedState(initialBudgetMS, "ciphertext decryption failed", decErr)
			break
		}
		prior, codecErr := Codec{}.Decode(plaintext)
		if codecErr != nil {
			k.state = k.lockedState(initialBudgetMS, "state record decode failed", codecErr)
			break
		}
		k.state = k.handshake(prior)
	}

	k.sessionAnchorMonoTicks = k.cfg.ClockSource.MonoNow()
	k.initialized = true
	k.heartbeatPeriodNS.Store(int64(k.cfg.HeartbeatPeriod))

	if err := k.persistLocked(); err != nil {
		k.cfg.Logger.Warn("vigil: initialize persist failed", "error", err)
	}

	k.startHeartbeatLocked()
	return nil
}

// freshState builds a brand-new State when no prior blob exists.
func (k *Keeper) freshState(initialBudgetMS uint64) State {
	return State{
		RemainingMS:    initialBudgetMS,
		LastMonoTicks:  k.cfg.ClockSource.MonoNow(),
		LastWallTicks:  k.cfg.ClockSource.WallNow(),
		MonoFrequency:  k.cfg.ClockSource.MonoFrequency(),
		Tampered:       false,
		HeartbeatCount: 0,
	}
}

// lockedState builds a LOCKED State when the prior blob cannot be loaded
// from the Store, or exists but fails decryption or parsing, logs the
// structured integrity violation, and emits TamperDetected.
func (k *Keeper) lockedState(initialBudgetMS uint64, corruptionCause string, cause error) State {
	violation := NewErrIntegrityViolation(corruptionCause, cause)
	k.cfg.Logger.Error("vigil: integrity violation, entering locked state", "error", violation)
	k.cfg.MetricsCollector.ObserveHandshake(true, 0)
	if k.cfg.OnTamperDetected != nil {
		k.cfg.OnTamperDetected(TamperDetected{CorruptionCause: corruptionCause, Err: violation})
	}
	s := k.freshState(initialBudgetMS)
	s.Tampered = true
	return s
}

// handshake implements the startup clock cross-check. It gates entry
// into RUNNING (remaining debited against mono-elapsed) or LOCKED
// (remaining frozen, TamperDetected emitted).
func (k *Keeper) handshake(prior State) State {
	monoNow := k.cfg.ClockSource.MonoNow()
	wallNow := k.cfg.ClockSource.WallNow()
	freq := prior.MonoFrequency
	if freq <= 0 {
		freq = k.cfg.ClockSource.MonoFrequency()
	}

	monoElapsedMS := maxInt64(0, (monoNow-prior.LastMonoTicks)*1000/freq)
	wallElapsedMS := (wallNow - prior.LastWallTicks) / wallTicksPerMS
	discrepancyMS := absInt64(wallElapsedMS - monoElapsedMS)

	next := prior
	if discrepancyMS > k.cfg.ToleranceMS {
		next.Tampered = true
		violation := NewErrIntegrityViolation("", nil)
		k.cfg.Logger.Error("vigil: clock handshake discrepancy beyond tolerance, entering locked state",
			"error", violation, "discrepancy_ms", discrepancyMS)
		k.cfg.MetricsCollector.ObserveHandshake(true, discrepancyMS)
		if k.cfg.OnTamperDetected != nil {
			k.cfg.OnTamperDetected(TamperDetected{
				MonoElapsedMS: monoElapsedMS,
				WallElapsedMS: wallElapsedMS,
				DiscrepancyMS: discrepancyMS,
				Err:           violation,
			})
		}
	} else {
		if !next.Tampered {
			next.clampDebit(monoElapsedMS)
		}
		k.cfg.MetricsCollector.ObserveHandshake(false, discrepancyMS)
	}
	return next
}

// SetBudget assigns RemainingMS directly and persists. Fails with
// RefusedWhileTampered if the Keeper is LOCKED.
func (k *Keeper) SetBudget(newMS uint64) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.state.Tampered {
		return NewErrRefusedWhileTampered("set_budget")
	}
	k.state.RemainingMS = newMS
	return k.persistLocked()
}

// Debit computes monotonic elapsed since the last recorded session
// anchor, subtracts it from RemainingMS clamped at zero, and advances the
// anchor. A no-op while LOCKED.
func (k *Keeper) Debit() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.debitLocked()
}

func (k *Keeper) debitLocked() {
	now := k.cfg.ClockSource.MonoNow()
	if k.state.Tampered {
		k.sessionAnchorMonoTicks = now
		return
	}
	freq := k.state.MonoFrequency
	if freq <= 0 {
		freq = k.cfg.ClockSource.MonoFrequency()
	}
	elapsedMS := maxInt64(0, (now-k.sessionAnchorMonoTicks)*1000/freq)
	k.state.clampDebit(elapsedMS)
	k.sessionAnchorMonoTicks = now
}

// Remaining returns the current remaining budget, in milliseconds.
func (k *Keeper) Remaining() uint64 {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.state.RemainingMS
}

// IsTampered reports whether the Keeper is LOCKED.
func (k *Keeper) IsTampered() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.state.Tampered
}

// OnTamperDetected registers an additional tamper callback alongside any
// configured at construction.
func (k *Keeper) OnTamperDetected(fn TamperDetectedFunc) {
	k.mu.Lock()
	defer k.mu.Unlock()
	prev := k.cfg.OnTamperDetected
	k.cfg.OnTamperDetected = func(e TamperDetected) {
		if prev != nil {
			prev(e)
		}
		fn(e)
	}
}

// OnHeartbeatSaved registers an additional heartbeat callback alongside
// any configured at construction.
func (k *Keeper) OnHeartbeatSaved(fn HeartbeatSavedFunc) {
	k.mu.Lock()
	defer k.mu.Unlock()
	prev := k.cfg.OnHeartbeatSaved
	k.cfg.OnHeartbeatSaved = func(e HeartbeatSaved) {
		if prev != nil {
			prev(e)
		}
		fn(e)
	}
}

// Dispose stops the heartbeat, runs a final Debit and persist, and
// returns. Idempotent; safe to call multiple times.
func (k *Keeper) Dispose() error {
	k.mu.Lock()
	running := k.stopHeartbeat != nil
	k.mu.Unlock()

	if running {
		k.stopHeartbeatAndWait()
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	if !k.initialized {
		return nil
	}
	k.debitLocked()
	return k.persistLocked()
}

// persistLocked encodes, encrypts, and saves the current State, refreshes
// the clock stamps, and bumps HeartbeatCount. Caller must hold mu. Store
// failures are logged and left for the next heartbeat retry; the
// in-memory State remains authoritative.
func (k *Keeper) persistLocked() error {
	k.state.LastMonoTicks = k.cfg.ClockSource.MonoNow()
	k.state.LastWallTicks = k.cfg.ClockSource.WallNow()
	k.state.MonoFrequency = k.cfg.ClockSource.MonoFrequency()
	k.state.HeartbeatCount++

	plaintext := Codec{}.Encode(k.state)
	blob, err := k.cfg.Cipher.Encrypt(plaintext)
	if err != nil {
		k.state.HeartbeatCount--
		return err
	}
	if err := k.cfg.Store.Save(blob); err != nil {
		k.state.HeartbeatCount--
		return err
	}
	return nil
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func absInt64(a int64) int64 {
	if a < 0 {
		return -a
	}
	return a
}

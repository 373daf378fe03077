// Package vigil implements the tamper-resistant core of a local
// enforcement daemon: a block window that, once armed, counts down a
// remaining budget in milliseconds and cannot be shortened by killing the
// process, rewinding the system clock, or corrupting the state file on
// disk.
//
// # Overview
//
// vigil owns exactly one responsibility: keeping a remaining-time budget
// honest across restarts, clock tampering, and process death. It is not a
// process blocker, a service supervisor, or an installer — those are
// external adapters that read vigil's observable state (Remaining,
// IsTampered) and call its Debit/SetBudget operations.
//
// # Components
//
//   - ClockSource: two independent time readings (monotonic, wall) plus
//     the monotonic frequency.
//   - Cipher: authenticated encryption (ChaCha20-Poly1305, Argon2id key
//     derivation) of the persisted state blob.
//   - Codec: fixed-width binary encode/decode of State.
//   - Store: atomic, crash-safe read/write of the single encrypted blob.
//   - Keeper: the state machine — handshake, debit, tamper freeze,
//     heartbeat, events.
//
// # Quick Start
//
//	keeper, err := vigil.New(vigil.Config{
//	    StatePath:  "/var/lib/vigil/state.bin",
//	    Passphrase: []byte(passphraseFromSecretStore()),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := keeper.Initialize(60 * 60 * 1000); err != nil {
//	    log.Fatal(err)
//	}
//	defer keeper.Dispose()
//
//	fmt.Println(keeper.Remaining(), keeper.IsTampered())
//
// # Startup Handshake
//
// Initialize loads the prior blob (if any), decrypts and parses it, and
// cross-checks a monotonic elapsed reading against a wall-clock elapsed
// reading. A discrepancy beyond Config.ToleranceMS (default 30s, bounded
// 5s-60s) enters the LOCKED state: RemainingMS is frozen and
// TamperDetected fires. Within tolerance, RemainingMS is debited by the
// monotonic elapsed time and the Keeper runs normally. A prior blob that
// fails decryption, authentication, or parsing also enters LOCKED,
// adopting the caller-supplied initial budget — by design, typically a
// punitive maximum.
//
// # Heartbeat
//
// Once initialized, a background goroutine debits and persists the
// current State every Config.HeartbeatPeriod (default 10s, bounded
// 1s-60s). A heartbeat failure is logged and retried on the next tick; it
// never corrupts State or propagates out of the goroutine. Dispose stops
// the heartbeat, performs one final debit-and-persist, and returns within
// one heartbeat period.
//
// # Tamper Freeze
//
// Once Tampered is true, it is sticky for the lifetime of the state file:
// no operation may decrease RemainingMS further, SetBudget is refused
// with RefusedWhileTampered, and Debit becomes a no-op. Only external
// deletion of the state file resets the Keeper to a fresh budget on the
// next Initialize.
//
// # Events
//
// Keeper.OnTamperDetected and Keeper.OnHeartbeatSaved register callbacks
// invoked synchronously, from Initialize (TamperDetected) or from the
// heartbeat goroutine (HeartbeatSaved): fast, non-blocking, no dynamic
// unsubscription after startup.
//
// # Hot-Reloadable Tuning
//
// HotTuning wraps github.com/agilira/argus to let an operator adjust
// ToleranceMS and HeartbeatPeriod from a watched config file without
// restarting the daemon:
//
//	hot, _ := vigil.NewHotTuning(keeper, vigil.HotTuningOptions{
//	    ConfigPath: "/etc/vigil/tuning.yaml",
//	})
//	hot.Start()
//	defer hot.Stop()
//
// # Error Handling
//
// vigil uses structured errors with error codes from go-errors:
//
//	if err := keeper.SetBudget(0); err != nil {
//	    if vigil.IsRefusedWhileTampered(err) {
//	        // keeper is LOCKED; nothing to do but report it
//	    }
//	}
//
// Error codes: VIGIL_INTEGRITY_VIOLATION, VIGIL_REFUSED_WHILE_TAMPERED,
// VIGIL_STORE_UNAVAILABLE, VIGIL_CLOCK_UNAVAILABLE, VIGIL_INVALID_CONFIG.
//
// # Concurrency Model
//
// A single mutex serializes all State mutation: Initialize, SetBudget,
// Debit, the heartbeat tick, and Dispose each hold it for one short
// critical section. The only blocking operation inside a critical section
// is the Store write; Store implementations must not allow two writes to
// the same path to interleave. Concurrent Keeper instances over the same
// StatePath are undefined behavior and must be prevented by the caller.
//
// # Non-goals
//
// Defeating a privileged attacker with kernel access, a hypervisor that
// rewrites the monotonic counter, or physical removal of the state file.
// Distributed/remote attestation. Hardware (TPM) key binding — the
// Cipher uses a symmetric passphrase-derived key only.
//
// # License
//
// See LICENSE file in the repository.
package vigil

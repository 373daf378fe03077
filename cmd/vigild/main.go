// Command vigild is a minimal demonstration daemon that drives a vigil
// Keeper through its full lifecycle: construct, initialize, heartbeat,
// and a clean shutdown on SIGINT/SIGTERM.
//
// It is deliberately not an installation or service-recovery CLI: vigild
// has no install step, no service recovery, and no OS-specific process
// blocking. It exists to give a human (or a real supervisor adapter) a
// concrete way to drive the core, and to give flash-flags, otherwise
// unused by the core library, a caller.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	flashflags "github.com/agilira/flash-flags"

	"github.com/agilira/vigil"
)

func main() {
	fs := flashflags.New("vigild")
	statePath := fs.String("state-path", "/var/lib/vigild/state.bin", "path to the encrypted state file")
	passEnv := fs.String("passphrase-env", "VIGILD_PASSPHRASE", "environment variable holding the passphrase")
	initialBudget := fs.Duration("initial-budget", time.Hour, "budget to arm on a fresh state file")
	tolerance := fs.Int("tolerance-ms", int(vigil.DefaultToleranceMS), "handshake discrepancy tolerance, in ms")
	heartbeat := fs.Duration("heartbeat", vigil.DefaultHeartbeatPeriod, "heartbeat debit-and-persist period")
	tuningPath := fs.String("tuning-file", "", "optional config file to hot-reload tolerance/heartbeat from")

	if err := fs.Parse(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "vigild:", err)
		os.Exit(2)
	}

	passphrase := os.Getenv(*passEnv)
	if passphrase == "" {
		fmt.Fprintf(os.Stderr, "vigild: environment variable %s is not set\n", *passEnv)
		os.Exit(2)
	}

	keeper, err := vigil.New(vigil.Config{
		StatePath:       *statePath,
		Passphrase:      []byte(passphrase),
		ToleranceMS:     int64(*tolerance),
		HeartbeatPeriod: *heartbeat,
		OnTamperDetected: func(e vigil.TamperDetected) {
			code := "unknown"
			if vigil.IsIntegrityViolationErr(e.Err) {
				code = string(vigil.GetErrorCode(e.Err))
			}
			fmt.Fprintf(os.Stderr, "vigild: TAMPER DETECTED (%s) discrepancy=%dms cause=%q\n",
				code, e.DiscrepancyMS, e.CorruptionCause)
		},
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "vigild: construct:", err)
		os.Exit(1)
	}

	if err := keeper.Initialize(uint64(initialBudget.Milliseconds())); err != nil {
		fmt.Fprintln(os.Stderr, "vigild: initialize:", err)
		os.Exit(1)
	}
	defer keeper.Dispose()

	if *tuningPath != "" {
		hot, err := vigil.NewHotTuning(keeper, vigil.HotTuningOptions{ConfigPath: *tuningPath})
		if err != nil {
			fmt.Fprintln(os.Stderr, "vigild: hot-tuning:", err)
			os.Exit(1)
		}
		if err := hot.Start(); err != nil {
			fmt.Fprintln(os.Stderr, "vigild: hot-tuning start:", err)
			os.Exit(1)
		}
		defer hot.Stop()
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-sig:
			fmt.Println("vigild: shutting down")
			return
		case <-ticker.C:
			fmt.Printf("vigild: remaining=%dms tampered=%v\n", keeper.Remaining(), keeper.IsTampered())
		}
	}
}

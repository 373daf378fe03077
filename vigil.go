// Package vigil implements a tamper-resistant, time-bounded block-window
// timekeeper: the core state machine that debits a remaining budget against
// monotonic elapsed time, persists it in an encrypted and authenticated
// file, and refuses to let the budget be shortened by clock manipulation,
// process death, or file corruption.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package vigil

import "time"

const (
	// Version of the vigil timekeeper library.
	Version = "v0.1.0-dev"

	// DefaultToleranceMS is the default maximum permitted discrepancy
	// between wall-clock elapsed and monotonic elapsed across a restart
	// before the Keeper enters the LOCKED state.
	DefaultToleranceMS int64 = 30_000

	// MinToleranceMS and MaxToleranceMS bound the configurable tolerance.
	MinToleranceMS int64 = 5_000
	MaxToleranceMS int64 = 60_000

	// DefaultHeartbeatPeriod is the default interval between heartbeat
	// debit-and-persist cycles.
	DefaultHeartbeatPeriod = 10 * time.Second

	// MinHeartbeatPeriod and MaxHeartbeatPeriod bound the configurable
	// heartbeat period.
	MinHeartbeatPeriod = 1 * time.Second
	MaxHeartbeatPeriod = 60 * time.Second
)

// clock.go: the two independent time readings the handshake cross-checks.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package vigil

import (
	"time"

	"github.com/agilira/go-timecache"
)

// ClockSource provides two independent time readings plus the monotonic
// frequency. MonoNow must be non-decreasing within a single process and
// unaffected by administrative wall-clock changes; it need not be
// meaningful across reboots. WallNow returns the current wall instant as a
// 100-ns tick count and may jump arbitrarily if an operator adjusts the
// system clock. MonoFrequency is a positive constant for the process
// lifetime.
type ClockSource interface {
	MonoNow() int64
	WallNow() int64
	MonoFrequency() int64
}

// wallTicksPerMS is the number of 100-ns wall ticks in one millisecond.
const wallTicksPerMS = int64(time.Millisecond / 100)

// systemClock is the default ClockSource. MonoNow is served from a
// monotonic-only duration measured against a process-start epoch: two
// time.Time values produced by time.Now() carry a monotonic reading and
// subtract using it (see the time package docs), so this is immune to wall
// clock adjustments without any platform-specific syscall. WallNow is
// served from go-timecache's background-refreshed clock, which keeps
// repeated reads from the heartbeat cheap.
type systemClock struct {
	epoch time.Time
}

// NewSystemClock constructs the default ClockSource. Construction cannot
// fail on any platform Go supports; the error return exists so a future
// platform-specific clock source (and tests) can report ClockUnavailable
// without changing the interface.
func NewSystemClock() (ClockSource, error) {
	return &systemClock{epoch: time.Now()}, nil
}

func (c *systemClock) MonoNow() int64 {
	return int64(time.Since(c.epoch))
}

func (c *systemClock) WallNow() int64 {
	return timecache.CachedTimeNano() / 100
}

func (c *systemClock) MonoFrequency() int64 {
	return int64(time.Second)
}

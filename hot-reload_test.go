// hot-reload_test.go: tests for Tuning parsing and live application,
// exercised directly (without a running Argus watcher) since parseTuning
// and applyTuning are pure/local with respect to a config-data map.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package vigil

import (
	"testing"
	"time"
)

func TestParseTuning_NestedSection(t *testing.T) {
	ht := &HotTuning{}
	fallback := Tuning{ToleranceMS: DefaultToleranceMS, HeartbeatPeriod: DefaultHeartbeatPeriod}

	data := map[string]interface{}{
		"vigil": map[string]interface{}{
			"tolerance_ms": 15000,
			"heartbeat":    "5s",
		},
	}
	got := ht.parseTuning(data, fallback)
	if got.ToleranceMS != 15000 {
		t.Fatalf("ToleranceMS = %d, want 15000", got.ToleranceMS)
	}
	if got.HeartbeatPeriod != 5*time.Second {
		t.Fatalf("HeartbeatPeriod = %v, want 5s", got.HeartbeatPeriod)
	}
}

func TestParseTuning_FlatSection(t *testing.T) {
	ht := &HotTuning{}
	fallback := Tuning{ToleranceMS: DefaultToleranceMS, HeartbeatPeriod: DefaultHeartbeatPeriod}

	data := map[string]interface{}{
		"tolerance_ms": float64(20000), // JSON numbers decode as float64
		"heartbeat":    "2s",
	}
	got := ht.parseTuning(data, fallback)
	if got.ToleranceMS != 20000 {
		t.Fatalf("ToleranceMS = %d, want 20000", got.ToleranceMS)
	}
	if got.HeartbeatPeriod != 2*time.Second {
		t.Fatalf("HeartbeatPeriod = %v, want 2s", got.HeartbeatPeriod)
	}
}

func TestParseTuning_OutOfRangeFallsBackToPrevious(t *testing.T) {
	ht := &HotTuning{}
	fallback := Tuning{ToleranceMS: 12345, HeartbeatPeriod: 7 * time.Second}

	data := map[string]interface{}{
		"vigil": map[string]interface{}{
			"tolerance_ms": 999999,   // far outside [MinToleranceMS, MaxToleranceMS]
			"heartbeat":    "5h",     // far outside [Min,Max]HeartbeatPeriod
		},
	}
	got := ht.parseTuning(data, fallback)
	if got != fallback {
		t.Fatalf("parseTuning(out-of-range) = %+v, want unchanged fallback %+v", got, fallback)
	}
}

func TestParseTuning_MissingSectionKeepsFallback(t *testing.T) {
	ht := &HotTuning{}
	fallback := Tuning{ToleranceMS: 9000, HeartbeatPeriod: 3 * time.Second}

	got := ht.parseTuning(map[string]interface{}{"unrelated": "value"}, fallback)
	if got != fallback {
		t.Fatalf("parseTuning(missing section) = %+v, want unchanged fallback %+v", got, fallback)
	}
}

func TestParseTuning_PartialUpdateKeepsOtherField(t *testing.T) {
	ht := &HotTuning{}
	fallback := Tuning{ToleranceMS: 9000, HeartbeatPeriod: 3 * time.Second}

	data := map[string]interface{}{
		"vigil": map[string]interface{}{
			"tolerance_ms": 40000,
		},
	}
	got := ht.parseTuning(data, fallback)
	if got.ToleranceMS != 40000 {
		t.Fatalf("ToleranceMS = %d, want 40000", got.ToleranceMS)
	}
	if got.HeartbeatPeriod != fallback.HeartbeatPeriod {
		t.Fatalf("HeartbeatPeriod = %v, want unchanged %v", got.HeartbeatPeriod, fallback.HeartbeatPeriod)
	}
}

func TestKeeper_ApplyTuning(t *testing.T) {
	clock := newFakeClock()
	store := &memStore{}
	k := newTestKeeper(t, clock, store, "pw", 0)
	if err := k.Initialize(100_000); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer k.Dispose()

	k.applyTuning(Tuning{ToleranceMS: 45000, HeartbeatPeriod: 20 * time.Second})

	k.mu.Lock()
	tol := k.cfg.ToleranceMS
	k.mu.Unlock()
	if tol != 45000 {
		t.Fatalf("cfg.ToleranceMS = %d, want 45000", tol)
	}
	if got := time.Duration(k.heartbeatPeriodNS.Load()); got != 20*time.Second {
		t.Fatalf("heartbeatPeriodNS = %v, want 20s", got)
	}
}

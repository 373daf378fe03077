// hot-reload.go: dynamic tolerance/heartbeat Tuning with Argus integration.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package vigil

import (
	"fmt"
	"sync"
	"time"

	"github.com/agilira/argus"
)

// HotTuning provides dynamic Tuning of a Keeper's TOLERANCE_MS and
// heartbeat period using Argus. It watches a configuration file and
// applies changes to the already-running Keeper without a restart.
// Every other Keeper field (StatePath, Passphrase, Cipher, Store) is
// fixed for the life of a state file and is intentionally not
// reloadable here.
type HotTuning struct {
	keeper  *Keeper
	watcher *argus.Watcher
	mu      sync.RWMutex
	current Tuning

	// OnReload is called after Tuning is successfully reloaded. Optional;
	// must be fast and non-blocking.
	OnReload func(old, new Tuning)
}

// Tuning is the subset of Config that HotTuning may change at runtime.
type Tuning struct {
	ToleranceMS     int64
	HeartbeatPeriod time.Duration
}

// HotTuningOptions configures hot reload behavior.
type HotTuningOptions struct {
	// ConfigPath is the path to the configuration file to watch.
	// Supports JSON, YAML, TOML, HCL, INI, Properties formats.
	ConfigPath string

	// PollInterval is how often to check for configuration changes.
	// Default: 1 second. Minimum: 100ms.
	PollInterval time.Duration

	// OnReload is called after Tuning is successfully reloaded.
	OnReload func(old, new Tuning)

	// Logger is accepted but not read: HotTuning does not log its
	// reload operations.
	Logger Logger
}

// NewHotTuning creates a new hot-reloadable Tuning layer for an
// already-constructed Keeper. It starts watching the configuration file
// immediately.
//
// Example configuration file (YAML):
//
//	vigil:
//	  tolerance_ms: 30000
//	  heartbeat: "10s"
//
// Supported configuration keys:
//   - vigil.tolerance_ms (int): handshake discrepancy tolerance, 5000-60000
//   - vigil.heartbeat (duration string): heartbeat period, "1s"-"60s"
func NewHotTuning(keeper *Keeper, opts HotTuningOptions) (*HotTuning, error) {
	if opts.ConfigPath == "" {
		return nil, fmt.Errorf("config_path is required")
	}

	if opts.PollInterval == 0 {
		opts.PollInterval = 1 * time.Second
	} else if opts.PollInterval < 100*time.Millisecond {
		opts.PollInterval = 100 * time.Millisecond
	}

	ht := &HotTuning{
		keeper:   keeper,
		OnReload: opts.OnReload,
		current: Tuning{
			ToleranceMS:     keeper.cfg.ToleranceMS,
			HeartbeatPeriod: keeper.cfg.HeartbeatPeriod,
		},
	}

	argusConfig := argus.Config{
		PollInterval: opts.PollInterval,
	}

	watcher, err := argus.UniversalConfigWatcherWithConfig(opts.ConfigPath, ht.handleConfigChange, argusConfig)
	if err != nil {
		return nil, err
	}
	ht.watcher = watcher

	return ht, nil
}

// Start begins watching the configuration file for changes.
func (ht *HotTuning) Start() error {
	if ht.watcher.IsRunning() {
		return nil // Already started
	}
	return ht.watcher.Start()
}

// Stop stops watching the configuration file.
func (ht *HotTuning) Stop() error {
	return ht.watcher.Stop()
}

// Current returns the currently applied Tuning (thread-safe).
func (ht *HotTuning) Current() Tuning {
	ht.mu.RLock()
	defer ht.mu.RUnlock()
	return ht.current
}

// handleConfigChange is called by Argus when the configuration changes.
func (ht *HotTuning) handleConfigChange(configData map[string]interface{}) {
	ht.mu.Lock()
	old := ht.current
	next := ht.parseTuning(configData, old)
	ht.current = next
	ht.mu.Unlock()

	ht.keeper.applyTuning(next)

	if ht.OnReload != nil {
		ht.OnReload(old, next)
	}
}

// parseTuning extracts tolerance/heartbeat settings from Argus config
// data, falling back to the previous value for anything missing or out
// of range — the heartbeat period's minimum bound doubles as a floor on
// how often Argus itself needs to notice a change, so a malformed file
// degrades to "keep running with the last good Tuning" rather than to a
// hardcoded default.
func (ht *HotTuning) parseTuning(data map[string]interface{}, fallback Tuning) Tuning {
	next := fallback

	section, ok := data["vigil"].(map[string]interface{})
	if !ok {
		if _, hasTolerance := data["tolerance_ms"]; hasTolerance {
			section = data
		} else {
			return next
		}
	}

	if ms, ok := parseIntInRange(section["tolerance_ms"], int(MinToleranceMS), int(MaxToleranceMS)); ok {
		next.ToleranceMS = int64(ms)
	}

	if hb, ok := parseDuration(section["heartbeat"]); ok {
		if hb >= MinHeartbeatPeriod && hb <= MaxHeartbeatPeriod {
			next.HeartbeatPeriod = hb
		}
	}

	return next
}

// parseIntInRange extracts an integer within the specified range [min, max].
// Supports both int and float64 types (YAML/JSON may vary).
func parseIntInRange(value interface{}, min, max int) (int, bool) {
	switch v := value.(type) {
	case int:
		if v >= min && v <= max {
			return v, true
		}
	case float64:
		if v >= float64(min) && v <= float64(max) {
			return int(v), true
		}
	}
	return 0, false
}

// parseDuration extracts a time.Duration from a string value.
func parseDuration(value interface{}) (time.Duration, bool) {
	if str, ok := value.(string); ok {
		if d, err := time.ParseDuration(str); err == nil {
			return d, true
		}
	}
	return 0, false
}

// heartbeat.go: the periodic debit-and-persist task.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package vigil

import "time"

// startHeartbeatLocked starts the background ticker. Caller must hold mu;
// must only be called once, from Initialize.
func (k *Keeper) startHeartbeatLocked() {
	k.stopHeartbeat = make(chan struct{})
	k.heartbeatDone = make(chan struct{})
	stop := k.stopHeartbeat
	done := k.heartbeatDone

	go func() {
		defer close(done)
		timer := time.NewTimer(time.Duration(k.heartbeatPeriodNS.Load()))
		defer timer.Stop()
		for {
			select {
			case <-stop:
				return
			case <-timer.C:
				k.runHeartbeatTick()
				// Re-read the period on every tick so HotTuning changes
				// take effect without restarting this goroutine.
				timer.Reset(time.Duration(k.heartbeatPeriodNS.Load()))
			}
		}
	}()
}

// runHeartbeatTick performs one debit-and-persist cycle. Failures are
// caught and logged; they must never propagate out of the heartbeat or
// corrupt State.
func (k *Keeper) runHeartbeatTick() {
	start := time.Now()
	k.mu.Lock()
	k.debitLocked()
	err := k.persistLocked()
	remaining := k.state.RemainingMS
	count := k.state.HeartbeatCount
	onSaved := k.cfg.OnHeartbeatSaved
	k.mu.Unlock()

	latencyNS := time.Since(start).Nanoseconds()
	k.cfg.MetricsCollector.ObserveHeartbeat(err == nil, latencyNS)

	if err != nil {
		k.cfg.Logger.Warn("vigil: heartbeat persist failed, will retry next tick", "error", err)
		return
	}
	if onSaved != nil {
		onSaved(HeartbeatSaved{RemainingMS: remaining, HeartbeatCount: count})
	}
}

// stopHeartbeatAndWait signals the heartbeat goroutine to stop and blocks
// until it has returned, bounding Dispose to at most one in-flight tick.
func (k *Keeper) stopHeartbeatAndWait() {
	k.mu.Lock()
	stop := k.stopHeartbeat
	done := k.heartbeatDone
	k.stopHeartbeat = nil
	k.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

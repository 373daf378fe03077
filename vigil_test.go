// vigil_test.go: shared test fakes for the vigil package's test suite.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package vigil

import "sync"

// fakeClock is a deterministic ClockSource: both readings advance only
// when the test explicitly steps them, so handshake and debit math can be
// asserted exactly instead of tolerating real-time jitter.
type fakeClock struct {
	mu   sync.Mutex
	mono int64
	wall int64
	freq int64
}

func newFakeClock() *fakeClock {
	return &fakeClock{freq: int64(1_000_000_000)} // nanosecond ticks
}

func (c *fakeClock) MonoNow() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mono
}

func (c *fakeClock) WallNow() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.wall
}

func (c *fakeClock) MonoFrequency() int64 {
	return c.freq
}

// advanceBoth steps both mono and wall clocks by the same duration, as a
// benign process would experience.
func (c *fakeClock) advanceBoth(ms int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mono += ms * (c.freq / 1000)
	c.wall += ms * wallTicksPerMS
}

// advanceWallOnly steps only the wall clock, simulating an operator
// adjusting the system clock (forward for positive ms, backward for
// negative) without the monotonic counter moving.
func (c *fakeClock) advanceWallOnly(ms int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.wall += ms * wallTicksPerMS
}

// memStore is an in-memory Store, standing in for FileStore in tests that
// need to inspect or corrupt the persisted blob directly.
type memStore struct {
	mu   sync.Mutex
	blob []byte
	set  bool
}

func (s *memStore) Load() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set {
		return nil, ErrNotFound
	}
	out := make([]byte, len(s.blob))
	copy(out, s.blob)
	return out, nil
}

func (s *memStore) Save(blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blob = append([]byte(nil), blob...)
	s.set = true
	return nil
}

func (s *memStore) corrupt(mutate func([]byte) []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blob = mutate(s.blob)
}

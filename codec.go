// codec.go: canonical byte form of State.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package vigil

import (
	"encoding/binary"
	"errors"
)

// encodedStateSize is the fixed width of the canonical plaintext record:
// RemainingMS(8) + LastMonoTicks(8) + LastWallTicks(8) + MonoFrequency(8)
// + Tampered(1) + HeartbeatCount(8).
const encodedStateSize = 8 + 8 + 8 + 8 + 1 + 8

// ErrMalformedState is returned by Decode when the input is not exactly
// encodedStateSize bytes or encodes an out-of-range value.
var ErrMalformedState = errors.New("vigil: malformed state record")

// Codec encodes and decodes State to and from its canonical wire form. The
// field order is fixed (see encodedStateSize) and carries no length
// prefix or magic byte: the AEAD tag that wraps it already authenticates
// the exact length.
type Codec struct{}

// Encode serializes state into its canonical fixed-width form.
func (Codec) Encode(s State) []byte {
	buf := make([]byte, encodedStateSize)
	binary.BigEndian.PutUint64(buf[0:8], s.RemainingMS)
	binary.BigEndian.PutUint64(buf[8:16], uint64(s.LastMonoTicks))
	binary.BigEndian.PutUint64(buf[16:24], uint64(s.LastWallTicks))
	binary.BigEndian.PutUint64(buf[24:32], uint64(s.MonoFrequency))
	if s.Tampered {
		buf[32] = 1
	}
	binary.BigEndian.PutUint64(buf[33:41], s.HeartbeatCount)
	return buf
}

// Decode parses buf into a State. It rejects any input that is not
// exactly encodedStateSize bytes, or whose Tampered byte is not 0 or 1.
func (Codec) Decode(buf []byte) (State, error) {
	if len(buf) != encodedStateSize {
		return State{}, ErrMalformedState
	}
	tampered := buf[32]
	if tampered != 0 && tampered != 1 {
		return State{}, ErrMalformedState
	}
	return State{
		RemainingMS:    binary.BigEndian.Uint64(buf[0:8]),
		LastMonoTicks:  int64(binary.BigEndian.Uint64(buf[8:16])),
		LastWallTicks:  int64(binary.BigEndian.Uint64(buf[16:24])),
		MonoFrequency:  int64(binary.BigEndian.Uint64(buf[24:32])),
		Tampered:       tampered == 1,
		HeartbeatCount: binary.BigEndian.Uint64(buf[33:41]),
	}, nil
}

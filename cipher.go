// cipher.go: authenticated encryption of the persisted state blob.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package vigil

import (
	"crypto/rand"
	"errors"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// NonceSize is the fixed prefix length (N in spec terms) of every blob
// this Cipher produces.
const NonceSize = chacha20poly1305.NonceSize

// kdfSalt is a fixed, compiled-in salt for the Argon2id key derivation.
// It is not a secret and is not a per-file random value: its only job is
// to separate this derivation from other Argon2id uses of the same
// passphrase, so it can be a module constant rather than travel in the
// blob. This keeps the on-disk format exactly nonce||ciphertext with no
// header byte (see Codec).
var kdfSalt = []byte("agilira-vigil-block-window-kdf-v1")

const (
	kdfTime    = 2
	kdfMemory  = 64 * 1024 // KiB
	kdfThreads = 4
	kdfKeyLen  = 32
)

// Integrity-violation sentinels. All three collapse to IntegrityViolation
// at the Keeper layer; they are kept distinct here for callers that want a
// finer-grained reason.
var (
	ErrTooShort            = errors.New("vigil: ciphertext shorter than nonce prefix")
	ErrAuthFailure         = errors.New("vigil: authentication failed (wrong passphrase or tampered ciphertext)")
	ErrMalformedCiphertext = errors.New("vigil: malformed ciphertext")
)

// Cipher performs authenticated encryption of opaque byte payloads under a
// passphrase-derived key. It is stateless with respect to State: it only
// borrows key material and byte buffers for the duration of a call.
type Cipher struct {
	aead   cipherAEAD
	nonceN int
}

// cipherAEAD is the minimal surface of cipher.AEAD this package needs; it
// lets tests substitute a deterministic fake.
type cipherAEAD interface {
	NonceSize() int
	Overhead() int
	Seal(dst, nonce, plaintext, additionalData []byte) []byte
	Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
}

// NewCipher derives a 256-bit key from passphrase with Argon2id and
// constructs a ChaCha20-Poly1305 AEAD cipher. The same passphrase always
// yields the same key; different passphrases yield independent keys with
// overwhelming probability.
func NewCipher(passphrase []byte) (*Cipher, error) {
	key := argon2.IDKey(passphrase, kdfSalt, kdfTime, kdfMemory, kdfThreads, kdfKeyLen)
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	return &Cipher{aead: aead, nonceN: aead.NonceSize()}, nil
}

// Encrypt returns nonce||ciphertext||tag for plaintext. Every call samples
// a fresh random nonce, so two encryptions of the same plaintext under the
// same key differ with overwhelming probability. Empty plaintext is
// supported: the result is a nonce-only-plus-tag blob.
func (c *Cipher) Encrypt(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, c.nonceN)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(nonce)+len(plaintext)+c.aead.Overhead())
	out = append(out, nonce...)
	out = c.aead.Seal(out, nonce, plaintext, nil)
	return out, nil
}

// Decrypt reverses Encrypt. It fails distinguishably on: input shorter
// than the nonce prefix (ErrTooShort), a nonce prefix with no ciphertext
// body (ErrMalformedCiphertext), any bit-flip or truncation of the
// ciphertext body or wrong passphrase (ErrAuthFailure).
func (c *Cipher) Decrypt(blob []byte) ([]byte, error) {
	if len(blob) < c.nonceN {
		return nil, ErrTooShort
	}
	nonce, body := blob[:c.nonceN], blob[c.nonceN:]
	if len(body) < c.aead.Overhead() {
		return nil, ErrMalformedCiphertext
	}
	plaintext, err := c.aead.Open(nil, nonce, body, nil)
	if err != nil {
		return nil, ErrAuthFailure
	}
	return plaintext, nil
}

// IsIntegrityViolation reports whether err is one of the Cipher's
// tamper/truncation/wrong-key sentinels.
func IsIntegrityViolation(err error) bool {
	return errors.Is(err, ErrTooShort) || errors.Is(err, ErrAuthFailure) || errors.Is(err, ErrMalformedCiphertext)
}

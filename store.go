// store.go: atomic read/write of the single encrypted state blob.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package vigil

import (
	"errors"
	"os"
	"path/filepath"
)

// ErrNotFound is returned by Store.Load when no prior blob exists at the
// configured path.
var ErrNotFound = errors.New("vigil: no prior state file")

// Store is the seam the Keeper uses for durable persistence. Exactly one
// Store instance should own a given path at a time; concurrent Keepers
// over the same path have undefined behavior and must be prevented by
// the caller.
type Store interface {
	Load() ([]byte, error)
	Save(blob []byte) error
}

// FileStore implements Store as a single file at Path, written via
// temp-then-rename for crash atomicity, with best-effort concealment.
type FileStore struct {
	Path string

	// Logger receives a warning when the best-effort concealment hint
	// fails; Save itself still succeeds. NoOpLogger if unset.
	Logger Logger
}

// NewFileStore constructs a FileStore rooted at path with a no-op Logger.
// Config.Validate overwrites Logger with its own before first use.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path, Logger: NoOpLogger{}}
}

// logger returns Logger, defaulting to NoOpLogger for a FileStore built
// as a bare struct literal instead of via NewFileStore.
func (f *FileStore) logger() Logger {
	if f.Logger == nil {
		return NoOpLogger{}
	}
	return f.Logger
}

// Load reads the full blob at Path. A missing file reports ErrNotFound;
// any other failure reports a wrapped StoreUnavailable error.
func (f *FileStore) Load() ([]byte, error) {
	blob, err := os.ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, NewErrStoreUnavailable("load", f.Path, err)
	}
	return blob, nil
}

// Save replaces the blob at Path atomically: it writes to a sibling temp
// file, fsyncs it, and renames over the target, so a crash mid-write can
// never be observed as a partially written "valid" prior state. The
// parent directory is created on demand. On success the file's
// hidden/system attribute is set where the host OS supports it.
func (f *FileStore) Save(blob []byte) error {
	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return NewErrStoreUnavailable("mkdir", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.Path)+".tmp-*")
	if err != nil {
		return NewErrStoreUnavailable("create-temp", dir, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once the rename below succeeds

	if _, err := tmp.Write(blob); err != nil {
		tmp.Close()
		return NewErrStoreUnavailable("write", tmpPath, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return NewErrStoreUnavailable("fsync", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return NewErrStoreUnavailable("close", tmpPath, err)
	}
	if err := os.Rename(tmpPath, f.Path); err != nil {
		return NewErrStoreUnavailable("rename", f.Path, err)
	}

	if err := hideFile(f.Path); err != nil {
		// Concealment is a best-effort hint, not part of the contract;
		// a failure here must not fail the persist.
		f.logger().Warn("vigil: hide state file failed", "path", f.Path, "error", err)
	}
	return nil
}

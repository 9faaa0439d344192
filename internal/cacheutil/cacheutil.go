// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cacheutil

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/apex/log"
)

// Entry is one file of the store. Key is the clear-text key; EncodedKey is
// the hashed filename.
type Entry struct {
	Key        string
	EncodedKey string
	Path       string
	Data       []byte
	ModTime    time.Time
}

// Store keeps small blobs as files beneath Base. A Store with an empty Base
// is disabled: reads miss and writes are dropped.
type Store struct {
	Base string
}

// Dir resolves the default base directory.
// Precedence:
//  1. CLUBPULSE_STATE_DIR, if set and non-empty
//  2. os.UserCacheDir()/clubpulse
//
// Returns ("", false) if a base cannot be resolved.
func Dir() (string, bool) {
	if c, ok := os.LookupEnv("CLUBPULSE_STATE_DIR"); ok && c != "" {
		return c, true
	}
	if dir, err := os.UserCacheDir(); err == nil && dir != "" {
		return filepath.Join(dir, "clubpulse"), true
	}
	return "", false
}

// Enabled returns true unless CLUBPULSE_STATE explicitly disables file
// storage ("0"/"false").
func Enabled() bool {
	enabled, _ := os.LookupEnv("CLUBPULSE_STATE")
	return enabled == "" || (enabled != "0" && enabled != "false")
}

// Default returns a Store at Dir(), or a disabled Store.
func Default() *Store {
	if !Enabled() {
		return &Store{}
	}
	base, _ := Dir()
	return &Store{Base: base}
}

// Disabled reports whether the store has nowhere to write.
func (s *Store) Disabled() bool {
	return s == nil || s.Base == ""
}

// Path returns where the entry for clearKey beneath subdirs lives, and
// whether a file exists there now.
func (s *Store) Path(subdirs []string, clearKey string) (string, bool) {
	if s.Disabled() {
		return "", false
	}
	p := filepath.Join(append([]string{s.Base}, append(subdirs, encodeKey(clearKey))...)...)
	if _, err := os.Stat(p); err == nil {
		return p, true
	}
	return p, false
}

// Read returns the entry for clearKey.
func (s *Store) Read(subdirs []string, clearKey string) (*Entry, bool) {
	p, ok := s.Path(subdirs, clearKey)
	if !ok {
		return nil, false
	}
	info, err := os.Stat(p)
	if err != nil {
		return nil, false
	}
	b, err := os.ReadFile(p)
	if err != nil {
		log.WithError(err).Debugf("failed to read %s", p)
		return nil, false
	}
	return &Entry{
		Key:        clearKey,
		EncodedKey: encodeKey(clearKey),
		Path:       p,
		Data:       bytes.TrimSpace(b),
		ModTime:    info.ModTime(),
	}, true
}

// Write stores data for clearKey beneath subdirs, creating directories as
// needed. The file is only readable by the owner.
func (s *Store) Write(subdirs []string, clearKey string, data []byte) error {
	if s.Disabled() {
		return nil
	}
	dir := filepath.Join(append([]string{s.Base}, subdirs...)...)
	if err := os.MkdirAll(dir, 0o700); err != nil { //nolint:mnd
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	p := filepath.Join(dir, encodeKey(clearKey))
	if err := os.WriteFile(p, data, os.FileMode(0o600)); err != nil { //nolint:mnd
		return fmt.Errorf("failed to write state: %w", err)
	}
	return nil
}

// Remove deletes the entry for clearKey. A missing entry is not an error.
func (s *Store) Remove(subdirs []string, clearKey string) error {
	p, _ := s.Path(subdirs, clearKey)
	if p == "" {
		return nil
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove state: %w", err)
	}
	return nil
}

// Purge removes files older than the provided number of hours. If hours <= 0
// or the store is disabled, it is a no-op.
func (s *Store) Purge(hours int) error {
	if hours <= 0 {
		log.Debug("state cleaning disabled")
		return nil
	}
	if s.Disabled() {
		return nil
	}
	maxAge := time.Duration(hours) * time.Hour
	err := filepath.WalkDir(s.Base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if time.Since(info.ModTime()) > maxAge {
			if err := os.Remove(path); err == nil {
				log.Debugf("removed state file %s", path)
			} else {
				log.WithError(err).Warnf("failed to remove state file %s", path)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to purge state: %w", err)
	}
	return nil
}

// encodeKey hashes k and returns the hex string.
func encodeKey(k string) string {
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:])
}

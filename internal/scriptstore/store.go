// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package scriptstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
)

const (
	sixFourFour   = 0o644
	sevenFiveFive = 0o755
)

var (
	// ErrNotFound is returned when a script does not exist.
	ErrNotFound = errors.New("script not found")
	// ErrStorage is returned when the underlying filesystem operation fails.
	ErrStorage = errors.New("script storage error")
)

// FsFactory returns the filesystem used by New when no filesystem is supplied.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

// Entry describes a stored script.
type Entry struct {
	Key     Key
	Name    string
	Size    int64
	ModTime time.Time
}

// Store is a key-value store of script text.
type Store interface {
	// Exists reports whether a script is stored under key.
	Exists(key Key) (bool, error)
	// Read returns the script stored under key, or ErrNotFound.
	Read(key Key) (string, error)
	// Write stores text under key, replacing any previous content.
	Write(key Key, text string) error
	// Delete removes the script under key. Deleting a missing script returns ErrNotFound.
	Delete(key Key) error
	// List returns all stored scripts ordered by batch number, generated before customized.
	List() ([]Entry, error)
	// Path returns the location the external interpreter should load the script from.
	Path(key Key) string
}

var _ Store = (*FSStore)(nil)

// FSStore stores scripts as files in a single directory.
type FSStore struct {
	fs  afero.Fs
	dir string
}

// New creates a store rooted at dir.
// If fs is nil the filesystem returned by FsFactory is used.
func New(fs afero.Fs, dir string) *FSStore {
	if fs == nil {
		fs = FsFactory()
	}

	return &FSStore{
		fs:  fs,
		dir: dir,
	}
}

// Dir returns the directory holding the scripts.
func (s *FSStore) Dir() string {
	return s.dir
}

// Path implements Store.
func (s *FSStore) Path(key Key) string {
	return filepath.Join(s.dir, key.Name())
}

// Exists implements Store.
func (s *FSStore) Exists(key Key) (bool, error) {
	ok, err := afero.Exists(s.fs, s.Path(key))
	if err != nil {
		return false, storageErr("stat", key, err)
	}

	return ok, nil
}

// Read implements Store.
func (s *FSStore) Read(key Key) (string, error) {
	b, err := afero.ReadFile(s.fs, s.Path(key))
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	if err != nil {
		return "", storageErr("read", key, err)
	}

	return string(b), nil
}

// Write implements Store.
func (s *FSStore) Write(key Key, text string) error {
	if err := s.fs.MkdirAll(s.dir, sevenFiveFive); err != nil {
		return storageErr("create directory for", key, err)
	}

	if err := afero.WriteFile(s.fs, s.Path(key), []byte(text), sixFourFour); err != nil {
		return storageErr("write", key, err)
	}

	return nil
}

// Delete implements Store.
func (s *FSStore) Delete(key Key) error {
	err := s.fs.Remove(s.Path(key))
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	if err != nil {
		return storageErr("delete", key, err)
	}

	return nil
}

// List implements Store.
func (s *FSStore) List() ([]Entry, error) {
	infos, err := afero.ReadDir(s.fs, s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}

	if err != nil {
		return nil, errors.Join(ErrStorage, err)
	}

	entries := make([]Entry, 0, len(infos))

	for _, info := range infos {
		if info.IsDir() {
			continue
		}

		key, ok := ParseName(info.Name())
		if !ok {
			continue
		}

		entries = append(entries, Entry{
			Key:     key,
			Name:    info.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	slices.SortFunc(entries, func(a, b Entry) int {
		if a.Key.Batch != b.Key.Batch {
			return a.Key.Batch - b.Key.Batch
		}

		return int(a.Key.Kind) - int(b.Key.Kind)
	})

	return entries, nil
}

// DeleteBatch removes both the generated and the customized script of a batch number.
// It returns the number of scripts removed.
func DeleteBatch(s Store, batch int) (int, error) {
	var (
		deleted int
		result  *multierror.Error
	)

	for _, key := range []Key{Generated(batch), Customized(batch)} {
		err := s.Delete(key)

		switch {
		case err == nil:
			deleted++
		case errors.Is(err, ErrNotFound):
		default:
			result = multierror.Append(result, err)
		}
	}

	return deleted, result.ErrorOrNil()
}

// Clear removes every script in the store and returns the number removed.
// Failures do not stop the remaining deletions; they are returned together.
func Clear(s Store) (int, error) {
	entries, err := s.List()
	if err != nil {
		return 0, err
	}

	var (
		deleted int
		result  *multierror.Error
	)

	for _, e := range entries {
		if err := s.Delete(e.Key); err != nil {
			result = multierror.Append(result, err)
			continue
		}

		deleted++
	}

	return deleted, result.ErrorOrNil()
}

func storageErr(op string, key Key, err error) error {
	return errors.Join(ErrStorage, fmt.Errorf("%s %s: %w", op, key, err))
}

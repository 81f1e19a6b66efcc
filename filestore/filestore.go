// Package filestore keeps key-value entries as one file per key.
package filestore

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"moviehub/errs"

	"github.com/spf13/afero"
)

const fileExt = ".json"

type Store struct {
	fs  afero.Fs
	dir string
	mu  sync.Mutex
}

func New(fs afero.Fs, dir string) (*Store, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, errs.Wrap(errs.EPERSISTENCE, err, "cannot create storage directory")
	}
	return &Store{fs: fs, dir: dir}, nil
}

// NewDisk stores entries under dir on the local filesystem.
func NewDisk(dir string) (*Store, error) {
	return New(afero.NewOsFs(), dir)
}

// NewMemory returns a store that lives only as long as the process.
func NewMemory() *Store {
	return &Store{fs: afero.NewMemMapFs(), dir: "/"}
}

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := afero.ReadFile(s.fs, s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errs.Wrap(errs.EPERSISTENCE, err, "cannot read entry")
	}
	return string(data), true, nil
}

// Set writes to a temporary file first so readers never see a partial value.
func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.path(key)
	tmp := target + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, []byte(value), 0o644); err != nil {
		return errs.Wrap(errs.EPERSISTENCE, err, "cannot write entry")
	}
	if err := s.fs.Rename(tmp, target); err != nil {
		_ = s.fs.Remove(tmp)
		return errs.Wrap(errs.EPERSISTENCE, err, "cannot write entry")
	}
	return nil
}

func (s *Store) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.fs.Remove(s.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return errs.Wrap(errs.EPERSISTENCE, err, "cannot remove entry")
	}
	return nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, url.PathEscape(key)+fileExt)
}

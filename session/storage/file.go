package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// FileStorage keeps all keys in a single JSON document on disk. Every
// mutation rewrites the file, which keeps the on-disk state consistent
// with memory at all times.
type FileStorage struct {
	fs   afero.Fs
	path string

	lock sync.Mutex
	data map[string]string
}

// FileStorageOption configures a FileStorage instance.
type FileStorageOption func(*FileStorage)

// WithFs sets the backing filesystem (primarily for testing with
// afero.NewMemMapFs).
func WithFs(fs afero.Fs) FileStorageOption {
	return func(s *FileStorage) {
		s.fs = fs
	}
}

var _ Storage = (*FileStorage)(nil)

// NewFileStorage opens or creates the JSON document at path.
func NewFileStorage(path string, options ...FileStorageOption) (*FileStorage, error) {
	s := &FileStorage{
		fs:   afero.NewOsFs(),
		path: path,
		data: make(map[string]string),
	}
	for _, opt := range options {
		opt(s)
	}

	if err := s.load(); err != nil {
		return nil, errors.Wrap(err, "[NewFileStorage] load")
	}
	return s, nil
}

func (s *FileStorage) load() error {
	raw, err := afero.ReadFile(s.fs, s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "read")
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		return errors.Wrap(err, "unmarshal")
	}
	return nil
}

func (s *FileStorage) flush() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal")
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := s.fs.MkdirAll(dir, 0o700); err != nil {
			return errors.Wrap(err, "mkdir")
		}
	}
	// Tokens live in this file, keep it owner-readable only.
	if err := afero.WriteFile(s.fs, s.path, raw, 0o600); err != nil {
		return errors.Wrap(err, "write")
	}
	return nil
}

func (s *FileStorage) Get(key string) (string, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	value, ok := s.data[key]
	if !ok {
		return "", errors.Wrapf(ErrNotFound, "[FileStorage.Get] %q", key)
	}
	return value, nil
}

func (s *FileStorage) Set(key, value string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	prev, had := s.data[key]
	s.data[key] = value
	if err := s.flush(); err != nil {
		if had {
			s.data[key] = prev
		} else {
			delete(s.data, key)
		}
		return errors.Wrap(err, "[FileStorage.Set]")
	}
	return nil
}

func (s *FileStorage) Delete(key string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.data[key]; !ok {
		return nil
	}
	delete(s.data, key)
	if err := s.flush(); err != nil {
		return errors.Wrap(err, "[FileStorage.Delete]")
	}
	return nil
}

func (s *FileStorage) Close() error {
	return nil
}

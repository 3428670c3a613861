package storagefake

import (
	"sync"

	"github.com/dinekit/dinekit/session/storage"
	"github.com/pkg/errors"
)

var _ storage.Storage = (*FakeStorage)(nil)

// FakeStorage is an in-memory Storage with optional error injection for
// exercising the store's failure paths.
type FakeStorage struct {
	lock sync.RWMutex
	data map[string]string

	// Injectable failures
	GetErr    error
	SetErr    error
	DeleteErr error
}

func NewFakeStorage() *FakeStorage {
	return &FakeStorage{
		data: make(map[string]string),
	}
}

func (f *FakeStorage) Get(key string) (string, error) {
	f.lock.RLock()
	defer f.lock.RUnlock()

	if f.GetErr != nil {
		return "", f.GetErr
	}
	value, ok := f.data[key]
	if !ok {
		return "", errors.Wrapf(storage.ErrNotFound, "fake %q", key)
	}
	return value, nil
}

func (f *FakeStorage) Set(key, value string) error {
	f.lock.Lock()
	defer f.lock.Unlock()

	if f.SetErr != nil {
		return f.SetErr
	}
	f.data[key] = value
	return nil
}

func (f *FakeStorage) Delete(key string) error {
	f.lock.Lock()
	defer f.lock.Unlock()

	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	delete(f.data, key)
	return nil
}

func (f *FakeStorage) Close() error {
	return nil
}

// Len reports how many keys are currently stored.
func (f *FakeStorage) Len() int {
	f.lock.RLock()
	defer f.lock.RUnlock()
	return len(f.data)
}

// Seed pre-populates a key without going through Set's error injection.
func (f *FakeStorage) Seed(key, value string) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.data[key] = value
}

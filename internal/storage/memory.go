package storage

import (
	"sync"

	"github.com/visualstash/stash/internal/model"
)

// MemoryStore implements Store entirely in process memory. It backs tests
// and dev mode, and is the reference implementation of the contract.
type MemoryStore struct {
	mu     sync.Mutex
	record *model.StorageRecord
	prefs  Prefs
	hub    hub
}

// NewMemoryStore creates an empty MemoryStore. The first Read seeds the
// default record.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{prefs: DefaultPrefs()}
}

// Read returns a copy of the current record.
func (s *MemoryStore) Read() (*model.StorageRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.record == nil {
		s.record = model.NewStorageRecord()
	}
	return s.record.Clone(), nil
}

// Write replaces the record and notifies subscribers.
func (s *MemoryStore) Write(record *model.StorageRecord) error {
	s.mu.Lock()
	s.record = record.Clone()
	s.mu.Unlock()

	s.hub.notify(record)
	return nil
}

// Subscribe registers a change callback.
func (s *MemoryStore) Subscribe(fn func(*model.StorageRecord)) (cancel func()) {
	return s.hub.subscribe(fn)
}

// Close is a no-op for the in-memory backend.
func (s *MemoryStore) Close() error { return nil }

// ReadPrefs returns the stored view preferences.
func (s *MemoryStore) ReadPrefs() (Prefs, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs, nil
}

// WritePrefs replaces the view preferences.
func (s *MemoryStore) WritePrefs(p Prefs) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs = p
	return nil
}

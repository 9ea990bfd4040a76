package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/visualstash/stash/internal/logger"
	"github.com/visualstash/stash/internal/model"
)

// JSONStore implements Store using a single JSON document on disk, with a
// sidecar file for view preferences. A second process sharing the same path
// is detected by polling the file's modification time.
type JSONStore struct {
	path         string
	prefsPath    string
	pollInterval time.Duration
	log          logger.Logger

	mu       sync.Mutex
	lastMod  time.Time
	lastSize int64

	hub      hub
	stopPoll chan struct{}
	pollOnce sync.Once
	stopOnce sync.Once
}

// JSONStoreParams holds parameters for creating a JSONStore.
type JSONStoreParams struct {
	Path         string
	PrefsPath    string
	PollInterval time.Duration
	Logger       logger.Logger
}

// NewJSONStore creates a JSONStore. The backing files are created lazily on
// first write.
func NewJSONStore(params JSONStoreParams) *JSONStore {
	log := params.Logger
	if log == nil {
		log = logger.Nop()
	}
	interval := params.PollInterval
	if interval <= 0 {
		interval = time.Second
	}
	return &JSONStore{
		path:         params.Path,
		prefsPath:    params.PrefsPath,
		pollInterval: interval,
		log:          log,
		stopPoll:     make(chan struct{}),
	}
}

// Path returns the record file path.
func (s *JSONStore) Path() string { return s.path }

// Read returns the persisted record, or a seeded default if the file does
// not exist yet.
func (s *JSONStore) Read() (*model.StorageRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.NewStorageRecord(), nil
		}
		return nil, err
	}

	var record model.StorageRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	record.Normalize()
	return &record, nil
}

// Write replaces the record file and notifies local subscribers. The write
// goes through a rename so a racing reader never sees a partial document.
func (s *JSONStore) Write(record *model.StorageRecord) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return err
	}

	// Remember our own write so the poller doesn't report it back to us.
	if info, err := os.Stat(s.path); err == nil {
		s.lastMod = info.ModTime()
		s.lastSize = info.Size()
	}

	s.hub.notify(record)
	return nil
}

// Subscribe registers a change callback. The first subscription starts the
// external-change poller.
func (s *JSONStore) Subscribe(fn func(*model.StorageRecord)) (cancel func()) {
	s.pollOnce.Do(func() { go s.poll() })
	return s.hub.subscribe(fn)
}

// Close stops the external-change poller.
func (s *JSONStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopPoll) })
	return nil
}

// poll watches the record file for writes from other processes.
func (s *JSONStore) poll() {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopPoll:
			return
		case <-ticker.C:
			s.checkExternalChange()
		}
	}
}

func (s *JSONStore) checkExternalChange() {
	info, err := os.Stat(s.path)
	if err != nil {
		return
	}

	s.mu.Lock()
	changed := !info.ModTime().Equal(s.lastMod) || info.Size() != s.lastSize
	if changed {
		s.lastMod = info.ModTime()
		s.lastSize = info.Size()
	}
	s.mu.Unlock()

	if !changed {
		return
	}

	record, err := s.Read()
	if err != nil {
		s.log.Warn("reload after external change failed", logger.Error(err))
		return
	}
	s.hub.notify(record)
}

// ReadPrefs reads the sidecar preferences file, defaulting when missing.
func (s *JSONStore) ReadPrefs() (Prefs, error) {
	prefs := DefaultPrefs()
	data, err := os.ReadFile(s.prefsPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return prefs, nil
		}
		return prefs, err
	}
	if err := json.Unmarshal(data, &prefs); err != nil {
		return DefaultPrefs(), err
	}
	return prefs, nil
}

// WritePrefs replaces the sidecar preferences file.
func (s *JSONStore) WritePrefs(p Prefs) error {
	if err := os.MkdirAll(filepath.Dir(s.prefsPath), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.prefsPath, data, 0644)
}

package storage

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/visualstash/stash/internal/config"
	"github.com/visualstash/stash/internal/logger"
	"github.com/visualstash/stash/internal/model"
)

// Store is the single source of truth for all durable state. Writes replace
// the whole record atomically; partial updates must be expressed as
// read-modify-write by the caller, with the window kept as short as
// possible. Concurrent writers race on last-write-wins.
type Store interface {
	// Read returns the current record, or a freshly seeded default record
	// if none has been persisted yet.
	Read() (*model.StorageRecord, error)
	// Write atomically replaces the persisted record.
	Write(record *model.StorageRecord) error
	// Subscribe registers a callback invoked with the new record whenever
	// any writer commits a change, including other processes sharing the
	// same backend. The returned function cancels the subscription.
	Subscribe(fn func(*model.StorageRecord)) (cancel func())
	Close() error
}

// Prefs are the two scalar view preferences stored outside the main record.
type Prefs struct {
	ViewMode string `json:"viewMode"` // "list" | "grid"
	Theme    string `json:"theme"`    // "light" | "dark"
}

// DefaultPrefs returns the preferences used before the user changes them.
func DefaultPrefs() Prefs {
	return Prefs{ViewMode: "list", Theme: "light"}
}

// PrefsStore persists the view preferences. All Store backends implement it.
type PrefsStore interface {
	ReadPrefs() (Prefs, error)
	WritePrefs(Prefs) error
}

// Open creates the Store selected by the configuration.
func Open(cfg *config.Config, log logger.Logger) (Store, error) {
	switch cfg.Backend {
	case "json":
		return NewJSONStore(JSONStoreParams{
			Path:         filepath.Join(cfg.DataDir, "stash.json"),
			PrefsPath:    filepath.Join(cfg.DataDir, "prefs.json"),
			PollInterval: cfg.PollInterval,
			Logger:       log,
		}), nil
	case "sqlite":
		return NewSQLiteStore(SQLiteStoreParams{
			Path:         filepath.Join(cfg.DataDir, "stash.db"),
			PollInterval: cfg.PollInterval,
			Logger:       log,
		})
	case "redis":
		client, err := Connect(cfg.Redis, log)
		if err != nil {
			return nil, err
		}
		return NewRedisStore(RedisStoreParams{Client: client, Logger: log}), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// hub fans a committed record out to local subscribers. Callbacks run on
// their own goroutine so a slow subscriber never blocks a writer.
type hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(*model.StorageRecord)
}

func (h *hub) subscribe(fn func(*model.StorageRecord)) (cancel func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs == nil {
		h.subs = make(map[int]func(*model.StorageRecord))
	}
	id := h.nextID
	h.nextID++
	h.subs[id] = fn
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs, id)
	}
}

func (h *hub) notify(record *model.StorageRecord) {
	h.mu.Lock()
	fns := make([]func(*model.StorageRecord), 0, len(h.subs))
	for _, fn := range h.subs {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		go fn(record.Clone())
	}
}

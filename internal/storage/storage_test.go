package storage_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/visualstash/stash/internal/model"
	"github.com/visualstash/stash/internal/storage"
)

// prefsStore is the full surface every backend implements.
type prefsStore interface {
	storage.Store
	storage.PrefsStore
}

// openBackends builds one instance of every backend that needs no external
// server.
func openBackends(t *testing.T) map[string]prefsStore {
	t.Helper()
	dir := t.TempDir()

	sqliteStore, err := storage.NewSQLiteStore(storage.SQLiteStoreParams{
		Path:         filepath.Join(dir, "stash.db"),
		PollInterval: 50 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite store: %v", err)
	}

	return map[string]prefsStore{
		"memory": storage.NewMemoryStore(),
		"json": storage.NewJSONStore(storage.JSONStoreParams{
			Path:         filepath.Join(dir, "stash.json"),
			PrefsPath:    filepath.Join(dir, "prefs.json"),
			PollInterval: 50 * time.Millisecond,
		}),
		"sqlite": sqliteStore,
	}
}

func TestStore_ReadReturnsDefaultsWhenEmpty(t *testing.T) {
	for name, store := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			defer store.Close()

			record, err := store.Read()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(record.Categories) != 5 || record.Categories[0] != model.CategoryInbox {
				t.Errorf("expected seeded default categories, got %v", record.Categories)
			}
			if record.SecretPassword != model.DefaultPassword {
				t.Errorf("expected default password, got %q", record.SecretPassword)
			}
			if len(record.Bookmarks) != 0 {
				t.Errorf("expected no bookmarks, got %d", len(record.Bookmarks))
			}
		})
	}
}

func TestStore_WriteReadRoundtrip(t *testing.T) {
	for name, store := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			defer store.Close()

			record := model.NewStorageRecord()
			record.Categories = []string{"Inbox", "Work", "Secret"}
			record.Bookmarks = []model.Bookmark{
				{ID: "b2", URL: "https://go.dev", Title: "Go", Hostname: "go.dev", Favicon: "f2", Category: "Work", CreatedAt: 200},
				{ID: "b1", URL: "https://a.com", Title: "A", Hostname: "a.com", Favicon: "f1", Category: "Inbox", CreatedAt: 100},
			}
			record.SecretPassword = "pass1234"
			record.SecretCategoryName = "Secret"
			record.LastSavedCategory = "Work"
			record.CategoryUsage = map[string]int64{"Work": 200, "Inbox": 100}

			if err := store.Write(record); err != nil {
				t.Fatalf("write failed: %v", err)
			}

			got, err := store.Read()
			if err != nil {
				t.Fatalf("read failed: %v", err)
			}

			if len(got.Categories) != 3 || got.Categories[1] != "Work" {
				t.Errorf("categories order lost: %v", got.Categories)
			}
			// Sequence order is the persisted order, not createdAt order.
			if len(got.Bookmarks) != 2 || got.Bookmarks[0].ID != "b2" || got.Bookmarks[1].ID != "b1" {
				t.Errorf("bookmark sequence order lost: %+v", got.Bookmarks)
			}
			if got.SecretPassword != "pass1234" {
				t.Errorf("password mismatch: %q", got.SecretPassword)
			}
			if got.LastSavedCategory != "Work" {
				t.Errorf("lastSavedCategory mismatch: %q", got.LastSavedCategory)
			}
			if got.CategoryUsage["Work"] != 200 {
				t.Errorf("usage mismatch: %v", got.CategoryUsage)
			}
		})
	}
}

func TestStore_SubscribeSeesOwnWrites(t *testing.T) {
	for name, store := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			defer store.Close()

			got := make(chan *model.StorageRecord, 1)
			cancel := store.Subscribe(func(record *model.StorageRecord) {
				select {
				case got <- record:
				default:
				}
			})
			defer cancel()

			record := model.NewStorageRecord()
			record.LastSavedCategory = "Work"
			if err := store.Write(record); err != nil {
				t.Fatalf("write failed: %v", err)
			}

			select {
			case notified := <-got:
				if notified.LastSavedCategory != "Work" {
					t.Errorf("subscriber got stale record: %q", notified.LastSavedCategory)
				}
			case <-time.After(2 * time.Second):
				t.Fatal("subscriber was not notified")
			}
		})
	}
}

func TestStore_CancelledSubscriptionStopsNotifying(t *testing.T) {
	store := storage.NewMemoryStore()
	defer store.Close()

	got := make(chan struct{}, 4)
	cancel := store.Subscribe(func(*model.StorageRecord) { got <- struct{}{} })
	cancel()

	if err := store.Write(model.NewStorageRecord()); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	select {
	case <-got:
		t.Error("cancelled subscriber was notified")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestStore_PrefsRoundtrip(t *testing.T) {
	for name, store := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			defer store.Close()

			prefs, err := store.ReadPrefs()
			if err != nil {
				t.Fatalf("read prefs failed: %v", err)
			}
			if prefs.ViewMode != "list" || prefs.Theme != "light" {
				t.Errorf("expected defaults, got %+v", prefs)
			}

			if err := store.WritePrefs(storage.Prefs{ViewMode: "grid", Theme: "dark"}); err != nil {
				t.Fatalf("write prefs failed: %v", err)
			}
			prefs, err = store.ReadPrefs()
			if err != nil {
				t.Fatalf("read prefs failed: %v", err)
			}
			if prefs.ViewMode != "grid" || prefs.Theme != "dark" {
				t.Errorf("prefs lost: %+v", prefs)
			}
		})
	}
}

// Two JSON stores on the same path model the panel and the background
// worker sharing one document. A write in one process must reach the
// other's subscribers via the change poller.
func TestJSONStore_CrossInstanceNotification(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stash.json")

	writer := storage.NewJSONStore(storage.JSONStoreParams{
		Path: path, PrefsPath: filepath.Join(dir, "p1.json"), PollInterval: 20 * time.Millisecond,
	})
	defer writer.Close()
	watcher := storage.NewJSONStore(storage.JSONStoreParams{
		Path: path, PrefsPath: filepath.Join(dir, "p2.json"), PollInterval: 20 * time.Millisecond,
	})
	defer watcher.Close()

	got := make(chan *model.StorageRecord, 1)
	cancel := watcher.Subscribe(func(record *model.StorageRecord) {
		select {
		case got <- record:
		default:
		}
	})
	defer cancel()

	record := model.NewStorageRecord()
	record.LastSavedCategory = "Dev"
	if err := writer.Write(record); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	select {
	case notified := <-got:
		if notified.LastSavedCategory != "Dev" {
			t.Errorf("watcher got stale record: %q", notified.LastSavedCategory)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watcher never saw the external write")
	}
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stash.db")

	store, err := storage.NewSQLiteStore(storage.SQLiteStoreParams{Path: path})
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	record := model.NewStorageRecord()
	record.Bookmarks = []model.Bookmark{
		{ID: "b1", URL: "https://a.com", Title: "A", Hostname: "a.com", Favicon: "f", Category: "Inbox", CreatedAt: 1},
	}
	if err := store.Write(record); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	reopened, err := storage.NewSQLiteStore(storage.SQLiteStoreParams{Path: path})
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Read()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(got.Bookmarks) != 1 || got.Bookmarks[0].ID != "b1" {
		t.Errorf("bookmarks lost across reopen: %+v", got.Bookmarks)
	}
}

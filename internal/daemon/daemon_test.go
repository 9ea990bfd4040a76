package daemon

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/visualstash/stash/internal/menu"
	"github.com/visualstash/stash/internal/model"
	"github.com/visualstash/stash/internal/pipeline"
	"github.com/visualstash/stash/internal/storage"
)

type stubMenu struct {
	mu    sync.Mutex
	roots []string
	items []string
	wipes int
}

func (m *stubMenu) RemoveAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roots = nil
	m.items = nil
	m.wipes++
	return nil
}

func (m *stubMenu) AddRoot(id, title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roots = append(m.roots, id)
	return nil
}

func (m *stubMenu) AddItem(id, parentID, title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, id)
	return nil
}

func (m *stubMenu) itemCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

func (m *stubMenu) wipeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.wipes
}

type stubTabs struct {
	tab Tab
	err error
}

func (s stubTabs) ActiveTab(context.Context) (Tab, error) { return s.tab, s.err }

// unreachable is a URL whose resolution fails immediately, so saves keep
// their raw inputs instead of waiting on the network.
const unreachable = "http://127.0.0.1:1/page"

func newDaemon(t *testing.T, tabs TabSource) (*Daemon, *storage.MemoryStore, *stubMenu) {
	t.Helper()
	store := storage.NewMemoryStore()
	menus := &stubMenu{}
	d := New(Params{
		Store:    store,
		Pipeline: pipeline.New(pipeline.Params{Store: store}),
		Synchronizer: menu.NewSynchronizer(menu.SynchronizerParams{
			Store: store,
			Menu:  menus,
		}),
		Tabs: tabs,
	})
	return d, store, menus
}

func TestHandleMenuClick_PageSave(t *testing.T) {
	d, store, _ := newDaemon(t, stubTabs{})
	d.HandleMenuClick(context.Background(), ClickEvent{
		MenuID:    menu.ItemID("Work"),
		PageURL:   unreachable,
		PageTitle: "Quarterly Report",
	})

	rec, err := store.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(rec.Bookmarks) != 1 {
		t.Fatalf("bookmark count = %d, want 1", len(rec.Bookmarks))
	}
	b := rec.Bookmarks[0]
	if b.Category != "Work" || b.Title != "Quarterly Report" || b.URL != unreachable {
		t.Errorf("saved bookmark = %+v", b)
	}
	if rec.LastSavedCategory != "Work" {
		t.Errorf("LastSavedCategory = %q, want Work", rec.LastSavedCategory)
	}
}

func TestHandleMenuClick_LinkSaveTitleChain(t *testing.T) {
	tests := []struct {
		name      string
		ev        ClickEvent
		wantTitle string
	}{
		{
			name: "selection text wins",
			ev: ClickEvent{
				MenuID:        menu.ItemID("Dev"),
				PageURL:       unreachable,
				PageTitle:     "Page Title",
				LinkURL:       "http://127.0.0.1:1/target",
				SelectionText: "interesting link",
			},
			wantTitle: "interesting link",
		},
		{
			name: "hostname when no selection",
			ev: ClickEvent{
				MenuID:  menu.ItemID("Dev"),
				PageURL: unreachable,
				LinkURL: "http://127.0.0.1:1/target",
			},
			wantTitle: "127.0.0.1",
		},
		{
			name: "fallback when hostname unusable",
			ev: ClickEvent{
				MenuID:  menu.ItemID("Dev"),
				PageURL: unreachable,
				LinkURL: "::not-a-url",
			},
			wantTitle: "Saved Link",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, store, _ := newDaemon(t, stubTabs{})
			d.HandleMenuClick(context.Background(), tt.ev)

			rec, err := store.Read()
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			if len(rec.Bookmarks) != 1 {
				t.Fatalf("bookmark count = %d, want 1", len(rec.Bookmarks))
			}
			b := rec.Bookmarks[0]
			if b.URL != tt.ev.LinkURL {
				t.Errorf("URL = %q, want link target %q", b.URL, tt.ev.LinkURL)
			}
			if b.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", b.Title, tt.wantTitle)
			}
		})
	}
}

func TestHandleMenuClick_IgnoresForeignMenuIDs(t *testing.T) {
	d, store, _ := newDaemon(t, stubTabs{})
	d.HandleMenuClick(context.Background(), ClickEvent{
		MenuID:  "some-other-extension",
		PageURL: unreachable,
	})
	d.HandleMenuClick(context.Background(), ClickEvent{
		MenuID:  menu.RootID,
		PageURL: unreachable,
	})

	rec, err := store.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(rec.Bookmarks) != 0 {
		t.Errorf("bookmark count = %d, want 0", len(rec.Bookmarks))
	}
}

func TestHandleCommand_SaveToLast(t *testing.T) {
	d, store, _ := newDaemon(t, stubTabs{tab: Tab{URL: unreachable, Title: "Current Tab"}})

	rec, _ := store.Read()
	rec.LastSavedCategory = "Design"
	if err := store.Write(rec); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := d.HandleCommand(context.Background(), CommandSaveToLast); err != nil {
		t.Fatalf("HandleCommand: %v", err)
	}
	rec, _ = store.Read()
	if len(rec.Bookmarks) != 1 {
		t.Fatalf("bookmark count = %d, want 1", len(rec.Bookmarks))
	}
	if got := rec.Bookmarks[0].Category; got != "Design" {
		t.Errorf("category = %q, want Design", got)
	}
}

func TestHandleCommand_SaveToLastFallsBackToInbox(t *testing.T) {
	d, store, _ := newDaemon(t, stubTabs{tab: Tab{URL: unreachable, Title: "Current Tab"}})

	rec, _ := store.Read()
	rec.LastSavedCategory = "Removed"
	if err := store.Write(rec); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := d.HandleCommand(context.Background(), CommandSaveToLast); err != nil {
		t.Fatalf("HandleCommand: %v", err)
	}
	rec, _ = store.Read()
	if got := rec.Bookmarks[0].Category; got != model.CategoryInbox {
		t.Errorf("category = %q, want Inbox", got)
	}
}

func TestHandleCommand_Unknown(t *testing.T) {
	d, _, _ := newDaemon(t, stubTabs{})
	if err := d.HandleCommand(context.Background(), "open-the-pod-bay-doors"); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("err = %v, want ErrUnknownCommand", err)
	}
}

func TestHandleCommand_TabSourceFailure(t *testing.T) {
	boom := errors.New("no focused window")
	d, _, _ := newDaemon(t, stubTabs{err: boom})
	if err := d.HandleCommand(context.Background(), CommandSaveToLast); !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped tab error", err)
	}
}

func TestStart_RebuildsMenuOnEveryWrite(t *testing.T) {
	d, store, menus := newDaemon(t, stubTabs{})
	if err := d.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer d.Stop()

	// Startup rebuild covers the five seeded categories.
	if got := menus.itemCount(); got != 5 {
		t.Fatalf("items after start = %d, want 5", got)
	}
	wipes := menus.wipeCount()

	rec, _ := store.Read()
	rec.Categories = append(rec.Categories, "Reading")
	if err := store.Write(rec); err != nil {
		t.Fatalf("Write: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for menus.itemCount() != 6 || menus.wipeCount() <= wipes {
		if time.Now().After(deadline) {
			t.Fatalf("menu not rebuilt: items=%d wipes=%d", menus.itemCount(), menus.wipeCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

package menu_test

import (
	"reflect"
	"testing"

	"github.com/visualstash/stash/internal/menu"
	"github.com/visualstash/stash/internal/model"
	"github.com/visualstash/stash/internal/storage"
)

func testRecord() *model.StorageRecord {
	record := model.NewStorageRecord()
	record.Categories = []string{"Inbox", "Work", "Design", "Dev", "Secret"}
	return record
}

func categories(entries []menu.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Category
	}
	return out
}

func TestEntries_OrdersByUsageDescending(t *testing.T) {
	record := testRecord()
	record.CategoryUsage = map[string]int64{
		"Dev":  300,
		"Work": 100,
	}

	got := categories(menu.Entries(record))
	// Used categories first by recency, never-used keep original order.
	want := []string{"Dev", "Work", "Inbox", "Design", "Secret"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestEntries_TiesKeepOriginalPosition(t *testing.T) {
	record := testRecord()
	record.CategoryUsage = map[string]int64{
		"Design": 100,
		"Work":   100,
	}

	got := categories(menu.Entries(record))
	want := []string{"Work", "Design", "Inbox", "Dev", "Secret"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestEntries_Deterministic(t *testing.T) {
	record := testRecord()
	record.CategoryUsage = map[string]int64{"Work": 5, "Dev": 5, "Inbox": 1}

	first := menu.Entries(record)
	for i := 0; i < 10; i++ {
		if !reflect.DeepEqual(menu.Entries(record), first) {
			t.Fatal("identical inputs produced different output order")
		}
	}
}

func TestEntries_SecretSlotLabelOverride(t *testing.T) {
	record := testRecord()
	record.SecretCategoryName = "Vault"

	found := false
	for _, e := range menu.Entries(record) {
		if e.Category == model.SecretSlot {
			found = true
			if e.Label != "Vault" {
				t.Errorf("expected label Vault, got %q", e.Label)
			}
			if e.ID != "save-to-Secret" {
				t.Errorf("id should embed the stored category, got %q", e.ID)
			}
		}
	}
	if !found {
		t.Fatal("secret slot missing from entries")
	}
}

func TestCategoryFromID(t *testing.T) {
	if got, ok := menu.CategoryFromID("save-to-Work"); !ok || got != "Work" {
		t.Errorf("expected (Work, true), got (%q, %v)", got, ok)
	}
	if _, ok := menu.CategoryFromID(menu.RootID); ok {
		t.Error("root id should not parse as a save destination")
	}
	if _, ok := menu.CategoryFromID("save-to-"); ok {
		t.Error("empty category should not parse")
	}
}

// fakeMenu records the operations applied to it.
type fakeMenu struct {
	ops    []string
	items  []string
	parent map[string]string
}

func newFakeMenu() *fakeMenu {
	return &fakeMenu{parent: map[string]string{}}
}

func (m *fakeMenu) RemoveAll() error {
	m.ops = append(m.ops, "removeAll")
	m.items = nil
	m.parent = map[string]string{}
	return nil
}

func (m *fakeMenu) AddRoot(id, title string) error {
	m.ops = append(m.ops, "root:"+id)
	m.items = append(m.items, id)
	return nil
}

func (m *fakeMenu) AddItem(id, parentID, title string) error {
	m.ops = append(m.ops, "item:"+id+":"+title)
	m.items = append(m.items, id)
	m.parent[id] = parentID
	return nil
}

func TestSynchronizer_RebuildIsDestructiveThenAdditive(t *testing.T) {
	store := storage.NewMemoryStore()
	record := testRecord()
	record.CategoryUsage = map[string]int64{"Dev": 10}
	if err := store.Write(record); err != nil {
		t.Fatal(err)
	}

	fake := newFakeMenu()
	sync := menu.NewSynchronizer(menu.SynchronizerParams{Store: store, Menu: fake})

	if err := sync.Rebuild(); err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}

	if fake.ops[0] != "removeAll" {
		t.Errorf("expected removeAll first, got %q", fake.ops[0])
	}
	if fake.ops[1] != "root:"+menu.RootID {
		t.Errorf("expected root second, got %q", fake.ops[1])
	}
	if fake.ops[2] != "item:save-to-Dev:Dev" {
		t.Errorf("expected most-used category first, got %q", fake.ops[2])
	}
	if len(fake.items) != 6 { // root + 5 categories
		t.Errorf("expected 6 menu items, got %d", len(fake.items))
	}
	for _, e := range menu.Entries(record) {
		if fake.parent[e.ID] != menu.RootID {
			t.Errorf("leaf %s not parented to root", e.ID)
		}
	}

	// A second rebuild starts from scratch, not on top.
	if err := sync.Rebuild(); err != nil {
		t.Fatalf("second rebuild failed: %v", err)
	}
	if len(fake.items) != 6 {
		t.Errorf("rebuild accumulated items: %d", len(fake.items))
	}
}

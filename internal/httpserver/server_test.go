package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/visualstash/stash/internal/daemon"
	"github.com/visualstash/stash/internal/menu"
	"github.com/visualstash/stash/internal/model"
	"github.com/visualstash/stash/internal/pipeline"
	"github.com/visualstash/stash/internal/storage"
)

type noopMenu struct{}

func (noopMenu) RemoveAll() error             { return nil }
func (noopMenu) AddRoot(_, _ string) error    { return nil }
func (noopMenu) AddItem(_, _, _ string) error { return nil }

func newTestRouter(t *testing.T) (http.Handler, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	badge := pipeline.NewBadge(time.Minute, nil)
	pipe := pipeline.New(pipeline.Params{Store: store, Notify: badge.Set})
	d := daemon.New(daemon.Params{
		Store:    store,
		Pipeline: pipe,
		Synchronizer: menu.NewSynchronizer(menu.SynchronizerParams{
			Store: store,
			Menu:  noopMenu{},
		}),
		Tabs: RequestTabs{},
	})
	router := Router(Deps{
		Store:     store,
		Daemon:    d,
		Badge:     badge,
		Backend:   "memory",
		StartTime: time.Now(),
	})
	return router, store
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestHealthz(t *testing.T) {
	router, _ := newTestRouter(t)
	rr := doJSON(t, router, http.MethodGet, "/api/healthz", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var resp struct {
		Status     string `json:"status"`
		Backend    string `json:"backend"`
		Categories int    `json:"categories"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "ok" || resp.Backend != "memory" || resp.Categories != 5 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestSave(t *testing.T) {
	router, store := newTestRouter(t)

	// Unreachable host: resolution fails fast and the raw input commits.
	rr := doJSON(t, router, http.MethodPost, "/api/save",
		`{"url":"http://127.0.0.1:1/doc","title":"Design Doc","category":"Design"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "saved" {
		t.Errorf("status = %q, want saved", resp.Status)
	}

	rec, err := store.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(rec.Bookmarks) != 1 || rec.Bookmarks[0].Category != "Design" {
		t.Errorf("stored = %+v", rec.Bookmarks)
	}

	// Saving the same page into the same category again is a duplicate.
	rr = doJSON(t, router, http.MethodPost, "/api/save",
		`{"url":"http://127.0.0.1:1/doc","title":"Design Doc","category":"Design"}`)
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "duplicate" {
		t.Errorf("status = %q, want duplicate", resp.Status)
	}
}

func TestSave_DefaultsToInbox(t *testing.T) {
	router, store := newTestRouter(t)
	rr := doJSON(t, router, http.MethodPost, "/api/save",
		`{"url":"http://127.0.0.1:1/x","title":"X"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	rec, _ := store.Read()
	if got := rec.Bookmarks[0].Category; got != model.CategoryInbox {
		t.Errorf("category = %q, want Inbox", got)
	}
}

func TestSave_BadRequests(t *testing.T) {
	router, _ := newTestRouter(t)
	if rr := doJSON(t, router, http.MethodPost, "/api/save", `{"title":"no url"}`); rr.Code != http.StatusBadRequest {
		t.Errorf("missing url: status = %d, want 400", rr.Code)
	}
	if rr := doJSON(t, router, http.MethodPost, "/api/save", `{not json`); rr.Code != http.StatusBadRequest {
		t.Errorf("malformed body: status = %d, want 400", rr.Code)
	}
}

func TestCommand_SaveToLast(t *testing.T) {
	router, store := newTestRouter(t)

	rec, _ := store.Read()
	rec.LastSavedCategory = "Work"
	if err := store.Write(rec); err != nil {
		t.Fatalf("seed: %v", err)
	}

	rr := doJSON(t, router, http.MethodPost, "/api/command/save-to-last",
		`{"url":"http://127.0.0.1:1/tab","title":"Current Tab"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}

	rec, _ = store.Read()
	if len(rec.Bookmarks) != 1 || rec.Bookmarks[0].Category != "Work" {
		t.Errorf("stored = %+v", rec.Bookmarks)
	}
}

func TestCommand_UnknownIs404(t *testing.T) {
	router, _ := newTestRouter(t)
	rr := doJSON(t, router, http.MethodPost, "/api/command/frobnicate",
		`{"url":"http://127.0.0.1:1/tab"}`)
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

func TestCommand_NoPageSupplied(t *testing.T) {
	router, _ := newTestRouter(t)
	rr := doJSON(t, router, http.MethodPost, "/api/command/save-to-last", "")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

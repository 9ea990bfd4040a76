package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/visualstash/stash/internal/daemon"
	"github.com/visualstash/stash/internal/menu"
	"github.com/visualstash/stash/internal/model"
	"github.com/visualstash/stash/internal/pipeline"
)

type ctxKey int

const tabKey ctxKey = iota

// RequestTabs satisfies daemon.TabSource with the page the caller posted
// alongside the command, since a local API has no notion of a focused
// window of its own.
type RequestTabs struct{}

func (RequestTabs) ActiveTab(ctx context.Context) (daemon.Tab, error) {
	tab, ok := ctx.Value(tabKey).(daemon.Tab)
	if !ok || tab.URL == "" {
		return daemon.Tab{}, errors.New("no active page supplied")
	}
	return tab, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

type healthzResponse struct {
	Status        string  `json:"status"`
	Backend       string  `json:"backend"`
	Bookmarks     int     `json:"bookmarks"`
	Categories    int     `json:"categories"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

func handleHealthz(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := d.Store.Read()
		if err != nil {
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
			return
		}
		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, healthzResponse{
			Status:        "ok",
			Backend:       d.Backend,
			Bookmarks:     len(rec.Bookmarks),
			Categories:    len(rec.Categories),
			UptimeSeconds: time.Since(d.StartTime).Seconds(),
		})
	}
}

type saveRequest struct {
	URL           string `json:"url"`
	Title         string `json:"title"`
	Category      string `json:"category"`
	LinkURL       string `json:"linkUrl"`
	SelectionText string `json:"selectionText"`
}

type saveResponse struct {
	Status string `json:"status"`
}

// handleSave feeds a page into the save pipeline. The request mirrors a
// quick-save menu click, so link saves get the same title seeding chain.
// The response carries the pipeline's current status signal.
func handleSave(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req saveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
			return
		}
		if req.URL == "" && req.LinkURL == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "url is required"})
			return
		}
		if req.Category == "" {
			req.Category = model.CategoryInbox
		}

		d.Daemon.HandleMenuClick(r.Context(), daemon.ClickEvent{
			MenuID:        menu.ItemID(req.Category),
			PageURL:       req.URL,
			PageTitle:     req.Title,
			LinkURL:       req.LinkURL,
			SelectionText: req.SelectionText,
		})

		status := pipeline.StatusNone
		if d.Badge != nil {
			status = d.Badge.Current()
		}
		code := http.StatusOK
		if status == pipeline.StatusError {
			code = http.StatusBadGateway
		}
		writeJSON(w, code, saveResponse{Status: status.String()})
	}
}

type commandRequest struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// handleCommand fires a named command. The body optionally carries the
// page to treat as the active one.
func handleCommand(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")

		var req commandRequest
		if r.Body != nil && r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
				return
			}
		}

		ctx := r.Context()
		if req.URL != "" {
			ctx = context.WithValue(ctx, tabKey, daemon.Tab{URL: req.URL, Title: req.Title})
		}

		if err := d.Daemon.HandleCommand(ctx, name); err != nil {
			code := http.StatusBadRequest
			if errors.Is(err, daemon.ErrUnknownCommand) {
				code = http.StatusNotFound
			}
			writeJSON(w, code, errorResponse{Error: err.Error()})
			return
		}

		status := pipeline.StatusNone
		if d.Badge != nil {
			status = d.Badge.Current()
		}
		writeJSON(w, http.StatusOK, saveResponse{Status: status.String()})
	}
}

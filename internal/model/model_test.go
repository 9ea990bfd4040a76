package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/visualstash/stash/internal/model"
)

func TestBookmark_JSONSerialization(t *testing.T) {
	bookmark := model.Bookmark{
		ID:        "b1",
		URL:       "https://react.dev",
		Title:     "React",
		Hostname:  "react.dev",
		Favicon:   "https://www.google.com/s2/favicons?domain=react.dev&sz=128",
		Category:  "Dev",
		CreatedAt: 1736935800000,
	}

	data, err := json.Marshal(bookmark)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}

	var got model.Bookmark
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	if got != bookmark {
		t.Errorf("roundtrip mismatch: got %+v, want %+v", got, bookmark)
	}
}

func TestNewBookmark_DerivesFields(t *testing.T) {
	before := time.Now().UnixMilli()
	b := model.NewBookmark(model.NewBookmarkParams{
		URL:      "https://www.example.com/page",
		Title:    "Example",
		Category: "Work",
	})

	if b.ID == "" {
		t.Error("expected generated id")
	}
	if b.Hostname != "example.com" {
		t.Errorf("expected hostname example.com, got %q", b.Hostname)
	}
	if b.Favicon != "https://www.google.com/s2/favicons?domain=www.example.com&sz=128" {
		t.Errorf("unexpected favicon URL %q", b.Favicon)
	}
	if b.CreatedAt < before {
		t.Errorf("createdAt %d earlier than test start %d", b.CreatedAt, before)
	}
}

func TestNewBookmark_EmptyTitleFallsBackToURL(t *testing.T) {
	b := model.NewBookmark(model.NewBookmarkParams{
		URL:      "https://example.com",
		Category: "Inbox",
	})
	if b.Title != "https://example.com" {
		t.Errorf("expected URL as title, got %q", b.Title)
	}
}

func TestHostname(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"plain host", "https://go.dev/doc", "go.dev"},
		{"www stripped", "https://www.github.com", "github.com"},
		{"unparseable", "://not a url", "unknown"},
		{"no host", "mailto:someone@example.com", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := model.Hostname(tt.url); got != tt.want {
				t.Errorf("Hostname(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestFaviconURL_Unparseable(t *testing.T) {
	got := model.FaviconURL("://broken")
	if got != "https://picsum.photos/64/64" {
		t.Errorf("expected fallback favicon, got %q", got)
	}
}

func TestStorageRecord_HasBookmark(t *testing.T) {
	rec := model.NewStorageRecord()
	rec.Bookmarks = []model.Bookmark{
		{ID: "b1", URL: "https://a.com", Category: "Inbox"},
	}

	if !rec.HasBookmark("https://a.com", "Inbox") {
		t.Error("expected to find (url, category) pair")
	}
	// Same URL in a different category is not a duplicate.
	if rec.HasBookmark("https://a.com", "Work") {
		t.Error("same URL in another category should not match")
	}
	if rec.HasBookmark("https://b.com", "Inbox") {
		t.Error("unknown URL should not match")
	}
}

func TestStorageRecord_ValidCategory(t *testing.T) {
	rec := model.NewStorageRecord()

	if got := rec.ValidCategory("Work"); got != "Work" {
		t.Errorf("expected Work, got %q", got)
	}
	if got := rec.ValidCategory("Nonexistent"); got != model.CategoryInbox {
		t.Errorf("expected Inbox fallback, got %q", got)
	}
	if got := rec.ValidCategory(""); got != model.CategoryInbox {
		t.Errorf("expected Inbox for empty name, got %q", got)
	}
}

func TestStorageRecord_Normalize(t *testing.T) {
	var rec model.StorageRecord
	rec.Normalize()

	if len(rec.Categories) == 0 {
		t.Error("expected default categories")
	}
	if rec.Bookmarks == nil || rec.CategoryUsage == nil {
		t.Error("expected non-nil slices and maps")
	}
	if rec.SecretPassword != model.DefaultPassword {
		t.Errorf("expected default password, got %q", rec.SecretPassword)
	}
	if rec.SecretCategoryName != model.SecretSlot {
		t.Errorf("expected default secret name, got %q", rec.SecretCategoryName)
	}
}

func TestStorageRecord_CloneIsIndependent(t *testing.T) {
	rec := model.NewStorageRecord()
	rec.Bookmarks = []model.Bookmark{{ID: "b1", URL: "https://a.com", Category: "Inbox"}}
	rec.CategoryUsage["Inbox"] = 42

	clone := rec.Clone()
	clone.Categories[0] = "Changed"
	clone.Bookmarks[0].Title = "Changed"
	clone.CategoryUsage["Inbox"] = 99

	if rec.Categories[0] != model.CategoryInbox {
		t.Error("clone mutation leaked into category sequence")
	}
	if rec.Bookmarks[0].Title == "Changed" {
		t.Error("clone mutation leaked into bookmarks")
	}
	if rec.CategoryUsage["Inbox"] != 42 {
		t.Error("clone mutation leaked into usage map")
	}
}

func TestMonthYear(t *testing.T) {
	ts := time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC).UnixMilli()
	got := model.MonthYear(ts)
	want := time.UnixMilli(ts).Format("January 2006")
	if got != want {
		t.Errorf("MonthYear = %q, want %q", got, want)
	}
}

package exporter

import (
	"strings"
	"testing"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/visualstash/stash/internal/model"
)

func TestExportHTML_EmptyRecord(t *testing.T) {
	rec := model.NewStorageRecord()

	html := ExportHTML(rec)

	// Should have basic structure even when empty
	assert.Check(t, is.Contains(html, "<!DOCTYPE NETSCAPE-Bookmark-file-1>"))
	assert.Check(t, is.Contains(html, "<TITLE>Bookmarks</TITLE>"))
	assert.Check(t, is.Contains(html, "<H1>Bookmarks</H1>"))
	// The default categories export as empty folders
	assert.Check(t, is.Contains(html, "Inbox</H3>"))
}

func TestExportHTML_SingleBookmark(t *testing.T) {
	rec := model.NewStorageRecord()
	rec.Bookmarks = []model.Bookmark{
		{
			ID:        "b1",
			Title:     "GitHub",
			URL:       "https://github.com",
			Category:  "Dev",
			CreatedAt: 1700000000000,
		},
	}

	html := ExportHTML(rec)

	assert.Check(t, is.Contains(html, `<A HREF="https://github.com"`))
	assert.Check(t, is.Contains(html, "GitHub</A>"))
	assert.Check(t, is.Contains(html, `ADD_DATE="1700000000"`), "ADD_DATE must be epoch seconds")
}

func TestExportHTML_BookmarkInsideItsCategory(t *testing.T) {
	rec := model.NewStorageRecord()
	rec.Bookmarks = []model.Bookmark{
		{ID: "b1", Title: "GitHub", URL: "https://github.com", Category: "Dev", CreatedAt: 1700000000000},
	}

	html := ExportHTML(rec)

	// Category folder should come before its bookmark
	folderIdx := strings.Index(html, "Dev</H3>")
	bookmarkIdx := strings.Index(html, "GitHub</A>")

	assert.Assert(t, folderIdx != -1, "category folder not found in output")
	assert.Assert(t, bookmarkIdx != -1, "bookmark not found in output")
	assert.Assert(t, folderIdx < bookmarkIdx, "category folder should come before its bookmark")
}

func TestExportHTML_CategoriesInStoredOrder(t *testing.T) {
	rec := model.NewStorageRecord()
	rec.Categories = []string{"Zulu", "Alpha"}

	html := ExportHTML(rec)

	zuluIdx := strings.Index(html, "Zulu</H3>")
	alphaIdx := strings.Index(html, "Alpha</H3>")
	assert.Assert(t, zuluIdx != -1 && alphaIdx != -1, "missing category folders in output")
	assert.Assert(t, zuluIdx < alphaIdx, "expected stored order, not alphabetical")
}

func TestExportHTML_EscapesSpecialCharacters(t *testing.T) {
	rec := model.NewStorageRecord()
	rec.Bookmarks = []model.Bookmark{
		{
			ID:        "b1",
			Title:     "Test <script>alert('xss')</script>",
			URL:       "https://example.com?foo=bar&baz=qux",
			Category:  model.CategoryInbox,
			CreatedAt: 1700000000000,
		},
	}

	html := ExportHTML(rec)

	// Title should be escaped
	assert.Check(t, !strings.Contains(html, "<script>"), "script tag should be escaped")
	assert.Check(t, is.Contains(html, "&lt;script&gt;"))

	// URL should be escaped
	assert.Check(t, !strings.Contains(html, "foo=bar&baz "), "ampersand should be escaped in URL")
	assert.Check(t, is.Contains(html, "foo=bar&amp;baz"))
}

func TestExportHTML_RoundTripsThroughImport(t *testing.T) {
	rec := model.NewStorageRecord()
	rec.Bookmarks = []model.Bookmark{
		{ID: "b1", Title: "GitHub", URL: "https://github.com", Category: "Dev", CreatedAt: 1700000000000},
		{ID: "b2", Title: "Inbox Item", URL: "https://example.com", Category: model.CategoryInbox, CreatedAt: 1700000001000},
	}

	html := ExportHTML(rec)

	// Every category and bookmark must be representable in the format
	for _, cat := range rec.Categories {
		assert.Check(t, is.Contains(html, cat+"</H3>"), "category %q missing from export", cat)
	}
	for _, b := range rec.Bookmarks {
		assert.Check(t, is.Contains(html, b.Title+"</A>"), "bookmark %q missing from export", b.Title)
	}
}

package model

import "time"

// Bookmark represents a saved URL with metadata.
type Bookmark struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	Title     string `json:"title"`
	Hostname  string `json:"hostname"`
	Favicon   string `json:"favicon"`
	Category  string `json:"category"`
	CreatedAt int64  `json:"createdAt"` // epoch millis
}

// NewBookmarkParams holds parameters for creating a new Bookmark.
type NewBookmarkParams struct {
	URL      string
	Title    string
	Category string
}

// NewBookmark creates a Bookmark with a generated UUID and the current
// timestamp. Hostname and favicon are derived from the URL once, here;
// edits never re-derive them.
func NewBookmark(params NewBookmarkParams) Bookmark {
	title := params.Title
	if title == "" {
		title = params.URL
	}

	return Bookmark{
		ID:        GenerateUUID(),
		URL:       params.URL,
		Title:     title,
		Hostname:  Hostname(params.URL),
		Favicon:   FaviconURL(params.URL),
		Category:  params.Category,
		CreatedAt: time.Now().UnixMilli(),
	}
}

// MonthYear returns the calendar bucket key for a bookmark timestamp,
// e.g. "January 2025".
func MonthYear(epochMillis int64) string {
	return time.UnixMilli(epochMillis).Format("January 2006")
}

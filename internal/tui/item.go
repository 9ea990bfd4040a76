package tui

import "github.com/visualstash/stash/internal/model"

// RowKind distinguishes month headers from bookmark rows in the list.
type RowKind int

const (
	RowHeader RowKind = iota
	RowBookmark
)

// Row is one rendered line of the bookmark list.
type Row struct {
	Kind     RowKind
	Label    string // month-year label for headers
	Bookmark *model.Bookmark
}

// IsHeader returns true if this row is a month header.
func (r Row) IsHeader() bool {
	return r.Kind == RowHeader
}

// ID returns the bookmark's ID, or "" for headers.
func (r Row) ID() string {
	if r.Kind == RowHeader {
		return ""
	}
	return r.Bookmark.ID
}

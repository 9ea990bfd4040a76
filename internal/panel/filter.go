package panel

import (
	"sort"
	"strings"

	"github.com/visualstash/stash/internal/model"
)

// FilterMode picks which bookmark fields the search query matches.
type FilterMode int

const (
	// FilterAll matches against title, URL, and hostname.
	FilterAll FilterMode = iota
	// FilterTitle matches against the title only.
	FilterTitle
	// FilterURL matches against URL and hostname.
	FilterURL
)

// String returns the surface label for the mode.
func (m FilterMode) String() string {
	switch m {
	case FilterTitle:
		return "title"
	case FilterURL:
		return "url"
	default:
		return "all"
	}
}

// ParseFilterMode maps a stored or typed label back to a mode; anything
// unrecognised is FilterAll.
func ParseFilterMode(s string) FilterMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "title":
		return FilterTitle
	case "url":
		return FilterURL
	default:
		return FilterAll
	}
}

// matches reports whether b satisfies the query under the given mode.
// Matching is case-insensitive substring containment.
func matches(b model.Bookmark, query string, mode FilterMode) bool {
	title := strings.ToLower(b.Title)
	url := strings.ToLower(b.URL)
	host := strings.ToLower(b.Hostname)
	switch mode {
	case FilterTitle:
		return strings.Contains(title, query)
	case FilterURL:
		return strings.Contains(url, query) || strings.Contains(host, query)
	default:
		return strings.Contains(title, query) ||
			strings.Contains(url, query) ||
			strings.Contains(host, query)
	}
}

// visibleBookmarks computes the list the surface renders, newest first.
// With a blank query it is the active category's bookmarks. With a query
// it is the matching bookmarks across every category, except that the
// secret category is excluded while locked so its contents cannot be
// probed through search.
func visibleBookmarks(rec *model.StorageRecord, active, query string, mode FilterMode, unlocked bool) []model.Bookmark {
	query = strings.ToLower(strings.TrimSpace(query))
	secret := rec.SecretName()

	var out []model.Bookmark
	if query == "" {
		out = rec.BookmarksInCategory(active)
	} else {
		for _, b := range rec.Bookmarks {
			if b.Category == secret && !unlocked {
				continue
			}
			if matches(b, query, mode) {
				out = append(out, b)
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt > out[j].CreatedAt
	})
	return out
}

// Group is one month-year bucket of the rendered list.
type Group struct {
	MonthYear string
	Bookmarks []model.Bookmark
}

// groupByMonth buckets an already-sorted list by month and year. Buckets
// appear in first-appearance order, which for a newest-first input means
// reverse chronological.
func groupByMonth(bookmarks []model.Bookmark) []Group {
	var groups []Group
	index := map[string]int{}
	for _, b := range bookmarks {
		key := model.MonthYear(b.CreatedAt)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{MonthYear: key})
		}
		groups[i].Bookmarks = append(groups[i].Bookmarks, b)
	}
	return groups
}

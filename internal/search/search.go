// Package search implements the fuzzy lookup behind the quick-open flow.
package search

import (
	"github.com/sahilm/fuzzy"

	"github.com/visualstash/stash/internal/model"
)

// Result represents a fuzzy search match.
type Result struct {
	Bookmark       *model.Bookmark
	MatchedIndexes []int
	Score          int
}

// bookmarkTitles implements fuzzy.Source for a bookmark slice.
type bookmarkTitles []*model.Bookmark

func (bt bookmarkTitles) String(i int) string {
	return bt[i].Title
}

func (bt bookmarkTitles) Len() int {
	return len(bt)
}

// FuzzySearch matches bookmark titles against the query, best score first.
// The secret category is always excluded: quick search runs outside any
// password gate, so its contents must not be discoverable here.
func FuzzySearch(rec *model.StorageRecord, query string) []Result {
	if query == "" {
		return nil
	}
	secret := rec.SecretName()

	candidates := make(bookmarkTitles, 0, len(rec.Bookmarks))
	for i := range rec.Bookmarks {
		if rec.Bookmarks[i].Category == secret {
			continue
		}
		candidates = append(candidates, &rec.Bookmarks[i])
	}

	matches := fuzzy.FindFrom(query, candidates)

	results := make([]Result, len(matches))
	for i, m := range matches {
		results[i] = Result{
			Bookmark:       candidates[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}
	return results
}

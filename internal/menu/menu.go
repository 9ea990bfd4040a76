// Package menu derives the ordered list of save destinations shown in the
// host's context menu and mirrors it onto an external two-level menu.
package menu

import (
	"fmt"
	"sort"

	"github.com/visualstash/stash/internal/logger"
	"github.com/visualstash/stash/internal/model"
	"github.com/visualstash/stash/internal/storage"
)

const (
	// RootID identifies the parent menu entry.
	RootID = "visual-stash-root"
	// RootTitle is the parent entry label.
	RootTitle = "Save to VisualStash"
	// itemPrefix embeds the category name in leaf identifiers.
	itemPrefix = "save-to-"
)

// Entry is one save destination.
type Entry struct {
	Category string // the category name, embedded in ID
	Label    string // display label, may differ for the secret slot
	ID       string // "save-to-<category>"
}

// ItemID returns the menu identifier for a category.
func ItemID(category string) string {
	return itemPrefix + category
}

// CategoryFromID extracts the category from a leaf identifier. ok is false
// for identifiers that are not save destinations (e.g. the root).
func CategoryFromID(id string) (category string, ok bool) {
	if len(id) <= len(itemPrefix) || id[:len(itemPrefix)] != itemPrefix {
		return "", false
	}
	return id[len(itemPrefix):], true
}

// Entries computes the ordered save destinations for a record. Pure
// function of the category sequence, the usage map and the secret name:
// most recently used first, never-used categories last in their original
// order.
func Entries(record *model.StorageRecord) []Entry {
	ordered := append([]string{}, record.Categories...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return record.CategoryUsage[ordered[i]] > record.CategoryUsage[ordered[j]]
	})

	entries := make([]Entry, len(ordered))
	for i, category := range ordered {
		label := category
		// The secret slot keeps its configured display name even when the
		// stored category still carries the canonical name.
		if category == model.SecretSlot && record.SecretCategoryName != "" {
			label = record.SecretCategoryName
		}
		entries[i] = Entry{Category: category, Label: label, ID: ItemID(category)}
	}
	return entries
}

// Menu is the external menu surface. Implemented by the host integration;
// faked in tests.
type Menu interface {
	RemoveAll() error
	AddRoot(id, title string) error
	AddItem(id, parentID, title string) error
}

// Synchronizer rebuilds an external Menu from the store.
type Synchronizer struct {
	store storage.Store
	menu  Menu
	log   logger.Logger
}

// SynchronizerParams holds parameters for creating a Synchronizer.
type SynchronizerParams struct {
	Store  storage.Store
	Menu   Menu
	Logger logger.Logger
}

// NewSynchronizer creates a Synchronizer.
func NewSynchronizer(params SynchronizerParams) *Synchronizer {
	log := params.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Synchronizer{store: params.Store, menu: params.Menu, log: log}
}

// Rebuild reads the current record and recreates the menu from scratch:
// remove everything, then root plus one leaf per category in computed
// order. No incremental diffing.
func (s *Synchronizer) Rebuild() error {
	record, err := s.store.Read()
	if err != nil {
		return fmt.Errorf("menu rebuild: %w", err)
	}
	return s.RebuildFrom(record)
}

// RebuildFrom recreates the menu from an already-loaded record.
func (s *Synchronizer) RebuildFrom(record *model.StorageRecord) error {
	if err := s.menu.RemoveAll(); err != nil {
		return fmt.Errorf("menu rebuild: %w", err)
	}
	if err := s.menu.AddRoot(RootID, RootTitle); err != nil {
		return fmt.Errorf("menu rebuild: %w", err)
	}
	for _, entry := range Entries(record) {
		if err := s.menu.AddItem(entry.ID, RootID, entry.Label); err != nil {
			return fmt.Errorf("menu rebuild: %w", err)
		}
	}
	s.log.Debug("menu rebuilt", logger.Int("categories", len(record.Categories)))
	return nil
}

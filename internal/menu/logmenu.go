package menu

import (
	"sync"

	"github.com/visualstash/stash/internal/logger"
)

// LogMenu is a headless Menu: it keeps the current entries in memory and
// logs every rebuild. Used by the daemon when no host menu surface is
// attached.
type LogMenu struct {
	mu      sync.Mutex
	root    string
	entries []Entry
	log     logger.Logger
}

// NewLogMenu creates a LogMenu.
func NewLogMenu(log logger.Logger) *LogMenu {
	if log == nil {
		log = logger.Nop()
	}
	return &LogMenu{log: log}
}

// RemoveAll implements Menu.
func (m *LogMenu) RemoveAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.root = ""
	m.entries = m.entries[:0]
	return nil
}

// AddRoot implements Menu.
func (m *LogMenu) AddRoot(id, title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.root = title
	return nil
}

// AddItem implements Menu.
func (m *LogMenu) AddItem(id, parentID, title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	category, _ := CategoryFromID(id)
	m.entries = append(m.entries, Entry{Category: category, Label: title, ID: id})
	m.log.Debug("menu entry", logger.String("id", id), logger.String("label", title))
	return nil
}

// Entries returns a copy of the current mirror in display order.
func (m *LogMenu) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

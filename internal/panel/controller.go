// Package panel holds the state machine behind the management surface:
// an in-memory mirror of the stored record, the mutation operations that
// edit it, the filter and grouping logic for the bookmark list, and the
// guard for the secret category.
package panel

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/visualstash/stash/internal/logger"
	"github.com/visualstash/stash/internal/model"
	"github.com/visualstash/stash/internal/storage"
)

var (
	ErrNameExists       = errors.New("a category with that name already exists")
	ErrReservedCategory = errors.New("this category is permanent")
	ErrWrongPassword    = errors.New("incorrect password")
	ErrPasswordTooShort = errors.New("password must be at least 4 characters")
	ErrSecretLocked     = errors.New("secret category is locked")
	ErrUnknownCategory  = errors.New("unknown category")
)

// minPasswordLen is the floor for a replacement secret password.
const minPasswordLen = 4

// DeleteMode picks what happens to a deleted category's bookmarks.
type DeleteMode int

const (
	// DeleteMove retags the category's bookmarks to the inbox.
	DeleteMove DeleteMode = iota
	// DeletePurge removes the category's bookmarks along with it.
	DeletePurge
)

// Controller mediates between a management surface and the store. It keeps
// a full mirror of the record, applies each user action to the mirror
// first, then writes the whole record through to the store. External
// changes arrive via the store subscription and replace the mirror
// outright, so the surface never merges.
type Controller struct {
	store storage.Store
	log   logger.Logger
	guard *Guard

	mu        sync.Mutex
	record    *model.StorageRecord
	active    string
	selected  map[string]bool
	query     string
	mode      FilterMode
	onMirror  func() // invoked after the mirror is replaced externally
	cancelSub func()
}

// Params configures a Controller.
type Params struct {
	Store     storage.Store
	Logger    logger.Logger
	LockDelay time.Duration
	// OnAutoLock is invoked when the secret countdown expires; the surface
	// uses it to redraw. May be nil.
	OnAutoLock func()
	// OnChange is invoked after an external store change replaced the
	// mirror. May be nil.
	OnChange func()
}

// New builds a Controller, loads the current record, and subscribes to
// store changes. Close releases the subscription.
func New(p Params) (*Controller, error) {
	if p.Logger == nil {
		p.Logger = logger.Nop()
	}
	rec, err := p.Store.Read()
	if err != nil {
		return nil, err
	}

	c := &Controller{
		store:    p.Store,
		log:      p.Logger,
		record:   rec,
		active:   model.CategoryInbox,
		selected: make(map[string]bool),
		onMirror: p.OnChange,
	}
	c.guard = NewGuard(p.LockDelay, func() {
		c.handleAutoLock()
		if p.OnAutoLock != nil {
			p.OnAutoLock()
		}
	})
	c.cancelSub = p.Store.Subscribe(c.applyExternal)
	return c, nil
}

// Close cancels the store subscription.
func (c *Controller) Close() {
	if c.cancelSub != nil {
		c.cancelSub()
	}
}

// applyExternal replaces the mirror with a record written elsewhere. The
// active view and selection survive as long as they still make sense.
func (c *Controller) applyExternal(rec *model.StorageRecord) {
	c.mu.Lock()
	c.record = rec
	if !rec.HasCategory(c.active) {
		c.setActiveLocked(model.CategoryInbox)
	}
	for id := range c.selected {
		if rec.BookmarkByID(id) == nil {
			delete(c.selected, id)
		}
	}
	onMirror := c.onMirror
	c.mu.Unlock()

	if onMirror != nil {
		onMirror()
	}
}

func (c *Controller) handleAutoLock() {
	c.mu.Lock()
	defer c.mu.Unlock()
	// Relocking while the secret view is open snaps back to the inbox so
	// the hidden list is not left on screen.
	if c.active == c.record.SecretName() {
		c.setActiveLocked(model.CategoryInbox)
	}
}

// persistLocked writes the mirror through to the store. The mirror is
// authoritative for the surface either way; a failed write is logged and
// the store subscription will reconcile on the next external change.
func (c *Controller) persistLocked() error {
	if err := c.store.Write(c.record.Clone()); err != nil {
		c.log.Error("persist failed", logger.Error(err))
		return err
	}
	return nil
}

// setActiveLocked switches the active view and informs the guard, which
// starts or cancels the auto-lock countdown.
func (c *Controller) setActiveLocked(name string) {
	c.active = name
	c.guard.ViewChanged(name == c.record.SecretName())
}

// Guard exposes the secret-access guard.
func (c *Controller) Guard() *Guard { return c.guard }

// Record returns a snapshot of the mirror.
func (c *Controller) Record() *model.StorageRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.record.Clone()
}

// Categories returns the category sequence in stored order.
func (c *Controller) Categories() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.record.Categories))
	copy(out, c.record.Categories)
	return out
}

// ActiveCategory returns the category the surface is showing.
func (c *Controller) ActiveCategory() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// SecretName returns the display name of the secret category.
func (c *Controller) SecretName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.record.SecretName()
}

// LockedView reports whether the surface should render the password
// prompt instead of the bookmark list.
func (c *Controller) LockedView() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active == c.record.SecretName() && !c.guard.Unlocked()
}

// SelectCategory switches the active view. Selecting the secret category
// while locked is allowed; the surface shows the password prompt until
// Unlock succeeds.
func (c *Controller) SelectCategory(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.record.HasCategory(name) {
		return ErrUnknownCategory
	}
	// The locked secret view never becomes active by selection; the
	// surface opens the password prompt instead and the switch happens
	// inside Unlock.
	if name == c.record.SecretName() && !c.guard.Unlocked() {
		return ErrSecretLocked
	}
	c.setActiveLocked(name)
	return nil
}

// AddCategory appends a new category and makes it active. A blank name or
// a name that already exists is a silent no-op, matching the quick-add
// affordance it backs.
func (c *Controller) AddCategory(name string) error {
	name = strings.TrimSpace(name)
	c.mu.Lock()
	defer c.mu.Unlock()
	if name == "" || c.record.HasCategory(name) {
		return nil
	}
	c.record.Categories = append(c.record.Categories, name)
	c.setActiveLocked(name)
	return c.persistLocked()
}

// RenameCategory renames a category and cascades the new name through
// every reference in one write: bookmark tags, the secret display name,
// the last-saved pointer, and the active view. The inbox keeps its name;
// it is the fallback target every coercion path retags to.
func (c *Controller) RenameCategory(oldName, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" || newName == oldName {
		return nil
	}
	if oldName == model.CategoryInbox {
		return ErrReservedCategory
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.record.HasCategory(oldName) {
		return ErrUnknownCategory
	}
	if c.record.HasCategory(newName) {
		return ErrNameExists
	}

	for i, name := range c.record.Categories {
		if name == oldName {
			c.record.Categories[i] = newName
		}
	}
	for i := range c.record.Bookmarks {
		if c.record.Bookmarks[i].Category == oldName {
			c.record.Bookmarks[i].Category = newName
		}
	}
	if c.record.SecretCategoryName == oldName {
		c.record.SecretCategoryName = newName
	}
	if c.record.LastSavedCategory == oldName {
		c.record.LastSavedCategory = newName
	}
	if usage, ok := c.record.CategoryUsage[oldName]; ok {
		delete(c.record.CategoryUsage, oldName)
		c.record.CategoryUsage[newName] = usage
	}
	if c.active == oldName {
		c.setActiveLocked(newName)
	}
	return c.persistLocked()
}

// ReorderCategories replaces the category sequence verbatim. The caller
// supplies a permutation of the existing names; membership is not
// revalidated here because the surface builds the sequence from the
// mirror it is reordering.
func (c *Controller) ReorderCategories(seq []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record.Categories = make([]string, len(seq))
	copy(c.record.Categories, seq)
	return c.persistLocked()
}

// DeleteCategory removes a category. The inbox and the secret category
// are permanent. DeleteMove retags the category's bookmarks to the inbox;
// DeletePurge removes them. References to the deleted name fall back to
// the inbox.
func (c *Controller) DeleteCategory(name string, mode DeleteMode) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if name == model.CategoryInbox || name == c.record.SecretName() {
		return ErrReservedCategory
	}
	if !c.record.HasCategory(name) {
		return ErrUnknownCategory
	}

	kept := c.record.Categories[:0]
	for _, cat := range c.record.Categories {
		if cat != name {
			kept = append(kept, cat)
		}
	}
	c.record.Categories = kept

	switch mode {
	case DeletePurge:
		remaining := c.record.Bookmarks[:0]
		for _, b := range c.record.Bookmarks {
			if b.Category != name {
				remaining = append(remaining, b)
			} else {
				delete(c.selected, b.ID)
			}
		}
		c.record.Bookmarks = remaining
	default:
		for i := range c.record.Bookmarks {
			if c.record.Bookmarks[i].Category == name {
				c.record.Bookmarks[i].Category = model.CategoryInbox
			}
		}
	}

	delete(c.record.CategoryUsage, name)
	if c.record.LastSavedCategory == name {
		c.record.LastSavedCategory = model.CategoryInbox
	}
	if c.active == name {
		c.setActiveLocked(model.CategoryInbox)
	}
	return c.persistLocked()
}

// DeleteBookmark removes a single bookmark by id.
func (c *Controller) DeleteBookmark(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.record.Bookmarks[:0]
	for _, b := range c.record.Bookmarks {
		if b.ID != id {
			kept = append(kept, b)
		}
	}
	c.record.Bookmarks = kept
	delete(c.selected, id)
	return c.persistLocked()
}

// EditBookmark updates a bookmark's title and category. The URL, id, and
// creation time are immutable. A blank title leaves the current one in
// place.
func (c *Controller) EditBookmark(id, title, category string) error {
	title = strings.TrimSpace(title)
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.record.HasCategory(category) {
		return ErrUnknownCategory
	}
	for i := range c.record.Bookmarks {
		if c.record.Bookmarks[i].ID != id {
			continue
		}
		if title != "" {
			c.record.Bookmarks[i].Title = title
		}
		c.record.Bookmarks[i].Category = category
		return c.persistLocked()
	}
	return nil
}

// ToggleSelect flips a bookmark's membership in the bulk selection.
func (c *Controller) ToggleSelect(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected[id] {
		delete(c.selected, id)
	} else {
		c.selected[id] = true
	}
}

// ClearSelection empties the bulk selection.
func (c *Controller) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = make(map[string]bool)
}

// Selected reports whether a bookmark is in the bulk selection.
func (c *Controller) Selected(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected[id]
}

// SelectionCount returns the number of selected bookmarks.
func (c *Controller) SelectionCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.selected)
}

// BulkMove retags every selected bookmark to the target category, clears
// the selection, and switches the view to the target. Moving into the
// secret category requires it to be unlocked.
func (c *Controller) BulkMove(target string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.record.HasCategory(target) {
		return ErrUnknownCategory
	}
	if target == c.record.SecretName() && !c.guard.Unlocked() {
		return ErrSecretLocked
	}
	if len(c.selected) == 0 {
		return nil
	}
	for i := range c.record.Bookmarks {
		if c.selected[c.record.Bookmarks[i].ID] {
			c.record.Bookmarks[i].Category = target
		}
	}
	c.selected = make(map[string]bool)
	c.setActiveLocked(target)
	return c.persistLocked()
}

// BulkDelete removes every selected bookmark and clears the selection.
func (c *Controller) BulkDelete() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.selected) == 0 {
		return nil
	}
	kept := c.record.Bookmarks[:0]
	for _, b := range c.record.Bookmarks {
		if !c.selected[b.ID] {
			kept = append(kept, b)
		}
	}
	c.record.Bookmarks = kept
	c.selected = make(map[string]bool)
	return c.persistLocked()
}

// Unlock submits a password to the guard. On success the secret category
// becomes the active view.
func (c *Controller) Unlock(password string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.guard.Unlock(password, c.record.SecretPassword); err != nil {
		return err
	}
	c.setActiveLocked(c.record.SecretName())
	return nil
}

// ChangePassword replaces the secret password. The new password must be
// at least four characters; the change persists immediately.
func (c *Controller) ChangePassword(next string) error {
	if len(next) < minPasswordLen {
		return ErrPasswordTooShort
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record.SecretPassword = next
	return c.persistLocked()
}

// SetQuery updates the substring filter. A blank query restores the
// per-category view.
func (c *Controller) SetQuery(q string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.query = q
}

// Query returns the current filter text.
func (c *Controller) Query() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// SetFilterMode picks which fields the query matches against.
func (c *Controller) SetFilterMode(m FilterMode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = m
}

// FilterModeSetting returns the active filter mode.
func (c *Controller) FilterModeSetting() FilterMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Visible returns the bookmark list the surface should render, newest
// first: the active category's bookmarks, or the filtered set across all
// categories while a query is present.
func (c *Controller) Visible() []model.Bookmark {
	c.mu.Lock()
	defer c.mu.Unlock()
	return visibleBookmarks(c.record, c.active, c.query, c.mode, c.guard.Unlocked())
}

// Groups returns the visible bookmarks bucketed by month and year.
func (c *Controller) Groups() []Group {
	return groupByMonth(c.Visible())
}

package tui

import (
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/visualstash/stash/internal/panel"
)

// Mode is the interaction mode the surface is in. Exactly one mode is
// active; every mode except ModeNormal routes keys into its own inputs.
type Mode int

const (
	ModeNormal Mode = iota
	ModeSearch
	ModeUnlock
	ModeEditBookmark
	ModeAddCategory
	ModeRenameCategory
	ModeConfirmDeleteCategory
	ModeConfirmDeleteBookmarks
	ModeMove
	ModeChangePassword
	ModeHelp
)

// SearchState holds the live filter input and its field mode.
type SearchState struct {
	Input textinput.Model
	Mode  panel.FilterMode
}

// NewSearchState creates a SearchState with an initialized input.
func NewSearchState() SearchState {
	input := textinput.New()
	input.Placeholder = "Search..."
	input.CharLimit = 120
	input.Width = 40
	return SearchState{Input: input}
}

// Reset clears the search input, leaving the field mode as-is.
func (s *SearchState) Reset() {
	s.Input.Reset()
}

// CycleMode advances all -> title -> url -> all.
func (s *SearchState) CycleMode() {
	switch s.Mode {
	case panel.FilterAll:
		s.Mode = panel.FilterTitle
	case panel.FilterTitle:
		s.Mode = panel.FilterURL
	default:
		s.Mode = panel.FilterAll
	}
}

// UnlockState holds the password prompt.
type UnlockState struct {
	Input textinput.Model
	Error string // shown under the prompt after a wrong password
}

// NewUnlockState creates an UnlockState with a masked input.
func NewUnlockState() UnlockState {
	input := textinput.New()
	input.Placeholder = "Password"
	input.EchoMode = textinput.EchoPassword
	input.EchoCharacter = '*'
	input.CharLimit = 64
	input.Width = 24
	return UnlockState{Input: input}
}

// Reset clears the prompt and any error.
func (u *UnlockState) Reset() {
	u.Input.Reset()
	u.Error = ""
}

// ModalState holds the bookmark edit form and the category name form.
// The URL is shown read-only: only title and category are editable.
type ModalState struct {
	TitleInput  textinput.Model
	NameInput   textinput.Model // category add/rename
	EditItemID  string          // bookmark being edited
	CategoryIdx int             // selected category in the edit form / move list
	TargetName  string          // category being renamed or deleted
	Error       string
}

// NewModalState creates a ModalState with initialized inputs.
func NewModalState() ModalState {
	titleInput := textinput.New()
	titleInput.Placeholder = "Title"
	titleInput.CharLimit = 200
	titleInput.Width = 48

	nameInput := textinput.New()
	nameInput.Placeholder = "Category name"
	nameInput.CharLimit = 60
	nameInput.Width = 32

	return ModalState{
		TitleInput: titleInput,
		NameInput:  nameInput,
	}
}

// Reset clears all modal inputs for a new modal session.
func (m *ModalState) Reset() {
	m.TitleInput.Reset()
	m.NameInput.Reset()
	m.EditItemID = ""
	m.CategoryIdx = 0
	m.TargetName = ""
	m.Error = ""
}

// PasswordState holds the change-password form.
type PasswordState struct {
	Input textinput.Model
	Error string
}

// NewPasswordState creates a PasswordState with a masked input.
func NewPasswordState() PasswordState {
	input := textinput.New()
	input.Placeholder = "New password (min 4 chars)"
	input.EchoMode = textinput.EchoPassword
	input.EchoCharacter = '*'
	input.CharLimit = 64
	input.Width = 28
	return PasswordState{Input: input}
}

// Reset clears the form.
func (p *PasswordState) Reset() {
	p.Input.Reset()
	p.Error = ""
}

// ConfirmState holds what a pending destructive action applies to.
type ConfirmState struct {
	Category    string   // category pending deletion
	BookmarkIDs []string // bookmarks pending deletion
	MoveToInbox bool     // category deletion: move bookmarks instead of purging
}

// Reset clears the pending action.
func (c *ConfirmState) Reset() {
	c.Category = ""
	c.BookmarkIDs = nil
	c.MoveToInbox = true
}

// deleteMode maps the toggle onto the controller's delete semantics.
func (c *ConfirmState) deleteMode() panel.DeleteMode {
	if c.MoveToInbox {
		return panel.DeleteMove
	}
	return panel.DeletePurge
}

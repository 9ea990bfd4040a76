// Package tui is the management surface: category pills, the
// month-grouped bookmark list, search, bulk selection, and the password
// prompt in front of the secret category.
package tui

import (
	"errors"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/visualstash/stash/internal/model"
	"github.com/visualstash/stash/internal/panel"
	"github.com/visualstash/stash/internal/pipeline"
	"github.com/visualstash/stash/internal/storage"
)

// RefreshMsg tells the app the record changed outside this surface. The
// host wires the controller's change callback to program.Send.
type RefreshMsg struct{}

// StatusMsg carries a save-status transition from the badge.
type StatusMsg struct {
	Status pipeline.Status
}

// App is the main bubbletea model for the management surface.
type App struct {
	controller *panel.Controller
	prefs      storage.PrefsStore
	keys       KeyMap
	styles     Styles

	mode   Mode
	rows   []Row
	cursor int

	search   SearchState
	unlock   UnlockState
	modal    ModalState
	password PasswordState
	confirm  ConfirmState

	viewMode string
	theme    string
	status   string

	// For gg command
	lastKeyWasG bool

	width  int
	height int
}

// AppParams holds parameters for creating a new App.
type AppParams struct {
	Controller *panel.Controller
	Prefs      storage.PrefsStore
	Keys       *KeyMap // optional, uses default if nil
	Styles     *Styles // optional, uses default if nil
}

// NewApp creates a new App with the given parameters.
func NewApp(params AppParams) App {
	keys := DefaultKeyMap()
	if params.Keys != nil {
		keys = *params.Keys
	}
	styles := DefaultStyles()
	if params.Styles != nil {
		styles = *params.Styles
	}

	app := App{
		controller: params.Controller,
		prefs:      params.Prefs,
		keys:       keys,
		styles:     styles,
		search:     NewSearchState(),
		unlock:     NewUnlockState(),
		modal:      NewModalState(),
		password:   NewPasswordState(),
		viewMode:   storage.DefaultPrefs().ViewMode,
		theme:      storage.DefaultPrefs().Theme,
		width:      80,
		height:     24,
	}

	if params.Prefs != nil {
		if p, err := params.Prefs.ReadPrefs(); err == nil {
			app.viewMode = p.ViewMode
			app.theme = p.Theme
		}
	}

	app.refreshRows()
	return app
}

// refreshRows rebuilds the visible list from the controller: one header
// row per month bucket, bookmark rows underneath.
func (a *App) refreshRows() {
	a.rows = a.rows[:0]
	for _, group := range a.controller.Groups() {
		a.rows = append(a.rows, Row{Kind: RowHeader, Label: group.MonthYear})
		for i := range group.Bookmarks {
			b := group.Bookmarks[i]
			a.rows = append(a.rows, Row{Kind: RowBookmark, Bookmark: &b})
		}
	}
	a.clampCursor()
}

// clampCursor keeps the cursor on a bookmark row.
func (a *App) clampCursor() {
	if len(a.rows) == 0 {
		a.cursor = 0
		return
	}
	if a.cursor >= len(a.rows) {
		a.cursor = len(a.rows) - 1
	}
	// Never rest on a header; prefer the next bookmark, then the previous.
	for i := a.cursor; i < len(a.rows); i++ {
		if !a.rows[i].IsHeader() {
			a.cursor = i
			return
		}
	}
	for i := a.cursor; i >= 0; i-- {
		if !a.rows[i].IsHeader() {
			a.cursor = i
			return
		}
	}
	a.cursor = 0
}

func (a *App) moveDown() {
	for i := a.cursor + 1; i < len(a.rows); i++ {
		if !a.rows[i].IsHeader() {
			a.cursor = i
			return
		}
	}
}

func (a *App) moveUp() {
	for i := a.cursor - 1; i >= 0; i-- {
		if !a.rows[i].IsHeader() {
			a.cursor = i
			return
		}
	}
}

func (a *App) moveTop() {
	a.cursor = 0
	a.clampCursor()
}

func (a *App) moveBottom() {
	for i := len(a.rows) - 1; i >= 0; i-- {
		if !a.rows[i].IsHeader() {
			a.cursor = i
			return
		}
	}
}

// cursorBookmark returns the bookmark under the cursor, nil if the list
// is empty.
func (a *App) cursorBookmark() *model.Bookmark {
	if a.cursor < len(a.rows) && !a.rows[a.cursor].IsHeader() {
		return a.rows[a.cursor].Bookmark
	}
	return nil
}

// Cursor returns the current cursor position.
func (a App) Cursor() int {
	return a.cursor
}

// Rows returns the current list rows.
func (a App) Rows() []Row {
	return a.rows
}

// CurrentMode returns the active interaction mode.
func (a App) CurrentMode() Mode {
	return a.mode
}

// selectCategoryAt switches the active view by offset through the pill
// row, wrapping at the ends. Landing on the locked secret category opens
// the password prompt.
func (a *App) selectCategoryAt(offset int) {
	cats := a.controller.Categories()
	if len(cats) == 0 {
		return
	}
	active := a.controller.ActiveCategory()
	idx := 0
	for i, c := range cats {
		if c == active {
			idx = i
			break
		}
	}
	idx = (idx + offset + len(cats)) % len(cats)
	if err := a.controller.SelectCategory(cats[idx]); err != nil {
		// Landing on the locked secret pill opens the prompt; the view
		// itself has not moved.
		if errors.Is(err, panel.ErrSecretLocked) {
			a.unlock.Reset()
			a.unlock.Input.Focus()
			a.mode = ModeUnlock
		}
		return
	}
	a.controller.ClearSelection()
	a.cursor = 0
	a.refreshRows()
}

func (a *App) persistPrefs() {
	if a.prefs == nil {
		return
	}
	_ = a.prefs.WritePrefs(storage.Prefs{ViewMode: a.viewMode, Theme: a.theme})
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case RefreshMsg:
		a.refreshRows()
		return a, nil

	case StatusMsg:
		switch msg.Status {
		case pipeline.StatusSaved:
			a.status = "saved"
		case pipeline.StatusDuplicate:
			a.status = "already stashed"
		case pipeline.StatusError:
			a.status = "save failed"
		default:
			a.status = ""
		}
		return a, nil

	case tea.KeyMsg:
		switch a.mode {
		case ModeNormal:
			return a.updateNormal(msg)
		case ModeSearch:
			return a.updateSearch(msg)
		case ModeUnlock:
			return a.updateUnlock(msg)
		case ModeEditBookmark:
			return a.updateEditBookmark(msg)
		case ModeAddCategory, ModeRenameCategory:
			return a.updateCategoryForm(msg)
		case ModeConfirmDeleteCategory:
			return a.updateConfirmDeleteCategory(msg)
		case ModeConfirmDeleteBookmarks:
			return a.updateConfirmDeleteBookmarks(msg)
		case ModeMove:
			return a.updateMove(msg)
		case ModeChangePassword:
			return a.updateChangePassword(msg)
		case ModeHelp:
			switch msg.String() {
			case "?", "q", "esc":
				a.mode = ModeNormal
			}
			return a, nil
		}
	}

	return a, nil
}

func (a App) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle gg sequence
	if key.Matches(msg, a.keys.Top) {
		if a.lastKeyWasG {
			a.moveTop()
			a.lastKeyWasG = false
			return a, nil
		}
		a.lastKeyWasG = true
		return a, nil
	}
	a.lastKeyWasG = false

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Down):
		a.moveDown()

	case key.Matches(msg, a.keys.Up):
		a.moveUp()

	case key.Matches(msg, a.keys.Bottom):
		a.moveBottom()

	case key.Matches(msg, a.keys.NextCategory):
		a.selectCategoryAt(1)

	case key.Matches(msg, a.keys.PrevCategory):
		a.selectCategoryAt(-1)

	case key.Matches(msg, a.keys.Select):
		if b := a.cursorBookmark(); b != nil {
			a.controller.ToggleSelect(b.ID)
		}

	case key.Matches(msg, a.keys.Edit):
		if b := a.cursorBookmark(); b != nil {
			a.modal.Reset()
			a.modal.EditItemID = b.ID
			a.modal.TitleInput.SetValue(b.Title)
			a.modal.TitleInput.Focus()
			for i, c := range a.controller.Categories() {
				if c == b.Category {
					a.modal.CategoryIdx = i
					break
				}
			}
			a.mode = ModeEditBookmark
		}

	case key.Matches(msg, a.keys.Delete):
		a.confirm.Reset()
		if a.controller.SelectionCount() > 0 {
			for _, row := range a.rows {
				if !row.IsHeader() && a.controller.Selected(row.ID()) {
					a.confirm.BookmarkIDs = append(a.confirm.BookmarkIDs, row.ID())
				}
			}
			a.mode = ModeConfirmDeleteBookmarks
		} else if b := a.cursorBookmark(); b != nil {
			a.confirm.BookmarkIDs = []string{b.ID}
			a.mode = ModeConfirmDeleteBookmarks
		}

	case key.Matches(msg, a.keys.Move):
		if a.controller.SelectionCount() > 0 {
			a.modal.Reset()
			a.mode = ModeMove
		} else {
			a.status = "nothing selected"
		}

	case key.Matches(msg, a.keys.YankURL):
		if b := a.cursorBookmark(); b != nil {
			if err := clipboard.WriteAll(b.URL); err != nil {
				a.status = "clipboard unavailable"
			} else {
				a.status = "URL copied"
			}
		}

	case key.Matches(msg, a.keys.Search):
		a.search.Reset()
		a.search.Input.Focus()
		a.mode = ModeSearch

	case key.Matches(msg, a.keys.FilterMode):
		a.search.CycleMode()
		a.controller.SetFilterMode(a.search.Mode)
		a.refreshRows()

	case key.Matches(msg, a.keys.AddCategory):
		a.modal.Reset()
		a.modal.NameInput.Focus()
		a.mode = ModeAddCategory

	case key.Matches(msg, a.keys.RenameCategory):
		if a.controller.ActiveCategory() == model.CategoryInbox {
			a.status = "this category cannot be renamed"
			return a, nil
		}
		a.modal.Reset()
		a.modal.TargetName = a.controller.ActiveCategory()
		a.modal.NameInput.SetValue(a.modal.TargetName)
		a.modal.NameInput.Focus()
		a.mode = ModeRenameCategory

	case key.Matches(msg, a.keys.DeleteCategory):
		active := a.controller.ActiveCategory()
		if active == model.CategoryInbox || active == a.controller.SecretName() {
			a.status = "this category cannot be removed"
			return a, nil
		}
		a.confirm.Reset()
		a.confirm.Category = active
		a.mode = ModeConfirmDeleteCategory

	case key.Matches(msg, a.keys.ToggleView):
		if a.viewMode == "list" {
			a.viewMode = "grid"
		} else {
			a.viewMode = "list"
		}
		a.persistPrefs()

	case key.Matches(msg, a.keys.ToggleTheme):
		if a.theme == "light" {
			a.theme = "dark"
		} else {
			a.theme = "light"
		}
		a.persistPrefs()

	case key.Matches(msg, a.keys.Lock):
		a.controller.Guard().Lock()
		if a.controller.LockedView() {
			a.unlock.Reset()
			a.unlock.Input.Focus()
			a.mode = ModeUnlock
		}

	case key.Matches(msg, a.keys.ChangePassword):
		if !a.controller.Guard().Unlocked() {
			a.status = "unlock first"
			return a, nil
		}
		a.password.Reset()
		a.password.Input.Focus()
		a.mode = ModeChangePassword

	case key.Matches(msg, a.keys.Help):
		a.mode = ModeHelp
	}

	return a, nil
}

func (a App) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		// Leaving search restores the per-category view.
		a.search.Reset()
		a.controller.SetQuery("")
		a.mode = ModeNormal
		a.refreshRows()
		return a, nil

	case tea.KeyEnter:
		// Keep the query applied; the list stays filtered.
		a.mode = ModeNormal
		return a, nil

	case tea.KeyTab:
		a.search.CycleMode()
		a.controller.SetFilterMode(a.search.Mode)
		a.refreshRows()
		return a, nil
	}

	var cmd tea.Cmd
	a.search.Input, cmd = a.search.Input.Update(msg)
	a.controller.SetQuery(a.search.Input.Value())
	a.refreshRows()
	return a, cmd
}

func (a App) updateUnlock(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		a.unlock.Reset()
		// After a manual lock the active view is still the secret
		// category; backing out of the prompt falls back to the inbox.
		if a.controller.LockedView() {
			_ = a.controller.SelectCategory(model.CategoryInbox)
		}
		a.mode = ModeNormal
		a.refreshRows()
		return a, nil

	case tea.KeyEnter:
		if err := a.controller.Unlock(a.unlock.Input.Value()); err != nil {
			// Wrong password: keep the typed input so it can be corrected.
			a.unlock.Error = "incorrect password"
			return a, nil
		}
		a.unlock.Reset()
		a.mode = ModeNormal
		a.cursor = 0
		a.refreshRows()
		return a, nil
	}

	var cmd tea.Cmd
	a.unlock.Input, cmd = a.unlock.Input.Update(msg)
	return a, cmd
}

func (a App) updateEditBookmark(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cats := a.controller.Categories()

	switch msg.Type {
	case tea.KeyEsc:
		a.modal.Reset()
		a.mode = ModeNormal
		return a, nil

	case tea.KeyUp:
		if a.modal.CategoryIdx > 0 {
			a.modal.CategoryIdx--
		}
		return a, nil

	case tea.KeyDown:
		if a.modal.CategoryIdx < len(cats)-1 {
			a.modal.CategoryIdx++
		}
		return a, nil

	case tea.KeyEnter:
		if len(cats) == 0 {
			return a, nil
		}
		err := a.controller.EditBookmark(
			a.modal.EditItemID,
			a.modal.TitleInput.Value(),
			cats[a.modal.CategoryIdx],
		)
		if err != nil {
			a.modal.Error = err.Error()
			return a, nil
		}
		a.modal.Reset()
		a.mode = ModeNormal
		a.refreshRows()
		return a, nil
	}

	var cmd tea.Cmd
	a.modal.TitleInput, cmd = a.modal.TitleInput.Update(msg)
	return a, cmd
}

func (a App) hasCategory(name string) bool {
	for _, cat := range a.controller.Categories() {
		if cat == name {
			return true
		}
	}
	return false
}

func (a App) updateCategoryForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		a.modal.Reset()
		a.mode = ModeNormal
		return a, nil

	case tea.KeyEnter:
		name := a.modal.NameInput.Value()
		var err error
		if a.mode == ModeAddCategory {
			// The controller treats a duplicate add as a no-op, so
			// the form checks first and keeps the modal open with
			// the collision instead of closing silently.
			if a.hasCategory(strings.TrimSpace(name)) {
				err = panel.ErrNameExists
			} else {
				err = a.controller.AddCategory(name)
			}
		} else {
			err = a.controller.RenameCategory(a.modal.TargetName, name)
		}
		if err != nil {
			a.modal.Error = err.Error()
			return a, nil
		}
		a.modal.Reset()
		a.mode = ModeNormal
		a.cursor = 0
		a.refreshRows()
		return a, nil
	}

	var cmd tea.Cmd
	a.modal.NameInput, cmd = a.modal.NameInput.Update(msg)
	return a, cmd
}

func (a App) updateConfirmDeleteCategory(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "m":
		a.confirm.MoveToInbox = !a.confirm.MoveToInbox

	case "enter", "y":
		if err := a.controller.DeleteCategory(a.confirm.Category, a.confirm.deleteMode()); err != nil {
			a.status = err.Error()
		}
		a.confirm.Reset()
		a.mode = ModeNormal
		a.cursor = 0
		a.refreshRows()

	case "esc", "n", "q":
		a.confirm.Reset()
		a.mode = ModeNormal
	}
	return a, nil
}

func (a App) updateConfirmDeleteBookmarks(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "y":
		if a.controller.SelectionCount() > 0 {
			if err := a.controller.BulkDelete(); err != nil {
				a.status = err.Error()
			}
		} else if len(a.confirm.BookmarkIDs) == 1 {
			if err := a.controller.DeleteBookmark(a.confirm.BookmarkIDs[0]); err != nil {
				a.status = err.Error()
			}
		}
		a.confirm.Reset()
		a.mode = ModeNormal
		a.refreshRows()

	case "esc", "n", "q":
		a.confirm.Reset()
		a.mode = ModeNormal
	}
	return a, nil
}

func (a App) updateMove(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cats := a.controller.Categories()

	switch msg.String() {
	case "esc", "q":
		a.modal.Reset()
		a.mode = ModeNormal
		return a, nil

	case "k", "up":
		if a.modal.CategoryIdx > 0 {
			a.modal.CategoryIdx--
		}
		return a, nil

	case "j", "down":
		if a.modal.CategoryIdx < len(cats)-1 {
			a.modal.CategoryIdx++
		}
		return a, nil

	case "enter":
		if len(cats) == 0 {
			return a, nil
		}
		if err := a.controller.BulkMove(cats[a.modal.CategoryIdx]); err != nil {
			if errors.Is(err, panel.ErrSecretLocked) {
				a.modal.Error = "unlock the secret category first"
			} else {
				a.modal.Error = err.Error()
			}
			return a, nil
		}
		a.modal.Reset()
		a.mode = ModeNormal
		a.cursor = 0
		a.refreshRows()
		return a, nil
	}
	return a, nil
}

func (a App) updateChangePassword(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		a.password.Reset()
		a.mode = ModeNormal
		return a, nil

	case tea.KeyEnter:
		if err := a.controller.ChangePassword(a.password.Input.Value()); err != nil {
			if errors.Is(err, panel.ErrPasswordTooShort) {
				a.password.Error = "password must be at least 4 characters"
			} else {
				a.password.Error = err.Error()
			}
			return a, nil
		}
		a.password.Reset()
		a.mode = ModeNormal
		a.status = "password changed"
		return a, nil
	}

	var cmd tea.Cmd
	a.password.Input, cmd = a.password.Input.Update(msg)
	return a, cmd
}

// View implements tea.Model.
func (a App) View() string {
	return a.renderView()
}

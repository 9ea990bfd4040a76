package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/visualstash/stash/internal/model"
)

// renderView composes the full frame: header, category pills, the
// month-grouped list, and the hint bar. Modal modes replace the frame.
func (a App) renderView() string {
	if a.mode != ModeNormal && a.mode != ModeSearch {
		return a.renderModal()
	}

	header := a.renderHeader()
	pills := a.renderPills()
	searchBar := a.renderSearchBar()
	list := a.renderList()
	helpBar := a.renderHelpBar()

	sections := []string{header, pills}
	if searchBar != "" {
		sections = append(sections, searchBar)
	}
	sections = append(sections, list, helpBar)

	content := a.styles.App.Render(
		lipgloss.JoinVertical(lipgloss.Left, sections...),
	)

	// Use Place to ensure exact terminal dimensions and prevent overflow
	return lipgloss.Place(a.width, a.height, lipgloss.Left, lipgloss.Top, content)
}

// renderHeader renders the app title plus the transient status badge.
func (a App) renderHeader() string {
	title := a.styles.Title.Render("stash")
	if a.status == "" {
		return title
	}
	return title + "  " + a.styles.Badge.Render(a.status)
}

// renderPills renders one pill per category in stored order. The secret
// category carries a lock marker while the view is gated.
func (a App) renderPills() string {
	active := a.controller.ActiveCategory()
	secret := a.controller.SecretName()
	unlocked := a.controller.Guard().Unlocked()

	parts := make([]string, 0, len(a.controller.Categories()))
	for _, name := range a.controller.Categories() {
		label := name
		if name == secret && !unlocked {
			label = name + " ⚿"
		}
		switch {
		case name == active:
			parts = append(parts, a.styles.PillActive.Render(label))
		case name == secret && !unlocked:
			parts = append(parts, a.styles.PillLocked.Render(label))
		default:
			parts = append(parts, a.styles.Pill.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// renderSearchBar renders the filter input with its scope label. Hidden
// when no search is active.
func (a App) renderSearchBar() string {
	if a.mode != ModeSearch && a.controller.Query() == "" {
		return ""
	}
	scope := "[" + a.search.Mode.String() + "]"
	return "/" + a.search.Input.View() + " " + a.styles.Help.Render(scope)
}

// listHeight returns the row budget for the list viewport.
func (a App) listHeight() int {
	// header + pills + hint bar + app padding
	reserved := 6
	if a.mode == ModeSearch || a.controller.Query() != "" {
		reserved++
	}
	h := a.height - reserved
	if h < 3 {
		h = 3
	}
	return h
}

// viewportOffset keeps the cursor inside the visible window.
func viewportOffset(cursor, total, visible int) int {
	if total <= visible {
		return 0
	}
	offset := cursor - visible/2
	if offset < 0 {
		offset = 0
	}
	if offset > total-visible {
		offset = total - visible
	}
	return offset
}

// renderList renders the month-grouped bookmark rows.
func (a App) renderList() string {
	if len(a.rows) == 0 {
		if a.controller.Query() != "" {
			return a.styles.Empty.Render("(no matches)")
		}
		return a.styles.Empty.Render("(no bookmarks yet)")
	}

	visible := a.listHeight()
	offset := viewportOffset(a.cursor, len(a.rows), visible)

	var content strings.Builder
	for i, row := range a.rows {
		if i < offset {
			continue
		}
		if i >= offset+visible {
			break
		}
		if row.IsHeader() {
			content.WriteString(a.styles.GroupHeader.Render(row.Label) + "\n")
			continue
		}
		content.WriteString(a.renderBookmarkRow(row, i == a.cursor) + "\n")
	}
	return strings.TrimRight(content.String(), "\n")
}

// renderBookmarkRow renders a single bookmark line with cursor and
// selection markers.
func (a App) renderBookmarkRow(row Row, atCursor bool) string {
	b := row.Bookmark

	marker := "  "
	if a.controller.Selected(b.ID) {
		marker = a.styles.ItemMarked.Render("● ")
	}
	cursor := "  "
	if atCursor {
		cursor = "▸ "
	}

	title := b.Title
	maxTitle := a.width - 30
	if maxTitle < 20 {
		maxTitle = 20
	}
	if len(title) > maxTitle {
		title = title[:maxTitle-1] + "…"
	}

	line := cursor + marker + title
	if a.viewMode == "list" {
		line += "  " + a.styles.URL.Render(b.Hostname)
		line += "  " + a.styles.Date.Render(formatDay(b.CreatedAt))
	}

	if atCursor {
		return a.styles.ItemSelected.Render(line)
	}
	return a.styles.Item.Render(line)
}

// formatDay renders a millisecond timestamp as a short date.
func formatDay(millis int64) string {
	return time.UnixMilli(millis).Format("Jan 02")
}

// renderHelpBar renders the contextual hints and the selection count.
func (a App) renderHelpBar() string {
	bar := a.renderHintBar(a.hintsFor(a.mode))
	if n := a.controller.SelectionCount(); n > 0 {
		bar = a.styles.Badge.Render(strconv.Itoa(n)+" marked") + "  " + bar
	}
	return a.styles.Help.Render(bar)
}

// renderModal renders the current modal dialog.
func (a App) renderModal() string {
	var title, content strings.Builder

	switch a.mode {
	case ModeUnlock:
		title.WriteString(a.controller.SecretName() + "\n\n")
		content.WriteString("Password:\n")
		content.WriteString(a.unlock.Input.View())
		if a.unlock.Error != "" {
			content.WriteString("\n\n" + a.styles.Error.Render(a.unlock.Error))
		}

	case ModeEditBookmark:
		title.WriteString("Edit Bookmark\n\n")
		if b := a.controller.Record().BookmarkByID(a.modal.EditItemID); b != nil {
			content.WriteString(a.styles.URL.Render(b.URL) + "\n\n")
		}
		content.WriteString("Title:\n")
		content.WriteString(a.modal.TitleInput.View())
		content.WriteString("\n\nCategory:\n")
		content.WriteString(a.renderCategoryPicker())
		if a.modal.Error != "" {
			content.WriteString("\n\n" + a.styles.Error.Render(a.modal.Error))
		}

	case ModeAddCategory:
		title.WriteString("Add Category\n\n")
		content.WriteString("Name:\n")
		content.WriteString(a.modal.NameInput.View())
		if a.modal.Error != "" {
			content.WriteString("\n\n" + a.styles.Error.Render(a.modal.Error))
		}

	case ModeRenameCategory:
		title.WriteString("Rename " + a.modal.TargetName + "\n\n")
		content.WriteString("Name:\n")
		content.WriteString(a.modal.NameInput.View())
		if a.modal.Error != "" {
			content.WriteString("\n\n" + a.styles.Error.Render(a.modal.Error))
		}

	case ModeConfirmDeleteCategory:
		title.WriteString("Delete " + a.confirm.Category + "?\n\n")
		count := len(a.controller.Record().BookmarksInCategory(a.confirm.Category))
		content.WriteString(fmt.Sprintf("%d bookmark(s) inside.\n\n", count))
		if a.confirm.MoveToInbox {
			content.WriteString("▸ Move them to " + model.CategoryInbox + "\n")
			content.WriteString("  Delete them too\n")
		} else {
			content.WriteString("  Move them to " + model.CategoryInbox + "\n")
			content.WriteString("▸ Delete them too\n")
		}
		content.WriteString("\n")
		content.WriteString(a.renderHintsInline([]Hint{
			{Key: "Tab", Desc: "toggle"},
			{Key: "Enter", Desc: "confirm"},
			{Key: "Esc", Desc: "cancel"},
		}))

	case ModeConfirmDeleteBookmarks:
		count := len(a.confirm.BookmarkIDs)
		title.WriteString("Delete " + strconv.Itoa(count) + " bookmark(s)?\n\n")
		content.WriteString(a.styles.Help.Render("This action cannot be undone.") + "\n\n")
		content.WriteString(a.renderHintsInline([]Hint{
			{Key: "Enter", Desc: "confirm"},
			{Key: "Esc", Desc: "cancel"},
		}))

	case ModeMove:
		count := a.controller.SelectionCount()
		title.WriteString("Move " + strconv.Itoa(count) + " bookmark(s)\n\n")
		content.WriteString("Target:\n")
		content.WriteString(a.renderCategoryPicker())
		if a.modal.Error != "" {
			content.WriteString("\n\n" + a.styles.Error.Render(a.modal.Error))
		}

	case ModeChangePassword:
		title.WriteString("Change Password\n\n")
		content.WriteString(a.password.Input.View())
		if a.password.Error != "" {
			content.WriteString("\n\n" + a.styles.Error.Render(a.password.Error))
		}

	case ModeHelp:
		return a.renderHelpOverlay()
	}

	modal := a.styles.ModalTitle.Render(title.String()) + content.String()
	box := a.styles.ModalBox.Render(modal)
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, box)
}

// renderCategoryPicker renders the category list used by the edit and
// move modals, with the current pick marked.
func (a App) renderCategoryPicker() string {
	var content strings.Builder
	for i, name := range a.controller.Categories() {
		if i == a.modal.CategoryIdx {
			content.WriteString(a.styles.ItemSelected.Render("▸ " + name))
		} else {
			content.WriteString(a.styles.Help.Render("  " + name))
		}
		content.WriteString("\n")
	}
	return strings.TrimRight(content.String(), "\n")
}

// renderHelpOverlay renders the full keybinding reference.
func (a App) renderHelpOverlay() string {
	rows := []Hint{
		{Key: "j/k", Desc: "move down/up"},
		{Key: "gg/G", Desc: "jump to top/bottom"},
		{Key: "tab/shift+tab", Desc: "next/previous category"},
		{Key: "space", Desc: "mark bookmark"},
		{Key: "e", Desc: "edit bookmark"},
		{Key: "d", Desc: "delete marked (or current)"},
		{Key: "m", Desc: "move marked to category"},
		{Key: "y", Desc: "copy URL"},
		{Key: "/", Desc: "search"},
		{Key: "f", Desc: "cycle search scope"},
		{Key: "A", Desc: "add category"},
		{Key: "R", Desc: "rename category"},
		{Key: "D", Desc: "delete category"},
		{Key: "v", Desc: "toggle list/grid"},
		{Key: "t", Desc: "toggle theme"},
		{Key: "L", Desc: "lock secret category"},
		{Key: "P", Desc: "change password"},
		{Key: "q", Desc: "quit"},
	}

	var content strings.Builder
	content.WriteString(a.styles.ModalTitle.Render("Keybindings") + "\n\n")
	for _, h := range rows {
		content.WriteString(fmt.Sprintf("%s  %s\n",
			a.styles.HintKey.Render(fmt.Sprintf("%-14s", h.Key)),
			a.styles.HintDesc.Render(h.Desc)))
	}

	box := a.styles.ModalBox.Render(strings.TrimRight(content.String(), "\n"))
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, box)
}

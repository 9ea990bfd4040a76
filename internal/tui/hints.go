package tui

import "strings"

// Hint is a single "key:description" pair shown in the help bar.
type Hint struct {
	Key  string
	Desc string
}

// hintsFor returns the help-bar entries for a mode, in display order.
func (a App) hintsFor(mode Mode) []Hint {
	switch mode {
	case ModeNormal:
		hints := []Hint{
			{"j/k", "move"},
			{"tab", "category"},
			{"/", "search"},
			{"space", "mark"},
			{"e", "edit"},
			{"d", "del"},
		}
		if a.controller.SelectionCount() > 0 {
			hints = append(hints, Hint{"m", "move"})
		}
		return append(hints, Hint{"?", "help"}, Hint{"q", "quit"})

	case ModeSearch:
		return []Hint{
			{"type", "filter"},
			{"Tab", "scope"},
			{"Enter", "apply"},
			{"Esc", "clear"},
		}

	case ModeUnlock:
		return []Hint{{"Enter", "unlock"}, {"Esc", "back"}}

	case ModeEditBookmark:
		return []Hint{
			{"↑/↓", "category"},
			{"Enter", "save"},
			{"Esc", "cancel"},
		}

	case ModeAddCategory, ModeRenameCategory, ModeChangePassword:
		return []Hint{{"Enter", "save"}, {"Esc", "cancel"}}

	case ModeConfirmDeleteCategory:
		return []Hint{
			{"Tab", "toggle"},
			{"y/Enter", "delete"},
			{"n/Esc", "cancel"},
		}

	case ModeConfirmDeleteBookmarks:
		return []Hint{{"y/Enter", "delete"}, {"n/Esc", "cancel"}}

	case ModeMove:
		return []Hint{
			{"j/k", "target"},
			{"Enter", "move"},
			{"Esc", "cancel"},
		}

	case ModeHelp:
		return []Hint{{"?/q/Esc", "close"}}
	}
	return nil
}

// renderHintBar joins hints as "key:desc key:desc" for the bottom bar.
func (a App) renderHintBar(hints []Hint) string {
	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = a.styles.HintKey.Render(h.Key) + ":" + a.styles.HintDesc.Render(h.Desc)
	}
	return strings.Join(parts, " ")
}

// renderHintsInline joins hints as "key desc  key desc" for modal footers.
func (a App) renderHintsInline(hints []Hint) string {
	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = a.styles.HintKey.Render(h.Key) + " " + a.styles.HintDesc.Render(h.Desc)
	}
	return strings.Join(parts, "  ")
}

// Package picker is the minimal TUI for choosing one result from a quick
// search, for opening or copying without launching the full surface.
package picker

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/visualstash/stash/internal/model"
	"github.com/visualstash/stash/internal/search"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#4A7070", Dark: "#5F8787"}).
			Bold(true).
			MarginBottom(1)

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#4A7070", Dark: "#5F8787"}).
			Bold(true)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#2A2A2A", Dark: "#D0D0D0"})

	matchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#4A7070", Dark: "#5F8787"}).
			Underline(true)

	categoryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#6A6A6A", Dark: "#8A8A8A"})

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#8A8A8A", Dark: "#6A6A6A"}).
			Italic(true)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#8A8A8A", Dark: "#6A6A6A"})
)

// Action is what the user asked to do with the picked bookmark.
type Action int

const (
	ActionNone Action = iota // cancelled, nothing picked
	ActionOpen               // open in the browser
	ActionYank               // copy the URL
)

// Picker is a simple TUI for selecting from search results.
type Picker struct {
	results   []search.Result
	query     string
	cursor    int
	action    Action
	cancelled bool
	width     int
	height    int
}

// New creates a new Picker with the given search results.
func New(results []search.Result, query string) Picker {
	return Picker{
		results: results,
		query:   query,
		width:   80,
		height:  24,
	}
}

// Init implements tea.Model.
func (p Picker) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width = msg.Width
		p.height = msg.Height
		return p, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "ctrl+c", "q":
			p.cancelled = true
			return p, tea.Quit

		case "enter":
			p.action = ActionOpen
			return p, tea.Quit

		case "y":
			p.action = ActionYank
			return p, tea.Quit

		case "j", "down":
			if p.cursor < len(p.results)-1 {
				p.cursor++
			}

		case "k", "up":
			if p.cursor > 0 {
				p.cursor--
			}
		}
	}

	return p, nil
}

// View implements tea.Model.
func (p Picker) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("Search: %s (%d results)", p.query, len(p.results))))
	b.WriteString("\n\n")

	for i, result := range p.results {
		cursor := "  "
		if i == p.cursor {
			cursor = cursorStyle.Render("> ")
		}

		title := highlightMatches(result.Bookmark.Title, result.MatchedIndexes)
		category := categoryStyle.Render("[" + result.Bookmark.Category + "]")
		saved := metaStyle.Render(time.UnixMilli(result.Bookmark.CreatedAt).Format("Jan 2006"))

		b.WriteString(fmt.Sprintf("%s%s %s\n", cursor, title, category))
		b.WriteString(fmt.Sprintf("   %s  %s\n", metaStyle.Render(result.Bookmark.Hostname), saved))
	}

	b.WriteString("\n")
	b.WriteString(footerStyle.Render("j/k: move  Enter: open  y: copy URL  q/Esc: cancel"))

	return b.String()
}

// highlightMatches underlines the title runes the fuzzy matcher hit.
func highlightMatches(title string, matched []int) string {
	if len(matched) == 0 {
		return titleStyle.Render(title)
	}
	// Matched indexes are byte offsets into the title.
	hit := make(map[int]bool, len(matched))
	for _, idx := range matched {
		hit[idx] = true
	}

	var b strings.Builder
	for i, r := range title {
		if hit[i] {
			b.WriteString(matchStyle.Render(string(r)))
		} else {
			b.WriteString(titleStyle.Render(string(r)))
		}
	}
	return b.String()
}

// SelectedBookmark returns the picked bookmark, or nil if cancelled.
func (p Picker) SelectedBookmark() *model.Bookmark {
	if p.cancelled || p.action == ActionNone {
		return nil
	}
	if p.cursor < len(p.results) {
		return p.results[p.cursor].Bookmark
	}
	return nil
}

// SelectedAction returns what to do with the picked bookmark.
func (p Picker) SelectedAction() Action {
	if p.cancelled {
		return ActionNone
	}
	return p.action
}

// Cancelled returns true if the user cancelled the selection.
func (p Picker) Cancelled() bool {
	return p.cancelled
}

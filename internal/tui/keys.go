package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the application.
type KeyMap struct {
	Up             key.Binding
	Down           key.Binding
	Top            key.Binding
	Bottom         key.Binding
	NextCategory   key.Binding
	PrevCategory   key.Binding
	Select         key.Binding
	Edit           key.Binding
	Delete         key.Binding
	Move           key.Binding
	YankURL        key.Binding
	Search         key.Binding
	FilterMode     key.Binding
	AddCategory    key.Binding
	RenameCategory key.Binding
	DeleteCategory key.Binding
	ToggleView     key.Binding
	ToggleTheme    key.Binding
	Lock           key.Binding
	ChangePassword key.Binding
	Help           key.Binding
	Quit           key.Binding
}

// DefaultKeyMap returns the default vim-style key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("gg", "go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G"),
			key.WithHelp("G", "go to bottom"),
		),
		NextCategory: key.NewBinding(
			key.WithKeys("tab", "l"),
			key.WithHelp("tab/l", "next category"),
		),
		PrevCategory: key.NewBinding(
			key.WithKeys("shift+tab", "h"),
			key.WithHelp("s-tab/h", "prev category"),
		),
		Select: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "select"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Move: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "move selected"),
		),
		YankURL: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "yank URL"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		FilterMode: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "cycle filter field"),
		),
		AddCategory: key.NewBinding(
			key.WithKeys("A"),
			key.WithHelp("A", "add category"),
		),
		RenameCategory: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "rename category"),
		),
		DeleteCategory: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "delete category"),
		),
		ToggleView: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "list/grid"),
		),
		ToggleTheme: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "theme"),
		),
		Lock: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "lock secret"),
		),
		ChangePassword: key.NewBinding(
			key.WithKeys("P"),
			key.WithHelp("P", "change password"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

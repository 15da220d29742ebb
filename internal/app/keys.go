package app

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keyboard bindings outside the form inputs.
type KeyMap struct {
	Start  key.Binding
	Report key.Binding
	Save   key.Binding
	Debug  key.Binding
	Help   key.Binding
	Up     key.Binding
	Down   key.Binding
	Escape key.Binding
	Quit   key.Binding
	Signup key.Binding
	Login  key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Start: key.NewBinding(
			key.WithKeys("s", " "),
			key.WithHelp("s", "start monitoring"),
		),
		Report: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "view report"),
		),
		Save: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "download report"),
		),
		Debug: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "event log"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more keys"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "scroll down"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close overlay"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Signup: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("ctrl+n", "create account"),
		),
		Login: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "sign in"),
		),
	}
}

// ShortHelp implements help.KeyMap for the monitor page.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.Report, k.Save, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Start, k.Report, k.Save},
		{k.Debug, k.Up, k.Down, k.Escape},
		{k.Signup, k.Login, k.Help, k.Quit},
	}
}

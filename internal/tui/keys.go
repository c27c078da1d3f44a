package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Approve key.Binding
	Reject  key.Binding
	Skip    key.Binding
	Back    key.Binding
	Quit    key.Binding
}

var keys = keyMap{
	Approve: key.NewBinding(
		key.WithKeys("a", "y"),
		key.WithHelp("a", "approve"),
	),
	Reject: key.NewBinding(
		key.WithKeys("r", "n"),
		key.WithHelp("r", "reject"),
	),
	Skip: key.NewBinding(
		key.WithKeys("s", "enter"),
		key.WithHelp("s", "skip"),
	),
	Back: key.NewBinding(
		key.WithKeys("left", "b"),
		key.WithHelp("b", "back"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c", "esc"),
		key.WithHelp("q", "done"),
	),
}

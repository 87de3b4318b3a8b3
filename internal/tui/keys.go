package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds all key bindings for the TUI. Every action uses a ctrl chord
// so plain keys can go to the focused input.
type keyMap struct {
	Quit       key.Binding
	ToggleView key.Binding
	Sync       key.Binding
	Predict    key.Binding
	Repair     key.Binding
	Generate   key.Binding
	Clear      key.Binding
	Dismiss    key.Binding
	FocusNext  key.Binding
	Help       key.Binding
}

// keys is the global key map.
var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
	ToggleView: key.NewBinding(
		key.WithKeys("ctrl+t"),
		key.WithHelp("ctrl+t", "single/fleet view"),
	),
	Sync: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("ctrl+s", "sync fleet"),
	),
	Predict: key.NewBinding(
		key.WithKeys("ctrl+p"),
		key.WithHelp("ctrl+p", "predict"),
	),
	Repair: key.NewBinding(
		key.WithKeys("ctrl+r"),
		key.WithHelp("ctrl+r", "repair shape"),
	),
	Generate: key.NewBinding(
		key.WithKeys("ctrl+g"),
		key.WithHelp("ctrl+g", "generate sample"),
	),
	Clear: key.NewBinding(
		key.WithKeys("ctrl+l"),
		key.WithHelp("ctrl+l", "clear telemetry"),
	),
	Dismiss: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "dismiss"),
	),
	FocusNext: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next field"),
	),
	Help: key.NewBinding(
		key.WithKeys("f1"),
		key.WithHelp("f1", "toggle help"),
	),
}

// helpText is the full help string displayed in the footer when help is toggled on.
const helpText = "ctrl+t: view  ctrl+s: sync  ctrl+p: predict  ctrl+r: repair  ctrl+g: sample  ctrl+l: clear  tab: field  esc: dismiss  f1: help  ctrl+c: quit"

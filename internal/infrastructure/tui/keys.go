package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Toggle   key.Binding
	Strict   key.Binding
	Balanced key.Binding
	Minimal  key.Binding
	All      key.Binding
	Preview  key.Binding
	Help     key.Binding
	Apply    key.Binding
	Back     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Toggle:   key.NewBinding(key.WithKeys(" ", "x", "1", "2", "3", "4", "5", "6", "7", "8"), key.WithHelp("space/1-8", "toggle")),
		Strict:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "strict")),
		Balanced: key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "balanced")),
		Minimal:  key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "minimal")),
		All:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "all on/off")),
		Preview:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "preview")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Apply:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply")),
		Back:     key.NewBinding(key.WithKeys("esc", "q"), key.WithHelp("esc", "back")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Strict, k.Balanced, k.Minimal, k.All, k.Preview, k.Help, k.Apply, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Toggle, k.All},
		{k.Strict, k.Balanced, k.Minimal},
		{k.Preview, k.Help, k.Apply, k.Quit},
	}
}

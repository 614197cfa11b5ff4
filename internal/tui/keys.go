package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Add    key.Binding
	Toggle key.Binding
	Delete key.Binding
	Edit   key.Binding
	Reload key.Binding
	Quit   key.Binding

	Submit key.Binding
	Cancel key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Add:    key.NewBinding(key.WithKeys("a", "tab"), key.WithHelp("a", "add")),
		Toggle: key.NewBinding(key.WithKeys(" ", "t"), key.WithHelp("space", "done/not done")),
		Delete: key.NewBinding(key.WithKeys("d", "x"), key.WithHelp("d", "delete")),
		Edit:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),

		Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

func (k keyMap) listHelp() []key.Binding {
	return []key.Binding{k.Add, k.Toggle, k.Delete, k.Edit, k.Reload}
}

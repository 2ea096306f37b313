package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Next        key.Binding
	Prev        key.Binding
	Left        key.Binding
	Right       key.Binding
	Toggle      key.Binding
	Hashtags    key.Binding
	Edit        key.Binding
	Submit      key.Binding
	Copy        key.Binding
	Save        key.Binding
	Delete      key.Binding
	Back        key.Binding
	FormPane    key.Binding
	HistoryPane key.Binding
	SavedPane   key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Next:        key.NewBinding(key.WithKeys("down", "j", "tab"), key.WithHelp("↓/tab", "next")),
		Prev:        key.NewBinding(key.WithKeys("up", "k", "shift+tab"), key.WithHelp("↑/shift+tab", "previous")),
		Left:        key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "previous option")),
		Right:       key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "next option")),
		Toggle:      key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "toggle hashtags")),
		Hashtags:    key.NewBinding(key.WithKeys("#"), key.WithHelp("#", "toggle hashtags")),
		Edit:        key.NewBinding(key.WithKeys("e", "i"), key.WithHelp("e", "edit description")),
		Submit:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "generate")),
		Copy:        key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy")),
		Save:        key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save")),
		Delete:      key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
		Back:        key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		FormPane:    key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "form")),
		HistoryPane: key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "history")),
		SavedPane:   key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "saved")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:        key.NewBinding(key.WithKeys("q"), key.WithHelp("q/ctrl+c", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Copy, k.Save, k.HistoryPane, k.SavedPane, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Left, k.Right},
		{k.Toggle, k.Edit, k.Submit, k.Back},
		{k.Copy, k.Save, k.Delete},
		{k.FormPane, k.HistoryPane, k.SavedPane, k.Help, k.Quit},
	}
}

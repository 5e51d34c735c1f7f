// Package keymap holds the key bindings shared by the TUI views.
package keymap

import (
	"slices"

	"github.com/charmbracelet/bubbles/key"
)

// KeyMap is every binding a view may react to. Several share a key
// because only one view is active at a time.
type KeyMap struct {
	Quit   key.Binding
	Help   key.Binding
	Back   key.Binding
	Submit key.Binding
	Up     key.Binding
	Down   key.Binding
	Select key.Binding

	// NewSearch clears the results and focuses the query box.
	NewSearch key.Binding
	// NewConversation drops chat history and the conversation id.
	NewConversation key.Binding

	Actions key.Binding
	Delete  key.Binding
	Open    key.Binding
	Reload  key.Binding

	// Filter narrows the documents table by filename.
	Filter key.Binding
	// Sort cycles the documents table order.
	Sort key.Binding
}

func bind(help, desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(help, desc))
}

// DefaultKeyMap returns the stock bindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit:            bind("q", "quit", "q", "ctrl+c"),
		Help:            bind("?", "help", "?"),
		Back:            bind("esc", "back", "esc"),
		Submit:          bind("enter", "send", "enter"),
		Up:              bind("↑/k", "up", "up", "k"),
		Down:            bind("↓/j", "down", "down", "j"),
		Select:          bind("enter", "select", "enter"),
		NewSearch:       bind("n", "new search", "n"),
		NewConversation: bind("ctrl+n", "new conversation", "ctrl+n"),
		Actions:         bind("enter", "actions", "enter"),
		Delete:          bind("d", "delete", "d"),
		Open:            bind("o", "open", "o"),
		Reload:          bind("r", "reload", "r"),
		Filter:          bind("/", "filter", "/"),
		Sort:            bind("s", "sort", "s"),
	}
}

// ShortHelp is the status bar default.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Back, k.Help}
}

// ResultsHelp is shown while search results are listed.
func (k *KeyMap) ResultsHelp() []key.Binding {
	return []key.Binding{k.NewSearch, k.Up, k.Actions, k.Back}
}

// ChatHelp is shown in the chat view.
func (k *KeyMap) ChatHelp() []key.Binding {
	return []key.Binding{k.Submit, k.NewConversation, k.Back}
}

// DocumentsHelp is shown in the documents table.
func (k *KeyMap) DocumentsHelp() []key.Binding {
	return []key.Binding{k.Actions, k.Filter, k.Sort, k.Open, k.Delete, k.Reload, k.Back}
}

// FullHelp groups every binding for the help screen.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select},
		{k.Submit, k.NewConversation, k.NewSearch},
		{k.Filter, k.Sort, k.Open, k.Delete, k.Reload},
		{k.Back, k.Help, k.Quit},
	}
}

// Matches reports whether keyStr is one of the binding's keys.
func Matches(keyStr string, binding key.Binding) bool {
	return slices.Contains(binding.Keys(), keyStr)
}

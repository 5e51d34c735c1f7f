package keymap

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()

	require.NotNil(t, km)
}

func TestDefaultKeyMap_Bindings(t *testing.T) {
	km := DefaultKeyMap()

	tests := []struct {
		name    string
		binding key.Binding
		keys    []string
	}{
		{"quit", km.Quit, []string{"q", "ctrl+c"}},
		{"help", km.Help, []string{"?"}},
		{"back", km.Back, []string{"esc"}},
		{"submit", km.Submit, []string{"enter"}},
		{"up", km.Up, []string{"up", "k"}},
		{"down", km.Down, []string{"down", "j"}},
		{"select", km.Select, []string{"enter"}},
		{"new search", km.NewSearch, []string{"n"}},
		{"new conversation", km.NewConversation, []string{"ctrl+n"}},
		{"delete", km.Delete, []string{"d"}},
		{"open", km.Open, []string{"o"}},
		{"reload", km.Reload, []string{"r"}},
		{"filter", km.Filter, []string{"/"}},
		{"sort", km.Sort, []string{"s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range tt.keys {
				assert.Contains(t, tt.binding.Keys(), k)
			}
			assert.NotEmpty(t, tt.binding.Help().Desc)
		})
	}
}

func TestShortHelp(t *testing.T) {
	km := DefaultKeyMap()

	bindings := km.ShortHelp()

	assert.Len(t, bindings, 2)
}

func TestChatHelp(t *testing.T) {
	km := DefaultKeyMap()

	bindings := km.ChatHelp()

	require.Len(t, bindings, 3)
	assert.Equal(t, "ctrl+n", bindings[1].Help().Key)
}

func TestDocumentsHelp(t *testing.T) {
	km := DefaultKeyMap()

	bindings := km.DocumentsHelp()

	require.Len(t, bindings, 7)
	assert.Equal(t, "/", bindings[1].Help().Key)
}

func TestFullHelp(t *testing.T) {
	km := DefaultKeyMap()

	groups := km.FullHelp()

	assert.Len(t, groups, 4)
	for _, g := range groups {
		assert.NotEmpty(t, g)
	}
}

func TestMatches(t *testing.T) {
	km := DefaultKeyMap()

	assert.True(t, Matches("q", km.Quit))
	assert.True(t, Matches("ctrl+c", km.Quit))
	assert.True(t, Matches("ctrl+n", km.NewConversation))
	assert.False(t, Matches("x", km.Quit))
	assert.False(t, Matches("", km.Delete))
}

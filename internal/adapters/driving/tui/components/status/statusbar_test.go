package status

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/planroom/internal/adapters/driving/tui/keymap"
)

func TestNewBar(t *testing.T) {
	bar := NewBar(nil, nil)

	require.NotNil(t, bar)
	assert.NotNil(t, bar.styles)
	assert.NotNil(t, bar.keymap)
	assert.Equal(t, StateReady, bar.State())
	assert.Empty(t, bar.Message())
	assert.Zero(t, bar.ResultCount())
	assert.Equal(t, 80, bar.Width())
	assert.Nil(t, bar.Init())
}

func TestBar_UpdateIsPassive(t *testing.T) {
	bar := NewBar(nil, nil)

	updated, cmd := bar.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Same(t, bar, updated)
	assert.Nil(t, cmd)
}

func TestBar_Setters(t *testing.T) {
	bar := NewBar(nil, nil)

	bar.SetState(StateSearching)
	bar.SetMessage("uploading")
	bar.SetResultCount(42)
	bar.SetWidth(120)

	assert.Equal(t, StateSearching, bar.State())
	assert.Equal(t, "uploading", bar.Message())
	assert.Equal(t, 42, bar.ResultCount())
	assert.Equal(t, 120, bar.Width())

	bar.Clear()

	assert.Equal(t, StateReady, bar.State())
	assert.Empty(t, bar.Message())
	assert.Zero(t, bar.ResultCount())
}

func TestBar_View(t *testing.T) {
	tests := []struct {
		name    string
		state   State
		message string
		results int
		want    string
		notWant string
	}{
		{name: "ready", state: StateReady, want: "Ready"},
		{name: "searching", state: StateSearching, want: "Searching..."},
		{name: "thinking", state: StateThinking, message: "ignored", want: "Thinking...", notWant: "ignored"},
		{name: "help", state: StateHelp, want: "Help"},
		{name: "error", state: StateError, want: "Error"},
		{name: "error message", state: StateError, message: "index offline", want: "Error: index offline"},
		{name: "results", state: StateResults, results: 5, want: "5 results"},
		{name: "message wins", state: StateReady, message: "Deleted A-101.pdf", results: 3, want: "Deleted A-101.pdf", notWant: "Ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := NewBar(nil, nil)
			bar.SetWidth(120)
			bar.SetState(tt.state)
			bar.SetMessage(tt.message)
			bar.SetResultCount(tt.results)

			view := bar.View()

			assert.Contains(t, view, tt.want)
			if tt.notWant != "" {
				assert.NotContains(t, view, tt.notWant)
			}
		})
	}
}

func TestBar_Hints(t *testing.T) {
	km := keymap.DefaultKeyMap()
	bar := NewBar(nil, km)
	bar.SetWidth(120)

	view := bar.View()
	assert.Contains(t, view, "back")
	assert.Contains(t, view, "help")

	bar.SetState(StateResults)
	bar.SetResultCount(2)
	assert.Contains(t, bar.View(), "new search")

	bar.SetHints(km.ChatHelp())
	assert.Contains(t, bar.View(), "new conversation")

	bar.SetHints(nil)
	assert.NotContains(t, bar.View(), "new conversation")
}

func TestState_Values(t *testing.T) {
	assert.Equal(t, State("ready"), StateReady)
	assert.Equal(t, State("searching"), StateSearching)
	assert.Equal(t, State("thinking"), StateThinking)
	assert.Equal(t, State("error"), StateError)
	assert.Equal(t, State("help"), StateHelp)
	assert.Equal(t, State("results"), StateResults)
}

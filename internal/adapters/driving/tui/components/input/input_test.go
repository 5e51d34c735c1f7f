package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/planroom/internal/adapters/driving/tui/styles"
)

func TestNew(t *testing.T) {
	in := New(styles.DefaultStyles(), "Ask: ", "question")

	require.NotNil(t, in)
	assert.Equal(t, "", in.Value())
	assert.Equal(t, "Ask: ", in.Label())
	assert.True(t, in.Focused())
}

func TestNew_NilStyles(t *testing.T) {
	in := New(nil, "x", "")

	require.NotNil(t, in)
	assert.NotNil(t, in.styles)
}

func TestPresetInputs(t *testing.T) {
	assert.Equal(t, "Search: ", NewSearchInput(nil).Label())
	assert.Equal(t, "Ask: ", NewQuestionInput(nil).Label())
}

func TestInput_Init(t *testing.T) {
	assert.NotNil(t, NewSearchInput(nil).Init())
}

func TestInput_Update(t *testing.T) {
	in := NewQuestionInput(nil)

	updated, _ := in.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("door")})

	assert.Equal(t, in, updated)
	assert.Equal(t, "door", in.Value())
}

func TestInput_View(t *testing.T) {
	view := NewSearchInput(nil).View()

	assert.Contains(t, view, "Search")
}

func TestInput_SetValue(t *testing.T) {
	in := NewSearchInput(nil)

	in.SetValue("fire rating")

	assert.Equal(t, "fire rating", in.Value())
}

func TestInput_FocusBlur(t *testing.T) {
	in := NewSearchInput(nil)

	in.Blur()
	assert.False(t, in.Focused())

	cmd := in.Focus()
	assert.NotNil(t, cmd)
	assert.True(t, in.Focused())
}

func TestInput_SetWidth(t *testing.T) {
	in := NewSearchInput(nil)

	in.SetWidth(100)
	assert.Equal(t, 100, in.Width())
	assert.Equal(t, 86, in.textinput.Width)

	in.SetWidth(10)
	assert.Equal(t, 20, in.textinput.Width)
}

func TestInput_Reset(t *testing.T) {
	in := NewSearchInput(nil)
	in.SetValue("text")

	in.Reset()

	assert.Equal(t, "", in.Value())
}

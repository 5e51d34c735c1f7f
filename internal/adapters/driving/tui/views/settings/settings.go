// Package settings edits providers and retrieval weights from the TUI.
package settings

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/planroom/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/planroom/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/planroom/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/planroom/internal/core/domain"
	"github.com/custodia-labs/planroom/internal/core/ports/driving"
)

// ErrNoSettingsService indicates that no settings service was provided.
var ErrNoSettingsService = errors.New("settings service not available")

// Section tracks which settings section is active.
type Section int

const (
	SectionOverview Section = iota
	SectionEmbedding
	SectionLLM
	SectionWeights
)

const (
	keyEnter = "enter"
	keyTab   = "tab"
)

// WeightPreset is a named lexical/vector balance.
type WeightPreset struct {
	Label   string
	Lexical float64
	Vector  float64
}

// WeightPresets returns the fusion weight choices offered in the view.
func WeightPresets() []WeightPreset {
	return []WeightPreset{
		{Label: "Balanced", Lexical: 0.5, Vector: 0.5},
		{Label: "Keyword leaning", Lexical: 0.7, Vector: 0.3},
		{Label: "Semantic leaning", Lexical: 0.3, Vector: 0.7},
		{Label: "Keyword only", Lexical: 1, Vector: 0},
	}
}

// providerPicker is the shared state of the embedding and LLM sections.
type providerPicker struct {
	title     string
	providers []domain.AIProvider
	defaults  map[domain.AIProvider]string
	apiKey    textinput.Model
	current   func(*domain.AppSettings) domain.AIProvider
	save      func(driving.SettingsService, domain.AIProvider, string, string) error
}

func newAPIKeyInput() textinput.Model {
	in := textinput.New()
	in.Placeholder = "Enter API key"
	in.EchoMode = textinput.EchoPassword
	in.CharLimit = 256
	return in
}

// View is the settings configuration view.
type View struct {
	styles          *styles.Styles
	keymap          *keymap.KeyMap
	settingsService driving.SettingsService

	settings *domain.AppSettings
	err      error

	section      Section
	selected     int
	keyFocused   bool
	embedding    *providerPicker
	llm          *providerPicker
	savedMessage string

	width  int
	height int
	ready  bool
}

// NewView creates a new settings view.
func NewView(s *styles.Styles, settingsService driving.SettingsService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &View{
		styles:          s,
		keymap:          keymap.DefaultKeyMap(),
		settingsService: settingsService,
		section:         SectionOverview,
		embedding: &providerPicker{
			title:     "Select Embedding Provider",
			providers: domain.AllEmbeddingProviders(),
			defaults:  domain.DefaultEmbeddingModels(),
			apiKey:    newAPIKeyInput(),
			current:   func(a *domain.AppSettings) domain.AIProvider { return a.Embedding.Provider },
			save: func(svc driving.SettingsService, p domain.AIProvider, model, key string) error {
				return svc.SetEmbeddingProvider(p, model, key)
			},
		},
		llm: &providerPicker{
			title:     "Select LLM Provider",
			providers: domain.AllLLMProviders(),
			defaults:  domain.DefaultLLMModels(),
			apiKey:    newAPIKeyInput(),
			current:   func(a *domain.AppSettings) domain.AIProvider { return a.LLM.Provider },
			save: func(svc driving.SettingsService, p domain.AIProvider, model, key string) error {
				return svc.SetLLMProvider(p, model, key)
			},
		},
	}
}

// Init initialises the view and loads settings.
func (v *View) Init() tea.Cmd {
	return v.loadSettings()
}

// loadSettings returns a command that loads current settings.
func (v *View) loadSettings() tea.Cmd {
	return func() tea.Msg {
		if v.settingsService == nil {
			return messages.SettingsLoaded{Err: ErrNoSettingsService}
		}
		settings, err := v.settingsService.Get()
		return messages.SettingsLoaded{Settings: settings, Err: err}
	}
}

// Update handles messages for the settings view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.SettingsLoaded:
		if msg.Err != nil {
			v.err = msg.Err
		} else {
			v.settings = msg.Settings
			v.err = nil
		}
		return v, nil

	case messages.SettingsSaved:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.savedMessage = "Saved. Restart planroom to apply provider changes."
		v.backToOverview()
		return v, v.loadSettings()

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}

	return v, nil
}

// handleKeyMsg handles key presses based on current section.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if keymap.Matches(msg.String(), v.keymap.Back) {
		if v.section == SectionOverview {
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewMenu}
			}
		}
		v.backToOverview()
		return v, nil
	}

	if v.settings == nil {
		return v, nil
	}

	switch v.section {
	case SectionOverview:
		return v.handleOverviewKeys(msg)
	case SectionEmbedding:
		return v.handleProviderKeys(msg, v.embedding)
	case SectionLLM:
		return v.handleProviderKeys(msg, v.llm)
	case SectionWeights:
		return v.handleWeightKeys(msg)
	}

	return v, nil
}

func (v *View) handleOverviewKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.navigate(msg, 3) {
		return v, nil
	}
	if msg.String() == keyEnter {
		v.savedMessage = ""
		switch v.selected {
		case 0:
			v.section = SectionEmbedding
			v.selected = v.providerIndex(v.embedding)
		case 1:
			v.section = SectionLLM
			v.selected = v.providerIndex(v.llm)
		case 2:
			v.section = SectionWeights
			v.selected = v.weightPresetIndex()
		}
	}
	return v, nil
}

func (v *View) handleWeightKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	presets := WeightPresets()
	if v.navigate(msg, len(presets)) || msg.String() != keyEnter {
		return v, nil
	}
	p := presets[v.selected]
	return v, v.save(func(svc driving.SettingsService) error {
		return svc.SetWeights(p.Lexical, p.Vector)
	})
}

func (v *View) handleProviderKeys(msg tea.KeyMsg, picker *providerPicker) (*View, tea.Cmd) {
	provider := picker.providers[v.selected]

	if v.keyFocused {
		switch msg.String() {
		case keyTab, "shift+tab":
			v.keyFocused = false
			picker.apiKey.Blur()
			return v, nil
		case keyEnter:
			return v, v.saveProvider(picker, provider, picker.apiKey.Value())
		default:
			var cmd tea.Cmd
			picker.apiKey, cmd = picker.apiKey.Update(msg)
			return v, cmd
		}
	}

	if v.navigate(msg, len(picker.providers)) {
		return v, nil
	}
	switch msg.String() {
	case keyTab:
		if provider.RequiresAPIKey() {
			v.keyFocused = true
			return v, picker.apiKey.Focus()
		}
	case keyEnter:
		if provider.RequiresAPIKey() {
			v.keyFocused = true
			return v, picker.apiKey.Focus()
		}
		return v, v.saveProvider(picker, provider, "")
	}
	return v, nil
}

// navigate moves the cursor within count rows and reports whether msg
// was a movement key.
func (v *View) navigate(msg tea.KeyMsg, count int) bool {
	switch k := msg.String(); {
	case keymap.Matches(k, v.keymap.Up):
		v.selected = max(v.selected-1, 0)
	case keymap.Matches(k, v.keymap.Down):
		v.selected = min(v.selected+1, count-1)
	default:
		return false
	}
	return true
}

// row renders one selectable line with an optional trailing note.
func (v *View) row(selected bool, text, note string) string {
	line := v.styles.Normal.Render("  " + text)
	if selected {
		line = v.styles.Selected.Render("> " + text)
	}
	if note != "" {
		line += " " + note
	}
	return line + "\n"
}

func (v *View) saveProvider(picker *providerPicker, provider domain.AIProvider, apiKey string) tea.Cmd {
	model := picker.defaults[provider]
	return v.save(func(svc driving.SettingsService) error {
		return picker.save(svc, provider, model, apiKey)
	})
}

// save returns a command that applies fn to the settings service.
func (v *View) save(fn func(driving.SettingsService) error) tea.Cmd {
	svc := v.settingsService
	return func() tea.Msg {
		if svc == nil {
			return messages.SettingsSaved{Err: ErrNoSettingsService}
		}
		return messages.SettingsSaved{Err: fn(svc)}
	}
}

func (v *View) backToOverview() {
	v.section = SectionOverview
	v.selected = 0
	v.keyFocused = false
	for _, p := range []*providerPicker{v.embedding, v.llm} {
		p.apiKey.SetValue("")
		p.apiKey.Blur()
	}
}

func (v *View) providerIndex(picker *providerPicker) int {
	current := picker.current(v.settings)
	for i, p := range picker.providers {
		if p == current {
			return i
		}
	}
	return 0
}

func (v *View) weightPresetIndex() int {
	for i, p := range WeightPresets() {
		if v.isCurrentPreset(p) {
			return i
		}
	}
	return 0
}

func (v *View) isCurrentPreset(p WeightPreset) bool {
	r := v.settings.Retrieval
	return p.Lexical == r.LexicalWeight && p.Vector == r.VectorWeight
}

// View renders the settings view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Settings"))
	b.WriteString("\n\n")

	if v.err != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		b.WriteString("\n\n")
	}

	if v.settings == nil {
		b.WriteString(v.styles.Muted.Render("Loading settings..."))
		return b.String()
	}

	switch v.section {
	case SectionOverview:
		b.WriteString(v.renderOverview())
	case SectionEmbedding:
		b.WriteString(v.renderProviderSelect(v.embedding))
	case SectionLLM:
		b.WriteString(v.renderProviderSelect(v.llm))
	case SectionWeights:
		b.WriteString(v.renderWeightSelect())
	}

	b.WriteString("\n")
	b.WriteString(v.renderHelp())

	return b.String()
}

func (v *View) renderOverview() string {
	var b strings.Builder

	emb := v.settings.Embedding
	embeddingValue := "Not Set"
	if emb.Provider != "" {
		embeddingValue = providerSummary(emb.Provider, emb.Model)
	}

	llm := v.settings.LLM
	llmValue := "Not Set"
	if llm.Provider != "" {
		llmValue = providerSummary(llm.Provider, llm.Model)
	}

	items := []struct {
		label  string
		value  string
		status string
	}{
		{"Embedding Provider", embeddingValue, v.status(emb.Provider, emb.IsConfigured())},
		{"LLM Provider", llmValue, v.status(llm.Provider, llm.IsConfigured())},
		{"Retrieval Weights", fmt.Sprintf("lexical %.2f, vector %.2f",
			v.settings.Retrieval.LexicalWeight, v.settings.Retrieval.VectorWeight), ""},
	}

	for i, item := range items {
		b.WriteString(v.row(i == v.selected, item.label+": "+item.value, item.status))
	}

	b.WriteString("\n")
	if v.savedMessage != "" {
		b.WriteString(v.styles.Success.Render(v.savedMessage))
		b.WriteString("\n")
	}
	if v.settingsService != nil {
		if err := v.settingsService.Validate(); err != nil {
			b.WriteString(v.styles.Warning.Render(fmt.Sprintf("Warning: %s", err.Error())))
		} else {
			b.WriteString(v.styles.Success.Render("Configuration is valid"))
		}
	}

	return b.String()
}

func providerSummary(p domain.AIProvider, model string) string {
	if model == "" {
		return p.Description()
	}
	return fmt.Sprintf("%s (%s)", p.Description(), model)
}

func (v *View) status(p domain.AIProvider, configured bool) string {
	switch {
	case p == "":
		return v.styles.Muted.Render("[not set]")
	case configured:
		return v.styles.Success.Render("[configured]")
	default:
		return v.styles.Warning.Render("[needs API key]")
	}
}

func (v *View) renderProviderSelect(picker *providerPicker) string {
	var b strings.Builder

	b.WriteString(v.styles.Subtitle.Render(picker.title))
	b.WriteString("\n\n")

	current := picker.current(v.settings)
	for i, provider := range picker.providers {
		note := ""
		if provider == current {
			note = v.styles.Success.Render("(current)")
		}
		b.WriteString(v.row(i == v.selected && !v.keyFocused, provider.Description(), note))

		if model, ok := picker.defaults[provider]; ok && model != "" {
			b.WriteString(v.styles.Muted.Render("    Model: " + model))
			b.WriteString("\n")
		}
	}

	if picker.providers[v.selected].RequiresAPIKey() {
		b.WriteString("\n")
		b.WriteString(v.styles.Normal.Render("API Key:"))
		b.WriteString("\n")
		b.WriteString(picker.apiKey.View())
		b.WriteString("\n")
	}

	return b.String()
}

func (v *View) renderWeightSelect() string {
	var b strings.Builder

	b.WriteString(v.styles.Subtitle.Render("Select Retrieval Weights"))
	b.WriteString("\n\n")

	for i, p := range WeightPresets() {
		note := ""
		if v.isCurrentPreset(p) {
			note = v.styles.Success.Render("(current)")
		}
		b.WriteString(v.row(i == v.selected, p.Label, note))
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("    lexical %.1f / vector %.1f", p.Lexical, p.Vector)))
		b.WriteString("\n")
	}

	return b.String()
}

func (v *View) renderHelp() string {
	switch v.section {
	case SectionOverview:
		return v.styles.Help.Render("[j/k] navigate  [enter] edit  [esc] back")
	case SectionWeights:
		return v.styles.Help.Render("[j/k] navigate  [enter] select  [esc] back")
	case SectionEmbedding, SectionLLM:
		if v.keyFocused {
			return v.styles.Help.Render("[tab] back to list  [enter] save  [esc] back")
		}
		return v.styles.Help.Render("[j/k] navigate  [tab] API key  [enter] select  [esc] back")
	default:
		return ""
	}
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Section returns the active section.
func (v *View) Section() Section {
	return v.section
}

// Settings returns the last loaded settings.
func (v *View) Settings() *domain.AppSettings {
	return v.settings
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

// Reset resets the view to initial state.
func (v *View) Reset() {
	v.backToOverview()
	v.err = nil
	v.savedMessage = ""
}

// Package messages holds the tea.Msg types passed between the app and its views.
package messages

import (
	"github.com/custodia-labs/planroom/internal/core/domain"
	"github.com/custodia-labs/planroom/internal/core/ports/driving"
)

// AnswerReceived carries a grounded answer back to the chat view.
type AnswerReceived struct {
	Question string
	Answer   *driving.Answer
	Err      error
}

// ConversationReset is sent when the user starts a new conversation.
type ConversationReset struct{}

// SearchCompleted carries search matches back to the model.
type SearchCompleted struct {
	Matches []domain.Match
	Err     error
}

// CorpusLoaded carries index counts for the menu header.
type CorpusLoaded struct {
	Health *driving.Health
	Err    error
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewChat is the conversational question answering view.
	ViewChat
	// ViewSearch is the retrieval-only search view.
	ViewSearch
	// ViewDocuments lists ingested documents.
	ViewDocuments
	// ViewDocContent shows document content.
	ViewDocContent
	// ViewSettings is the settings configuration view.
	ViewSettings
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

var viewNames = [...]string{
	ViewMenu:       "menu",
	ViewChat:       "chat",
	ViewSearch:     "search",
	ViewDocuments:  "documents",
	ViewDocContent: "doc_content",
	ViewSettings:   "settings",
	ViewHelp:       "help",
}

func (v ViewType) String() string {
	if v < 0 || int(v) >= len(viewNames) {
		return "unknown"
	}
	return viewNames[v]
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// StatusChanged carries a transient status line message.
type StatusChanged struct {
	Message string
}

// Quit signals the application should exit.
type Quit struct{}

// DocumentsLoaded carries the list of ingested documents.
type DocumentsLoaded struct {
	Documents []domain.Document
	Err       error
}

// DocumentSelected signals a document was selected for viewing.
type DocumentSelected struct {
	Document domain.Document

	// From is the view to return to when the content view closes.
	From ViewType

	// Page, when positive, is where the reader opens.
	Page int
}

// DocumentContentLoaded carries the content of a document.
type DocumentContentLoaded struct {
	DocumentID string
	Content    string
	Err        error
}

// DocumentDeleted signals a document was removed from the corpus.
type DocumentDeleted struct {
	DocumentID string
	Filename   string
	Err        error
}

// SettingsLoaded carries the application settings.
type SettingsLoaded struct {
	Settings *domain.AppSettings
	Err      error
}

// SettingsSaved signals settings were saved.
type SettingsSaved struct {
	Err error
}

package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/planroom/internal/adapters/driving/tui"
	"github.com/custodia-labs/planroom/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/planroom/internal/core/domain"
)

var (
	chatDocument string
	chatPageFrom int
	chatPageTo   int
	chatMenu     bool
)

var chatCmd = &cobra.Command{
	Use:     "chat",
	Aliases: []string{"tui"},
	Short:   "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal interface for planroom.

Opens straight into a conversation. Follow-up questions reuse the
conversation so earlier answers inform later ones. Use --menu to start
at the main menu, which also offers search, documents and settings.

Controls:
  Enter    - Ask / Select
  Ctrl+N   - New conversation
  Esc      - Back
  Ctrl+C   - Quit`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatDocument, "doc", "", "restrict questions to one document ID")
	chatCmd.Flags().IntVar(&chatPageFrom, "page-from", 0, "first page to consider")
	chatCmd.Flags().IntVar(&chatPageTo, "page-to", 0, "last page to consider")
	chatCmd.Flags().BoolVar(&chatMenu, "menu", false, "start at the main menu")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("panic in TUI: %v", r)
		}
	}()

	if chatPageFrom > 0 && chatPageTo > 0 && chatPageFrom > chatPageTo {
		return errors.New("--page-from must not be after --page-to")
	}

	ports := &tui.Ports{
		Query:    queryService,
		Search:   searchService,
		Document: documentService,
		Settings: settingsService,
	}

	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	app.WithContext(commandContext(cmd)).WithFilters(domain.Filters{
		DocumentID: chatDocument,
		PageFrom:   chatPageFrom,
		PageTo:     chatPageTo,
	})
	if !chatMenu {
		app.StartIn(messages.ViewChat)
	}

	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/planroom/internal/core/domain"
	"github.com/custodia-labs/planroom/internal/core/ports/driving"
)

var (
	queryDocument     string
	queryPageFrom     int
	queryPageTo       int
	queryConversation string
	queryJSON         bool
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Ask a question about indexed documents",
	Long: `Retrieves the most relevant chunks, asks the configured LLM to answer
from them and prints the answer with file and page citations.

Pass the printed conversation ID with --conversation to ask a follow-up.
Questions that name a door schedule, room summary or equipment list are
answered with structured extraction.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVar(&queryDocument, "doc", "", "restrict retrieval to one document ID")
	queryCmd.Flags().IntVar(&queryPageFrom, "page-from", 0, "first page to consider")
	queryCmd.Flags().IntVar(&queryPageTo, "page-to", 0, "last page to consider")
	queryCmd.Flags().StringVarP(&queryConversation, "conversation", "c", "", "continue a conversation")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	answer, err := queryService.Query(commandContext(cmd), driving.QueryRequest{
		Text:           args[0],
		ConversationID: queryConversation,
		Filters: domain.Filters{
			DocumentID: queryDocument,
			PageFrom:   queryPageFrom,
			PageTo:     queryPageTo,
		},
	})
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		return printJSON(cmd, answer)
	}

	printAnswer(cmd, answer)
	return nil
}

func printAnswer(cmd *cobra.Command, answer *driving.Answer) {
	cmd.Println(answer.Answer)
	cmd.Println()

	if len(answer.Sources) > 0 {
		cmd.Println("Sources:")
		for i, src := range answer.Sources {
			cmd.Printf("  [%d] %s, page %d\n", i+1, src.Filename, src.Page)
		}
		cmd.Println()
	}

	cached := ""
	if answer.Cached {
		cached = " (cached)"
	}
	cmd.Printf("Confidence: %s%s\n", answer.Confidence, cached)
	cmd.Printf("Conversation: %s\n", answer.ConversationID)
}

package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/planroom/internal/core/domain"
)

var (
	searchLimit    int
	searchDocument string
	searchJSON     bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed documents",
	Long: `Ranks chunks with hybrid search and prints them without generating an answer.
Each result shows the keyword (lexical) score, the semantic (vector) score and
the fused score used for ranking.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	searchCmd.Flags().StringVar(&searchDocument, "doc", "", "restrict the search to one document ID")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	opts := domain.SearchOptions{
		TopK:    searchLimit,
		Filters: domain.Filters{DocumentID: searchDocument},
	}

	matches, err := searchService.Search(commandContext(cmd), args[0], opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, matches)
	}
	outputSearchTable(cmd, matches)
	return nil
}

type searchRow struct {
	DocumentID   string  `json:"document_id"`
	Filename     string  `json:"filename"`
	Page         int     `json:"page"`
	ChunkIndex   int     `json:"chunk_index"`
	LexicalScore float64 `json:"lexical_score"`
	VectorScore  float64 `json:"vector_score"`
	Score        float64 `json:"score"`
	Content      string  `json:"content"`
}

func outputSearchJSON(cmd *cobra.Command, matches []domain.Match) error {
	rows := make([]searchRow, len(matches))
	for i := range matches {
		c := &matches[i].Chunk
		rows[i] = searchRow{
			DocumentID:   c.DocumentID,
			Filename:     c.Filename,
			Page:         c.PageNumber,
			ChunkIndex:   c.ChunkIndex,
			LexicalScore: matches[i].LexicalScore,
			VectorScore:  matches[i].VectorScore,
			Score:        matches[i].FusedScore,
			Content:      c.Content,
		}
	}
	return printJSON(cmd, rows)
}

func outputSearchTable(cmd *cobra.Command, matches []domain.Match) {
	if len(matches) == 0 {
		cmd.Println("No results found.")
		return
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range matches {
		m := &matches[i]
		cmd.Printf("  [%d] %s, page %d (%.2f)\n", i+1, m.Chunk.Filename, m.Chunk.PageNumber, m.FusedScore)
		cmd.Printf("      lexical %.2f  vector %.2f\n", m.LexicalScore, m.VectorScore)
		cmd.Printf("      %s\n", strings.ReplaceAll(domain.Preview(m.Chunk.Content), "\n", " "))
		cmd.Println()
	}
}

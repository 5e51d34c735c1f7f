package cli

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var evaluateJSON bool

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Grade answers to a fixed question set",
	Long: `Runs a fixed set of questions through the full query pipeline and grades
each answer by the expected keywords it mentions and whether it cites sources.

Every question calls the configured LLM unless its answer is cached.`,
	Args: cobra.NoArgs,
	RunE: runEvaluate,
}

func init() {
	evaluateCmd.Flags().BoolVar(&evaluateJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	if evaluationService == nil {
		return errors.New("evaluation service not configured")
	}

	report, err := evaluationService.Evaluate(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to evaluate: %w", err)
	}

	if evaluateJSON {
		return printJSON(cmd, report)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("CATEGORY", "QUERY", "SCORE", "SOURCES", "RESULT")
	for i := range report.Results {
		r := &report.Results[i]
		t.Row(r.Category, r.Query, fmt.Sprintf("%.2f", r.KeywordScore), fmt.Sprint(r.SourcesCount), string(r.Correctness))
	}
	cmd.Println(t.String())

	s := report.Summary
	cmd.Printf("%d queries over %d chunks: %d correct, %d partial, %d incorrect, %d errors\n",
		report.TotalQueries, report.IndexedChunks, s.Correct, s.PartiallyCorrect, s.Incorrect, s.Error)
	return nil
}

package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var conflictsJSON bool

var conflictsCmd = &cobra.Command{
	Use:   "conflicts",
	Short: "Look for inconsistencies between documents",
	Long: `Asks the LLM to compare excerpts on topics where drawings and
specifications often disagree: fire ratings, finishes, accessibility and
dimensions. Findings are leads to check, not verdicts.`,
	Args: cobra.NoArgs,
	RunE: runConflicts,
}

func init() {
	conflictsCmd.Flags().BoolVar(&conflictsJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(conflictsCmd)
}

func runConflicts(cmd *cobra.Command, _ []string) error {
	if conflictService == nil {
		return errors.New("conflict service not configured")
	}

	report, err := conflictService.Detect(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to detect conflicts: %w", err)
	}

	if conflictsJSON {
		return printJSON(cmd, report)
	}

	cmd.Printf("%s (%d of %d topics flagged)\n", report.Analysis, report.ConflictsFound, report.TopicsChecked)
	for i := range report.Conflicts {
		c := &report.Conflicts[i]
		cmd.Printf("\n%s [%s]\n", c.Topic, c.Confidence)
		cmd.Println(c.Finding)
		for _, s := range c.Sources {
			cmd.Printf("  - %s, page %d\n", s.Filename, s.Page)
		}
	}
	return nil
}

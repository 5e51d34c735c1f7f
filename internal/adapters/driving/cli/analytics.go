package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var analyticsJSON bool

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Show query statistics",
	Long:  `Shows the total number of queries, the most frequent questions and how often each document was cited.`,
	Args:  cobra.NoArgs,
	RunE:  runAnalytics,
}

func init() {
	analyticsCmd.Flags().BoolVar(&analyticsJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(analyticsCmd)
}

func runAnalytics(cmd *cobra.Command, _ []string) error {
	if analyticsService == nil {
		return errors.New("analytics service not configured")
	}

	summary, err := analyticsService.Summary(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to load analytics: %w", err)
	}

	if analyticsJSON {
		return printJSON(cmd, summary)
	}

	cmd.Printf("Total queries: %d\n", summary.TotalQueries)

	if len(summary.Popular) > 0 {
		cmd.Println("\nPopular questions:")
		for _, q := range summary.Popular {
			cmd.Printf("  %3d  %s\n", q.Count, q.Query)
		}
	}

	if len(summary.DocumentUsage) > 0 {
		names := make([]string, 0, len(summary.DocumentUsage))
		for name := range summary.DocumentUsage {
			names = append(names, name)
		}
		sort.Slice(names, func(i, j int) bool {
			ci, cj := summary.DocumentUsage[names[i]], summary.DocumentUsage[names[j]]
			if ci != cj {
				return ci > cj
			}
			return names[i] < names[j]
		})

		cmd.Println("\nDocument usage:")
		for _, name := range names {
			cmd.Printf("  %3d  %s\n", summary.DocumentUsage[name], name)
		}
	}
	return nil
}

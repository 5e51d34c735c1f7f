package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the answer cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache size and freshness",
	RunE:  runCacheStats,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached answer",
	RunE:  runCacheClear,
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheStats(cmd *cobra.Command, _ []string) error {
	if cacheService == nil {
		return errors.New("cache service not configured")
	}

	stats, err := cacheService.Stats(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to read cache stats: %w", err)
	}

	cmd.Printf("Entries: %d\n", stats.EntryCount)
	cmd.Printf("Fresh:   %d\n", stats.ValidCount)
	cmd.Printf("TTL:     %ds\n", stats.TTLSeconds)
	return nil
}

func runCacheClear(cmd *cobra.Command, _ []string) error {
	if cacheService == nil {
		return errors.New("cache service not configured")
	}

	if err := cacheService.Clear(commandContext(cmd)); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	cmd.Println("Cache cleared.")
	return nil
}

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var extractFormat string

var extractCmd = &cobra.Command{
	Use:   "extract [schema]",
	Short: "Extract structured records",
	Long: `Extracts structured records from the indexed documents.

Available schemas:
  door_schedule   - Door marks, sizes, fire ratings and hardware
  room_summary    - Room numbers, names, areas and finishes
  equipment_list  - Mechanical, electrical and plumbing equipment`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVarP(&extractFormat, "format", "f", "json", "output format: json or yaml")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	if extractionService == nil {
		return errors.New("extraction service not configured")
	}

	format := strings.ToLower(extractFormat)
	if format != "json" && format != "yaml" {
		return fmt.Errorf("unknown format %q: use json or yaml", extractFormat)
	}

	result, err := extractionService.Extract(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	var data []byte
	if format == "yaml" {
		data, err = yaml.Marshal(result)
	} else {
		data, err = json.MarshalIndent(result, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	cmd.Println(strings.TrimRight(string(data), "\n"))
	return nil
}

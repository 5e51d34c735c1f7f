package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/planroom/internal/core/domain"
)

const uploadedLayout = "2006-01-02 15:04:05"

var (
	documentJSON bool
	documentPage int
)

var documentCmd = &cobra.Command{
	Use:     "document",
	Aliases: []string{"doc", "docs"},
	Short:   "Inspect and remove uploaded documents",
}

func init() {
	list := &cobra.Command{
		Use:   "list",
		Short: "Table of uploaded documents",
		Args:  cobra.NoArgs,
		RunE:  runDocumentList,
	}
	list.Flags().BoolVar(&documentJSON, "json", false, "print JSON instead of a table")

	get := &cobra.Command{
		Use:   "get <doc-id>",
		Short: "Metadata for one document",
		Args:  cobra.ExactArgs(1),
		RunE:  runDocumentGet,
	}
	get.Flags().BoolVar(&documentJSON, "json", false, "print JSON")

	content := &cobra.Command{
		Use:   "content <doc-id>",
		Short: "Print the extracted text",
		Args:  cobra.ExactArgs(1),
		RunE:  runDocumentContent,
	}
	content.Flags().IntVarP(&documentPage, "page", "p", 0, "print a single page (1-based)")

	documentCmd.AddCommand(list, get, content,
		&cobra.Command{
			Use:   "delete <doc-id>",
			Short: "Remove a document with its chunks and stored upload",
			Args:  cobra.ExactArgs(1),
			RunE:  runDocumentDelete,
		},
		&cobra.Command{
			Use:   "open <doc-id>",
			Short: "Open the stored upload with the system viewer",
			Args:  cobra.ExactArgs(1),
			RunE:  runDocumentOpen,
		},
	)
	rootCmd.AddCommand(documentCmd)
}

func requireDocuments() error {
	if documentService == nil {
		return errors.New("document service not configured")
	}
	return nil
}

type documentRow struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	ChunkCount  int    `json:"chunk_count"`
	UploadedAt  string `json:"uploaded_at"`
	StoragePath string `json:"storage_path,omitempty"`
}

func toRow(d *domain.Document) documentRow {
	return documentRow{
		ID:          d.ID,
		Filename:    d.Filename,
		ChunkCount:  d.ChunkCount,
		UploadedAt:  d.UploadedAt.Format(uploadedLayout),
		StoragePath: d.StoragePath,
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if err := requireDocuments(); err != nil {
		return err
	}
	docs, err := documentService.List(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if documentJSON {
		rows := make([]documentRow, len(docs))
		for i := range docs {
			rows[i] = toRow(&docs[i])
		}
		return printJSON(cmd, rows)
	}
	if len(docs) == 0 {
		cmd.Println("No documents indexed.")
		return nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "FILE", "CHUNKS", "UPLOADED")
	total := 0
	for i := range docs {
		r := toRow(&docs[i])
		t.Row(r.ID, r.Filename, strconv.Itoa(r.ChunkCount), r.UploadedAt)
		total += r.ChunkCount
	}
	cmd.Println(t.String())
	cmd.Printf("%d documents, %d chunks\n", len(docs), total)
	return nil
}

func runDocumentGet(cmd *cobra.Command, args []string) error {
	if err := requireDocuments(); err != nil {
		return err
	}
	doc, err := documentService.Get(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	r := toRow(doc)
	if documentJSON {
		return printJSON(cmd, r)
	}
	cmd.Printf("%s\n", r.Filename)
	cmd.Printf("  id        %s\n", r.ID)
	cmd.Printf("  chunks    %d\n", r.ChunkCount)
	cmd.Printf("  uploaded  %s\n", r.UploadedAt)
	if r.StoragePath != "" {
		cmd.Printf("  stored    %s\n", r.StoragePath)
	}
	return nil
}

func runDocumentContent(cmd *cobra.Command, args []string) error {
	if err := requireDocuments(); err != nil {
		return err
	}
	text, err := documentService.GetContent(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document content: %w", err)
	}
	if documentPage <= 0 {
		cmd.Println(text)
		return nil
	}

	pages := domain.SplitPages(text)
	if documentPage > len(pages) {
		return fmt.Errorf("page %d out of range: document has %d pages", documentPage, len(pages))
	}
	cmd.Println(pages[documentPage-1].Text)
	return nil
}

func runDocumentDelete(cmd *cobra.Command, args []string) error {
	if err := requireDocuments(); err != nil {
		return err
	}
	if err := documentService.Delete(commandContext(cmd), args[0]); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	cmd.Printf("Deleted document %s\n", args[0])
	return nil
}

func runDocumentOpen(cmd *cobra.Command, args []string) error {
	if err := requireDocuments(); err != nil {
		return err
	}
	if err := documentService.Open(commandContext(cmd), args[0]); err != nil {
		return fmt.Errorf("failed to open document: %w", err)
	}
	cmd.Printf("Opened document %s\n", args[0])
	return nil
}

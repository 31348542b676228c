package main

import (
	"github.com/spf13/cobra"

	"github.com/f4ah6o/nyte-docs-go/internal/exporter"
)

var exportCmd = &cobra.Command{
	Use:   "export <output>",
	Short: "Export the search index",
	Long: `Writes the document collection for client-side search. A path ending in
.zip produces an archive with the index and one Markdown file per page;
any other path produces the JSON index.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	_, docs, err := loadCollection()
	if err != nil {
		return err
	}
	if err := exporter.Export(docs, args[0]); err != nil {
		return err
	}
	cmd.Printf("Exported %d documents to %s\n", len(docs), args[0])
	return nil
}

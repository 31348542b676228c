package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/f4ah6o/nyte-docs-go/internal/search"
)

var (
	searchLimit int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the documentation",
	Long: `Ranks documentation pages against a query. Labels weigh most, then
page content, then categories. Multi-word queries work with or without quotes.`,
	Args: cobra.ArbitraryArgs,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (default from site.toml)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, docs, err := loadCollection()
	if err != nil {
		return err
	}

	query := strings.Join(args, " ")
	hits := search.Search(docs, query, cfg.ClampLimit(searchLimit))

	if searchJSON {
		return search.FormatJSON(cmd.OutOrStdout(), hits)
	}
	search.FormatResults(cmd.OutOrStdout(), hits, query)
	return nil
}

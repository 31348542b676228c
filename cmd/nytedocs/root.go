package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/f4ah6o/nyte-docs-go/internal/logging"
	"github.com/f4ah6o/nyte-docs-go/internal/search"
	"github.com/f4ah6o/nyte-docs-go/internal/site"
)

var (
	cfgFile string
	debug   bool
	logger  = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "nytedocs",
	Short: "Search and maintain the Nyte.js documentation",
	Long: `nytedocs works on the documentation collection described by site.toml.

Example usage:
  nytedocs search "rpc"              # Rank pages for a query
  nytedocs validate                  # Check ids, labels and links
  nytedocs export dist/index.json    # Write the search index
  nytedocs import https://nyte.dev/docs/
  nytedocs serve --watch             # Preview with live reload`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.New(debug)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", site.DefaultConfigFile, "site configuration file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadCollection loads the site configuration and builds its documents.
func loadCollection() (*site.Config, []search.Document, error) {
	cfg, err := site.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	docs, err := site.Build(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return cfg, docs, nil
}

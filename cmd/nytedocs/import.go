package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/f4ah6o/nyte-docs-go/internal/converter"
	"github.com/f4ah6o/nyte-docs-go/internal/docs"
	"github.com/f4ah6o/nyte-docs-go/internal/fetcher"
)

var (
	importOut          string
	importCategory     string
	importMaxPages     int
	importMaxDepth     int
	importDelay        time.Duration
	importIgnoreRobots bool
)

var importCmd = &cobra.Command{
	Use:   "import <URL>",
	Short: "Import pages from a deployed documentation site",
	Long: `Crawls the site below URL, converts every HTML page to Markdown with
YAML frontmatter and writes it into the docs directory, where it is picked
up by search, validate, export and serve.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVarP(&importOut, "out", "o", "docs", "directory to write Markdown pages to")
	importCmd.Flags().StringVar(&importCategory, "category", "", "category recorded in every imported page")
	importCmd.Flags().IntVar(&importMaxPages, "max-pages", 0, "stop after this many pages (0 = unlimited)")
	importCmd.Flags().IntVar(&importMaxDepth, "max-depth", 5, "maximum link depth from the start URL")
	importCmd.Flags().DurationVar(&importDelay, "delay", 500*time.Millisecond, "pause between requests")
	importCmd.Flags().BoolVar(&importIgnoreRobots, "ignore-robots", false, "do not consult robots.txt")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	return importSite(ctx, cmd, args[0], fetcher.Options{
		MaxPages:     importMaxPages,
		MaxDepth:     importMaxDepth,
		Delay:        importDelay,
		IgnoreRobots: importIgnoreRobots,
	})
}

func importSite(ctx context.Context, cmd *cobra.Command, startURL string, opts fetcher.Options) error {
	pages, err := fetcher.New(opts, logger).Fetch(ctx, startURL)
	if err != nil && len(pages) == 0 {
		return fmt.Errorf("import failed: %w", err)
	}
	if err != nil {
		logger.Warn("crawl interrupted, writing pages fetched so far", zap.Error(err))
	}

	conv := converter.New(converter.WithLogger(logger))
	fetchedAt := time.Now().UTC().Format(time.RFC3339)
	written := 0
	for _, p := range pages {
		out := filepath.Join(importOut, filepath.FromSlash(pageFile(p.Rel)))
		meta := converter.Meta{
			Category:  importCategory,
			SourceURL: p.URL,
			FetchedAt: fetchedAt,
		}
		if err := conv.WriteMarkdown(p.HTML, out, meta); err != nil {
			logger.Warn("failed to convert page", zap.String("url", p.URL), zap.Error(err))
			continue
		}
		written++
	}

	cmd.Printf("Imported %d of %d pages into %s\n", written, len(pages), importOut)
	return nil
}

// pageFile maps a crawled path to a Markdown file name: "" and "guide/"
// become "index.md" and "guide/index.md", "rpc.html" becomes "rpc.md".
func pageFile(rel string) string {
	dir := strings.HasSuffix(rel, "/") || rel == ""
	slug := strings.Trim(docs.Slug(rel), "/")
	switch {
	case slug == "":
		return "index.md"
	case dir:
		return slug + "/index.md"
	}
	return slug + ".md"
}

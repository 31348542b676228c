package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/f4ah6o/nyte-docs-go/internal/server"
	"github.com/f4ah6o/nyte-docs-go/internal/site"
	"github.com/f4ah6o/nyte-docs-go/internal/watcher"
)

var (
	serveWatch bool
	servePort  int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Preview the site with a local search API",
	Long: `Serves static_dir together with /api/search, /api/documents and /health.
With --watch the collection is rebuilt whenever site.toml or a page changes.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVarP(&serveWatch, "watch", "w", false, "rebuild the collection when files change")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "port to listen on (default from site.toml)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, docs, err := loadCollection()
	if err != nil {
		return err
	}
	if servePort > 0 {
		cfg.Server.Port = servePort
	}

	srv := server.New(cfg, docs, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if serveWatch {
		w := watcher.New(watchRoots(cfg), func() { reload(srv) },
			watcher.WithLogger(logger),
			watcher.WithExtensions(".toml", ".md", ".markdown", ".html", ".htm"),
		)
		if err := w.Start(ctx); err != nil {
			return err
		}
		defer w.Stop()
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()
	cmd.Printf("Serving %s at http://%s\n", cfg.Name, srv.Addr())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(shutdownCtx)
}

// reload rebuilds the collection from disk. On failure the server keeps
// serving the previous collection.
func reload(srv *server.Server) {
	cfg, err := site.Load(cfgFile)
	if err != nil {
		logger.Warn("reload skipped: invalid config", zap.Error(err))
		return
	}
	docs, err := site.Build(cfg, logger)
	if err != nil {
		logger.Warn("reload skipped: build failed", zap.Error(err))
		return
	}
	srv.Reload(docs)
}

// watchRoots returns the config directory and, when it lies elsewhere, the
// docs directory.
func watchRoots(cfg *site.Config) []string {
	configDir := filepath.Dir(cfg.Path())
	roots := []string{configDir}
	rel, err := filepath.Rel(configDir, cfg.DocsDir)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		roots = append(roots, cfg.DocsDir)
	}
	return roots
}

package site

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/f4ah6o/nyte-docs-go/internal/docs"
	"github.com/f4ah6o/nyte-docs-go/internal/search"
)

// Build assembles the document collection for cfg. Configured pages keep
// their order; a page whose file cannot be read stays searchable by label
// and category only. Without configured sections every page under DocsDir
// is discovered from its frontmatter.
func Build(cfg *Config, logger *zap.Logger) ([]search.Document, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	loader := docs.New()

	pages := cfg.Pages()
	if len(pages) == 0 {
		return discover(cfg, loader, logger)
	}

	out := make([]search.Document, 0, len(pages))
	for _, p := range pages {
		doc := search.Document{
			ID:       p.ID,
			Label:    p.Label,
			Category: p.Category,
			Href:     p.Href,
		}
		if p.File != "" {
			path := filepath.Join(cfg.DocsDir, filepath.FromSlash(p.File))
			page, err := loader.ReadFile(path)
			if err != nil {
				logger.Warn("page content unavailable",
					zap.String("id", p.ID),
					zap.String("file", path),
					zap.Error(err),
				)
			} else {
				doc.Content = search.Text(page.Body)
				if doc.Label == "" {
					doc.Label = page.Title()
				}
			}
		}
		out = append(out, doc)
	}

	logger.Debug("built document collection", zap.Int("documents", len(out)))
	return out, nil
}

func discover(cfg *Config, loader *docs.Loader, logger *zap.Logger) ([]search.Document, error) {
	pages, err := loader.Walk(cfg.DocsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load docs: %w", err)
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("%s: %w", cfg.DocsDir, ErrNoPages)
	}

	out := make([]search.Document, 0, len(pages))
	seen := make(map[string]string, len(pages))
	for _, page := range pages {
		fm := page.Frontmatter
		slug := docs.Slug(page.Path)

		doc := search.Document{
			ID:       fm.ID,
			Label:    page.Title(),
			Category: fm.Category,
			Href:     fm.Href,
			Content:  search.Text(page.Body),
		}
		if doc.ID == "" {
			doc.ID = slug
		}
		if prev, ok := seen[doc.ID]; ok {
			return nil, fmt.Errorf("%s: id %q already used by %s: %w", page.Path, doc.ID, prev, ErrDuplicateID)
		}
		seen[doc.ID] = page.Path
		if doc.Label == "" {
			doc.Label = slug
		}
		if doc.Href == "" {
			doc.Href = "/docs/" + slug
		}
		if doc.Category == "" {
			if i := strings.Index(page.Path, "/"); i > 0 {
				doc.Category = page.Path[:i]
			}
		}
		out = append(out, doc)
	}

	logger.Debug("discovered documents", zap.String("dir", cfg.DocsDir), zap.Int("documents", len(out)))
	return out, nil
}

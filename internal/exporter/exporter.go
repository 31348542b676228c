// Package exporter writes the document collection for the client-side search.
// The collection is emitted either as a JSON index file or as a ZIP archive
// that also carries every page body as Markdown.
package exporter

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/f4ah6o/nyte-docs-go/internal/docs"
	"github.com/f4ah6o/nyte-docs-go/internal/search"
)

// IndexFile is the name of the index entry inside a ZIP export.
const IndexFile = "search-index.json"

// Index is the JSON document consumed by the client-side search.
type Index struct {
	GeneratedAt string            `json:"generated_at"`
	Documents   []search.Document `json:"documents"`
}

// now is replaced in tests.
var now = time.Now

// WriteIndex encodes docs as an Index to w.
func WriteIndex(w io.Writer, docs []search.Document) error {
	if docs == nil {
		docs = []search.Document{}
	}
	idx := Index{
		GeneratedAt: now().UTC().Format(time.RFC3339),
		Documents:   docs,
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(idx); err != nil {
		return fmt.Errorf("failed to encode index: %w", err)
	}
	return nil
}

// ReadIndex decodes an Index previously written by WriteIndex.
func ReadIndex(r io.Reader) (*Index, error) {
	var idx Index
	if err := json.NewDecoder(r).Decode(&idx); err != nil {
		return nil, fmt.Errorf("failed to decode index: %w", err)
	}
	return &idx, nil
}

// Export writes docs to path. A ".zip" path produces an archive holding
// IndexFile plus one Markdown file per document with content; any other
// path receives the JSON index.
func Export(docs []search.Document, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".zip") {
		err = writeArchive(f, docs)
	} else {
		err = WriteIndex(f, docs)
	}
	if err != nil {
		return err
	}
	return f.Close()
}

func writeArchive(w io.Writer, docs []search.Document) error {
	zw := zip.NewWriter(w)

	entry, err := zw.CreateHeader(&zip.FileHeader{Name: IndexFile, Method: zip.Deflate, Modified: now()})
	if err != nil {
		return fmt.Errorf("failed to add %s: %w", IndexFile, err)
	}
	if err := WriteIndex(entry, docs); err != nil {
		return err
	}

	used := make(map[string]bool, len(docs))
	for _, doc := range docs {
		if doc.Content == nil {
			continue
		}
		name := "pages/" + uniqueName(pageFileName(doc.ID), used)
		entry, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: now()})
		if err != nil {
			return fmt.Errorf("failed to add %s: %w", name, err)
		}
		if _, err := io.WriteString(entry, *doc.Content); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}
	return nil
}

// uniqueName returns name, or name with a "-2", "-3", ... suffix before
// the extension when ids flatten to the same entry.
func uniqueName(name string, used map[string]bool) string {
	base, ext := strings.TrimSuffix(name, ".md"), ".md"
	candidate := name
	for n := 2; used[candidate]; n++ {
		candidate = fmt.Sprintf("%s-%d%s", base, n, ext)
	}
	used[candidate] = true
	return candidate
}

// pageFileName maps a document id to a flat archive entry name; ids may
// contain slashes.
func pageFileName(id string) string {
	slug := strings.ReplaceAll(docs.Slug(id+".md"), "/", "_")
	if slug == "" {
		slug = "page"
	}
	return slug + ".md"
}

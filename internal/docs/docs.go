// Package docs loads the bundled documentation pages.
// It splits YAML frontmatter from Markdown bodies and converts HTML pages
// to Markdown so every page ends up with a plain text body.
package docs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/f4ah6o/nyte-docs-go/internal/converter"
)

// ErrUnsupportedFormat is returned for files that are neither Markdown nor HTML.
var ErrUnsupportedFormat = errors.New("unsupported page format")

var (
	frontmatterRe = regexp.MustCompile(`(?s)^---\r?\n(.*?)\r?\n---\s*(?:\r?\n(.*))?$`)
	headingRe     = regexp.MustCompile(`(?m)^#[ \t]+(.+?)[ \t]*#*[ \t]*\r?$`)
)

// Frontmatter represents the YAML frontmatter metadata of a page.
type Frontmatter struct {
	// ID overrides the identifier derived from the file path.
	ID          string `yaml:"id,omitempty"`
	Title       string `yaml:"title,omitempty"`
	Category    string `yaml:"category,omitempty"`
	Href        string `yaml:"href,omitempty"`
	Description string `yaml:"description,omitempty"`
	// Order sorts pages inside Walk; lower first.
	Order     int    `yaml:"order,omitempty"`
	SourceURL string `yaml:"source_url,omitempty"`
	FetchedAt string `yaml:"fetched_at,omitempty"`
}

// Page is a single loaded documentation file.
type Page struct {
	// Path is the file path relative to the directory it was loaded from,
	// or the path given to ReadFile.
	Path        string
	Frontmatter Frontmatter
	Body        string
}

// Title returns the frontmatter title, falling back to the first level-one
// heading of the body.
func (p *Page) Title() string {
	if p.Frontmatter.Title != "" {
		return p.Frontmatter.Title
	}
	return Title(p.Body)
}

// Parse splits YAML frontmatter from content. Content without frontmatter
// yields a nil Frontmatter and the unchanged content.
func Parse(content string) (*Frontmatter, string, error) {
	matches := frontmatterRe.FindStringSubmatch(content)
	if len(matches) != 3 {
		return nil, content, nil
	}

	var fm Frontmatter
	if err := yaml.Unmarshal([]byte(matches[1]), &fm); err != nil {
		return nil, content, fmt.Errorf("failed to parse frontmatter: %w", err)
	}

	return &fm, strings.TrimLeft(matches[2], "\r\n"), nil
}

// Title returns the text of the first "# " heading in body, or "".
func Title(body string) string {
	m := headingRe.FindStringSubmatch(body)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// Loader reads Markdown and HTML pages from disk.
type Loader struct {
	conv *converter.Converter
}

// New creates a new Loader instance.
func New() *Loader {
	return &Loader{conv: converter.New()}
}

// Supported reports whether path has an extension the Loader can read.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown", ".html", ".htm":
		return true
	}
	return false
}

// ReadFile loads a single page. HTML pages are converted to Markdown and
// their <title> is used when no frontmatter title exists.
func (l *Loader) ReadFile(path string) (*Page, error) {
	if !Supported(path) {
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	page := &Page{Path: path}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		res, err := l.conv.Convert(content)
		if err != nil {
			return nil, fmt.Errorf("failed to convert %s: %w", path, err)
		}
		page.Frontmatter.Title = res.Title
		page.Body = res.Markdown
	default:
		fm, body, err := Parse(string(content))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if fm != nil {
			page.Frontmatter = *fm
		}
		page.Body = body
	}

	return page, nil
}

// Walk loads every supported page under dir, ordered by frontmatter order
// and then by path.
func (l *Loader) Walk(dir string) ([]*Page, error) {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("docs directory not found: %s", dir)
	}

	var pages []*Page
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !Supported(path) {
			return nil
		}

		page, err := l.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		page.Path = filepath.ToSlash(rel)
		pages = append(pages, page)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(pages, func(i, j int) bool {
		if pages[i].Frontmatter.Order != pages[j].Frontmatter.Order {
			return pages[i].Frontmatter.Order < pages[j].Frontmatter.Order
		}
		return pages[i].Path < pages[j].Path
	})

	return pages, nil
}

// Slug turns a relative page path into a URL-friendly identifier:
// "guides/Getting Started.md" becomes "guides/getting-started".
func Slug(rel string) string {
	rel = filepath.ToSlash(rel)
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	rel = strings.TrimSuffix(rel, "/index")

	var b strings.Builder
	dash := false
	for _, ch := range strings.ToLower(rel) {
		switch {
		case (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9') || ch == '/' || ch == '.' || ch == '_':
			b.WriteRune(ch)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteRune('-')
				dash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

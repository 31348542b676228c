// Package converter turns HTML documentation pages into Markdown.
// It extracts the main content, drops navigation chrome and scripts,
// and converts what remains to Markdown.
package converter

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"codeberg.org/readeck/go-readability/v2"
	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
	"gopkg.in/yaml.v3"
)

var blankLinesRe = regexp.MustCompile(`\n{3,}`)

// untitled is written as frontmatter title for pages without <title> or <h1>.
const untitled = "Untitled"

// Converter converts HTML content to Markdown.
type Converter struct {
	mdConverter *md.Converter
	logger      *zap.Logger
}

// Result is the outcome of converting one HTML page.
type Result struct {
	Title    string
	Markdown string
}

// Meta is written as YAML frontmatter by ConvertFile.
type Meta struct {
	Title     string `yaml:"title"`
	Category  string `yaml:"category,omitempty"`
	Href      string `yaml:"href,omitempty"`
	SourceURL string `yaml:"source_url,omitempty"`
	FetchedAt string `yaml:"fetched_at,omitempty"`
}

// Option configures a Converter.
type Option func(*Converter)

// WithLogger sets the logger used for conversion warnings.
func WithLogger(l *zap.Logger) Option {
	return func(c *Converter) { c.logger = l }
}

// New creates a new Converter instance.
func New(opts ...Option) *Converter {
	c := &Converter{
		mdConverter: md.NewConverter("", true, nil),
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert extracts the main content of an HTML page and returns it as
// Markdown together with the page title. A page without any content
// element yields an empty Markdown body.
func (c *Converter) Convert(htmlContent []byte) (*Result, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(decodeHTML(htmlContent)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var title string
	if titleText := strings.TrimSpace(doc.Find("title").First().Text()); titleText != "" {
		title = titleText
	} else if h1Text := strings.TrimSpace(doc.Find("h1").First().Text()); h1Text != "" {
		title = h1Text
	}

	var mainContent *goquery.Selection
	for _, selector := range []string{"main", "article", "div.content"} {
		if sel := doc.Find(selector).First(); sel.Length() > 0 {
			mainContent = sel
			break
		}
	}
	if mainContent == nil {
		mainContent = c.readableContent(doc)
	}
	if mainContent == nil || mainContent.Length() == 0 {
		c.logger.Warn("no main content found", zap.String("title", title))
		return &Result{Title: title}, nil
	}

	c.cleanHTML(mainContent)

	mainHTML, err := mainContent.Html()
	if err != nil {
		return nil, fmt.Errorf("failed to get HTML: %w", err)
	}

	markdown, err := c.mdConverter.ConvertString(mainHTML)
	if err != nil {
		return nil, fmt.Errorf("failed to convert to markdown: %w", err)
	}

	return &Result{Title: title, Markdown: c.postProcessMarkdown(markdown)}, nil
}

// minReadableText is the body text length below which readability
// extraction is skipped and the whole body is converted.
const minReadableText = 500

// readableContent extracts the article of a page that has no semantic
// content element. Short pages and failed extractions keep the full body.
func (c *Converter) readableContent(doc *goquery.Document) *goquery.Selection {
	body := doc.Find("body").First()
	if len(strings.TrimSpace(body.Text())) < minReadableText {
		return body
	}

	raw, err := doc.Html()
	if err != nil {
		return body
	}
	article, err := readability.FromReader(strings.NewReader(raw), nil)
	if err != nil {
		c.logger.Debug("readability extraction failed", zap.Error(err))
		return body
	}
	var buf strings.Builder
	if err := article.RenderHTML(&buf); err != nil || strings.TrimSpace(buf.String()) == "" {
		return body
	}

	extracted, err := goquery.NewDocumentFromReader(strings.NewReader(buf.String()))
	if err != nil {
		return body
	}
	return extracted.Find("body").First()
}

// ConvertFile converts the HTML file at htmlPath and writes Markdown with
// YAML frontmatter to outputPath. An empty meta.Title is filled from the page.
func (c *Converter) ConvertFile(htmlPath, outputPath string, meta Meta) error {
	htmlContent, err := os.ReadFile(htmlPath)
	if err != nil {
		return fmt.Errorf("failed to read HTML file: %w", err)
	}
	return c.WriteMarkdown(htmlContent, outputPath, meta)
}

// WriteMarkdown converts htmlContent and writes it to outputPath with
// frontmatter built from meta.
func (c *Converter) WriteMarkdown(htmlContent []byte, outputPath string, meta Meta) error {
	res, err := c.Convert(htmlContent)
	if err != nil {
		return err
	}
	if meta.Title == "" {
		meta.Title = res.Title
	}
	if meta.Title == "" {
		meta.Title = untitled
	}

	fm, err := yaml.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal frontmatter: %w", err)
	}
	finalMD := "---\n" + string(fm) + "---\n\n" + res.Markdown

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(outputPath, []byte(finalMD), 0644); err != nil {
		return fmt.Errorf("failed to write markdown file: %w", err)
	}

	c.logger.Debug("converted page", zap.String("output", outputPath), zap.String("title", meta.Title))
	return nil
}

func (c *Converter) cleanHTML(sel *goquery.Selection) {
	// Remove unwanted elements
	unwantedSelectors := []string{
		"script", "style", "meta", "link", "noscript", "iframe", "svg",
		".sidebar", "header", "footer", ".nav", ".menu", "#sidebar",
		".navigation", ".toc", "#toc", ".footer", "#footer",
		"nav", "aside", "button", ".copy-button", ".parallax", "[aria-hidden=true]",
	}

	for _, selector := range unwantedSelectors {
		sel.Find(selector).Remove()
	}
}

func (c *Converter) postProcessMarkdown(md string) string {
	md = blankLinesRe.ReplaceAllString(md, "\n\n")

	// Remove trailing whitespace from each line
	lines := strings.Split(md, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// charsetPatterns locate a declared charset in raw HTML bytes, in order of
// preference: <meta charset>, then http-equiv Content-Type in either
// attribute order.
var charsetPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<meta[^>]+charset=["']?([^"'\s>]+)`),
	regexp.MustCompile(`(?i)<meta[^>]+http-equiv=["']?Content-Type["']?[^>]+content=["']?[^"']*charset=([^"'\s;>]+)`),
	regexp.MustCompile(`(?i)<meta[^>]+content=["']?[^"']*charset=([^"'\s;>]+)[^>]+http-equiv=["']?Content-Type["']?`),
}

// decodeHTML decodes body using the charset declared in its meta tags,
// falling back to UTF-8.
func decodeHTML(body []byte) string {
	if enc := encodingFromMeta(body); enc != nil {
		if decoded, err := decodeWithEncoding(body, enc); err == nil {
			return decoded
		}
	}
	return string(body)
}

// encodingFromMeta works on raw bytes so a wrong guess never corrupts the
// document before it is parsed. A UTF-8 BOM short-circuits to nil.
func encodingFromMeta(body []byte) encoding.Encoding {
	if bytes.HasPrefix(body, []byte{0xEF, 0xBB, 0xBF}) {
		return nil
	}
	for _, re := range charsetPatterns {
		sub := re.FindSubmatch(body)
		if len(sub) < 2 {
			continue
		}
		if enc, err := htmlindex.Get(string(sub[1])); err == nil {
			return enc
		}
	}
	return nil
}

func decodeWithEncoding(body []byte, enc encoding.Encoding) (string, error) {
	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(body), enc.NewDecoder()))
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

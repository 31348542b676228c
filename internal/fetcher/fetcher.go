// Package fetcher crawls a deployed documentation site.
// The crawl stays on the start URL's host and below its path, honours
// robots.txt and skips non-HTML resources.
package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// UserAgent identifies the crawler to servers and robots.txt.
const UserAgent = "nytedocs/1.0 (+https://github.com/f4ah6o/nyte-docs-go)"

// maxBodyBytes caps a single downloaded page.
const maxBodyBytes = 8 << 20

// Options tunes a crawl. Zero values select defaults.
type Options struct {
	MaxDepth int
	// MaxPages stops the crawl after this many pages; 0 means unlimited.
	MaxPages int
	// Delay is the pause between requests. robots.txt Crawl-delay wins
	// when it is longer.
	Delay         time.Duration
	IgnoreRobots  bool
	Client        *http.Client
	RobotsChecker *RobotsChecker
}

// Page is one downloaded HTML page.
type Page struct {
	URL string
	// Rel is the URL path relative to the crawl root, without leading slash.
	Rel  string
	HTML []byte
}

// Fetcher downloads the pages of a documentation site.
type Fetcher struct {
	opts   Options
	client *http.Client
	robots *RobotsChecker
	logger *zap.Logger
}

// New creates a Fetcher. A nil logger disables logging.
func New(opts Options, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = 5
	}
	if opts.Delay < 0 {
		opts.Delay = 0
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	robots := opts.RobotsChecker
	if robots == nil && !opts.IgnoreRobots {
		robots = NewRobotsChecker(UserAgent, client, logger)
	}
	return &Fetcher{opts: opts, client: client, robots: robots, logger: logger}
}

type queued struct {
	url   string
	depth int
}

// Fetch crawls breadth-first from startURL and returns the pages in crawl
// order. Individual page failures are logged and skipped; only an invalid
// start URL or a cancelled context fail the crawl.
func (f *Fetcher) Fetch(ctx context.Context, startURL string) ([]Page, error) {
	root, err := url.Parse(startURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if root.Scheme != "http" && root.Scheme != "https" {
		return nil, fmt.Errorf("invalid URL scheme: %s. Only http and https are supported", root.Scheme)
	}
	if root.Host == "" {
		return nil, fmt.Errorf("invalid URL: domain is missing")
	}
	root.Fragment = ""
	root.RawQuery = ""
	prefix := scopePrefix(root.Path)

	f.logger.Info("crawl started", zap.String("url", root.String()), zap.String("scope", root.Host+prefix))
	start := time.Now()

	visited := map[string]bool{}
	queue := []queued{{url: root.String(), depth: 0}}
	var pages []Page

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return pages, err
		}
		if f.opts.MaxPages > 0 && len(pages) >= f.opts.MaxPages {
			break
		}

		item := queue[0]
		queue = queue[1:]
		if visited[item.url] {
			continue
		}
		visited[item.url] = true

		if f.robots != nil && !f.robots.IsAllowed(ctx, item.url) {
			f.logger.Debug("disallowed by robots.txt", zap.String("url", item.url))
			continue
		}

		if len(pages) > 0 {
			if err := f.wait(ctx, item.url); err != nil {
				return pages, err
			}
		}

		body, err := f.download(ctx, item.url)
		if err != nil {
			f.logger.Warn("fetch failed", zap.String("url", item.url), zap.Error(err))
			continue
		}
		if body == nil {
			continue
		}

		u, _ := url.Parse(item.url)
		pages = append(pages, Page{
			URL:  item.url,
			Rel:  strings.TrimPrefix(strings.TrimPrefix(u.Path, prefix), "/"),
			HTML: body,
		})
		f.logger.Debug("fetched page", zap.String("url", item.url), zap.Int("depth", item.depth))

		if item.depth >= f.opts.MaxDepth {
			continue
		}
		doc, err := html.Parse(bytes.NewReader(body))
		if err != nil {
			continue
		}
		for _, link := range extractLinks(doc, u) {
			if !visited[link] && inScope(link, root.Host, prefix) {
				queue = append(queue, queued{url: link, depth: item.depth + 1})
			}
		}
	}

	f.logger.Info("crawl complete", zap.Int("pages", len(pages)), zap.Duration("elapsed", time.Since(start)))
	return pages, nil
}

func (f *Fetcher) wait(ctx context.Context, target string) error {
	delay := f.opts.Delay
	if f.robots != nil {
		if d := f.robots.CrawlDelay(ctx, target); d > delay {
			delay = d
		}
	}
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// download returns the page body, or nil for non-HTML responses.
func (f *Fetcher) download(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "text/html") {
		return nil, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	return body, nil
}

// extractLinks returns the absolute, fragment- and query-free targets of all <a href>
// elements in n.
func extractLinks(n *html.Node, base *url.URL) []string {
	var links []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key != "href" {
					continue
				}
				ref, err := url.Parse(strings.TrimSpace(attr.Val))
				if err != nil {
					break
				}
				resolved := base.ResolveReference(ref)
				resolved.Fragment = ""
				resolved.RawQuery = ""
				links = append(links, resolved.String())
				break
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return links
}

// scopePrefix returns the directory the crawl is confined to:
// "/docs/intro" crawls "/docs/", "/docs/" stays "/docs/".
func scopePrefix(p string) string {
	if p == "" || p == "/" {
		return "/"
	}
	if strings.HasSuffix(p, "/") {
		return p
	}
	dir := path.Dir(p)
	if dir == "/" {
		return "/"
	}
	return dir + "/"
}

func inScope(link, host, prefix string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if u.Host != host || isNonHTMLResource(u.Path) {
		return false
	}
	return strings.HasPrefix(u.Path, prefix) || u.Path+"/" == prefix
}

func isNonHTMLResource(p string) bool {
	switch strings.ToLower(path.Ext(p)) {
	case ".css", ".js", ".mjs", ".map", ".png", ".jpg", ".jpeg", ".gif", ".svg", ".ico", ".webp",
		".woff", ".woff2", ".ttf", ".eot", ".zip", ".tar", ".gz", ".pdf",
		".xml", ".json", ".txt":
		return true
	}
	return false
}

package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathMatches(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		pattern string
		want    bool
	}{
		{"exact match", "/docs/ng/", "/docs/ng/", true},
		{"prefix match", "/docs/ng/page.html", "/docs/ng/", true},
		{"no match", "/docs/ok/", "/docs/ng/", false},
		{"root match", "/", "/", true},
		{"empty pattern", "/", "", false},

		{"wildcard middle", "/docs/test/page.html", "/docs/*/page.html", true},
		{"wildcard end", "/docs/anything", "/docs/*", true},
		{"wildcard start", "/anything/docs", "*/docs", true},
		{"wildcard prefix mismatch", "/api/docs", "/docs/*", false},

		{"end anchor match", "/page.html", "/page.html$", true},
		{"end anchor no match", "/page.html/extra", "/page.html$", false},

		{"wildcard with anchor", "/docs/test.html", "/*.html$", true},
		{"wildcard with anchor no match", "/docs/test.html/", "/*.html$", false},
		{"wildcard anchor repeated suffix", "/a.html/b.html", "/*.html$", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pathMatches(tt.path, tt.pattern), "pathMatches(%q, %q)", tt.path, tt.pattern)
		})
	}
}

func TestRobotsChecker_Parse(t *testing.T) {
	r := NewRobotsChecker("nytedocs/1.0", nil, nil)

	tests := []struct {
		name        string
		content     string
		testPath    string
		wantAllowed bool
	}{
		{
			name:        "simple disallow",
			content:     "User-agent: *\nDisallow: /private/\n",
			testPath:    "/private/page.html",
			wantAllowed: false,
		},
		{
			name:        "allow takes precedence",
			content:     "User-agent: *\nDisallow: /docs/\nAllow: /docs/public/\n",
			testPath:    "/docs/public/page.html",
			wantAllowed: true,
		},
		{
			name:        "empty disallow means allow all",
			content:     "User-agent: *\nDisallow:\n",
			testPath:    "/anything/page.html",
			wantAllowed: true,
		},
		{
			name:        "other user agent ignored",
			content:     "User-agent: Googlebot\nDisallow: /\n\nUser-agent: *\nDisallow: /private/\n",
			testPath:    "/public/page.html",
			wantAllowed: true,
		},
		{
			name:        "our user agent blocked",
			content:     "User-agent: nytedocs\nDisallow: /blocked/\n\nUser-agent: *\nDisallow:\n",
			testPath:    "/blocked/page.html",
			wantAllowed: false,
		},
		{
			name:        "comments stripped",
			content:     "User-agent: * # everyone\nDisallow: /drafts/ # unpublished\n",
			testPath:    "/drafts/rpc",
			wantAllowed: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := r.parse(strings.NewReader(tt.content))
			require.NotNil(t, rules)
			assert.Equal(t, tt.wantAllowed, rules.allows(tt.testPath))
		})
	}
}

func TestRobotsChecker_ParseCrawlDelay(t *testing.T) {
	r := NewRobotsChecker("nytedocs", nil, nil)
	rules := r.parse(strings.NewReader("User-agent: *\nCrawl-delay: 1.5\n"))
	assert.Equal(t, 1500*time.Millisecond, rules.crawlDelay)
}

func TestRobotsChecker_SetBasePath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"/nyte", "/nyte"},
		{"nyte", "/nyte"},
		{"/nyte/", "/nyte"},
		{"", ""},
		{"/", ""},
	}

	for _, tt := range tests {
		r := NewRobotsChecker("test-bot", nil, nil)
		r.SetBasePath(tt.input)
		assert.Equal(t, tt.expected, r.basePath, "SetBasePath(%q)", tt.input)
	}
}

func TestRobotsChecker_IsAllowed(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			hits.Add(1)
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /docs/internal/\nCrawl-delay: 2\n"))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	ctx := context.Background()
	r := NewRobotsChecker("nytedocs", srv.Client(), nil)

	assert.True(t, r.IsAllowed(ctx, srv.URL+"/docs/rpc"))
	assert.False(t, r.IsAllowed(ctx, srv.URL+"/docs/internal/notes"))
	assert.Equal(t, 2*time.Second, r.CrawlDelay(ctx, srv.URL+"/"))
	assert.Equal(t, int32(1), hits.Load(), "robots.txt is cached")
}

func TestRobotsChecker_BasePathFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/nyte/robots.txt" {
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /nyte/private/\n"))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	r := NewRobotsChecker("nytedocs", srv.Client(), nil)
	r.SetBasePath("nyte")

	assert.False(t, r.IsAllowed(context.Background(), srv.URL+"/nyte/private/x"))
	assert.True(t, r.IsAllowed(context.Background(), srv.URL+"/nyte/docs"))
}

func TestRobotsChecker_MissingRobotsAllowsAll(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	r := NewRobotsChecker("nytedocs", srv.Client(), nil)
	assert.True(t, r.IsAllowed(context.Background(), srv.URL+"/anything"))
	assert.Zero(t, r.CrawlDelay(context.Background(), srv.URL))
}

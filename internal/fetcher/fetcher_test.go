package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func docsSite(t *testing.T) *httptest.Server {
	t.Helper()
	pages := map[string]string{
		"/docs/":                `<a href="/docs/rpc">RPC</a> <a href="routing#top">Routing</a> <a href="/blog/">Blog</a> <a href="https://elsewhere.example/docs/">x</a> <a href="/docs/logo.png">logo</a>`,
		"/docs/rpc":             `<main><h1>RPC</h1><a href="/docs/internal/secret">s</a></main>`,
		"/docs/routing":         `<main><h1>Routing</h1><a href="/docs/">back</a> <a href="/docs/deep/one">deep</a></main>`,
		"/docs/deep/one":        `<main><a href="/docs/deep/two">two</a></main>`,
		"/docs/deep/two":        `<main>two</main>`,
		"/blog/":                `<main>blog</main>`,
		"/docs/internal/secret": `<main>secret</main>`,
	}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/robots.txt":
			fmt.Fprint(w, "User-agent: *\nDisallow: /docs/internal/\n")
			return
		case "/docs/logo.png":
			w.Header().Set("Content-Type", "image/png")
			fmt.Fprint(w, "png")
			return
		}
		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, "<html><head><title>%s</title></head><body>%s</body></html>", r.URL.Path, body)
	}))
}

func rels(pages []Page) []string {
	out := make([]string, len(pages))
	for i, p := range pages {
		out[i] = p.Rel
	}
	return out
}

func TestNewFetcher(t *testing.T) {
	f := New(Options{}, nil)
	require.NotNil(t, f)
	assert.Equal(t, 5, f.opts.MaxDepth)
	assert.NotNil(t, f.robots)

	f = New(Options{IgnoreRobots: true}, nil)
	assert.Nil(t, f.robots)
}

func TestFetch(t *testing.T) {
	srv := docsSite(t)
	defer srv.Close()

	f := New(Options{Client: srv.Client()}, nil)
	pages, err := f.Fetch(context.Background(), srv.URL+"/docs/")
	require.NoError(t, err)

	assert.Equal(t, []string{"", "rpc", "routing", "deep/one", "deep/two"}, rels(pages))
	assert.Contains(t, string(pages[1].HTML), "<h1>RPC</h1>")
}

func TestFetch_IgnoreRobots(t *testing.T) {
	srv := docsSite(t)
	defer srv.Close()

	f := New(Options{Client: srv.Client(), IgnoreRobots: true}, nil)
	pages, err := f.Fetch(context.Background(), srv.URL+"/docs/")
	require.NoError(t, err)
	assert.Contains(t, rels(pages), "internal/secret")
}

func TestFetch_Limits(t *testing.T) {
	srv := docsSite(t)
	defer srv.Close()

	f := New(Options{Client: srv.Client(), MaxPages: 2}, nil)
	pages, err := f.Fetch(context.Background(), srv.URL+"/docs/")
	require.NoError(t, err)
	assert.Len(t, pages, 2)

	f = New(Options{Client: srv.Client(), MaxDepth: 1}, nil)
	pages, err = f.Fetch(context.Background(), srv.URL+"/docs/")
	require.NoError(t, err)
	assert.Equal(t, []string{"", "rpc", "routing"}, rels(pages))
}

func TestFetch_InvalidURL(t *testing.T) {
	f := New(Options{}, nil)
	for _, u := range []string{"ftp://example.com/docs", "http://", "::bad"} {
		_, err := f.Fetch(context.Background(), u)
		assert.Error(t, err, u)
	}
}

func TestFetch_Cancelled(t *testing.T) {
	srv := docsSite(t)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Options{Client: srv.Client()}, nil).Fetch(ctx, srv.URL+"/docs/")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetch_QueryVariantsFetchedOnce(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		switch r.URL.Path {
		case "/docs/":
			fmt.Fprint(w, `<a href="/docs/rpc?tab=client">c</a> <a href="/docs/rpc?tab=server">s</a>`)
		case "/docs/rpc":
			hits.Add(1)
			fmt.Fprint(w, `<main>rpc</main>`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	pages, err := New(Options{Client: srv.Client(), IgnoreRobots: true}, nil).Fetch(context.Background(), srv.URL+"/docs/?lang=en")
	require.NoError(t, err)
	assert.Equal(t, []string{"", "rpc"}, rels(pages))
	assert.Equal(t, srv.URL+"/docs/rpc", pages[1].URL)
	assert.Equal(t, int32(1), hits.Load())
}

func TestExtractLinks(t *testing.T) {
	doc, err := html.Parse(strings.NewReader(`<a href="../api#x">a</a><a href=" /abs?page=2 ">b</a><a>none</a>`))
	require.NoError(t, err)
	base, _ := url.Parse("https://nyte.dev/docs/guide/intro")

	assert.Equal(t, []string{"https://nyte.dev/docs/api", "https://nyte.dev/abs"}, extractLinks(doc, base))
}

func TestScopePrefix(t *testing.T) {
	assert.Equal(t, "/", scopePrefix(""))
	assert.Equal(t, "/", scopePrefix("/"))
	assert.Equal(t, "/docs/", scopePrefix("/docs/"))
	assert.Equal(t, "/docs/", scopePrefix("/docs/intro"))
	assert.Equal(t, "/", scopePrefix("/index.html"))
}

func TestIsNonHTMLResource(t *testing.T) {
	assert.True(t, isNonHTMLResource("/static/app.JS"))
	assert.True(t, isNonHTMLResource("/img/logo.svg"))
	assert.False(t, isNonHTMLResource("/docs/rpc"))
	assert.False(t, isNonHTMLResource("/docs/rpc.html"))
}

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/f4ah6o/nyte-docs-go/internal/docs"
	"github.com/f4ah6o/nyte-docs-go/internal/exporter"
	"github.com/f4ah6o/nyte-docs-go/internal/search"
	"github.com/f4ah6o/nyte-docs-go/internal/site"
)

const siteTOML = `name = "Nyte.js"

[[sections]]
title = "Nyte.js"

[[sections.pages]]
id = "rpc"
label = "RPC System"
href = "/docs/nyte/rpc"
file = "rpc.md"

[[sections.pages]]
id = "routing"
label = "Routing"
href = "/docs/nyte/routing"
file = "routing.md"
`

func writeSite(t *testing.T, toml string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "docs"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docs", "rpc.md"),
		[]byte("---\ntitle: RPC\n---\n\nNyte.js provides a built-in RPC system for calling server functions."), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docs", "routing.md"),
		[]byte("# Routing\n\nFiles under pages/ become routes."), 0644))
	path := filepath.Join(dir, site.DefaultConfigFile)
	require.NoError(t, os.WriteFile(path, []byte(toml), 0644))
	return path
}

func resetFlags() {
	cfgFile = site.DefaultConfigFile
	debug = false
	searchLimit = 0
	searchJSON = false
	importOut = "docs"
	importCategory = ""
	importMaxPages = 0
	importMaxDepth = 5
	importDelay = 500 * time.Millisecond
	importIgnoreRobots = false
	serveWatch = false
	servePort = 0
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	color.NoColor = true

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootCmd_Subcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"search", "validate", "export", "import", "serve", "version"} {
		assert.True(t, names[want], "missing command %q", want)
	}
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "nytedocs version dev\n", out)
}

func TestSearchCmd(t *testing.T) {
	cfg := writeSite(t, siteTOML)

	t.Run("text output", func(t *testing.T) {
		out, err := execute(t, "search", "--config", cfg, "rpc")
		require.NoError(t, err)
		assert.Contains(t, out, "1. RPC System")
		assert.Contains(t, out, "Score: 65")
		assert.Contains(t, out, "/docs/nyte/rpc")
	})

	t.Run("json output", func(t *testing.T) {
		out, err := execute(t, "search", "--config", cfg, "--json", "rpc")
		require.NoError(t, err)

		var hits []search.Hit
		require.NoError(t, json.Unmarshal([]byte(out), &hits))
		require.Len(t, hits, 1)
		assert.Equal(t, "rpc", hits[0].ID)
		assert.Equal(t, "Nyte.js", hits[0].Category)
	})

	t.Run("multi-word query", func(t *testing.T) {
		out, err := execute(t, "search", "--config", cfg, "--json", "--limit", "1", "nyte", "routes")
		require.NoError(t, err)

		var hits []search.Hit
		require.NoError(t, json.Unmarshal([]byte(out), &hits))
		assert.Len(t, hits, 1)
	})

	t.Run("blank query", func(t *testing.T) {
		out, err := execute(t, "search", "--config", cfg)
		require.NoError(t, err)
		assert.Contains(t, out, "Type a query to search the documentation.")
	})

	t.Run("no matches", func(t *testing.T) {
		out, err := execute(t, "search", "--config", cfg, "graphql")
		require.NoError(t, err)
		assert.Contains(t, out, "No matches found for 'graphql'.")
	})

	t.Run("missing config", func(t *testing.T) {
		_, err := execute(t, "search", "--config", filepath.Join(t.TempDir(), "site.toml"), "rpc")
		assert.Error(t, err)
	})
}

func TestValidateCmd(t *testing.T) {
	t.Run("valid collection", func(t *testing.T) {
		out, err := execute(t, "validate", "--config", writeSite(t, siteTOML))
		require.NoError(t, err)
		assert.Contains(t, out, "2 documents")
		assert.Contains(t, out, "Validation passed.")
	})

	t.Run("duplicate id fails", func(t *testing.T) {
		dup := siteTOML + `
[[sections.pages]]
id = "rpc"
label = "RPC Again"
href = "/docs/nyte/rpc-again"
`
		out, err := execute(t, "validate", "--config", writeSite(t, dup))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "validation failed")
		assert.Contains(t, out, "ERROR")
	})
}

func TestExportCmd(t *testing.T) {
	cfg := writeSite(t, siteTOML)
	target := filepath.Join(t.TempDir(), "index.json")

	out, err := execute(t, "export", "--config", cfg, target)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 2 documents")

	f, err := os.Open(target)
	require.NoError(t, err)
	defer f.Close()
	idx, err := exporter.ReadIndex(f)
	require.NoError(t, err)
	assert.Len(t, idx.Documents, 2)
}

func TestImportCmd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body string
		switch r.URL.Path {
		case "/docs/":
			body = `<main><h1>Nyte.js</h1><p>Start here.</p><a href="/docs/rpc">RPC</a></main>`
		case "/docs/rpc":
			body = `<main><h1>RPC System</h1><p>Call server functions from the client.</p></main>`
		default:
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, "<html><head><title>%s</title></head><body>%s</body></html>", r.URL.Path, body)
	}))
	defer srv.Close()

	outDir := t.TempDir()
	out, err := execute(t, "import", "--out", outDir, "--delay", "0", "--category", "Nyte.js", srv.URL+"/docs/")
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 of 2 pages")

	page, err := docs.New().ReadFile(filepath.Join(outDir, "rpc.md"))
	require.NoError(t, err)
	assert.Equal(t, "Nyte.js", page.Frontmatter.Category)
	assert.Equal(t, srv.URL+"/docs/rpc", page.Frontmatter.SourceURL)
	assert.Contains(t, page.Body, "Call server functions from the client.")

	assert.FileExists(t, filepath.Join(outDir, "index.md"))
}

func TestImportCmd_InvalidURL(t *testing.T) {
	_, err := execute(t, "import", "--out", t.TempDir(), "ftp://nyte.dev/docs")
	assert.Error(t, err)
}

func TestPageFile(t *testing.T) {
	assert.Equal(t, "index.md", pageFile(""))
	assert.Equal(t, "rpc.md", pageFile("rpc"))
	assert.Equal(t, "rpc.md", pageFile("rpc.html"))
	assert.Equal(t, "guide/index.md", pageFile("guide/"))
	assert.Equal(t, "guide/getting-started.md", pageFile("guide/Getting Started"))
}

func TestWatchRoots(t *testing.T) {
	inside := writeSite(t, siteTOML)
	cfg, err := site.Load(inside)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Dir(cfg.Path())}, watchRoots(cfg))

	cfg.DocsDir = t.TempDir()
	assert.Equal(t, []string{filepath.Dir(cfg.Path()), cfg.DocsDir}, watchRoots(cfg))
}

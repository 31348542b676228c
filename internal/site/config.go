// Package site loads the documentation site configuration and assembles
// the searchable document collection from it.
package site

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// DefaultConfigFile is looked up in the working directory when no path is given.
const DefaultConfigFile = "site.toml"

// ErrNoPages is returned when neither the configuration nor the docs
// directory yields a single page.
var ErrNoPages = errors.New("no documentation pages found")

// ErrDuplicateID is returned when two discovered pages resolve to the same
// document id, e.g. guides.md and guides/index.md.
var ErrDuplicateID = errors.New("duplicate document id")

// Config represents the structure of site.toml.
type Config struct {
	Name      string       `toml:"name"`
	BaseURL   string       `toml:"base_url"`
	DocsDir   string       `toml:"docs_dir"`
	StaticDir string       `toml:"static_dir"`
	Search    SearchConfig `toml:"search"`
	Server    ServerConfig `toml:"server"`
	Sections  []Section    `toml:"sections"`

	// path is the file the config was loaded from.
	path string
}

// SearchConfig holds result limits applied by the CLI and the server.
type SearchConfig struct {
	DefaultLimit int `toml:"default_limit"`
	MaxLimit     int `toml:"max_limit"`
}

// ServerConfig holds preview server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Section groups pages in the sidebar. Its title is the default category
// of its pages.
type Section struct {
	Title string `toml:"title"`
	Pages []Page `toml:"pages"`
}

// Page is one navigable documentation entry.
type Page struct {
	ID       string `toml:"id"`
	Label    string `toml:"label"`
	Category string `toml:"category"`
	Href     string `toml:"href"`
	// File is relative to DocsDir. Empty means the page has no body.
	File string `toml:"file"`
}

// Load reads and parses the config file at path, applies defaults and
// resolves relative directories against the config file's directory.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	ApplyDefaults(&cfg)

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}
	cfg.path = abs
	configDir := filepath.Dir(abs)
	cfg.DocsDir = resolvePath(cfg.DocsDir, configDir)
	if cfg.StaticDir != "" {
		cfg.StaticDir = resolvePath(cfg.StaticDir, configDir)
	}

	return &cfg, nil
}

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.DocsDir == "" {
		cfg.DocsDir = "docs"
	}
	if cfg.Search.DefaultLimit <= 0 {
		cfg.Search.DefaultLimit = 10
	}
	if cfg.Search.MaxLimit <= 0 {
		cfg.Search.MaxLimit = 50
	}
	if cfg.Search.MaxLimit < cfg.Search.DefaultLimit {
		cfg.Search.MaxLimit = cfg.Search.DefaultLimit
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
}

// Path returns the absolute path of the loaded config file, or "" for a
// config built in code.
func (c *Config) Path() string {
	return c.path
}

// Pages flattens all sections in configuration order. A page without a
// category inherits its section title.
func (c *Config) Pages() []Page {
	var pages []Page
	for _, section := range c.Sections {
		for _, p := range section.Pages {
			if p.Category == "" {
				p.Category = section.Title
			}
			pages = append(pages, p)
		}
	}
	return pages
}

// ClampLimit returns limit bounded by the configured maximum, or the
// default limit when limit is not positive.
func (c *Config) ClampLimit(limit int) int {
	if limit <= 0 {
		return c.Search.DefaultLimit
	}
	return min(limit, c.Search.MaxLimit)
}

func resolvePath(path, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(configDir, path)
}

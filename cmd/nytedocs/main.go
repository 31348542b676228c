// Package main is the entry point for nytedocs, the documentation tool of
// the Nyte.js site: it searches, validates, exports and previews the docs
// collection and imports pages from a deployed documentation site.
package main

import (
	"fmt"
	"os"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

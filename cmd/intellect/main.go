// Command intellect explores a timeline graph of scholars and their
// achievements.
//
// Usage:
//
//	intellect                      # interactive terminal view
//	intellect build                # data/*.yml -> public/graph-data.json
//	intellect snapshot graph.svg   # settle the layout and render it
//	intellect export graph.sqlite3 # document plus positions as SQLite
//	intellect serve --addr :8080   # HTTP host
//	intellect diff a.json b.sqlite3
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		Bad.Fprintf(os.Stderr, "intellect: %v\n", err)
		os.Exit(1)
	}
}

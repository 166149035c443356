package cli

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/roach88/bouttime/internal/catalog"
	"github.com/roach88/bouttime/internal/store"
)

// isDatabasePath reports whether path names a SQLite catalog rather than a
// catalog file.
func isDatabasePath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}

// LoadCatalog loads the catalog at path: the built-in catalog when path is
// empty, a SQLite database for .db/.sqlite/.sqlite3, otherwise a YAML, JSON
// or CUE file.
//
// Errors are *catalog.ResourceError or *catalog.FormatError.
func LoadCatalog(ctx context.Context, path string) (*catalog.Catalog, error) {
	switch {
	case path == "":
		return catalog.Default(), nil
	case isDatabasePath(path):
		st, err := store.OpenExisting(path)
		if err != nil {
			return nil, err
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				slog.Error("error closing catalog database", "path", path, "error", closeErr)
			}
		}()
		return st.LoadCatalog(ctx)
	default:
		return catalog.LoadFile(path)
	}
}

// newLogger returns the CLI logger: text on w at level, debug when verbose.
func newLogger(w io.Writer, level slog.Level, verbose bool) *slog.Logger {
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

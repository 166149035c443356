// Package catalog holds the historical events a game draws from.
//
// A Catalog is loaded once and shared read-only by every session. Each
// Event carries a display name, an opaque detail reference (usually a URL
// the front end may open) and an integer chronology key. Keys are unique
// within a catalog; two events with the same key are rejected at load time
// because the game cannot order them.
//
// Sources:
//   - YAML / JSON files: a top-level sequence of {name, detail, order}
//   - CUE files: an `events` list checked against an embedded schema
//   - the built-in catalog embedded in the binary (Default)
//
// The SQLite-backed source lives in internal/store.
package catalog

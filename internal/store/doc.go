// Package store keeps an event catalog in a SQLite database.
//
// The database is a catalog source only: `bouttime catalog import` writes
// it, and play/list/validate read it back. Nothing about a game in
// progress is stored.
//
// # Layout
//
//   - events: one row per event, keyed by its position in the catalog
//   - catalog_meta: key/value pairs describing the last import
//
// Rows are always read back ORDER BY position, so a catalog survives an
// import/load round trip with its order intact.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON
//
// Schema changes are applied by user_version migrations in Open.
package store

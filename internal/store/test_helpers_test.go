package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/bouttime/internal/catalog"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestCatalog creates a small catalog deliberately not in
// chronological order.
func createTestCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New([]catalog.Event{
		{Name: "Moon landing", Detail: "https://en.wikipedia.org/wiki/Apollo_11", Order: 1969},
		{Name: "Printing press", Detail: "https://en.wikipedia.org/wiki/Printing_press", Order: 1440},
		{Name: "First iPhone", Detail: "https://en.wikipedia.org/wiki/IPhone_(1st_generation)", Order: 2007},
		{Name: "Magna Carta", Detail: "https://en.wikipedia.org/wiki/Magna_Carta", Order: 1215},
		{Name: "Fall of the Berlin Wall", Detail: "https://en.wikipedia.org/wiki/Berlin_Wall", Order: 1989},
	})
	if err != nil {
		t.Fatalf("catalog.New() failed: %v", err)
	}
	return c
}

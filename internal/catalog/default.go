package catalog

import (
	"embed"
	"sync"
)

//go:embed data/default.yaml
var defaultFS embed.FS

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the catalog compiled into the binary.
//
// The embedded data is validated by tests, so a load failure here is a
// build defect and panics.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := LoadFS(defaultFS, "data/default.yaml")
		if err != nil {
			panic("catalog: embedded default catalog: " + err.Error())
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bouttime/internal/catalog"
	"github.com/roach88/bouttime/internal/store"
)

const smallCatalog = `
- { name: Third, detail: "https://example.org/3", order: 1903 }
- { name: First, detail: "https://example.org/1", order: 1876 }
- { name: Fourth, detail: "https://example.org/4", order: 1927 }
- { name: Second, detail: "https://example.org/2", order: 1879 }
`

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCatalogValidate_BuiltIn(t *testing.T) {
	out, err := runRoot(t, "catalog", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ built-in: 24 events")
}

func TestCatalogValidate_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.yaml")
	writeFile(t, path, smallCatalog)

	out, err := runRoot(t, "--format", "json", "catalog", "validate", path)
	require.NoError(t, err)

	var resp struct {
		Status string         `json:"status"`
		Data   CatalogSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, CatalogSummary{Source: path, Events: 4}, resp.Data)
}

func TestCatalogValidate_Missing(t *testing.T) {
	out, err := runRoot(t, "catalog", "validate", filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]")
}

func TestCatalogValidate_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dup.yaml")
	writeFile(t, path, "- { name: A, detail: x, order: 1 }\n- { name: B, detail: y, order: 1 }\n")

	out, err := runRoot(t, "catalog", "validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E010]")
	assert.Contains(t, out, "entry 1: order")
}

func TestCatalogValidate_TooSmall(t *testing.T) {
	path := filepath.Join(t.TempDir(), "small.yaml")
	writeFile(t, path, "- { name: A, detail: x, order: 1 }\n")

	out, err := runRoot(t, "catalog", "validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E011]")
}

func TestCatalogList_Chronological(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.yaml")
	writeFile(t, path, smallCatalog)

	out, err := runRoot(t, "catalog", "list", path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "  1876  First", lines[0])
	assert.Equal(t, "  1927  Fourth", lines[3])
}

func TestCatalogList_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.yaml")
	writeFile(t, path, smallCatalog)

	out, err := runRoot(t, "--format", "json", "catalog", "list", path)
	require.NoError(t, err)

	var resp struct {
		Data []catalog.Event `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 4)
	assert.Equal(t, catalog.Event{Name: "First", Detail: "https://example.org/1", Order: 1876}, resp.Data[0])
}

func TestCatalogImport_ThenPlayableFromDB(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "events.yaml")
	db := filepath.Join(dir, "catalog.db")
	writeFile(t, src, smallCatalog)

	out, err := runRoot(t, "catalog", "import", src, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Imported 4 events")

	st, err := store.OpenExisting(db)
	require.NoError(t, err)
	source, ok, err := st.Meta(context.Background(), "source")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, src, source)
	require.NoError(t, st.Close())

	out, err = runRoot(t, "catalog", "list", db)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "  1876  First\n"), out)
}

func TestLoadCatalog_Dispatch(t *testing.T) {
	ctx := context.Background()

	cat, err := LoadCatalog(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, catalog.Default().Len(), cat.Len())

	_, err = LoadCatalog(ctx, filepath.Join(t.TempDir(), "missing.db"))
	assert.True(t, catalog.IsResourceError(err), "got %v", err)

	_, err = LoadCatalog(ctx, filepath.Join(t.TempDir(), "events.txt"))
	assert.True(t, catalog.IsFormatError(err), "got %v", err)
}

func TestIsDatabasePath(t *testing.T) {
	assert.True(t, isDatabasePath("a.db"))
	assert.True(t, isDatabasePath("a.SQLite"))
	assert.True(t, isDatabasePath("dir/a.sqlite3"))
	assert.False(t, isDatabasePath("a.yaml"))
	assert.False(t, isDatabasePath("db"))
}

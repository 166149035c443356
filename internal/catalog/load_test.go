package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlCatalog = `
- name: Printing press
  detail: https://example.com/press
  order: 1440
- name: Moon landing
  detail: https://example.com/moon
  order: 1969
  date: July 20, 1969
`

const jsonCatalog = `[
  {"name": "Printing press", "detail": "https://example.com/press", "order": 1440},
  {"name": "Moon landing", "detail": "https://example.com/moon", "order": 1969}
]`

const cueCatalog = `
events: [
	{name: "Printing press", detail: "https://example.com/press", order: 1440},
	{name: "Moon landing", detail: "https://example.com/moon", order: 1969, date: "July 20, 1969"},
]
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFile_AllFormatsAgree(t *testing.T) {
	want := []Event{
		{Name: "Printing press", Detail: "https://example.com/press", Order: 1440},
		{Name: "Moon landing", Detail: "https://example.com/moon", Order: 1969},
	}

	tests := []struct {
		file    string
		content string
	}{
		{"catalog.yaml", yamlCatalog},
		{"catalog.yml", yamlCatalog},
		{"catalog.json", jsonCatalog},
		{"catalog.cue", cueCatalog},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			c, err := LoadFile(writeFile(t, tt.file, tt.content))
			require.NoError(t, err)
			assert.Equal(t, want, c.Events())
		})
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, IsResourceError(err))
	assert.False(t, IsFormatError(err))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadFile_UnsupportedExtension(t *testing.T) {
	_, err := LoadFile(writeFile(t, "catalog.plist", "<plist/>"))
	require.Error(t, err)
	assert.True(t, IsFormatError(err))
	assert.Contains(t, err.Error(), ".plist")
}

func TestParse_YAMLFormatErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		index   int
		field   string
	}{
		{
			name:    "not a list",
			content: "name: x\ndetail: y\norder: 1\n",
			index:   -1,
		},
		{
			name:    "missing name",
			content: "- detail: y\n  order: 1\n",
			index:   0,
			field:   "name",
		},
		{
			name:    "missing detail",
			content: "- name: ok\n  detail: a\n  order: 1\n- name: x\n  order: 2\n",
			index:   1,
			field:   "detail",
		},
		{
			name:    "missing order",
			content: "- name: x\n  detail: y\n",
			index:   0,
			field:   "order",
		},
		{
			name:    "non-integer order",
			content: "- name: x\n  detail: y\n  order: 1969.5\n",
			index:   0,
		},
		{
			name:    "string order",
			content: "- name: x\n  detail: y\n  order: soon\n",
			index:   0,
		},
		{
			name:    "scalar entry",
			content: "- just a string\n",
			index:   0,
		},
		{
			name:    "broken syntax",
			content: "- name: [unterminated\n",
			index:   -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.content), FormatYAML)
			require.Error(t, err)

			var fe *FormatError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.index, fe.Index)
			if tt.field != "" {
				assert.Equal(t, tt.field, fe.Field)
			}
		})
	}
}

func TestParse_EmptyDocument(t *testing.T) {
	c, err := Parse(nil, FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestParse_CUEFormatErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", `events: [`},
		{"float order", `events: [{name: "x", detail: "y", order: 1.5}]`},
		{"missing detail", `events: [{name: "x", order: 1}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.content), FormatCUE)
			require.Error(t, err)
			assert.True(t, IsFormatError(err), "got %v", err)
		})
	}
}

func TestLoadFile_FormatErrorCarriesPath(t *testing.T) {
	path := writeFile(t, "bad.yaml", "- name: x\n  detail: y\n")
	_, err := LoadFile(path)
	require.Error(t, err)

	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, path, fe.Source)
	assert.Contains(t, err.Error(), path)
}

func TestFormatForPath(t *testing.T) {
	f, ok := FormatForPath("a/b/C.YAML")
	assert.True(t, ok)
	assert.Equal(t, FormatYAML, f)

	_, ok = FormatForPath("events.db")
	assert.False(t, ok)
}

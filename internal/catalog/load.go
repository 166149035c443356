package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

// Format identifies a catalog file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatCUE  Format = "cue"
)

// FormatForPath picks a Format from the file extension.
// The second return value is false for unknown extensions.
func FormatForPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".json":
		return FormatJSON, true
	case ".cue":
		return FormatCUE, true
	default:
		return "", false
	}
}

// LoadFile reads and parses the catalog at path.
//
// A missing or unreadable file is a *ResourceError; anything that cannot be
// turned into events is a *FormatError with Source set to path.
func LoadFile(path string) (*Catalog, error) {
	format, ok := FormatForPath(path)
	if !ok {
		return nil, &FormatError{Source: path, Index: -1, Message: fmt.Sprintf("unsupported catalog extension %q", filepath.Ext(path))}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ResourceError{Source: path, Err: err}
	}

	c, err := Parse(data, format)
	if err != nil {
		var fe *FormatError
		if errors.As(err, &fe) && fe.Source == "" {
			fe.Source = path
		}
		return nil, err
	}
	return c, nil
}

// LoadFS is LoadFile over an fs.FS (used for the embedded catalog).
func LoadFS(fsys fs.FS, name string) (*Catalog, error) {
	format, ok := FormatForPath(name)
	if !ok {
		return nil, &FormatError{Source: name, Index: -1, Message: fmt.Sprintf("unsupported catalog extension %q", filepath.Ext(name))}
	}
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, &ResourceError{Source: name, Err: err}
	}
	c, err := Parse(data, format)
	if err != nil {
		var fe *FormatError
		if errors.As(err, &fe) && fe.Source == "" {
			fe.Source = name
		}
		return nil, err
	}
	return c, nil
}

// Parse decodes catalog data in the given format.
func Parse(data []byte, format Format) (*Catalog, error) {
	var (
		raws []rawEvent
		err  error
	)
	switch format {
	case FormatYAML, FormatJSON:
		// JSON documents are valid YAML 1.2 flow documents.
		raws, err = decodeYAML(data)
	case FormatCUE:
		raws, err = decodeCUE(data)
	default:
		return nil, &FormatError{Index: -1, Message: fmt.Sprintf("unsupported format %q", format)}
	}
	if err != nil {
		return nil, err
	}

	events := make([]Event, 0, len(raws))
	for i, r := range raws {
		ev, err := r.event(i)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return New(events)
}

// rawEvent mirrors Event with pointer fields so missing keys are detectable.
type rawEvent struct {
	Name   *string `json:"name" yaml:"name"`
	Detail *string `json:"detail" yaml:"detail"`
	Order  *int    `json:"order" yaml:"order"`
}

func (r rawEvent) event(i int) (Event, error) {
	switch {
	case r.Name == nil:
		return Event{}, entryError(i, "name", "missing")
	case r.Detail == nil:
		return Event{}, entryError(i, "detail", "missing")
	case r.Order == nil:
		return Event{}, entryError(i, "order", "missing")
	}
	return Event{Name: *r.Name, Detail: *r.Detail, Order: *r.Order}, nil
}

func decodeYAML(data []byte) ([]rawEvent, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &FormatError{Index: -1, Message: "invalid document", Err: err}
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.SequenceNode {
		return nil, &FormatError{Index: -1, Message: "expected a list of events"}
	}

	raws := make([]rawEvent, 0, len(root.Content))
	for i, node := range root.Content {
		if node.Kind != yaml.MappingNode {
			return nil, entryError(i, "", "expected a mapping")
		}
		var r rawEvent
		if err := node.Decode(&r); err != nil {
			return nil, &FormatError{Index: i, Message: "cannot decode entry", Err: err}
		}
		raws = append(raws, r)
	}
	return raws, nil
}

// cueSchema constrains CUE catalogs. Extra fields on an event are allowed,
// matching the YAML loader.
const cueSchema = `
#Event: {
	name:   string
	detail: string
	order:  int
	...
}
events: [...#Event]
`

func decodeCUE(data []byte) ([]rawEvent, error) {
	ctx := cuecontext.New()

	value := ctx.CompileBytes(data, cue.Filename("catalog.cue"))
	if err := value.Err(); err != nil {
		return nil, &FormatError{Index: -1, Message: "invalid CUE", Err: err}
	}

	schema := ctx.CompileString(cueSchema, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		// The schema is a constant; failing here is a programming error.
		panic(fmt.Sprintf("catalog: bad CUE schema: %v", err))
	}

	unified := schema.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, &FormatError{Index: -1, Message: "schema violation", Err: err}
	}

	events := unified.LookupPath(cue.ParsePath("events"))
	if !events.Exists() {
		return nil, &FormatError{Index: -1, Field: "events", Message: "missing events list"}
	}

	var raws []rawEvent
	if err := events.Decode(&raws); err != nil {
		return nil, &FormatError{Index: -1, Message: "cannot decode events", Err: err}
	}
	return raws, nil
}

package importer

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/ast"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cueyaml "cuelang.org/go/encoding/yaml"
)

//go:embed schema.cue
var schemaSource []byte

// Issue is one schema violation. Path uses dotted CUE field paths such as
// "products.2.price".
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// SchemaError reports every violation found in a catalog document.
type SchemaError struct {
	File   string
	Issues []Issue
}

func (e *SchemaError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		if is.Path == "" {
			parts = append(parts, is.Message)
			continue
		}
		parts = append(parts, is.Path+": "+is.Message)
	}
	name := e.File
	if name == "" {
		name = "document"
	}
	return fmt.Sprintf("%s does not match catalog schema: %s", name, strings.Join(parts, "; "))
}

// Schema validates catalog documents against the embedded #Catalog
// definition. A cue.Context is not safe for concurrent use, so calls are
// serialized.
type Schema struct {
	mu      sync.Mutex
	ctx     *cue.Context
	catalog cue.Value
}

// NewSchema compiles the embedded schema.
func NewSchema() (*Schema, error) {
	ctx := cuecontext.New()
	root := ctx.CompileBytes(schemaSource, cue.Filename("schema.cue"))
	if err := root.Err(); err != nil {
		return nil, fmt.Errorf("compile catalog schema: %w", err)
	}
	def := root.LookupPath(cue.ParsePath("#Catalog"))
	if !def.Exists() {
		return nil, fmt.Errorf("compile catalog schema: #Catalog not defined")
	}
	return &Schema{ctx: ctx, catalog: def}, nil
}

// Decode parses a YAML or JSON document, checks it against #Catalog and
// decodes it into a Catalog. Schema violations are returned as *SchemaError.
func (s *Schema) Decode(name string, data []byte, format Format) (Catalog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var value cue.Value
	switch format {
	case FormatJSON:
		// JSON is valid CUE, so it compiles directly and keeps line positions.
		value = s.ctx.CompileBytes(data, cue.Filename(name))
	case FormatYAML:
		file, err := cueyaml.Extract(name, data)
		if err != nil {
			return Catalog{}, fmt.Errorf("parse %s: %w", name, err)
		}
		value = s.buildFile(file)
	default:
		return Catalog{}, fmt.Errorf("decode %s: unsupported format %q", name, format)
	}
	if err := value.Err(); err != nil {
		return Catalog{}, fmt.Errorf("parse %s: %w", name, err)
	}

	unified := s.catalog.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return Catalog{}, &SchemaError{File: name, Issues: issues(err)}
	}

	var doc Catalog
	if err := value.Decode(&doc); err != nil {
		return Catalog{}, fmt.Errorf("decode %s: %w", name, err)
	}
	return doc, nil
}

func (s *Schema) buildFile(file *ast.File) cue.Value {
	return s.ctx.BuildFile(file)
}

// issuePath joins a CUE error path, dropping the leading definition selector
// so paths read "products.0.price" rather than "#Catalog.products.0.price".
func issuePath(path []string) string {
	if len(path) > 0 && strings.HasPrefix(path[0], "#") {
		path = path[1:]
	}
	return strings.Join(path, ".")
}

func issues(err error) []Issue {
	errs := cueerrors.Errors(err)
	out := make([]Issue, 0, len(errs))
	seen := make(map[string]bool, len(errs))
	for _, e := range errs {
		format, args := e.Msg()
		is := Issue{
			Path:    issuePath(e.Path()),
			Message: fmt.Sprintf(format, args...),
		}
		key := is.Path + "\x00" + is.Message
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, is)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

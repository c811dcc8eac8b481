package manifest

import (
	"go.trai.ch/inherit/internal/core/domain"
	"go.trai.ch/inherit/internal/toml"
	"go.trai.ch/zerr"
)

// manifestSchema is the part of a manifest the reader needs to understand.
type manifestSchema struct {
	Package   *packageSchema
	Workspace *workspaceSchema
}

type packageSchema struct {
	Name string
}

type workspaceSchema struct {
	Members []string
	Exclude []string
}

// decodeSchema reads the package and workspace fields from the document tree,
// whichever of header, dotted key or inline table spells them.
func decodeSchema(doc *toml.Document, path string) (*manifestSchema, error) {
	var schema manifestSchema

	if hasTable(doc, "package") {
		schema.Package = &packageSchema{}
		if v, ok := lookup(doc, "package", "name"); ok {
			name, ok := toml.StringValue(v)
			if !ok {
				return nil, typeMismatch(path, "package.name", "string", v)
			}
			schema.Package.Name = name
		}
	}

	if hasTable(doc, "workspace") {
		schema.Workspace = &workspaceSchema{}
		for _, field := range []struct {
			key string
			dst *[]string
		}{
			{key: "members", dst: &schema.Workspace.Members},
			{key: "exclude", dst: &schema.Workspace.Exclude},
		} {
			v, ok := lookup(doc, "workspace", field.key)
			if !ok {
				continue
			}
			list, ok := stringList(v)
			if !ok {
				return nil, typeMismatch(path, "workspace."+field.key, "array of strings", v)
			}
			*field.dst = list
		}
	}

	return &schema, nil
}

func typeMismatch(path, key, want string, got toml.Value) error {
	err := zerr.With(domain.ErrMalformedManifest, "path", path)
	err = zerr.With(err, "key", key)
	err = zerr.With(err, "expected", want)
	return zerr.With(err, "found", got.Kind().String())
}

// hasTable reports whether the document defines the top-level table name,
// explicitly or through a sub-table, dotted key or inline table.
func hasTable(doc *toml.Document, name string) bool {
	for _, t := range doc.Tables() {
		if len(t.Path()) > 0 && t.Path()[0] == name {
			return true
		}
	}
	for _, e := range doc.Root().Entries() {
		if e.Key()[0] == name {
			return true
		}
	}
	return false
}

// lookup finds the value at path. The path may be split between a table
// header, a dotted key and nested inline tables.
func lookup(doc *toml.Document, path ...string) (toml.Value, bool) {
	for split := len(path) - 1; split >= 0; split-- {
		t := doc.Root()
		if split > 0 {
			t = doc.Table(path[:split]...)
		}
		if t == nil {
			continue
		}
		for end := len(path); end > split; end-- {
			v, ok := t.Get(path[split:end]...)
			if !ok {
				continue
			}
			return descend(v, path[end:])
		}
	}
	return nil, false
}

func descend(v toml.Value, rest []string) (toml.Value, bool) {
	for _, key := range rest {
		inline, ok := v.(*toml.InlineTable)
		if !ok {
			return nil, false
		}
		if v, ok = inline.Get(key); !ok {
			return nil, false
		}
	}
	return v, true
}

func stringList(v toml.Value) ([]string, bool) {
	arr, ok := v.(*toml.Array)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(arr.Items()))
	for _, item := range arr.Items() {
		s, ok := toml.StringValue(item)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

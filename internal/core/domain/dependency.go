package domain

import (
	"go.trai.ch/inherit/internal/toml"
)

// SpecKind tells the two shapes of a dependency specification apart.
type SpecKind int

const (
	// SpecPlainVersion is a bare version string: `serde = "1.0"`.
	SpecPlainVersion SpecKind = iota
	// SpecTable is a table of attributes: `serde = { version = "1.0", features = [...] }`.
	SpecTable
)

// DependencySpec describes how a dependency is requested.
// A plain version is equivalent to a table holding only a version.
type DependencySpec struct {
	Kind SpecKind

	// Version is the requirement text, empty when the entry carries none.
	Version string

	// Attributes are the names of the non-version attributes in source order.
	Attributes []string

	// Inherited is set for entries that already reference the workspace.
	Inherited bool
}

// HasVersion reports whether the specification carries a version requirement.
func (s DependencySpec) HasVersion() bool {
	return s.Version != ""
}

// EntryForm is the syntactic shape of a dependency entry in a manifest.
type EntryForm int

const (
	// FormString is `name = "1.0"`.
	FormString EntryForm = iota
	// FormInline is `name = { ... }`.
	FormInline
	// FormTable is a standard sub-table `[dependencies.name]`.
	FormTable
	// FormDotted is `name.version = "1.0"` and sibling dotted keys.
	FormDotted
	// FormOther is any value that is neither a string nor a table.
	FormOther
)

// String returns a readable name of the form.
func (f EntryForm) String() string {
	switch f {
	case FormString:
		return "string"
	case FormInline:
		return "inline table"
	case FormTable:
		return "table"
	case FormDotted:
		return "dotted keys"
	default:
		return "other"
	}
}

// DependencyEntry is the location of one dependency entry in a member manifest.
type DependencyEntry struct {
	Member    *MemberManifest
	Namespace Namespace
	Name      string
	Form      EntryForm
	Spec      DependencySpec

	// Table is the dependency table holding Entry, or the sub-table itself for FormTable.
	Table *toml.Table

	// Entry is the `name = value` line. It is nil for FormTable and points at the
	// first line for FormDotted.
	Entry *toml.Entry
}

// OccurrenceKey identifies a dependency within one namespace.
type OccurrenceKey struct {
	Namespace Namespace
	Name      string
}

// String renders the key as namespace/name.
func (k OccurrenceKey) String() string {
	return k.Namespace.String() + "/" + k.Name
}

// Less orders keys by namespace, then name.
func (k OccurrenceKey) Less(other OccurrenceKey) bool {
	if k.Namespace != other.Namespace {
		return k.Namespace < other.Namespace
	}
	return k.Name < other.Name
}

// SpecFromValue classifies the value of a `name = value` entry.
func SpecFromValue(v toml.Value) (DependencySpec, EntryForm) {
	switch val := v.(type) {
	case *toml.String:
		return DependencySpec{Kind: SpecPlainVersion, Version: val.Value()}, FormString
	case *toml.InlineTable:
		spec := DependencySpec{Kind: SpecTable}
		for _, e := range val.Entries() {
			spec.addAttribute(e.Key(), e.Value())
		}
		return spec, FormInline
	default:
		return DependencySpec{Kind: SpecTable}, FormOther
	}
}

// SpecFromTable classifies a `[dependencies.name]` sub-table.
func SpecFromTable(t *toml.Table) DependencySpec {
	spec := DependencySpec{Kind: SpecTable}
	for _, e := range t.Entries() {
		spec.addAttribute(e.Key(), e.Value())
	}
	return spec
}

// SpecFromDotted classifies the `name.attr = value` entries of one dependency.
// Each key has the dependency name stripped.
func SpecFromDotted(entries []*toml.Entry) DependencySpec {
	spec := DependencySpec{Kind: SpecTable}
	for _, e := range entries {
		spec.addAttribute(e.Key()[1:], e.Value())
	}
	return spec
}

func (s *DependencySpec) addAttribute(key toml.Key, v toml.Value) {
	switch {
	case key.Is("version"):
		if version, ok := toml.StringValue(v); ok {
			s.Version = version
			return
		}
	case key.Is("workspace"):
		if inherited, ok := toml.BoolValue(v); ok && inherited {
			s.Inherited = true
			return
		}
	}
	s.Attributes = append(s.Attributes, key.String())
}

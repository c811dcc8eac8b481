// Package rewriter turns member dependency entries into workspace inheritance
// and publishes the shared versions in the root manifest.
package rewriter

import (
	"slices"

	"go.trai.ch/inherit/internal/core/domain"
	"go.trai.ch/inherit/internal/toml"
)

// preserved attributes are carried over next to `workspace = true`.
var preserved = []string{"features", "optional", "default-features", "default_features", "public"}

// sourceAttributes name a location a workspace version cannot express.
var sourceAttributes = []string{"path", "git", "branch", "tag", "rev", "registry", "registry-index", "package"}

// Result summarizes a rewrite pass.
type Result struct {
	// Rewritten is the number of member entries converted to inheritance.
	Rewritten int

	// Published are the dependency names written to [workspace.dependencies], sorted.
	Published []string

	Warnings []domain.Warning
}

// Rewriter mutates the documents of a workspace in place.
type Rewriter struct{}

// New creates a new Rewriter.
func New() *Rewriter {
	return &Rewriter{}
}

// Apply rewrites every decided entry that can be expressed as inheritance and
// publishes each name with at least one rewritten entry in the root manifest.
// Entries that cannot be rewritten are left untouched and reported.
//
// A newly published name carries `default-features = false` when a rewritten
// entry disabled default features; the rewritten entries that relied on them
// then turn them back on explicitly.
func (r *Rewriter) Apply(ws *domain.Workspace, decisions []domain.InheritanceDecision) *Result {
	res := &Result{}
	pending := make(map[string]*publication)

	for _, d := range decisions {
		for _, entry := range d.Entries {
			if reason := ambiguity(entry); reason != "" {
				res.Warnings = append(res.Warnings, domain.Warning{
					Kind:       domain.WarningAmbiguousInlineStructure,
					Dependency: d.Key.Name,
					Namespace:  d.Key.Namespace,
					Members:    []string{entry.Member.Path},
					Detail:     reason,
				})
				continue
			}

			pub, ok := pending[d.Key.Name]
			if !ok {
				pub = &publication{version: d.Version}
				pending[d.Key.Name] = pub
			}
			if defaultFeatures(entry) {
				pub.withDefaults = append(pub.withDefaults, entry)
			} else {
				pub.noDefaults = true
			}

			rewriteEntry(entry)
			res.Rewritten++
		}
	}

	for name := range pending {
		res.Published = append(res.Published, name)
	}
	slices.Sort(res.Published)

	for _, name := range res.Published {
		pub := pending[name]
		if publish(ws.Root.Document, name, pub.version, pub.noDefaults) {
			for _, entry := range pub.withDefaults {
				enableDefaults(entry)
			}
		}
	}

	return res
}

// publication collects what the rewritten entries of one name need from the
// root manifest.
type publication struct {
	version string
	// noDefaults is set when a rewritten entry disabled default features.
	noDefaults bool
	// withDefaults are the rewritten entries that kept default features.
	withDefaults []*domain.DependencyEntry
}

// ambiguity returns why an entry cannot be rewritten, or "" when it can.
func ambiguity(entry *domain.DependencyEntry) string {
	switch entry.Form {
	case domain.FormString:
		return ""
	case domain.FormDotted:
		return "dotted keys are not rewritten"
	case domain.FormOther:
		return "value is neither a version string nor a table"
	case domain.FormInline:
		it, _ := entry.Entry.Value().(*toml.InlineTable)
		for _, e := range it.Entries() {
			if reason := attributeAmbiguity(e.Key(), e.Value()); reason != "" {
				return reason
			}
		}
		return ""
	case domain.FormTable:
		path := entry.Table.Path()
		for _, t := range entry.Member.Document.Tables() {
			if t != entry.Table && t.Path().HasPrefix(path) {
				return "nested table " + t.Path().String()
			}
		}
		for _, e := range entry.Table.Entries() {
			if reason := attributeAmbiguity(e.Key(), e.Value()); reason != "" {
				return reason
			}
		}
		return ""
	default:
		return "unsupported entry form"
	}
}

func attributeAmbiguity(key toml.Key, v toml.Value) string {
	if len(key) > 1 {
		return "dotted attribute " + key.String()
	}
	name := key[0]

	switch {
	case name == "version":
		if _, ok := v.(*toml.String); !ok {
			return "version is not a string"
		}
		return ""
	case slices.Contains(sourceAttributes, name):
		return "source attribute " + name + " cannot be inherited"
	case !slices.Contains(preserved, name):
		return "unknown attribute " + name
	}

	if nested(v) {
		return "nested table in attribute " + name
	}
	return ""
}

// nested reports whether v is or holds an inline table.
func nested(v toml.Value) bool {
	switch val := v.(type) {
	case *toml.InlineTable:
		return true
	case *toml.Array:
		return slices.ContainsFunc(val.Items(), nested)
	default:
		return false
	}
}

// rewriteEntry replaces the version with `workspace = true` as the first key,
// keeping every other attribute with its original text.
func rewriteEntry(entry *domain.DependencyEntry) {
	switch entry.Form {
	case domain.FormString:
		entry.Entry.SetValue(inherited())
	case domain.FormInline:
		old, _ := entry.Entry.Value().(*toml.InlineTable)
		it := inherited()
		for _, e := range old.Entries() {
			if !e.Key().Is("version") {
				it.Append(e)
			}
		}
		entry.Entry.SetValue(it)
	case domain.FormTable:
		if v := entry.Table.Entry("version"); v != nil {
			entry.Table.Remove(v)
		}
		entry.Table.Prepend("workspace", toml.NewBool(true))
	}
}

func inherited() *toml.InlineTable {
	it := toml.NewInlineTable()
	it.Set("workspace", toml.NewBool(true))
	return it
}

// defaultFeatures reports whether the entry keeps the default features.
func defaultFeatures(entry *domain.DependencyEntry) bool {
	v, ok := defaultFeaturesValue(entry)
	if !ok {
		return true
	}
	enabled, ok := toml.BoolValue(v)
	return !ok || enabled
}

func defaultFeaturesValue(entry *domain.DependencyEntry) (toml.Value, bool) {
	for _, key := range []string{"default-features", "default_features"} {
		switch entry.Form {
		case domain.FormInline:
			if it, ok := entry.Entry.Value().(*toml.InlineTable); ok {
				if v, ok := it.Get(key); ok {
					return v, true
				}
			}
		case domain.FormTable:
			if v, ok := entry.Table.Get(key); ok {
				return v, true
			}
		}
	}
	return nil, false
}

// enableDefaults adds `default-features = true` to a rewritten entry that
// does not spell the attribute out.
func enableDefaults(entry *domain.DependencyEntry) {
	if _, ok := defaultFeaturesValue(entry); ok {
		return
	}
	switch entry.Form {
	case domain.FormString, domain.FormInline:
		if it, ok := entry.Entry.Value().(*toml.InlineTable); ok {
			it.Set("default-features", toml.NewBool(true))
		}
	case domain.FormTable:
		entry.Table.Append("default-features", toml.NewBool(true))
	}
}

// publish sets the version of name in [workspace.dependencies], in whatever
// form the root already declares it, or appends a new entry. The new entry
// disables default features when noDefaults is set; publish reports whether
// it did so.
func publish(doc *toml.Document, name, version string, noDefaults bool) bool {
	if t := doc.Table("workspace", "dependencies", name); t != nil {
		setVersion(t.Entry("version"), version, func() { t.Set("version", toml.NewString(version)) })
		return false
	}

	shared := doc.EnsureTable("workspace", "dependencies")

	if e := shared.Entry(name); e != nil {
		if it, ok := e.Value().(*toml.InlineTable); ok {
			if current, ok := it.Get("version"); ok {
				if s, ok := toml.StringValue(current); ok && s == version {
					return false
				}
			}
			it.Set("version", toml.NewString(version))
			return false
		}
		setVersion(e, version, nil)
		return false
	}

	if e := shared.Entry(name, "version"); e != nil {
		setVersion(e, version, nil)
		return false
	}
	if hasDotted(shared, name) {
		// Dotted declarations without a version are left as written.
		return false
	}

	if !noDefaults {
		shared.Append(name, toml.NewString(version))
		return false
	}
	it := toml.NewInlineTable()
	it.Set("version", toml.NewString(version))
	it.Set("default-features", toml.NewBool(false))
	shared.Append(name, it)
	return true
}

// setVersion writes version into e unless it already holds it. A nil entry
// calls missing instead.
func setVersion(e *toml.Entry, version string, missing func()) {
	if e == nil {
		if missing != nil {
			missing()
		}
		return
	}
	if s, ok := toml.StringValue(e.Value()); ok && s == version {
		return
	}
	e.SetValue(toml.NewString(version))
}

func hasDotted(t *toml.Table, name string) bool {
	for _, e := range t.Entries() {
		if k := e.Key(); len(k) > 1 && k[0] == name {
			return true
		}
	}
	return false
}

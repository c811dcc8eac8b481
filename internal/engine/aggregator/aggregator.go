// Package aggregator counts how often each dependency is used across the members of a workspace.
package aggregator

import (
	"slices"

	"go.trai.ch/inherit/internal/core/domain"
	"go.trai.ch/inherit/internal/toml"
)

// Aggregator walks the dependency tables of member manifests.
type Aggregator struct{}

// New creates a new Aggregator.
func New() *Aggregator {
	return &Aggregator{}
}

// Aggregate returns one occurrence record per (namespace, name). Entries that
// already inherit from the workspace are not counted. Dependency tables
// spelled as a key of another table are not read; each is reported once per
// member.
func (a *Aggregator) Aggregate(members []*domain.MemberManifest) (domain.Occurrences, []domain.Warning) {
	occ := make(domain.Occurrences)
	var warnings []domain.Warning
	for _, m := range members {
		for _, entry := range Entries(m) {
			if entry.Spec.Inherited {
				continue
			}
			key := domain.OccurrenceKey{Namespace: entry.Namespace, Name: entry.Name}
			rec, ok := occ[key]
			if !ok {
				rec = domain.NewOccurrenceRecord(key)
				occ[key] = rec
			}
			rec.Add(entry)
		}
		warnings = append(warnings, ignoredTables(m)...)
	}
	return occ, warnings
}

// ignoredTables finds dependency tables written as an inline table or dotted
// key, such as `dependencies = { serde = "1" }` or `dependencies.serde = "1"`.
func ignoredTables(m *domain.MemberManifest) []domain.Warning {
	var out []domain.Warning
	seen := make(map[string]bool)

	tables := append([]*toml.Table{m.Document.Root()}, m.Document.Tables()...)
	for _, t := range tables {
		path := t.Path()
		if t.IsArray() || isDependencyPath(path) {
			continue
		}
		for _, e := range t.Entries() {
			key := e.Key()
			for i := 1; i <= len(key); i++ {
				full := append(slices.Clone(path), key[:i]...)
				ns, ok := dependencyTable(full)
				if !ok {
					continue
				}
				name := full.String()
				if !seen[name] {
					seen[name] = true
					out = append(out, domain.Warning{
						Kind:       domain.WarningIgnoredDependencyTable,
						Dependency: name,
						Namespace:  ns,
						Members:    []string{m.Path},
						Detail:     "only [" + name + "] table headers are read",
					})
				}
				break
			}
		}
	}
	return out
}

// isDependencyPath reports whether path names a dependency table or one of
// its entries.
func isDependencyPath(path toml.Key) bool {
	if _, ok := dependencyTable(path); ok {
		return true
	}
	if len(path) < 2 {
		return false
	}
	_, ok := dependencyTable(path[:len(path)-1])
	return ok
}

// Entries lists every dependency entry of a member in document order,
// inherited ones included.
func Entries(m *domain.MemberManifest) []*domain.DependencyEntry {
	var out []*domain.DependencyEntry

	for _, t := range m.Document.Tables() {
		if t.IsArray() {
			continue
		}
		path := t.Path()

		if ns, ok := dependencyTable(path); ok {
			out = append(out, tableEntries(m, ns, t)...)
			continue
		}

		if len(path) < 2 {
			continue
		}
		if ns, ok := dependencyTable(path[:len(path)-1]); ok {
			out = append(out, &domain.DependencyEntry{
				Member:    m,
				Namespace: ns,
				Name:      path[len(path)-1],
				Form:      domain.FormTable,
				Spec:      domain.SpecFromTable(t),
				Table:     t,
			})
		}
	}

	return out
}

// dependencyTable recognizes [dependencies] and [target.<cfg>.dependencies]
// paths and their dev and build variants.
func dependencyTable(path toml.Key) (domain.Namespace, bool) {
	switch {
	case len(path) == 1:
		return domain.NamespaceForTable(path[0])
	case len(path) == 3 && path[0] == "target":
		return domain.NamespaceForTable(path[2])
	default:
		return 0, false
	}
}

// tableEntries reads the entries of a dependency table. Dotted keys sharing
// a first segment form one entry.
func tableEntries(m *domain.MemberManifest, ns domain.Namespace, t *toml.Table) []*domain.DependencyEntry {
	var out []*domain.DependencyEntry
	dotted := make(map[string]*domain.DependencyEntry)
	dottedLines := make(map[string][]*toml.Entry)

	for _, e := range t.Entries() {
		key := e.Key()
		if len(key) == 1 {
			spec, form := domain.SpecFromValue(e.Value())
			out = append(out, &domain.DependencyEntry{
				Member:    m,
				Namespace: ns,
				Name:      key[0],
				Form:      form,
				Spec:      spec,
				Table:     t,
				Entry:     e,
			})
			continue
		}

		name := key[0]
		dottedLines[name] = append(dottedLines[name], e)
		if _, ok := dotted[name]; ok {
			continue
		}
		entry := &domain.DependencyEntry{
			Member:    m,
			Namespace: ns,
			Name:      name,
			Form:      domain.FormDotted,
			Table:     t,
			Entry:     e,
		}
		dotted[name] = entry
		out = append(out, entry)
	}

	for name, entry := range dotted {
		entry.Spec = domain.SpecFromDotted(dottedLines[name])
	}

	return out
}

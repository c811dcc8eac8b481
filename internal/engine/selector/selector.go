// Package selector decides which dependencies are promoted to the workspace
// and which version each one publishes.
package selector

import (
	"maps"
	"slices"
	"strconv"
	"strings"

	"go.trai.ch/inherit/internal/core/domain"
	"go.trai.ch/zerr"
)

// Options control selection.
type Options struct {
	// Threshold is the minimum number of members using a dependency.
	Threshold int

	// ExcludeDependencies are names that are never promoted.
	ExcludeDependencies []string

	// FailOnConflict turns disagreeing versions into an error.
	FailOnConflict bool
}

// Selection is the outcome of Select, ordered by namespace, then name.
type Selection struct {
	Decisions []domain.InheritanceDecision
	Warnings  []domain.Warning
}

// Selector applies the threshold and the version conflict policy.
type Selector struct{}

// New creates a new Selector.
func New() *Selector {
	return &Selector{}
}

// Select picks every dependency used by at least opts.Threshold members.
//
// A name qualifying in several namespaces is published once, so all of its
// versions compete together, along with the version already present in the
// root's shared table. The highest version wins. Members whose version lost
// are reported as a conflict; a losing shared version is reported on its own.
func (s *Selector) Select(
	occ domain.Occurrences,
	root *domain.WorkspaceManifest,
	opts Options,
) (*Selection, error) {
	if opts.Threshold < 1 {
		return nil, zerr.With(domain.ErrInvalidThreshold, "occurrences", opts.Threshold)
	}

	var qualifying []*domain.OccurrenceRecord
	pools := make(map[string]*versionPool)
	for _, k := range occ.Keys() {
		rec := occ[k]
		if rec.Count() < opts.Threshold || slices.Contains(opts.ExcludeDependencies, k.Name) {
			continue
		}
		qualifying = append(qualifying, rec)

		pool, ok := pools[k.Name]
		if !ok {
			pool = &versionPool{members: make(map[string][]string)}
			if shared, ok := root.Shared[k.Name]; ok && shared.HasVersion() {
				pool.shared = shared.Version
			}
			pools[k.Name] = pool
		}
		for v, members := range rec.Versions {
			pool.members[v] = appendUnique(pool.members[v], members...)
		}
	}

	sel := &Selection{}
	sharedReported := make(map[string]bool)

	for _, rec := range qualifying {
		name := rec.Key.Name
		pool := pools[name]

		versions := pool.versions()
		if len(versions) == 0 {
			sel.Warnings = append(sel.Warnings, domain.Warning{
				Kind:       domain.WarningNoVersionToPublish,
				Dependency: name,
				Namespace:  rec.Key.Namespace,
				Members:    rec.Members,
				Detail:     "no member specifies a version",
			})
			continue
		}
		resolved := highest(versions)

		if opts.FailOnConflict && pool.membersDisagree(resolved) {
			slices.SortFunc(versions, CompareVersions)
			err := zerr.With(domain.ErrVersionConflict, "dependency", name)
			err = zerr.With(err, "namespace", rec.Key.Namespace.String())
			return nil, zerr.With(err, "versions", strings.Join(versions, ", "))
		}

		decision := domain.InheritanceDecision{
			Key:     rec.Key,
			Version: resolved,
			Members: rec.Members,
			Entries: rec.Entries,
		}

		discarded := make(map[string][]string)
		for v, members := range rec.Versions {
			if v != resolved {
				discarded[v] = members
			}
		}
		if len(discarded) > 0 {
			decision.Conflict = &domain.VersionConflict{Resolved: resolved, Discarded: discarded}
			sel.Warnings = append(sel.Warnings, conflictWarning(rec.Key, decision.Conflict))
		}

		if pool.shared != "" && pool.shared != resolved && !sharedReported[name] {
			sharedReported[name] = true
			sel.Warnings = append(sel.Warnings, domain.Warning{
				Kind:       domain.WarningSharedVersionReplaced,
				Dependency: name,
				Namespace:  rec.Key.Namespace,
				Members:    []string{root.Path},
				Detail:     strconv.Quote(resolved) + " replaces " + strconv.Quote(pool.shared),
			})
		}

		sel.Decisions = append(sel.Decisions, decision)
	}

	return sel, nil
}

// versionPool gathers the versions competing for one dependency name.
type versionPool struct {
	// members maps each member version to the manifests using it.
	members map[string][]string
	// shared is the version already in [workspace.dependencies], if any.
	shared string
}

func (p *versionPool) versions() []string {
	versions := slices.Collect(maps.Keys(p.members))
	if p.shared != "" && !slices.Contains(versions, p.shared) {
		versions = append(versions, p.shared)
	}
	return versions
}

// membersDisagree reports whether any member version loses to resolved.
func (p *versionPool) membersDisagree(resolved string) bool {
	for v := range p.members {
		if v != resolved {
			return true
		}
	}
	return false
}

func conflictWarning(key domain.OccurrenceKey, c *domain.VersionConflict) domain.Warning {
	versions := slices.Collect(maps.Keys(c.Discarded))
	slices.SortFunc(versions, CompareVersions)

	var members []string
	quoted := make([]string, len(versions))
	for i, v := range versions {
		quoted[i] = strconv.Quote(v)
		members = appendUnique(members, c.Discarded[v]...)
	}
	slices.Sort(members)

	return domain.Warning{
		Kind:       domain.WarningVersionConflictResolved,
		Dependency: key.Name,
		Namespace:  key.Namespace,
		Members:    members,
		Detail:     strconv.Quote(c.Resolved) + " chosen over " + strings.Join(quoted, ", "),
	}
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		if !slices.Contains(dst, v) {
			dst = append(dst, v)
		}
	}
	return dst
}

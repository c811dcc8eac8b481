package domain

import (
	"slices"
)

// OccurrenceRecord collects every use of one dependency in one namespace.
type OccurrenceRecord struct {
	Key OccurrenceKey

	// Members are the member manifest paths using the dependency, in discovery order.
	Members []string

	// Versions maps each distinct version requirement to the members using it.
	Versions map[string][]string

	// Unversioned are the members whose entries carry no version.
	Unversioned []string

	// Entries are all entry locations, including repeated ones within a member.
	Entries []*DependencyEntry
}

// NewOccurrenceRecord creates an empty record for key.
func NewOccurrenceRecord(key OccurrenceKey) *OccurrenceRecord {
	return &OccurrenceRecord{
		Key:      key,
		Versions: make(map[string][]string),
	}
}

// Count returns the number of members using the dependency.
func (r *OccurrenceRecord) Count() int {
	return len(r.Members)
}

// DistinctVersions returns the observed version requirements, sorted.
func (r *OccurrenceRecord) DistinctVersions() []string {
	out := make([]string, 0, len(r.Versions))
	for v := range r.Versions {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

// Add records an entry. A member is counted once however many entries it has.
func (r *OccurrenceRecord) Add(entry *DependencyEntry) {
	path := entry.Member.Path
	r.Entries = append(r.Entries, entry)

	if !slices.Contains(r.Members, path) {
		r.Members = append(r.Members, path)
	}

	if !entry.Spec.HasVersion() {
		if !slices.Contains(r.Unversioned, path) {
			r.Unversioned = append(r.Unversioned, path)
		}
		return
	}

	members := r.Versions[entry.Spec.Version]
	if !slices.Contains(members, path) {
		r.Versions[entry.Spec.Version] = append(members, path)
	}
}

// Occurrences holds the records of one aggregation pass.
type Occurrences map[OccurrenceKey]*OccurrenceRecord

// Keys returns the record keys ordered by namespace, then name.
func (o Occurrences) Keys() []OccurrenceKey {
	keys := make([]OccurrenceKey, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b OccurrenceKey) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		default:
			return 0
		}
	})
	return keys
}

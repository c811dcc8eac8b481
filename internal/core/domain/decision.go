package domain

// VersionConflict records how disagreeing version requirements were settled.
type VersionConflict struct {
	// Resolved is the version that was published.
	Resolved string

	// Discarded maps every losing version to the manifests that used it.
	Discarded map[string][]string
}

// InheritanceDecision is the outcome of selection for one dependency.
type InheritanceDecision struct {
	Key OccurrenceKey

	// Version is the requirement published in [workspace.dependencies].
	Version string

	// Members are the member manifests whose entries get rewritten.
	Members []string

	// Entries are the locations to rewrite.
	Entries []*DependencyEntry

	// Conflict is set when the members disagreed on the version.
	Conflict *VersionConflict
}

// WarningKind classifies a non-fatal condition reported by a run.
type WarningKind string

const (
	// WarningVersionConflictResolved means members disagreed and the highest version won.
	WarningVersionConflictResolved WarningKind = "VersionConflictResolved"
	// WarningAmbiguousInlineStructure means an entry cannot be expressed as inheritance and was left as is.
	WarningAmbiguousInlineStructure WarningKind = "AmbiguousInlineStructure"
	// WarningNoVersionToPublish means a qualifying dependency has no version to publish.
	WarningNoVersionToPublish WarningKind = "NoVersionToPublish"
	// WarningSharedVersionReplaced means a higher member version replaces the one in [workspace.dependencies].
	WarningSharedVersionReplaced WarningKind = "SharedVersionReplaced"
	// WarningIgnoredDependencyTable means a dependency table was written in a form that is not read.
	WarningIgnoredDependencyTable WarningKind = "IgnoredDependencyTable"
)

// Warning is a per-dependency condition that does not abort the run.
type Warning struct {
	Kind       WarningKind
	Dependency string
	Namespace  Namespace
	Members    []string
	Detail     string
}

// Message returns a one-line description of the warning.
func (w Warning) Message() string {
	switch w.Kind {
	case WarningVersionConflictResolved:
		return "conflicting versions of " + w.Dependency + " resolved: " + w.Detail
	case WarningAmbiguousInlineStructure:
		return "skipping " + w.Dependency + ": " + w.Detail
	case WarningNoVersionToPublish:
		return "not inheriting " + w.Dependency + ": " + w.Detail
	case WarningSharedVersionReplaced:
		return "shared version of " + w.Dependency + " updated: " + w.Detail
	case WarningIgnoredDependencyTable:
		return "ignoring " + w.Dependency + ": " + w.Detail
	default:
		return w.Dependency + ": " + w.Detail
	}
}

// Report summarizes a run.
type Report struct {
	Decisions []InheritanceDecision
	Warnings  []Warning

	// Rewritten is the number of member entries converted to inheritance.
	Rewritten int

	// Written are the manifests persisted to disk.
	Written []string

	// Unchanged are the manifests whose content did not change.
	Unchanged []string

	// DryRun is set when nothing was written.
	DryRun bool
}

// Settings are the run options read from the settings file.
type Settings struct {
	ExcludePackages     []string
	ExcludeDependencies []string
	FailOnConflict      bool
}

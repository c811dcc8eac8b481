package domain

import "go.trai.ch/inherit/internal/toml"

// Manifest is a manifest file loaded from disk together with its document tree.
type Manifest struct {
	// Path is the location the manifest was read from and is written back to.
	Path string

	// Document is the editable tree. Rewrites mutate it in place.
	Document *toml.Document

	// Source holds the bytes read from disk.
	Source []byte

	// SourceHash is the xxhash of Source, taken when the manifest was read.
	SourceHash uint64
}

// WorkspaceManifest is the root manifest declaring the workspace.
type WorkspaceManifest struct {
	*Manifest

	// Members are the member patterns in declaration order.
	Members []string

	// Exclude are the paths removed from the expanded member set.
	Exclude []string

	// Shared is the content of [workspace.dependencies] at load time.
	Shared map[string]DependencySpec
}

// MemberManifest is a package manifest belonging to the workspace.
type MemberManifest struct {
	*Manifest

	// Dir is the package directory.
	Dir string

	// PackageName is [package].name, empty for virtual or unnamed manifests.
	PackageName string
}

// Workspace is the loaded manifest tree of one run.
type Workspace struct {
	Root    *WorkspaceManifest
	Members []*MemberManifest
}

// Manifests returns the root manifest followed by every member manifest,
// each underlying file once. A root that is also a package shares its
// manifest with the corresponding member.
func (w *Workspace) Manifests() []*Manifest {
	seen := make(map[*Manifest]struct{}, len(w.Members)+1)
	out := make([]*Manifest, 0, len(w.Members)+1)

	add := func(m *Manifest) {
		if m == nil {
			return
		}
		if _, ok := seen[m]; ok {
			return
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}

	if w.Root != nil {
		add(w.Root.Manifest)
	}
	for _, m := range w.Members {
		add(m.Manifest)
	}
	return out
}

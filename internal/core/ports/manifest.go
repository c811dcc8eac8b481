package ports

import "go.trai.ch/inherit/internal/core/domain"

// ManifestReader defines the interface for loading a workspace manifest tree.
//
//go:generate mockgen -source=manifest.go -destination=mocks/mock_manifest.go -package=mocks
type ManifestReader interface {
	// Load reads the root manifest at rootPath (a file or its directory) and every
	// member manifest it declares. Members whose package name is listed in
	// excludePackages are left out.
	Load(rootPath string, excludePackages []string) (*domain.Workspace, error)
}

// WriteResult lists the outcome of a write pass.
type WriteResult struct {
	// Written are the manifests whose content changed and was persisted.
	Written []string
	// Unchanged are the manifests left untouched because their content is identical.
	Unchanged []string
}

// ManifestWriter defines the interface for persisting rewritten manifests.
type ManifestWriter interface {
	// Write renders every manifest and stores the changed ones at their paths.
	// All manifests are attempted; failures are joined into the returned error.
	Write(manifests []*domain.Manifest) (WriteResult, error)
}

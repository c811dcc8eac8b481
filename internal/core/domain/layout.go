package domain

import "path/filepath"

const (
	// ManifestFileName is the name of a package or workspace manifest.
	ManifestFileName = "Cargo.toml"

	// SettingsFileName is the name of the optional settings file next to the root manifest.
	SettingsFileName = "inherit.yaml"

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// ManifestPath returns the manifest path inside dir.
func ManifestPath(dir string) string {
	return filepath.Join(dir, ManifestFileName)
}

// DefaultSettingsPath returns the settings file path next to the given root manifest.
func DefaultSettingsPath(manifestPath string) string {
	return filepath.Join(filepath.Dir(manifestPath), SettingsFileName)
}

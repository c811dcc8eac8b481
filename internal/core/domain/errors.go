package domain

import "go.trai.ch/zerr"

var (
	// ErrManifestNotFound is returned when the root manifest or an explicitly listed member manifest does not exist.
	ErrManifestNotFound = zerr.New("manifest not found")

	// ErrManifestReadFailed is returned when a manifest exists but cannot be read.
	ErrManifestReadFailed = zerr.New("failed to read manifest")

	// ErrMalformedManifest is returned when a manifest is not valid TOML or has an unexpected shape.
	ErrMalformedManifest = zerr.New("malformed manifest")

	// ErrNoMembersDeclared is returned when the workspace declares no member packages.
	ErrNoMembersDeclared = zerr.New("workspace declares no members")

	// ErrMemberGlobFailed is returned when a workspace member pattern is not a valid glob.
	ErrMemberGlobFailed = zerr.New("invalid workspace member pattern")

	// ErrInvalidThreshold is returned when the occurrence threshold is lower than one.
	ErrInvalidThreshold = zerr.New("occurrence threshold must be at least 1")

	// ErrVersionConflict is returned when members disagree on a version and conflicts are fatal.
	ErrVersionConflict = zerr.New("conflicting versions for inherited dependency")

	// ErrWriteFailed is returned when a rewritten manifest cannot be persisted.
	ErrWriteFailed = zerr.New("failed to write manifest")

	// ErrManifestModified is returned when a manifest changed on disk after it was read.
	ErrManifestModified = zerr.New("manifest changed on disk since it was read")

	// ErrSettingsReadFailed is returned when the settings file cannot be read.
	ErrSettingsReadFailed = zerr.New("failed to read settings file")

	// ErrSettingsParseFailed is returned when the settings file cannot be parsed.
	ErrSettingsParseFailed = zerr.New("failed to parse settings file")

	// ErrSettingsNotFound is returned when an explicitly requested settings file does not exist.
	ErrSettingsNotFound = zerr.New("settings file not found")

	// ErrInvalidLogFormat is returned when the requested log format is unknown.
	ErrInvalidLogFormat = zerr.New("invalid log format")
)

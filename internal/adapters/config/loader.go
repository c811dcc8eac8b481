// Package config reads the optional inherit.yaml settings file.
package config

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"

	"go.trai.ch/inherit/internal/core/domain"
	"go.trai.ch/inherit/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.SettingsLoader = (*Loader)(nil)

// Loader implements ports.SettingsLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new settings loader.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load reads the settings at path. A missing file yields nil settings.
func (l *Loader) Load(path string) (*domain.Settings, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrSettingsReadFailed.Error()), "path", path)
	}

	var file Settingsfile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrSettingsParseFailed.Error()), "path", path)
	}

	l.Logger.Info("loaded settings", "path", path)

	return &domain.Settings{
		ExcludePackages:     file.ExcludePackages,
		ExcludeDependencies: file.ExcludeDependencies,
		FailOnConflict:      file.FailOnConflict,
	}, nil
}

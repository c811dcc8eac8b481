package ports

import "go.trai.ch/inherit/internal/core/domain"

// SettingsLoader defines the interface for reading the optional settings file.
//
//go:generate mockgen -source=settings.go -destination=mocks/mock_settings.go -package=mocks
type SettingsLoader interface {
	// Load reads the settings at path.
	// Returns nil, nil if the file does not exist.
	Load(path string) (*domain.Settings, error)
}

package app

import "go.trai.ch/inherit/internal/core/ports"

// Components contains all the initialized application components.
// This struct provides controlled access to components needed by the CLI layer.
type Components struct {
	App       *App
	Logger    ports.Logger
	Telemetry ports.Telemetry
}

// Close releases the resources held by the components.
func (c *Components) Close() error {
	return c.Telemetry.Close()
}

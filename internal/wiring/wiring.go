// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/inherit/internal/adapters/config"
	_ "go.trai.ch/inherit/internal/adapters/logger"
	_ "go.trai.ch/inherit/internal/adapters/manifest"
	_ "go.trai.ch/inherit/internal/adapters/telemetry/progrock"
	// Register app and engine nodes.
	_ "go.trai.ch/inherit/internal/app"
	_ "go.trai.ch/inherit/internal/engine/aggregator"
	_ "go.trai.ch/inherit/internal/engine/rewriter"
	_ "go.trai.ch/inherit/internal/engine/selector"
)

package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/inherit/internal/adapters/config"              //nolint:depguard // Wired in app layer
	"go.trai.ch/inherit/internal/adapters/logger"              //nolint:depguard // Wired in app layer
	"go.trai.ch/inherit/internal/adapters/manifest"            //nolint:depguard // Wired in app layer
	"go.trai.ch/inherit/internal/adapters/telemetry/progrock" //nolint:depguard // Wired in app layer
	"go.trai.ch/inherit/internal/core/ports"
	"go.trai.ch/inherit/internal/engine/aggregator"
	"go.trai.ch/inherit/internal/engine/rewriter"
	"go.trai.ch/inherit/internal/engine/selector"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			manifest.ReaderNodeID,
			manifest.WriterNodeID,
			config.NodeID,
			logger.NodeID,
			progrock.NodeID,
			aggregator.NodeID,
			selector.NodeID,
			rewriter.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			progrock.NodeID,
		},
		Run: runComponentsNode,
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	reader, err := graft.Dep[ports.ManifestReader](ctx)
	if err != nil {
		return nil, err
	}

	writer, err := graft.Dep[ports.ManifestWriter](ctx)
	if err != nil {
		return nil, err
	}

	settings, err := graft.Dep[ports.SettingsLoader](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	telemetry, err := graft.Dep[ports.Telemetry](ctx)
	if err != nil {
		return nil, err
	}

	agg, err := graft.Dep[*aggregator.Aggregator](ctx)
	if err != nil {
		return nil, err
	}

	sel, err := graft.Dep[*selector.Selector](ctx)
	if err != nil {
		return nil, err
	}

	rw, err := graft.Dep[*rewriter.Rewriter](ctx)
	if err != nil {
		return nil, err
	}

	return New(reader, writer, settings, log, telemetry, agg, sel, rw), nil
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	app, err := graft.Dep[*App](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	telemetry, err := graft.Dep[ports.Telemetry](ctx)
	if err != nil {
		return nil, err
	}

	return &Components{
		App:       app,
		Logger:    log,
		Telemetry: telemetry,
	}, nil
}

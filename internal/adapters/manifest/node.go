package manifest

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/inherit/internal/adapters/logger"
	"go.trai.ch/inherit/internal/core/ports"
)

const (
	// ReaderNodeID is the unique identifier for the manifest reader Graft node.
	ReaderNodeID graft.ID = "adapter.manifest_reader"
	// WriterNodeID is the unique identifier for the manifest writer Graft node.
	WriterNodeID graft.ID = "adapter.manifest_writer"
)

func init() {
	graft.Register(graft.Node[ports.ManifestReader]{
		ID:        ReaderNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.ManifestReader, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewReader(NewOSFS(), log), nil
		},
	})

	graft.Register(graft.Node[ports.ManifestWriter]{
		ID:        WriterNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.ManifestWriter, error) {
			return NewWriter(), nil
		},
	})
}

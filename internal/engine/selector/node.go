package selector

import (
	"context"

	"github.com/grindlemire/graft"
)

// NodeID is the unique identifier for the selector Graft node.
const NodeID graft.ID = "engine.selector"

func init() {
	graft.Register(graft.Node[*Selector]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Selector, error) {
			return New(), nil
		},
	})
}

package rewriter

import (
	"context"

	"github.com/grindlemire/graft"
)

// NodeID is the unique identifier for the rewriter Graft node.
const NodeID graft.ID = "engine.rewriter"

func init() {
	graft.Register(graft.Node[*Rewriter]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Rewriter, error) {
			return New(), nil
		},
	})
}

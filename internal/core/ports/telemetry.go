package ports

import (
	"context"

	"go.trai.ch/inherit/internal/core/domain"
)

//go:generate mockgen -source=telemetry.go -destination=mocks/mock_telemetry.go -package=mocks

// Telemetry records the progress of a run as a set of vertices.
type Telemetry interface {
	// Record starts a vertex for the named stage.
	Record(ctx context.Context, name string) (context.Context, Vertex)
	// Close flushes and closes the recording session.
	Close() error
}

// Vertex is a unit of recorded work.
type Vertex interface {
	// Log records a message associated with the vertex.
	Log(level domain.LogLevel, msg string)
	// Complete marks the vertex as finished, failed when err is non-nil.
	Complete(err error)
}

type vertexKey struct{}

// ContextWithVertex returns a context carrying the vertex.
func ContextWithVertex(ctx context.Context, v Vertex) context.Context {
	return context.WithValue(ctx, vertexKey{}, v)
}

// VertexFromContext returns the vertex carried by ctx, if any.
func VertexFromContext(ctx context.Context) (Vertex, bool) {
	v, ok := ctx.Value(vertexKey{}).(Vertex)
	return v, ok
}

// Package progrock records pipeline stages as Progrock vertices.
package progrock

import (
	"context"
	"io"
	"sync"

	"github.com/opencontainers/go-digest"
	"github.com/vito/progrock"
	"go.trai.ch/inherit/internal/core/ports"
)

var _ ports.Telemetry = (*Recorder)(nil)

// Recorder implements ports.Telemetry. Each recorded stage takes the
// previously recorded stage as its input, so the tape reads as a chain.
type Recorder struct {
	w   *fanout
	rec *progrock.Recorder

	mu   sync.Mutex
	last digest.Digest
}

// New creates a new Recorder with a default tape. Nothing is printed until
// RenderTo is called.
func New() ports.Telemetry {
	return NewRecorder(progrock.NewTape())
}

// NewRecorder creates a new Recorder with the given writer.
func NewRecorder(w progrock.Writer) *Recorder {
	out := &fanout{writers: []progrock.Writer{w}}
	return &Recorder{
		w:   out,
		rec: progrock.NewRecorder(out),
	}
}

// RenderTo prints every stage recorded from now on to w once it completes.
func (r *Recorder) RenderTo(w io.Writer) {
	r.w.add(NewStageWriter(w))
}

// Record starts a vertex for the named stage.
func (r *Recorder) Record(ctx context.Context, name string) (context.Context, ports.Vertex) {
	d := digest.FromString("inherit/" + name)

	r.mu.Lock()
	var opts []progrock.VertexOpt
	if r.last != "" {
		opts = append(opts, progrock.WithInputs(r.last))
	}
	r.last = d
	r.mu.Unlock()

	vertex := &Vertex{vertex: r.rec.Vertex(d, name, opts...)}
	return ports.ContextWithVertex(ctx, vertex), vertex
}

// Close flushes and closes the recording session.
func (r *Recorder) Close() error {
	return r.w.Close()
}

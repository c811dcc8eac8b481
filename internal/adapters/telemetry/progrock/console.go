package progrock

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/vito/progrock"
	"go.trai.ch/inherit/internal/ui/style"
)

var _ progrock.Writer = (*StageWriter)(nil)

// StageWriter renders the tape as text: one line per completed stage with
// its duration, followed by the lines the stage logged.
type StageWriter struct {
	mu      sync.Mutex
	out     io.Writer
	logs    map[string]*bytes.Buffer
	printed map[string]bool
}

// NewStageWriter creates a StageWriter printing to out.
func NewStageWriter(out io.Writer) *StageWriter {
	return &StageWriter{
		out:     out,
		logs:    make(map[string]*bytes.Buffer),
		printed: make(map[string]bool),
	}
}

// WriteStatus implements progrock.Writer.
func (w *StageWriter) WriteStatus(update *progrock.StatusUpdate) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, l := range update.Logs {
		buf, ok := w.logs[l.Vertex]
		if !ok {
			buf = new(bytes.Buffer)
			w.logs[l.Vertex] = buf
		}
		buf.Write(l.Data)
	}

	for _, v := range update.Vertexes {
		if v.Completed == nil || w.printed[v.Id] {
			continue
		}
		w.printed[v.Id] = true
		if err := w.print(v); err != nil {
			return err
		}
	}
	return nil
}

func (w *StageWriter) print(v *progrock.Vertex) error {
	icon := lipgloss.NewStyle().Foreground(style.Green).Render(style.Check)
	suffix := ""
	if v.Error != nil {
		icon = lipgloss.NewStyle().Foreground(style.Red).Render(style.Cross)
		suffix = ": " + *v.Error
	}

	var elapsed time.Duration
	if v.Started != nil {
		elapsed = v.Completed.AsTime().Sub(v.Started.AsTime()).Round(time.Microsecond)
	}

	if _, err := fmt.Fprintf(w.out, "%s %s (%s)%s\n", icon, v.Name, elapsed, suffix); err != nil {
		return err
	}

	buf, ok := w.logs[v.Id]
	if !ok {
		return nil
	}
	for _, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		if _, err := fmt.Fprintf(w.out, "    %s\n", line); err != nil {
			return err
		}
	}
	delete(w.logs, v.Id)
	return nil
}

// Close implements progrock.Writer.
func (w *StageWriter) Close() error {
	return nil
}

// fanout forwards every update to a set of writers that may grow after the
// recorder was created.
type fanout struct {
	mu      sync.Mutex
	writers []progrock.Writer
}

func (f *fanout) add(w progrock.Writer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writers = append(f.writers, w)
}

func (f *fanout) snapshot() []progrock.Writer {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]progrock.Writer(nil), f.writers...)
}

func (f *fanout) WriteStatus(update *progrock.StatusUpdate) error {
	var errs []error
	for _, w := range f.snapshot() {
		if err := w.WriteStatus(update); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f *fanout) Close() error {
	var errs []error
	for _, w := range f.snapshot() {
		if err := w.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Package report renders the summary of a run for the terminal.
package report

import (
	"fmt"
	"io"

	"go.trai.ch/inherit/internal/core/domain"
	"go.trai.ch/inherit/internal/ui/style"
)

// Render writes the promoted dependencies and the outcome of the run to w.
func Render(w io.Writer, r *domain.Report) error {
	if r == nil || len(r.Decisions) == 0 {
		_, err := fmt.Fprintln(w, "No dependency reached the occurrence threshold.")
		return err
	}

	t := newTable(w, "NAMESPACE", "DEPENDENCY", "VERSION", "MEMBERS")
	for _, d := range r.Decisions {
		version := d.Version
		if d.Conflict != nil {
			version += " " + style.Warning
		}
		t.row(d.Key.Namespace, d.Key.Name, version, len(d.Members))
	}
	if err := t.flush(); err != nil {
		return err
	}

	var err error
	if r.DryRun {
		_, err = fmt.Fprintf(w, "\nDry run: %s would be rewritten in %s.\n",
			plural(r.Rewritten, "entry", "entries"), plural(len(r.Written), "manifest", "manifests"))
	} else {
		_, err = fmt.Fprintf(w, "\n%s %s rewritten, %s written, %d unchanged.\n",
			style.Check, plural(r.Rewritten, "entry", "entries"),
			plural(len(r.Written), "manifest", "manifests"), len(r.Unchanged))
	}
	return err
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}

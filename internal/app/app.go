// Package app implements the application layer for inherit.
package app

import (
	"bytes"
	"context"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"go.trai.ch/inherit/internal/core/domain"
	"go.trai.ch/inherit/internal/core/ports"
	"go.trai.ch/inherit/internal/engine/aggregator"
	"go.trai.ch/inherit/internal/engine/rewriter"
	"go.trai.ch/inherit/internal/engine/selector"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	reader     ports.ManifestReader
	writer     ports.ManifestWriter
	settings   ports.SettingsLoader
	logger     ports.Logger
	telemetry  ports.Telemetry
	aggregator *aggregator.Aggregator
	selector   *selector.Selector
	rewriter   *rewriter.Rewriter
}

// New creates a new App instance.
func New(
	reader ports.ManifestReader,
	writer ports.ManifestWriter,
	settings ports.SettingsLoader,
	log ports.Logger,
	telemetry ports.Telemetry,
	agg *aggregator.Aggregator,
	sel *selector.Selector,
	rw *rewriter.Rewriter,
) *App {
	return &App{
		reader:     reader,
		writer:     writer,
		settings:   settings,
		logger:     log,
		telemetry:  telemetry,
		aggregator: agg,
		selector:   sel,
		rewriter:   rw,
	}
}

// RunOptions configuration for the Run method.
type RunOptions struct {
	// Path is the root manifest or the directory holding it.
	Path string

	// Occurrences is the minimum number of members using a dependency.
	Occurrences int

	// ExcludePackages are member package names left out of the run.
	ExcludePackages []string

	// FailOnConflict makes disagreeing versions fatal.
	FailOnConflict bool

	// DryRun computes the rewrite without writing any file.
	DryRun bool

	// ConfigPath is an explicit settings file. When empty, the settings file
	// next to the root manifest is used if present.
	ConfigPath string
}

// Run promotes every dependency used by at least opts.Occurrences members to
// the workspace and rewrites the members to inherit it.
//
// Configuration errors and fatal conflicts abort before any file is touched.
// Write failures are reported together with the partial report.
//
//nolint:cyclop // orchestration function
func (a *App) Run(ctx context.Context, opts RunOptions) (*domain.Report, error) {
	if opts.Occurrences < 1 {
		return nil, zerr.With(domain.ErrInvalidThreshold, "occurrences", opts.Occurrences)
	}

	settings, err := a.loadSettings(opts)
	if err != nil {
		return nil, err
	}

	excludePackages := mergeUnique(opts.ExcludePackages, settings.ExcludePackages)
	failOnConflict := opts.FailOnConflict || settings.FailOnConflict

	var ws *domain.Workspace
	err = a.stage(ctx, domain.StageRead, func(v ports.Vertex) error {
		var loadErr error
		ws, loadErr = a.reader.Load(opts.Path, excludePackages)
		if loadErr != nil {
			return loadErr
		}
		v.Log(domain.LogLevelInfo, "loaded "+strconv.Itoa(len(ws.Members))+" members")
		return nil
	})
	if err != nil {
		return nil, err
	}

	var (
		occ     domain.Occurrences
		ignored []domain.Warning
	)
	err = a.stage(ctx, domain.StageAggregate, func(v ports.Vertex) error {
		occ, ignored = a.aggregator.Aggregate(ws.Members)
		v.Log(domain.LogLevelInfo, strconv.Itoa(len(occ))+" distinct dependencies")
		return nil
	})
	if err != nil {
		return nil, err
	}

	var sel *selector.Selection
	err = a.stage(ctx, domain.StageSelect, func(v ports.Vertex) error {
		var selErr error
		sel, selErr = a.selector.Select(occ, ws.Root, selector.Options{
			Threshold:           opts.Occurrences,
			ExcludeDependencies: settings.ExcludeDependencies,
			FailOnConflict:      failOnConflict,
		})
		if selErr != nil {
			return selErr
		}
		v.Log(domain.LogLevelInfo, strconv.Itoa(len(sel.Decisions))+" dependencies selected")
		return nil
	})
	if err != nil {
		return nil, err
	}

	var res *rewriter.Result
	err = a.stage(ctx, domain.StageRewrite, func(v ports.Vertex) error {
		res = a.rewriter.Apply(ws, sel.Decisions)
		v.Log(domain.LogLevelInfo, strconv.Itoa(res.Rewritten)+" entries rewritten")
		return nil
	})
	if err != nil {
		return nil, err
	}

	report := &domain.Report{
		Warnings:  slices.Concat(ignored, sel.Warnings, res.Warnings),
		Rewritten: res.Rewritten,
		DryRun:    opts.DryRun,
	}
	for _, d := range sel.Decisions {
		if slices.Contains(res.Published, d.Key.Name) {
			report.Decisions = append(report.Decisions, d)
		}
	}
	for _, w := range report.Warnings {
		a.warn(w)
	}

	manifests := ws.Manifests()
	if opts.DryRun {
		for _, m := range manifests {
			if bytes.Equal(m.Document.Bytes(), m.Source) {
				report.Unchanged = append(report.Unchanged, m.Path)
			} else {
				report.Written = append(report.Written, m.Path)
			}
		}
		return report, nil
	}

	err = a.stage(ctx, domain.StageWrite, func(v ports.Vertex) error {
		result, writeErr := a.writer.Write(manifests)
		report.Written = result.Written
		report.Unchanged = result.Unchanged
		v.Log(domain.LogLevelInfo, strconv.Itoa(len(result.Written))+" manifests written")
		return writeErr
	})
	return report, err
}

// stage runs fn inside a telemetry vertex for s.
func (a *App) stage(ctx context.Context, s domain.Stage, fn func(ports.Vertex) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, v := a.telemetry.Record(ctx, string(s))
	err := fn(v)
	v.Complete(err)
	return err
}

// loadSettings reads the explicit settings file, or the default one next to
// the root manifest. Missing default settings yield empty settings.
func (a *App) loadSettings(opts RunOptions) (*domain.Settings, error) {
	path := opts.ConfigPath
	explicit := path != ""
	if !explicit {
		manifest := opts.Path
		if filepath.Base(manifest) != domain.ManifestFileName {
			manifest = domain.ManifestPath(manifest)
		}
		path = domain.DefaultSettingsPath(manifest)
	}

	settings, err := a.settings.Load(path)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		if explicit {
			return nil, zerr.With(domain.ErrSettingsNotFound, "path", path)
		}
		return &domain.Settings{}, nil
	}
	return settings, nil
}

func (a *App) warn(w domain.Warning) {
	args := []any{"dependency", w.Dependency, "namespace", w.Namespace.String()}
	if len(w.Members) > 0 {
		args = append(args, "members", strings.Join(w.Members, ","))
	}
	a.logger.Warn(w.Message(), args...)
}

func mergeUnique(lists ...[]string) []string {
	var out []string
	for _, list := range lists {
		for _, v := range list {
			if !slices.Contains(out, v) {
				out = append(out, v)
			}
		}
	}
	return out
}

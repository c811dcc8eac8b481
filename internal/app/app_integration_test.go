package app_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/inherit/internal/adapters/config"
	"go.trai.ch/inherit/internal/adapters/manifest"
	"go.trai.ch/inherit/internal/adapters/telemetry/progrock"
	"go.trai.ch/inherit/internal/app"
	"go.trai.ch/inherit/internal/core/domain"
	"go.trai.ch/inherit/internal/core/ports/mocks"
	"go.trai.ch/inherit/internal/engine/aggregator"
	"go.trai.ch/inherit/internal/engine/rewriter"
	"go.trai.ch/inherit/internal/engine/selector"
	"go.uber.org/mock/gomock"
)

var workspaceFiles = map[string]string{
	"Cargo.toml": `[workspace]
members = ["crates/*"]
resolver = "2"

[workspace.package]
edition = "2021"
`,
	"inherit.yaml": `exclude_packages:
  - xtask
exclude_dependencies:
  - anyhow
`,
	"crates/core/Cargo.toml": `[package]
name = "core"
edition.workspace = true

[dependencies]
serde = { version = "1.0", features = ["derive"] }
anyhow = "1"
thiserror = "1.0"  # errors

[dev-dependencies]
proptest = "1.4"
`,
	"crates/api/Cargo.toml": `[package]
name = "api"
edition.workspace = true

[dependencies]
core = { path = "../core" }
serde = "1.0"
anyhow = "1"
thiserror = "1.0"
tokio = { version = "1.38", features = ["rt"] }

[dev-dependencies]
proptest = "1.4"
`,
	"crates/cli/Cargo.toml": `[package]
name = "cli"
edition.workspace = true

[dependencies]
serde = { version = "1.2", default-features = false }
anyhow = "1"
tokio = "1.38"
`,
	"crates/xtask/Cargo.toml": `[package]
name = "xtask"

[dependencies]
serde = "0.9"
anyhow = "1"
`,
}

func writeWorkspace(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range workspaceFiles {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return root
}

func newIntegrationApp(t *testing.T) *app.App {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Info(gomock.Any(), gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any(), gomock.Any()).AnyTimes()

	return app.New(
		manifest.NewReader(manifest.NewOSFS(), log),
		manifest.NewWriter(),
		config.NewLoader(log),
		log,
		progrock.New(),
		aggregator.New(),
		selector.New(),
		rewriter.New(),
	)
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func TestApp_Run_Workspace(t *testing.T) {
	root := writeWorkspace(t)
	a := newIntegrationApp(t)

	report, err := a.Run(context.Background(), app.RunOptions{Path: root, Occurrences: 2})
	require.NoError(t, err)

	var names []string
	for _, d := range report.Decisions {
		names = append(names, d.Key.String())
	}
	assert.Equal(t, []string{"normal/serde", "normal/thiserror", "normal/tokio", "dev/proptest"}, names)

	require.Len(t, report.Warnings, 1)
	assert.Equal(t, domain.WarningVersionConflictResolved, report.Warnings[0].Kind)
	assert.Equal(t, "serde", report.Warnings[0].Dependency)

	g := goldie.New(t)
	g.Assert(t, "workspace_root", readFile(t, filepath.Join(root, "Cargo.toml")))
	g.Assert(t, "workspace_core", readFile(t, filepath.Join(root, "crates", "core", "Cargo.toml")))
	g.Assert(t, "workspace_api", readFile(t, filepath.Join(root, "crates", "api", "Cargo.toml")))
	g.Assert(t, "workspace_cli", readFile(t, filepath.Join(root, "crates", "cli", "Cargo.toml")))

	assert.Equal(t, workspaceFiles["crates/xtask/Cargo.toml"],
		string(readFile(t, filepath.Join(root, "crates", "xtask", "Cargo.toml"))))
}

func TestApp_Run_SecondPassIsNoOp(t *testing.T) {
	root := writeWorkspace(t)
	a := newIntegrationApp(t)

	_, err := a.Run(context.Background(), app.RunOptions{Path: root, Occurrences: 2})
	require.NoError(t, err)

	before := make(map[string][]byte)
	for rel := range workspaceFiles {
		before[rel] = readFile(t, filepath.Join(root, filepath.FromSlash(rel)))
	}

	report, err := a.Run(context.Background(), app.RunOptions{Path: root, Occurrences: 2})
	require.NoError(t, err)
	assert.Empty(t, report.Written)
	assert.Equal(t, 0, report.Rewritten)

	for rel, data := range before {
		assert.Equal(t, string(data), string(readFile(t, filepath.Join(root, filepath.FromSlash(rel)))), rel)
	}
}

func TestApp_Run_DryRunWritesNothing(t *testing.T) {
	root := writeWorkspace(t)
	a := newIntegrationApp(t)

	report, err := a.Run(context.Background(), app.RunOptions{Path: root, Occurrences: 2, DryRun: true})
	require.NoError(t, err)
	assert.Len(t, report.Written, 4)

	for rel, content := range workspaceFiles {
		assert.Equal(t, content, string(readFile(t, filepath.Join(root, filepath.FromSlash(rel)))), rel)
	}
}

func TestApp_Run_ReportsDependencyTableWrittenAsKey(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{
		"Cargo.toml":   "[workspace]\nmembers = [\"a\", \"b\"]\n",
		"a/Cargo.toml": "[dependencies]\nserde = \"1.0\"\n",
		"b/Cargo.toml": "dependencies = { serde = \"1.0\" }\n",
	}
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}

	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Info(gomock.Any(), gomock.Any()).AnyTimes()
	log.EXPECT().Warn("ignoring dependencies: only [dependencies] table headers are read",
		"dependency", "dependencies", "namespace", domain.NamespaceNormal.String(),
		"members", filepath.Join(root, "b", "Cargo.toml"))

	a := app.New(
		manifest.NewReader(manifest.NewOSFS(), log),
		manifest.NewWriter(),
		config.NewLoader(log),
		log,
		progrock.New(),
		aggregator.New(),
		selector.New(),
		rewriter.New(),
	)

	report, err := a.Run(context.Background(), app.RunOptions{Path: root, Occurrences: 2})
	require.NoError(t, err)

	require.Len(t, report.Warnings, 1)
	assert.Equal(t, domain.WarningIgnoredDependencyTable, report.Warnings[0].Kind)
	assert.Empty(t, report.Decisions)
	assert.Equal(t, files["b/Cargo.toml"], string(readFile(t, filepath.Join(root, "b", "Cargo.toml"))))
}

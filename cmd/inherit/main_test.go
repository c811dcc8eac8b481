package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
	"github.com/stretchr/testify/assert"
	"go.trai.ch/inherit/internal/app"
	"go.trai.ch/inherit/internal/core/domain"
	"go.trai.ch/inherit/internal/core/ports"
	"go.trai.ch/inherit/internal/core/ports/mocks"
	"go.trai.ch/inherit/internal/engine/aggregator"
	"go.trai.ch/inherit/internal/engine/rewriter"
	"go.trai.ch/inherit/internal/engine/selector"
	"go.uber.org/mock/gomock"
)

func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"inherit": func() int {
			return run(context.Background(), os.Args[1:], os.Stdout, os.Stderr, provideComponents)
		},
	}))
}

func TestScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: "testdata/script",
		Setup: func(env *testscript.Env) error {
			env.Setenv("NO_COLOR", "1")
			return nil
		},
	})
}

type testMocks struct {
	reader    *mocks.MockManifestReader
	settings  *mocks.MockSettingsLoader
	logger    *mocks.MockLogger
	telemetry *mocks.MockTelemetry
	vertex    *mocks.MockVertex
}

func newTestApp(t *testing.T) (*app.App, *testMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := &testMocks{
		reader:    mocks.NewMockManifestReader(ctrl),
		settings:  mocks.NewMockSettingsLoader(ctrl),
		logger:    mocks.NewMockLogger(ctrl),
		telemetry: mocks.NewMockTelemetry(ctrl),
		vertex:    mocks.NewMockVertex(ctrl),
	}
	a := app.New(
		m.reader,
		mocks.NewMockManifestWriter(ctrl),
		m.settings,
		m.logger,
		m.telemetry,
		aggregator.New(),
		selector.New(),
		rewriter.New(),
	)
	return a, m
}

// TestRun_Success verifies that the run function returns 0 when the command succeeds.
func TestRun_Success(t *testing.T) {
	application, m := newTestApp(t)

	cleaned := false
	provider := func(_ context.Context) (*app.Components, func(), error) {
		return &app.Components{
			App:       application,
			Logger:    m.logger,
			Telemetry: m.telemetry,
		}, func() { cleaned = true }, nil
	}

	stdout := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, stdout, new(bytes.Buffer), provider)

	assert.Equal(t, 0, exitCode)
	assert.Contains(t, stdout.String(), "inherit version")
	assert.True(t, cleaned)
}

type renderingTelemetry struct {
	ports.Telemetry
	out io.Writer
}

func (r *renderingTelemetry) RenderTo(w io.Writer) {
	r.out = w
}

// TestRun_VerboseRendersStagesToStderr verifies that --verbose points the stage renderer at stderr.
func TestRun_VerboseRendersStagesToStderr(t *testing.T) {
	application, m := newTestApp(t)
	telemetry := &renderingTelemetry{Telemetry: m.telemetry}

	provider := func(_ context.Context) (*app.Components, func(), error) {
		return &app.Components{App: application, Logger: m.logger, Telemetry: telemetry}, func() {}, nil
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version", "--verbose"}, new(bytes.Buffer), stderr, provider)

	assert.Equal(t, 0, exitCode)
	assert.Same(t, stderr, telemetry.out)
}

// TestRun_InitializationError verifies that run returns 1 when component initialization fails.
func TestRun_InitializationError(t *testing.T) {
	provider := func(_ context.Context) (*app.Components, func(), error) {
		return nil, nil, errors.New("init failed")
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, new(bytes.Buffer), stderr, provider)

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr.String(), "Error: init failed")
}

// TestRun_ExecutionError verifies that run returns 1 and logs the error when the run fails.
func TestRun_ExecutionError(t *testing.T) {
	application, m := newTestApp(t)

	m.settings.EXPECT().Load(gomock.Any()).Return(nil, nil)
	m.reader.EXPECT().Load("ws", gomock.Any()).Return(nil, domain.ErrManifestNotFound)
	m.telemetry.EXPECT().Record(gomock.Any(), string(domain.StageRead)).
		DoAndReturn(func(ctx context.Context, _ string) (context.Context, ports.Vertex) {
			return ctx, m.vertex
		})
	m.vertex.EXPECT().Complete(domain.ErrManifestNotFound)
	m.logger.EXPECT().Error(domain.ErrManifestNotFound)

	provider := func(_ context.Context) (*app.Components, func(), error) {
		return &app.Components{App: application, Logger: m.logger, Telemetry: m.telemetry}, func() {}, nil
	}

	exitCode := run(context.Background(), []string{"-p", "ws", "-n", "2"}, new(bytes.Buffer), new(bytes.Buffer), provider)
	assert.Equal(t, 1, exitCode)
}

// TestRun_InvalidThreshold verifies that a non-positive threshold fails before any manifest is read.
func TestRun_InvalidThreshold(t *testing.T) {
	application, m := newTestApp(t)
	m.logger.EXPECT().Error(gomock.Any())

	provider := func(_ context.Context) (*app.Components, func(), error) {
		return &app.Components{App: application, Logger: m.logger, Telemetry: m.telemetry}, func() {}, nil
	}

	exitCode := run(context.Background(), []string{"-p", "ws", "-n", "0"}, new(bytes.Buffer), new(bytes.Buffer), provider)
	assert.Equal(t, 1, exitCode)
}

func TestUseJSON(t *testing.T) {
	assert.True(t, useJSON("json", os.Stderr))
	assert.False(t, useJSON("pretty", new(bytes.Buffer)))
	assert.True(t, useJSON("auto", new(bytes.Buffer)))
}

// Package main is the entry point for inherit.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/grindlemire/graft"
	"go.trai.ch/inherit/cmd/inherit/commands"
	"go.trai.ch/inherit/internal/app"
	"go.trai.ch/inherit/internal/ui/output"
	_ "go.trai.ch/inherit/internal/wiring"
)

// ComponentProvider is a function that returns the application components.
type ComponentProvider func(context.Context) (*app.Components, func(), error)

// configurableLogger is implemented by loggers whose destination and format
// can change after construction.
type configurableLogger interface {
	SetOutput(w io.Writer)
	SetJSON(enable bool)
}

// stageRenderer is implemented by telemetry that can print the stages it records.
type stageRenderer interface {
	RenderTo(w io.Writer)
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr, provideComponents))
}

func provideComponents(ctx context.Context) (*app.Components, func(), error) {
	c, _, err := graft.ExecuteFor[*app.Components](ctx)
	if err != nil {
		return nil, nil, err
	}
	return c, func() { _ = c.Close() }, nil
}

func run(
	ctx context.Context,
	args []string,
	stdout, stderr io.Writer,
	provider ComponentProvider,
) int {
	// 0. Context with signal handling
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// 1. Initialize application components
	components, cleanup, err := provider(ctx)
	if err != nil {
		// Logger is not available yet if initialization failed
		_, _ = fmt.Fprintln(stderr, "Error: "+err.Error())
		return 1
	}
	defer cleanup()

	logger, configurable := components.Logger.(configurableLogger)
	if configurable {
		logger.SetOutput(stderr)
	}

	// 2. Interface - CLI
	cli := commands.New(components.App,
		commands.WithLogFormat(func(format string) {
			if configurable {
				logger.SetJSON(useJSON(format, stderr))
			}
		}),
		commands.WithVerbose(func() {
			if r, ok := components.Telemetry.(stageRenderer); ok {
				r.RenderTo(stderr)
			}
		}),
	)
	cli.SetArgs(args)
	cli.SetOutput(stdout, stderr)

	// 3. Execution
	if err := cli.Execute(ctx); err != nil {
		components.Logger.Error(err)
		return 1
	}
	return 0
}

// useJSON resolves a log format. Auto picks JSON when stderr is not a terminal.
func useJSON(format string, stderr io.Writer) bool {
	switch format {
	case commands.LogFormatJSON:
		return true
	case commands.LogFormatPretty:
		return false
	default:
		return !output.IsTerminal(stderr)
	}
}

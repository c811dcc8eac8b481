// Package commands implements the CLI commands for inherit.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/inherit/internal/app"
	"go.trai.ch/inherit/internal/build"
	"go.trai.ch/inherit/internal/core/domain"
	"go.trai.ch/inherit/internal/ui/report"
	"go.trai.ch/zerr"
)

// Log formats accepted by --log-format.
const (
	LogFormatAuto   = "auto"
	LogFormatPretty = "pretty"
	LogFormatJSON   = "json"
)

// CLI represents the command line interface for inherit.
type CLI struct {
	app       Application
	logFormat func(format string)
	verbose   func()
	rootCmd   *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Run(ctx context.Context, opts app.RunOptions) (*domain.Report, error)
}

// Option configures a CLI.
type Option func(*CLI)

// WithLogFormat registers the hook receiving the validated --log-format value
// before the command runs.
func WithLogFormat(fn func(format string)) Option {
	return func(c *CLI) {
		c.logFormat = fn
	}
}

// WithVerbose registers the hook called before the command runs when
// --verbose is set.
func WithVerbose(fn func()) Option {
	return func(c *CLI) {
		c.verbose = fn
	}
}

// New creates a new CLI instance with the given app.
func New(a Application, opts ...Option) *CLI {
	rootCmd := &cobra.Command{
		Use:   "inherit",
		Short: "Promote shared Cargo dependencies to workspace inheritance",
		Long: `inherit finds dependencies declared by at least --occurrences members of a
Cargo workspace, publishes one version of each in [workspace.dependencies] and
rewrites the member entries to { workspace = true }.

Manifests are rewritten in place without backups. Keep them under version
control or use --dry-run first.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.setupRoot()
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

func (c *CLI) setupRoot() {
	cmd := c.rootCmd
	cmd.PersistentFlags().String("log-format", LogFormatAuto, "Log format: auto, pretty, or json")
	cmd.PersistentFlags().Bool("verbose", false, "Print each pipeline stage with its duration and log lines")
	cmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		format, _ := cmd.Flags().GetString("log-format")
		switch format {
		case LogFormatAuto, LogFormatPretty, LogFormatJSON:
		default:
			return zerr.With(domain.ErrInvalidLogFormat, "format", format)
		}
		if c.logFormat != nil {
			c.logFormat(format)
		}
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose && c.verbose != nil {
			c.verbose()
		}
		return nil
	}

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		path, _ := cmd.Flags().GetString("path")
		occurrences, _ := cmd.Flags().GetInt("occurrences")
		excludePackages, _ := cmd.Flags().GetStringSlice("exclude-packages")
		failOnConflict, _ := cmd.Flags().GetBool("fail-on-conflict")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		configPath, _ := cmd.Flags().GetString("config")

		r, err := c.app.Run(cmd.Context(), app.RunOptions{
			Path:            path,
			Occurrences:     occurrences,
			ExcludePackages: excludePackages,
			FailOnConflict:  failOnConflict,
			DryRun:          dryRun,
			ConfigPath:      configPath,
		})
		if r != nil {
			if renderErr := report.Render(cmd.OutOrStdout(), r); renderErr != nil && err == nil {
				err = renderErr
			}
		}
		return err
	}

	cmd.Flags().StringP("path", "p", "", "Path to the workspace Cargo.toml or its directory")
	cmd.Flags().IntP("occurrences", "n", 0, "Minimum number of members using a dependency")
	cmd.Flags().StringSlice("exclude-packages", nil, "Member packages to leave untouched")
	cmd.Flags().Bool("fail-on-conflict", false, "Fail when members disagree on a version")
	cmd.Flags().Bool("dry-run", false, "Report the rewrite without writing any file")
	cmd.Flags().String("config", "", "Settings file (default: inherit.yaml next to the root manifest)")
	_ = cmd.MarkFlagRequired("path")
	_ = cmd.MarkFlagRequired("occurrences")
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

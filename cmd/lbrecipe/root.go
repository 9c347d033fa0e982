// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/includeos/lbrecipe/internal/issue"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "lbrecipe",
		Short: "Package build-configuration generator for microLB",
		Long: TitleStyle.Render("lbrecipe") + SubtitleStyle.Render(" - package build-configuration generator for microLB") + `

lbrecipe derives a package version from the checkout's git tags and turns
settings and feature options into the dependency list and CMake configuration
for the microLB load balancer library.

` + SubtitleStyle.Render("Examples:") + `
  lbrecipe version                      Print the version derived from git tags
  lbrecipe deps -o tls=False            List requirements without TLS
  lbrecipe configure -s arch=armv8      Configure an aarch64 build
  lbrecipe build                        Re-configure and build
  lbrecipe package-info                 Print the package manifest`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			app.initLogging(cmd.Context())
			return nil
		},
	}

	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&app.flags.verbose, "verbose", "v", false, "enable verbose output")
	pf.StringVar(&app.flags.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/lbrecipe/config.cue)")
	pf.StringVar(&app.flags.recipePath, "recipe", "", "recipe file (default is ./recipe.cue or the built-in recipe)")
	pf.StringVar(&app.flags.metricsFile, "metrics-file", "", "write Prometheus metrics in textfile format to this path")

	rootCmd.AddCommand(
		newVersionCommand(app),
		newArchCommand(app),
		newDepsCommand(app),
		newConfigureCommand(app),
		newBuildCommand(app),
		newInstallCommand(app),
		newDeployCommand(app),
		newPackageInfoCommand(app),
		newPackageIDCommand(app),
		newInspectCommand(app),
		newConfigCommand(app),
		newCompletionCommand(),
	)

	return rootCmd
}

// initLogging applies the config's log level and verbosity. A broken config file
// is reported but does not stop commands that never read it.
func (a *App) initLogging(ctx context.Context) {
	cfg, _, err := a.loadConfig(ctx)
	if err != nil {
		fmt.Fprintln(a.stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, a.flags.verbose, "auto"))
		installLogger(newLogger(a.stderr, "", a.flags.verbose))
		return
	}
	if !a.flags.verbose {
		a.flags.verbose = cfg.UI.Verbose
	}
	installLogger(newLogger(a.stderr, cfg.LogLevel, a.flags.verbose))
}

// errorHandler prints actionable errors with their suggestions and leaves
// everything else to fang's default rendering.
func (a *App) errorHandler(w io.Writer, styles fang.Styles, err error) {
	style := glamourStyle(nil)
	if cfg, _, cfgErr := a.loadConfig(context.Background()); cfgErr == nil {
		style = glamourStyle(cfg)
	}
	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		fang.DefaultErrorHandler(w, styles, err)
		return
	}
	fmt.Fprintln(w, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, a.flags.verbose, style))
}

// Run executes the CLI with os.Args and returns the process exit code.
func Run() int {
	return RunApp(context.Background(), NewApp(Dependencies{}))
}

// RunApp executes the CLI around app and returns the process exit code.
func RunApp(ctx context.Context, app *App) int {
	rootCmd := NewRootCommand(app)
	err := fang.Execute(
		ctx,
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(app.errorHandler),
	)
	app.flushMetrics()
	return exitCode(err)
}

// Execute runs the CLI and exits the process. It is called by main.main().
func Execute() {
	os.Exit(Run())
}

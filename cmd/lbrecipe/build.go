// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/includeos/lbrecipe/internal/arch"
	"github.com/includeos/lbrecipe/internal/build"
	"github.com/includeos/lbrecipe/internal/issue"
	"github.com/includeos/lbrecipe/internal/watch"
	"github.com/includeos/lbrecipe/pkg/recipe"

	"github.com/spf13/cobra"
)

type (
	// buildFlags are shared by configure, build and install.
	buildFlags struct {
		settings []string
		options  []string
		source   string
	}

	// stageFunc is one of the Configurator entry points.
	stageFunc func(c *build.Configurator, ctx context.Context, s recipe.Settings, o recipe.FeatureOptions) (build.BuildConfig, error)
)

func (f *buildFlags) register(cmd *cobra.Command) {
	addSettingFlag(cmd, &f.settings)
	addOptionFlag(cmd, &f.options)
	cmd.Flags().StringVar(&f.source, "source", ".", "source directory containing CMakeLists.txt")
}

// newConfigureCommand creates the `lbrecipe configure` command.
func newConfigureCommand(app *App) *cobra.Command {
	var (
		flags  buildFlags
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Derive the build configuration and run CMake configure",
		Long: `Derive ARCH, LIVEUPDATE and TLS from settings and options and pass them to
CMake's configure step. An architecture without a mapping fails before CMake
is started.`,
		Example: `  lbrecipe configure
  lbrecipe configure -s arch=armv8 -o tls=False
  lbrecipe configure --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dryRun {
				return app.printDefinitions(cmd.Context(), flags)
			}
			return app.runStage(cmd.Context(), flags, build.StageConfigure, (*build.Configurator).Configure)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the CMake definitions without running CMake")

	return cmd
}

// newBuildCommand creates the `lbrecipe build` command.
func newBuildCommand(app *App) *cobra.Command {
	var (
		flags   buildFlags
		watchIt bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Re-configure and build with CMake",
		Long: `Re-configure and build with CMake.

With --watch the build is repeated whenever a source file, a CMake file or
the recipe changes, until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := app.runStage(cmd.Context(), flags, build.StageBuild, (*build.Configurator).Build)
			if !watchIt {
				return err
			}
			if err != nil {
				fmt.Fprintln(app.stderr, formatErrorForDisplay(err, app.flags.verbose, "auto"))
			}
			return app.watchAndRebuild(cmd.Context(), flags)
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVarP(&watchIt, "watch", "w", false, "rebuild when sources change")

	return cmd
}

// watchPatterns select the files whose change triggers a rebuild.
var watchPatterns = []string{
	"**/CMakeLists.txt",
	"**/*.cmake",
	"**/*.{c,cc,cpp,cxx,h,hh,hpp,hxx}",
	recipe.FileName,
}

// watchAndRebuild re-runs the build stage on source changes until ctx is done.
func (a *App) watchAndRebuild(ctx context.Context, flags buildFlags) error {
	cfg, _, err := a.loadConfig(ctx)
	if err != nil {
		return err
	}

	var ignore []string
	if bd := cfg.CMake.BuildDir; bd != "" && !filepath.IsAbs(bd) {
		ignore = append(ignore, filepath.ToSlash(filepath.Clean(bd))+"/**")
	}

	w, err := watch.New(watch.Config{
		Dir:      flags.source,
		Patterns: watchPatterns,
		Ignore:   ignore,
		OnChange: func(ctx context.Context, changed []string) error {
			fmt.Fprintf(a.stderr, "%s %s\n", VerboseStyle.Render("changed:"), strings.Join(changed, ", "))
			return a.runStage(ctx, flags, build.StageBuild, (*build.Configurator).Build)
		},
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(a.stderr, SubtitleStyle.Render("Watching for changes (Ctrl+C to stop)..."))
	return w.Run(ctx)
}

// newInstallCommand creates the `lbrecipe install` command.
func newInstallCommand(app *App) *cobra.Command {
	var flags buildFlags

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Re-configure and install with CMake",
		Long: `Re-configure and run CMake's install step. The install prefix comes from
cmake.install_prefix in the configuration, or CMake's default.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runStage(cmd.Context(), flags, build.StageInstall, (*build.Configurator).Install)
		},
	}
	flags.register(cmd)

	return cmd
}

// printDefinitions derives the BuildConfig without touching the backend.
func (a *App) printDefinitions(ctx context.Context, flags buildFlags) error {
	s, err := a.newSession(ctx, flags.source)
	if err != nil {
		return err
	}
	settings, opts, err := s.inputs(flags.settings, flags.options)
	if err != nil {
		return err
	}
	cfg, err := build.Derive(settings, opts)
	if err != nil {
		return buildError(build.StageConfigure, err)
	}
	for _, arg := range cfg.Definitions().Args() {
		fmt.Fprintln(a.stdout, arg)
	}
	return nil
}

// runStage drives one Configurator stage against the configured backend.
func (a *App) runStage(ctx context.Context, flags buildFlags, stage build.Stage, run stageFunc) error {
	s, err := a.newSession(ctx, flags.source)
	if err != nil {
		return err
	}
	settings, opts, err := s.inputs(flags.settings, flags.options)
	if err != nil {
		return err
	}

	sourceDir, err := filepath.Abs(flags.source)
	if err != nil {
		return err
	}
	backend := a.NewBackend(s.cfg, settings, sourceDir, a.stdout, a.stderr)
	configurator := build.NewConfigurator(backend, sourceDir)

	var cfg build.BuildConfig
	err = a.Metrics.Time(string(stage), func() error {
		var runErr error
		cfg, runErr = run(configurator, ctx, settings, opts)
		return runErr
	})
	if err != nil {
		return buildError(stage, err)
	}

	fmt.Fprintf(a.stdout, "%s %s (ARCH=%s LIVEUPDATE=%s TLS=%s)\n",
		SuccessStyle.Render("✓"), stage, cfg.Arch, onOffText(cfg.LiveUpdate), onOffText(cfg.TLS))
	return nil
}

// inputs parses settings and options in one step.
func (s *session) inputs(settingArgs, optionArgs []string) (recipe.Settings, recipe.FeatureOptions, error) {
	settings, err := s.settings(settingArgs)
	if err != nil {
		return recipe.Settings{}, recipe.FeatureOptions{}, err
	}
	opts, err := s.options(optionArgs)
	if err != nil {
		return recipe.Settings{}, recipe.FeatureOptions{}, err
	}
	return settings, opts, nil
}

func buildError(stage build.Stage, err error) error {
	switch {
	case errors.Is(err, arch.ErrUnknownArchitecture):
		return unknownArchitecture(err)
	case errors.Is(err, build.ErrCMakeNotFound):
		return issue.NewErrorContext().
			WithOperation("run cmake").
			WithIssue(issue.CMakeNotFoundId).
			WithSuggestion("Install CMake 3.16 or newer").
			WithSuggestion("Point cmake.binary in the configuration at the executable").
			Wrap(err).
			BuildError()
	default:
		return issue.NewErrorContext().
			WithOperation(string(stage)).
			WithIssue(issue.BuildFailedId).
			WithSuggestion("Re-run with --verbose to see the CMake command line").
			Wrap(err).
			BuildError()
	}
}

func onOffText(b bool) string {
	if b {
		return "ON"
	}
	return "OFF"
}

// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/includeos/lbrecipe/internal/build"
	"github.com/includeos/lbrecipe/internal/config"
	"github.com/includeos/lbrecipe/internal/issue"
	"github.com/includeos/lbrecipe/internal/metrics"
	"github.com/includeos/lbrecipe/internal/vcs"
	"github.com/includeos/lbrecipe/pkg/recipe"

	"github.com/spf13/afero"
)

type (
	// App wires CLI services and shared dependencies. It is the composition root for
	// the CLI layer: every Cobra handler receives an App and reaches configuration,
	// version control and the build backend through it.
	App struct {
		Config     ConfigProvider
		OpenVCS    VCSOpener
		NewBackend BackendFactory
		Metrics    *metrics.Recorder
		FS         afero.Fs

		flags  globalFlags
		stdout io.Writer
		stderr io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil fields are
	// replaced with production defaults by NewApp.
	Dependencies struct {
		Config     ConfigProvider
		OpenVCS    VCSOpener
		NewBackend BackendFactory
		Metrics    *metrics.Recorder
		FS         afero.Fs
		Stdout     io.Writer
		Stderr     io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, string, error)
	}

	// VCSOpener opens the version control backend for a source directory.
	VCSOpener func(dir string) (vcs.Backend, error)

	// BackendFactory creates the build backend for one invocation.
	BackendFactory func(cfg *config.Config, settings recipe.Settings, sourceDir string, stdout, stderr io.Writer) build.Backend

	globalFlags struct {
		configPath  string
		recipePath  string
		verbose     bool
		metricsFile string
	}

	// session is the per-invocation state every domain command starts from.
	session struct {
		cfg        *config.Config
		configFrom string
		recipe     *recipe.Recipe
		recipeFrom string
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.OpenVCS == nil {
		deps.OpenVCS = openGit
	}
	if deps.NewBackend == nil {
		deps.NewBackend = newCMakeBackend
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}
	if deps.FS == nil {
		deps.FS = afero.NewOsFs()
	}

	return &App{
		Config:     deps.Config,
		OpenVCS:    deps.OpenVCS,
		NewBackend: deps.NewBackend,
		Metrics:    deps.Metrics,
		FS:         deps.FS,
		stdout:     deps.Stdout,
		stderr:     deps.Stderr,
	}
}

func openGit(dir string) (vcs.Backend, error) {
	return vcs.OpenGit(dir)
}

// newCMakeBackend is the production BackendFactory. A relative build_dir is
// resolved against the source directory.
func newCMakeBackend(cfg *config.Config, settings recipe.Settings, sourceDir string, stdout, stderr io.Writer) build.Backend {
	buildDir := cfg.CMake.BuildDir
	if buildDir == "" {
		buildDir = config.DefaultBuildDir
	}
	if !filepath.IsAbs(buildDir) {
		buildDir = filepath.Join(sourceDir, buildDir)
	}
	opts := []build.CMakeOption{
		build.WithBuildType(settings.BuildType.String()),
		build.WithOutput(stdout, stderr),
	}
	if cfg.CMake.Binary != "" {
		opts = append(opts, build.WithBinary(cfg.CMake.Binary))
	}
	if cfg.CMake.Generator != "" {
		opts = append(opts, build.WithGenerator(cfg.CMake.Generator))
	}
	if cfg.CMake.InstallPrefix != "" {
		opts = append(opts, build.WithInstallPrefix(cfg.CMake.InstallPrefix))
	}
	return build.NewCMakeBackend(buildDir, opts...)
}

// loadConfig loads configuration honoring --config.
func (a *App) loadConfig(ctx context.Context) (*config.Config, string, error) {
	return a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: a.flags.configPath})
}

// newSession loads configuration and the recipe. The recipe comes from --recipe,
// then recipe.cue in sourceDir, then the built-in default.
func (a *App) newSession(ctx context.Context, sourceDir string) (*session, error) {
	cfg, from, err := a.loadConfig(ctx)
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, configFrom: from}

	path := a.flags.recipePath
	if path == "" {
		candidate := filepath.Join(sourceDir, recipe.FileName)
		if _, statErr := os.Stat(candidate); statErr == nil {
			path = candidate
		}
	}

	if path == "" {
		s.recipe, err = recipe.Default()
		s.recipeFrom = "(built-in)"
	} else {
		s.recipe, err = recipe.Load(path)
		s.recipeFrom = path
	}
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("load recipe").
			WithResource(path).
			WithSuggestion("Check the recipe against the schema with 'lbrecipe inspect --recipe FILE'").
			WithSuggestion("Remove --recipe to use the built-in microlb recipe").
			WithIssue(issue.RecipeParseErrorId).
			Wrap(err).
			BuildError()
	}
	return s, nil
}

// settings resolves settings from the config profile overridden by -s assignments.
func (s *session) settings(assignments []string) (recipe.Settings, error) {
	settings, err := recipe.ParseSettings(s.cfg.Profile, assignments)
	if err != nil {
		return recipe.Settings{}, invalidInput("parse settings", err, "Settings keys are: os, arch, build_type, compiler")
	}
	return settings, nil
}

// options resolves feature options from the recipe defaults overridden by -o assignments.
func (s *session) options(assignments []string) (recipe.FeatureOptions, error) {
	opts, err := recipe.ParseOptions(s.recipe.DefaultOptions, assignments)
	if err != nil {
		return recipe.FeatureOptions{}, invalidInput("parse options", err, "Option keys are: liveupdate, tls (values True/False)")
	}
	return opts, nil
}

// scope resolves the requirement scope from --scope or the config default.
func (s *session) scope(flag string) (recipe.Scope, error) {
	if flag == "" {
		return s.cfg.RecipeScope(), nil
	}
	sc, err := recipe.ParseScope(flag)
	if err != nil {
		return recipe.Scope{}, invalidInput("parse scope", err, "Use the form user/channel, e.g. includeos/stable")
	}
	return sc, nil
}

func invalidInput(op string, err error, hint string) error {
	return &ExitError{
		Code: ExitUsage,
		Err: issue.NewErrorContext().
			WithOperation(op).
			WithSuggestion(hint).
			WithIssue(issue.InvalidSettingsId).
			Wrap(err).
			BuildError(),
	}
}

// flushMetrics writes the metrics textfile when --metrics-file was given.
func (a *App) flushMetrics() {
	if a.flags.metricsFile == "" {
		return
	}
	if err := a.Metrics.WriteTextfile(a.flags.metricsFile); err != nil {
		fmt.Fprintln(a.stderr, WarningStyle.Render("Warning: ")+err.Error())
	}
}

// formatErrorForDisplay formats an error for user display. ActionableErrors use
// their own Format; in verbose mode the linked issue is rendered too.
func formatErrorForDisplay(err error, verbose bool, style string) string {
	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		return err.Error()
	}
	out := ae.Format(verbose)
	if verbose && ae.IssueID != 0 {
		if iss := issue.Get(ae.IssueID); iss != nil {
			if rendered, renderErr := iss.Render(style); renderErr == nil {
				out += "\n\n" + rendered
			}
		}
	}
	return out
}

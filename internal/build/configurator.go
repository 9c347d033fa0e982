// SPDX-License-Identifier: MPL-2.0

package build

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/includeos/lbrecipe/pkg/recipe"
)

// Pipeline stages reported in StageError.
const (
	StageConfigure Stage = "configure"
	StageBuild     Stage = "build"
	StageInstall   Stage = "install"
)

type (
	// Stage names a backend step.
	Stage string

	// Backend performs the native build.
	Backend interface {
		Configure(ctx context.Context, sourceDir string, defs Definitions) error
		Build(ctx context.Context) error
		Install(ctx context.Context) error
	}

	// Configurator derives configurations and hands them to a Backend.
	Configurator struct {
		backend   Backend
		sourceDir string
	}

	// StageError records which backend step failed.
	StageError struct {
		Stage Stage
		Err   error
	}
)

// Error implements the error interface.
func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

// Unwrap returns the backend error.
func (e *StageError) Unwrap() error { return e.Err }

// NewConfigurator returns a Configurator that builds sourceDir with backend.
func NewConfigurator(backend Backend, sourceDir string) *Configurator {
	return &Configurator{backend: backend, sourceDir: sourceDir}
}

// Configure derives the configuration and passes it to the backend.
func (c *Configurator) Configure(ctx context.Context, settings recipe.Settings, opts recipe.FeatureOptions) (BuildConfig, error) {
	cfg, err := Derive(settings, opts)
	if err != nil {
		return BuildConfig{}, err
	}

	defs := cfg.Definitions()
	slog.Debug("configuring", "source", c.sourceDir, "definitions", defs.Args())
	if err := c.backend.Configure(ctx, c.sourceDir, defs); err != nil {
		return cfg, &StageError{Stage: StageConfigure, Err: err}
	}
	return cfg, nil
}

// Build configures afresh and then builds.
func (c *Configurator) Build(ctx context.Context, settings recipe.Settings, opts recipe.FeatureOptions) (BuildConfig, error) {
	cfg, err := c.Configure(ctx, settings, opts)
	if err != nil {
		return cfg, err
	}
	if err := c.backend.Build(ctx); err != nil {
		return cfg, &StageError{Stage: StageBuild, Err: err}
	}
	return cfg, nil
}

// Install configures afresh and then installs.
func (c *Configurator) Install(ctx context.Context, settings recipe.Settings, opts recipe.FeatureOptions) (BuildConfig, error) {
	cfg, err := c.Configure(ctx, settings, opts)
	if err != nil {
		return cfg, err
	}
	if err := c.backend.Install(ctx); err != nil {
		return cfg, &StageError{Stage: StageInstall, Err: err}
	}
	return cfg, nil
}

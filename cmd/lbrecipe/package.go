// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/includeos/lbrecipe/internal/manifest"
	"github.com/includeos/lbrecipe/internal/version"

	"github.com/spf13/cobra"
)

const stepManifest = "manifest"

type packageFlags struct {
	settings []string
	options  []string
	scope    string
	source   string
}

func (f *packageFlags) register(cmd *cobra.Command) {
	addSettingFlag(cmd, &f.settings)
	addOptionFlag(cmd, &f.options)
	cmd.Flags().StringVar(&f.scope, "scope", "", "requirement scope as user/channel (default from config)")
	cmd.Flags().StringVar(&f.source, "source", ".", "source checkout to read tags and recipe.cue from")
}

// newPackageInfoCommand creates the `lbrecipe package-info` command.
func newPackageInfoCommand(app *App) *cobra.Command {
	var (
		flags  packageFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "package-info",
		Short: "Print the package manifest as TOML",
		Long: `Print the package manifest: name, version, package id, settings, options,
requirements and the libraries consumers link against.`,
		Example: `  lbrecipe package-info
  lbrecipe package-info -s arch=armv8 --output ` + manifest.FileName,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := app.buildManifest(cmd.Context(), flags)
			if err != nil {
				return err
			}
			if output == "" {
				return m.Encode(app.stdout)
			}
			if err := m.WriteFile(output); err != nil {
				return err
			}
			fmt.Fprintf(app.stdout, "%s %s\n", SuccessStyle.Render("wrote"), output)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&output, "output", "", "write the manifest to FILE instead of stdout")

	return cmd
}

// newPackageIDCommand creates the `lbrecipe package-id` command.
func newPackageIDCommand(app *App) *cobra.Command {
	var (
		flags        packageFlags
		manifestPath string
	)

	cmd := &cobra.Command{
		Use:   "package-id",
		Short: "Print the package identity hash",
		Long: `Print the package identity. Builds whose versions share a major version,
that use identical settings and options, and whose requirements share their
major versions share an identity.

With --manifest the identity recorded in the manifest is checked against its
contents and printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if manifestPath != "" {
				m, err := manifest.ReadFile(manifestPath)
				if err != nil {
					return err
				}
				if err := m.Verify(); err != nil {
					return err
				}
				fmt.Fprintln(app.stdout, m.Package.ID)
				return nil
			}

			s, err := app.newSession(cmd.Context(), flags.source)
			if err != nil {
				return err
			}
			settings, opts, err := s.inputs(flags.settings, flags.options)
			if err != nil {
				return err
			}
			sc, err := s.scope(flags.scope)
			if err != nil {
				return err
			}
			reqs, err := app.resolveDeps(s.recipe, opts, sc)
			if err != nil {
				return err
			}
			ver := app.resolveVersion(cmd.Context(), flags.source).VersionOrFallback()
			fmt.Fprintln(app.stdout, version.PackageID(ver, settings, opts, reqs))
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&manifestPath, "manifest", "", "verify and print the id recorded in this manifest")

	return cmd
}

// buildManifest runs every resolver and assembles the package manifest.
func (a *App) buildManifest(ctx context.Context, flags packageFlags) (manifest.Manifest, error) {
	s, err := a.newSession(ctx, flags.source)
	if err != nil {
		return manifest.Manifest{}, err
	}
	settings, opts, err := s.inputs(flags.settings, flags.options)
	if err != nil {
		return manifest.Manifest{}, err
	}
	sc, err := s.scope(flags.scope)
	if err != nil {
		return manifest.Manifest{}, err
	}

	ver := a.resolveVersion(ctx, flags.source).VersionOrFallback()
	reqs, err := a.resolveDeps(s.recipe, opts, sc)
	if err != nil {
		return manifest.Manifest{}, err
	}

	var m manifest.Manifest
	_ = a.Metrics.Time(stepManifest, func() error {
		m = manifest.New(s.recipe, ver, settings, opts, reqs)
		return nil
	})
	return m, nil
}

// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/includeos/lbrecipe/internal/deps"
	"github.com/includeos/lbrecipe/internal/issue"
	"github.com/includeos/lbrecipe/pkg/recipe"

	"github.com/spf13/cobra"
)

const stepDeps = "deps"

// newDepsCommand creates the `lbrecipe deps` command.
func newDepsCommand(app *App) *cobra.Command {
	var (
		options []string
		scope   string
		source  string
	)

	cmd := &cobra.Command{
		Use:   "deps",
		Short: "List the package requirements for the selected options",
		Long: `List the upstream packages required by the build, in order.

The base runtime always comes first, followed by the live-update library when
liveupdate is enabled and the TLS library when tls is enabled.`,
		Example: `  lbrecipe deps
  lbrecipe deps -o liveupdate=False -o tls=False
  lbrecipe deps --scope includeos/stable`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.newSession(cmd.Context(), source)
			if err != nil {
				return err
			}
			opts, err := s.options(options)
			if err != nil {
				return err
			}
			sc, err := s.scope(scope)
			if err != nil {
				return err
			}
			reqs, err := app.resolveDeps(s.recipe, opts, sc)
			if err != nil {
				return err
			}
			for _, ref := range deps.References(reqs) {
				fmt.Fprintln(app.stdout, ref)
			}
			return nil
		},
	}

	addOptionFlag(cmd, &options)
	cmd.Flags().StringVar(&scope, "scope", "", "requirement scope as user/channel (default from config)")
	cmd.Flags().StringVar(&source, "source", ".", "source checkout (for recipe.cue lookup)")

	return cmd
}

// resolveDeps runs the dependency resolver and records the requirement count.
func (a *App) resolveDeps(r *recipe.Recipe, opts recipe.FeatureOptions, scope recipe.Scope) ([]deps.Requirement, error) {
	var reqs []deps.Requirement
	err := a.Metrics.Time(stepDeps, func() error {
		var err error
		reqs, err = deps.Resolve(r.Requires, opts, scope)
		return err
	})
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("resolve requirements").
			WithIssue(issue.RecipeParseErrorId).
			WithSuggestion("Check the requires section of the recipe").
			Wrap(err).
			BuildError()
	}
	a.Metrics.SetRequirements(len(reqs))
	return reqs, nil
}

func addSettingFlag(cmd *cobra.Command, target *[]string) {
	cmd.Flags().StringArrayVarP(target, "setting", "s", nil, "override a setting, as key=value (os, arch, build_type, compiler)")
}

func addOptionFlag(cmd *cobra.Command, target *[]string) {
	cmd.Flags().StringArrayVarP(target, "option", "o", nil, "override a feature option, as key=value (liveupdate, tls)")
}

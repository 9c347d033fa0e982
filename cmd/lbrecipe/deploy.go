// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/includeos/lbrecipe/internal/deploy"
	"github.com/includeos/lbrecipe/internal/issue"

	"github.com/spf13/cobra"
)

const stepDeploy = "deploy"

// newDeployCommand creates the `lbrecipe deploy` command.
func newDeployCommand(app *App) *cobra.Command {
	var (
		prefix string
		dest   string
		source string
		quiet  bool
	)

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Copy installed headers and libraries to a destination",
		Long: `Copy installed artifacts from the install prefix into a destination directory
following the recipe's deploy rules (by default the include tree and static
archives under lib).`,
		Example: `  lbrecipe deploy --prefix build/install --dest /opt/microlb`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.newSession(cmd.Context(), source)
			if err != nil {
				return err
			}
			if prefix == "" {
				prefix = s.cfg.CMake.InstallPrefix
			}
			if prefix == "" {
				return &ExitError{Code: ExitUsage, Err: fmt.Errorf("--prefix is required when cmake.install_prefix is not configured")}
			}

			var report deploy.Report
			err = app.Metrics.Time(stepDeploy, func() error {
				var deployErr error
				report, deployErr = deploy.New(app.FS).Deploy(cmd.Context(), prefix, dest, s.recipe.Deploy)
				return deployErr
			})
			if err != nil {
				return issue.NewErrorContext().
					WithOperation("deploy artifacts").
					WithResource(prefix).
					WithIssue(issue.DeployFailedId).
					WithSuggestion("Run 'lbrecipe install' first so the prefix is populated").
					Wrap(err).
					BuildError()
			}

			if !quiet {
				for _, c := range report.Copied {
					fmt.Fprintf(app.stdout, "%s %s\n", SuccessStyle.Render("+"), c.To)
				}
			}
			fmt.Fprintf(app.stdout, "deployed %d file(s) to %s\n", len(report.Copied), dest)
			return nil
		},
	}

	cmd.Flags().StringVar(&prefix, "prefix", "", "install prefix to copy from (default cmake.install_prefix)")
	cmd.Flags().StringVar(&dest, "dest", "", "destination directory")
	cmd.Flags().StringVar(&source, "source", ".", "source checkout (for recipe.cue lookup)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print only the summary line")
	_ = cmd.MarkFlagRequired("dest")

	return cmd
}

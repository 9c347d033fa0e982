// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/includeos/lbrecipe/internal/vcs"
	"github.com/includeos/lbrecipe/internal/version"

	"github.com/spf13/cobra"
)

const stepVersion = "version"

// newVersionCommand creates the `lbrecipe version` command.
func newVersionCommand(app *App) *cobra.Command {
	var (
		source  string
		explain bool
	)

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the package version derived from git tags",
		Long: `Print the package version derived from the nearest git tag.

A commit that carries the tag yields the tag itself (without a leading "v").
N commits after the tag yield the tag with its last component incremented and
"-N" appended. Without a usable tag the version is 0.0.0.`,
		Example: `  lbrecipe version
  lbrecipe version --source ../microLB --explain`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res := app.resolveVersion(cmd.Context(), source)
			if !explain {
				fmt.Fprintln(app.stdout, res.VersionOrFallback())
				return nil
			}
			printResolution(app, res)
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", ".", "source checkout to read tags from")
	cmd.Flags().BoolVar(&explain, "explain", false, "show the tag, distance and fallback reason")

	return cmd
}

// resolveVersion runs the version resolver against dir and records the outcome.
// Resolution never fails; an unusable repository yields the fallback.
func (a *App) resolveVersion(ctx context.Context, dir string) version.Resolution {
	var res version.Resolution
	_ = a.Metrics.Time(stepVersion, func() error {
		backend, err := a.OpenVCS(dir)
		if err != nil {
			res = version.Resolve(ctx, unavailableBackend{err: err})
			return nil
		}
		res = version.Resolve(ctx, backend)
		return nil
	})
	a.Metrics.SetVersion(res.VersionOrFallback(), res.Reason.String())
	return res
}

// unavailableBackend reports the error from opening the repository on every
// query, so Resolve classifies it like any other backend failure.
type unavailableBackend struct {
	err error
}

func (b unavailableBackend) NearestTag(context.Context) (string, error) { return "", b.err }

func (b unavailableBackend) CommitsBetween(context.Context, string, string) (int, error) {
	return 0, b.err
}

var _ vcs.Backend = unavailableBackend{}

func printResolution(app *App, res version.Resolution) {
	row := func(key, value string) {
		fmt.Fprintf(app.stdout, "%s %s\n", KeyStyle.Render(fmt.Sprintf("%-9s", key+":")), value)
	}
	row("version", SuccessStyle.Render(res.VersionOrFallback()))
	if res.Tag != "" {
		row("tag", res.Tag)
		row("distance", strconv.Itoa(res.Distance))
	}
	row("reason", res.Reason.String())
	if res.Err != nil {
		row("detail", VerboseStyle.Render(res.Err.Error()))
	}
}

// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/includeos/lbrecipe/internal/arch"
	"github.com/includeos/lbrecipe/internal/issue"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

// newArchCommand creates the `lbrecipe arch` command.
func newArchCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "arch [ARCH]",
		Short: "Show the architecture to build target mapping",
		Long: `Show how a platform architecture maps to the target passed to CMake as ARCH.

Without an argument the whole table is printed. An architecture without a
mapping is an error.`,
		Example: `  lbrecipe arch
  lbrecipe arch armv8`,
		Args: cobra.MaximumNArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return arch.Supported(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				fmt.Fprintln(app.stdout, renderArchTable(arch.Table()))
				return nil
			}
			target, err := arch.Lookup(args[0])
			if err != nil {
				return unknownArchitecture(err)
			}
			fmt.Fprintln(app.stdout, target)
			return nil
		},
	}
}

func renderArchTable(mappings []arch.Mapping) string {
	rows := make([][]string, 0, len(mappings))
	for _, m := range mappings {
		rows = append(rows, []string{m.Arch, m.Target.String()})
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(tableBorderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		}).
		Headers("ARCH", "TARGET").
		Rows(rows...).
		String()
}

// unknownArchitecture wraps a mapper or configurator failure for display.
func unknownArchitecture(err error) error {
	ctx := issue.NewErrorContext().
		WithOperation("map architecture").
		WithIssue(issue.UnknownArchitectureId).
		WithSuggestion("Supported architectures: " + strings.Join(arch.Supported(), ", "))
	var unknown *arch.UnknownArchitectureError
	if errors.As(err, &unknown) {
		ctx = ctx.WithResource(unknown.Arch)
	}
	return ctx.Wrap(err).BuildError()
}

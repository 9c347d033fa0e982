// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/includeos/lbrecipe/internal/arch"
	"github.com/includeos/lbrecipe/pkg/recipe"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

// newInspectCommand creates the `lbrecipe inspect` command.
func newInspectCommand(app *App) *cobra.Command {
	var (
		source string
		raw    bool
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Render a summary of the recipe",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.newSession(cmd.Context(), source)
			if err != nil {
				return err
			}
			md := recipeMarkdown(s.recipe, s.recipeFrom)
			if raw {
				fmt.Fprint(app.stdout, md)
				return nil
			}
			out, err := glamour.Render(md, glamourStyle(s.cfg))
			if err != nil {
				return fmt.Errorf("failed to render recipe summary: %w", err)
			}
			fmt.Fprint(app.stdout, out)
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", ".", "source checkout (for recipe.cue lookup)")
	cmd.Flags().BoolVar(&raw, "raw", false, "print the Markdown source instead of rendering it")

	return cmd
}

// recipeMarkdown describes r as a Markdown document.
func recipeMarkdown(r *recipe.Recipe, from string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", r.Name)
	if r.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", r.Description)
	}
	fmt.Fprintf(&b, "- **License:** %s\n", r.License)
	if r.URL != "" {
		fmt.Fprintf(&b, "- **URL:** %s\n", r.URL)
	}
	fmt.Fprintf(&b, "- **Source:** %s (%s)\n", r.SCM.Type, r.SCM.URL)
	fmt.Fprintf(&b, "- **Recipe:** `%s`\n\n", from)

	b.WriteString("## Options\n\n| Option | Default |\n|---|---|\n")
	fmt.Fprintf(&b, "| %s | %s |\n", recipe.OptionLiveUpdate, recipe.FormatBool(r.DefaultOptions.LiveUpdate))
	fmt.Fprintf(&b, "| %s | %s |\n\n", recipe.OptionTLS, recipe.FormatBool(r.DefaultOptions.TLS))

	b.WriteString("## Requirements\n\n| When | Package | Range |\n|---|---|---|\n")
	rows := []struct {
		when string
		dep  recipe.Dependency
	}{
		{"always", r.Requires.Runtime},
		{recipe.OptionLiveUpdate, r.Requires.LiveUpdate},
		{recipe.OptionTLS, r.Requires.TLS},
	}
	for _, row := range rows {
		rng := row.dep.Range
		if row.dep.Scope != nil {
			rng += " @" + row.dep.Scope.String()
		}
		fmt.Fprintf(&b, "| %s | %s | `%s` |\n", row.when, row.dep.Name, rng)
	}

	b.WriteString("\n## Architectures\n\n| Arch | Target |\n|---|---|\n")
	for _, m := range arch.Table() {
		fmt.Fprintf(&b, "| %s | %s |\n", m.Arch, m.Target)
	}

	b.WriteString("\n## Artifacts\n\n")
	fmt.Fprintf(&b, "Libraries: %s\n\n", strings.Join(r.Libs, ", "))
	for _, rule := range r.Deploy {
		fmt.Fprintf(&b, "- `%s/%s` -> `%s`\n", rule.Src, rule.Pattern, rule.Dst)
	}

	return b.String()
}

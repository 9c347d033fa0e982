// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/includeos/lbrecipe/internal/config"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `lbrecipe config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage lbrecipe configuration",
		Long: `Manage lbrecipe configuration.

Configuration is read from the first of:
  - the file given with --config
  - Linux: ~/.config/lbrecipe/config.cue
  - macOS: ~/Library/Application Support/lbrecipe/config.cue
  - Windows: %APPDATA%\lbrecipe\config.cue
  - ./` + config.LocalConfigFile + `

Environment variables prefixed with ` + config.EnvPrefix + `_ override file values
(e.g. ` + config.EnvPrefix + `_PROFILE_ARCH=armv8).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, created, err := config.CreateDefaultConfig()
			if err != nil {
				return err
			}
			if !created {
				fmt.Fprintf(app.stdout, "%s %s\n", WarningStyle.Render("Config file already exists:"), path)
				return nil
			}
			fmt.Fprintf(app.stdout, "%s %s\n", SuccessStyle.Render("Created config file:"), path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ConfigFilePath()
			if err != nil {
				return err
			}
			fmt.Fprintln(app.stdout, path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := app.loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App) error {
	cfg, from, err := app.loadConfig(ctx)
	if err != nil {
		return err
	}

	row := func(key, value string) {
		fmt.Fprintf(app.stdout, "%s: %s\n", KeyStyle.Render(key), SuccessStyle.Render(value))
	}

	fmt.Fprintln(app.stdout, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(app.stdout)

	if from != "" {
		fmt.Fprintf(app.stdout, "%s: %s\n", KeyStyle.Render("Config file"), from)
	} else {
		fmt.Fprintf(app.stdout, "%s: %s\n", KeyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(app.stdout)

	row("profile.os", cfg.Profile.OS.String())
	row("profile.arch", cfg.Profile.Arch.String())
	row("profile.build_type", cfg.Profile.BuildType.String())
	row("profile.compiler", cfg.Profile.Compiler.String())
	row("scope", cfg.RecipeScope().String())
	row("cmake.binary", cfg.CMake.Binary)
	row("cmake.build_dir", cfg.CMake.BuildDir)
	row("cmake.generator", valueOrDefault(cfg.CMake.Generator))
	row("cmake.install_prefix", valueOrDefault(cfg.CMake.InstallPrefix))
	row("log_level", cfg.LogLevel.String())
	row("ui.color_scheme", cfg.UI.ColorScheme.String())
	row("ui.verbose", fmt.Sprintf("%v", cfg.UI.Verbose))

	return nil
}

func valueOrDefault(s string) string {
	if s == "" {
		return "(cmake default)"
	}
	return s
}

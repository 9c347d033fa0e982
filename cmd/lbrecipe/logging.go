// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"io"
	"log/slog"

	"github.com/includeos/lbrecipe/internal/config"

	"github.com/charmbracelet/log"
)

// newLogger returns the stderr logger for the configured level. --verbose
// forces debug.
func newLogger(w io.Writer, level config.LogLevel, verbose bool) *log.Logger {
	lvl, err := log.ParseLevel(string(level))
	if err != nil {
		lvl = log.InfoLevel
	}
	if verbose {
		lvl = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix: "lbrecipe",
		Level:  lvl,
	})
}

// installLogger routes log/slog records from every package through logger.
func installLogger(logger *log.Logger) {
	slog.SetDefault(slog.New(logger))
}

// glamourStyle maps the configured color scheme to a glamour standard style.
func glamourStyle(cfg *config.Config) string {
	if cfg == nil {
		return "auto"
	}
	switch cfg.UI.ColorScheme {
	case config.ColorSchemeDark:
		return "dark"
	case config.ColorSchemeLight:
		return "light"
	default:
		return "auto"
	}
}

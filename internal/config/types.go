// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/includeos/lbrecipe/pkg/recipe"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// LogLevelDebug shows backend invocations and fallback reasons.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo is the default level.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn shows warnings and errors only.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError shows errors only.
	LogLevelError LogLevel = "error"

	// DefaultBuildDir is the CMake binary directory relative to the source.
	DefaultBuildDir = "build"
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// LogLevel is the minimum level of log messages written to stderr.
	LogLevel string

	// InvalidLogLevelError is returned when a LogLevel value is not recognized.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// Profile holds the settings used when none are passed on the command line.
		Profile recipe.Settings `json:"profile" mapstructure:"profile"`
		// Scope is the user/channel requirements resolve from.
		Scope ScopeConfig `json:"scope" mapstructure:"scope"`
		// CMake configures the build backend.
		CMake CMakeConfig `json:"cmake" mapstructure:"cmake"`
		// LogLevel sets the stderr log level.
		LogLevel LogLevel `json:"log_level" mapstructure:"log_level"`
		// UI configures the user interface
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// ScopeConfig is the default requirement scope.
	ScopeConfig struct {
		User    string `json:"user" mapstructure:"user"`
		Channel string `json:"channel" mapstructure:"channel"`
	}

	// CMakeConfig tunes how CMake is invoked.
	CMakeConfig struct {
		// Binary is the cmake executable (default: "cmake" on PATH).
		Binary string `json:"binary" mapstructure:"binary"`
		// BuildDir is the binary directory, relative to the source directory unless absolute.
		BuildDir string `json:"build_dir" mapstructure:"build_dir"`
		// Generator selects the CMake generator; empty uses CMake's default.
		Generator string `json:"generator" mapstructure:"generator"`
		// InstallPrefix overrides CMAKE_INSTALL_PREFIX; empty keeps CMake's default.
		InstallPrefix string `json:"install_prefix" mapstructure:"install_prefix"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// ColorScheme sets the color scheme ("auto", "dark", "light")
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables verbose output
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}
)

// Error implements the error interface.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns ErrInvalidColorScheme so callers can use errors.Is for programmatic detection.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// Validate returns an error if the ColorScheme is not one of the defined schemes.
func (c ColorScheme) Validate() error {
	switch c {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return nil
	default:
		return &InvalidColorSchemeError{Value: c}
	}
}

// String returns the string representation of the ColorScheme.
func (c ColorScheme) String() string { return string(c) }

// Error implements the error interface.
func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error)", e.Value)
}

// Unwrap returns ErrInvalidLogLevel.
func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }

// Validate returns an error if the LogLevel is not recognized.
func (l LogLevel) Validate() error {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return nil
	default:
		return &InvalidLogLevelError{Value: l}
	}
}

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string { return string(l) }

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// Validate checks every field and collects the failures.
func (c *Config) Validate() error {
	var errs []error
	if err := c.Profile.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("profile: %w", err))
	}
	if err := c.RecipeScope().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("scope: %w", err))
	}
	if err := c.LogLevel.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.UI.ColorScheme.Validate(); err != nil {
		errs = append(errs, err)
	}
	if strings.TrimSpace(c.CMake.BuildDir) == "" {
		errs = append(errs, errors.New("cmake.build_dir must not be empty"))
	}
	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}

// RecipeScope returns the configured scope as a recipe.Scope.
func (c *Config) RecipeScope() recipe.Scope {
	return recipe.Scope{User: c.Scope.User, Channel: c.Scope.Channel}
}

// DefaultConfig returns the default configuration. The profile architecture follows
// the host.
func DefaultConfig() *Config {
	scope := recipe.DefaultScope()
	return &Config{
		Profile: recipe.Settings{
			OS:        "Linux",
			Arch:      HostArch(),
			BuildType: recipe.BuildTypeRelease,
			Compiler:  "clang",
		},
		Scope: ScopeConfig{User: scope.User, Channel: scope.Channel},
		CMake: CMakeConfig{
			Binary:   "cmake",
			BuildDir: DefaultBuildDir,
		},
		LogLevel: LogLevelInfo,
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
	}
}

// HostArch maps the Go architecture of the running binary to a settings arch name.
func HostArch() recipe.Arch {
	switch runtime.GOARCH {
	case "386":
		return "x86"
	case "arm64":
		return "armv8"
	case "arm":
		return "armv7"
	case "riscv64":
		return "riscv64"
	case "ppc64le":
		return "ppc64le"
	case "s390x":
		return "s390x"
	default:
		return "x86_64"
	}
}
